package sink

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"reflect"

	"go.uber.org/zap"

	"tracklake/internal/track"
)

// CSVSink writes the record set to a local CSV file. Creating the file
// truncates any previous run's output, which is exactly the overwrite
// contract the other sinks honor.
type CSVSink struct {
	path   string
	logger *zap.SugaredLogger
}

func NewCSVSink(path string, logger *zap.SugaredLogger) *CSVSink {
	return &CSVSink{path: path, logger: logger}
}

func (s *CSVSink) Name() string { return NameCSV }

func (s *CSVSink) Write(ctx context.Context, records []track.Record) error {
	file, err := os.Create(s.path)
	if err != nil {
		return &ConnectivityError{Destination: NameCSV, Err: err}
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	headers := csvHeader(reflect.TypeOf(track.Record{}))
	if err := writer.Write(headers); err != nil {
		return &ConnectivityError{Destination: NameCSV, Err: err}
	}

	for _, rec := range records {
		if err := writer.Write(csvRow(rec, len(headers))); err != nil {
			return &ConnectivityError{Destination: NameCSV, Err: err}
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return &ConnectivityError{Destination: NameCSV, Err: err}
	}

	s.logger.Infow("csv written", "path", s.path, "count", len(records))
	return nil
}

func (s *CSVSink) Close(ctx context.Context) error { return nil }

// csvHeader takes a struct type and returns the CSV header names.
// It uses the `csv` tag on struct fields; fields without the tag fall
// back to the field name.
func csvHeader(t reflect.Type) []string {
	headers := make([]string, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if tag := field.Tag.Get("csv"); tag != "" {
			headers[i] = tag
		} else {
			headers[i] = field.Name
		}
	}
	return headers
}

// csvRow renders a record's fields as strings in struct field order,
// matching csvHeader.
func csvRow(rec track.Record, n int) []string {
	v := reflect.ValueOf(rec)
	row := make([]string, n)
	for i := 0; i < n; i++ {
		row[i] = fmt.Sprintf("%v", v.Field(i).Interface())
	}
	return row
}
