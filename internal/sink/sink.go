// Package sink persists the final set of track records. Every sink
// writes in overwrite mode: a run replaces the destination's prior
// contents wholesale, so re-running the pipeline with the same input
// is idempotent at the destination.
package sink

import (
	"context"
	"fmt"
	"strings"

	"tracklake/internal/track"
)

// Sink is a single destination for the final record set.
type Sink interface {
	// Name identifies the destination in logs and error messages.
	Name() string

	// Write replaces the destination's contents with records.
	Write(ctx context.Context, records []track.Record) error

	// Close releases the destination's resources.
	Close(ctx context.Context) error
}

// ConnectivityError reports an unreachable destination.
type ConnectivityError struct {
	Destination string
	Err         error
}

func (e *ConnectivityError) Error() string {
	return fmt.Sprintf("%s: destination unreachable: %v", e.Destination, e.Err)
}

func (e *ConnectivityError) Unwrap() error { return e.Err }

// SchemaError reports a destination that enforces a schema conflicting
// with the track record shape.
type SchemaError struct {
	Destination string
	Err         error
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s: schema conflict: %v", e.Destination, e.Err)
}

func (e *SchemaError) Unwrap() error { return e.Err }

// Known destination selector names.
const (
	NameMongo    = "mongo"
	NamePostgres = "postgres"
	NameCSV      = "csv"
)

// ParseSelector splits a comma-separated destination list ("mongo,postgres")
// into known sink names, rejecting unknowns and dropping duplicates.
func ParseSelector(selector string) ([]string, error) {
	var names []string
	seen := map[string]bool{}
	for _, part := range strings.Split(selector, ",") {
		name := strings.ToLower(strings.TrimSpace(part))
		if name == "" || seen[name] {
			continue
		}
		switch name {
		case NameMongo, NamePostgres, NameCSV:
			seen[name] = true
			names = append(names, name)
		default:
			return nil, fmt.Errorf("unknown sink %q (valid: %s, %s, %s)", name, NameMongo, NamePostgres, NameCSV)
		}
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("no sinks selected")
	}
	return names, nil
}
