package sink

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"tracklake/internal/track"
)

const (
	pgSchema = "music"
	pgTable  = "spotify_tracks"
)

var createTableSQL = fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.%s (
	track_name   text    NOT NULL,
	artist       text    NOT NULL,
	album        text    NOT NULL,
	release_date date    NOT NULL,
	popularity   integer NOT NULL,
	is_popular   boolean NOT NULL
)`, pgSchema, pgTable)

// PostgresSink writes one row per record into music.spotify_tracks.
// The truncate and COPY run in a single transaction, so a failed write
// leaves the prior table contents in place.
type PostgresSink struct {
	pool   *pgxpool.Pool
	logger *zap.SugaredLogger
}

// NewPostgresSink connects to the tabular store and verifies it is
// reachable.
func NewPostgresSink(ctx context.Context, dsn string, logger *zap.SugaredLogger) (*PostgresSink, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, &ConnectivityError{Destination: NamePostgres, Err: err}
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, &ConnectivityError{Destination: NamePostgres, Err: err}
	}
	return &PostgresSink{pool: pool, logger: logger}, nil
}

func (s *PostgresSink) Name() string { return NamePostgres }

// Write creates the schema and table when absent, then truncates and
// bulk-copies the full record set inside one transaction.
func (s *PostgresSink) Write(ctx context.Context, records []track.Record) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return &ConnectivityError{Destination: NamePostgres, Err: err}
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, stmt := range []string{
		"CREATE SCHEMA IF NOT EXISTS " + pgSchema,
		createTableSQL,
		fmt.Sprintf("TRUNCATE %s.%s", pgSchema, pgTable),
	} {
		if _, err := tx.Exec(ctx, stmt); err != nil {
			return classifyPg(err)
		}
	}

	if _, err := tx.CopyFrom(
		ctx,
		pgx.Identifier{pgSchema, pgTable},
		track.Columns(),
		pgx.CopyFromRows(copyRows(records)),
	); err != nil {
		return classifyPg(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return &ConnectivityError{Destination: NamePostgres, Err: err}
	}

	s.logger.Infow("rows written", "table", pgSchema+"."+pgTable, "count", len(records))
	return nil
}

func (s *PostgresSink) Close(ctx context.Context) error {
	s.pool.Close()
	return nil
}

// copyRows converts records into the row-slices pgx.CopyFromRows
// expects, in Columns order.
func copyRows(records []track.Record) [][]any {
	rows := make([][]any, len(records))
	for i, rec := range records {
		rows[i] = rec.Values()
	}
	return rows
}

// classifyPg maps server errors onto the sink taxonomy. SQLState
// classes 22 (data exception), 23 (integrity), and 42 (syntax or
// access rule, including wrong column types) indicate a conflicting
// schema; everything else is treated as a connectivity failure.
func classifyPg(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch class := pgErr.SQLState(); {
		case strings.HasPrefix(class, "22"), strings.HasPrefix(class, "23"), strings.HasPrefix(class, "42"):
			return &SchemaError{Destination: NamePostgres, Err: err}
		}
	}
	return &ConnectivityError{Destination: NamePostgres, Err: err}
}
