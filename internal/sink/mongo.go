package sink

import (
	"context"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"

	"tracklake/internal/track"
)

// MongoSink writes one BSON document per record into a collection,
// dropping the collection first so each run fully replaces the dataset.
type MongoSink struct {
	client *mongo.Client
	coll   *mongo.Collection
	logger *zap.SugaredLogger
}

// NewMongoSink connects to the document store and verifies it is
// reachable before any stage runs.
func NewMongoSink(ctx context.Context, uri, database, collection string, logger *zap.SugaredLogger) (*MongoSink, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, &ConnectivityError{Destination: NameMongo, Err: err}
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, &ConnectivityError{Destination: NameMongo, Err: err}
	}
	return &MongoSink{
		client: client,
		coll:   client.Database(database).Collection(collection),
		logger: logger,
	}, nil
}

func (s *MongoSink) Name() string { return NameMongo }

// Write drops the collection and inserts the full record set. Dropping
// a collection that does not exist is a no-op, so first runs behave the
// same as re-runs.
func (s *MongoSink) Write(ctx context.Context, records []track.Record) error {
	if err := s.coll.Drop(ctx); err != nil {
		return &ConnectivityError{Destination: NameMongo, Err: err}
	}
	if len(records) == 0 {
		s.logger.Warnw("no records to write, collection left empty", "collection", s.coll.Name())
		return nil
	}

	docs := make([]any, len(records))
	for i, rec := range records {
		docs[i] = rec
	}
	if _, err := s.coll.InsertMany(ctx, docs); err != nil {
		return classifyMongo(err)
	}

	s.logger.Infow("documents written", "collection", s.coll.Name(), "count", len(records))
	return nil
}

func (s *MongoSink) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// classifyMongo separates server-side validation failures from plain
// connectivity problems.
func classifyMongo(err error) error {
	var writeErr mongo.BulkWriteException
	if mongo.IsDuplicateKeyError(err) {
		return &SchemaError{Destination: NameMongo, Err: err}
	}
	if errors.As(err, &writeErr) {
		for _, we := range writeErr.WriteErrors {
			// 121 is the server's document validation failure code.
			if we.Code == 121 {
				return &SchemaError{Destination: NameMongo, Err: err}
			}
		}
	}
	return &ConnectivityError{Destination: NameMongo, Err: err}
}
