// Package pipeline composes the four stages into one run: fetch,
// normalize, enrich/filter, write. Control flow is linear and
// synchronous; a run processes one playlist and exits.
package pipeline

import (
	"context"

	"github.com/pkg/errors"
	spotifyapi "github.com/zmb3/spotify/v2"
	"go.uber.org/zap"

	"tracklake/internal/enrich"
	"tracklake/internal/normalize"
	"tracklake/internal/sink"
	"tracklake/internal/track"
)

// Fetcher is the narrow view of the playlist API client the pipeline
// depends on.
type Fetcher interface {
	PlaylistItems(ctx context.Context, playlistID string) ([]spotifyapi.PlaylistItem, error)
}

// Options carries the per-run knobs. The zero value is not usable;
// callers fill it from configuration.
type Options struct {
	PlaylistID          string
	PopularityThreshold int
	ReleaseCutoff       string

	// Strict aborts the run on the first malformed record instead of
	// skipping it with a warning.
	Strict bool
}

// Result summarizes a completed run.
type Result struct {
	Fetched int // raw entries returned by the playlist API
	Skipped int // malformed entries dropped with a warning
	Loaded  int // records written to every selected sink
}

// Run executes the pipeline once. Malformed records are skipped with a
// warning (or abort the run under Options.Strict); any other failure is
// fatal and wrapped with the name of the stage that produced it.
func Run(ctx context.Context, fetcher Fetcher, sinks []sink.Sink, opts Options, logger *zap.SugaredLogger) (Result, error) {
	var res Result

	items, err := fetcher.PlaylistItems(ctx, opts.PlaylistID)
	if err != nil {
		return res, errors.Wrap(err, "fetch stage")
	}
	res.Fetched = len(items)

	records := make([]track.Record, 0, len(items))
	for _, item := range items {
		rec, err := normalize.Item(item)
		if err != nil {
			var malformed *normalize.MalformedRecordError
			if errors.As(err, &malformed) && !opts.Strict {
				res.Skipped++
				logger.Warnw("skipping malformed record",
					"track", malformed.Track, "field", malformed.Field, "reason", malformed.Reason)
				continue
			}
			return res, errors.Wrap(err, "normalize stage")
		}
		records = append(records, rec)
	}

	records = enrich.Enrich(records, opts.PopularityThreshold)
	records = enrich.Filter(records, opts.ReleaseCutoff)

	for _, s := range sinks {
		if err := s.Write(ctx, records); err != nil {
			return res, errors.Wrapf(err, "sink stage (%s)", s.Name())
		}
	}
	res.Loaded = len(records)

	logger.Infow("pipeline complete",
		"fetched", res.Fetched, "skipped", res.Skipped, "loaded", res.Loaded, "sinks", len(sinks))
	return res, nil
}
