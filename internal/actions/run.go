package actions

import (
	"context"
	"fmt"

	"github.com/charmbracelet/huh/spinner"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"tracklake/internal/config"
	"tracklake/internal/pipeline"
	"tracklake/internal/sink"
	"tracklake/internal/spotify"
)

// Run executes the whole pipeline once: load config, authenticate,
// fetch, transform, write to the selected sinks.
func Run(c *cli.Context) error {
	logger, err := zap.NewProduction()
	if err != nil {
		return fmt.Errorf("building logger: %w", err)
	}
	defer logger.Sync()
	log := logger.Sugar()

	cfg, err := config.Load(c.String("env-file"))
	if err != nil {
		return err
	}
	applyFlags(c, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx := c.Context
	fetcher, err := spotify.NewFetcher(ctx, cfg.SpotifyID, cfg.SpotifySecret, log)
	if err != nil {
		return err
	}

	sinks, closeSinks, err := buildSinks(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeSinks()

	opts := pipeline.Options{
		PlaylistID:          cfg.PlaylistID,
		PopularityThreshold: cfg.PopularityThreshold,
		ReleaseCutoff:       cfg.ReleaseCutoff,
		Strict:              cfg.Strict,
	}

	var result pipeline.Result
	load := func(ctx context.Context) error {
		res, runErr := pipeline.Run(ctx, fetcher, sinks, opts, log)
		result = res
		return runErr
	}
	if err := spinner.New().Title("Loading playlist...").Context(ctx).ActionWithErr(load).Run(); err != nil {
		return err
	}

	fmt.Printf("Loaded %d tracks (fetched %d, skipped %d) into %d sink(s)\n",
		result.Loaded, result.Fetched, result.Skipped, len(sinks))
	return nil
}

// applyFlags lets command-line flags override environment settings.
func applyFlags(c *cli.Context, cfg *config.Config) {
	if v := c.String("playlist"); v != "" {
		cfg.PlaylistID = v
	}
	if v := c.String("sinks"); v != "" {
		cfg.Sinks = v
	}
	if v := c.String("csv-out"); v != "" {
		cfg.CSVPath = v
	}
	if c.IsSet("strict") {
		cfg.Strict = c.Bool("strict")
	}
}

// buildSinks connects every destination named by the selector before
// the pipeline starts, so connectivity failures surface up front
// rather than after the fetch.
func buildSinks(ctx context.Context, cfg *config.Config, log *zap.SugaredLogger) ([]sink.Sink, func(), error) {
	names, err := sink.ParseSelector(cfg.Sinks)
	if err != nil {
		return nil, nil, err
	}

	var sinks []sink.Sink
	closeAll := func() {
		for _, s := range sinks {
			if err := s.Close(context.Background()); err != nil {
				log.Warnw("closing sink", "sink", s.Name(), "error", err)
			}
		}
	}

	for _, name := range names {
		var s sink.Sink
		switch name {
		case sink.NameMongo:
			s, err = sink.NewMongoSink(ctx, cfg.MongoURI, cfg.MongoDatabase, cfg.MongoCollection, log)
		case sink.NamePostgres:
			s, err = sink.NewPostgresSink(ctx, cfg.PostgresDSN, log)
		case sink.NameCSV:
			s = sink.NewCSVSink(cfg.CSVPath, log)
		}
		if err != nil {
			closeAll()
			return nil, nil, err
		}
		sinks = append(sinks, s)
	}
	return sinks, closeAll, nil
}
