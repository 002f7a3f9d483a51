package pipeline

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	spotifyapi "github.com/zmb3/spotify/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"tracklake/internal/sink"
	"tracklake/internal/track"
)

// fakeFetcher returns canned playlist items or a canned error.
type fakeFetcher struct {
	items []spotifyapi.PlaylistItem
	err   error
}

func (f *fakeFetcher) PlaylistItems(ctx context.Context, playlistID string) ([]spotifyapi.PlaylistItem, error) {
	return f.items, f.err
}

// memSink captures the record set written to it, replacing prior
// contents like the real overwrite-mode sinks do.
type memSink struct {
	contents []track.Record
	writes   int
	err      error
}

func (m *memSink) Name() string { return "memory" }

func (m *memSink) Write(ctx context.Context, records []track.Record) error {
	if m.err != nil {
		return m.err
	}
	m.writes++
	m.contents = append([]track.Record(nil), records...)
	return nil
}

func (m *memSink) Close(ctx context.Context) error { return nil }

func rawItem(name, artist, album, release string, popularity int) spotifyapi.PlaylistItem {
	var artists []spotifyapi.SimpleArtist
	if artist != "" {
		artists = []spotifyapi.SimpleArtist{{Name: artist}}
	}
	return spotifyapi.PlaylistItem{
		Track: spotifyapi.PlaylistItemTrack{
			Track: &spotifyapi.FullTrack{
				SimpleTrack: spotifyapi.SimpleTrack{Name: name, Artists: artists},
				Album:       spotifyapi.SimpleAlbum{Name: album, ReleaseDate: release},
				Popularity:  spotifyapi.Numeric(popularity),
			},
		},
	}
}

func defaultOpts() Options {
	return Options{
		PlaylistID:          "test-playlist",
		PopularityThreshold: track.DefaultPopularityThreshold,
		ReleaseCutoff:       track.DefaultReleaseCutoff,
	}
}

func TestRun_EndToEnd(t *testing.T) {
	t.Parallel()

	fetcher := &fakeFetcher{items: []spotifyapi.PlaylistItem{
		// scenario A: popular and recent, retained and flagged
		rawItem("Levitating", "Dua Lipa", "Future Nostalgia", "2020-03-27", 80),
		// scenario B: pre-2020, excluded regardless of popularity
		rawItem("Old Banger", "Somebody", "Back Then", "2018-06-01", 90),
		// scenario C: missing artists, skipped with a warning
		rawItem("Orphan", "", "Nowhere", "2021-01-01", 50),
		// recent but not popular, retained with the flag off
		rawItem("Deep Cut", "Somebody", "Back Then", "2022-05-05", 40),
	}}

	core, logs := observer.New(zap.WarnLevel)
	s := &memSink{}

	res, err := Run(context.Background(), fetcher, []sink.Sink{s}, defaultOpts(), zap.New(core).Sugar())
	require.NoError(t, err)

	assert.Equal(t, 4, res.Fetched)
	assert.Equal(t, 1, res.Skipped)
	assert.Equal(t, 2, res.Loaded)

	require.Len(t, s.contents, 2)
	assert.Equal(t, "Levitating", s.contents[0].TrackName)
	assert.True(t, s.contents[0].IsPopular)
	assert.Equal(t, "Deep Cut", s.contents[1].TrackName)
	assert.False(t, s.contents[1].IsPopular)

	warnings := logs.FilterMessage("skipping malformed record").All()
	require.Len(t, warnings, 1, "scenario C records exactly one warning")
}

func TestRun_Idempotent(t *testing.T) {
	t.Parallel()

	fetcher := &fakeFetcher{items: []spotifyapi.PlaylistItem{
		rawItem("Levitating", "Dua Lipa", "Future Nostalgia", "2020-03-27", 80),
	}}
	s := &memSink{}
	logger := zap.NewNop().Sugar()

	_, err := Run(context.Background(), fetcher, []sink.Sink{s}, defaultOpts(), logger)
	require.NoError(t, err)
	first := append([]track.Record(nil), s.contents...)

	_, err = Run(context.Background(), fetcher, []sink.Sink{s}, defaultOpts(), logger)
	require.NoError(t, err)

	assert.Equal(t, 2, s.writes)
	assert.Equal(t, first, s.contents, "re-running replaces, never duplicates")
}

func TestRun_StrictAbortsOnMalformed(t *testing.T) {
	t.Parallel()

	fetcher := &fakeFetcher{items: []spotifyapi.PlaylistItem{
		rawItem("Orphan", "", "Nowhere", "2021-01-01", 50),
	}}
	opts := defaultOpts()
	opts.Strict = true

	_, err := Run(context.Background(), fetcher, []sink.Sink{&memSink{}}, opts, zap.NewNop().Sugar())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "normalize stage")
}

func TestRun_FetchFailureIsTagged(t *testing.T) {
	t.Parallel()

	cause := errors.New("boom")
	fetcher := &fakeFetcher{err: cause}

	_, err := Run(context.Background(), fetcher, []sink.Sink{&memSink{}}, defaultOpts(), zap.NewNop().Sugar())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fetch stage")
	assert.ErrorIs(t, err, cause)
}

func TestRun_SinkFailureIsTagged(t *testing.T) {
	t.Parallel()

	fetcher := &fakeFetcher{items: []spotifyapi.PlaylistItem{
		rawItem("Levitating", "Dua Lipa", "Future Nostalgia", "2020-03-27", 80),
	}}
	failing := &memSink{err: &sink.ConnectivityError{Destination: "memory", Err: errors.New("down")}}

	res, err := Run(context.Background(), fetcher, []sink.Sink{failing}, defaultOpts(), zap.NewNop().Sugar())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sink stage (memory)")
	assert.Zero(t, res.Loaded, "a failed write is never reported as loaded")

	var connErr *sink.ConnectivityError
	assert.ErrorAs(t, err, &connErr)
}
