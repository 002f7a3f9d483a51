// Package normalize turns raw Spotify playlist entries into the typed
// row shape the rest of the pipeline works with. It is the only place
// that touches the nested API structure; everything downstream sees
// track.Record values with all required fields validated.
package normalize

import (
	"fmt"
	"time"

	"github.com/zmb3/spotify/v2"

	"tracklake/internal/track"
)

// MalformedRecordError reports a raw playlist entry that is missing a
// required field or carries a value that cannot be normalized.
type MalformedRecordError struct {
	Track  string // track name when known, may be empty
	Field  string
	Reason string
}

func (e *MalformedRecordError) Error() string {
	if e.Track == "" {
		return fmt.Sprintf("malformed record: %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("malformed record %q: %s: %s", e.Track, e.Field, e.Reason)
}

// Item maps one raw playlist entry to one Record. It returns a
// *MalformedRecordError when a required field is absent or invalid;
// the caller decides whether to skip the row or abort the run.
func Item(item spotify.PlaylistItem) (track.Record, error) {
	ft := item.Track.Track
	if ft == nil {
		// Episodes and removed local files come back without a track payload.
		return track.Record{}, &MalformedRecordError{Field: "track", Reason: "entry has no track payload"}
	}
	if ft.Name == "" {
		return track.Record{}, &MalformedRecordError{Field: "track_name", Reason: "empty track name"}
	}
	if len(ft.Artists) == 0 {
		return track.Record{}, &MalformedRecordError{Track: ft.Name, Field: "artist", Reason: "entry has no artists"}
	}
	if ft.Album.Name == "" {
		return track.Record{}, &MalformedRecordError{Track: ft.Name, Field: "album", Reason: "empty album name"}
	}
	release, err := PadReleaseDate(ft.Album.ReleaseDate)
	if err != nil {
		return track.Record{}, &MalformedRecordError{Track: ft.Name, Field: "release_date", Reason: err.Error()}
	}
	pop := int(ft.Popularity)
	if pop < 0 || pop > 100 {
		return track.Record{}, &MalformedRecordError{Track: ft.Name, Field: "popularity", Reason: fmt.Sprintf("score %d outside 0-100", pop)}
	}

	return track.Record{
		TrackName:   ft.Name,
		Artist:      ft.Artists[0].Name,
		Album:       ft.Album.Name,
		ReleaseDate: release,
		Popularity:  pop,
	}, nil
}

// PadReleaseDate widens a Spotify release date to full zero-padded ISO
// form. Spotify reports album dates at year, month, or day precision;
// year and month values are padded to the first day of the period so
// the lexicographic date filter stays sound.
func PadReleaseDate(date string) (string, error) {
	switch len(date) {
	case len("2006"):
		date += "-01-01"
	case len("2006-01"):
		date += "-01"
	case len("2006-01-02"):
		// already full precision
	default:
		return "", fmt.Errorf("release date %q is not an ISO date", date)
	}
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return "", fmt.Errorf("release date %q is not an ISO date", date)
	}
	return date, nil
}
