// Package enrich derives the popularity flag and applies the release
// date window. Both steps are pure and operate per record, so the
// stage performs no I/O.
package enrich

import "tracklake/internal/track"

// Enrich sets IsPopular on every record. The flag is true exactly when
// the popularity score exceeds threshold, so recomputing it is
// idempotent.
func Enrich(records []track.Record, threshold int) []track.Record {
	for i := range records {
		records[i].IsPopular = records[i].Popularity > threshold
	}
	return records
}

// Filter returns the records released on or after cutoff. The
// comparison is lexicographic, which is safe because the normalizer
// guarantees zero-padded ISO dates on both sides.
func Filter(records []track.Record, cutoff string) []track.Record {
	kept := records[:0]
	for _, rec := range records {
		if rec.ReleaseDate >= cutoff {
			kept = append(kept, rec)
		}
	}
	return kept
}
