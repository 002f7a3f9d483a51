package track

// Record represents one normalized playlist track, the row shape every
// pipeline stage and sink agrees on.
type Record struct {
	TrackName   string `json:"track_name" bson:"track_name" csv:"track_name"`
	Artist      string `json:"artist" bson:"artist" csv:"artist"`
	Album       string `json:"album" bson:"album" csv:"album"`
	ReleaseDate string `json:"release_date" bson:"release_date" csv:"release_date"`
	Popularity  int    `json:"popularity" bson:"popularity" csv:"popularity"`
	IsPopular   bool   `json:"is_popular" bson:"is_popular" csv:"is_popular"`
}

// DefaultPopularityThreshold is the popularity score a track must exceed
// to be flagged popular.
const DefaultPopularityThreshold = 75

// DefaultReleaseCutoff is the earliest release date (inclusive) a track
// may have and still survive the filter stage.
const DefaultReleaseCutoff = "2020-01-01"

// Columns returns the tabular column names in insert order. The order
// must match Values.
func Columns() []string {
	return []string{"track_name", "artist", "album", "release_date", "popularity", "is_popular"}
}

// Values returns the record's fields in the same order as Columns.
func (r Record) Values() []any {
	return []any{r.TrackName, r.Artist, r.Album, r.ReleaseDate, r.Popularity, r.IsPopular}
}
