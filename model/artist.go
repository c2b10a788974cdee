package model

// ArtistProfile is an aggregate view over the catalog for a single artist.
// It is computed on demand and never persisted.
type ArtistProfile struct {
	Name       string   `json:"name"`
	TrackCount int64    `json:"trackCount"`
	Genres     []string `json:"genres"`
	TopTracks  []*Track `json:"topTracks"`
}
