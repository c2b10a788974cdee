package cache

import "time"

// Key prefixes. Keep list-style prefixes in sync with Invalidate.
const (
	KeyTracksList      = "tracks:list"
	KeyTrackSingle     = "track:"
	KeyPodcastsList    = "podcasts:list"
	KeyPodcastSingle   = "podcast:"
	KeySearch          = "search:"
	KeyGenres          = "genres"
	KeyRecommendations = "recommendations:"
)

// TTLs per data class. Search results expire fast, catalog lists slower.
const (
	TTLTracksList      = 5 * time.Minute
	TTLTrackSingle     = 10 * time.Minute
	TTLSearch          = time.Minute
	TTLPodcasts        = 5 * time.Minute
	TTLGenres          = time.Hour
	TTLRecommendations = 5 * time.Minute
)
