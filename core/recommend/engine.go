package recommend

import (
	"context"
	"errors"
	"sort"
	"strconv"

	"EchoFM/cache"
	"EchoFM/logger"
	"EchoFM/model"
	"EchoFM/repository"

	"golang.org/x/sync/errgroup"
)

// ErrTrackNotFound is returned by SimilarTo when the source track does not exist.
var ErrTrackNotFound = errors.New("track not found")

// RecommendationType tags which strategy produced a suggestion.
type RecommendationType string

const (
	TypeCollaborative RecommendationType = "collaborative"
	TypeContentBased  RecommendationType = "content-based"
	TypePopular       RecommendationType = "popular"
)

const (
	maxFavoritesForProfile = 50
	maxSeedTracks          = 10
	maxNeighborUsers       = 50
	popularSampleSize      = 100
	topGenreCount          = 3
	topArtistCount         = 5
)

// ScoredTrack is a track with its recommendation score and provenance.
type ScoredTrack struct {
	model.Track
	Score              int                `json:"score"`
	RecommendationType RecommendationType `json:"recommendationType"`
	Reason             string             `json:"reason"`
}

// TasteProfile is the per-request summary of a user's favorites.
type TasteProfile struct {
	TopGenres     []string
	TopArtists    []string
	LikedTrackIDs []int64
}

// Engine computes hybrid recommendations from collaborative and
// content-based signals, memoized through the cache.
type Engine struct {
	favorites repository.FavoriteRepository
	tracks    repository.TrackRepository
	store     *cache.Store
}

// NewEngine creates a recommendation engine. The cache store may be nil,
// in which case results are computed on every call.
func NewEngine(favorites repository.FavoriteRepository, tracks repository.TrackRepository, store *cache.Store) *Engine {
	return &Engine{
		favorites: favorites,
		tracks:    tracks,
		store:     store,
	}
}

// Recommend returns up to limit personalized suggestions for the user,
// collaborative results ranked ahead of content-based ones, deduplicated by
// track id. Users without favorites get the popularity fallback. Results are
// cached per user for five minutes.
func (e *Engine) Recommend(ctx context.Context, userID int64, limit int) ([]*ScoredTrack, error) {
	if e.store == nil {
		return e.recommend(ctx, userID, limit)
	}

	key := cache.KeyRecommendations + strconv.FormatInt(userID, 10)
	v, err := e.store.GetOrSet(key, cache.TTLRecommendations, func() (interface{}, error) {
		return e.recommend(ctx, userID, limit)
	})
	if err != nil {
		return nil, err
	}
	recs, _ := v.([]*ScoredTrack)
	return recs, nil
}

func (e *Engine) recommend(ctx context.Context, userID int64, limit int) ([]*ScoredTrack, error) {
	favorites, err := e.favorites.WithTracks(ctx, userID, maxFavoritesForProfile)
	if err != nil {
		return nil, err
	}

	if len(favorites) == 0 {
		return e.popular(ctx, limit), nil
	}

	profile := buildTasteProfile(favorites)
	half := (limit + 1) / 2

	// Both strategies run concurrently; neither result is discarded.
	var collaborative, contentBased []*ScoredTrack
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		collaborative = e.collaborative(gctx, profile.LikedTrackIDs, userID, half)
		return nil
	})
	g.Go(func() error {
		contentBased = e.contentBased(gctx, profile.TopGenres, profile.TopArtists, profile.LikedTrackIDs, half)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return mergeRecommendations(collaborative, contentBased, limit), nil
}

// mergeRecommendations concatenates collaborative results first, drops
// duplicate track ids (first occurrence wins) and truncates to limit.
func mergeRecommendations(collaborative, contentBased []*ScoredTrack, limit int) []*ScoredTrack {
	merged := make([]*ScoredTrack, 0, len(collaborative)+len(contentBased))
	seen := make(map[int64]bool)

	for _, rec := range append(append([]*ScoredTrack{}, collaborative...), contentBased...) {
		if seen[rec.ID] {
			continue
		}
		seen[rec.ID] = true
		merged = append(merged, rec)
		if len(merged) == limit {
			break
		}
	}
	return merged
}

// buildTasteProfile counts genre and artist occurrences across the user's
// favorites. Frequency ties keep first-seen order, so the profile is stable
// for a given favorites sequence.
func buildTasteProfile(favorites []*model.Favorite) *TasteProfile {
	genreCounts := newFrequencyCounter()
	artistCounts := newFrequencyCounter()
	likedIDs := make([]int64, 0, len(favorites))

	for _, fav := range favorites {
		likedIDs = append(likedIDs, fav.TrackID)
		if fav.Track.Genre != "" {
			genreCounts.add(fav.Track.Genre)
		}
		if fav.Track.Artist != "" {
			artistCounts.add(fav.Track.Artist)
		}
	}

	return &TasteProfile{
		TopGenres:     genreCounts.top(topGenreCount),
		TopArtists:    artistCounts.top(topArtistCount),
		LikedTrackIDs: likedIDs,
	}
}

// frequencyCounter counts string occurrences while remembering insertion
// order for deterministic tie-breaking.
type frequencyCounter struct {
	counts map[string]int
	order  []string
}

func newFrequencyCounter() *frequencyCounter {
	return &frequencyCounter{counts: make(map[string]int)}
}

func (c *frequencyCounter) add(key string) {
	if _, ok := c.counts[key]; !ok {
		c.order = append(c.order, key)
	}
	c.counts[key]++
}

func (c *frequencyCounter) top(n int) []string {
	keys := append([]string{}, c.order...)
	sort.SliceStable(keys, func(i, j int) bool {
		return c.counts[keys[i]] > c.counts[keys[j]]
	})
	if len(keys) > n {
		keys = keys[:n]
	}
	return keys
}

// SimilarTo returns up to limit other tracks sharing the source track's
// genre or artist. The source track itself is excluded.
func (e *Engine) SimilarTo(ctx context.Context, trackID int64, limit int) (*model.Track, []*model.Track, error) {
	source, err := e.tracks.GetByID(ctx, trackID)
	if err != nil {
		return nil, nil, err
	}
	if source == nil {
		return nil, nil, ErrTrackNotFound
	}

	similar, err := e.tracks.SimilarTo(ctx, source.Genre, source.Artist, source.ID, limit)
	if err != nil {
		return nil, nil, err
	}
	return source, similar, nil
}

func logStrategyFailure(strategy string, err error) {
	logger.Warn("recommendation strategy failed, contributing nothing",
		logger.String("strategy", strategy),
		logger.ErrorField(err))
}
