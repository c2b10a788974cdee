package recommend

import (
	"context"
	"errors"
	"testing"
	"time"

	"EchoFM/cache"
	"EchoFM/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFavoriteRepo struct {
	userFavorites []*model.Favorite
	withTracksErr error

	neighborIDs []int64
	neighborErr error

	neighborFavorites []*model.Favorite
	byUsersErr        error

	sample    []*model.Favorite
	sampleErr error
}

func (f *fakeFavoriteRepo) Add(ctx context.Context, userID, trackID int64) error    { return nil }
func (f *fakeFavoriteRepo) Remove(ctx context.Context, userID, trackID int64) error { return nil }
func (f *fakeFavoriteRepo) IsFavorited(ctx context.Context, userID, trackID int64) (bool, error) {
	return false, nil
}
func (f *fakeFavoriteRepo) ListByUser(ctx context.Context, userID int64, limit, offset int) ([]*model.Favorite, int64, error) {
	return nil, 0, nil
}

func (f *fakeFavoriteRepo) WithTracks(ctx context.Context, userID int64, limit int) ([]*model.Favorite, error) {
	return f.userFavorites, f.withTracksErr
}

func (f *fakeFavoriteRepo) NeighborUserIDs(ctx context.Context, trackIDs []int64, excludeUserID int64, limit int) ([]int64, error) {
	return f.neighborIDs, f.neighborErr
}

func (f *fakeFavoriteRepo) ByUsersExcludingTracks(ctx context.Context, userIDs, excludeTrackIDs []int64, limit int) ([]*model.Favorite, error) {
	return f.neighborFavorites, f.byUsersErr
}

func (f *fakeFavoriteRepo) Sample(ctx context.Context, limit int) ([]*model.Favorite, error) {
	return f.sample, f.sampleErr
}

type fakeTrackRepo struct {
	byID       map[int64]*model.Track
	byIDErr    error
	byAttrs    []*model.Track
	byAttrsErr error
	similar    []*model.Track
}

func (f *fakeTrackRepo) Create(ctx context.Context, track *model.Track) error { return nil }
func (f *fakeTrackRepo) GetByID(ctx context.Context, id int64) (*model.Track, error) {
	if f.byIDErr != nil {
		return nil, f.byIDErr
	}
	return f.byID[id], nil
}
func (f *fakeTrackRepo) Update(ctx context.Context, track *model.Track) error { return nil }
func (f *fakeTrackRepo) Delete(ctx context.Context, id int64) error           { return nil }
func (f *fakeTrackRepo) List(ctx context.Context, sort, order string, limit, offset int) ([]*model.Track, int64, error) {
	return nil, 0, nil
}
func (f *fakeTrackRepo) ListByGenre(ctx context.Context, genre string, limit, offset int) ([]*model.Track, int64, error) {
	return nil, 0, nil
}
func (f *fakeTrackRepo) Genres(ctx context.Context) ([]string, error) { return nil, nil }
func (f *fakeTrackRepo) Search(ctx context.Context, query string, limit int) ([]*model.Track, error) {
	return nil, nil
}

func (f *fakeTrackRepo) ByGenresOrArtists(ctx context.Context, genres, artists []string, excludeIDs []int64, limit int) ([]*model.Track, error) {
	return f.byAttrs, f.byAttrsErr
}

func (f *fakeTrackRepo) SimilarTo(ctx context.Context, genre, artist string, excludeID int64, limit int) ([]*model.Track, error) {
	return f.similar, nil
}

func (f *fakeTrackRepo) ByArtist(ctx context.Context, artist string, limit int) ([]*model.Track, int64, error) {
	return nil, 0, nil
}
func (f *fakeTrackRepo) GenresByArtist(ctx context.Context, artist string) ([]string, error) {
	return nil, nil
}

func track(id int64, genre, artist string) model.Track {
	return model.Track{ID: id, Title: "t", Genre: genre, Artist: artist}
}

func favoriteOf(userID int64, t model.Track) *model.Favorite {
	return &model.Favorite{UserID: userID, TrackID: t.ID, Track: t}
}

func TestRecommendPopularFallback(t *testing.T) {
	hot := track(1, "Electronic", "Daft Punk")
	warm := track(2, "Jazz", "Miles Davis")

	favs := &fakeFavoriteRepo{
		sample: []*model.Favorite{
			favoriteOf(2, hot),
			favoriteOf(3, hot),
			favoriteOf(4, warm),
		},
	}
	engine := NewEngine(favs, &fakeTrackRepo{}, nil)

	recs, err := engine.Recommend(context.Background(), 1, 10)
	require.NoError(t, err)
	require.Len(t, recs, 2)

	assert.Equal(t, int64(1), recs[0].ID)
	assert.Equal(t, 2, recs[0].Score)
	assert.Equal(t, TypePopular, recs[0].RecommendationType)
	assert.Equal(t, "Trending now", recs[0].Reason)
	assert.Equal(t, int64(2), recs[1].ID)
}

func TestRecommendMergeDeduplicates(t *testing.T) {
	liked := track(10, "Electronic", "Daft Punk")
	shared := track(20, "Electronic", "Justice")
	other := track(30, "House", "Kavinsky")
	sameArtist := track(40, "Disco", "Daft Punk")

	favs := &fakeFavoriteRepo{
		userFavorites: []*model.Favorite{favoriteOf(1, liked)},
		neighborIDs:   []int64{2},
		neighborFavorites: []*model.Favorite{
			favoriteOf(2, shared),
			favoriteOf(3, shared),
			favoriteOf(2, other),
		},
	}
	tracks := &fakeTrackRepo{
		byAttrs: []*model.Track{&shared, &sameArtist},
	}
	engine := NewEngine(favs, tracks, nil)

	recs, err := engine.Recommend(context.Background(), 1, 6)
	require.NoError(t, err)
	require.Len(t, recs, 3)

	// Collaborative results rank first; the duplicate keeps its
	// collaborative provenance.
	assert.Equal(t, int64(20), recs[0].ID)
	assert.Equal(t, TypeCollaborative, recs[0].RecommendationType)
	assert.Equal(t, 2, recs[0].Score)
	assert.Equal(t, "Users with similar taste enjoyed this", recs[0].Reason)

	assert.Equal(t, int64(30), recs[1].ID)
	assert.Equal(t, TypeCollaborative, recs[1].RecommendationType)

	assert.Equal(t, int64(40), recs[2].ID)
	assert.Equal(t, TypeContentBased, recs[2].RecommendationType)
	assert.Equal(t, 3, recs[2].Score)
	assert.Equal(t, "Because you like Daft Punk", recs[2].Reason)
}

func TestRecommendContentScoring(t *testing.T) {
	liked := track(10, "Electronic", "Daft Punk")
	genreOnly := track(21, "Electronic", "Justice")
	both := track(22, "Electronic", "Daft Punk")

	favs := &fakeFavoriteRepo{
		userFavorites: []*model.Favorite{favoriteOf(1, liked)},
	}
	tracks := &fakeTrackRepo{
		byAttrs: []*model.Track{&genreOnly, &both},
	}
	engine := NewEngine(favs, tracks, nil)

	recs, err := engine.Recommend(context.Background(), 1, 10)
	require.NoError(t, err)
	require.Len(t, recs, 2)

	// Genre + artist beats genre alone.
	assert.Equal(t, int64(22), recs[0].ID)
	assert.Equal(t, 5, recs[0].Score)
	assert.Equal(t, int64(21), recs[1].ID)
	assert.Equal(t, 2, recs[1].Score)
	assert.Equal(t, "Based on your taste in Electronic", recs[1].Reason)
}

func TestRecommendStrategyFailureSwallowed(t *testing.T) {
	liked := track(10, "Electronic", "Daft Punk")
	suggestion := track(21, "Electronic", "Justice")

	favs := &fakeFavoriteRepo{
		userFavorites: []*model.Favorite{favoriteOf(1, liked)},
		neighborErr:   errors.New("neighbors query timed out"),
	}
	tracks := &fakeTrackRepo{
		byAttrs: []*model.Track{&suggestion},
	}
	engine := NewEngine(favs, tracks, nil)

	recs, err := engine.Recommend(context.Background(), 1, 10)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, TypeContentBased, recs[0].RecommendationType)
}

func TestRecommendFavoritesFetchErrorPropagates(t *testing.T) {
	favs := &fakeFavoriteRepo{withTracksErr: errors.New("db down")}
	engine := NewEngine(favs, &fakeTrackRepo{}, nil)

	_, err := engine.Recommend(context.Background(), 1, 10)
	assert.Error(t, err)
}

func TestRecommendCachesPerUser(t *testing.T) {
	store := cache.NewWithSweepInterval(0)
	defer store.Close()

	favs := &fakeFavoriteRepo{
		sample: []*model.Favorite{favoriteOf(2, track(1, "Jazz", "Miles Davis"))},
	}
	engine := NewEngine(favs, &fakeTrackRepo{}, store)

	first, err := engine.Recommend(context.Background(), 1, 10)
	require.NoError(t, err)
	require.Len(t, first, 1)

	// A changed backend must not be visible while the cache entry lives.
	favs.sample = nil
	second, err := engine.Recommend(context.Background(), 1, 10)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestBuildTasteProfile(t *testing.T) {
	favorites := []*model.Favorite{
		favoriteOf(1, track(1, "Electronic", "Daft Punk")),
		favoriteOf(1, track(2, "Electronic", "Justice")),
		favoriteOf(1, track(3, "Jazz", "Miles Davis")),
		favoriteOf(1, track(4, "House", "Kavinsky")),
		favoriteOf(1, track(5, "Ambient", "Eno")),
	}

	profile := buildTasteProfile(favorites)

	assert.Equal(t, []int64{1, 2, 3, 4, 5}, profile.LikedTrackIDs)
	// Electronic is most frequent; the rest tie and keep first-seen order.
	assert.Equal(t, []string{"Electronic", "Jazz", "House"}, profile.TopGenres)
	assert.Len(t, profile.TopArtists, 5)
	assert.Equal(t, "Daft Punk", profile.TopArtists[0])
}

func TestSimilarTo(t *testing.T) {
	source := track(1, "Electronic", "Daft Punk")
	sibling := track(2, "Electronic", "Justice")

	tracks := &fakeTrackRepo{
		byID:    map[int64]*model.Track{1: &source},
		similar: []*model.Track{&sibling},
	}
	engine := NewEngine(&fakeFavoriteRepo{}, tracks, nil)

	got, similar, err := engine.SimilarTo(context.Background(), 1, 10)
	require.NoError(t, err)
	assert.Equal(t, &source, got)
	require.Len(t, similar, 1)
	assert.Equal(t, int64(2), similar[0].ID)
}

func TestSimilarToUnknownTrack(t *testing.T) {
	engine := NewEngine(&fakeFavoriteRepo{}, &fakeTrackRepo{}, nil)

	_, _, err := engine.SimilarTo(context.Background(), 99, 10)
	assert.ErrorIs(t, err, ErrTrackNotFound)
}

func TestRecommendRespectsLimit(t *testing.T) {
	liked := track(10, "Electronic", "Daft Punk")

	var neighborFavs []*model.Favorite
	for id := int64(20); id < 30; id++ {
		neighborFavs = append(neighborFavs, favoriteOf(2, track(id, "Electronic", "Various")))
	}

	favs := &fakeFavoriteRepo{
		userFavorites:     []*model.Favorite{favoriteOf(1, liked)},
		neighborIDs:       []int64{2},
		neighborFavorites: neighborFavs,
	}
	engine := NewEngine(favs, &fakeTrackRepo{}, nil)

	recs, err := engine.Recommend(context.Background(), 1, 4)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(recs), 4)
}

func TestRecommendCacheExpiry(t *testing.T) {
	store := cache.NewWithSweepInterval(0)
	defer store.Close()

	// Direct store access mirrors what the engine does internally.
	store.Set(cache.KeyRecommendations+"7", []*ScoredTrack{}, 5*time.Millisecond)
	time.Sleep(15 * time.Millisecond)

	_, ok := store.Get(cache.KeyRecommendations + "7")
	assert.False(t, ok)
}
