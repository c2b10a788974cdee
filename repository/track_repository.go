package repository

import (
	"context"

	"EchoFM/model"

	"gorm.io/gorm"
)

// TrackRepository defines the interface for track data operations.
type TrackRepository interface {
	Create(ctx context.Context, track *model.Track) error
	GetByID(ctx context.Context, id int64) (*model.Track, error)
	Update(ctx context.Context, track *model.Track) error
	Delete(ctx context.Context, id int64) error

	List(ctx context.Context, sort, order string, limit, offset int) ([]*model.Track, int64, error)
	ListByGenre(ctx context.Context, genre string, limit, offset int) ([]*model.Track, int64, error)
	Genres(ctx context.Context) ([]string, error)
	Search(ctx context.Context, query string, limit int) ([]*model.Track, error)

	// Recommendation query surface.
	ByGenresOrArtists(ctx context.Context, genres, artists []string, excludeIDs []int64, limit int) ([]*model.Track, error)
	SimilarTo(ctx context.Context, genre, artist string, excludeID int64, limit int) ([]*model.Track, error)

	// Artist profile aggregates.
	ByArtist(ctx context.Context, artist string, limit int) ([]*model.Track, int64, error)
	GenresByArtist(ctx context.Context, artist string) ([]string, error)
}

type gormTrackRepository struct {
	db *gorm.DB
}

// NewGormTrackRepository creates a GORM-backed track repository.
func NewGormTrackRepository(db *gorm.DB) TrackRepository {
	return &gormTrackRepository{db: db}
}

func (r *gormTrackRepository) Create(ctx context.Context, track *model.Track) error {
	return r.db.WithContext(ctx).Create(track).Error
}

func (r *gormTrackRepository) GetByID(ctx context.Context, id int64) (*model.Track, error) {
	var track model.Track
	err := r.db.WithContext(ctx).First(&track, id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &track, nil
}

func (r *gormTrackRepository) Update(ctx context.Context, track *model.Track) error {
	return r.db.WithContext(ctx).Save(track).Error
}

func (r *gormTrackRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&model.Track{}, id).Error
}

// sortColumns whitelists sortable columns for List.
var sortColumns = map[string]bool{
	"created_at": true,
	"title":      true,
	"artist":     true,
	"duration":   true,
}

func (r *gormTrackRepository) List(ctx context.Context, sort, order string, limit, offset int) ([]*model.Track, int64, error) {
	if !sortColumns[sort] {
		sort = "created_at"
	}
	if order != "asc" {
		order = "desc"
	}

	var total int64
	if err := r.db.WithContext(ctx).Model(&model.Track{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var tracks []*model.Track
	err := r.db.WithContext(ctx).
		Order(sort + " " + order).
		Limit(limit).
		Offset(offset).
		Find(&tracks).Error
	if err != nil {
		return nil, 0, err
	}
	return tracks, total, nil
}

func (r *gormTrackRepository) ListByGenre(ctx context.Context, genre string, limit, offset int) ([]*model.Track, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&model.Track{}).Where("genre = ?", genre).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var tracks []*model.Track
	err := r.db.WithContext(ctx).
		Where("genre = ?", genre).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&tracks).Error
	if err != nil {
		return nil, 0, err
	}
	return tracks, total, nil
}

func (r *gormTrackRepository) Genres(ctx context.Context) ([]string, error) {
	var genres []string
	err := r.db.WithContext(ctx).Model(&model.Track{}).
		Distinct("genre").
		Where("genre <> ''").
		Order("genre").
		Pluck("genre", &genres).Error
	if err != nil {
		return nil, err
	}
	return genres, nil
}

func (r *gormTrackRepository) Search(ctx context.Context, query string, limit int) ([]*model.Track, error) {
	pattern := "%" + query + "%"
	var tracks []*model.Track
	err := r.db.WithContext(ctx).
		Where("title LIKE ? OR artist LIKE ? OR album LIKE ?", pattern, pattern, pattern).
		Order("created_at DESC").
		Limit(limit).
		Find(&tracks).Error
	if err != nil {
		return nil, err
	}
	return tracks, nil
}

// ByGenresOrArtists returns tracks matching any of the genres OR any of the
// artists, excluding the given ids, newest first. Both slices empty yields
// no filter, which the recommendation engine never requests.
func (r *gormTrackRepository) ByGenresOrArtists(ctx context.Context, genres, artists []string, excludeIDs []int64, limit int) ([]*model.Track, error) {
	q := r.db.WithContext(ctx).Model(&model.Track{})

	switch {
	case len(genres) > 0 && len(artists) > 0:
		q = q.Where("genre IN ? OR artist IN ?", genres, artists)
	case len(genres) > 0:
		q = q.Where("genre IN ?", genres)
	case len(artists) > 0:
		q = q.Where("artist IN ?", artists)
	}

	if len(excludeIDs) > 0 {
		q = q.Where("id NOT IN ?", excludeIDs)
	}

	var tracks []*model.Track
	err := q.Order("created_at DESC").Limit(limit).Find(&tracks).Error
	if err != nil {
		return nil, err
	}
	return tracks, nil
}

func (r *gormTrackRepository) SimilarTo(ctx context.Context, genre, artist string, excludeID int64, limit int) ([]*model.Track, error) {
	var tracks []*model.Track
	err := r.db.WithContext(ctx).
		Where("(genre = ? OR artist = ?) AND id <> ?", genre, artist, excludeID).
		Limit(limit).
		Find(&tracks).Error
	if err != nil {
		return nil, err
	}
	return tracks, nil
}

func (r *gormTrackRepository) ByArtist(ctx context.Context, artist string, limit int) ([]*model.Track, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&model.Track{}).Where("artist = ?", artist).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var tracks []*model.Track
	err := r.db.WithContext(ctx).
		Where("artist = ?", artist).
		Order("created_at DESC").
		Limit(limit).
		Find(&tracks).Error
	if err != nil {
		return nil, 0, err
	}
	return tracks, total, nil
}

func (r *gormTrackRepository) GenresByArtist(ctx context.Context, artist string) ([]string, error) {
	var genres []string
	err := r.db.WithContext(ctx).Model(&model.Track{}).
		Distinct("genre").
		Where("artist = ? AND genre <> ''", artist).
		Pluck("genre", &genres).Error
	if err != nil {
		return nil, err
	}
	return genres, nil
}
