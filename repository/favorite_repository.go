package repository

import (
	"context"

	"EchoFM/model"

	"gorm.io/gorm"
)

// FavoriteRepository defines the interface for favorite data operations.
// Beyond CRUD it carries the query surface the recommendation engine needs:
// favorites joined with track attributes, taste-neighbor lookup and a
// system-wide sample for the popularity fallback.
type FavoriteRepository interface {
	Add(ctx context.Context, userID, trackID int64) error
	Remove(ctx context.Context, userID, trackID int64) error
	IsFavorited(ctx context.Context, userID, trackID int64) (bool, error)
	ListByUser(ctx context.Context, userID int64, limit, offset int) ([]*model.Favorite, int64, error)

	// WithTracks returns up to limit favorites of a user with the track
	// preloaded, oldest first so frequency ties keep a stable order.
	WithTracks(ctx context.Context, userID int64, limit int) ([]*model.Favorite, error)

	// NeighborUserIDs returns distinct users other than excludeUserID who
	// favorited any of the given tracks.
	NeighborUserIDs(ctx context.Context, trackIDs []int64, excludeUserID int64, limit int) ([]int64, error)

	// ByUsersExcludingTracks returns favorites of the given users whose
	// track is not in excludeTrackIDs, with the track preloaded.
	ByUsersExcludingTracks(ctx context.Context, userIDs, excludeTrackIDs []int64, limit int) ([]*model.Favorite, error)

	// Sample returns up to limit favorite rows system-wide with the track
	// preloaded, for popularity counting.
	Sample(ctx context.Context, limit int) ([]*model.Favorite, error)
}

type gormFavoriteRepository struct {
	db *gorm.DB
}

// NewGormFavoriteRepository creates a GORM-backed favorite repository.
func NewGormFavoriteRepository(db *gorm.DB) FavoriteRepository {
	return &gormFavoriteRepository{db: db}
}

func (r *gormFavoriteRepository) Add(ctx context.Context, userID, trackID int64) error {
	fav := &model.Favorite{UserID: userID, TrackID: trackID}
	return r.db.WithContext(ctx).Create(fav).Error
}

func (r *gormFavoriteRepository) Remove(ctx context.Context, userID, trackID int64) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND track_id = ?", userID, trackID).
		Delete(&model.Favorite{}).Error
}

func (r *gormFavoriteRepository) IsFavorited(ctx context.Context, userID, trackID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Favorite{}).
		Where("user_id = ? AND track_id = ?", userID, trackID).
		Count(&count).Error
	return count > 0, err
}

func (r *gormFavoriteRepository) ListByUser(ctx context.Context, userID int64, limit, offset int) ([]*model.Favorite, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&model.Favorite{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var favorites []*model.Favorite
	err := r.db.WithContext(ctx).
		Preload("Track").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&favorites).Error
	if err != nil {
		return nil, 0, err
	}
	return favorites, total, nil
}

func (r *gormFavoriteRepository) WithTracks(ctx context.Context, userID int64, limit int) ([]*model.Favorite, error) {
	var favorites []*model.Favorite
	err := r.db.WithContext(ctx).
		Preload("Track").
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Limit(limit).
		Find(&favorites).Error
	if err != nil {
		return nil, err
	}
	return favorites, nil
}

func (r *gormFavoriteRepository) NeighborUserIDs(ctx context.Context, trackIDs []int64, excludeUserID int64, limit int) ([]int64, error) {
	var userIDs []int64
	err := r.db.WithContext(ctx).Model(&model.Favorite{}).
		Distinct("user_id").
		Where("track_id IN ? AND user_id <> ?", trackIDs, excludeUserID).
		Limit(limit).
		Pluck("user_id", &userIDs).Error
	if err != nil {
		return nil, err
	}
	return userIDs, nil
}

func (r *gormFavoriteRepository) ByUsersExcludingTracks(ctx context.Context, userIDs, excludeTrackIDs []int64, limit int) ([]*model.Favorite, error) {
	q := r.db.WithContext(ctx).
		Preload("Track").
		Where("user_id IN ?", userIDs)
	if len(excludeTrackIDs) > 0 {
		q = q.Where("track_id NOT IN ?", excludeTrackIDs)
	}

	var favorites []*model.Favorite
	err := q.Limit(limit).Find(&favorites).Error
	if err != nil {
		return nil, err
	}
	return favorites, nil
}

func (r *gormFavoriteRepository) Sample(ctx context.Context, limit int) ([]*model.Favorite, error) {
	var favorites []*model.Favorite
	err := r.db.WithContext(ctx).
		Preload("Track").
		Limit(limit).
		Find(&favorites).Error
	if err != nil {
		return nil, err
	}
	return favorites, nil
}
