package repository

import (
	"context"
	"time"

	"EchoFM/model"

	"gorm.io/gorm"
)

// HistoryRepository defines the interface for play-history operations.
type HistoryRepository interface {
	Record(ctx context.Context, userID, trackID int64) error
	ListByUser(ctx context.Context, userID int64, limit int) ([]*model.PlayHistory, error)
	Clear(ctx context.Context, userID int64) error
}

type gormHistoryRepository struct {
	db *gorm.DB
}

// NewGormHistoryRepository creates a GORM-backed history repository.
func NewGormHistoryRepository(db *gorm.DB) HistoryRepository {
	return &gormHistoryRepository{db: db}
}

func (r *gormHistoryRepository) Record(ctx context.Context, userID, trackID int64) error {
	entry := &model.PlayHistory{
		UserID:   userID,
		TrackID:  trackID,
		PlayedAt: time.Now(),
	}
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *gormHistoryRepository) ListByUser(ctx context.Context, userID int64, limit int) ([]*model.PlayHistory, error) {
	var entries []*model.PlayHistory
	err := r.db.WithContext(ctx).
		Preload("Track").
		Where("user_id = ?", userID).
		Order("played_at DESC").
		Limit(limit).
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *gormHistoryRepository) Clear(ctx context.Context, userID int64) error {
	return r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&model.PlayHistory{}).Error
}
