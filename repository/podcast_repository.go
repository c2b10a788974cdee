package repository

import (
	"context"

	"EchoFM/model"

	"gorm.io/gorm"
)

// PodcastRepository defines the interface for podcast data operations.
type PodcastRepository interface {
	Create(ctx context.Context, podcast *model.Podcast) error
	GetByID(ctx context.Context, id int64) (*model.Podcast, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, category string, limit, offset int) ([]*model.Podcast, int64, error)
	Episodes(ctx context.Context, podcastID int64) ([]*model.PodcastEpisode, error)
	CreateEpisode(ctx context.Context, episode *model.PodcastEpisode) error
}

type gormPodcastRepository struct {
	db *gorm.DB
}

// NewGormPodcastRepository creates a GORM-backed podcast repository.
func NewGormPodcastRepository(db *gorm.DB) PodcastRepository {
	return &gormPodcastRepository{db: db}
}

func (r *gormPodcastRepository) Create(ctx context.Context, podcast *model.Podcast) error {
	return r.db.WithContext(ctx).Create(podcast).Error
}

func (r *gormPodcastRepository) GetByID(ctx context.Context, id int64) (*model.Podcast, error) {
	var podcast model.Podcast
	err := r.db.WithContext(ctx).First(&podcast, id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &podcast, nil
}

func (r *gormPodcastRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("podcast_id = ?", id).Delete(&model.PodcastEpisode{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Podcast{}, id).Error
	})
}

func (r *gormPodcastRepository) List(ctx context.Context, category string, limit, offset int) ([]*model.Podcast, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Podcast{})
	if category != "" {
		q = q.Where("category = ?", category)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var podcasts []*model.Podcast
	err := q.Order("created_at DESC").Limit(limit).Offset(offset).Find(&podcasts).Error
	if err != nil {
		return nil, 0, err
	}
	return podcasts, total, nil
}

func (r *gormPodcastRepository) Episodes(ctx context.Context, podcastID int64) ([]*model.PodcastEpisode, error) {
	var episodes []*model.PodcastEpisode
	err := r.db.WithContext(ctx).
		Where("podcast_id = ?", podcastID).
		Order("published_at DESC").
		Find(&episodes).Error
	if err != nil {
		return nil, err
	}
	return episodes, nil
}

func (r *gormPodcastRepository) CreateEpisode(ctx context.Context, episode *model.PodcastEpisode) error {
	return r.db.WithContext(ctx).Create(episode).Error
}
