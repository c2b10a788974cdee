package repository

import (
	"context"
	"time"

	"EchoFM/model"

	"gorm.io/gorm"
)

// PlaylistRepository defines the interface for playlist data operations.
type PlaylistRepository interface {
	Create(ctx context.Context, playlist *model.Playlist) error
	GetByID(ctx context.Context, id int64) (*model.Playlist, error)
	Update(ctx context.Context, playlist *model.Playlist) error
	Delete(ctx context.Context, id int64) error
	ListByUser(ctx context.Context, userID int64) ([]*model.Playlist, error)

	AddTrack(ctx context.Context, playlistID, trackID, addedBy int64) error
	RemoveTrack(ctx context.Context, playlistID, trackID int64) error
	Tracks(ctx context.Context, playlistID int64) ([]*model.PlaylistTrack, error)
	Reorder(ctx context.Context, playlistID int64, trackIDs []int64) error
}

type gormPlaylistRepository struct {
	db *gorm.DB
}

// NewGormPlaylistRepository creates a GORM-backed playlist repository.
func NewGormPlaylistRepository(db *gorm.DB) PlaylistRepository {
	return &gormPlaylistRepository{db: db}
}

func (r *gormPlaylistRepository) Create(ctx context.Context, playlist *model.Playlist) error {
	return r.db.WithContext(ctx).Create(playlist).Error
}

func (r *gormPlaylistRepository) GetByID(ctx context.Context, id int64) (*model.Playlist, error) {
	var playlist model.Playlist
	err := r.db.WithContext(ctx).First(&playlist, id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &playlist, nil
}

func (r *gormPlaylistRepository) Update(ctx context.Context, playlist *model.Playlist) error {
	playlist.UpdatedAt = time.Now()
	return r.db.WithContext(ctx).Save(playlist).Error
}

func (r *gormPlaylistRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("playlist_id = ?", id).Delete(&model.PlaylistTrack{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Playlist{}, id).Error
	})
}

func (r *gormPlaylistRepository) ListByUser(ctx context.Context, userID int64) ([]*model.Playlist, error) {
	var playlists []*model.Playlist
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&playlists).Error
	if err != nil {
		return nil, err
	}
	return playlists, nil
}

func (r *gormPlaylistRepository) AddTrack(ctx context.Context, playlistID, trackID, addedBy int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var maxPos *int
		err := tx.Model(&model.PlaylistTrack{}).
			Where("playlist_id = ?", playlistID).
			Select("MAX(position)").
			Scan(&maxPos).Error
		if err != nil {
			return err
		}

		position := 0
		if maxPos != nil {
			position = *maxPos + 1
		}

		entry := &model.PlaylistTrack{
			PlaylistID: playlistID,
			TrackID:    trackID,
			Position:   position,
			AddedBy:    addedBy,
		}
		return tx.Create(entry).Error
	})
}

func (r *gormPlaylistRepository) RemoveTrack(ctx context.Context, playlistID, trackID int64) error {
	return r.db.WithContext(ctx).
		Where("playlist_id = ? AND track_id = ?", playlistID, trackID).
		Delete(&model.PlaylistTrack{}).Error
}

func (r *gormPlaylistRepository) Tracks(ctx context.Context, playlistID int64) ([]*model.PlaylistTrack, error) {
	var entries []*model.PlaylistTrack
	err := r.db.WithContext(ctx).
		Preload("Track").
		Where("playlist_id = ?", playlistID).
		Order("position ASC").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *gormPlaylistRepository) Reorder(ctx context.Context, playlistID int64, trackIDs []int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i, trackID := range trackIDs {
			err := tx.Model(&model.PlaylistTrack{}).
				Where("playlist_id = ? AND track_id = ?", playlistID, trackID).
				Update("position", i).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
}
