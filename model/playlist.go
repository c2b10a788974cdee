package model

import "time"

// Playlist represents a user-owned playlist.
type Playlist struct {
	ID          int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID      int64     `json:"userId" gorm:"index;not null"`
	Name        string    `json:"name" gorm:"size:255;not null"`
	Description string    `json:"description" gorm:"type:text"`
	IsPublic    bool      `json:"isPublic" gorm:"default:false"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// TableName specifies the table name.
func (Playlist) TableName() string {
	return "playlists"
}

// PlaylistTrack is a track entry inside a playlist, ordered by Position.
type PlaylistTrack struct {
	ID         int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	PlaylistID int64     `json:"playlistId" gorm:"uniqueIndex:idx_playlist_track;index;not null"`
	TrackID    int64     `json:"trackId" gorm:"uniqueIndex:idx_playlist_track;not null"`
	Track      Track     `json:"track" gorm:"foreignKey:TrackID"`
	Position   int       `json:"position" gorm:"not null"`
	AddedBy    int64     `json:"addedBy"`
	CreatedAt  time.Time `json:"createdAt"`
}

// TableName specifies the table name.
func (PlaylistTrack) TableName() string {
	return "playlist_tracks"
}
