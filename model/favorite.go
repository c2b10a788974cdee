package model

import "time"

// Favorite marks a track as liked by a user. A user can favorite a track
// at most once, enforced by the composite unique index.
type Favorite struct {
	ID        int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID    int64     `json:"userId" gorm:"uniqueIndex:idx_fav_user_track;index;not null"`
	TrackID   int64     `json:"trackId" gorm:"uniqueIndex:idx_fav_user_track;index;not null"`
	Track     Track     `json:"track" gorm:"foreignKey:TrackID"`
	CreatedAt time.Time `json:"createdAt"`
}

// TableName specifies the table name.
func (Favorite) TableName() string {
	return "favorites"
}
