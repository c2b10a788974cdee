package model

import "time"

// PlayHistory records a single playback of a track by a user.
type PlayHistory struct {
	ID       int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID   int64     `json:"userId" gorm:"index;not null"`
	TrackID  int64     `json:"trackId" gorm:"index;not null"`
	Track    Track     `json:"track" gorm:"foreignKey:TrackID"`
	PlayedAt time.Time `json:"playedAt" gorm:"index"`
}

// TableName specifies the table name.
func (PlayHistory) TableName() string {
	return "play_history"
}
