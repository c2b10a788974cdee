package model

import "time"

// Track represents an audio track in the catalog.
type Track struct {
	ID         int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	Title      string    `json:"title" gorm:"size:255;not null"`
	Artist     string    `json:"artist" gorm:"size:255;index"`
	Album      string    `json:"album" gorm:"size:255"`
	Genre      string    `json:"genre" gorm:"size:100;index"`
	Duration   float32   `json:"duration"` // seconds
	AudioURL   string    `json:"audioUrl" gorm:"size:512"`
	CoverURL   string    `json:"coverUrl" gorm:"size:512"`
	UploadedBy int64     `json:"uploadedBy" gorm:"index"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// TableName specifies the table name.
func (Track) TableName() string {
	return "tracks"
}
