package model

import "time"

// Podcast represents a podcast show.
type Podcast struct {
	ID          int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	Title       string    `json:"title" gorm:"size:255;not null"`
	Author      string    `json:"author" gorm:"size:255;index"`
	Description string    `json:"description" gorm:"type:text"`
	Category    string    `json:"category" gorm:"size:100;index"`
	CoverURL    string    `json:"coverUrl" gorm:"size:512"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// TableName specifies the table name.
func (Podcast) TableName() string {
	return "podcasts"
}

// PodcastEpisode represents a single episode of a podcast.
type PodcastEpisode struct {
	ID          int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	PodcastID   int64     `json:"podcastId" gorm:"index;not null"`
	Title       string    `json:"title" gorm:"size:255;not null"`
	Description string    `json:"description" gorm:"type:text"`
	AudioURL    string    `json:"audioUrl" gorm:"size:512"`
	Duration    float32   `json:"duration"` // seconds
	PublishedAt time.Time `json:"publishedAt"`
	CreatedAt   time.Time `json:"createdAt"`
}

// TableName specifies the table name.
func (PodcastEpisode) TableName() string {
	return "podcast_episodes"
}
