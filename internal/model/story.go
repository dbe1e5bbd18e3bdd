package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	MediaTypeImage = "image"
	MediaTypeVideo = "video"
)

type Story struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	UserID     uuid.UUID `gorm:"type:uuid;not null;index:idx_stories_user_expires" json:"userId"`
	MediaURL   string    `gorm:"column:media_url;type:text;not null" json:"mediaUrl"`
	MediaType  string    `gorm:"type:text;not null;default:image" json:"mediaType"`
	ViewsCount int       `gorm:"not null;default:0" json:"viewsCount"`
	ExpiresAt  time.Time `gorm:"not null;index:idx_stories_user_expires" json:"expiresAt"`
	CreatedAt  time.Time `json:"createdAt"`
}

func (Story) TableName() string {
	return "stories"
}

func (s *Story) BeforeCreate(*gorm.DB) error {
	ensureID(&s.ID)
	if s.MediaType == "" {
		s.MediaType = MediaTypeImage
	}
	return nil
}

// ActiveAt 快拍在 now 时刻是否仍处于有效期
func (s *Story) ActiveAt(now time.Time) bool {
	return s.ExpiresAt.After(now)
}

type StoryView struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	StoryID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_story_views_viewer" json:"storyId"`
	UserID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_story_views_viewer" json:"userId"`
	ViewedAt time.Time `gorm:"not null;autoCreateTime" json:"viewedAt"`
}

func (StoryView) TableName() string {
	return "story_views"
}

func (v *StoryView) BeforeCreate(*gorm.DB) error {
	ensureID(&v.ID)
	return nil
}
