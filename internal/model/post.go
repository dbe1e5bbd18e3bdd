package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Post struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	UserID        uuid.UUID `gorm:"type:uuid;not null;index:idx_posts_user_created" json:"userId"`
	Caption       *string   `gorm:"type:text" json:"caption"`
	ImageURL      *string   `gorm:"column:image_url;type:text" json:"imageUrl"`
	Location      *string   `gorm:"type:text" json:"location"`
	LikesCount    int       `gorm:"not null;default:0" json:"likesCount"`
	CommentsCount int       `gorm:"not null;default:0" json:"commentsCount"`
	IsArchived    bool      `gorm:"not null;default:false" json:"isArchived"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`

	// 关联关系
	User Profile `gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Post) TableName() string {
	return "posts"
}

func (p *Post) BeforeCreate(*gorm.DB) error {
	ensureID(&p.ID)
	return nil
}

type Comment struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	PostID     uuid.UUID `gorm:"type:uuid;not null;index:idx_comments_post_created" json:"postId"`
	UserID     uuid.UUID `gorm:"type:uuid;not null;index:idx_comments_user" json:"userId"`
	Content    string    `gorm:"type:text;not null" json:"content"`
	LikesCount int       `gorm:"not null;default:0" json:"likesCount"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`

	Post Post    `gorm:"foreignKey:PostID;references:ID;constraint:OnDelete:CASCADE" json:"-"`
	User Profile `gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Comment) TableName() string {
	return "comments"
}

func (c *Comment) BeforeCreate(*gorm.DB) error {
	ensureID(&c.ID)
	return nil
}

type SavedPost struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_saved_posts_user_post" json:"userId"`
	PostID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_saved_posts_user_post" json:"postId"`
	CreatedAt time.Time `json:"createdAt"`
}

func (SavedPost) TableName() string {
	return "saved_posts"
}

func (s *SavedPost) BeforeCreate(*gorm.DB) error {
	ensureID(&s.ID)
	return nil
}
