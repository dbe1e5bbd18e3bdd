package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Profile struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Username       string    `gorm:"type:text;not null;uniqueIndex:uq_profiles_username" json:"username"`
	FullName       *string   `gorm:"type:text" json:"fullName"`
	Bio            *string   `gorm:"type:text" json:"bio"`
	AvatarURL      *string   `gorm:"column:avatar_url;type:text" json:"avatarUrl"`
	CoverURL       *string   `gorm:"column:cover_url;type:text" json:"coverUrl"`
	Website        *string   `gorm:"type:text" json:"website"`
	Location       *string   `gorm:"type:text" json:"location"`
	FollowersCount int       `gorm:"not null;default:0" json:"followersCount"`
	FollowingCount int       `gorm:"not null;default:0" json:"followingCount"`
	PostsCount     int       `gorm:"not null;default:0" json:"postsCount"`
	IsVerified     bool      `gorm:"not null;default:false" json:"isVerified"`
	IsPrivate      bool      `gorm:"not null;default:false" json:"isPrivate"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

func (Profile) TableName() string {
	return "profiles"
}

func (p *Profile) BeforeCreate(*gorm.DB) error {
	ensureID(&p.ID)
	return nil
}

// Account 登录凭据，与 Profile 一对一并共享主键
type Account struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Email        string    `gorm:"type:text;not null;uniqueIndex:uq_accounts_email" json:"email"`
	PasswordHash string    `gorm:"type:text;not null" json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`

	Profile Profile `gorm:"foreignKey:ID;references:ID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Account) TableName() string {
	return "accounts"
}
