package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Follow struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	FollowerID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_follows_pair" json:"followerId"`
	FollowingID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_follows_pair;index:idx_follows_following" json:"followingId"`
	CreatedAt   time.Time `json:"createdAt"`
}

func (Follow) TableName() string {
	return "follows"
}

func (f *Follow) BeforeCreate(*gorm.DB) error {
	ensureID(&f.ID)
	return nil
}
