package model

import (
	"regexp"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// 已知的通知类型，type 为开放标签，消费方自行识别
const (
	NotificationLike    = "like"
	NotificationComment = "comment"
	NotificationFollow  = "follow"
	NotificationMention = "mention"
)

var notificationTypeRegex = regexp.MustCompile(`^[a-z_]{1,32}$`)

// ValidNotificationType 校验通知类型标签格式
func ValidNotificationType(t string) bool {
	return notificationTypeRegex.MatchString(t)
}

type Notification struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	UserID    uuid.UUID  `gorm:"type:uuid;not null;index:idx_notifications_user_created" json:"userId"`
	ActorID   *uuid.UUID `gorm:"type:uuid" json:"actorId"`
	Type      string     `gorm:"type:text;not null" json:"type"`
	PostID    *uuid.UUID `gorm:"type:uuid" json:"postId"`
	CommentID *uuid.UUID `gorm:"type:uuid" json:"commentId"`
	Content   *string    `gorm:"type:text" json:"content"`
	IsRead    bool       `gorm:"not null;default:false" json:"isRead"`
	CreatedAt time.Time  `json:"createdAt"`
}

func (Notification) TableName() string {
	return "notifications"
}

func (n *Notification) BeforeCreate(*gorm.DB) error {
	ensureID(&n.ID)
	return nil
}
