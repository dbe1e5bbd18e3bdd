package model

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrLikeTargetInvalid = errors.New("like must reference exactly one of post or comment")

// TargetKind 点赞目标类型
type TargetKind string

const (
	TargetPost    TargetKind = "post"
	TargetComment TargetKind = "comment"
)

// LikeTarget 点赞目标，只能通过 PostTarget / CommentTarget 构造
type LikeTarget struct {
	Kind TargetKind
	ID   uuid.UUID
}

func PostTarget(id uuid.UUID) LikeTarget {
	return LikeTarget{Kind: TargetPost, ID: id}
}

func CommentTarget(id uuid.UUID) LikeTarget {
	return LikeTarget{Kind: TargetComment, ID: id}
}

func (t LikeTarget) Validate() error {
	if t.ID == uuid.Nil || (t.Kind != TargetPost && t.Kind != TargetComment) {
		return ErrLikeTargetInvalid
	}
	return nil
}

// Table 目标实体所在表
func (t LikeTarget) Table() string {
	if t.Kind == TargetComment {
		return "comments"
	}
	return "posts"
}

// Column likes 表中引用目标的列
func (t LikeTarget) Column() string {
	if t.Kind == TargetComment {
		return "comment_id"
	}
	return "post_id"
}

// Like 存储上保留两个可空外键，由 CHECK 约束保证只有一个非空
type Like struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	PostID    *uuid.UUID `gorm:"type:uuid" json:"postId"`
	CommentID *uuid.UUID `gorm:"type:uuid" json:"commentId"`
	UserID    uuid.UUID  `gorm:"type:uuid;not null" json:"userId"`
	CreatedAt time.Time  `json:"createdAt"`
}

func (Like) TableName() string {
	return "likes"
}

func (l *Like) BeforeCreate(*gorm.DB) error {
	if _, err := l.Target(); err != nil {
		return err
	}
	ensureID(&l.ID)
	return nil
}

// NewLike 根据目标构造点赞记录
func NewLike(userID uuid.UUID, target LikeTarget) (*Like, error) {
	if err := target.Validate(); err != nil {
		return nil, err
	}
	like := &Like{UserID: userID}
	id := target.ID
	switch target.Kind {
	case TargetPost:
		like.PostID = &id
	case TargetComment:
		like.CommentID = &id
	}
	return like, nil
}

// Target 还原点赞目标
func (l *Like) Target() (LikeTarget, error) {
	switch {
	case l.PostID != nil && l.CommentID == nil:
		return PostTarget(*l.PostID), nil
	case l.CommentID != nil && l.PostID == nil:
		return CommentTarget(*l.CommentID), nil
	default:
		return LikeTarget{}, ErrLikeTargetInvalid
	}
}
