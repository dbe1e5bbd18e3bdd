package repository

import (
	"Novii/internal/model"
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CommentRepo interface {
	CreateComment(ctx context.Context, comment *model.Comment) error
	GetComment(ctx context.Context, id uuid.UUID) (*model.Comment, error)
	GetCommentsByPost(ctx context.Context, postID uuid.UUID, limit, offset int) ([]*model.Comment, error)
	DeleteComment(ctx context.Context, comment *model.Comment) error
}

type CommentRepoImpl struct {
	db *gorm.DB
}

func NewCommentRepo(db *gorm.DB) CommentRepo {
	return &CommentRepoImpl{db: db}
}

// CreateComment 创建评论并同步帖子评论数
func (s *CommentRepoImpl) CreateComment(ctx context.Context, comment *model.Comment) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(comment).Error; err != nil {
			return translateError(err)
		}
		return adjustCounter(tx, "posts", "comments_count", comment.PostID, 1)
	})
}

func (s *CommentRepoImpl) GetComment(ctx context.Context, id uuid.UUID) (*model.Comment, error) {
	var comment model.Comment
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&comment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &comment, nil
}

// GetCommentsByPost 按时间正序分页获取帖子评论
func (s *CommentRepoImpl) GetCommentsByPost(ctx context.Context, postID uuid.UUID, limit, offset int) ([]*model.Comment, error) {
	var comments []*model.Comment
	err := s.db.WithContext(ctx).
		Where("post_id = ?", postID).
		Order("created_at ASC").
		Order("id ASC").
		Limit(limit).
		Offset(offset).
		Find(&comments).Error
	return comments, err
}

// DeleteComment 删除评论，其点赞由外键级联删除
func (s *CommentRepoImpl) DeleteComment(ctx context.Context, comment *model.Comment) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ?", comment.ID).Delete(&model.Comment{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		return adjustCounter(tx, "posts", "comments_count", comment.PostID, -1)
	})
}
