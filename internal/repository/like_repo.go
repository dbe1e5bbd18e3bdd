package repository

import (
	"Novii/internal/model"
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type LikeRepo interface {
	CreateLike(ctx context.Context, like *model.Like) error
	DeleteLike(ctx context.Context, userID uuid.UUID, target model.LikeTarget) (bool, error)
	CheckLikeExists(ctx context.Context, userID uuid.UUID, target model.LikeTarget) (bool, error)
	GetLikedSet(ctx context.Context, userID uuid.UUID, kind model.TargetKind, ids []uuid.UUID) (map[uuid.UUID]bool, error)
	GetLikedPostIDs(ctx context.Context, userID uuid.UUID, limit, offset int) ([]uuid.UUID, error)
}

type LikeRepoImpl struct {
	db *gorm.DB
}

func NewLikeRepo(db *gorm.DB) LikeRepo {
	return &LikeRepoImpl{db: db}
}

// CreateLike 插入点赞并在同一事务内为目标 likes_count +1
// 已点赞时返回 ErrDuplicate，计数不变
func (s *LikeRepoImpl) CreateLike(ctx context.Context, like *model.Like) error {
	target, err := like.Target()
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(like)
		if res.Error != nil {
			return translateError(res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrDuplicate
		}
		return adjustCounter(tx, target.Table(), "likes_count", target.ID, 1)
	})
}

// DeleteLike 取消点赞，仅在确实删除了记录时 likes_count -1
func (s *LikeRepoImpl) DeleteLike(ctx context.Context, userID uuid.UUID, target model.LikeTarget) (bool, error) {
	if err := target.Validate(); err != nil {
		return false, err
	}
	removed := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("user_id = ? AND "+target.Column()+" = ?", userID, target.ID).Delete(&model.Like{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		removed = true
		return adjustCounter(tx, target.Table(), "likes_count", target.ID, -1)
	})
	return removed, err
}

func (s *LikeRepoImpl) CheckLikeExists(ctx context.Context, userID uuid.UUID, target model.LikeTarget) (bool, error) {
	if err := target.Validate(); err != nil {
		return false, err
	}
	var count int64
	err := s.db.WithContext(ctx).Model(&model.Like{}).
		Where("user_id = ? AND "+target.Column()+" = ?", userID, target.ID).
		Count(&count).Error
	return count > 0, err
}

// GetLikedSet 返回 ids 中已被 userID 点赞的目标集合
func (s *LikeRepoImpl) GetLikedSet(ctx context.Context, userID uuid.UUID, kind model.TargetKind, ids []uuid.UUID) (map[uuid.UUID]bool, error) {
	if len(ids) == 0 || userID == uuid.Nil {
		return map[uuid.UUID]bool{}, nil
	}
	column := model.LikeTarget{Kind: kind}.Column()
	var liked []uuid.UUID
	err := s.db.WithContext(ctx).Model(&model.Like{}).
		Where("user_id = ? AND "+column+" IN ?", userID, ids).
		Pluck(column, &liked).Error
	if err != nil {
		return nil, err
	}
	return idSet(liked), nil
}

func (s *LikeRepoImpl) GetLikedPostIDs(ctx context.Context, userID uuid.UUID, limit, offset int) ([]uuid.UUID, error) {
	var postIDs []uuid.UUID
	err := s.db.WithContext(ctx).Model(&model.Like{}).
		Where("user_id = ? AND post_id IS NOT NULL", userID).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Pluck("post_id", &postIDs).Error
	return postIDs, err
}
