package repository

import (
	"Novii/internal/model"
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SavedPostRepo interface {
	CreateSavedPost(ctx context.Context, saved *model.SavedPost) error
	DeleteSavedPost(ctx context.Context, userID, postID uuid.UUID) (bool, error)
	CheckSavedExists(ctx context.Context, userID, postID uuid.UUID) (bool, error)
	GetSavedPostIDs(ctx context.Context, userID uuid.UUID, limit, offset int) ([]uuid.UUID, error)
	GetSavedSet(ctx context.Context, userID uuid.UUID, postIDs []uuid.UUID) (map[uuid.UUID]bool, error)
}

type SavedPostRepoImpl struct {
	db *gorm.DB
}

func NewSavedPostRepo(db *gorm.DB) SavedPostRepo {
	return &SavedPostRepoImpl{db: db}
}

func (s *SavedPostRepoImpl) CreateSavedPost(ctx context.Context, saved *model.SavedPost) error {
	res := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(saved)
	if res.Error != nil {
		return translateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrDuplicate
	}
	return nil
}

func (s *SavedPostRepoImpl) DeleteSavedPost(ctx context.Context, userID, postID uuid.UUID) (bool, error) {
	res := s.db.WithContext(ctx).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Delete(&model.SavedPost{})
	return res.RowsAffected > 0, res.Error
}

func (s *SavedPostRepoImpl) CheckSavedExists(ctx context.Context, userID, postID uuid.UUID) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.SavedPost{}).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Count(&count).Error
	return count > 0, err
}

func (s *SavedPostRepoImpl) GetSavedPostIDs(ctx context.Context, userID uuid.UUID, limit, offset int) ([]uuid.UUID, error) {
	var postIDs []uuid.UUID
	err := s.db.WithContext(ctx).Model(&model.SavedPost{}).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Pluck("post_id", &postIDs).Error
	return postIDs, err
}

func (s *SavedPostRepoImpl) GetSavedSet(ctx context.Context, userID uuid.UUID, postIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	if len(postIDs) == 0 || userID == uuid.Nil {
		return map[uuid.UUID]bool{}, nil
	}
	var saved []uuid.UUID
	err := s.db.WithContext(ctx).Model(&model.SavedPost{}).
		Where("user_id = ? AND post_id IN ?", userID, postIDs).
		Pluck("post_id", &saved).Error
	if err != nil {
		return nil, err
	}
	return idSet(saved), nil
}
