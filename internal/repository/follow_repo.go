package repository

import (
	"Novii/internal/model"
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type FollowRepo interface {
	CreateFollow(ctx context.Context, follow *model.Follow) error
	DeleteFollow(ctx context.Context, followerID, followingID uuid.UUID) (bool, error)
	GetFollow(ctx context.Context, followerID, followingID uuid.UUID) (*model.Follow, error)
	GetFollowers(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*model.Follow, error)
	GetFollowing(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*model.Follow, error)
	GetFollowingIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
	GetFollowingSet(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]bool, error)
}

type FollowRepoImpl struct {
	db *gorm.DB
}

func NewFollowRepo(db *gorm.DB) FollowRepo {
	return &FollowRepoImpl{db: db}
}

// CreateFollow 创建关注关系，并同步双方的粉丝数与关注数
func (s *FollowRepoImpl) CreateFollow(ctx context.Context, follow *model.Follow) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(follow)
		if res.Error != nil {
			return translateError(res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrDuplicate
		}
		if err := adjustCounter(tx, "profiles", "followers_count", follow.FollowingID, 1); err != nil {
			return err
		}
		return adjustCounter(tx, "profiles", "following_count", follow.FollowerID, 1)
	})
}

// DeleteFollow 删除关注关系，返回是否确实删除
func (s *FollowRepoImpl) DeleteFollow(ctx context.Context, followerID, followingID uuid.UUID) (bool, error) {
	removed := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("follower_id = ? AND following_id = ?", followerID, followingID).Delete(&model.Follow{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		removed = true
		if err := adjustCounter(tx, "profiles", "followers_count", followingID, -1); err != nil {
			return err
		}
		return adjustCounter(tx, "profiles", "following_count", followerID, -1)
	})
	return removed, err
}

// GetFollow 获取关注关系，不存在时返回 nil
func (s *FollowRepoImpl) GetFollow(ctx context.Context, followerID, followingID uuid.UUID) (*model.Follow, error) {
	var follow model.Follow
	result := s.db.WithContext(ctx).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		First(&follow)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return &follow, nil
}

// GetFollowers 获取用户的粉丝列表
func (s *FollowRepoImpl) GetFollowers(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*model.Follow, error) {
	var follows []*model.Follow
	err := s.db.WithContext(ctx).
		Where("following_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&follows).Error
	return follows, err
}

// GetFollowing 获取用户的关注列表
func (s *FollowRepoImpl) GetFollowing(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*model.Follow, error) {
	var follows []*model.Follow
	err := s.db.WithContext(ctx).
		Where("follower_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&follows).Error
	return follows, err
}

func (s *FollowRepoImpl) GetFollowingIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := s.db.WithContext(ctx).Model(&model.Follow{}).
		Where("follower_id = ?", userID).
		Pluck("following_id", &ids).Error
	return ids, err
}

// GetFollowingSet 返回 ids 中被 userID 关注的用户集合
func (s *FollowRepoImpl) GetFollowingSet(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]bool, error) {
	if len(ids) == 0 || userID == uuid.Nil {
		return map[uuid.UUID]bool{}, nil
	}
	var following []uuid.UUID
	err := s.db.WithContext(ctx).Model(&model.Follow{}).
		Where("follower_id = ? AND following_id IN ?", userID, ids).
		Pluck("following_id", &following).Error
	if err != nil {
		return nil, err
	}
	return idSet(following), nil
}
