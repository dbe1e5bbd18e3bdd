package repository

import (
	"Novii/internal/model"
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type StoryRepo interface {
	CreateStory(ctx context.Context, story *model.Story) error
	GetStory(ctx context.Context, id uuid.UUID) (*model.Story, error)
	GetActiveStoriesByUsers(ctx context.Context, userIDs []uuid.UUID, now time.Time) ([]*model.Story, error)
	CreateStoryView(ctx context.Context, view *model.StoryView) error
	GetStoryViewers(ctx context.Context, storyID uuid.UUID, limit, offset int) ([]*model.StoryView, error)
	GetViewedSet(ctx context.Context, userID uuid.UUID, storyIDs []uuid.UUID) (map[uuid.UUID]bool, error)
	DeleteStory(ctx context.Context, id uuid.UUID) error
	DeleteExpiredStories(ctx context.Context, before time.Time) (int64, error)
}

type StoryRepoImpl struct {
	db *gorm.DB
}

func NewStoryRepo(db *gorm.DB) StoryRepo {
	return &StoryRepoImpl{db: db}
}

func (s *StoryRepoImpl) CreateStory(ctx context.Context, story *model.Story) error {
	return translateError(s.db.WithContext(ctx).Create(story).Error)
}

func (s *StoryRepoImpl) GetStory(ctx context.Context, id uuid.UUID) (*model.Story, error) {
	var story model.Story
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&story).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &story, nil
}

// GetActiveStoriesByUsers 获取指定用户在 now 时刻仍有效的快拍，按作者分组、时间正序
func (s *StoryRepoImpl) GetActiveStoriesByUsers(ctx context.Context, userIDs []uuid.UUID, now time.Time) ([]*model.Story, error) {
	if len(userIDs) == 0 {
		return []*model.Story{}, nil
	}
	var stories []*model.Story
	err := s.db.WithContext(ctx).
		Where("user_id IN ?", userIDs).
		Where("expires_at > ?", now).
		Order("user_id").
		Order("created_at ASC").
		Find(&stories).Error
	return stories, err
}

// CreateStoryView 记录浏览，同一浏览者重复浏览返回 ErrDuplicate 且 views_count 不变
func (s *StoryRepoImpl) CreateStoryView(ctx context.Context, view *model.StoryView) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(view)
		if res.Error != nil {
			return translateError(res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrDuplicate
		}
		return adjustCounter(tx, "stories", "views_count", view.StoryID, 1)
	})
}

func (s *StoryRepoImpl) GetStoryViewers(ctx context.Context, storyID uuid.UUID, limit, offset int) ([]*model.StoryView, error) {
	var views []*model.StoryView
	err := s.db.WithContext(ctx).
		Where("story_id = ?", storyID).
		Order("viewed_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&views).Error
	return views, err
}

func (s *StoryRepoImpl) GetViewedSet(ctx context.Context, userID uuid.UUID, storyIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	if len(storyIDs) == 0 || userID == uuid.Nil {
		return map[uuid.UUID]bool{}, nil
	}
	var viewed []uuid.UUID
	err := s.db.WithContext(ctx).Model(&model.StoryView{}).
		Where("user_id = ? AND story_id IN ?", userID, storyIDs).
		Pluck("story_id", &viewed).Error
	if err != nil {
		return nil, err
	}
	return idSet(viewed), nil
}

func (s *StoryRepoImpl) DeleteStory(ctx context.Context, id uuid.UUID) error {
	return s.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Story{}).Error
}

// DeleteExpiredStories 清理 before 之前已过期的快拍
func (s *StoryRepoImpl) DeleteExpiredStories(ctx context.Context, before time.Time) (int64, error) {
	res := s.db.WithContext(ctx).Where("expires_at <= ?", before).Delete(&model.Story{})
	return res.RowsAffected, res.Error
}
