package repository

import (
	"Novii/internal/model"
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PostRepo interface {
	CreatePost(ctx context.Context, post *model.Post) error
	GetPost(ctx context.Context, id uuid.UUID) (*model.Post, error)
	GetPostsByIDs(ctx context.Context, ids []uuid.UUID) ([]*model.Post, error)
	GetPostsByUser(ctx context.Context, userID uuid.UUID, includeArchived bool, limit, offset int) ([]*model.Post, error)
	GetFeed(ctx context.Context, userID uuid.UUID, cursor *Cursor, limit int) ([]*model.Post, error)
	GetExplore(ctx context.Context, viewerID uuid.UUID, limit, offset int) ([]*model.Post, error)
	UpdatePost(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error
	DeletePost(ctx context.Context, post *model.Post) error
}

type PostRepoImpl struct {
	db *gorm.DB
}

func NewPostRepo(db *gorm.DB) PostRepo {
	return &PostRepoImpl{db: db}
}

// CreatePost 创建帖子并同步作者帖子数
func (s *PostRepoImpl) CreatePost(ctx context.Context, post *model.Post) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(post).Error; err != nil {
			return translateError(err)
		}
		return adjustCounter(tx, "profiles", "posts_count", post.UserID, 1)
	})
}

func (s *PostRepoImpl) GetPost(ctx context.Context, id uuid.UUID) (*model.Post, error) {
	var post model.Post
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&post).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &post, nil
}

// GetPostsByIDs 批量获取帖子，结果顺序与 ids 一致
func (s *PostRepoImpl) GetPostsByIDs(ctx context.Context, ids []uuid.UUID) ([]*model.Post, error) {
	if len(ids) == 0 {
		return []*model.Post{}, nil
	}
	var posts []*model.Post
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&posts).Error; err != nil {
		return nil, err
	}

	byID := make(map[uuid.UUID]*model.Post, len(posts))
	for _, p := range posts {
		byID[p.ID] = p
	}
	ordered := make([]*model.Post, 0, len(posts))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			ordered = append(ordered, p)
		}
	}
	return ordered, nil
}

func (s *PostRepoImpl) GetPostsByUser(ctx context.Context, userID uuid.UUID, includeArchived bool, limit, offset int) ([]*model.Post, error) {
	query := s.db.WithContext(ctx).Where("user_id = ?", userID)
	if !includeArchived {
		query = query.Where("is_archived = ?", false)
	}
	var posts []*model.Post
	err := query.
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	return posts, err
}

// GetFeed 关注的人以及自己的未归档帖子，按时间倒序
func (s *PostRepoImpl) GetFeed(ctx context.Context, userID uuid.UUID, cursor *Cursor, limit int) ([]*model.Post, error) {
	db := s.db.WithContext(ctx)
	following := db.Model(&model.Follow{}).Select("following_id").Where("follower_id = ?", userID)

	query := db.
		Where("is_archived = ?", false).
		Where(db.Where("user_id = ?", userID).Or("user_id IN (?)", following))
	query = applyCursor(query, cursor, "")

	var posts []*model.Post
	err := query.
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&posts).Error
	return posts, err
}

// GetExplore 公开账号的最新帖子，不含浏览者自己
func (s *PostRepoImpl) GetExplore(ctx context.Context, viewerID uuid.UUID, limit, offset int) ([]*model.Post, error) {
	var posts []*model.Post
	err := s.db.WithContext(ctx).
		Joins("JOIN profiles pr ON pr.id = posts.user_id").
		Where("pr.is_private = ?", false).
		Where("posts.is_archived = ?", false).
		Where("posts.user_id <> ?", viewerID).
		Order("posts.created_at DESC").
		Order("posts.id DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	return posts, err
}

// UpdatePost 局部更新帖子，计数列不允许通过此方法修改
func (s *PostRepoImpl) UpdatePost(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
	for _, col := range []string{"id", "user_id", "likes_count", "comments_count", "created_at"} {
		delete(updates, col)
	}
	if len(updates) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).
		Model(&model.Post{}).
		Where("id = ?", id).
		Updates(updates).Error
}

// DeletePost 删除帖子，评论、点赞、收藏由外键级联删除
func (s *PostRepoImpl) DeletePost(ctx context.Context, post *model.Post) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ?", post.ID).Delete(&model.Post{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		return adjustCounter(tx, "profiles", "posts_count", post.UserID, -1)
	})
}
