package repository

import (
	"Novii/internal/model"
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProfileRepo interface {
	CreateProfileWithAccount(ctx context.Context, profile *model.Profile, account *model.Account) error
	GetProfileByID(ctx context.Context, id uuid.UUID) (*model.Profile, error)
	GetProfilesByIDs(ctx context.Context, ids []uuid.UUID) ([]*model.Profile, error)
	GetProfileByUsername(ctx context.Context, username string) (*model.Profile, error)
	GetProfilesByUsernames(ctx context.Context, usernames []string) ([]*model.Profile, error)
	GetAccountByEmail(ctx context.Context, email string) (*model.Account, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error
	DeleteProfile(ctx context.Context, id uuid.UUID) error
	SearchProfiles(ctx context.Context, keyword string, limit, offset int) ([]*model.Profile, error)
	GetSuggestions(ctx context.Context, userID uuid.UUID, limit int) ([]*model.Profile, error)
}

type ProfileRepoImpl struct {
	db *gorm.DB
}

func NewProfileRepo(db *gorm.DB) ProfileRepo {
	return &ProfileRepoImpl{db: db}
}

// CreateProfileWithAccount 同一事务内创建资料与登录凭据
func (s *ProfileRepoImpl) CreateProfileWithAccount(ctx context.Context, profile *model.Profile, account *model.Account) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(profile).Error; err != nil {
			return translateError(err)
		}
		account.ID = profile.ID
		if err := tx.Omit(clause.Associations).Create(account).Error; err != nil {
			return translateError(err)
		}
		return nil
	})
}

func (s *ProfileRepoImpl) GetProfileByID(ctx context.Context, id uuid.UUID) (*model.Profile, error) {
	var profile model.Profile
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&profile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &profile, nil
}

func (s *ProfileRepoImpl) GetProfilesByIDs(ctx context.Context, ids []uuid.UUID) ([]*model.Profile, error) {
	if len(ids) == 0 {
		return []*model.Profile{}, nil
	}
	var profiles []*model.Profile
	err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&profiles).Error
	return profiles, err
}

func (s *ProfileRepoImpl) GetProfileByUsername(ctx context.Context, username string) (*model.Profile, error) {
	var profile model.Profile
	err := s.db.WithContext(ctx).Where("username = ?", username).First(&profile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &profile, nil
}

func (s *ProfileRepoImpl) GetProfilesByUsernames(ctx context.Context, usernames []string) ([]*model.Profile, error) {
	if len(usernames) == 0 {
		return []*model.Profile{}, nil
	}
	var profiles []*model.Profile
	err := s.db.WithContext(ctx).Where("username IN ?", usernames).Find(&profiles).Error
	return profiles, err
}

func (s *ProfileRepoImpl) GetAccountByEmail(ctx context.Context, email string) (*model.Account, error) {
	var account model.Account
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &account, nil
}

// UpdateProfile 局部更新资料，计数列不允许通过此方法修改
func (s *ProfileRepoImpl) UpdateProfile(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
	for _, col := range []string{"id", "followers_count", "following_count", "posts_count", "created_at"} {
		delete(updates, col)
	}
	if len(updates) == 0 {
		return nil
	}
	err := s.db.WithContext(ctx).
		Model(&model.Profile{}).
		Where("id = ?", id).
		Updates(updates).Error
	return translateError(err)
}

// DeleteProfile 删除资料，外键级联清理其内容与关系
// 级联前先扣减其他实体上与该资料相关的计数
func (s *ProfileRepoImpl) DeleteProfile(ctx context.Context, id uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		stmts := []string{
			// 被其关注的人粉丝数 -1
			`UPDATE profiles SET followers_count = GREATEST(followers_count - 1, 0)
			 WHERE id IN (SELECT following_id FROM follows WHERE follower_id = @id)`,
			// 关注其的人关注数 -1
			`UPDATE profiles SET following_count = GREATEST(following_count - 1, 0)
			 WHERE id IN (SELECT follower_id FROM follows WHERE following_id = @id)`,
			`UPDATE posts p SET likes_count = GREATEST(p.likes_count - l.cnt, 0)
			 FROM (SELECT post_id, COUNT(*) AS cnt FROM likes WHERE user_id = @id AND post_id IS NOT NULL GROUP BY post_id) l
			 WHERE p.id = l.post_id AND p.user_id <> @id`,
			`UPDATE comments c SET likes_count = GREATEST(c.likes_count - l.cnt, 0)
			 FROM (SELECT comment_id, COUNT(*) AS cnt FROM likes WHERE user_id = @id AND comment_id IS NOT NULL GROUP BY comment_id) l
			 WHERE c.id = l.comment_id AND c.user_id <> @id`,
			`UPDATE posts p SET comments_count = GREATEST(p.comments_count - c.cnt, 0)
			 FROM (SELECT post_id, COUNT(*) AS cnt FROM comments WHERE user_id = @id GROUP BY post_id) c
			 WHERE p.id = c.post_id AND p.user_id <> @id`,
			`UPDATE stories st SET views_count = GREATEST(st.views_count - 1, 0)
			 FROM story_views v
			 WHERE v.story_id = st.id AND v.user_id = @id AND st.user_id <> @id`,
		}
		for _, stmt := range stmts {
			if err := tx.Exec(stmt, map[string]interface{}{"id": id}).Error; err != nil {
				return err
			}
		}
		return tx.Where("id = ?", id).Delete(&model.Profile{}).Error
	})
}

// SearchProfiles 按用户名或昵称模糊搜索
func (s *ProfileRepoImpl) SearchProfiles(ctx context.Context, keyword string, limit, offset int) ([]*model.Profile, error) {
	pattern := "%" + escapeLike(keyword) + "%"
	var profiles []*model.Profile
	err := s.db.WithContext(ctx).
		Where("username ILIKE ? OR full_name ILIKE ?", pattern, pattern).
		Order("followers_count DESC").
		Order("username ASC").
		Limit(limit).
		Offset(offset).
		Find(&profiles).Error
	return profiles, err
}

// GetSuggestions 推荐尚未关注的用户，按粉丝数排序
func (s *ProfileRepoImpl) GetSuggestions(ctx context.Context, userID uuid.UUID, limit int) ([]*model.Profile, error) {
	var profiles []*model.Profile
	err := s.db.WithContext(ctx).
		Where("id <> ?", userID).
		Where("id NOT IN (?)", s.db.Model(&model.Follow{}).Select("following_id").Where("follower_id = ?", userID)).
		Order("followers_count DESC").
		Order("created_at DESC").
		Limit(limit).
		Find(&profiles).Error
	return profiles, err
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
