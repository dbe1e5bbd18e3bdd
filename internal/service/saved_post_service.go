package service

import (
	"Novii/internal/api/dto"
	"Novii/internal/model"
	"Novii/internal/repository"
	"context"

	"github.com/google/uuid"
)

type SavedPostService interface {
	SavePost(ctx context.Context, userID, postID uuid.UUID) error
	UnsavePost(ctx context.Context, userID, postID uuid.UUID) error
	GetSavedPosts(ctx context.Context, userID uuid.UUID, page, pageSize int) (*dto.ListDTO[dto.PostDTO], error)
}

type SavedPostServiceImpl struct {
	savedPostRepo repository.SavedPostRepo
	postRepo      repository.PostRepo
	profileRepo   repository.ProfileRepo
	assembler     postAssembler
	visibility    visibility
}

func NewSavedPostService(
	savedPostRepo repository.SavedPostRepo,
	postRepo repository.PostRepo,
	profileRepo repository.ProfileRepo,
	likeRepo repository.LikeRepo,
	followRepo repository.FollowRepo,
) SavedPostService {
	return &SavedPostServiceImpl{
		savedPostRepo: savedPostRepo,
		postRepo:      postRepo,
		profileRepo:   profileRepo,
		assembler: postAssembler{
			profileRepo:   profileRepo,
			likeRepo:      likeRepo,
			savedPostRepo: savedPostRepo,
		},
		visibility: visibility{followRepo: followRepo},
	}
}

func (s *SavedPostServiceImpl) SavePost(ctx context.Context, userID, postID uuid.UUID) error {
	post, err := loadVisiblePost(ctx, s.postRepo, s.profileRepo, s.visibility, userID, postID)
	if err != nil {
		return err
	}
	return mapRepoError(s.savedPostRepo.CreateSavedPost(ctx, &model.SavedPost{UserID: userID, PostID: post.ID}))
}

func (s *SavedPostServiceImpl) UnsavePost(ctx context.Context, userID, postID uuid.UUID) error {
	_, err := s.savedPostRepo.DeleteSavedPost(ctx, userID, postID)
	return err
}

// GetSavedPosts 收藏列表仅本人可见，已不可见的帖子（归档、作者转为私密）不展示
func (s *SavedPostServiceImpl) GetSavedPosts(ctx context.Context, userID uuid.UUID, page, pageSize int) (*dto.ListDTO[dto.PostDTO], error) {
	limit, offset := normalizePage(page, pageSize)
	ids, err := s.savedPostRepo.GetSavedPostIDs(ctx, userID, limit+1, offset)
	if err != nil {
		return nil, err
	}
	hasMore := len(ids) > limit
	if hasMore {
		ids = ids[:limit]
	}

	posts, err := s.postRepo.GetPostsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	visible, err := filterVisiblePosts(ctx, s.profileRepo, s.visibility, userID, posts)
	if err != nil {
		return nil, err
	}

	list, err := s.assembler.build(ctx, userID, visible)
	if err != nil {
		return nil, err
	}
	return &dto.ListDTO[dto.PostDTO]{List: list, HasMore: hasMore}, nil
}
