package service

import (
	"Novii/internal/api/dto"
	"Novii/internal/model"
	"Novii/internal/repository"
	"context"

	"github.com/google/uuid"
)

type LikeService interface {
	LikePost(ctx context.Context, userID, postID uuid.UUID) error
	UnlikePost(ctx context.Context, userID, postID uuid.UUID) error
	LikeComment(ctx context.Context, userID, commentID uuid.UUID) error
	UnlikeComment(ctx context.Context, userID, commentID uuid.UUID) error
	GetLikedPosts(ctx context.Context, userID uuid.UUID, page, pageSize int) (*dto.ListDTO[dto.PostDTO], error)
}

type LikeServiceImpl struct {
	likeRepo    repository.LikeRepo
	postRepo    repository.PostRepo
	commentRepo repository.CommentRepo
	profileRepo repository.ProfileRepo
	assembler   postAssembler
	visibility  visibility
	publisher   EventPublisher
}

func NewLikeService(
	likeRepo repository.LikeRepo,
	postRepo repository.PostRepo,
	commentRepo repository.CommentRepo,
	profileRepo repository.ProfileRepo,
	followRepo repository.FollowRepo,
	savedPostRepo repository.SavedPostRepo,
	publisher EventPublisher,
) LikeService {
	return &LikeServiceImpl{
		likeRepo:    likeRepo,
		postRepo:    postRepo,
		commentRepo: commentRepo,
		profileRepo: profileRepo,
		assembler: postAssembler{
			profileRepo:   profileRepo,
			likeRepo:      likeRepo,
			savedPostRepo: savedPostRepo,
		},
		visibility: visibility{followRepo: followRepo},
		publisher:  publisher,
	}
}

func (s *LikeServiceImpl) LikePost(ctx context.Context, userID, postID uuid.UUID) error {
	post, err := loadVisiblePost(ctx, s.postRepo, s.profileRepo, s.visibility, userID, postID)
	if err != nil {
		return err
	}
	if err = s.createLike(ctx, userID, model.PostTarget(post.ID)); err != nil {
		return err
	}

	publishEvent(ctx, s.publisher, &InteractionEvent{
		ID:          NewEventID(model.NotificationLike, userID.String(), post.ID.String()),
		Type:        model.NotificationLike,
		ActorID:     userID,
		RecipientID: post.UserID,
		PostID:      &post.ID,
	})
	return nil
}

func (s *LikeServiceImpl) UnlikePost(ctx context.Context, userID, postID uuid.UUID) error {
	_, err := s.likeRepo.DeleteLike(ctx, userID, model.PostTarget(postID))
	return err
}

func (s *LikeServiceImpl) LikeComment(ctx context.Context, userID, commentID uuid.UUID) error {
	comment, err := s.commentRepo.GetComment(ctx, commentID)
	if err != nil {
		return err
	}
	if comment == nil {
		return ErrCommentNotFound
	}
	if _, err = loadVisiblePost(ctx, s.postRepo, s.profileRepo, s.visibility, userID, comment.PostID); err != nil {
		return err
	}
	if err = s.createLike(ctx, userID, model.CommentTarget(comment.ID)); err != nil {
		return err
	}

	publishEvent(ctx, s.publisher, &InteractionEvent{
		ID:          NewEventID(model.NotificationLike, userID.String(), comment.ID.String()),
		Type:        model.NotificationLike,
		ActorID:     userID,
		RecipientID: comment.UserID,
		PostID:      &comment.PostID,
		CommentID:   &comment.ID,
	})
	return nil
}

func (s *LikeServiceImpl) UnlikeComment(ctx context.Context, userID, commentID uuid.UUID) error {
	_, err := s.likeRepo.DeleteLike(ctx, userID, model.CommentTarget(commentID))
	return err
}

// GetLikedPosts 本人点赞过的帖子，按点赞时间倒序
func (s *LikeServiceImpl) GetLikedPosts(ctx context.Context, userID uuid.UUID, page, pageSize int) (*dto.ListDTO[dto.PostDTO], error) {
	limit, offset := normalizePage(page, pageSize)
	ids, err := s.likeRepo.GetLikedPostIDs(ctx, userID, limit+1, offset)
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

func (s *LikeServiceImpl) createLike(ctx context.Context, userID uuid.UUID, target model.LikeTarget) error {
	like, err := model.NewLike(userID, target)
	if err != nil {
		return ErrParamInvalid
	}
	return mapRepoError(s.likeRepo.CreateLike(ctx, like))
}
