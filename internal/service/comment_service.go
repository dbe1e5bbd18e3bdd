package service

import (
	"Novii/internal/api/dto"
	"Novii/internal/model"
	"Novii/internal/pkg/consts"
	"Novii/internal/repository"
	"context"

	"github.com/google/uuid"
)

type CommentService interface {
	CreateComment(ctx context.Context, userID, postID uuid.UUID, req *dto.CreateCommentDTO) (*dto.CommentDTO, error)
	GetComments(ctx context.Context, viewerID, postID uuid.UUID, page, pageSize int) (*dto.ListDTO[dto.CommentDTO], error)
	DeleteComment(ctx context.Context, userID, commentID uuid.UUID) error
}

type CommentServiceImpl struct {
	commentRepo repository.CommentRepo
	postRepo    repository.PostRepo
	profileRepo repository.ProfileRepo
	likeRepo    repository.LikeRepo
	visibility  visibility
	publisher   EventPublisher
}

func NewCommentService(
	commentRepo repository.CommentRepo,
	postRepo repository.PostRepo,
	profileRepo repository.ProfileRepo,
	likeRepo repository.LikeRepo,
	followRepo repository.FollowRepo,
	publisher EventPublisher,
) CommentService {
	return &CommentServiceImpl{
		commentRepo: commentRepo,
		postRepo:    postRepo,
		profileRepo: profileRepo,
		likeRepo:    likeRepo,
		visibility:  visibility{followRepo: followRepo},
		publisher:   publisher,
	}
}

func (s *CommentServiceImpl) CreateComment(ctx context.Context, userID, postID uuid.UUID, req *dto.CreateCommentDTO) (*dto.CommentDTO, error) {
	content, err := cleanText(req.Content, consts.MaxCommentLength)
	if err != nil {
		return nil, err
	}
	post, err := loadVisiblePost(ctx, s.postRepo, s.profileRepo, s.visibility, userID, postID)
	if err != nil {
		return nil, err
	}

	comment := &model.Comment{
		PostID:  post.ID,
		UserID:  userID,
		Content: content,
	}
	if err = s.commentRepo.CreateComment(ctx, comment); err != nil {
		return nil, mapRepoError(err)
	}

	commentID := comment.ID
	publishEvent(ctx, s.publisher, &InteractionEvent{
		ID:          NewEventID(model.NotificationComment, commentID.String()),
		Type:        model.NotificationComment,
		ActorID:     userID,
		RecipientID: post.UserID,
		PostID:      &post.ID,
		CommentID:   &commentID,
		Content:     &content,
	})
	notifyMentions(ctx, s.profileRepo, s.publisher, userID, post.ID, &commentID, content)

	author, err := s.profileRepo.GetProfileByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return toCommentDTO(comment, author, false), nil
}

func (s *CommentServiceImpl) GetComments(ctx context.Context, viewerID, postID uuid.UUID, page, pageSize int) (*dto.ListDTO[dto.CommentDTO], error) {
	if _, err := loadVisiblePost(ctx, s.postRepo, s.profileRepo, s.visibility, viewerID, postID); err != nil {
		return nil, err
	}

	limit, offset := normalizePage(page, pageSize)
	comments, err := s.commentRepo.GetCommentsByPost(ctx, postID, limit+1, offset)
	if err != nil {
		return nil, err
	}
	hasMore := len(comments) > limit
	if hasMore {
		comments = comments[:limit]
	}

	authors, err := profileMap(ctx, s.profileRepo, model.IDs(comments, func(c *model.Comment) uuid.UUID { return c.UserID }))
	if err != nil {
		return nil, err
	}
	liked := map[uuid.UUID]bool{}
	if viewerID != uuid.Nil {
		ids := model.IDs(comments, func(c *model.Comment) uuid.UUID { return c.ID })
		if liked, err = s.likeRepo.GetLikedSet(ctx, viewerID, model.TargetComment, ids); err != nil {
			return nil, err
		}
	}

	list := make([]*dto.CommentDTO, 0, len(comments))
	for _, c := range comments {
		list = append(list, toCommentDTO(c, authors[c.UserID], liked[c.ID]))
	}
	return &dto.ListDTO[dto.CommentDTO]{List: list, HasMore: hasMore}, nil
}

// DeleteComment 评论作者或帖子作者可删除
func (s *CommentServiceImpl) DeleteComment(ctx context.Context, userID, commentID uuid.UUID) error {
	comment, err := s.commentRepo.GetComment(ctx, commentID)
	if err != nil {
		return err
	}
	if comment == nil {
		return ErrCommentNotFound
	}
	if comment.UserID != userID {
		post, err := s.postRepo.GetPost(ctx, comment.PostID)
		if err != nil {
			return err
		}
		if post == nil || post.UserID != userID {
			return ErrForbidden
		}
	}
	return s.commentRepo.DeleteComment(ctx, comment)
}

func toCommentDTO(c *model.Comment, author *model.Profile, isLiked bool) *dto.CommentDTO {
	item := &dto.CommentDTO{}
	copyDTO(item, c)
	item.Author = toProfileBrief(author)
	item.IsLiked = isLiked
	return item
}
