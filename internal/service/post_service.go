package service

import (
	"Novii/internal/api/dto"
	"Novii/internal/model"
	"Novii/internal/pkg/consts"
	"Novii/internal/pkg/util"
	"Novii/internal/repository"
	"context"
	log "log/slog"
	"strings"

	"github.com/google/uuid"
)

type PostService interface {
	CreatePost(ctx context.Context, userID uuid.UUID, req *dto.CreatePostDTO) (*dto.PostDTO, error)
	GetPost(ctx context.Context, viewerID, postID uuid.UUID) (*dto.PostDTO, error)
	GetFeed(ctx context.Context, userID uuid.UUID, req *dto.CursorPageDTO) (*dto.CursorListDTO[dto.PostDTO], error)
	GetExplore(ctx context.Context, viewerID uuid.UUID, page, pageSize int) (*dto.ListDTO[dto.PostDTO], error)
	GetUserPosts(ctx context.Context, viewerID uuid.UUID, username string, page, pageSize int) (*dto.ListDTO[dto.PostDTO], error)
	UpdatePost(ctx context.Context, userID, postID uuid.UUID, req *dto.UpdatePostDTO) (*dto.PostDTO, error)
	DeletePost(ctx context.Context, userID, postID uuid.UUID) error
}

type PostServiceImpl struct {
	postRepo    repository.PostRepo
	profileRepo repository.ProfileRepo
	assembler   postAssembler
	visibility  visibility
	publisher   EventPublisher
}

func NewPostService(
	postRepo repository.PostRepo,
	profileRepo repository.ProfileRepo,
	followRepo repository.FollowRepo,
	likeRepo repository.LikeRepo,
	savedPostRepo repository.SavedPostRepo,
	publisher EventPublisher,
) PostService {
	return &PostServiceImpl{
		postRepo:    postRepo,
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

func (s *PostServiceImpl) CreatePost(ctx context.Context, userID uuid.UUID, req *dto.CreatePostDTO) (*dto.PostDTO, error) {
	caption, err := cleanOptionalText(req.Caption, consts.MaxCaptionLength)
	if err != nil {
		return nil, err
	}
	imageURL := util.SanitizePtr(req.ImageURL)
	if caption == nil && imageURL == nil {
		return nil, ErrContentEmpty
	}
	location, err := cleanOptionalText(req.Location, 100)
	if err != nil {
		return nil, err
	}

	post := &model.Post{
		UserID:   userID,
		Caption:  caption,
		ImageURL: imageURL,
		Location: location,
	}
	if err = s.postRepo.CreatePost(ctx, post); err != nil {
		return nil, mapRepoError(err)
	}

	if caption != nil {
		s.notifyMentions(ctx, userID, post.ID, nil, *caption)
	}

	author, err := s.profileRepo.GetProfileByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	log.InfoContext(ctx, "post created", "postID", post.ID, "userID", userID)
	return toPostDTO(post, author), nil
}

func (s *PostServiceImpl) GetPost(ctx context.Context, viewerID, postID uuid.UUID) (*dto.PostDTO, error) {
	post, err := loadVisiblePost(ctx, s.postRepo, s.profileRepo, s.visibility, viewerID, postID)
	if err != nil {
		return nil, err
	}
	items, err := s.assembler.build(ctx, viewerID, []*model.Post{post})
	if err != nil {
		return nil, err
	}
	return items[0], nil
}

// GetFeed 关注的人与自己的帖子，游标为上一页最后一条的 (created_at, id)
func (s *PostServiceImpl) GetFeed(ctx context.Context, userID uuid.UUID, req *dto.CursorPageDTO) (*dto.CursorListDTO[dto.PostDTO], error) {
	createdAt, lastID, ok, err := util.DecodeTimeCursor(req.Cursor)
	if err != nil {
		return nil, ErrParamInvalid
	}
	var cursor *repository.Cursor
	if ok {
		cursor = &repository.Cursor{CreatedAt: createdAt, ID: lastID}
	}
	limit, _ := normalizePage(1, req.PageSize)

	posts, err := s.postRepo.GetFeed(ctx, userID, cursor, limit+1)
	if err != nil {
		return nil, err
	}
	hasMore := len(posts) > limit
	if hasMore {
		posts = posts[:limit]
	}

	list, err := s.assembler.build(ctx, userID, posts)
	if err != nil {
		return nil, err
	}
	res := &dto.CursorListDTO[dto.PostDTO]{List: list, HasMore: hasMore}
	if hasMore {
		last := posts[len(posts)-1]
		res.NextCursor = util.EncodeTimeCursor(last.CreatedAt, last.ID)
	}
	return res, nil
}

func (s *PostServiceImpl) GetExplore(ctx context.Context, viewerID uuid.UUID, page, pageSize int) (*dto.ListDTO[dto.PostDTO], error) {
	limit, offset := normalizePage(page, pageSize)
	posts, err := s.postRepo.GetExplore(ctx, viewerID, limit+1, offset)
	if err != nil {
		return nil, err
	}
	return s.pageOf(ctx, viewerID, posts, limit)
}

func (s *PostServiceImpl) GetUserPosts(ctx context.Context, viewerID uuid.UUID, username string, page, pageSize int) (*dto.ListDTO[dto.PostDTO], error) {
	owner, err := s.profileRepo.GetProfileByUsername(ctx, strings.ToLower(username))
	if err != nil {
		return nil, err
	}
	if owner == nil {
		return nil, ErrProfileNotFound
	}
	canView, err := s.visibility.canView(ctx, viewerID, owner)
	if err != nil {
		return nil, err
	}
	if !canView {
		return nil, ErrProfilePrivate
	}

	limit, offset := normalizePage(page, pageSize)
	posts, err := s.postRepo.GetPostsByUser(ctx, owner.ID, owner.ID == viewerID, limit+1, offset)
	if err != nil {
		return nil, err
	}
	return s.pageOf(ctx, viewerID, posts, limit)
}

func (s *PostServiceImpl) UpdatePost(ctx context.Context, userID, postID uuid.UUID, req *dto.UpdatePostDTO) (*dto.PostDTO, error) {
	post, err := s.postRepo.GetPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, ErrPostNotFound
	}
	if post.UserID != userID {
		return nil, ErrForbidden
	}

	updates := make(map[string]interface{})
	if req.Caption != nil {
		caption, err := cleanOptionalText(req.Caption, consts.MaxCaptionLength)
		if err != nil {
			return nil, err
		}
		updates["caption"] = caption
	}
	if req.Location != nil {
		location, err := cleanOptionalText(req.Location, 100)
		if err != nil {
			return nil, err
		}
		updates["location"] = location
	}
	if req.IsArchived != nil {
		updates["is_archived"] = *req.IsArchived
	}
	if err = s.postRepo.UpdatePost(ctx, postID, updates); err != nil {
		return nil, err
	}
	return s.GetPost(ctx, userID, postID)
}

func (s *PostServiceImpl) DeletePost(ctx context.Context, userID, postID uuid.UUID) error {
	post, err := s.postRepo.GetPost(ctx, postID)
	if err != nil {
		return err
	}
	if post == nil {
		return ErrPostNotFound
	}
	if post.UserID != userID {
		return ErrForbidden
	}
	if err = s.postRepo.DeletePost(ctx, post); err != nil {
		return err
	}
	log.InfoContext(ctx, "post deleted", "postID", postID, "userID", userID)
	return nil
}

func (s *PostServiceImpl) pageOf(ctx context.Context, viewerID uuid.UUID, posts []*model.Post, limit int) (*dto.ListDTO[dto.PostDTO], error) {
	hasMore := len(posts) > limit
	if hasMore {
		posts = posts[:limit]
	}
	list, err := s.assembler.build(ctx, viewerID, posts)
	if err != nil {
		return nil, err
	}
	return &dto.ListDTO[dto.PostDTO]{List: list, HasMore: hasMore}, nil
}

func (s *PostServiceImpl) notifyMentions(ctx context.Context, actorID, postID uuid.UUID, commentID *uuid.UUID, text string) {
	notifyMentions(ctx, s.profileRepo, s.publisher, actorID, postID, commentID, text)
}

// loadVisiblePost 获取帖子并校验可见性：归档帖子仅作者可见，私密账号帖子仅作者与粉丝可见
func loadVisiblePost(
	ctx context.Context,
	postRepo repository.PostRepo,
	profileRepo repository.ProfileRepo,
	vis visibility,
	viewerID, postID uuid.UUID,
) (*model.Post, error) {
	post, err := postRepo.GetPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, ErrPostNotFound
	}
	if post.UserID == viewerID {
		return post, nil
	}
	if post.IsArchived {
		return nil, ErrPostNotFound
	}

	owner, err := profileRepo.GetProfileByID(ctx, post.UserID)
	if err != nil {
		return nil, err
	}
	if owner == nil {
		return nil, ErrPostNotFound
	}
	canView, err := vis.canView(ctx, viewerID, owner)
	if err != nil {
		return nil, err
	}
	if !canView {
		return nil, ErrProfilePrivate
	}
	return post, nil
}

// filterVisiblePosts 按 loadVisiblePost 的规则过滤列表，作者已不存在的帖子一并剔除
func filterVisiblePosts(
	ctx context.Context,
	profileRepo repository.ProfileRepo,
	vis visibility,
	viewerID uuid.UUID,
	posts []*model.Post,
) ([]*model.Post, error) {
	if len(posts) == 0 {
		return posts, nil
	}
	authors, err := profileMap(ctx, profileRepo, model.IDs(posts, func(p *model.Post) uuid.UUID { return p.UserID }))
	if err != nil {
		return nil, err
	}

	allowed := make(map[uuid.UUID]bool, len(authors))
	res := make([]*model.Post, 0, len(posts))
	for _, p := range posts {
		if p.UserID == viewerID {
			res = append(res, p)
			continue
		}
		if p.IsArchived {
			continue
		}
		ok, seen := allowed[p.UserID]
		if !seen {
			if owner := authors[p.UserID]; owner != nil {
				if ok, err = vis.canView(ctx, viewerID, owner); err != nil {
					return nil, err
				}
			}
			allowed[p.UserID] = ok
		}
		if ok {
			res = append(res, p)
		}
	}
	return res, nil
}

// notifyMentions 为文本中 @ 到的用户发送提及通知
func notifyMentions(
	ctx context.Context,
	profileRepo repository.ProfileRepo,
	publisher EventPublisher,
	actorID, postID uuid.UUID,
	commentID *uuid.UUID,
	text string,
) {
	usernames := util.ExtractMentions(text)
	if len(usernames) == 0 {
		return
	}
	profiles, err := profileRepo.GetProfilesByUsernames(ctx, usernames)
	if err != nil {
		log.WarnContext(ctx, "failed to resolve mentions", "err", err)
		return
	}

	source := postID.String()
	if commentID != nil {
		source = commentID.String()
	}
	for _, p := range profiles {
		pid := postID
		publishEvent(ctx, publisher, &InteractionEvent{
			ID:          NewEventID(model.NotificationMention, source, p.ID.String()),
			Type:        model.NotificationMention,
			ActorID:     actorID,
			RecipientID: p.ID,
			PostID:      &pid,
			CommentID:   commentID,
		})
	}
}
