package service

import (
	"Novii/internal/api/dto"
	"Novii/internal/model"
	"Novii/internal/repository"
	"context"
	"errors"
	log "log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

type StoryService interface {
	CreateStory(ctx context.Context, userID uuid.UUID, req *dto.CreateStoryDTO) (*dto.StoryDTO, error)
	GetActiveStories(ctx context.Context, viewerID uuid.UUID) ([]*dto.StoryGroupDTO, error)
	ViewStory(ctx context.Context, viewerID, storyID uuid.UUID) error
	GetStoryViewers(ctx context.Context, userID, storyID uuid.UUID, page, pageSize int) (*dto.ListDTO[dto.StoryViewerDTO], error)
	DeleteStory(ctx context.Context, userID, storyID uuid.UUID) error
	SweepExpiredStories(ctx context.Context) (int64, error)
}

type StoryServiceImpl struct {
	storyRepo   repository.StoryRepo
	followRepo  repository.FollowRepo
	profileRepo repository.ProfileRepo
	visibility  visibility
	ttl         time.Duration
	retention   time.Duration
	now         func() time.Time
}

// NewStoryService ttl 为快拍有效期，retention 为过期后保留多久再物理删除
func NewStoryService(
	storyRepo repository.StoryRepo,
	followRepo repository.FollowRepo,
	profileRepo repository.ProfileRepo,
	ttl, retention time.Duration,
) StoryService {
	return &StoryServiceImpl{
		storyRepo:   storyRepo,
		followRepo:  followRepo,
		profileRepo: profileRepo,
		visibility:  visibility{followRepo: followRepo},
		ttl:         ttl,
		retention:   retention,
		now:         time.Now,
	}
}

func (s *StoryServiceImpl) CreateStory(ctx context.Context, userID uuid.UUID, req *dto.CreateStoryDTO) (*dto.StoryDTO, error) {
	mediaURL := strings.TrimSpace(req.MediaURL)
	if mediaURL == "" {
		return nil, ErrParamInvalid
	}
	mediaType := req.MediaType
	if mediaType == "" {
		mediaType = model.MediaTypeImage
	}
	if mediaType != model.MediaTypeImage && mediaType != model.MediaTypeVideo {
		return nil, ErrParamInvalid
	}

	now := s.now()
	story := &model.Story{
		UserID:    userID,
		MediaURL:  mediaURL,
		MediaType: mediaType,
		ExpiresAt: now.Add(s.ttl),
		CreatedAt: now,
	}
	if err := s.storyRepo.CreateStory(ctx, story); err != nil {
		return nil, mapRepoError(err)
	}
	return toStoryDTO(story, false), nil
}

// GetActiveStories 自己与关注的人的有效快拍，按作者分组
// 自己的分组在最前，其次是有未看快拍的分组，同类按最新快拍时间倒序
func (s *StoryServiceImpl) GetActiveStories(ctx context.Context, viewerID uuid.UUID) ([]*dto.StoryGroupDTO, error) {
	followingIDs, err := s.followRepo.GetFollowingIDs(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	authorIDs := append([]uuid.UUID{viewerID}, followingIDs...)

	stories, err := s.storyRepo.GetActiveStoriesByUsers(ctx, authorIDs, s.now())
	if err != nil {
		return nil, err
	}
	if len(stories) == 0 {
		return []*dto.StoryGroupDTO{}, nil
	}

	viewed, err := s.storyRepo.GetViewedSet(ctx, viewerID, model.IDs(stories, func(st *model.Story) uuid.UUID { return st.ID }))
	if err != nil {
		return nil, err
	}
	authors, err := profileMap(ctx, s.profileRepo, model.IDs(stories, func(st *model.Story) uuid.UUID { return st.UserID }))
	if err != nil {
		return nil, err
	}

	type group struct {
		dto    *dto.StoryGroupDTO
		latest time.Time
	}
	groups := make(map[uuid.UUID]*group)
	order := make([]uuid.UUID, 0)
	for _, st := range stories {
		g, ok := groups[st.UserID]
		if !ok {
			g = &group{dto: &dto.StoryGroupDTO{
				Author: toProfileBrief(authors[st.UserID]),
				IsOwn:  st.UserID == viewerID,
			}}
			groups[st.UserID] = g
			order = append(order, st.UserID)
		}
		isViewed := st.UserID == viewerID || viewed[st.ID]
		if !isViewed {
			g.dto.HasUnviewed = true
		}
		if st.CreatedAt.After(g.latest) {
			g.latest = st.CreatedAt
		}
		g.dto.Stories = append(g.dto.Stories, toStoryDTO(st, isViewed))
	}

	sort.SliceStable(order, func(i, j int) bool {
		a, b := groups[order[i]], groups[order[j]]
		if a.dto.IsOwn != b.dto.IsOwn {
			return a.dto.IsOwn
		}
		if a.dto.HasUnviewed != b.dto.HasUnviewed {
			return a.dto.HasUnviewed
		}
		return a.latest.After(b.latest)
	})

	res := make([]*dto.StoryGroupDTO, 0, len(order))
	for _, id := range order {
		res = append(res, groups[id].dto)
	}
	return res, nil
}

// ViewStory 记录浏览，重复浏览与作者本人浏览不计数
func (s *StoryServiceImpl) ViewStory(ctx context.Context, viewerID, storyID uuid.UUID) error {
	story, err := s.activeStory(ctx, storyID)
	if err != nil {
		return err
	}
	if story.UserID == viewerID {
		return nil
	}

	author, err := s.profileRepo.GetProfileByID(ctx, story.UserID)
	if err != nil {
		return err
	}
	if author == nil {
		return ErrStoryNotFound
	}
	canView, err := s.visibility.canView(ctx, viewerID, author)
	if err != nil {
		return err
	}
	if !canView {
		return ErrProfilePrivate
	}

	err = s.storyRepo.CreateStoryView(ctx, &model.StoryView{StoryID: storyID, UserID: viewerID})
	if errors.Is(err, repository.ErrDuplicate) {
		return nil
	}
	return mapRepoError(err)
}

func (s *StoryServiceImpl) GetStoryViewers(ctx context.Context, userID, storyID uuid.UUID, page, pageSize int) (*dto.ListDTO[dto.StoryViewerDTO], error) {
	story, err := s.storyRepo.GetStory(ctx, storyID)
	if err != nil {
		return nil, err
	}
	if story == nil {
		return nil, ErrStoryNotFound
	}
	if story.UserID != userID {
		return nil, ErrForbidden
	}

	limit, offset := normalizePage(page, pageSize)
	views, err := s.storyRepo.GetStoryViewers(ctx, storyID, limit+1, offset)
	if err != nil {
		return nil, err
	}
	hasMore := len(views) > limit
	if hasMore {
		views = views[:limit]
	}
	viewers, err := profileMap(ctx, s.profileRepo, model.IDs(views, func(v *model.StoryView) uuid.UUID { return v.UserID }))
	if err != nil {
		return nil, err
	}

	list := make([]*dto.StoryViewerDTO, 0, len(views))
	for _, v := range views {
		p, ok := viewers[v.UserID]
		if !ok {
			continue
		}
		list = append(list, &dto.StoryViewerDTO{
			Viewer:   toProfileBrief(p),
			ViewedAt: formatTime(v.ViewedAt),
		})
	}
	return &dto.ListDTO[dto.StoryViewerDTO]{List: list, HasMore: hasMore}, nil
}

func (s *StoryServiceImpl) DeleteStory(ctx context.Context, userID, storyID uuid.UUID) error {
	story, err := s.storyRepo.GetStory(ctx, storyID)
	if err != nil {
		return err
	}
	if story == nil {
		return ErrStoryNotFound
	}
	if story.UserID != userID {
		return ErrForbidden
	}
	return s.storyRepo.DeleteStory(ctx, storyID)
}

// SweepExpiredStories 物理删除过期超过保留期的快拍
func (s *StoryServiceImpl) SweepExpiredStories(ctx context.Context) (int64, error) {
	cutoff := s.now().Add(-s.retention)
	n, err := s.storyRepo.DeleteExpiredStories(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		log.InfoContext(ctx, "expired stories swept", "count", n, "cutoff", cutoff)
	}
	return n, nil
}

func (s *StoryServiceImpl) activeStory(ctx context.Context, storyID uuid.UUID) (*model.Story, error) {
	story, err := s.storyRepo.GetStory(ctx, storyID)
	if err != nil {
		return nil, err
	}
	if story == nil || !story.ActiveAt(s.now()) {
		return nil, ErrStoryNotFound
	}
	return story, nil
}

func toStoryDTO(st *model.Story, isViewed bool) *dto.StoryDTO {
	item := &dto.StoryDTO{}
	copyDTO(item, st)
	item.IsViewed = isViewed
	return item
}
