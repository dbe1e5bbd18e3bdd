package service

import (
	"Novii/internal/api/dto"
	"Novii/internal/model"
	"Novii/internal/repository"
	"context"
	"strings"

	"github.com/google/uuid"
)

type FollowService interface {
	Follow(ctx context.Context, followerID, followingID uuid.UUID) error
	Unfollow(ctx context.Context, followerID, followingID uuid.UUID) error
	GetFollowState(ctx context.Context, viewerID, profileID uuid.UUID) (*dto.FollowStateDTO, error)
	GetFollowers(ctx context.Context, viewerID uuid.UUID, username string, page, pageSize int) (*dto.ListDTO[dto.FollowDTO], error)
	GetFollowing(ctx context.Context, viewerID uuid.UUID, username string, page, pageSize int) (*dto.ListDTO[dto.FollowDTO], error)
}

type FollowServiceImpl struct {
	followRepo  repository.FollowRepo
	profileRepo repository.ProfileRepo
	visibility  visibility
	publisher   EventPublisher
}

func NewFollowService(followRepo repository.FollowRepo, profileRepo repository.ProfileRepo, publisher EventPublisher) FollowService {
	return &FollowServiceImpl{
		followRepo:  followRepo,
		profileRepo: profileRepo,
		visibility:  visibility{followRepo: followRepo},
		publisher:   publisher,
	}
}

type fetchFollowFunc func(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*model.Follow, error)

func (s *FollowServiceImpl) Follow(ctx context.Context, followerID, followingID uuid.UUID) error {
	if followerID == followingID {
		return ErrFollowSelf
	}
	target, err := s.profileRepo.GetProfileByID(ctx, followingID)
	if err != nil {
		return err
	}
	if target == nil {
		return ErrProfileNotFound
	}

	follow := &model.Follow{FollowerID: followerID, FollowingID: followingID}
	if err = s.followRepo.CreateFollow(ctx, follow); err != nil {
		return mapRepoError(err)
	}

	publishEvent(ctx, s.publisher, &InteractionEvent{
		ID:          NewEventID(model.NotificationFollow, followerID.String(), followingID.String()),
		Type:        model.NotificationFollow,
		ActorID:     followerID,
		RecipientID: followingID,
	})
	return nil
}

func (s *FollowServiceImpl) Unfollow(ctx context.Context, followerID, followingID uuid.UUID) error {
	if followerID == followingID {
		return ErrFollowSelf
	}
	_, err := s.followRepo.DeleteFollow(ctx, followerID, followingID)
	return err
}

func (s *FollowServiceImpl) GetFollowState(ctx context.Context, viewerID, profileID uuid.UUID) (*dto.FollowStateDTO, error) {
	res := &dto.FollowStateDTO{}
	if viewerID == profileID {
		return res, nil
	}
	following, err := s.followRepo.GetFollow(ctx, viewerID, profileID)
	if err != nil {
		return nil, err
	}
	followedBy, err := s.followRepo.GetFollow(ctx, profileID, viewerID)
	if err != nil {
		return nil, err
	}
	res.IsFollowing = following != nil
	res.IsFollowedBy = followedBy != nil
	return res, nil
}

func (s *FollowServiceImpl) GetFollowers(ctx context.Context, viewerID uuid.UUID, username string, page, pageSize int) (*dto.ListDTO[dto.FollowDTO], error) {
	return s.getFollowListCommon(ctx, viewerID, username, page, pageSize, true, s.followRepo.GetFollowers)
}

func (s *FollowServiceImpl) GetFollowing(ctx context.Context, viewerID uuid.UUID, username string, page, pageSize int) (*dto.ListDTO[dto.FollowDTO], error) {
	return s.getFollowListCommon(ctx, viewerID, username, page, pageSize, false, s.followRepo.GetFollowing)
}

// getFollowListCommon isFollower 为 true 时列表中的对象为关注者
func (s *FollowServiceImpl) getFollowListCommon(
	ctx context.Context,
	viewerID uuid.UUID,
	username string,
	page, pageSize int,
	isFollower bool,
	fetch fetchFollowFunc,
) (*dto.ListDTO[dto.FollowDTO], error) {
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
	follows, err := fetch(ctx, owner.ID, limit+1, offset)
	if err != nil {
		return nil, err
	}
	hasMore := len(follows) > limit
	if hasMore {
		follows = follows[:limit]
	}

	ids := model.IDs(follows, func(f *model.Follow) uuid.UUID {
		if isFollower {
			return f.FollowerID
		}
		return f.FollowingID
	})
	profiles, err := profileMap(ctx, s.profileRepo, ids)
	if err != nil {
		return nil, err
	}
	followingSet := map[uuid.UUID]bool{}
	if viewerID != uuid.Nil {
		if followingSet, err = s.followRepo.GetFollowingSet(ctx, viewerID, ids); err != nil {
			return nil, err
		}
	}

	list := make([]*dto.FollowDTO, 0, len(follows))
	for i, f := range follows {
		p, ok := profiles[ids[i]]
		if !ok {
			continue
		}
		list = append(list, &dto.FollowDTO{
			Profile:     toProfileBrief(p),
			IsFollowing: followingSet[p.ID],
			CreatedAt:   formatTime(f.CreatedAt),
		})
	}
	return &dto.ListDTO[dto.FollowDTO]{List: list, HasMore: hasMore}, nil
}
