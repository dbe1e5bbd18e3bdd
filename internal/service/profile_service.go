package service

import (
	"Novii/internal/api/dto"
	"Novii/internal/model"
	"Novii/internal/pkg/cache"
	"Novii/internal/pkg/consts"
	"Novii/internal/pkg/util"
	"Novii/internal/repository"
	"context"
	log "log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
)

const profileLookupTTL = 30 * time.Minute

type ProfileService interface {
	GetProfileByID(ctx context.Context, viewerID, profileID uuid.UUID) (*dto.ProfileDTO, error)
	GetProfileByUsername(ctx context.Context, viewerID uuid.UUID, username string) (*dto.ProfileDTO, error)
	UpdateProfile(ctx context.Context, profileID uuid.UUID, req *dto.UpdateProfileDTO) (*dto.ProfileDTO, error)
	DeleteProfile(ctx context.Context, profileID uuid.UUID) error
	SearchProfiles(ctx context.Context, req *dto.SearchProfileDTO) ([]*dto.ProfileBriefDTO, error)
	GetSuggestions(ctx context.Context, profileID uuid.UUID) ([]*dto.ProfileBriefDTO, error)
	ResolveUsername(ctx context.Context, username string) (*model.Profile, error)
}

type ProfileServiceImpl struct {
	profileRepo  repository.ProfileRepo
	followRepo   repository.FollowRepo
	store        cache.Store
	profileIndex ProfileIndex
}

func NewProfileService(
	profileRepo repository.ProfileRepo,
	followRepo repository.FollowRepo,
	store cache.Store,
	profileIndex ProfileIndex,
) ProfileService {
	return &ProfileServiceImpl{
		profileRepo:  profileRepo,
		followRepo:   followRepo,
		store:        store,
		profileIndex: profileIndex,
	}
}

func (s *ProfileServiceImpl) GetProfileByID(ctx context.Context, viewerID, profileID uuid.UUID) (*dto.ProfileDTO, error) {
	profile, err := s.profileRepo.GetProfileByID(ctx, profileID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, ErrProfileNotFound
	}
	return s.withFollowState(ctx, viewerID, profile)
}

func (s *ProfileServiceImpl) GetProfileByUsername(ctx context.Context, viewerID uuid.UUID, username string) (*dto.ProfileDTO, error) {
	profile, err := s.ResolveUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	return s.withFollowState(ctx, viewerID, profile)
}

// ResolveUsername 用户名到资料的查找，用户名到 ID 的映射会被缓存
func (s *ProfileServiceImpl) ResolveUsername(ctx context.Context, username string) (*model.Profile, error) {
	username = util.NormalizeUsername(username)
	if !util.ValidUsername(username) {
		return nil, ErrProfileNotFound
	}
	key := consts.ProfileByUsernameKey + username

	if cached, err := s.store.Get(ctx, key); err == nil && cached != "" {
		if id, err := uuid.Parse(cached); err == nil {
			profile, err := s.profileRepo.GetProfileByID(ctx, id)
			if err != nil {
				return nil, err
			}
			if profile != nil && profile.Username == username {
				return profile, nil
			}
		}
		_ = s.store.Delete(ctx, key)
	}

	profile, err := s.profileRepo.GetProfileByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, ErrProfileNotFound
	}
	_ = s.store.Set(ctx, key, profile.ID.String(), profileLookupTTL)
	return profile, nil
}

func (s *ProfileServiceImpl) UpdateProfile(ctx context.Context, profileID uuid.UUID, req *dto.UpdateProfileDTO) (*dto.ProfileDTO, error) {
	profile, err := s.profileRepo.GetProfileByID(ctx, profileID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, ErrProfileNotFound
	}

	updates := make(map[string]interface{})
	if req.Username != nil {
		username := util.NormalizeUsername(*req.Username)
		if !util.ValidUsername(username) {
			return nil, ErrParamInvalid
		}
		if username != profile.Username {
			updates["username"] = username
		}
	}
	if req.FullName != nil {
		fullName, err := cleanOptionalText(req.FullName, consts.MaxFullNameLength)
		if err != nil {
			return nil, err
		}
		updates["full_name"] = fullName
	}
	if req.Bio != nil {
		bio, err := cleanOptionalText(req.Bio, consts.MaxBioLength)
		if err != nil {
			return nil, err
		}
		updates["bio"] = bio
	}
	if req.AvatarURL != nil {
		updates["avatar_url"] = emptyToNil(*req.AvatarURL)
	}
	if req.CoverURL != nil {
		updates["cover_url"] = emptyToNil(*req.CoverURL)
	}
	if req.Website != nil {
		updates["website"] = emptyToNil(*req.Website)
	}
	if req.Location != nil {
		location, err := cleanOptionalText(req.Location, 100)
		if err != nil {
			return nil, err
		}
		updates["location"] = location
	}
	if req.IsPrivate != nil {
		updates["is_private"] = *req.IsPrivate
	}

	if len(updates) > 0 {
		if err = s.profileRepo.UpdateProfile(ctx, profileID, updates); err != nil {
			return nil, mapRepoError(err)
		}
		if _, changed := updates["username"]; changed {
			_ = s.store.Delete(ctx, consts.ProfileByUsernameKey+profile.Username)
		}
	}

	updated, err := s.profileRepo.GetProfileByID(ctx, profileID)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, ErrProfileNotFound
	}
	s.reindex(updated)
	return toProfileDTO(updated, false), nil
}

// DeleteProfile 删除资料及其全部内容
func (s *ProfileServiceImpl) DeleteProfile(ctx context.Context, profileID uuid.UUID) error {
	profile, err := s.profileRepo.GetProfileByID(ctx, profileID)
	if err != nil {
		return err
	}
	if profile == nil {
		return ErrProfileNotFound
	}
	if err = s.profileRepo.DeleteProfile(ctx, profileID); err != nil {
		return err
	}

	_ = s.store.Delete(ctx,
		consts.ProfileByUsernameKey+profile.Username,
		consts.NotificationUnreadKey+profileID.String(),
		consts.MessageUnreadKey+profileID.String(),
	)

	if s.profileIndex != nil {
		go func() {
			if err := s.profileIndex.DeleteProfile(context.Background(), profileID); err != nil {
				log.Error("delete profile index error", "profileID", profileID, "err", err)
			}
		}()
	}
	log.InfoContext(ctx, "profile deleted", "profileID", profileID)
	return nil
}

// SearchProfiles 优先使用搜索索引，不可用时回退到数据库模糊查询
func (s *ProfileServiceImpl) SearchProfiles(ctx context.Context, req *dto.SearchProfileDTO) ([]*dto.ProfileBriefDTO, error) {
	keyword := strings.TrimSpace(req.Keyword)
	if keyword == "" {
		return []*dto.ProfileBriefDTO{}, nil
	}
	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = consts.SearchLimit
	}
	limit, offset := normalizePage(req.Page, pageSize)

	profiles, err := s.searchByIndex(ctx, keyword, offset, limit)
	if err != nil || profiles == nil {
		if err != nil {
			log.WarnContext(ctx, "profile index search failed, fallback to database", "err", err)
		}
		profiles, err = s.profileRepo.SearchProfiles(ctx, strings.ToLower(keyword), limit, offset)
		if err != nil {
			return nil, err
		}
	}

	res := make([]*dto.ProfileBriefDTO, 0, len(profiles))
	for _, p := range profiles {
		res = append(res, toProfileBrief(p))
	}
	return res, nil
}

func (s *ProfileServiceImpl) searchByIndex(ctx context.Context, keyword string, from, size int) ([]*model.Profile, error) {
	if s.profileIndex == nil {
		return nil, nil
	}
	ids, err := s.profileIndex.SearchProfileIDs(ctx, keyword, from, size)
	if err != nil {
		return nil, err
	}
	byID, err := profileMap(ctx, s.profileRepo, ids)
	if err != nil {
		return nil, err
	}
	profiles := make([]*model.Profile, 0, len(ids))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			profiles = append(profiles, p)
		}
	}
	return profiles, nil
}

func (s *ProfileServiceImpl) GetSuggestions(ctx context.Context, profileID uuid.UUID) ([]*dto.ProfileBriefDTO, error) {
	profiles, err := s.profileRepo.GetSuggestions(ctx, profileID, consts.SuggestionLimit)
	if err != nil {
		return nil, err
	}
	res := make([]*dto.ProfileBriefDTO, 0, len(profiles))
	for _, p := range profiles {
		res = append(res, toProfileBrief(p))
	}
	return res, nil
}

func (s *ProfileServiceImpl) withFollowState(ctx context.Context, viewerID uuid.UUID, profile *model.Profile) (*dto.ProfileDTO, error) {
	isFollowing := false
	if viewerID != uuid.Nil && viewerID != profile.ID {
		follow, err := s.followRepo.GetFollow(ctx, viewerID, profile.ID)
		if err != nil {
			return nil, err
		}
		isFollowing = follow != nil
	}
	return toProfileDTO(profile, isFollowing), nil
}

func (s *ProfileServiceImpl) reindex(profile *model.Profile) {
	if s.profileIndex == nil {
		return
	}
	indexed := *profile
	go func() {
		if err := s.profileIndex.IndexProfile(context.Background(), &indexed); err != nil {
			log.Error("index profile error", "profileID", indexed.ID, "err", err)
		}
	}()
}

func toProfileDTO(p *model.Profile, isFollowing bool) *dto.ProfileDTO {
	res := &dto.ProfileDTO{}
	copyDTO(res, p)
	res.IsFollowing = isFollowing
	return res
}

func emptyToNil(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
