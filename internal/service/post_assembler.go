package service

import (
	"Novii/internal/api/dto"
	"Novii/internal/model"
	"Novii/internal/repository"
	"context"

	"github.com/google/uuid"
)

// postAssembler 组装帖子列表：作者信息与当前用户的点赞、收藏状态
type postAssembler struct {
	profileRepo   repository.ProfileRepo
	likeRepo      repository.LikeRepo
	savedPostRepo repository.SavedPostRepo
}

func (a postAssembler) build(ctx context.Context, viewerID uuid.UUID, posts []*model.Post) ([]*dto.PostDTO, error) {
	if len(posts) == 0 {
		return []*dto.PostDTO{}, nil
	}
	postIDs := model.IDs(posts, func(p *model.Post) uuid.UUID { return p.ID })
	authorIDs := model.IDs(posts, func(p *model.Post) uuid.UUID { return p.UserID })

	authors, err := profileMap(ctx, a.profileRepo, authorIDs)
	if err != nil {
		return nil, err
	}

	liked := map[uuid.UUID]bool{}
	saved := map[uuid.UUID]bool{}
	if viewerID != uuid.Nil {
		if liked, err = a.likeRepo.GetLikedSet(ctx, viewerID, model.TargetPost, postIDs); err != nil {
			return nil, err
		}
		if saved, err = a.savedPostRepo.GetSavedSet(ctx, viewerID, postIDs); err != nil {
			return nil, err
		}
	}

	res := make([]*dto.PostDTO, 0, len(posts))
	for _, p := range posts {
		item := toPostDTO(p, authors[p.UserID])
		item.IsLiked = liked[p.ID]
		item.IsSaved = saved[p.ID]
		res = append(res, item)
	}
	return res, nil
}

func toPostDTO(p *model.Post, author *model.Profile) *dto.PostDTO {
	item := &dto.PostDTO{}
	copyDTO(item, p)
	item.Author = toProfileBrief(author)
	return item
}
