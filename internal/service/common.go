package service

import (
	"Novii/internal/api/dto"
	"Novii/internal/model"
	"Novii/internal/pkg/cache"
	"Novii/internal/pkg/consts"
	"Novii/internal/pkg/util"
	"Novii/internal/repository"
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
)

const timeLayout = "2006-01-02 15:04:05"

// dtoCopyOption 实体到 DTO 的字段复制规则：UUID 与时间输出为字符串
var dtoCopyOption = copier.Option{
	Converters: []copier.TypeConverter{
		{
			SrcType: uuid.UUID{},
			DstType: "",
			Fn: func(src interface{}) (interface{}, error) {
				return src.(uuid.UUID).String(), nil
			},
		},
		{
			SrcType: time.Time{},
			DstType: "",
			Fn: func(src interface{}) (interface{}, error) {
				return formatTime(src.(time.Time)), nil
			},
		},
	},
}

func copyDTO(dst, src interface{}) {
	_ = copier.CopyWithOption(dst, src, dtoCopyOption)
}

// normalizePage 规范化分页参数，返回 limit 与 offset
func normalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if page > consts.MaxPage {
		page = consts.MaxPage
	}
	if pageSize <= 0 {
		pageSize = consts.DefaultPageSize
	}
	if pageSize > consts.MaxPageSize {
		pageSize = consts.MaxPageSize
	}
	return pageSize, (page - 1) * pageSize
}

func formatTime(t time.Time) string {
	return t.Local().Format(timeLayout)
}

// cleanText 清洗必填文本并校验长度
func cleanText(raw string, maxLen int) (string, error) {
	text := util.SanitizeText(raw)
	if text == "" {
		return "", ErrContentEmpty
	}
	if util.RuneLen(text) > maxLen {
		return "", ErrContentTooLong
	}
	return text, nil
}

// cleanOptionalText 清洗可选文本，清洗后为空视为 nil
func cleanOptionalText(raw *string, maxLen int) (*string, error) {
	text := util.SanitizePtr(raw)
	if text != nil && util.RuneLen(*text) > maxLen {
		return nil, ErrContentTooLong
	}
	return text, nil
}

// mapRepoError 仓储层错误转换为业务错误
func mapRepoError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrDuplicate):
		return ErrActionDuplicate
	case errors.Is(err, repository.ErrUsernameTaken):
		return ErrUsernameExist
	case errors.Is(err, repository.ErrEmailTaken):
		return ErrEmailExist
	case errors.Is(err, repository.ErrReferenceMissing):
		// 外键缺失：操作者或目标资料已被删除
		return ErrProfileNotFound
	}
	return err
}

func toProfileBrief(p *model.Profile) *dto.ProfileBriefDTO {
	if p == nil {
		return nil
	}
	return &dto.ProfileBriefDTO{
		ID:         p.ID.String(),
		Username:   p.Username,
		FullName:   p.FullName,
		AvatarURL:  p.AvatarURL,
		IsVerified: p.IsVerified,
	}
}

// profileMap 批量获取资料并按 ID 建立索引
func profileMap(ctx context.Context, repo repository.ProfileRepo, ids []uuid.UUID) (map[uuid.UUID]*model.Profile, error) {
	profiles, err := repo.GetProfilesByIDs(ctx, uniqueIDs(ids))
	if err != nil {
		return nil, err
	}
	res := make(map[uuid.UUID]*model.Profile, len(profiles))
	for _, p := range profiles {
		res[p.ID] = p
	}
	return res, nil
}

func uniqueIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	res := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if id == uuid.Nil {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		res = append(res, id)
	}
	return res
}

func uuidPtrString(id *uuid.UUID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}

// visibility 判断 viewer 能否查看 owner 的内容
type visibility struct {
	followRepo repository.FollowRepo
}

func (v visibility) canView(ctx context.Context, viewerID uuid.UUID, owner *model.Profile) (bool, error) {
	if owner.ID == viewerID || !owner.IsPrivate {
		return true, nil
	}
	if viewerID == uuid.Nil {
		return false, nil
	}
	follow, err := v.followRepo.GetFollow(ctx, viewerID, owner.ID)
	if err != nil {
		return false, err
	}
	return follow != nil, nil
}

const unreadCacheTTL = time.Minute

// cachedCount 读取缓存的计数，未命中时回源并写回
func cachedCount(ctx context.Context, store cache.Store, key string, fetch func(ctx context.Context) (int64, error)) (int64, error) {
	if raw, err := store.Get(ctx, key); err == nil && raw != "" {
		if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
			return n, nil
		}
	}
	n, err := fetch(ctx)
	if err != nil {
		return 0, err
	}
	_ = store.Set(ctx, key, strconv.FormatInt(n, 10), unreadCacheTTL)
	return n, nil
}
