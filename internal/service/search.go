package service

import (
	"Novii/internal/model"
	"context"

	"github.com/google/uuid"
)

// ProfileIndex 用户资料搜索索引，未启用 Elasticsearch 时为 nil
type ProfileIndex interface {
	IndexProfile(ctx context.Context, profile *model.Profile) error
	DeleteProfile(ctx context.Context, id uuid.UUID) error
	SearchProfileIDs(ctx context.Context, keyword string, from, size int) ([]uuid.UUID, error)
}
