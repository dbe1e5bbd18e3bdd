package job

import (
	"Novii/internal/pkg/cache"
	"Novii/internal/pkg/consts"
	"Novii/internal/pkg/logger"
	"Novii/internal/service"
	"context"
	log "log/slog"
	"time"

	"github.com/google/uuid"
)

// StorySweepJob 清理过期快拍
type StorySweepJob struct {
	storySvc service.StoryService
	store    cache.Store
}

func NewStorySweepJob(storySvc service.StoryService, store cache.Store) *StorySweepJob {
	return &StorySweepJob{
		storySvc: storySvc,
		store:    store,
	}
}

func (s *StorySweepJob) Run() {
	traceID := "job-story-" + uuid.NewString()
	ctx := context.WithValue(context.Background(), logger.TraceIDKey, traceID)

	release, ok := acquire(ctx, s.store, consts.StorySweepLock, 10*time.Minute)
	if !ok {
		return
	}
	defer release()

	if _, err := s.storySvc.SweepExpiredStories(ctx); err != nil {
		log.ErrorContext(ctx, "story sweep error", "err", err)
	}
}
