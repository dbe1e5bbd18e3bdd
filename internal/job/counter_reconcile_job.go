package job

import (
	"Novii/internal/pkg/cache"
	"Novii/internal/pkg/consts"
	"Novii/internal/pkg/logger"
	"Novii/internal/repository"
	"context"
	log "log/slog"
	"time"

	"github.com/google/uuid"
)

// CounterReconcileJob 按边表重新计算冗余计数，修正偏差
type CounterReconcileJob struct {
	counterRepo repository.CounterRepo
	store       cache.Store
}

func NewCounterReconcileJob(counterRepo repository.CounterRepo, store cache.Store) *CounterReconcileJob {
	return &CounterReconcileJob{
		counterRepo: counterRepo,
		store:       store,
	}
}

func (s *CounterReconcileJob) Run() {
	traceID := "job-counter-" + uuid.NewString()
	ctx := context.WithValue(context.Background(), logger.TraceIDKey, traceID)
	_, _ = s.Execute(ctx)
}

// Execute 返回每类计数被修正的行数，未拿到锁时返回 nil
func (s *CounterReconcileJob) Execute(ctx context.Context) (map[string]int64, error) {
	release, ok := acquire(ctx, s.store, consts.CounterReconcileLock, 30*time.Minute)
	if !ok {
		log.InfoContext(ctx, "counter reconcile skipped, another instance is running")
		return nil, nil
	}
	defer release()

	start := time.Now()
	fixed, err := s.counterRepo.ReconcileCounters(ctx)
	if err != nil {
		log.ErrorContext(ctx, "counter reconcile error", "err", err)
		return nil, err
	}

	var total int64
	for _, n := range fixed {
		total += n
	}
	if total > 0 {
		log.WarnContext(ctx, "counter drift corrected", "fixed", fixed, "cost", time.Since(start))
	} else {
		log.InfoContext(ctx, "counter reconcile finished, no drift", "cost", time.Since(start))
	}
	return fixed, nil
}
