package cron

import (
	"fmt"
	log "log/slog"
)

// InitCron 注册计数校正与快拍清理任务并启动调度
func InitCron(mgr *Manager) error {
	if err := mgr.RegisterJobs(); err != nil {
		return fmt.Errorf("failed to register cron jobs: %w", err)
	}
	log.Info("Cron jobs registered",
		"counter_reconcile", mgr.counterSpec,
		"story_sweep", mgr.storySweepSpec,
		"entries", len(mgr.engine.Entries()),
	)
	mgr.Start()
	return nil
}
