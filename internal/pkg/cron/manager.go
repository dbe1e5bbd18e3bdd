package cron

import (
	"Novii/internal/job"
	log "log/slog"

	"github.com/robfig/cron/v3"
)

type Manager struct {
	engine              *cron.Cron
	counterReconcileJob *job.CounterReconcileJob
	storySweepJob       *job.StorySweepJob
	counterSpec         string
	storySweepSpec      string
}

// NewCronManager 任务调度使用带秒的 6 段 cron 表达式
func NewCronManager(
	counterReconcileJob *job.CounterReconcileJob,
	storySweepJob *job.StorySweepJob,
	counterSpec, storySweepSpec string,
) *Manager {
	return &Manager{
		engine:              cron.New(cron.WithSeconds()),
		counterReconcileJob: counterReconcileJob,
		storySweepJob:       storySweepJob,
		counterSpec:         counterSpec,
		storySweepSpec:      storySweepSpec,
	}
}

// RegisterJobs 注册定时任务
func (s *Manager) RegisterJobs() error {
	if _, err := s.engine.AddJob(s.counterSpec, s.counterReconcileJob); err != nil {
		return err
	}
	if _, err := s.engine.AddJob(s.storySweepSpec, s.storySweepJob); err != nil {
		return err
	}
	return nil
}

func (s *Manager) Start() {
	log.Info("Cron 定时任务引擎启动")
	s.engine.Start()
}

func (s *Manager) Stop() {
	log.Info("Cron 定时任务引擎停止")
	<-s.engine.Stop().Done()
}
