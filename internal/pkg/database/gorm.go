package database

import (
	"Novii/internal/api/config"
	"Novii/internal/pkg/logger"
	"context"
	"fmt"
	log "log/slog"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

const (
	pingAttempts = 5
	pingTimeout  = 3 * time.Second
)

// NewGormDB 打开 Postgres 连接并配置连接池，启动期数据库未就绪时重试
func NewGormDB(cfg *config.DBConfig) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.New(postgres.Config{DSN: cfg.DSN}), &gorm.Config{
		Logger:                 logger.NewGormLogger(time.Duration(cfg.SlowThreshold) * time.Millisecond),
		PrepareStmt:            true,
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying DB: %w", err)
	}
	if cfg.MaxIdle > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdle)
	}
	if cfg.MaxOpen > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpen)
	}
	if cfg.MaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(time.Duration(cfg.MaxLifetime) * time.Minute)
	}

	backoff := 500 * time.Millisecond
	for attempt := 1; ; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
		err = sqlDB.PingContext(ctx)
		cancel()
		if err == nil {
			break
		}
		if attempt >= pingAttempts {
			_ = sqlDB.Close()
			return nil, fmt.Errorf("database connection check failed after %d attempts: %w", attempt, err)
		}
		log.Warn("Database not ready, retrying", "attempt", attempt, "err", err)
		time.Sleep(backoff)
		backoff *= 2
	}

	log.Info("Database connection established", "max_open", cfg.MaxOpen, "max_idle", cfg.MaxIdle)
	return db, nil
}
