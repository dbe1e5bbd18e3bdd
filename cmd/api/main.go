package main

import (
	"Novii/internal/api/config"
	"Novii/internal/migrations"
	"Novii/internal/pkg/cache"
	"Novii/internal/pkg/consts"
	"Novii/internal/pkg/cron"
	"Novii/internal/pkg/database"
	"Novii/internal/pkg/es"
	"Novii/internal/pkg/logger"
	"Novii/internal/pkg/redis"
	"Novii/internal/pkg/security"
	"Novii/internal/service"
	"Novii/internal/wire"
	"context"
	"errors"
	"fmt"
	log "log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"
)

func main() {
	// 加载配置
	if err := config.LoadConfig(); err != nil {
		log.Error("Fatal error: failed to load configuration", "err", err)
		panic(err)
	}
	cfg := config.Cfg

	// 初始化日志
	logger.InitLogger(cfg.Log)

	// JWT
	security.Init(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.Expiration)

	// 数据库连接
	dbCfg := cfg.DB
	db, err := database.NewGormDB(&dbCfg)
	if err != nil {
		log.Error("Fatal error: failed to create database connection", "err", err)
		panic(err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		log.Error("Fatal error: failed to get underlying DB", "err", err)
		panic(err)
	}
	defer func() { _ = sqlDB.Close() }()

	if cfg.DB.AutoMigrate {
		if err = migrations.Up(sqlDB); err != nil {
			log.Error("Fatal error: failed to run migrations", "err", err)
			panic(err)
		}
	}

	// 缓存：配置了 Redis 地址则使用 Redis，否则使用进程内 LRU
	var store cache.Store
	if cfg.Redis.Addr != "" {
		if err = redis.InitRedis(cfg.Redis); err != nil {
			log.Error("Fatal error: failed to create redis connection", "err", err)
			panic(err)
		}
		defer func() { _ = redis.Close() }()
		store = cache.NewRedisStore()
	} else {
		localStore, err := cache.NewLocalStore(cfg.Redis.LocalCap, consts.TokenRevokedKey)
		if err != nil {
			log.Error("Fatal error: failed to create local cache", "err", err)
			panic(err)
		}
		log.Warn("Redis address is empty, using in-process cache")
		store = localStore
	}

	// ElasticSearch 连接
	var profileIndex service.ProfileIndex
	if cfg.Elastic.Enable {
		client, err := es.InitClient(cfg.Elastic)
		if err != nil {
			log.Error("Fatal error: failed to initialize ElasticSearch", "err", err)
			panic(err)
		}
		profileIndex = es.NewProfileRepo(client, cfg.Elastic.Indices.ProfileIndex)
	}

	// 依赖注入
	app, err := wire.BuildApplication(db, cfg, store, profileIndex)
	if err != nil {
		log.Error("Fatal error: failed to create application", "err", err)
		panic(err)
	}
	if app.Producer != nil {
		defer func() { _ = app.Producer.Close() }()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	g, ctx := errgroup.WithContext(ctx)

	// 定时任务
	err = cron.InitCron(app.CronMgr)
	if err != nil {
		log.Error("Fatal error: failed to start cron jobs", "err", err)
		panic(err)
	}
	g.Go(func() error {
		<-ctx.Done()
		log.Info("Cron Jobs stopping...")
		app.CronMgr.Stop()
		return nil
	})

	// Kafka 消费者
	if app.KafkaManager != nil {
		g.Go(func() error {
			log.Info("Kafka Consumers starting...")
			return app.KafkaManager.Start(ctx)
		})
	}

	// HTTP 服务器
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: app.Router,
	}
	g.Go(func() error {
		log.Info("HTTP Server starting...", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	// 优雅退出
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

		select {
		case <-ctx.Done():
		case sig := <-quit:
			log.Info("Received signal, shutting down...", "signal", sig)
			cancel()
		}

		timeout := time.Duration(cfg.Server.ShutdownTimeout) * time.Second
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), timeout)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("HTTP Server shutdown failed", "err", err)
		}
		return nil
	})

	if err = g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("App exited with error", "err", err)
	}
	log.Info("App exited successfully.")
}
