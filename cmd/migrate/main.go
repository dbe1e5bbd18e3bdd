package main

import (
	"Novii/internal/api/config"
	"Novii/internal/migrations"
	"Novii/internal/pkg/database"
	"Novii/internal/pkg/logger"
	"database/sql"
	"fmt"
	log "log/slog"
	"os"
)

const usage = "usage: migrate [up|down|status|reset]"

func main() {
	if len(os.Args) < 2 {
		fmt.Println(usage)
		os.Exit(2)
	}

	if err := config.LoadConfig(); err != nil {
		log.Error("Fatal error: failed to load configuration", "err", err)
		os.Exit(1)
	}
	logger.InitLogger(config.Cfg.Log)

	dbCfg := config.Cfg.DB
	db, err := database.NewGormDB(&dbCfg)
	if err != nil {
		log.Error("Fatal error: failed to create database connection", "err", err)
		os.Exit(1)
	}
	sqlDB, err := db.DB()
	if err != nil {
		log.Error("Fatal error: failed to get underlying DB", "err", err)
		os.Exit(1)
	}
	defer func() { _ = sqlDB.Close() }()

	if err = run(os.Args[1], sqlDB); err != nil {
		log.Error("Migration failed", "command", os.Args[1], "err", err)
		_ = sqlDB.Close()
		os.Exit(1)
	}
	log.Info("Migration finished", "command", os.Args[1])
}

func run(command string, db *sql.DB) error {
	switch command {
	case "up":
		return migrations.Up(db)
	case "down":
		return migrations.Down(db)
	case "status":
		return migrations.Status(db)
	case "reset":
		return migrations.Reset(db)
	default:
		return fmt.Errorf("unknown command %q, %s", command, usage)
	}
}
