package main

import (
	"context"
	"errors"
	"flag"
	"fmt"

	"servicecatalog/internal/config"
	"servicecatalog/internal/platform/logging"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
)

func main() {
	var (
		command = flag.String("command", "up", "Migration command: up, down, status, create")
		name    = flag.String("name", "", "Name for 'create' command")
	)
	flag.Parse()

	logger, err := logging.New("info")
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	cfg, err := config.Load[config.Database]()
	if err != nil {
		logger.Fatal("invalid configuration", zap.Error(err))
	}

	msg, err := run(context.Background(), *command, *name, cfg)
	if err != nil {
		logger.Fatal("migration failed", zap.String("command", *command), zap.Error(err))
	}
	logger.Info(msg, zap.String("dir", cfg.MigrationsDir))
}

func run(ctx context.Context, command, name string, cfg config.Database) (string, error) {
	goose.SetBaseFS(nil)
	if err := goose.SetDialect("postgres"); err != nil {
		return "", err
	}

	if command == "create" {
		if name == "" {
			return "", errors.New("name is required for 'create' command")
		}
		if err := goose.Create(nil, cfg.MigrationsDir, name, "sql"); err != nil {
			return "", fmt.Errorf("create migration: %w", err)
		}
		return "migration created", nil
	}

	switch command {
	case "up", "down", "status":
	default:
		return "", fmt.Errorf("unknown command %q: use up, down, status, create", command)
	}

	if cfg.DSN == "" {
		return "", errors.New("DB_DSN is required")
	}

	pool, err := pgxpool.New(ctx, cfg.DSN)
	if err != nil {
		return "", fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()

	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	switch command {
	case "up":
		if err := goose.UpContext(ctx, db, cfg.MigrationsDir); err != nil {
			return "", fmt.Errorf("apply migrations: %w", err)
		}
		return "migrations applied", nil
	case "down":
		if err := goose.DownContext(ctx, db, cfg.MigrationsDir); err != nil {
			return "", fmt.Errorf("roll back migration: %w", err)
		}
		return "migration rolled back", nil
	default:
		if err := goose.StatusContext(ctx, db, cfg.MigrationsDir); err != nil {
			return "", fmt.Errorf("migration status: %w", err)
		}
		return "migration status printed", nil
	}
}
