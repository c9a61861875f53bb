package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"servicecatalog/internal/catalog"
	"servicecatalog/internal/config"
	"servicecatalog/internal/ingest"
	"servicecatalog/internal/platform/logging"
	"servicecatalog/internal/platform/remote"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.Load[config.API]()
	if err != nil {
		// No logger yet; fall back to a default one for this single message.
		zap.NewExample().Fatal("invalid configuration", zap.Error(err))
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		zap.NewExample().Fatal("invalid log level", zap.Error(err))
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		dbPool      *pgxpool.Pool
		catalogRepo catalog.Repository
		ingestRepo  ingest.Repository
	)
	if cfg.Database.DSN != "" {
		dbPool = mustOpenDB(ctx, cfg.Database.DSN, logger)
		defer dbPool.Close()
		catalogRepo = catalog.NewPostgresRepo(dbPool)
		ingestRepo = ingest.NewPostgresRepo(dbPool)
	} else {
		logger.Info("DB_DSN not set, serving from memory only")
	}

	catalogSvc := catalog.NewService(nil)
	source := ingest.NewSource(cfg.CatalogPath, remote.NewClient("servicecatalog/1.0", 2, 3))
	ingestSvc := ingest.NewService(source, catalogRepo, ingestRepo, catalogSvc, logger)

	if _, err := ingestSvc.Run(ctx); err != nil {
		logger.Fatal("initial catalog load failed", zap.String("source", source.Name()), zap.Error(err))
	}

	var ready func(context.Context) error
	if dbPool != nil {
		ready = dbPool.Ping
	}

	handler := newRouter(ctx, cfg, catalogSvc, ingestSvc, ready, logger)

	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      handler,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting server", zap.String("addr", cfg.Addr), zap.Int("entries", catalogSvc.Size()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		logger.Info("shutting down server")
		return httpServer.Shutdown(shutdownCtx)
	})
	if cfg.CatalogWatch {
		if fs, ok := source.(ingest.FileSource); ok {
			watcher := ingest.NewWatcher(fs.Path, ingestSvc, logger)
			g.Go(func() error { return watcher.Run(gctx) })
		} else {
			logger.Warn("CATALOG_WATCH ignored for remote catalog", zap.String("source", source.Name()))
		}
	}

	if err := g.Wait(); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
	logger.Info("server stopped")
}

func mustOpenDB(ctx context.Context, dsn string, logger *zap.Logger) *pgxpool.Pool {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		logger.Fatal("cannot create db pool", zap.Error(err))
	}
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		logger.Fatal("cannot ping database", zap.String("dsn", redactDSN(dsn)), zap.Error(err))
	}
	logger.Info("database connection OK")
	return pool
}

func redactDSN(dsn string) string {
	const marker = "://"
	start := strings.Index(dsn, marker)
	if start < 0 {
		return dsn
	}
	start += len(marker)
	end := strings.Index(dsn[start:], "@")
	if end < 0 {
		return dsn
	}
	return dsn[:start] + "***" + dsn[start+end:]
}
