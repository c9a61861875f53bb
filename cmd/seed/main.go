package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"strings"

	"servicecatalog/internal/catalog"
	"servicecatalog/internal/config"
	"servicecatalog/internal/ingest"
	"servicecatalog/internal/platform/logging"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

func main() {
	var (
		file     = flag.String("file", "", "Catalog file to import (blocks, .csv or .yaml)")
		generate = flag.Int("generate", 0, "Write this many synthetic entries to -file before importing")
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
	if *file == "" {
		logger.Fatal("-file is required")
	}
	if cfg.DSN == "" {
		logger.Fatal("DB_DSN is required")
	}

	if *generate > 0 {
		f, err := os.Create(*file)
		if err != nil {
			logger.Fatal("create catalog file", zap.Error(err))
		}
		if err := writeSynthetic(f, *generate, rand.New(rand.NewPCG(1, 2))); err != nil {
			logger.Fatal("generate catalog", zap.Error(err))
		}
		if err := f.Close(); err != nil {
			logger.Fatal("close catalog file", zap.Error(err))
		}
		logger.Info("generated catalog", zap.String("file", *file), zap.Int("entries", *generate))
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.DSN)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer pool.Close()

	catalogRepo := catalog.NewPostgresRepo(pool)
	svc := ingest.NewService(
		ingest.FileSource{Path: *file},
		catalogRepo,
		ingest.NewPostgresRepo(pool),
		catalog.NewService(nil),
		logger,
	)

	run, err := svc.Run(ctx)
	if err != nil {
		logger.Fatal("import failed", zap.String("run_id", run.ID), zap.Error(err))
	}

	total, err := catalogRepo.Count(ctx)
	if err != nil {
		logger.Fatal("count entries", zap.Error(err))
	}
	logger.Info("import complete",
		zap.String("run_id", run.ID),
		zap.Int("entries_upserted", run.EntriesUpserted),
		zap.Int("total_in_db", total),
	)
}

var (
	categories = []string{"Compute Resources", "Identity", "Network", "Storage", "Databases", "Security", "End User Computing", "Monitoring"}
	items      = []string{"Provisioning", "Access Request", "Quota Increase", "Decommission", "Troubleshooting", "Configuration Change"}
)

// writeSynthetic emits n blocks. Every third entry is keyed by topic and
// every seventh has no key at all.
func writeSynthetic(w io.Writer, n int, rng *rand.Rand) error {
	var sb strings.Builder
	for i := range n {
		category := categories[rng.IntN(len(categories))]
		item := items[rng.IntN(len(items))]

		switch {
		case i%7 == 6:
		case i%3 == 2:
			fmt.Fprintf(&sb, "Topic: %s %s %d\n", category, item, i+1)
		default:
			fmt.Fprintf(&sb, "Id: svc-%05d\n", i+1)
		}
		fmt.Fprintf(&sb, "Category: %s\n", category)
		fmt.Fprintf(&sb, "Subcategory: %s\n", item)
		fmt.Fprintf(&sb, "Brief Description: %s for %s\n", item, strings.ToLower(category))
		fmt.Fprintf(&sb, "Description: Synthetic entry %d generated for load testing.\n\n", i+1)

		if sb.Len() > 64<<10 {
			if _, err := io.WriteString(w, sb.String()); err != nil {
				return err
			}
			sb.Reset()
		}
	}
	_, err := io.WriteString(w, sb.String())
	return err
}
