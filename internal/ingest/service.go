package ingest

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"servicecatalog/internal/catalog"
)

// IndexSwapper receives each freshly built index.
type IndexSwapper interface {
	Swap(idx *catalog.Index) *catalog.Index
}

type Service struct {
	source      Source
	catalogRepo catalog.Repository
	ingestRepo  Repository
	target      IndexSwapper
	logger      *zap.Logger

	mu  sync.Mutex
	now func() time.Time
}

// NewService wires an ingest pipeline. catalogRepo and ingestRepo may be nil
// when the catalog is served from memory only.
func NewService(source Source, catalogRepo catalog.Repository, ingestRepo Repository, target IndexSwapper, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		source:      source,
		catalogRepo: catalogRepo,
		ingestRepo:  ingestRepo,
		target:      target,
		logger:      logger,
		now:         time.Now,
	}
}

// Run loads the source, mirrors it to the database and swaps it in. A run
// that fails at any step leaves the previously served index untouched.
func (s *Service) Run(ctx context.Context) (run Run, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	run = Run{
		Status:    StatusRunning,
		Source:    s.source.Name(),
		StartedAt: s.now(),
	}
	if s.ingestRepo != nil {
		id, rErr := s.ingestRepo.CreateRun(ctx, &run)
		if rErr != nil {
			return run, fmt.Errorf("create ingest run: %w", rErr)
		}
		run.ID = id
	} else {
		run.ID = uuid.NewString()
	}

	defer func() {
		now := s.now()
		run.FinishedAt = &now
		if err != nil {
			run.Status = StatusFailed
			run.Error = err.Error()
		} else {
			run.Status = StatusCompleted
		}

		if s.ingestRepo != nil {
			if updateErr := s.ingestRepo.UpdateRun(context.WithoutCancel(ctx), &run); updateErr != nil {
				s.logger.Warn("failed to update ingest run", zap.String("run_id", run.ID), zap.Error(updateErr))
			}
		}

		fields := []zap.Field{
			zap.String("run_id", run.ID),
			zap.String("source", run.Source),
			zap.String("status", run.Status),
			zap.Int("entries", run.EntriesParsed),
			zap.Duration("duration", now.Sub(run.StartedAt)),
		}
		if err != nil {
			s.logger.Error("catalog ingest failed", append(fields, zap.Error(err))...)
		} else {
			s.logger.Info("catalog ingest completed", fields...)
		}
	}()

	idx, err := s.load(ctx)
	if err != nil {
		return run, err
	}
	run.EntriesParsed = idx.Size()

	if s.catalogRepo != nil {
		n, err := s.catalogRepo.ReplaceAll(ctx, slices.Collect(idx.All()))
		if err != nil {
			return run, fmt.Errorf("persist catalog: %w", err)
		}
		run.EntriesUpserted = n
	}

	s.target.Swap(idx)
	return run, nil
}

func (s *Service) load(ctx context.Context) (*catalog.Index, error) {
	rc, format, err := s.source.Open(ctx)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", s.source.Name(), err)
	}
	defer rc.Close()

	idx, err := catalog.Load(rc, format)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", s.source.Name(), err)
	}
	return idx, nil
}
