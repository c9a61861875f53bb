package catalog

import (
	"context"
	"slices"
	"sync/atomic"
)

// Service answers queries against the current index. The index is replaced
// wholesale by Swap, so readers always see a fully built catalog.
type Service struct {
	index atomic.Pointer[Index]
	stats *QueryStats
}

func NewService(idx *Index) *Service {
	s := &Service{stats: NewQueryStats(0)}
	if idx != nil {
		s.index.Store(idx)
	}
	return s
}

// Swap installs idx and returns the index it replaced.
func (s *Service) Swap(idx *Index) *Index {
	return s.index.Swap(idx)
}

func (s *Service) Loaded() bool {
	return s.index.Load() != nil
}

func (s *Service) Size() int {
	if idx := s.index.Load(); idx != nil {
		return idx.Size()
	}
	return 0
}

func (s *Service) Lookup(ctx context.Context, key string) (Entry, error) {
	if err := ctx.Err(); err != nil {
		return Entry{}, err
	}
	s.stats.AddTotal(1)

	idx := s.index.Load()
	if idx == nil {
		s.stats.IncrementFail()
		return Entry{}, &NotFoundError{Key: key}
	}
	e, err := idx.Lookup(key)
	if err != nil {
		s.stats.IncrementFail()
		return Entry{}, err
	}
	s.stats.IncrementPass()
	return e, nil
}

// List pages through entries, optionally restricted to one category. The
// returned total counts all matches before paging.
func (s *Service) List(ctx context.Context, q ListQuery) ([]Entry, int, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	idx := s.index.Load()
	if idx == nil {
		return []Entry{}, 0, nil
	}

	matches := idx.ByCategory(q.Category)
	total := len(matches)

	start := min(max(q.Offset, 0), total)
	if q.AfterKey != "" {
		i := slices.IndexFunc(matches, func(e Entry) bool { return e.Key == q.AfterKey })
		if i < 0 {
			return nil, 0, ErrInvalidCursor
		}
		start = i + 1
	}
	end := total
	if q.Limit > 0 {
		end = min(start+q.Limit, total)
	}
	return matches[start:end], total, nil
}

func (s *Service) Categories(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	idx := s.index.Load()
	if idx == nil {
		return []string{}, nil
	}
	return idx.Categories(), nil
}

func (s *Service) Stats() StatsSummary {
	return s.stats.Summary()
}
