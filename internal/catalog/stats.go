package catalog

import (
	"fmt"
	"sync/atomic"
)

// QueryStats counts lookups that found an entry (pass) and lookups that did
// not (fail). All methods are safe for concurrent use.
type QueryStats struct {
	total atomic.Int64
	pass  atomic.Int64
	fail  atomic.Int64
}

type StatsSummary struct {
	TotalQueries         int64   `json:"total_queries"`
	ProcessedQueries     int64   `json:"processed_queries"`
	RemainingQueries     int64   `json:"remaining_queries"`
	PassCount            int64   `json:"pass_count"`
	FailCount            int64   `json:"fail_count"`
	PassPercentage       float64 `json:"pass_percentage"`
	FailPercentage       float64 `json:"fail_percentage"`
	CompletionPercentage float64 `json:"completion_percentage"`
}

// NewQueryStats starts with an expected number of queries. Use 0 when the
// total is not known up front and grow it with AddTotal.
func NewQueryStats(total int) *QueryStats {
	s := &QueryStats{}
	s.total.Store(int64(total))
	return s
}

func (s *QueryStats) AddTotal(n int) { s.total.Add(int64(n)) }

func (s *QueryStats) IncrementPass() { s.pass.Add(1) }

func (s *QueryStats) IncrementFail() { s.fail.Add(1) }

func (s *QueryStats) Total() int64 { return s.total.Load() }

func (s *QueryStats) PassCount() int64 { return s.pass.Load() }

func (s *QueryStats) FailCount() int64 { return s.fail.Load() }

func (s *QueryStats) Processed() int64 {
	return s.pass.Load() + s.fail.Load()
}

func (s *QueryStats) Remaining() int64 {
	return max(0, s.total.Load()-s.Processed())
}

func (s *QueryStats) PassPercentage() float64 {
	return percent(s.pass.Load(), s.total.Load())
}

func (s *QueryStats) FailPercentage() float64 {
	return percent(s.fail.Load(), s.total.Load())
}

func (s *QueryStats) Summary() StatsSummary {
	total := s.total.Load()
	pass := s.pass.Load()
	fail := s.fail.Load()
	processed := pass + fail
	return StatsSummary{
		TotalQueries:         total,
		ProcessedQueries:     processed,
		RemainingQueries:     max(0, total-processed),
		PassCount:            pass,
		FailCount:            fail,
		PassPercentage:       percent(pass, total),
		FailPercentage:       percent(fail, total),
		CompletionPercentage: percent(processed, total),
	}
}

func (s *QueryStats) String() string {
	return s.Summary().String()
}

func (sum StatsSummary) String() string {
	return fmt.Sprintf("Query Statistics:\n"+
		"  Total Queries: %d\n"+
		"  Processed: %d (%.1f%%)\n"+
		"  Remaining: %d\n"+
		"  Passed: %d (%.1f%%)\n"+
		"  Failed: %d (%.1f%%)",
		sum.TotalQueries,
		sum.ProcessedQueries, sum.CompletionPercentage,
		sum.RemainingQueries,
		sum.PassCount, sum.PassPercentage,
		sum.FailCount, sum.FailPercentage)
}

func percent(n, total int64) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) / float64(total) * 100
}
