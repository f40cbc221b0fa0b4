package store

import (
	"sync"

	"github.com/preston-bernstein/hockey-tournament-sim/internal/domain"
	"github.com/preston-bernstein/hockey-tournament-sim/internal/domain/medals"
)

// MemoryStore memoizes tournament runs by seed and medal reports by sample
// size for the lifetime of the process. It is safe for concurrent use.
type MemoryStore struct {
	mu      sync.RWMutex
	runs    map[int64]domain.TournamentRun
	reports map[int]medals.Report
}

// NewMemoryStore constructs an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		runs:    make(map[int64]domain.TournamentRun),
		reports: make(map[int]medals.Report),
	}
}

// GetRun returns a copy of the cached run for a seed.
func (s *MemoryStore) GetRun(seed int64) (domain.TournamentRun, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, ok := s.runs[seed]
	if !ok {
		return domain.TournamentRun{}, false
	}
	return run.Clone(), true
}

// SetRun caches a copy of the run under its seed.
func (s *MemoryStore) SetRun(run domain.TournamentRun) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.runs[run.Seed] = run.Clone()
}

// GetReport returns a copy of the cached report for a sample size.
func (s *MemoryStore) GetReport(simulations int) (medals.Report, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	report, ok := s.reports[simulations]
	if !ok {
		return medals.Report{}, false
	}
	return report.Clone(), true
}

// SetReport caches a copy of the report under its sample size.
func (s *MemoryStore) SetReport(report medals.Report) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.reports[report.Simulations] = report.Clone()
}

// Runs returns how many runs are cached.
func (s *MemoryStore) Runs() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.runs)
}
