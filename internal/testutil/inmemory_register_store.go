package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/mariiahub/taxcore/internal/domain/register"
	ierr "github.com/mariiahub/taxcore/internal/errors"
)

// InMemoryRegisterStore implements register.Repository
type InMemoryRegisterStore struct {
	mu      sync.RWMutex
	runs    map[string]*register.ReportRun
	entries map[string][]*register.RegisterEntry // keyed by run ID
}

func NewInMemoryRegisterStore() *InMemoryRegisterStore {
	return &InMemoryRegisterStore{
		runs:    make(map[string]*register.ReportRun),
		entries: make(map[string][]*register.RegisterEntry),
	}
}

func (s *InMemoryRegisterStore) ReplaceForPeriod(ctx context.Context, run *register.ReportRun, entries []*register.RegisterEntry) error {
	if run == nil {
		return ierr.NewError("run cannot be nil").
			WithHint("Report run data is required").
			Mark(ierr.ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// drop every earlier run over the same window
	for id, existing := range s.runs {
		if existing.PeriodStart.Equal(run.PeriodStart) && existing.PeriodEnd.Equal(run.PeriodEnd) {
			delete(s.runs, id)
			delete(s.entries, id)
		}
	}

	stored := make([]*register.RegisterEntry, len(entries))
	for i, entry := range entries {
		clone := *entry
		clone.RunID = run.ID
		stored[i] = &clone
	}
	s.runs[run.ID] = run
	s.entries[run.ID] = stored
	return nil
}

func (s *InMemoryRegisterStore) GetRun(ctx context.Context, runID string) (*register.ReportRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, ok := s.runs[runID]
	if !ok {
		return nil, ierr.NewError("report run not found").
			WithHintf("Report run with ID %s was not found", runID).
			Mark(ierr.ErrNotFound)
	}
	return run, nil
}

func (s *InMemoryRegisterStore) ListEntries(ctx context.Context, periodStart, periodEnd time.Time) ([]*register.RegisterEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*register.RegisterEntry
	for runID, run := range s.runs {
		if run.PeriodStart.Equal(periodStart) && run.PeriodEnd.Equal(periodEnd) {
			result = append(result, s.entries[runID]...)
		}
	}
	return result, nil
}

func (s *InMemoryRegisterStore) LatestRun(ctx context.Context, periodStart, periodEnd time.Time) (*register.ReportRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var latest *register.ReportRun
	for _, run := range s.runs {
		if !run.PeriodStart.Equal(periodStart) || !run.PeriodEnd.Equal(periodEnd) {
			continue
		}
		if latest == nil || run.CreatedAt.After(latest.CreatedAt) {
			latest = run
		}
	}
	if latest == nil {
		return nil, ierr.NewError("report run not found").
			WithHint("No report run exists for the requested period").
			Mark(ierr.ErrNotFound)
	}
	return latest, nil
}

func (s *InMemoryRegisterStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs = make(map[string]*register.ReportRun)
	s.entries = make(map[string][]*register.RegisterEntry)
}
