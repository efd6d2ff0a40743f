package register

import (
	"context"
	"time"
)

// Repository persists aggregator output. ReplaceForPeriod swaps all
// entries for a window atomically so readers never observe a half
// replaced register; it stamps the stored entries with the run's ID.
type Repository interface {
	ReplaceForPeriod(ctx context.Context, run *ReportRun, entries []*RegisterEntry) error
	GetRun(ctx context.Context, runID string) (*ReportRun, error)
	ListEntries(ctx context.Context, periodStart, periodEnd time.Time) ([]*RegisterEntry, error)
	LatestRun(ctx context.Context, periodStart, periodEnd time.Time) (*ReportRun, error)
}
