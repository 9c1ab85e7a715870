package stats

import (
	"context"
	"time"
)

// Repository fetches store-computed period aggregates. Only closed
// records contribute; the open day is extrapolated locally.
type Repository interface {
	GetStatistics(ctx context.Context, employeeID string, start, end time.Time) (PeriodStatistics, error)
}
