package calendar

import (
	"context"
	"time"
)

// Service merges attendance, approved leave, and holidays into one
// event list for a visible date window. Navigation re-composes for
// the newly visible range only.
type Service interface {
	Compose(ctx context.Context, start, end time.Time) ([]Event, error)
}
