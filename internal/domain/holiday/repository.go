package holiday

import (
	"context"
	"time"
)

// Repository is the read-only holiday store contract.
type Repository interface {
	// ListRange returns holidays with a date inside [start, end).
	ListRange(ctx context.Context, start, end time.Time) ([]Holiday, error)
}
