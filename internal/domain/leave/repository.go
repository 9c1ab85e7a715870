package leave

import (
	"context"
	"time"
)

// Repository is the read-only leave store contract consumed by the
// calendar composer.
type Repository interface {
	// ListApprovedOverlapping returns approved leave records whose
	// [StartDate, EndDate] range overlaps [start, end).
	ListApprovedOverlapping(ctx context.Context, employeeID string, start, end time.Time) ([]Record, error)
}
