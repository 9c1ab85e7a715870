package attendance

import (
	"context"
	"time"
)

// Repository is the record store contract. Reads are idempotent;
// writes return the authoritative post-write record.
type Repository interface {
	// Create inserts a new daily record. A second insert for the same
	// (employee, date) fails with ErrAlreadyCheckedIn.
	Create(ctx context.Context, rec Record) (Record, error)

	// GetByEmployeeAndDate returns the record for one calendar day,
	// or nil when the day has no record yet.
	GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (*Record, error)

	// Update persists punch and derived fields of an existing record.
	Update(ctx context.Context, rec Record) (Record, error)

	// AttachPlaceName sets the resolved place name on one punch side
	// after the punch itself has already been persisted.
	AttachPlaceName(ctx context.Context, recordID string, side PunchSide, placeName string) error

	// ListByEmployee returns records for one employee with optional
	// date-range and status filters, newest first, paginated.
	ListByEmployee(ctx context.Context, employeeID string, filter ListFilter) ([]Record, int64, error)

	// ListRange returns all records for one employee inside
	// [start, end), oldest first, breaks included.
	ListRange(ctx context.Context, employeeID string, start, end time.Time) ([]Record, error)

	// OpenBreak starts a break on a record. Fails with
	// ErrBreakAlreadyOpen while another break is unfinished.
	OpenBreak(ctx context.Context, recordID string, at time.Time) (Break, error)

	// CloseOpenBreak ends the record's open break and folds its
	// duration into the record's break total. Fails with
	// ErrNoOpenBreak when nothing is open.
	CloseOpenBreak(ctx context.Context, recordID string, at time.Time) (Break, error)

	// ActiveEmployeeIDs lists employees eligible for absence marking.
	ActiveEmployeeIDs(ctx context.Context) ([]string, error)

	// BulkCreateAbsences inserts absence markers, skipping days that
	// already have a record.
	BulkCreateAbsences(ctx context.Context, recs []Record) error
}
