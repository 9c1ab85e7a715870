package attendance

import (
	"context"
)

// SessionService owns the daily session state machine. The employee
// identity comes from the JWT claims in the context.
type SessionService interface {
	// CheckIn opens today's session. Rejected on non-working days,
	// when already checked in, or while another punch is in flight.
	// Geolocation enrichment is best-effort and never blocks.
	CheckIn(ctx context.Context, req PunchRequest) (PunchResponse, error)

	// CheckOut closes the open session. Same enrichment semantics.
	CheckOut(ctx context.Context, req PunchRequest) (PunchResponse, error)

	// BreakStart opens a break inside the open session.
	BreakStart(ctx context.Context) (RecordResponse, error)

	// BreakEnd closes the open break.
	BreakEnd(ctx context.Context) (RecordResponse, error)

	// Today returns today's record (nil state mapped to an empty
	// not_checked_in response) with live production hours.
	Today(ctx context.Context) (RecordResponse, error)

	// ListMine returns the employee's attendance history.
	ListMine(ctx context.Context, filter ListFilter) (ListResponse, error)
}
