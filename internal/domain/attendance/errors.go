package attendance

import "errors"

// Attendance domain errors
var (
	// Punch errors
	ErrAlreadyCheckedIn  = errors.New("you have already checked in today")
	ErrNotCheckedIn      = errors.New("you have not checked in yet")
	ErrAlreadyCheckedOut = errors.New("you have already checked out today")
	ErrNonWorkingDay     = errors.New("check-in is not allowed on a non-working day")
	ErrPunchInFlight     = errors.New("a punch is already being processed")

	// Break errors
	ErrBreakAlreadyOpen = errors.New("a break is already in progress")
	ErrNoOpenBreak      = errors.New("no break is in progress")

	// General errors
	ErrRecordNotFound = errors.New("attendance record not found")
)
