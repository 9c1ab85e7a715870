package attendance

import (
	"time"
)

// Status of a daily attendance record. The values are mutually
// exclusive; exactly one applies at any time.
type Status string

const (
	StatusPresent Status = "present"
	StatusLate    Status = "late"
	StatusHalfDay Status = "half_day"
	StatusAbsent  Status = "absent"
	StatusOnLeave Status = "on_leave"
)

// PunchSide distinguishes the two punch events of a session.
type PunchSide string

const (
	PunchCheckIn  PunchSide = "check_in"
	PunchCheckOut PunchSide = "check_out"
)

// Record is one employee's attendance for one calendar day.
// There is at most one record per (employee, date); the date is a
// local calendar day, the punch timestamps are absolute.
type Record struct {
	ID         string
	EmployeeID string
	Date       time.Time

	CheckInAt        *time.Time
	CheckInLatitude  *float64
	CheckInLongitude *float64
	CheckInPlace     *string

	CheckOutAt        *time.Time
	CheckOutLatitude  *float64
	CheckOutLongitude *float64
	CheckOutPlace     *string

	// Breaks are ordered by StartAt; at most one may be open.
	Breaks []Break

	// TotalBreakMinutes sums closed breaks only. An open break does
	// not count until it is ended.
	TotalBreakMinutes int

	Status          Status
	WorkMinutes     *int
	LateMinutes     *int
	OvertimeMinutes *int

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Break is a pause inside a session.
type Break struct {
	ID       string
	RecordID string
	StartAt  time.Time
	EndAt    *time.Time
}

// SessionState is the check-in state machine position derived from a
// record. CheckedOut is terminal for the day.
type SessionState string

const (
	StateNotCheckedIn SessionState = "not_checked_in"
	StateCheckedIn    SessionState = "checked_in"
	StateCheckedOut   SessionState = "checked_out"
)

// State derives the session state from the record's punches. A nil
// record means the day has not started.
func (r *Record) State() SessionState {
	switch {
	case r == nil || r.CheckInAt == nil:
		return StateNotCheckedIn
	case r.CheckOutAt == nil:
		return StateCheckedIn
	default:
		return StateCheckedOut
	}
}

// OpenSession reports whether the record is an open session: checked
// in, not checked out, and not an absence marker.
func (r *Record) OpenSession() bool {
	return r != nil && r.CheckInAt != nil && r.CheckOutAt == nil && r.Status != StatusAbsent
}

// OpenBreak returns the unfinished break, if any.
func (r *Record) OpenBreak() *Break {
	for i := range r.Breaks {
		if r.Breaks[i].EndAt == nil {
			return &r.Breaks[i]
		}
	}
	return nil
}
