package leave

import "time"

// RequestStatus mirrors the leave workflow owned by the wider HR
// application. Only approved leave is visible to the calendar.
type RequestStatus string

const (
	StatusWaitingApproval RequestStatus = "waiting_approval"
	StatusApproved        RequestStatus = "approved"
	StatusRejected        RequestStatus = "rejected"
	StatusCancelled       RequestStatus = "cancelled"
)

// Record is an employee leave entry as read from the leave store.
type Record struct {
	ID         string
	EmployeeID string
	LeaveType  string
	StartDate  time.Time
	EndDate    time.Time
	Status     RequestStatus
}
