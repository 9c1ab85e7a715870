package calendar

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/shiftly-hr/attendance-backend-go/internal/domain/attendance"
	"github.com/shiftly-hr/attendance-backend-go/internal/domain/calendar"
	"github.com/shiftly-hr/attendance-backend-go/internal/domain/holiday"
	"github.com/shiftly-hr/attendance-backend-go/internal/domain/leave"
	"github.com/shiftly-hr/attendance-backend-go/internal/pkg/jwt"
)

// Fixed event colors. The status-to-color mapping is part of the API
// contract; clients render the keys directly.
const (
	ColorPresent = "green"
	ColorAbsent  = "red"
	ColorLate    = "orange"
	ColorHalfDay = "yellow"
	ColorOnLeave = "purple"
	ColorHoliday = "blue"
)

type service struct {
	attendanceRepo attendance.Repository
	leaveRepo      leave.Repository
	holidayRepo    holiday.Repository
}

func NewCalendarService(
	attendanceRepo attendance.Repository,
	leaveRepo leave.Repository,
	holidayRepo holiday.Repository,
) calendar.Service {
	return &service{
		attendanceRepo: attendanceRepo,
		leaveRepo:      leaveRepo,
		holidayRepo:    holidayRepo,
	}
}

func (s *service) Compose(ctx context.Context, start, end time.Time) ([]calendar.Event, error) {
	employeeID, err := jwt.EmployeeIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var (
		records  []attendance.Record
		leaves   []leave.Record
		holidays []holiday.Holiday
	)

	g, fetchCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		records, err = s.attendanceRepo.ListRange(fetchCtx, employeeID, start, end)
		if err != nil {
			return fmt.Errorf("failed to list attendance records: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		leaves, err = s.leaveRepo.ListApprovedOverlapping(fetchCtx, employeeID, start, end)
		if err != nil {
			return fmt.Errorf("failed to list leave records: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		holidays, err = s.holidayRepo.ListRange(fetchCtx, start, end)
		if err != nil {
			return fmt.Errorf("failed to list holidays: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	events := make([]calendar.Event, 0, len(records)+len(leaves)+len(holidays))

	for _, rec := range records {
		events = append(events, calendar.Event{
			Title:      statusTitle(rec.Status),
			StartDate:  rec.Date,
			EndDate:    rec.Date,
			ColorKey:   statusColor(rec.Status),
			SourceKind: calendar.SourceAttendance,
		})
	}

	for _, lv := range leaves {
		// The repository only returns approved leave; the filter here
		// keeps a misbehaving store from leaking pending requests.
		if lv.Status != leave.StatusApproved {
			continue
		}
		events = append(events, calendar.Event{
			Title:      leaveTitle(lv.LeaveType),
			StartDate:  lv.StartDate,
			EndDate:    lv.EndDate,
			ColorKey:   ColorOnLeave,
			SourceKind: calendar.SourceLeave,
		})
	}

	for _, h := range holidays {
		events = append(events, calendar.Event{
			Title:      h.Name,
			StartDate:  h.Date,
			EndDate:    h.Date,
			ColorKey:   ColorHoliday,
			SourceKind: calendar.SourceHoliday,
		})
	}

	return events, nil
}

func statusTitle(status attendance.Status) string {
	switch status {
	case attendance.StatusPresent:
		return "Present"
	case attendance.StatusLate:
		return "Late"
	case attendance.StatusHalfDay:
		return "Half Day"
	case attendance.StatusAbsent:
		return "Absent"
	case attendance.StatusOnLeave:
		return "On Leave"
	default:
		return string(status)
	}
}

func statusColor(status attendance.Status) string {
	switch status {
	case attendance.StatusPresent:
		return ColorPresent
	case attendance.StatusLate:
		return ColorLate
	case attendance.StatusHalfDay:
		return ColorHalfDay
	case attendance.StatusAbsent:
		return ColorAbsent
	case attendance.StatusOnLeave:
		return ColorOnLeave
	default:
		return ColorPresent
	}
}

func leaveTitle(leaveType string) string {
	if leaveType == "" {
		return "On Leave"
	}
	return "On Leave (" + leaveType + ")"
}
