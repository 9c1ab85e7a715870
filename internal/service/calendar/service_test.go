package calendar

import (
	"context"
	"testing"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/shiftly-hr/attendance-backend-go/internal/domain/attendance"
	"github.com/shiftly-hr/attendance-backend-go/internal/domain/calendar"
	"github.com/shiftly-hr/attendance-backend-go/internal/domain/holiday"
	"github.com/shiftly-hr/attendance-backend-go/internal/domain/leave"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func authContext(t *testing.T) context.Context {
	t.Helper()
	ja := jwtauth.New("HS256", []byte("test-secret-key"), nil)
	token, _, err := ja.Encode(map[string]interface{}{"employee_id": "emp-1", "type": "access"})
	require.NoError(t, err)
	return jwtauth.NewContext(context.Background(), token, nil)
}

type fakeAttendanceRepo struct {
	attendance.Repository
	recs []attendance.Record
}

func (f *fakeAttendanceRepo) ListRange(ctx context.Context, employeeID string, start, end time.Time) ([]attendance.Record, error) {
	return f.recs, nil
}

type fakeLeaveRepo struct {
	recs []leave.Record
}

func (f *fakeLeaveRepo) ListApprovedOverlapping(ctx context.Context, employeeID string, start, end time.Time) ([]leave.Record, error) {
	return f.recs, nil
}

type fakeHolidayRepo struct {
	holidays []holiday.Holiday
}

func (f *fakeHolidayRepo) ListRange(ctx context.Context, start, end time.Time) ([]holiday.Holiday, error) {
	return f.holidays, nil
}

func day(d int) time.Time {
	return time.Date(2026, 3, d, 0, 0, 0, 0, time.UTC)
}

func TestCompose_MergesAllThreeSources(t *testing.T) {
	attendanceRepo := &fakeAttendanceRepo{recs: []attendance.Record{
		{ID: "a1", Date: day(2), Status: attendance.StatusPresent},
		{ID: "a2", Date: day(3), Status: attendance.StatusLate},
		{ID: "a3", Date: day(4), Status: attendance.StatusAbsent},
		{ID: "a4", Date: day(5), Status: attendance.StatusHalfDay},
	}}
	leaveRepo := &fakeLeaveRepo{recs: []leave.Record{
		{ID: "l1", LeaveType: "Annual", StartDate: day(9), EndDate: day(11), Status: leave.StatusApproved},
	}}
	holidayRepo := &fakeHolidayRepo{holidays: []holiday.Holiday{
		{ID: "h1", Date: day(17), Name: "Nyepi"},
	}}

	svc := NewCalendarService(attendanceRepo, leaveRepo, holidayRepo)

	events, err := svc.Compose(authContext(t), day(1), day(31))
	require.NoError(t, err)

	// One event per source row, no deduplication
	assert.Len(t, events, 6)

	byColor := make(map[string]int)
	for _, ev := range events {
		byColor[ev.ColorKey]++
	}
	assert.Equal(t, 1, byColor[ColorPresent])
	assert.Equal(t, 1, byColor[ColorLate])
	assert.Equal(t, 1, byColor[ColorAbsent])
	assert.Equal(t, 1, byColor[ColorHalfDay])
	assert.Equal(t, 1, byColor[ColorOnLeave])
	assert.Equal(t, 1, byColor[ColorHoliday])
}

func TestCompose_StatusColors(t *testing.T) {
	tests := []struct {
		status attendance.Status
		color  string
		title  string
	}{
		{attendance.StatusPresent, "green", "Present"},
		{attendance.StatusAbsent, "red", "Absent"},
		{attendance.StatusLate, "orange", "Late"},
		{attendance.StatusHalfDay, "yellow", "Half Day"},
		{attendance.StatusOnLeave, "purple", "On Leave"},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			svc := NewCalendarService(
				&fakeAttendanceRepo{recs: []attendance.Record{{ID: "a1", Date: day(2), Status: tt.status}}},
				&fakeLeaveRepo{},
				&fakeHolidayRepo{},
			)

			events, err := svc.Compose(authContext(t), day(1), day(31))
			require.NoError(t, err)
			require.Len(t, events, 1)
			assert.Equal(t, tt.color, events[0].ColorKey)
			assert.Equal(t, tt.title, events[0].Title)
			assert.Equal(t, calendar.SourceAttendance, events[0].SourceKind)
		})
	}
}

func TestCompose_FiltersUnapprovedLeave(t *testing.T) {
	leaveRepo := &fakeLeaveRepo{recs: []leave.Record{
		{ID: "l1", LeaveType: "Annual", StartDate: day(9), EndDate: day(11), Status: leave.StatusApproved},
		{ID: "l2", LeaveType: "Sick", StartDate: day(12), EndDate: day(13), Status: leave.StatusWaitingApproval},
		{ID: "l3", LeaveType: "Annual", StartDate: day(14), EndDate: day(15), Status: leave.StatusRejected},
	}}

	svc := NewCalendarService(&fakeAttendanceRepo{}, leaveRepo, &fakeHolidayRepo{})

	events, err := svc.Compose(authContext(t), day(1), day(31))
	require.NoError(t, err)

	require.Len(t, events, 1)
	assert.Equal(t, "On Leave (Annual)", events[0].Title)
	assert.Equal(t, ColorOnLeave, events[0].ColorKey)
	assert.Equal(t, day(9), events[0].StartDate)
	assert.Equal(t, day(11), events[0].EndDate)
}

func TestCompose_HolidayEvents(t *testing.T) {
	holidayRepo := &fakeHolidayRepo{holidays: []holiday.Holiday{
		{ID: "h1", Date: day(17), Name: "Nyepi"},
	}}

	svc := NewCalendarService(&fakeAttendanceRepo{}, &fakeLeaveRepo{}, holidayRepo)

	events, err := svc.Compose(authContext(t), day(1), day(31))
	require.NoError(t, err)

	require.Len(t, events, 1)
	assert.Equal(t, "Nyepi", events[0].Title)
	assert.Equal(t, ColorHoliday, events[0].ColorKey)
	assert.Equal(t, calendar.SourceHoliday, events[0].SourceKind)
}

func TestCompose_EmptyWindow(t *testing.T) {
	svc := NewCalendarService(&fakeAttendanceRepo{}, &fakeLeaveRepo{}, &fakeHolidayRepo{})

	events, err := svc.Compose(authContext(t), day(1), day(31))
	require.NoError(t, err)
	assert.Empty(t, events)
}
