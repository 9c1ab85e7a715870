package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shiftly-hr/attendance-backend-go/internal/domain/attendance"
	"github.com/shiftly-hr/attendance-backend-go/internal/domain/geolocation"
	"github.com/shiftly-hr/attendance-backend-go/internal/pkg/clock"
	"github.com/shiftly-hr/attendance-backend-go/internal/pkg/jwt"
	"github.com/shiftly-hr/attendance-backend-go/internal/service/timesheet"
)

// Policy is the workday policy the status derivation runs on.
type Policy struct {
	StartHour    int
	StartMinute  int
	GraceMinutes int
	FullDayHours float64
	HalfDayHours float64
}

type service struct {
	attendanceRepo attendance.Repository
	resolver       geolocation.Resolver
	nonWorking     *NonWorkingDays
	policy         Policy
	clk            clock.Clock
	loc            *time.Location

	// inFlight guards against double-submits: at most one punch per
	// employee may be in progress at a time.
	mu       sync.Mutex
	inFlight map[string]bool
}

func NewSessionService(
	attendanceRepo attendance.Repository,
	resolver geolocation.Resolver,
	nonWorking *NonWorkingDays,
	policy Policy,
	clk clock.Clock,
	loc *time.Location,
) attendance.SessionService {
	return &service{
		attendanceRepo: attendanceRepo,
		resolver:       resolver,
		nonWorking:     nonWorking,
		policy:         policy,
		clk:            clk,
		loc:            loc,
		inFlight:       make(map[string]bool),
	}
}

func (s *service) beginPunch(employeeID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.inFlight[employeeID] {
		return false
	}
	s.inFlight[employeeID] = true
	return true
}

func (s *service) endPunch(employeeID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inFlight, employeeID)
}

func (s *service) CheckIn(ctx context.Context, req attendance.PunchRequest) (attendance.PunchResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.PunchResponse{}, err
	}

	employeeID, err := jwt.EmployeeIDFromContext(ctx)
	if err != nil {
		return attendance.PunchResponse{}, err
	}

	if !s.beginPunch(employeeID) {
		return attendance.PunchResponse{}, attendance.ErrPunchInFlight
	}
	defer s.endPunch(employeeID)

	now := s.clk.Now()
	nowLocal := now.In(s.loc)
	today := dateOf(nowLocal)

	nonWorking, err := s.nonWorking.IsNonWorkingDay(ctx, today)
	if err != nil {
		return attendance.PunchResponse{}, err
	}
	if nonWorking {
		return attendance.PunchResponse{}, attendance.ErrNonWorkingDay
	}

	existing, err := s.attendanceRepo.GetByEmployeeAndDate(ctx, employeeID, today)
	if err != nil {
		return attendance.PunchResponse{}, fmt.Errorf("failed to get today's attendance: %w", err)
	}
	if existing != nil {
		return attendance.PunchResponse{}, attendance.ErrAlreadyCheckedIn
	}

	fix, notice := s.acquireLocation(ctx, employeeID, req)

	status := attendance.StatusPresent
	var lateMinutes *int
	if late := s.minutesLate(nowLocal); late > 0 {
		status = attendance.StatusLate
		lateMinutes = &late
	}

	checkInAt := now.UTC()
	rec := attendance.Record{
		ID:          uuid.NewString(),
		EmployeeID:  employeeID,
		Date:        today,
		CheckInAt:   &checkInAt,
		Status:      status,
		LateMinutes: lateMinutes,
	}
	if fix != nil {
		rec.CheckInLatitude = &fix.Latitude
		rec.CheckInLongitude = &fix.Longitude
	}

	created, err := s.attendanceRepo.Create(ctx, rec)
	if err != nil {
		return attendance.PunchResponse{}, err
	}

	if fix != nil {
		go s.attachPlaceName(context.WithoutCancel(ctx), created.ID, attendance.PunchCheckIn, *fix)
	}

	slog.Info("Employee checked in",
		"employee_id", employeeID,
		"record_id", created.ID,
		"status", created.Status,
		"has_location", fix != nil)

	return attendance.PunchResponse{
		Record: s.toResponse(&created, now),
		Notice: notice,
	}, nil
}

func (s *service) CheckOut(ctx context.Context, req attendance.PunchRequest) (attendance.PunchResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.PunchResponse{}, err
	}

	employeeID, err := jwt.EmployeeIDFromContext(ctx)
	if err != nil {
		return attendance.PunchResponse{}, err
	}

	if !s.beginPunch(employeeID) {
		return attendance.PunchResponse{}, attendance.ErrPunchInFlight
	}
	defer s.endPunch(employeeID)

	now := s.clk.Now()
	nowLocal := now.In(s.loc)
	today := dateOf(nowLocal)

	rec, err := s.attendanceRepo.GetByEmployeeAndDate(ctx, employeeID, today)
	if err != nil {
		return attendance.PunchResponse{}, fmt.Errorf("failed to get today's attendance: %w", err)
	}
	if rec == nil || rec.CheckInAt == nil {
		return attendance.PunchResponse{}, attendance.ErrNotCheckedIn
	}
	if rec.CheckOutAt != nil {
		return attendance.PunchResponse{}, attendance.ErrAlreadyCheckedOut
	}

	// A forgotten open break ends at the check-out moment.
	if rec.OpenBreak() != nil {
		closed, err := s.attendanceRepo.CloseOpenBreak(ctx, rec.ID, now.UTC())
		if err != nil {
			return attendance.PunchResponse{}, fmt.Errorf("failed to close open break: %w", err)
		}
		for i := range rec.Breaks {
			if rec.Breaks[i].ID == closed.ID {
				rec.Breaks[i] = closed
			}
		}
		rec.TotalBreakMinutes += int(closed.EndAt.Sub(closed.StartAt).Minutes())
	}

	fix, notice := s.acquireLocation(ctx, employeeID, req)

	checkOutAt := now.UTC()
	rec.CheckOutAt = &checkOutAt
	if fix != nil {
		rec.CheckOutLatitude = &fix.Latitude
		rec.CheckOutLongitude = &fix.Longitude
	}
	s.deriveClosedFields(rec)

	updated, err := s.attendanceRepo.Update(ctx, *rec)
	if err != nil {
		return attendance.PunchResponse{}, fmt.Errorf("failed to update attendance record: %w", err)
	}

	if fix != nil {
		go s.attachPlaceName(context.WithoutCancel(ctx), updated.ID, attendance.PunchCheckOut, *fix)
	}

	slog.Info("Employee checked out",
		"employee_id", employeeID,
		"record_id", updated.ID,
		"status", updated.Status,
		"has_location", fix != nil)

	return attendance.PunchResponse{
		Record: s.toResponse(&updated, now),
		Notice: notice,
	}, nil
}

// deriveClosedFields computes work minutes, overtime and the final
// status once both punches exist. Late sticks unless the day collapsed
// to a half day; a short day dominates a late arrival.
func (s *service) deriveClosedFields(rec *attendance.Record) {
	workMinutes := int(rec.CheckOutAt.Sub(*rec.CheckInAt).Minutes()) - rec.TotalBreakMinutes
	if workMinutes < 0 {
		workMinutes = 0
	}
	rec.WorkMinutes = &workMinutes

	fullDayMinutes := int(s.policy.FullDayHours * 60)
	halfDayMinutes := int(s.policy.HalfDayHours * 60)

	if workMinutes < halfDayMinutes {
		rec.Status = attendance.StatusHalfDay
	}

	if overtime := workMinutes - fullDayMinutes; overtime > 0 {
		rec.OvertimeMinutes = &overtime
	}
}

func (s *service) BreakStart(ctx context.Context) (attendance.RecordResponse, error) {
	employeeID, err := jwt.EmployeeIDFromContext(ctx)
	if err != nil {
		return attendance.RecordResponse{}, err
	}

	now := s.clk.Now()
	rec, err := s.openSessionRecord(ctx, employeeID, now)
	if err != nil {
		return attendance.RecordResponse{}, err
	}
	if rec.OpenBreak() != nil {
		return attendance.RecordResponse{}, attendance.ErrBreakAlreadyOpen
	}

	br, err := s.attendanceRepo.OpenBreak(ctx, rec.ID, now.UTC())
	if err != nil {
		return attendance.RecordResponse{}, err
	}
	rec.Breaks = append(rec.Breaks, br)

	return s.toResponse(rec, now), nil
}

func (s *service) BreakEnd(ctx context.Context) (attendance.RecordResponse, error) {
	employeeID, err := jwt.EmployeeIDFromContext(ctx)
	if err != nil {
		return attendance.RecordResponse{}, err
	}

	now := s.clk.Now()
	rec, err := s.openSessionRecord(ctx, employeeID, now)
	if err != nil {
		return attendance.RecordResponse{}, err
	}

	closed, err := s.attendanceRepo.CloseOpenBreak(ctx, rec.ID, now.UTC())
	if err != nil {
		return attendance.RecordResponse{}, err
	}
	for i := range rec.Breaks {
		if rec.Breaks[i].ID == closed.ID {
			rec.Breaks[i] = closed
		}
	}
	rec.TotalBreakMinutes += int(closed.EndAt.Sub(closed.StartAt).Minutes())

	return s.toResponse(rec, now), nil
}

// openSessionRecord loads today's record and requires an open session.
func (s *service) openSessionRecord(ctx context.Context, employeeID string, now time.Time) (*attendance.Record, error) {
	today := dateOf(now.In(s.loc))

	rec, err := s.attendanceRepo.GetByEmployeeAndDate(ctx, employeeID, today)
	if err != nil {
		return nil, fmt.Errorf("failed to get today's attendance: %w", err)
	}
	if rec == nil || rec.CheckInAt == nil {
		return nil, attendance.ErrNotCheckedIn
	}
	if rec.CheckOutAt != nil {
		return nil, attendance.ErrAlreadyCheckedOut
	}
	return rec, nil
}

func (s *service) Today(ctx context.Context) (attendance.RecordResponse, error) {
	employeeID, err := jwt.EmployeeIDFromContext(ctx)
	if err != nil {
		return attendance.RecordResponse{}, err
	}

	now := s.clk.Now()
	today := dateOf(now.In(s.loc))

	rec, err := s.attendanceRepo.GetByEmployeeAndDate(ctx, employeeID, today)
	if err != nil {
		return attendance.RecordResponse{}, fmt.Errorf("failed to get today's attendance: %w", err)
	}
	if rec == nil {
		return attendance.RecordResponse{
			EmployeeID: employeeID,
			Date:       today.Format("2006-01-02"),
			State:      string(attendance.StateNotCheckedIn),
			Breaks:     []attendance.BreakItem{},
		}, nil
	}

	return s.toResponse(rec, now), nil
}

func (s *service) ListMine(ctx context.Context, filter attendance.ListFilter) (attendance.ListResponse, error) {
	if err := filter.Validate(); err != nil {
		return attendance.ListResponse{}, err
	}

	employeeID, err := jwt.EmployeeIDFromContext(ctx)
	if err != nil {
		return attendance.ListResponse{}, err
	}

	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 || filter.Limit > 100 {
		filter.Limit = 20
	}

	recs, total, err := s.attendanceRepo.ListByEmployee(ctx, employeeID, filter)
	if err != nil {
		return attendance.ListResponse{}, fmt.Errorf("failed to list attendance records: %w", err)
	}

	now := s.clk.Now()
	responses := make([]attendance.RecordResponse, 0, len(recs))
	for i := range recs {
		responses = append(responses, s.toResponse(&recs[i], now))
	}

	totalPages := int((total + int64(filter.Limit) - 1) / int64(filter.Limit))

	return attendance.ListResponse{
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: totalPages,
		Records:    responses,
	}, nil
}

// acquireLocation runs the best-effort geolocation pipeline. Failure
// never blocks the punch; it yields a nil fix plus a user notice.
func (s *service) acquireLocation(ctx context.Context, employeeID string, req attendance.PunchRequest) (*geolocation.Fix, string) {
	src := geolocation.ReportSource{Report: reportFromRequest(req, s.clk.Now())}

	fix, err := s.resolver.Acquire(ctx, employeeID, src)
	if err != nil {
		slog.Warn("Punch proceeding without location", "employee_id", employeeID, "error", err)
		return nil, fmt.Sprintf("No location recorded: %s", err)
	}
	return &fix, ""
}

// reportFromRequest rebuilds the device geolocation report from the
// punch payload. A payload with no location fields at all reads as a
// supported device that produced nothing.
func reportFromRequest(req attendance.PunchRequest, now time.Time) geolocation.Report {
	report := geolocation.Report{
		Supported:  true,
		Permission: geolocation.Permission(req.Permission),
		Failure:    geolocation.ErrorKind(req.Failure),
	}
	if req.Supported != nil {
		report.Supported = *req.Supported
	}

	if req.Latitude != nil && req.Longitude != nil {
		fix := geolocation.Fix{
			Latitude:   *req.Latitude,
			Longitude:  *req.Longitude,
			CapturedAt: now,
		}
		if req.CapturedAt != nil {
			if at, err := time.Parse(time.RFC3339, *req.CapturedAt); err == nil {
				fix.CapturedAt = at
			}
		}
		report.Fix = &fix
	} else if report.Failure == "" && report.Permission != geolocation.PermissionDenied {
		report.Failure = geolocation.KindPositionUnavailable
	}

	return report
}

// attachPlaceName resolves and persists the place name after the punch
// is already durable. Runs on a detached context so a finished request
// does not cancel it.
func (s *service) attachPlaceName(ctx context.Context, recordID string, side attendance.PunchSide, fix geolocation.Fix) {
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	place := s.resolver.PlaceName(ctx, fix)
	if err := s.attendanceRepo.AttachPlaceName(ctx, recordID, side, place); err != nil {
		slog.Error("Failed to attach place name",
			"record_id", recordID,
			"side", side,
			"error", err)
	}
}

func (s *service) minutesLate(nowLocal time.Time) int {
	start := time.Date(nowLocal.Year(), nowLocal.Month(), nowLocal.Day(),
		s.policy.StartHour, s.policy.StartMinute, 0, 0, s.loc)
	deadline := start.Add(time.Duration(s.policy.GraceMinutes) * time.Minute)

	if !nowLocal.After(deadline) {
		return 0
	}
	return int(nowLocal.Sub(start).Minutes())
}

func (s *service) toResponse(rec *attendance.Record, now time.Time) attendance.RecordResponse {
	breaks := make([]attendance.BreakItem, 0, len(rec.Breaks))
	for _, br := range rec.Breaks {
		item := attendance.BreakItem{StartAt: br.StartAt.Format(time.RFC3339)}
		if br.EndAt != nil {
			endAt := br.EndAt.Format(time.RFC3339)
			item.EndAt = &endAt
		}
		breaks = append(breaks, item)
	}

	resp := attendance.RecordResponse{
		ID:                rec.ID,
		EmployeeID:        rec.EmployeeID,
		Date:              rec.Date.Format("2006-01-02"),
		State:             string(rec.State()),
		CheckInLatitude:   rec.CheckInLatitude,
		CheckInLongitude:  rec.CheckInLongitude,
		CheckInPlace:      rec.CheckInPlace,
		CheckOutLatitude:  rec.CheckOutLatitude,
		CheckOutLongitude: rec.CheckOutLongitude,
		CheckOutPlace:     rec.CheckOutPlace,
		Breaks:            breaks,
		TotalBreakMinutes: rec.TotalBreakMinutes,
		Status:            string(rec.Status),
		LateMinutes:       rec.LateMinutes,
		OvertimeMinutes:   rec.OvertimeMinutes,
		ProductionHours:   timesheet.RoundDisplay(timesheet.ProductionHours(rec, now)),
	}
	if rec.CheckInAt != nil {
		at := rec.CheckInAt.Format(time.RFC3339)
		resp.CheckInAt = &at
	}
	if rec.CheckOutAt != nil {
		at := rec.CheckOutAt.Format(time.RFC3339)
		resp.CheckOutAt = &at
	}
	return resp
}

func dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
