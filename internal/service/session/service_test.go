package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/shiftly-hr/attendance-backend-go/internal/domain/attendance"
	"github.com/shiftly-hr/attendance-backend-go/internal/domain/geolocation"
	"github.com/shiftly-hr/attendance-backend-go/internal/domain/holiday"
	"github.com/shiftly-hr/attendance-backend-go/internal/pkg/clock"
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

// memRepo is an in-memory attendance.Repository.
type memRepo struct {
	mu      sync.Mutex
	recs    map[string]attendance.Record // employeeID|date
	creates int
	places  map[string]string // recordID|side

	// getGate, when set, blocks GetByEmployeeAndDate until closed.
	getGate   chan struct{}
	getInside chan struct{}
}

func newMemRepo() *memRepo {
	return &memRepo{
		recs:   make(map[string]attendance.Record),
		places: make(map[string]string),
	}
}

func recKey(employeeID string, date time.Time) string {
	return employeeID + "|" + date.Format("2006-01-02")
}

func (m *memRepo) Create(ctx context.Context, rec attendance.Record) (attendance.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := recKey(rec.EmployeeID, rec.Date)
	if _, exists := m.recs[key]; exists {
		return attendance.Record{}, attendance.ErrAlreadyCheckedIn
	}
	rec.Breaks = []attendance.Break{}
	m.recs[key] = rec
	m.creates++
	return rec, nil
}

func (m *memRepo) GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (*attendance.Record, error) {
	if m.getGate != nil {
		if m.getInside != nil {
			close(m.getInside)
			m.getInside = nil
		}
		<-m.getGate
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.recs[recKey(employeeID, date)]
	if !ok {
		return nil, nil
	}
	out := rec
	out.Breaks = append([]attendance.Break{}, rec.Breaks...)
	return &out, nil
}

func (m *memRepo) Update(ctx context.Context, rec attendance.Record) (attendance.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.recs[recKey(rec.EmployeeID, rec.Date)] = rec
	return rec, nil
}

func (m *memRepo) AttachPlaceName(ctx context.Context, recordID string, side attendance.PunchSide, placeName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.places[recordID+"|"+string(side)] = placeName
	return nil
}

func (m *memRepo) ListByEmployee(ctx context.Context, employeeID string, filter attendance.ListFilter) ([]attendance.Record, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []attendance.Record
	for _, rec := range m.recs {
		if rec.EmployeeID == employeeID {
			out = append(out, rec)
		}
	}
	return out, int64(len(out)), nil
}

func (m *memRepo) ListRange(ctx context.Context, employeeID string, start, end time.Time) ([]attendance.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []attendance.Record
	for _, rec := range m.recs {
		if rec.EmployeeID == employeeID && !rec.Date.Before(start) && rec.Date.Before(end) {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (m *memRepo) OpenBreak(ctx context.Context, recordID string, at time.Time) (attendance.Break, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for key, rec := range m.recs {
		if rec.ID != recordID {
			continue
		}
		if rec.OpenBreak() != nil {
			return attendance.Break{}, attendance.ErrBreakAlreadyOpen
		}
		br := attendance.Break{ID: "brk-" + at.Format("150405"), RecordID: recordID, StartAt: at}
		rec.Breaks = append(rec.Breaks, br)
		m.recs[key] = rec
		return br, nil
	}
	return attendance.Break{}, attendance.ErrRecordNotFound
}

func (m *memRepo) CloseOpenBreak(ctx context.Context, recordID string, at time.Time) (attendance.Break, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for key, rec := range m.recs {
		if rec.ID != recordID {
			continue
		}
		for i := range rec.Breaks {
			if rec.Breaks[i].EndAt == nil {
				end := at
				rec.Breaks[i].EndAt = &end
				rec.TotalBreakMinutes += int(at.Sub(rec.Breaks[i].StartAt).Minutes())
				m.recs[key] = rec
				return rec.Breaks[i], nil
			}
		}
		return attendance.Break{}, attendance.ErrNoOpenBreak
	}
	return attendance.Break{}, attendance.ErrRecordNotFound
}

func (m *memRepo) ActiveEmployeeIDs(ctx context.Context) ([]string, error) {
	return []string{"emp-1"}, nil
}

func (m *memRepo) BulkCreateAbsences(ctx context.Context, recs []attendance.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, rec := range recs {
		key := recKey(rec.EmployeeID, rec.Date)
		if _, exists := m.recs[key]; !exists {
			m.recs[key] = rec
		}
	}
	return nil
}

// stubResolver satisfies geolocation.Resolver with canned answers.
type stubResolver struct {
	fix *geolocation.Fix
	err error
}

func (s *stubResolver) Acquire(ctx context.Context, employeeID string, src geolocation.Source) (geolocation.Fix, error) {
	if s.err != nil {
		return geolocation.Fix{}, s.err
	}
	return *s.fix, nil
}

func (s *stubResolver) PlaceName(ctx context.Context, fix geolocation.Fix) string {
	return "Test Office"
}

func (s *stubResolver) PermissionChanged(employeeID string, p geolocation.Permission) {}

func (s *stubResolver) StateFor(employeeID string) geolocation.State {
	return geolocation.State{}
}

type fakeHolidayRepo struct {
	holidays []holiday.Holiday
}

func (f *fakeHolidayRepo) ListRange(ctx context.Context, start, end time.Time) ([]holiday.Holiday, error) {
	var out []holiday.Holiday
	for _, h := range f.holidays {
		if !h.Date.Before(start) && h.Date.Before(end) {
			out = append(out, h)
		}
	}
	return out, nil
}

func testPolicy() Policy {
	return Policy{
		StartHour:    9,
		StartMinute:  0,
		GraceMinutes: 15,
		FullDayHours: 8,
		HalfDayHours: 4,
	}
}

func newTestService(repo attendance.Repository, resolver geolocation.Resolver, holidays *fakeHolidayRepo, now time.Time) attendance.SessionService {
	if holidays == nil {
		holidays = &fakeHolidayRepo{}
	}
	return NewSessionService(repo, resolver, NewNonWorkingDays(holidays), testPolicy(), clock.Fixed(now), time.UTC)
}

func TestCheckIn_OnTime(t *testing.T) {
	// Monday 2026-03-02, 08:55
	now := time.Date(2026, 3, 2, 8, 55, 0, 0, time.UTC)
	repo := newMemRepo()
	resolver := &stubResolver{fix: &geolocation.Fix{Latitude: -6.2, Longitude: 106.8, CapturedAt: now}}

	svc := newTestService(repo, resolver, nil, now)

	resp, err := svc.CheckIn(authContext(t), attendance.PunchRequest{})
	require.NoError(t, err)

	assert.Equal(t, string(attendance.StatusPresent), resp.Record.Status)
	assert.Equal(t, string(attendance.StateCheckedIn), resp.Record.State)
	assert.Empty(t, resp.Notice)
	require.NotNil(t, resp.Record.CheckInLatitude)
	assert.Equal(t, -6.2, *resp.Record.CheckInLatitude)
	assert.Nil(t, resp.Record.LateMinutes)
	assert.Equal(t, 1, repo.creates)
}

func TestCheckIn_Late(t *testing.T) {
	// 09:30 against a 09:00 start with 15 minutes grace
	now := time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)
	repo := newMemRepo()
	svc := newTestService(repo, &stubResolver{err: geolocation.ErrTimeout}, nil, now)

	resp, err := svc.CheckIn(authContext(t), attendance.PunchRequest{})
	require.NoError(t, err)

	assert.Equal(t, string(attendance.StatusLate), resp.Record.Status)
	require.NotNil(t, resp.Record.LateMinutes)
	assert.Equal(t, 30, *resp.Record.LateMinutes)
}

func TestCheckIn_WithinGraceIsPresent(t *testing.T) {
	now := time.Date(2026, 3, 2, 9, 10, 0, 0, time.UTC)
	repo := newMemRepo()
	svc := newTestService(repo, &stubResolver{err: geolocation.ErrTimeout}, nil, now)

	resp, err := svc.CheckIn(authContext(t), attendance.PunchRequest{})
	require.NoError(t, err)
	assert.Equal(t, string(attendance.StatusPresent), resp.Record.Status)
}

func TestCheckIn_DeniedLocationStillSucceeds(t *testing.T) {
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	repo := newMemRepo()
	svc := newTestService(repo, &stubResolver{err: geolocation.ErrPermissionDenied}, nil, now)

	resp, err := svc.CheckIn(authContext(t), attendance.PunchRequest{})
	require.NoError(t, err)

	assert.NotEmpty(t, resp.Notice)
	assert.Nil(t, resp.Record.CheckInLatitude)
	assert.Nil(t, resp.Record.CheckInLongitude)
	assert.Equal(t, 1, repo.creates)
}

func TestCheckIn_RejectedOnSunday(t *testing.T) {
	// 2026-03-01 is a Sunday
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	repo := newMemRepo()
	svc := newTestService(repo, &stubResolver{err: geolocation.ErrTimeout}, nil, now)

	_, err := svc.CheckIn(authContext(t), attendance.PunchRequest{})
	assert.ErrorIs(t, err, attendance.ErrNonWorkingDay)
	assert.Equal(t, 0, repo.creates)
}

func TestCheckIn_RejectedOnHoliday(t *testing.T) {
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	repo := newMemRepo()
	holidays := &fakeHolidayRepo{holidays: []holiday.Holiday{
		{ID: "h1", Date: time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), Name: "Company Day"},
	}}
	svc := newTestService(repo, &stubResolver{err: geolocation.ErrTimeout}, holidays, now)

	_, err := svc.CheckIn(authContext(t), attendance.PunchRequest{})
	assert.ErrorIs(t, err, attendance.ErrNonWorkingDay)
}

func TestCheckIn_Twice(t *testing.T) {
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	repo := newMemRepo()
	svc := newTestService(repo, &stubResolver{err: geolocation.ErrTimeout}, nil, now)

	ctx := authContext(t)
	_, err := svc.CheckIn(ctx, attendance.PunchRequest{})
	require.NoError(t, err)

	_, err = svc.CheckIn(ctx, attendance.PunchRequest{})
	assert.ErrorIs(t, err, attendance.ErrAlreadyCheckedIn)
	assert.Equal(t, 1, repo.creates)
}

func TestCheckIn_InFlightGuard(t *testing.T) {
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	repo := newMemRepo()
	repo.getGate = make(chan struct{})
	repo.getInside = make(chan struct{})
	inside := repo.getInside

	svc := newTestService(repo, &stubResolver{err: geolocation.ErrTimeout}, nil, now)
	ctx := authContext(t)

	done := make(chan error, 1)
	go func() {
		_, err := svc.CheckIn(ctx, attendance.PunchRequest{})
		done <- err
	}()

	// Wait until the first punch is mid-flight, then retry
	<-inside
	_, err := svc.CheckIn(ctx, attendance.PunchRequest{})
	assert.ErrorIs(t, err, attendance.ErrPunchInFlight)

	close(repo.getGate)
	require.NoError(t, <-done)
	assert.Equal(t, 1, repo.creates)
}

func TestCheckOut_FullDay(t *testing.T) {
	checkIn := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	checkOut := time.Date(2026, 3, 2, 18, 0, 0, 0, time.UTC)
	repo := newMemRepo()
	resolver := &stubResolver{err: geolocation.ErrTimeout}

	ctx := authContext(t)
	_, err := newTestService(repo, resolver, nil, checkIn).CheckIn(ctx, attendance.PunchRequest{})
	require.NoError(t, err)

	svc := newTestService(repo, resolver, nil, checkOut)
	resp, err := svc.CheckOut(ctx, attendance.PunchRequest{})
	require.NoError(t, err)

	assert.Equal(t, string(attendance.StateCheckedOut), resp.Record.State)
	assert.Equal(t, string(attendance.StatusPresent), resp.Record.Status)
	assert.InDelta(t, 9.0, resp.Record.ProductionHours, 1e-9)
	require.NotNil(t, resp.Record.OvertimeMinutes)
	assert.Equal(t, 60, *resp.Record.OvertimeMinutes)
}

func TestCheckOut_ShortDayBecomesHalfDay(t *testing.T) {
	checkIn := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	checkOut := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	repo := newMemRepo()
	resolver := &stubResolver{err: geolocation.ErrTimeout}

	ctx := authContext(t)
	_, err := newTestService(repo, resolver, nil, checkIn).CheckIn(ctx, attendance.PunchRequest{})
	require.NoError(t, err)

	resp, err := newTestService(repo, resolver, nil, checkOut).CheckOut(ctx, attendance.PunchRequest{})
	require.NoError(t, err)

	assert.Equal(t, string(attendance.StatusHalfDay), resp.Record.Status)
	assert.Nil(t, resp.Record.OvertimeMinutes)
}

func TestCheckOut_ClosesForgottenBreak(t *testing.T) {
	checkIn := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	breakAt := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	checkOut := time.Date(2026, 3, 2, 17, 30, 0, 0, time.UTC)
	repo := newMemRepo()
	resolver := &stubResolver{err: geolocation.ErrTimeout}
	ctx := authContext(t)

	_, err := newTestService(repo, resolver, nil, checkIn).CheckIn(ctx, attendance.PunchRequest{})
	require.NoError(t, err)
	_, err = newTestService(repo, resolver, nil, breakAt).BreakStart(ctx)
	require.NoError(t, err)

	resp, err := newTestService(repo, resolver, nil, checkOut).CheckOut(ctx, attendance.PunchRequest{})
	require.NoError(t, err)

	// The 5.5h forgotten break is closed at check-out; 3h worked
	assert.Equal(t, 330, resp.Record.TotalBreakMinutes)
	require.NotNil(t, resp.Record.Breaks[0].EndAt)
	assert.InDelta(t, 3.0, resp.Record.ProductionHours, 1e-9)
	assert.Equal(t, string(attendance.StatusHalfDay), resp.Record.Status)
}

func TestCheckOut_WithoutCheckIn(t *testing.T) {
	now := time.Date(2026, 3, 2, 17, 0, 0, 0, time.UTC)
	svc := newTestService(newMemRepo(), &stubResolver{err: geolocation.ErrTimeout}, nil, now)

	_, err := svc.CheckOut(authContext(t), attendance.PunchRequest{})
	assert.ErrorIs(t, err, attendance.ErrNotCheckedIn)
}

func TestCheckOut_Twice(t *testing.T) {
	checkIn := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	checkOut := time.Date(2026, 3, 2, 17, 0, 0, 0, time.UTC)
	repo := newMemRepo()
	resolver := &stubResolver{err: geolocation.ErrTimeout}
	ctx := authContext(t)

	_, err := newTestService(repo, resolver, nil, checkIn).CheckIn(ctx, attendance.PunchRequest{})
	require.NoError(t, err)

	svc := newTestService(repo, resolver, nil, checkOut)
	_, err = svc.CheckOut(ctx, attendance.PunchRequest{})
	require.NoError(t, err)

	_, err = svc.CheckOut(ctx, attendance.PunchRequest{})
	assert.ErrorIs(t, err, attendance.ErrAlreadyCheckedOut)
}

func TestBreak_SingleOpenInvariant(t *testing.T) {
	checkIn := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	repo := newMemRepo()
	resolver := &stubResolver{err: geolocation.ErrTimeout}
	ctx := authContext(t)

	svc := newTestService(repo, resolver, nil, checkIn)
	_, err := svc.CheckIn(ctx, attendance.PunchRequest{})
	require.NoError(t, err)

	breakSvc := newTestService(repo, resolver, nil, checkIn.Add(3*time.Hour))
	_, err = breakSvc.BreakStart(ctx)
	require.NoError(t, err)

	_, err = breakSvc.BreakStart(ctx)
	assert.ErrorIs(t, err, attendance.ErrBreakAlreadyOpen)

	endSvc := newTestService(repo, resolver, nil, checkIn.Add(3*time.Hour+30*time.Minute))
	resp, err := endSvc.BreakEnd(ctx)
	require.NoError(t, err)
	assert.Equal(t, 30, resp.TotalBreakMinutes)

	_, err = endSvc.BreakEnd(ctx)
	assert.ErrorIs(t, err, attendance.ErrNoOpenBreak)
}

func TestToday_NoRecord(t *testing.T) {
	now := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	svc := newTestService(newMemRepo(), &stubResolver{err: geolocation.ErrTimeout}, nil, now)

	resp, err := svc.Today(authContext(t))
	require.NoError(t, err)

	assert.Equal(t, string(attendance.StateNotCheckedIn), resp.State)
	assert.Equal(t, "2026-03-02", resp.Date)
	assert.Equal(t, 0.0, resp.ProductionHours)
}

func TestToday_LiveHours(t *testing.T) {
	checkIn := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	repo := newMemRepo()
	resolver := &stubResolver{err: geolocation.ErrTimeout}
	ctx := authContext(t)

	_, err := newTestService(repo, resolver, nil, checkIn).CheckIn(ctx, attendance.PunchRequest{})
	require.NoError(t, err)

	resp, err := newTestService(repo, resolver, nil, checkIn.Add(2*time.Hour)).Today(ctx)
	require.NoError(t, err)
	assert.InDelta(t, 2.0, resp.ProductionHours, 1e-9)
}

func TestCheckIn_InvalidCoordinates(t *testing.T) {
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	svc := newTestService(newMemRepo(), &stubResolver{err: geolocation.ErrTimeout}, nil, now)

	lat := 120.0
	lon := 10.0
	_, err := svc.CheckIn(authContext(t), attendance.PunchRequest{Latitude: &lat, Longitude: &lon})
	require.Error(t, err)
}
