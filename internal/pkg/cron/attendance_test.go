package cron

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shiftly-hr/attendance-backend-go/internal/domain/attendance"
	"github.com/shiftly-hr/attendance-backend-go/internal/pkg/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAttendanceRepo struct {
	attendance.Repository

	mu        sync.Mutex
	employees []string
	recs      map[string]attendance.Record // employeeID|date
	absences  []attendance.Record
}

func newFakeAttendanceRepo(employees ...string) *fakeAttendanceRepo {
	return &fakeAttendanceRepo{
		employees: employees,
		recs:      make(map[string]attendance.Record),
	}
}

func (f *fakeAttendanceRepo) ActiveEmployeeIDs(ctx context.Context) ([]string, error) {
	return f.employees, nil
}

func (f *fakeAttendanceRepo) GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (*attendance.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	rec, ok := f.recs[employeeID+"|"+date.Format("2006-01-02")]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

func (f *fakeAttendanceRepo) BulkCreateAbsences(ctx context.Context, recs []attendance.Record) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.absences = append(f.absences, recs...)
	return nil
}

type stubNonWorking struct {
	nonWorking bool
}

func (s *stubNonWorking) IsNonWorkingDay(ctx context.Context, date time.Time) (bool, error) {
	return s.nonWorking, nil
}

func TestMarkAbsentEmployees(t *testing.T) {
	// Local midnight hour on Tuesday 2026-03-03; yesterday is Monday
	now := time.Date(2026, 3, 3, 0, 15, 0, 0, time.UTC)
	yesterday := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	repo := newFakeAttendanceRepo("emp-1", "emp-2", "emp-3")
	checkIn := yesterday.Add(9 * time.Hour)
	repo.recs["emp-2|2026-03-02"] = attendance.Record{
		ID: "a1", EmployeeID: "emp-2", Date: yesterday,
		CheckInAt: &checkIn, Status: attendance.StatusPresent,
	}

	jobs := NewAttendanceJobs(repo, &stubNonWorking{}, clock.Fixed(now), time.UTC)

	require.NoError(t, jobs.MarkAbsentEmployees(context.Background()))

	require.Len(t, repo.absences, 2)
	marked := map[string]bool{}
	for _, rec := range repo.absences {
		marked[rec.EmployeeID] = true
		assert.Equal(t, attendance.StatusAbsent, rec.Status)
		assert.Equal(t, yesterday, rec.Date)
		assert.NotEmpty(t, rec.ID)
		require.NotNil(t, rec.WorkMinutes)
		assert.Equal(t, 0, *rec.WorkMinutes)
	}
	assert.True(t, marked["emp-1"])
	assert.True(t, marked["emp-3"])
	assert.False(t, marked["emp-2"])
}

func TestMarkAbsentEmployees_OnlyRunsAtMidnightHour(t *testing.T) {
	now := time.Date(2026, 3, 3, 10, 0, 0, 0, time.UTC)
	repo := newFakeAttendanceRepo("emp-1")

	jobs := NewAttendanceJobs(repo, &stubNonWorking{}, clock.Fixed(now), time.UTC)

	require.NoError(t, jobs.MarkAbsentEmployees(context.Background()))
	assert.Empty(t, repo.absences)
}

func TestMarkAbsentEmployees_SkipsNonWorkingDay(t *testing.T) {
	now := time.Date(2026, 3, 2, 0, 15, 0, 0, time.UTC) // yesterday was Sunday
	repo := newFakeAttendanceRepo("emp-1")

	jobs := NewAttendanceJobs(repo, &stubNonWorking{nonWorking: true}, clock.Fixed(now), time.UTC)

	require.NoError(t, jobs.MarkAbsentEmployees(context.Background()))
	assert.Empty(t, repo.absences)
}

func TestScheduler_RunOnce(t *testing.T) {
	s := NewScheduler()
	defer s.Stop()

	var calls int
	s.AddJob("test_job", time.Hour, func(ctx context.Context) error {
		calls++
		return nil
	})

	s.RunOnce(context.Background())
	assert.Equal(t, 1, calls)
}
