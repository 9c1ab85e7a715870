package cron

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shiftly-hr/attendance-backend-go/internal/domain/attendance"
	"github.com/shiftly-hr/attendance-backend-go/internal/pkg/clock"
)

// NonWorkingDayChecker gates absence marking: a day nobody was
// expected to work must not produce absence records.
type NonWorkingDayChecker interface {
	IsNonWorkingDay(ctx context.Context, date time.Time) (bool, error)
}

type AttendanceJobs struct {
	attendanceRepo attendance.Repository
	nonWorking     NonWorkingDayChecker
	clk            clock.Clock
	loc            *time.Location
}

func NewAttendanceJobs(
	attendanceRepo attendance.Repository,
	nonWorking NonWorkingDayChecker,
	clk clock.Clock,
	loc *time.Location,
) *AttendanceJobs {
	return &AttendanceJobs{
		attendanceRepo: attendanceRepo,
		nonWorking:     nonWorking,
		clk:            clk,
		loc:            loc,
	}
}

func (j *AttendanceJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddJob("mark_absent_employees", 1*time.Hour, j.MarkAbsentEmployees)
}

// MarkAbsentEmployees creates absence markers for every active
// employee without a record on the previous day. It runs hourly but
// only acts during the local midnight hour.
func (j *AttendanceJobs) MarkAbsentEmployees(ctx context.Context) error {
	nowLocal := j.clk.Now().In(j.loc)
	if nowLocal.Hour() != 0 {
		return nil
	}

	yesterday := time.Date(nowLocal.Year(), nowLocal.Month(), nowLocal.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1)

	nonWorking, err := j.nonWorking.IsNonWorkingDay(ctx, yesterday)
	if err != nil {
		return fmt.Errorf("failed to check non-working day: %w", err)
	}
	if nonWorking {
		slog.Info("Cron: Skipping absence marking on non-working day", "date", yesterday.Format("2006-01-02"))
		return nil
	}

	employeeIDs, err := j.attendanceRepo.ActiveEmployeeIDs(ctx)
	if err != nil {
		return fmt.Errorf("failed to list active employees: %w", err)
	}

	var absences []attendance.Record
	for _, employeeID := range employeeIDs {
		rec, err := j.attendanceRepo.GetByEmployeeAndDate(ctx, employeeID, yesterday)
		if err != nil {
			slog.Error("Cron: Failed to look up attendance", "employee_id", employeeID, "error", err)
			continue
		}
		if rec != nil {
			continue
		}

		zero := 0
		absences = append(absences, attendance.Record{
			ID:          uuid.NewString(),
			EmployeeID:  employeeID,
			Date:        yesterday,
			Status:      attendance.StatusAbsent,
			WorkMinutes: &zero,
		})
	}

	if len(absences) == 0 {
		return nil
	}

	if err := j.attendanceRepo.BulkCreateAbsences(ctx, absences); err != nil {
		return fmt.Errorf("failed to bulk create absences: %w", err)
	}

	slog.Info("Cron: Marked absent employees", "count", len(absences), "date", yesterday.Format("2006-01-02"))
	return nil
}
