package stats

import (
	"context"
	"log/slog"
	"math"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/shiftly-hr/attendance-backend-go/internal/domain/attendance"
	"github.com/shiftly-hr/attendance-backend-go/internal/domain/stats"
	"github.com/shiftly-hr/attendance-backend-go/internal/pkg/clock"
	"github.com/shiftly-hr/attendance-backend-go/internal/pkg/jwt"
	"github.com/shiftly-hr/attendance-backend-go/internal/service/timesheet"
)

type service struct {
	statsRepo      stats.Repository
	attendanceRepo attendance.Repository
	clk            clock.Clock
	loc            *time.Location
}

func NewStatsService(
	statsRepo stats.Repository,
	attendanceRepo attendance.Repository,
	clk clock.Clock,
	loc *time.Location,
) stats.Service {
	return &service{
		statsRepo:      statsRepo,
		attendanceRepo: attendanceRepo,
		clk:            clk,
		loc:            loc,
	}
}

func (s *service) Dashboard(ctx context.Context) (stats.DashboardResponse, error) {
	employeeID, err := jwt.EmployeeIDFromContext(ctx)
	if err != nil {
		return stats.DashboardResponse{}, err
	}

	now := s.clk.Now()
	nowLocal := now.In(s.loc)
	today := dateOf(nowLocal)

	periods := dashboardPeriods(today)

	current := make([]stats.PeriodStatistics, len(periods))
	var todayRec *attendance.Record

	g, fetchCtx := errgroup.WithContext(ctx)

	// Each aggregate degrades independently to its zero value; one
	// failed fetch must not blank the whole dashboard.
	for i := range periods {
		i := i
		g.Go(func() error {
			ps, err := s.statsRepo.GetStatistics(fetchCtx, employeeID, periods[i].Start, periods[i].End)
			if err != nil {
				slog.Warn("Dashboard statistics fetch failed",
					"employee_id", employeeID,
					"period_start", periods[i].Start.Format("2006-01-02"),
					"error", err)
				return nil
			}
			current[i] = ps
			return nil
		})
	}
	g.Go(func() error {
		rec, err := s.attendanceRepo.GetByEmployeeAndDate(fetchCtx, employeeID, today)
		if err != nil {
			slog.Warn("Dashboard today record fetch failed", "employee_id", employeeID, "error", err)
			return nil
		}
		todayRec = rec
		return nil
	})
	if err := g.Wait(); err != nil {
		return stats.DashboardResponse{}, err
	}

	var (
		statsToday     = current[periodToday]
		statsYesterday = current[periodYesterday]
		statsThisWeek  = current[periodThisWeek]
		statsLastWeek  = current[periodLastWeek]
		statsThisMonth = current[periodThisMonth]
		statsLastMonth = current[periodLastMonth]
	)

	liveToday := timesheet.LiveTotalForPeriod(statsToday.TotalWorkingHours, todayRec,
		periods[periodToday].Start, periods[periodToday].End, now)
	liveWeek := timesheet.LiveTotalForPeriod(statsThisWeek.TotalWorkingHours, todayRec,
		periods[periodThisWeek].Start, periods[periodThisWeek].End, now)
	liveMonth := timesheet.LiveTotalForPeriod(statsThisMonth.TotalWorkingHours, todayRec,
		periods[periodThisMonth].Start, periods[periodThisMonth].End, now)

	thisMonth := periods[periodThisMonth]

	return stats.DashboardResponse{
		TodayHours:    PercentChange(timesheet.RoundDisplay(liveToday), timesheet.RoundDisplay(statsYesterday.TotalWorkingHours)),
		WeekHours:     PercentChange(timesheet.RoundDisplay(liveWeek), timesheet.RoundDisplay(statsLastWeek.TotalWorkingHours)),
		MonthHours:    PercentChange(timesheet.RoundDisplay(liveMonth), timesheet.RoundDisplay(statsLastMonth.TotalWorkingHours)),
		MonthOvertime: PercentChange(timesheet.RoundDisplay(statsThisMonth.TotalOvertimeHours), timesheet.RoundDisplay(statsLastMonth.TotalOvertimeHours)),
		ThisMonth: stats.PeriodStatisticsResponse{
			StartDate:              thisMonth.Start.Format("2006-01-02"),
			EndDate:                thisMonth.End.AddDate(0, 0, -1).Format("2006-01-02"),
			TotalDays:              statsThisMonth.TotalDays,
			PresentDays:            statsThisMonth.PresentDays,
			AbsentDays:             statsThisMonth.AbsentDays,
			LateDays:               statsThisMonth.LateDays,
			TotalWorkingHours:      timesheet.RoundDisplay(liveMonth),
			TotalOvertimeHours:     timesheet.RoundDisplay(statsThisMonth.TotalOvertimeHours),
			AverageProductionHours: timesheet.RoundDisplay(statsThisMonth.AverageProductionHours),
		},
	}, nil
}

// Indexes into dashboardPeriods.
const (
	periodToday = iota
	periodYesterday
	periodThisWeek
	periodLastWeek
	periodThisMonth
	periodLastMonth
	periodCount
)

// dashboardPeriods derives the six comparison periods from a calendar
// day. Weeks start on Sunday.
func dashboardPeriods(today time.Time) [periodCount]stats.Period {
	weekStart := today.AddDate(0, 0, -int(today.Weekday()))
	monthStart := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC)

	return [periodCount]stats.Period{
		periodToday:     {Start: today, End: today.AddDate(0, 0, 1)},
		periodYesterday: {Start: today.AddDate(0, 0, -1), End: today},
		periodThisWeek:  {Start: weekStart, End: weekStart.AddDate(0, 0, 7)},
		periodLastWeek:  {Start: weekStart.AddDate(0, 0, -7), End: weekStart},
		periodThisMonth: {Start: monthStart, End: monthStart.AddDate(0, 1, 0)},
		periodLastMonth: {Start: monthStart.AddDate(0, -1, 0), End: monthStart},
	}
}

// PercentChange compares a current value against a prior one. A zero
// previous value reports a full increase with the direction following
// the current value, so the caller never divides by zero.
func PercentChange(current, previous float64) stats.Change {
	if previous == 0 {
		return stats.Change{
			Current:  current,
			Previous: previous,
			Percent:  100,
			Up:       current > 0,
		}
	}

	return stats.Change{
		Current:  current,
		Previous: previous,
		Percent:  timesheet.RoundDisplay(math.Abs(current-previous) / previous * 100),
		Up:       current >= previous,
	}
}

func dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
