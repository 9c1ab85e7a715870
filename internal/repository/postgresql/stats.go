package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/shiftly-hr/attendance-backend-go/internal/domain/stats"
	"github.com/shiftly-hr/attendance-backend-go/internal/pkg/database"
)

type statsRepository struct {
	db *database.DB
}

func NewStatsRepository(db *database.DB) stats.Repository {
	return &statsRepository{db: db}
}

// GetStatistics implements stats.Repository. Only closed records count
// toward the aggregates; the open session is extrapolated by the
// caller.
func (s *statsRepository) GetStatistics(ctx context.Context, employeeID string, start, end time.Time) (stats.PeriodStatistics, error) {
	q := GetQuerier(ctx, s.db)

	query := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE status IN ('present', 'late', 'half_day')),
			COUNT(*) FILTER (WHERE status = 'absent'),
			COUNT(*) FILTER (WHERE status = 'late'),
			COALESCE(SUM(work_minutes), 0),
			COALESCE(SUM(overtime_minutes), 0),
			COALESCE(AVG(work_minutes) FILTER (WHERE status IN ('present', 'late', 'half_day')), 0)
		FROM attendance_records
		WHERE employee_id = $1
		  AND date >= $2
		  AND date < $3
		  AND (check_out_at IS NOT NULL OR status IN ('absent', 'on_leave'))
	`

	var (
		ps             stats.PeriodStatistics
		workMinutes    int64
		overtimeMin    int64
		avgWorkMinutes float64
	)
	err := q.QueryRow(ctx, query, employeeID, start, end).Scan(
		&ps.TotalDays,
		&ps.PresentDays,
		&ps.AbsentDays,
		&ps.LateDays,
		&workMinutes,
		&overtimeMin,
		&avgWorkMinutes,
	)
	if err != nil {
		return stats.PeriodStatistics{}, fmt.Errorf("failed to get period statistics: %w", err)
	}

	ps.TotalWorkingHours = float64(workMinutes) / 60.0
	ps.TotalOvertimeHours = float64(overtimeMin) / 60.0
	ps.AverageProductionHours = avgWorkMinutes / 60.0

	return ps, nil
}
