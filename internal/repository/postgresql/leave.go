package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/shiftly-hr/attendance-backend-go/internal/domain/leave"
	"github.com/shiftly-hr/attendance-backend-go/internal/pkg/database"
)

type leaveRepository struct {
	db *database.DB
}

func NewLeaveRepository(db *database.DB) leave.Repository {
	return &leaveRepository{db: db}
}

// ListApprovedOverlapping implements leave.Repository. Pending,
// rejected and cancelled requests never leave the store.
func (l *leaveRepository) ListApprovedOverlapping(ctx context.Context, employeeID string, start, end time.Time) ([]leave.Record, error) {
	q := GetQuerier(ctx, l.db)

	query := `
		SELECT id, employee_id, leave_type, start_date, end_date, status
		FROM leave_records
		WHERE employee_id = $1
		  AND status = 'approved'
		  AND start_date < $3
		  AND end_date >= $2
		ORDER BY start_date ASC
	`

	rows, err := q.Query(ctx, query, employeeID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query leave records: %w", err)
	}
	defer rows.Close()

	var records []leave.Record
	for rows.Next() {
		var rec leave.Record
		if err := rows.Scan(&rec.ID, &rec.EmployeeID, &rec.LeaveType, &rec.StartDate, &rec.EndDate, &rec.Status); err != nil {
			return nil, fmt.Errorf("failed to scan leave record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read leave records: %w", err)
	}

	return records, nil
}
