package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shiftly-hr/attendance-backend-go/internal/domain/attendance"
	"github.com/shiftly-hr/attendance-backend-go/internal/pkg/database"
)

const uniqueViolationCode = "23505"

const recordColumns = `
	id, employee_id, date,
	check_in_at, check_in_latitude, check_in_longitude, check_in_place,
	check_out_at, check_out_latitude, check_out_longitude, check_out_place,
	total_break_minutes, status, work_minutes, late_minutes, overtime_minutes,
	created_at, updated_at
`

type attendanceRepository struct {
	db *database.DB
}

func NewAttendanceRepository(db *database.DB) attendance.Repository {
	return &attendanceRepository{db: db}
}

func scanRecord(row pgx.Row) (attendance.Record, error) {
	var rec attendance.Record
	err := row.Scan(
		&rec.ID, &rec.EmployeeID, &rec.Date,
		&rec.CheckInAt, &rec.CheckInLatitude, &rec.CheckInLongitude, &rec.CheckInPlace,
		&rec.CheckOutAt, &rec.CheckOutLatitude, &rec.CheckOutLongitude, &rec.CheckOutPlace,
		&rec.TotalBreakMinutes, &rec.Status, &rec.WorkMinutes, &rec.LateMinutes, &rec.OvertimeMinutes,
		&rec.CreatedAt, &rec.UpdatedAt,
	)
	return rec, err
}

// Create implements attendance.Repository.
func (a *attendanceRepository) Create(ctx context.Context, rec attendance.Record) (attendance.Record, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		INSERT INTO attendance_records (
			id, employee_id, date,
			check_in_at, check_in_latitude, check_in_longitude,
			status, late_minutes
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8
		) RETURNING created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		rec.ID,
		rec.EmployeeID,
		rec.Date,
		rec.CheckInAt,
		rec.CheckInLatitude,
		rec.CheckInLongitude,
		rec.Status,
		rec.LateMinutes,
	).Scan(&rec.CreatedAt, &rec.UpdatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return attendance.Record{}, attendance.ErrAlreadyCheckedIn
		}
		return attendance.Record{}, fmt.Errorf("failed to create attendance record: %w", err)
	}

	if rec.Breaks == nil {
		rec.Breaks = []attendance.Break{}
	}
	return rec, nil
}

// GetByEmployeeAndDate implements attendance.Repository.
func (a *attendanceRepository) GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (*attendance.Record, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		SELECT ` + recordColumns + `
		FROM attendance_records
		WHERE employee_id = $1
		  AND date = $2
		LIMIT 1
	`

	rec, err := scanRecord(q.QueryRow(ctx, query, employeeID, date))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil // no record yet for this day
		}
		return nil, fmt.Errorf("failed to get attendance by employee and date: %w", err)
	}

	if err := a.loadBreaks(ctx, q, []*attendance.Record{&rec}); err != nil {
		return nil, err
	}

	return &rec, nil
}

// Update implements attendance.Repository.
func (a *attendanceRepository) Update(ctx context.Context, rec attendance.Record) (attendance.Record, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		UPDATE attendance_records SET
			check_out_at = $2,
			check_out_latitude = $3,
			check_out_longitude = $4,
			total_break_minutes = $5,
			status = $6,
			work_minutes = $7,
			late_minutes = $8,
			overtime_minutes = $9,
			updated_at = NOW()
		WHERE id = $1
		RETURNING created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		rec.ID,
		rec.CheckOutAt,
		rec.CheckOutLatitude,
		rec.CheckOutLongitude,
		rec.TotalBreakMinutes,
		rec.Status,
		rec.WorkMinutes,
		rec.LateMinutes,
		rec.OvertimeMinutes,
	).Scan(&rec.CreatedAt, &rec.UpdatedAt)

	if err != nil {
		if err == pgx.ErrNoRows {
			return attendance.Record{}, attendance.ErrRecordNotFound
		}
		return attendance.Record{}, fmt.Errorf("failed to update attendance record: %w", err)
	}

	return rec, nil
}

// AttachPlaceName implements attendance.Repository.
func (a *attendanceRepository) AttachPlaceName(ctx context.Context, recordID string, side attendance.PunchSide, placeName string) error {
	q := GetQuerier(ctx, a.db)

	column := "check_in_place"
	if side == attendance.PunchCheckOut {
		column = "check_out_place"
	}

	query := fmt.Sprintf("UPDATE attendance_records SET %s = $2, updated_at = NOW() WHERE id = $1", column)

	commandTag, err := q.Exec(ctx, query, recordID, placeName)
	if err != nil {
		return fmt.Errorf("failed to attach place name: %w", err)
	}
	if commandTag.RowsAffected() == 0 {
		return attendance.ErrRecordNotFound
	}

	return nil
}

// ListByEmployee implements attendance.Repository.
func (a *attendanceRepository) ListByEmployee(ctx context.Context, employeeID string, filter attendance.ListFilter) ([]attendance.Record, int64, error) {
	q := GetQuerier(ctx, a.db)

	// Build WHERE clause
	baseWhere := "employee_id = $1"
	args := []interface{}{employeeID}
	argIdx := 2

	if filter.StartDate != nil && *filter.StartDate != "" {
		baseWhere += fmt.Sprintf(" AND date >= $%d", argIdx)
		args = append(args, *filter.StartDate)
		argIdx++
	}
	if filter.EndDate != nil && *filter.EndDate != "" {
		baseWhere += fmt.Sprintf(" AND date <= $%d", argIdx)
		args = append(args, *filter.EndDate)
		argIdx++
	}
	if filter.Status != nil && *filter.Status != "" {
		baseWhere += fmt.Sprintf(" AND status = $%d", argIdx)
		args = append(args, *filter.Status)
		argIdx++
	}

	countQuery := "SELECT COUNT(*) FROM attendance_records WHERE " + baseWhere
	var total int64
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count attendance records: %w", err)
	}

	limit := filter.Limit
	if limit == 0 {
		limit = 20
	}
	offset := (filter.Page - 1) * limit
	if offset < 0 {
		offset = 0
	}

	selectQuery := fmt.Sprintf(`
		SELECT `+recordColumns+`
		FROM attendance_records
		WHERE %s
		ORDER BY date DESC
		LIMIT $%d OFFSET $%d
	`, baseWhere, argIdx, argIdx+1)
	args = append(args, limit, offset)

	rows, err := q.Query(ctx, selectQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query attendance records: %w", err)
	}
	defer rows.Close()

	var records []attendance.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan attendance record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to read attendance records: %w", err)
	}

	refs := make([]*attendance.Record, len(records))
	for i := range records {
		refs[i] = &records[i]
	}
	if err := a.loadBreaks(ctx, q, refs); err != nil {
		return nil, 0, err
	}

	return records, total, nil
}

// ListRange implements attendance.Repository.
func (a *attendanceRepository) ListRange(ctx context.Context, employeeID string, start, end time.Time) ([]attendance.Record, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		SELECT ` + recordColumns + `
		FROM attendance_records
		WHERE employee_id = $1
		  AND date >= $2
		  AND date < $3
		ORDER BY date ASC
	`

	rows, err := q.Query(ctx, query, employeeID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query attendance records: %w", err)
	}
	defer rows.Close()

	var records []attendance.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attendance record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read attendance records: %w", err)
	}

	refs := make([]*attendance.Record, len(records))
	for i := range records {
		refs[i] = &records[i]
	}
	if err := a.loadBreaks(ctx, q, refs); err != nil {
		return nil, err
	}

	return records, nil
}

// OpenBreak implements attendance.Repository.
func (a *attendanceRepository) OpenBreak(ctx context.Context, recordID string, at time.Time) (attendance.Break, error) {
	var br attendance.Break

	err := WithTransaction(ctx, a.db, func(tx pgx.Tx) error {
		var hasOpen bool
		checkQuery := `
			SELECT EXISTS (
				SELECT 1
				FROM attendance_breaks
				WHERE attendance_record_id = $1
				  AND end_at IS NULL
			)
		`
		if err := tx.QueryRow(ctx, checkQuery, recordID).Scan(&hasOpen); err != nil {
			return fmt.Errorf("failed to check for open break: %w", err)
		}
		if hasOpen {
			return attendance.ErrBreakAlreadyOpen
		}

		insertQuery := `
			INSERT INTO attendance_breaks (attendance_record_id, start_at)
			VALUES ($1, $2)
			RETURNING id
		`
		if err := tx.QueryRow(ctx, insertQuery, recordID, at).Scan(&br.ID); err != nil {
			return fmt.Errorf("failed to open break: %w", err)
		}

		br.RecordID = recordID
		br.StartAt = at
		return nil
	})
	if err != nil {
		return attendance.Break{}, err
	}

	return br, nil
}

// CloseOpenBreak implements attendance.Repository. The break end and
// the record's break total move together or not at all.
func (a *attendanceRepository) CloseOpenBreak(ctx context.Context, recordID string, at time.Time) (attendance.Break, error) {
	var br attendance.Break

	err := WithTransaction(ctx, a.db, func(tx pgx.Tx) error {
		selectQuery := `
			SELECT id, start_at
			FROM attendance_breaks
			WHERE attendance_record_id = $1
			  AND end_at IS NULL
			ORDER BY start_at DESC
			LIMIT 1
			FOR UPDATE
		`
		if err := tx.QueryRow(ctx, selectQuery, recordID).Scan(&br.ID, &br.StartAt); err != nil {
			if err == pgx.ErrNoRows {
				return attendance.ErrNoOpenBreak
			}
			return fmt.Errorf("failed to find open break: %w", err)
		}

		if _, err := tx.Exec(ctx, "UPDATE attendance_breaks SET end_at = $2 WHERE id = $1", br.ID, at); err != nil {
			return fmt.Errorf("failed to close break: %w", err)
		}

		minutes := int(at.Sub(br.StartAt).Minutes())
		if minutes < 0 {
			minutes = 0
		}

		updateQuery := `
			UPDATE attendance_records
			SET total_break_minutes = total_break_minutes + $2,
			    updated_at = NOW()
			WHERE id = $1
		`
		if _, err := tx.Exec(ctx, updateQuery, recordID, minutes); err != nil {
			return fmt.Errorf("failed to update break total: %w", err)
		}

		br.RecordID = recordID
		br.EndAt = &at
		return nil
	})
	if err != nil {
		return attendance.Break{}, err
	}

	return br, nil
}

// ActiveEmployeeIDs implements attendance.Repository.
func (a *attendanceRepository) ActiveEmployeeIDs(ctx context.Context) ([]string, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		SELECT id
		FROM employees
		WHERE employment_status = 'active'
		  AND deleted_at IS NULL
	`

	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query active employees: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan employee id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read employee ids: %w", err)
	}

	return ids, nil
}

// BulkCreateAbsences implements attendance.Repository.
func (a *attendanceRepository) BulkCreateAbsences(ctx context.Context, recs []attendance.Record) error {
	if len(recs) == 0 {
		return nil
	}

	err := WithTransaction(ctx, a.db, func(tx pgx.Tx) error {
		query := `
			INSERT INTO attendance_records (id, employee_id, date, status, work_minutes)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (employee_id, date) DO NOTHING
		`
		for _, rec := range recs {
			if _, err := tx.Exec(ctx, query, rec.ID, rec.EmployeeID, rec.Date, rec.Status, rec.WorkMinutes); err != nil {
				return fmt.Errorf("failed to insert absence for employee %s: %w", rec.EmployeeID, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	return nil
}

// loadBreaks fills Breaks for every referenced record in one query.
func (a *attendanceRepository) loadBreaks(ctx context.Context, q database.Querier, recs []*attendance.Record) error {
	if len(recs) == 0 {
		return nil
	}

	ids := make([]string, 0, len(recs))
	byID := make(map[string]*attendance.Record, len(recs))
	for _, rec := range recs {
		ids = append(ids, rec.ID)
		byID[rec.ID] = rec
		rec.Breaks = []attendance.Break{}
	}

	query := `
		SELECT id, attendance_record_id, start_at, end_at
		FROM attendance_breaks
		WHERE attendance_record_id = ANY($1)
		ORDER BY start_at ASC
	`

	rows, err := q.Query(ctx, query, ids)
	if err != nil {
		return fmt.Errorf("failed to query attendance breaks: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var br attendance.Break
		if err := rows.Scan(&br.ID, &br.RecordID, &br.StartAt, &br.EndAt); err != nil {
			return fmt.Errorf("failed to scan attendance break: %w", err)
		}
		if rec, ok := byID[br.RecordID]; ok {
			rec.Breaks = append(rec.Breaks, br)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to read attendance breaks: %w", err)
	}

	return nil
}
