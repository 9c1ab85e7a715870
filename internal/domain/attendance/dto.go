package attendance

import (
	"github.com/shiftly-hr/attendance-backend-go/internal/domain/geolocation"
	"github.com/shiftly-hr/attendance-backend-go/internal/pkg/validator"
)

// ========================================
// ATTENDANCE DTOs
// ========================================

// PunchRequest carries one punch plus the device's geolocation report.
// All location fields are optional; a punch without location is valid.
type PunchRequest struct {
	Latitude   *float64 `json:"latitude,omitempty"`
	Longitude  *float64 `json:"longitude,omitempty"`
	CapturedAt *string  `json:"captured_at,omitempty"` // RFC3339, when the fix was taken
	Supported  *bool    `json:"geolocation_supported,omitempty"`
	Permission string   `json:"geolocation_permission,omitempty"` // prompt|granted|denied
	Failure    string   `json:"geolocation_failure,omitempty"`    // device-side error kind, if any
}

func (r *PunchRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.Latitude != nil && !validator.IsValidLatitude(*r.Latitude) {
		errs = append(errs, validator.ValidationError{
			Field:   "latitude",
			Message: "latitude must be between -90 and 90",
		})
	}

	if r.Longitude != nil && !validator.IsValidLongitude(*r.Longitude) {
		errs = append(errs, validator.ValidationError{
			Field:   "longitude",
			Message: "longitude must be between -180 and 180",
		})
	}

	if (r.Latitude == nil) != (r.Longitude == nil) {
		errs = append(errs, validator.ValidationError{
			Field:   "latitude",
			Message: "latitude and longitude must be provided together",
		})
	}

	if r.CapturedAt != nil {
		if _, ok := validator.IsValidDateTime(*r.CapturedAt); !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "captured_at",
				Message: "captured_at must be an RFC3339 timestamp",
			})
		}
	}

	switch r.Permission {
	case "", string(geolocation.PermissionPrompt), string(geolocation.PermissionGranted), string(geolocation.PermissionDenied):
	default:
		errs = append(errs, validator.ValidationError{
			Field:   "geolocation_permission",
			Message: "geolocation_permission must be one of prompt, granted, denied",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// ListFilter filters an employee's own attendance history.
type ListFilter struct {
	StartDate *string
	EndDate   *string
	Status    *string
	Page      int
	Limit     int
}

func (f *ListFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.StartDate != nil && *f.StartDate != "" {
		if _, ok := validator.IsValidDate(*f.StartDate); !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "start_date",
				Message: "start_date must be in YYYY-MM-DD format",
			})
		}
	}

	if f.EndDate != nil && *f.EndDate != "" {
		if _, ok := validator.IsValidDate(*f.EndDate); !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "end_date",
				Message: "end_date must be in YYYY-MM-DD format",
			})
		}
	}

	if f.Status != nil && *f.Status != "" {
		valid := []string{
			string(StatusPresent), string(StatusLate), string(StatusHalfDay),
			string(StatusAbsent), string(StatusOnLeave),
		}
		if !validator.IsInSlice(*f.Status, valid) {
			errs = append(errs, validator.ValidationError{
				Field:   "status",
				Message: "status must be one of present, late, half_day, absent, on_leave",
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// BreakItem is a break in API shape.
type BreakItem struct {
	StartAt string  `json:"start_at"`
	EndAt   *string `json:"end_at,omitempty"`
}

// RecordResponse is a record in API shape. ProductionHours includes
// live extrapolation while the session is open.
type RecordResponse struct {
	ID                string      `json:"id"`
	EmployeeID        string      `json:"employee_id"`
	Date              string      `json:"date"`
	State             string      `json:"session_state"`
	CheckInAt         *string     `json:"check_in_at,omitempty"`
	CheckInLatitude   *float64    `json:"check_in_latitude,omitempty"`
	CheckInLongitude  *float64    `json:"check_in_longitude,omitempty"`
	CheckInPlace      *string     `json:"check_in_place,omitempty"`
	CheckOutAt        *string     `json:"check_out_at,omitempty"`
	CheckOutLatitude  *float64    `json:"check_out_latitude,omitempty"`
	CheckOutLongitude *float64    `json:"check_out_longitude,omitempty"`
	CheckOutPlace     *string     `json:"check_out_place,omitempty"`
	Breaks            []BreakItem `json:"breaks"`
	TotalBreakMinutes int         `json:"total_break_minutes"`
	Status            string      `json:"status"`
	LateMinutes       *int        `json:"late_minutes,omitempty"`
	OvertimeMinutes   *int        `json:"overtime_minutes,omitempty"`
	ProductionHours   float64     `json:"production_hours"`
}

// PunchResponse is a RecordResponse plus an informational notice for
// non-blocking enrichment failures (no location recorded, etc).
type PunchResponse struct {
	Record RecordResponse `json:"record"`
	Notice string         `json:"notice,omitempty"`
}

// ListResponse is a paginated attendance history.
type ListResponse struct {
	TotalCount int64            `json:"total_count"`
	Page       int              `json:"page"`
	Limit      int              `json:"limit"`
	TotalPages int              `json:"total_pages"`
	Records    []RecordResponse `json:"records"`
}
