package timesheet

import (
	"log/slog"
	"math"
	"time"

	"github.com/shiftly-hr/attendance-backend-go/internal/domain/attendance"
)

// ProductionHours returns worked time minus break time for a record,
// in hours. For an open session the elapsed time runs up to now; a
// closed session uses its check-out. The result is never negative:
// malformed data (check-out before check-in, break total exceeding
// elapsed time) clamps to zero instead of propagating.
func ProductionHours(rec *attendance.Record, now time.Time) float64 {
	if rec == nil || rec.Status == attendance.StatusAbsent {
		return 0
	}
	if rec.CheckInAt == nil || rec.CheckInAt.IsZero() {
		return 0
	}

	end := now
	if rec.CheckOutAt != nil {
		if rec.CheckOutAt.IsZero() {
			slog.Warn("Attendance record has malformed check-out timestamp", "record_id", rec.ID)
			return 0
		}
		end = *rec.CheckOutAt
	}

	elapsed := end.Sub(*rec.CheckInAt).Hours()
	if elapsed < 0 {
		slog.Warn("Attendance record has check-out before check-in", "record_id", rec.ID)
		elapsed = 0
	}

	hours := elapsed - float64(rec.TotalBreakMinutes)/60.0
	if hours < 0 {
		return 0
	}
	return hours
}

// LiveTotalForPeriod extends a store-reported period total with the
// in-progress portion of an open session, but only when the session's
// day falls inside [periodStart, periodEnd). The store aggregates
// closed records only, so the open day is extrapolated locally; this
// is what lets hour displays tick upward without a network call.
func LiveTotalForPeriod(baseTotal float64, rec *attendance.Record, periodStart, periodEnd, now time.Time) float64 {
	if !rec.OpenSession() {
		return baseTotal
	}
	if rec.Date.Before(periodStart) || !rec.Date.Before(periodEnd) {
		return baseTotal
	}
	return baseTotal + ProductionHours(rec, now)
}

// RoundDisplay rounds hours to two decimals. Applied only at display
// boundaries, never mid-calculation.
func RoundDisplay(hours float64) float64 {
	return math.Round(hours*100) / 100
}
