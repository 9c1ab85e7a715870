package stats

import "time"

// PeriodStatistics is a store-computed aggregate over one employee's
// closed attendance records for a date range. It is immutable once
// fetched; a refresh replaces it wholesale.
type PeriodStatistics struct {
	TotalDays              int64
	PresentDays            int64
	AbsentDays             int64
	LateDays               int64
	TotalWorkingHours      float64
	TotalOvertimeHours     float64
	AverageProductionHours float64
}

// Period is a named date range in local time.
type Period struct {
	Start time.Time // inclusive
	End   time.Time // exclusive
}

// Contains reports whether the calendar day of t falls in the period.
func (p Period) Contains(t time.Time) bool {
	return !t.Before(p.Start) && t.Before(p.End)
}
