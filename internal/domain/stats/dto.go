package stats

// Change is a percent comparison between a current and a prior value.
// A zero previous value is reported as a full increase (100%) with Up
// following the sign of the current value, never a division by zero.
type Change struct {
	Current  float64 `json:"current"`
	Previous float64 `json:"previous"`
	Percent  float64 `json:"percent"`
	Up       bool    `json:"up"`
}

// DashboardResponse is the four comparison tuples shown on the
// employee dashboard. Hour values include live extrapolation for an
// open session; the percent comparisons use the same values.
type DashboardResponse struct {
	TodayHours    Change `json:"today_hours"`
	WeekHours     Change `json:"week_hours"`
	MonthHours    Change `json:"month_hours"`
	MonthOvertime Change `json:"month_overtime"`

	ThisMonth PeriodStatisticsResponse `json:"this_month"`
}

// PeriodStatisticsResponse is PeriodStatistics in API shape.
type PeriodStatisticsResponse struct {
	StartDate              string  `json:"start_date"`
	EndDate                string  `json:"end_date"`
	TotalDays              int64   `json:"total_days"`
	PresentDays            int64   `json:"present_days"`
	AbsentDays             int64   `json:"absent_days"`
	LateDays               int64   `json:"late_days"`
	TotalWorkingHours      float64 `json:"total_working_hours"`
	TotalOvertimeHours     float64 `json:"total_overtime_hours"`
	AverageProductionHours float64 `json:"average_production_hours"`
}
