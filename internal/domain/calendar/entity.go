package calendar

import "time"

// SourceKind names the collection an event came from. The three
// sources are disjoint in meaning even when dates coincide, so the
// composer concatenates without deduplication.
type SourceKind string

const (
	SourceAttendance SourceKind = "attendance"
	SourceLeave      SourceKind = "leave"
	SourceHoliday    SourceKind = "holiday"
)

// Event is a derived, date-ranged calendar entry. It is recomputed on
// every compose call and never persisted.
type Event struct {
	Title      string     `json:"title"`
	StartDate  time.Time  `json:"start_date"`
	EndDate    time.Time  `json:"end_date"`
	ColorKey   string     `json:"color_key"`
	SourceKind SourceKind `json:"source_kind"`
}
