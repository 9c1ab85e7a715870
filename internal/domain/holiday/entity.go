package holiday

import "time"

// Holiday is a company-wide non-working date.
type Holiday struct {
	ID   string
	Date time.Time
	Name string
}
