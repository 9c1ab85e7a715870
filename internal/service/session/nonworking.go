package session

import (
	"context"
	"fmt"
	"time"

	"github.com/shiftly-hr/attendance-backend-go/internal/domain/holiday"
)

// NonWorkingDays answers whether a date is exempt from attendance:
// Sundays and configured holidays. The input is a calendar day; its
// time-of-day component is ignored.
type NonWorkingDays struct {
	holidayRepo holiday.Repository
}

func NewNonWorkingDays(holidayRepo holiday.Repository) *NonWorkingDays {
	return &NonWorkingDays{holidayRepo: holidayRepo}
}

func (n *NonWorkingDays) IsNonWorkingDay(ctx context.Context, date time.Time) (bool, error) {
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	if day.Weekday() == time.Sunday {
		return true, nil
	}

	holidays, err := n.holidayRepo.ListRange(ctx, day, day.AddDate(0, 0, 1))
	if err != nil {
		return false, fmt.Errorf("failed to check holidays: %w", err)
	}

	return len(holidays) > 0, nil
}
