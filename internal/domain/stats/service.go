package stats

import "context"

// Service aggregates period statistics and derives the dashboard
// comparisons. The employee identity comes from the JWT claims.
type Service interface {
	// Dashboard fetches the current and prior period aggregates
	// (concurrently, they are independent) and derives the four
	// percent-change tuples.
	Dashboard(ctx context.Context) (DashboardResponse, error)
}
