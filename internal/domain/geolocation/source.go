package geolocation

import (
	"context"
	"time"
)

// Source is the device location API contract: a single-shot position
// request plus a permission-state query. Implementations must honor
// context cancellation; the resolver applies the acquisition timeout.
type Source interface {
	Position(ctx context.Context) (Fix, error)
	Permission(ctx context.Context) (Permission, error)
}

// Report is the device-side geolocation outcome as delivered by the
// transport layer alongside a punch.
type Report struct {
	Supported  bool
	Permission Permission
	Fix        *Fix
	Failure    ErrorKind // empty when the device produced a fix
}

// ReportSource adapts a Report into a Source. The "acquisition"
// already happened on the device, so both calls return immediately.
type ReportSource struct {
	Report Report
}

func (s ReportSource) Position(ctx context.Context) (Fix, error) {
	if !s.Report.Supported {
		return Fix{}, ErrUnsupported
	}
	if s.Report.Failure != "" {
		return Fix{}, FromKind(s.Report.Failure)
	}
	if s.Report.Fix == nil {
		return Fix{}, ErrPositionUnavailable
	}
	return *s.Report.Fix, nil
}

func (s ReportSource) Permission(ctx context.Context) (Permission, error) {
	if s.Report.Permission == "" {
		return PermissionPrompt, nil
	}
	return s.Report.Permission, nil
}

// Resolver is the acquisition-and-resolution pipeline exposed to the
// session layer.
type Resolver interface {
	// Acquire returns a coordinate fix for the employee's device, or
	// one of the acquisition errors. A denial short-circuits future
	// calls until PermissionChanged reports a new state.
	Acquire(ctx context.Context, employeeID string, src Source) (Fix, error)

	// PlaceName resolves coordinates to a human-readable place,
	// degrading to a raw coordinate string or PlaceUnavailable. It
	// never returns an error.
	PlaceName(ctx context.Context, fix Fix) string

	// PermissionChanged records a device permission change
	// notification and lifts a denial short-circuit.
	PermissionChanged(employeeID string, p Permission)

	// StateFor reports the process-local state for an employee.
	StateFor(employeeID string) State
}

// MaxFixAge is the default maximum age of a cached fix before a fresh
// one is required.
const MaxFixAge = 60 * time.Second

// AcquireTimeout is the default single-shot acquisition timeout.
const AcquireTimeout = 10 * time.Second
