package geolocation

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/shiftly-hr/attendance-backend-go/internal/domain/geolocation"
	"github.com/shiftly-hr/attendance-backend-go/internal/pkg/clock"
	"github.com/shiftly-hr/attendance-backend-go/internal/pkg/geocode"
	"github.com/shiftly-hr/attendance-backend-go/internal/pkg/utils"
)

// placeReuseMeters is the radius within which the previous reverse
// geocoding result is reused instead of calling the provider again.
const placeReuseMeters = 50.0

// Geocoder is the reverse-geocoding provider used for place names.
type Geocoder interface {
	Reverse(ctx context.Context, lat, lon float64) (*geocode.Address, error)
}

type resolver struct {
	geocoder Geocoder
	clk      clock.Clock
	timeout  time.Duration
	maxAge   time.Duration

	mu     sync.Mutex
	states map[string]*geolocation.State

	// last successful reverse-geocoding result, reused for nearby fixes
	lastGeoFix   *geolocation.Fix
	lastGeoPlace string
}

func NewResolver(geocoder Geocoder, clk clock.Clock, timeout, maxAge time.Duration) geolocation.Resolver {
	if timeout <= 0 {
		timeout = geolocation.AcquireTimeout
	}
	if maxAge <= 0 {
		maxAge = geolocation.MaxFixAge
	}
	return &resolver{
		geocoder: geocoder,
		clk:      clk,
		timeout:  timeout,
		maxAge:   maxAge,
		states:   make(map[string]*geolocation.State),
	}
}

func (r *resolver) state(employeeID string) *geolocation.State {
	st, ok := r.states[employeeID]
	if !ok {
		st = &geolocation.State{Supported: true, Permission: geolocation.PermissionPrompt}
		r.states[employeeID] = st
	}
	return st
}

func (r *resolver) Acquire(ctx context.Context, employeeID string, src geolocation.Source) (geolocation.Fix, error) {
	r.mu.Lock()
	st := r.state(employeeID)

	if st.Permission == geolocation.PermissionDenied {
		kind := geolocation.KindPermissionDenied
		st.LastError = &kind
		r.mu.Unlock()
		return geolocation.Fix{}, geolocation.ErrPermissionDenied
	}

	now := r.clk.Now()
	if st.LastFix != nil && now.Sub(st.LastFix.CapturedAt) <= r.maxAge {
		fix := *st.LastFix
		r.mu.Unlock()
		return fix, nil
	}
	r.mu.Unlock()

	if perm, err := src.Permission(ctx); err == nil && perm == geolocation.PermissionDenied {
		r.recordFailure(employeeID, geolocation.ErrPermissionDenied)
		return geolocation.Fix{}, geolocation.ErrPermissionDenied
	}

	acquireCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	fix, err := src.Position(acquireCtx)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			err = geolocation.ErrTimeout
		}
		r.recordFailure(employeeID, err)
		return geolocation.Fix{}, err
	}

	if fix.CapturedAt.IsZero() {
		fix.CapturedAt = now
	}
	if now.Sub(fix.CapturedAt) > r.maxAge {
		r.recordFailure(employeeID, geolocation.ErrPositionUnavailable)
		return geolocation.Fix{}, geolocation.ErrPositionUnavailable
	}

	r.mu.Lock()
	st = r.state(employeeID)
	st.Supported = true
	st.Permission = geolocation.PermissionGranted
	st.LastFix = &fix
	st.LastError = nil
	r.mu.Unlock()

	return fix, nil
}

func (r *resolver) recordFailure(employeeID string, err error) {
	kind := geolocation.Kind(err)

	r.mu.Lock()
	defer r.mu.Unlock()

	st := r.state(employeeID)
	st.LastError = &kind

	switch kind {
	case geolocation.KindPermissionDenied:
		st.Permission = geolocation.PermissionDenied
	case geolocation.KindUnsupported:
		st.Supported = false
	}
}

func (r *resolver) PlaceName(ctx context.Context, fix geolocation.Fix) string {
	r.mu.Lock()
	if r.lastGeoFix != nil && r.lastGeoPlace != "" {
		dist := utils.HaversineDistance(r.lastGeoFix.Latitude, r.lastGeoFix.Longitude, fix.Latitude, fix.Longitude)
		if dist <= placeReuseMeters {
			place := r.lastGeoPlace
			r.mu.Unlock()
			return place
		}
	}
	r.mu.Unlock()

	addr, err := r.geocoder.Reverse(ctx, fix.Latitude, fix.Longitude)
	if err != nil {
		slog.Warn("Reverse geocoding failed, falling back to coordinates", "error", err)
		return utils.FormatCoordinates(fix.Latitude, fix.Longitude)
	}

	name := geocode.PlaceName(addr)
	if name == "" {
		return geolocation.PlaceUnavailable
	}

	r.mu.Lock()
	r.lastGeoFix = &fix
	r.lastGeoPlace = name
	r.mu.Unlock()

	return name
}

func (r *resolver) PermissionChanged(employeeID string, p geolocation.Permission) {
	r.mu.Lock()
	defer r.mu.Unlock()

	st := r.state(employeeID)
	st.Permission = p
	if p != geolocation.PermissionDenied {
		st.LastError = nil
	}
	if p == geolocation.PermissionDenied {
		st.LastFix = nil
	}
}

func (r *resolver) StateFor(employeeID string) geolocation.State {
	r.mu.Lock()
	defer r.mu.Unlock()

	st := r.state(employeeID)
	out := *st
	if st.LastFix != nil {
		fix := *st.LastFix
		out.LastFix = &fix
	}
	if st.LastError != nil {
		kind := *st.LastError
		out.LastError = &kind
	}
	return out
}
