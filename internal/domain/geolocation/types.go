package geolocation

import "time"

// Permission is the device location permission state. It is a
// three-value enum rather than a boolean because "denied" and "not
// yet asked" need different retry behaviour: after a denial the
// resolver must not attempt acquisition again until a permission
// change notification arrives.
type Permission string

const (
	PermissionPrompt  Permission = "prompt"
	PermissionGranted Permission = "granted"
	PermissionDenied  Permission = "denied"
)

// Fix is a device coordinate pair with the moment it was taken.
type Fix struct {
	Latitude   float64
	Longitude  float64
	CapturedAt time.Time
}

// State is the process-local geolocation state for one employee's
// device. It is never persisted.
type State struct {
	Supported  bool
	Permission Permission
	LastFix    *Fix
	LastError  *ErrorKind
}

// PlaceUnavailable is the sentinel place name used when reverse
// geocoding produced nothing usable.
const PlaceUnavailable = "Location Unavailable"
