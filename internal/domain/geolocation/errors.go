package geolocation

import "errors"

// ErrorKind classifies an acquisition failure.
type ErrorKind string

const (
	KindUnsupported         ErrorKind = "unsupported"
	KindPermissionDenied    ErrorKind = "permission_denied"
	KindPositionUnavailable ErrorKind = "position_unavailable"
	KindTimeout             ErrorKind = "timeout"
	KindUnknown             ErrorKind = "unknown"
)

// Acquisition errors. All of them are non-fatal to a punch.
var (
	ErrUnsupported         = errors.New("geolocation is not supported on this device")
	ErrPermissionDenied    = errors.New("location permission denied")
	ErrPositionUnavailable = errors.New("device position unavailable")
	ErrTimeout             = errors.New("timed out acquiring device position")
	ErrUnknown             = errors.New("unknown geolocation failure")
)

// Kind maps an acquisition error to its ErrorKind.
func Kind(err error) ErrorKind {
	switch {
	case errors.Is(err, ErrUnsupported):
		return KindUnsupported
	case errors.Is(err, ErrPermissionDenied):
		return KindPermissionDenied
	case errors.Is(err, ErrPositionUnavailable):
		return KindPositionUnavailable
	case errors.Is(err, ErrTimeout):
		return KindTimeout
	default:
		return KindUnknown
	}
}

// FromKind maps a device-reported error kind back to the sentinel
// error, defaulting to ErrUnknown for anything unrecognised.
func FromKind(kind ErrorKind) error {
	switch kind {
	case KindUnsupported:
		return ErrUnsupported
	case KindPermissionDenied:
		return ErrPermissionDenied
	case KindPositionUnavailable:
		return ErrPositionUnavailable
	case KindTimeout:
		return ErrTimeout
	default:
		return ErrUnknown
	}
}
