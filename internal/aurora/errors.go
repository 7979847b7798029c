package aurora

import (
	"errors"
	"fmt"
)

// ErrorKind classifies device failures so callers can decide between
// retrying and giving up.
type ErrorKind int

const (
	// ErrorUnreachable covers network failures and timeouts. Transient: the
	// ambilight loop retries these on the next tick.
	ErrorUnreachable ErrorKind = iota
	// ErrorUnauthorized means the token is missing, invalid or revoked.
	ErrorUnauthorized
	// ErrorRejected means the device refused the payload.
	ErrorRejected
)

func (k ErrorKind) String() string {
	switch k {
	case ErrorUnreachable:
		return "unreachable"
	case ErrorUnauthorized:
		return "unauthorized"
	case ErrorRejected:
		return "rejected"
	}
	return "unknown"
}

// DeviceError wraps a failed device interaction with its classification.
type DeviceError struct {
	Kind ErrorKind
	Op   string
	Err  error
}

func (e *DeviceError) Error() string {
	return fmt.Sprintf("aurora %s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *DeviceError) Unwrap() error {
	return e.Err
}

func kindOf(err error, kind ErrorKind) bool {
	var de *DeviceError
	return errors.As(err, &de) && de.Kind == kind
}

// IsUnreachable reports whether err is a transient network failure.
func IsUnreachable(err error) bool { return kindOf(err, ErrorUnreachable) }

// IsUnauthorized reports whether err is a credential failure.
func IsUnauthorized(err error) bool { return kindOf(err, ErrorUnauthorized) }

// IsRejected reports whether the device refused the request payload.
func IsRejected(err error) bool { return kindOf(err, ErrorRejected) }
