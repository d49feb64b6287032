package datastore

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by stores. Callers classify failures with
// errors.Is rather than matching message text.
var (
	// ErrInvalidArgument reports a caller mistake such as a negative
	// offset or a URL carrying inline credentials.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrNotImplemented reports an operation or option the backend
	// cannot support.
	ErrNotImplemented = errors.New("not implemented")

	// ErrNotFound reports a missing object on backends that can tell
	// absence apart from emptiness.
	ErrNotFound = errors.New("not found")

	// ErrUnsupportedScheme reports a URL scheme no registered store
	// handles.
	ErrUnsupportedScheme = errors.New("unsupported url scheme")
)

// InvalidArgument wraps ErrInvalidArgument with a formatted message.
func InvalidArgument(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}

// NotImplemented wraps ErrNotImplemented with a formatted message.
func NotImplemented(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNotImplemented, fmt.Sprintf(format, args...))
}
