package models

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors for common failure conditions
var (
	ErrNotFound       = errors.New("resource not found")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrBadRequest     = errors.New("bad request")
	ErrInternalServer = errors.New("internal server error")

	// Console operation errors
	ErrInvalidArgument       = errors.New("invalid argument")
	ErrRemoteOperationFailed = errors.New("remote operation failed")
	ErrSessionExpired        = errors.New("session expired")
)

// RemoteError is returned when a backend call does not succeed.
// It matches ErrRemoteOperationFailed with errors.Is.
type RemoteError struct {
	Op         string // backend operation, e.g. "deleteUser"
	StatusCode int    // 0 when the request never got a response
	Message    string // human-readable message from the backend
	Err        error  // transport error, if any
}

func (e *RemoteError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s: backend returned %d: %s", e.Op, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

func (e *RemoteError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrRemoteOperationFailed, e.Err}
	}
	return []error{ErrRemoteOperationFailed}
}

// IsAuthFailure reports whether the backend rejected the admin's credential.
func (e *RemoteError) IsAuthFailure() bool {
	return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
}

// InvalidArgument wraps ErrInvalidArgument with a reason suitable for display.
func InvalidArgument(reason string) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, reason)
}
