package backend

import (
	"errors"
	"fmt"
)

// Kind classifies an Analysis Backend failure so translation to the public
// error taxonomy is exhaustive.
type Kind string

const (
	// KindNotFound means the backend reported the resource does not exist.
	KindNotFound Kind = "not_found"
	// KindUnavailable means the backend could not be reached or timed out.
	KindUnavailable Kind = "unavailable"
	// KindBadStatus means the backend answered with a non-2xx status.
	KindBadStatus Kind = "bad_status"
	// KindBadPayload means the backend's 2xx body failed to decode or
	// violated the response invariants.
	KindBadPayload Kind = "bad_payload"
)

// Error is the typed failure returned by every Client method.
type Error struct {
	Kind       Kind
	StatusCode int
	msg        string
	cause      error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("analysis backend: %s: %v", e.msg, e.cause)
	}
	return "analysis backend: " + e.msg
}

func (e *Error) Unwrap() error { return e.cause }

func newError(kind Kind, status int, msg string, cause error) *Error {
	return &Error{Kind: kind, StatusCode: status, msg: msg, cause: cause}
}

// IsNotFound reports whether err carries the backend's not-found signal.
func IsNotFound(err error) bool {
	var be *Error
	return errors.As(err, &be) && be.Kind == KindNotFound
}

// KindOf extracts the failure kind; unrecognized errors count as unavailable
// so operators never see an empty error_type.
func KindOf(err error) Kind {
	var be *Error
	if errors.As(err, &be) {
		return be.Kind
	}
	return KindUnavailable
}
