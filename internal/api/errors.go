package api

import (
	"errors"
	"fmt"
)

// Kind classifies a request failure.
type Kind int

const (
	// KindUnknown covers transport failures, malformed responses, and any
	// status outside the other classes.
	KindUnknown Kind = iota

	// KindUnauthorized is an HTTP 401: bad credentials or an expired token.
	KindUnauthorized

	// KindServer is any HTTP 5xx.
	KindServer
)

// String returns a short label for the kind.
func (k Kind) String() string {
	switch k {
	case KindUnauthorized:
		return "unauthorized"
	case KindServer:
		return "server error"
	default:
		return "unknown error"
	}
}

// Error is the typed failure returned by every Client call. Network
// failures, non-2xx statuses, and malformed bodies all surface as an
// *Error rather than being thrown away.
type Error struct {
	Kind    Kind
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("%s (%d): %s", e.Kind, e.Status, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Classify returns the Kind of err, or KindUnknown if err is not an
// *Error from this package.
func Classify(err error) Kind {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return KindUnknown
}

// IsUnauthorized reports whether err (or any error in its chain) is an
// HTTP 401 failure.
func IsUnauthorized(err error) bool {
	return Classify(err) == KindUnauthorized
}
