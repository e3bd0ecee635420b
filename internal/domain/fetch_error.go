package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// FetchErrorKind classifies why a call against the admin backend failed.
type FetchErrorKind int

const (
	// KindUnauthenticated means no token was available; no request was sent.
	KindUnauthenticated FetchErrorKind = iota + 1
	// KindHTTP means the backend answered with a non-2xx status.
	KindHTTP
	// KindRejected means a 2xx response carried a false success flag.
	KindRejected
	// KindNetwork means the backend could not be reached.
	KindNetwork
	// KindNotFound means a detail lookup did not resolve.
	KindNotFound
)

func (k FetchErrorKind) String() string {
	switch k {
	case KindUnauthenticated:
		return "unauthenticated"
	case KindHTTP:
		return "http"
	case KindRejected:
		return "rejected"
	case KindNetwork:
		return "network"
	case KindNotFound:
		return "not_found"
	default:
		return "unknown"
	}
}

// FetchError is the error returned by every backend call.
type FetchError struct {
	Kind       FetchErrorKind
	Status     int
	StatusText string
	Message    string
	Err        error
}

// Error implements the error interface.
func (e *FetchError) Error() string {
	var msg string
	switch e.Kind {
	case KindUnauthenticated:
		msg = "unauthenticated"
	case KindHTTP:
		msg = fmt.Sprintf("http %d %s", e.Status, e.StatusText)
	case KindRejected:
		msg = "rejected"
		if e.Message != "" {
			msg += ": " + e.Message
		}
	case KindNetwork:
		msg = "network failure"
	case KindNotFound:
		msg = "not found"
	default:
		msg = "fetch error"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the wrapped error.
func (e *FetchError) Unwrap() error {
	return e.Err
}

// ClearsSession reports whether the error invalidates the stored credentials:
// a missing token, or a 401/403 from the backend.
func (e *FetchError) ClearsSession() bool {
	switch e.Kind {
	case KindUnauthenticated:
		return true
	case KindHTTP:
		return e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden
	}
	return false
}

// HTTPStatus is the status a proxy should answer with when relaying this error.
func (e *FetchError) HTTPStatus() int {
	switch e.Kind {
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindHTTP, KindRejected:
		if e.Status > 0 {
			return e.Status
		}
		if e.Kind == KindRejected {
			return http.StatusOK
		}
		return http.StatusBadGateway
	case KindNetwork:
		return http.StatusBadGateway
	case KindNotFound:
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

// ErrUnauthenticated is returned when a call is attempted without a token.
var ErrUnauthenticated = &FetchError{Kind: KindUnauthenticated}

// NewHTTPError builds a KindHTTP FetchError. An empty statusText is filled
// from net/http.
func NewHTTPError(status int, statusText string) *FetchError {
	if statusText == "" {
		statusText = http.StatusText(status)
	}
	return &FetchError{Kind: KindHTTP, Status: status, StatusText: statusText}
}

// NewRejectedError builds a KindRejected FetchError.
func NewRejectedError(status int, message string) *FetchError {
	return &FetchError{Kind: KindRejected, Status: status, Message: message}
}

// NewNetworkError builds a KindNetwork FetchError wrapping err.
func NewNetworkError(err error) *FetchError {
	return &FetchError{Kind: KindNetwork, Err: err}
}

// NewNotFoundError builds a KindNotFound FetchError.
func NewNotFoundError(message string) *FetchError {
	return &FetchError{Kind: KindNotFound, Status: http.StatusNotFound, Message: message}
}

// ClearsSession reports whether err is a FetchError that invalidates the session.
func ClearsSession(err error) bool {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.ClearsSession()
	}
	return false
}

// FetchKind returns the kind of a FetchError in err's chain, or 0.
func FetchKind(err error) FetchErrorKind {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return 0
}
