package domain

import (
	"errors"
	"net/http"
)

// ErrorCode classifies an AppError. Each code has a fixed HTTP status.
type ErrorCode int

const (
	CodeNotFound ErrorCode = iota + 1
	CodeConflict
	CodeValidation
	CodeInternal
	CodeUnauthorized
	CodeForbidden
)

var codeInfo = map[ErrorCode]struct {
	status int
	name   string
}{
	CodeNotFound:     {http.StatusNotFound, "not found"},
	CodeConflict:     {http.StatusConflict, "conflict"},
	CodeValidation:   {http.StatusBadRequest, "validation error"},
	CodeInternal:     {http.StatusInternalServerError, "internal error"},
	CodeUnauthorized: {http.StatusUnauthorized, "unauthorized"},
	CodeForbidden:    {http.StatusForbidden, "forbidden"},
}

func (c ErrorCode) String() string {
	if info, ok := codeInfo[c]; ok {
		return info.name
	}
	return "unknown error"
}

// Status is the HTTP status a code is served with. Unknown codes are 500.
func (c ErrorCode) Status() int {
	if info, ok := codeInfo[c]; ok {
		return info.status
	}
	return http.StatusInternalServerError
}

// AppError is a failure raised by the fixture data source or the HTTP layer
// itself, as opposed to a FetchError from the remote admin backend.
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
}

func (e *AppError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.Code.String()
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *AppError) Unwrap() error { return e.Err }

// Is matches any AppError target with the same code, so
// errors.Is(err, ErrNotFound) holds for every not-found AppError.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	return ok && t.Code == e.Code
}

var (
	ErrNotFound     = &AppError{Code: CodeNotFound, Message: "not found"}
	ErrUnauthorized = &AppError{Code: CodeUnauthorized, Message: "unauthorized"}
)

// NewAppError returns an AppError. err may be nil.
func NewAppError(code ErrorCode, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// IsNotFound reports whether err is a not-found AppError or a FetchError of
// kind KindNotFound.
func IsNotFound(err error) bool {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.Kind == KindNotFound
	}
	return codeOf(err) == CodeNotFound
}

func IsConflict(err error) bool     { return codeOf(err) == CodeConflict }
func IsValidation(err error) bool   { return codeOf(err) == CodeValidation }
func IsUnauthorized(err error) bool { return codeOf(err) == CodeUnauthorized }

// codeOf returns the code of the outermost AppError in err's chain, or 0.
func codeOf(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return 0
}

// HTTPStatusCode is the status err is served with. A FetchError keeps the
// status the backend answered with, an AppError uses its code, and anything
// else (nil included) is 500.
func HTTPStatusCode(err error) int {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.HTTPStatus()
	}
	if code := codeOf(err); code != 0 {
		return code.Status()
	}
	return http.StatusInternalServerError
}
