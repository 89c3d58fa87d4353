package errors

import "net/http"

// ErrorCode represents the type of error
type ErrorCode string

const (
	ErrNotFound      ErrorCode = "NOT_FOUND"
	ErrConflict      ErrorCode = "CONFLICT"
	ErrValidation    ErrorCode = "VALIDATION_ERROR"
	ErrBadRequest    ErrorCode = "BAD_REQUEST"
	ErrInternalError ErrorCode = "INTERNAL_ERROR"
	ErrRateLimited   ErrorCode = "RATE_LIMITED"
)

// StatusCodeMap maps ErrorCode to HTTP status code
var StatusCodeMap = map[ErrorCode]int{
	ErrNotFound:      http.StatusNotFound,
	ErrConflict:      http.StatusConflict,
	ErrValidation:    http.StatusBadRequest,
	ErrBadRequest:    http.StatusBadRequest,
	ErrInternalError: http.StatusInternalServerError,
	ErrRateLimited:   http.StatusTooManyRequests,
}

// StatusCode returns the HTTP status code for this error code
func (e ErrorCode) StatusCode() int {
	if code, ok := StatusCodeMap[e]; ok {
		return code
	}
	return http.StatusInternalServerError
}
