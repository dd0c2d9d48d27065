package errors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

const (
	CodeBadRequest          = "BAD_REQUEST"
	CodeValidation          = "VALIDATION_ERROR"
	CodeParticipantNotFound = "PARTICIPANT_NOT_FOUND"
	CodeUnauthorized        = "UNAUTHORIZED"
	CodeForbidden           = "FORBIDDEN"
	CodeNotFound            = "NOT_FOUND"
	CodeConflict            = "CONFLICT"
	CodeInvalidState        = "INVALID_STATE"
	CodeNoOp                = "NO_OP"
	CodeTooManyRequests     = "TOO_MANY_REQUESTS"
	CodeUpstreamFailure     = "UPSTREAM_FAILURE"
	CodeUpstreamTimeout     = "UPSTREAM_TIMEOUT"
	CodeInternal            = "INTERNAL_SERVER_ERROR"
)

type AppError struct {
	Code    string
	Message string
	Status  int
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(code string, message string, status int, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Status:  status,
		Err:     err,
	}
}

func NotFound(resource string, err error) *AppError {
	return New(CodeNotFound, fmt.Sprintf("%s not found", resource), http.StatusNotFound, err)
}

func BadRequest(message string, err error) *AppError {
	return New(CodeBadRequest, message, http.StatusBadRequest, err)
}

func Validation(message string) *AppError {
	return New(CodeValidation, message, http.StatusBadRequest, nil)
}

func ParticipantNotFound(message string) *AppError {
	return New(CodeParticipantNotFound, message, http.StatusBadRequest, nil)
}

func Unauthorized(message string, err error) *AppError {
	return New(CodeUnauthorized, message, http.StatusUnauthorized, err)
}

func Forbidden(message string, err error) *AppError {
	return New(CodeForbidden, message, http.StatusForbidden, err)
}

func Conflict(message string) *AppError {
	return New(CodeConflict, message, http.StatusConflict, nil)
}

// InvalidState reports a lifecycle transition the current state does not allow.
func InvalidState(message string) *AppError {
	return New(CodeInvalidState, message, http.StatusConflict, nil)
}

// NoOp reports that nothing matched the requested change. Callers treat it as non-fatal.
func NoOp(message string) *AppError {
	return New(CodeNoOp, message, http.StatusConflict, nil)
}

func TooManyRequests(message string) *AppError {
	return New(CodeTooManyRequests, message, http.StatusTooManyRequests, nil)
}

func Upstream(message string, err error) *AppError {
	return New(CodeUpstreamFailure, message, http.StatusInternalServerError, err)
}

func UpstreamTimeout(message string, err error) *AppError {
	return New(CodeUpstreamTimeout, message, http.StatusGatewayTimeout, err)
}

func Internal(message string, err error) *AppError {
	return New(CodeInternal, message, http.StatusInternalServerError, err)
}

// FromUpstream classifies an error returned by an external dependency.
// Deadline errors become UpstreamTimeout, existing AppErrors pass through unchanged.
func FromUpstream(message string, err error) *AppError {
	if err == nil {
		return nil
	}
	if appErr, ok := As(err); ok {
		return appErr
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return UpstreamTimeout(message+": timed out", err)
	}
	return Upstream(message, err)
}

func As(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

func Is(err error, code string) bool {
	if appErr, ok := As(err); ok {
		return appErr.Code == code
	}
	return false
}
