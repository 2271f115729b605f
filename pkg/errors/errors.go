package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Error codes
const (
	CodeValidation        = "VALIDATION_ERROR"
	CodeNotFound          = "NOT_FOUND"
	CodeConflict          = "CONFLICT"
	CodeIllegalTransition = "ILLEGAL_TRANSITION"
	CodeUnavailable       = "STORE_UNAVAILABLE"
	CodeInternal          = "INTERNAL_ERROR"
	CodeUnauthorized      = "UNAUTHORIZED"
	CodeForbidden         = "FORBIDDEN"
)

// AppError represents an application error.
//
// Reason narrows Code down to a machine readable cause, e.g. a coupon
// rejected with CodeValidation carries Reason "EXPIRED".
type AppError struct {
	Code    string      `json:"code"`
	Reason  string      `json:"reason,omitempty"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
	Err     error       `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	code := e.Code
	if e.Reason != "" {
		code = e.Code + "/" + e.Reason
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", code, e.Message)
}

// Unwrap returns the wrapped error
func (e *AppError) Unwrap() error {
	return e.Err
}

// WithReason returns a copy of the error carrying the given reason
func (e *AppError) WithReason(reason string) *AppError {
	cp := *e
	cp.Reason = reason
	return &cp
}

// WithDetails returns a copy of the error carrying the given details
func (e *AppError) WithDetails(details interface{}) *AppError {
	cp := *e
	cp.Details = details
	return &cp
}

// ErrorResponse is the JSON response structure for errors
type ErrorResponse struct {
	Error   ErrorBody `json:"error"`
	TraceID string    `json:"trace_id,omitempty"`
}

// ErrorBody contains error details
type ErrorBody struct {
	Code    string      `json:"code"`
	Reason  string      `json:"reason,omitempty"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// ToJSON converts an error to the standard JSON response
func ToJSON(err error, traceID string) (int, []byte) {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		appErr = &AppError{
			Code:    CodeInternal,
			Message: "An internal error occurred",
		}
	}

	response := ErrorResponse{
		Error: ErrorBody{
			Code:    appErr.Code,
			Reason:  appErr.Reason,
			Message: appErr.Message,
			Details: appErr.Details,
		},
		TraceID: traceID,
	}

	data, _ := json.Marshal(response)
	return HTTPStatus(appErr), data
}

// transport maps each code onto its HTTP status and gRPC code
var transport = map[string]struct {
	http int
	grpc codes.Code
}{
	CodeValidation:        {http.StatusBadRequest, codes.InvalidArgument},
	CodeNotFound:          {http.StatusNotFound, codes.NotFound},
	CodeConflict:          {http.StatusConflict, codes.AlreadyExists},
	CodeIllegalTransition: {http.StatusConflict, codes.FailedPrecondition},
	CodeUnavailable:       {http.StatusServiceUnavailable, codes.Unavailable},
	CodeUnauthorized:      {http.StatusUnauthorized, codes.Unauthenticated},
	CodeForbidden:         {http.StatusForbidden, codes.PermissionDenied},
	CodeInternal:          {http.StatusInternalServerError, codes.Internal},
}

// HTTPStatus returns the HTTP status code for an error
func HTTPStatus(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		if t, ok := transport[appErr.Code]; ok {
			return t.http
		}
	}
	return http.StatusInternalServerError
}

// GRPCStatus converts an error to a gRPC status. Plain gRPC status errors
// pass through unchanged.
func GRPCStatus(err error) error {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		if _, ok := status.FromError(err); ok {
			return err
		}
		return status.Error(codes.Internal, "internal error")
	}

	code := codes.Internal
	if t, ok := transport[appErr.Code]; ok {
		code = t.grpc
	}
	return status.Error(code, appErr.Message)
}

// FromGRPCStatus converts a gRPC status to an AppError. Deadlines and
// cancellations count as an unavailable store.
func FromGRPCStatus(err error) *AppError {
	st, ok := status.FromError(err)
	if !ok {
		return NewInternal("unknown error", err)
	}

	code := CodeInternal
	switch st.Code() {
	case codes.DeadlineExceeded, codes.Canceled:
		code = CodeUnavailable
	default:
		for c, t := range transport {
			if t.grpc == st.Code() {
				code = c
				break
			}
		}
	}

	return &AppError{Code: code, Message: st.Message(), Err: err}
}

func newError(code, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// NewValidation creates a validation error
func NewValidation(message string, details interface{}) *AppError {
	return newError(CodeValidation, message).WithDetails(details)
}

// NewNotFound creates a not found error
func NewNotFound(resource string, id interface{}) *AppError {
	return newError(CodeNotFound, fmt.Sprintf("%s with id '%v' not found", resource, id))
}

// NewConflict creates a conflict error
func NewConflict(message string) *AppError {
	return newError(CodeConflict, message)
}

// NewIllegalTransition creates an error for a state change the current
// state does not allow
func NewIllegalTransition(reason, message string) *AppError {
	return newError(CodeIllegalTransition, message).WithReason(reason)
}

// NewUnavailable creates an error for a backing store that could not be reached
func NewUnavailable(message string, err error) *AppError {
	e := newError(CodeUnavailable, message)
	e.Err = err
	return e
}

// NewInternal creates an internal error
func NewInternal(message string, err error) *AppError {
	e := newError(CodeInternal, message)
	e.Err = err
	return e
}

// NewUnauthorized creates an unauthorized error
func NewUnauthorized(message string) *AppError {
	return newError(CodeUnauthorized, message)
}

// NewForbidden creates a forbidden error
func NewForbidden(message string) *AppError {
	return newError(CodeForbidden, message)
}

// Is checks if an error matches a specific code
func Is(err error, code string) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// HasReason checks if an error carries a specific reason
func HasReason(err error, reason string) bool {
	return ReasonOf(err) == reason
}

// ReasonOf returns the reason of an AppError, or "" for any other error
func ReasonOf(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Reason
	}
	return ""
}

// Wrap wraps an error with additional context
func Wrap(err error, message string) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return &AppError{
			Code:    appErr.Code,
			Reason:  appErr.Reason,
			Message: message + ": " + appErr.Message,
			Details: appErr.Details,
			Err:     err,
		}
	}
	return NewInternal(message, err)
}
