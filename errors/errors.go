package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// Standard error codes
const (
	ErrInvalidRequest      = 400
	ErrUnauthorized        = 401
	ErrNotFound            = 404
	ErrInternalServerError = 500
	ErrServiceUnavailable  = 503

	// Shop-specific error codes (1000+)
	ErrInvalidAmount      = 1001
	ErrUnknownSkill       = 1002
	ErrUnknownPlayer      = 1003
	ErrBalanceUnavailable = 1004
	ErrInsufficientFunds  = 1005
	ErrPaymentFailed      = 1006
	ErrRemoteUnavailable  = 1007
	ErrCompensationFailed = 1008
)

// AppError represents a custom application error
type AppError struct {
	Code         int    `json:"code"`
	Message      string `json:"message"`
	DebugMessage string `json:"debug_message,omitempty"`
	Err          error  `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.DebugMessage != "" {
		return fmt.Sprintf("[%d] %s: %s", e.Code, e.Message, e.DebugMessage)
	}
	if e.Err != nil {
		return fmt.Sprintf("[%d] %s [%v]", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// Unwrap returns the wrapped error
func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError
func New(code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// NewWithDebug creates a new AppError with a debug message
func NewWithDebug(code int, message string, debugMessage string) *AppError {
	return &AppError{
		Code:         code,
		Message:      message,
		DebugMessage: debugMessage,
	}
}

// Wrap wraps an existing error into an AppError
func Wrap(err error, code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Response returns a map suitable for JSON response.
// The debug message is included only when includeDebug is set.
func (e *AppError) Response(includeDebug bool) map[string]interface{} {
	response := map[string]interface{}{
		"error": PublicMessage(e),
		"code":  e.Code,
	}

	if includeDebug && e.DebugMessage != "" {
		response["debug_message"] = e.DebugMessage
	}

	return response
}

// As returns the first AppError in err's chain
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// GetCode extracts error code from an error
func GetCode(err error) int {
	if appErr, ok := As(err); ok {
		return appErr.Code
	}
	return ErrInternalServerError
}

// Is reports whether err carries the given code
func Is(err error, code int) bool {
	return err != nil && GetCode(err) == code
}

// PublicMessage returns the message shown to callers.
// A failed compensation is reported as a generic internal error.
func PublicMessage(err error) string {
	appErr, ok := As(err)
	if !ok {
		return "Internal server error"
	}
	if appErr.Code == ErrCompensationFailed {
		return "Internal server error"
	}
	return appErr.Message
}

// HTTPStatusFromCode maps error codes to HTTP status codes
func HTTPStatusFromCode(code int) int {
	switch code {
	case ErrInvalidRequest, ErrInvalidAmount, ErrUnknownSkill, ErrInsufficientFunds:
		return http.StatusBadRequest
	case ErrUnauthorized:
		return http.StatusUnauthorized
	case ErrPaymentFailed:
		return http.StatusPaymentRequired
	case ErrNotFound, ErrUnknownPlayer:
		return http.StatusNotFound
	case ErrBalanceUnavailable:
		return http.StatusBadGateway
	case ErrServiceUnavailable, ErrRemoteUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
