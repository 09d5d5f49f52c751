package errors

import (
	"encoding/json"
	"errors"
	"maps"
	"net/http"
	"runtime/debug"
	"slices"
	"strconv"
	"time"
)

// ErrorType represents different types of errors
type ErrorType string

const (
	ErrorTypeValidation     ErrorType = "validation_error"
	ErrorTypeAuthentication ErrorType = "authentication_error"
	ErrorTypeNotFound       ErrorType = "not_found_error"
	ErrorTypeConflict       ErrorType = "conflict_error"
	ErrorTypeCircuitOpen    ErrorType = "circuit_open_error"
	ErrorTypeNetwork        ErrorType = "network_error"
	ErrorTypeApplication    ErrorType = "application_error"
)

// Default messages
const (
	MsgUnauthorized = "You are not authorized to perform this action"
	MsgNotFound     = "Resource not found"
	MsgConflict     = "Resource already exists"
	MsgInternal     = "An unexpected error occurred"
	MsgValidation   = "Please check your input and try again"
	MsgCircuitOpen  = "Circuit breaker is open - service temporarily unavailable"
	MsgUnknown      = "An unknown error occurred"
)

// FieldError describes one invalid input field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Value   any    `json:"value,omitempty"`
}

// AppError is the application error type. Its values never change after
// construction; enrichment produces a new error.
type AppError struct {
	errType     ErrorType
	message     string
	statusCode  int
	operational bool
	details     map[string]any
	fields      []FieldError
	cause       error
	stack       string
}

// Error implements the error interface
func (e *AppError) Error() string {
	return e.message
}

// Unwrap exposes the wrapped cause, if any
func (e *AppError) Unwrap() error {
	return e.cause
}

// StackTrace returns the stack captured when the error was created
func (e *AppError) StackTrace() string {
	return e.stack
}

func (e *AppError) Type() ErrorType     { return e.errType }
func (e *AppError) Message() string     { return e.message }
func (e *AppError) StatusCode() int     { return e.statusCode }
func (e *AppError) IsOperational() bool { return e.operational }

// Details returns a copy of the detail bag
func (e *AppError) Details() map[string]any {
	return maps.Clone(e.details)
}

// ValidationErrors returns a copy of the field errors in their original order
func (e *AppError) ValidationErrors() []FieldError {
	return slices.Clone(e.fields)
}

func newAppError(errType ErrorType, message string, statusCode int, operational bool, details map[string]any) *AppError {
	if statusCode == 0 {
		statusCode = http.StatusInternalServerError
	}
	return &AppError{
		errType:     errType,
		message:     message,
		statusCode:  statusCode,
		operational: operational,
		details:     maps.Clone(details),
		stack:       message + "\n" + string(debug.Stack()),
	}
}

// New creates a generic application error. A zero status code means 500.
func New(message string, statusCode int, operational bool, details map[string]any) *AppError {
	return newAppError(ErrorTypeApplication, message, statusCode, operational, details)
}

// NewValidationError creates a validation error carrying the field errors.
// A zero status code means 400.
func NewValidationError(message string, fields []FieldError, statusCode int) *AppError {
	if statusCode == 0 {
		statusCode = http.StatusBadRequest
	}
	if message == "" {
		message = MsgValidation
	}
	if fields == nil {
		fields = []FieldError{}
	}
	fields = slices.Clone(fields)
	e := newAppError(ErrorTypeValidation, message, statusCode, true, map[string]any{"validationErrors": fields})
	e.fields = fields
	return e
}

// NewAuthenticationError creates a 401 error
func NewAuthenticationError(message string) *AppError {
	if message == "" {
		message = MsgUnauthorized
	}
	return newAppError(ErrorTypeAuthentication, message, http.StatusUnauthorized, true, nil)
}

// NewNotFoundError creates a 404 error
func NewNotFoundError(message string) *AppError {
	if message == "" {
		message = MsgNotFound
	}
	return newAppError(ErrorTypeNotFound, message, http.StatusNotFound, true, nil)
}

// NewConflictError creates a 409 error
func NewConflictError(message string) *AppError {
	if message == "" {
		message = MsgConflict
	}
	return newAppError(ErrorTypeConflict, message, http.StatusConflict, true, nil)
}

// NewCircuitOpenError is returned when a call is refused because the
// endpoint's breaker is open
func NewCircuitOpenError(endpoint string, failures int) *AppError {
	return newAppError(ErrorTypeCircuitOpen, MsgCircuitOpen, http.StatusServiceUnavailable, true, map[string]any{
		"endpoint":            endpoint,
		"circuitBreakerState": "open",
		"failures":            failures,
	})
}

// NewNetworkError wraps a transport failure as a non-operational 500 error.
// errors.Is and errors.As still reach cause.
func NewNetworkError(cause error, details map[string]any) *AppError {
	if cause == nil {
		return newAppError(ErrorTypeNetwork, MsgUnknown, http.StatusInternalServerError, false, details)
	}

	merged := maps.Clone(details)
	if merged == nil {
		merged = make(map[string]any, 1)
	}
	merged["originalError"] = cause.Error()

	e := newAppError(ErrorTypeNetwork, cause.Error(), http.StatusInternalServerError, false, merged)
	e.cause = cause
	return e
}

// APIError is the wire shape of an error body
type APIError struct {
	Error            string         `json:"error"`
	Message          string         `json:"message"`
	StatusCode       int            `json:"statusCode"`
	Details          map[string]any `json:"details,omitempty"`
	Timestamp        string         `json:"timestamp"`
	Type             ErrorType      `json:"type,omitempty"`
	ValidationErrors []FieldError   `json:"validationErrors,omitempty"`
}

// UnmarshalJSON decodes an error body. A validationErrors key that is
// present decodes to a non-nil list even when its value is null.
func (e *APIError) UnmarshalJSON(data []byte) error {
	type plain APIError
	var decoded plain
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}
	if decoded.ValidationErrors == nil {
		var keys map[string]json.RawMessage
		if err := json.Unmarshal(data, &keys); err == nil {
			if _, ok := keys["validationErrors"]; ok {
				decoded.ValidationErrors = []FieldError{}
			}
		}
	}
	*e = APIError(decoded)
	return nil
}

// now is swapped in tests
var now = time.Now

func timestamp() string {
	return now().UTC().Format("2006-01-02T15:04:05.000Z07:00")
}

// CreateAPIError projects any error into the wire shape. It never fails:
// an AppError keeps its message, status and details; any other error
// becomes a 500 with its message; nil becomes a 500 with defaultMessage.
func CreateAPIError(err error, defaultMessage string) APIError {
	if defaultMessage == "" {
		defaultMessage = MsgInternal
	}

	var appErr *AppError
	switch {
	case errors.As(err, &appErr):
		return APIError{
			Error:            appErr.message,
			Message:          appErr.message,
			StatusCode:       appErr.statusCode,
			Details:          appErr.Details(),
			Timestamp:        timestamp(),
			Type:             appErr.errType,
			ValidationErrors: appErr.ValidationErrors(),
		}
	case err != nil:
		return APIError{
			Error:      err.Error(),
			Message:    err.Error(),
			StatusCode: http.StatusInternalServerError,
			Timestamp:  timestamp(),
		}
	default:
		return APIError{
			Error:      defaultMessage,
			Message:    defaultMessage,
			StatusCode: http.StatusInternalServerError,
			Timestamp:  timestamp(),
		}
	}
}

// FromResponse classifies a non-2xx answer. body may be nil when the server
// sent no parseable JSON. A 400 is a validation error when the body declares
// the validation type or carries a validationErrors list (even an empty one).
func FromResponse(status int, body *APIError, details map[string]any) *AppError {
	message := "HTTP " + strconv.Itoa(status)
	if body != nil {
		if body.Message != "" {
			message = body.Message
		} else if body.Error != "" {
			message = body.Error
		}
	}

	merged := maps.Clone(details)
	if merged == nil {
		merged = make(map[string]any, 1)
	}
	if body != nil {
		merged["responseData"] = *body
	}

	switch status {
	case http.StatusBadRequest:
		if body != nil && (body.Type == ErrorTypeValidation || body.ValidationErrors != nil) {
			return NewValidationError(message, body.ValidationErrors, status)
		}
		return New(message, status, true, merged)
	case http.StatusUnauthorized:
		return NewAuthenticationError(message)
	case http.StatusNotFound:
		return NewNotFoundError(message)
	case http.StatusConflict:
		return NewConflictError(message)
	case http.StatusUnprocessableEntity:
		var fields []FieldError
		if body != nil {
			fields = body.ValidationErrors
		}
		return NewValidationError(message, fields, status)
	default:
		return New(message, status, status < 500, merged)
	}
}

// Enhance attaches call context to err. An AppError is copied with details
// merged in (new keys win) and everything else unchanged. Any other error is
// wrapped with NewNetworkError.
func Enhance(err error, details map[string]any) error {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		enhanced := *appErr
		enhanced.details = maps.Clone(appErr.details)
		if enhanced.details == nil {
			enhanced.details = make(map[string]any, len(details))
		}
		maps.Copy(enhanced.details, details)
		enhanced.fields = slices.Clone(appErr.fields)
		return &enhanced
	}

	return NewNetworkError(err, details)
}

// AsAppError returns the AppError in err's chain
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	ok := errors.As(err, &appErr)
	return appErr, ok
}

// IsAppError reports whether err's chain holds an AppError
func IsAppError(err error) bool {
	_, ok := AsAppError(err)
	return ok
}

// IsValidationError reports whether err is a validation AppError
func IsValidationError(err error) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.errType == ErrorTypeValidation
}

// IsType reports whether err is an AppError of the given type
func IsType(err error, t ErrorType) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.errType == t
}

// Message extracts a displayable message from err
func Message(err error) string {
	if err == nil {
		return MsgInternal
	}
	if appErr, ok := AsAppError(err); ok {
		return appErr.message
	}
	return err.Error()
}

// StatusCode returns the HTTP status carried by err, 500 for anything else
func StatusCode(err error) int {
	if appErr, ok := AsAppError(err); ok {
		return appErr.statusCode
	}
	return http.StatusInternalServerError
}
