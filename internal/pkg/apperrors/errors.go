package apperrors

import "errors"

// Workflow errors. Every error crossing the service boundary wraps one of
// these sentinels so the HTTP layer can map it without string matching.
var (
	// Authorization errors
	ErrPermissionDenied = errors.New("permission denied")

	// Workflow errors
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrConflict          = errors.New("conflict")
	ErrTransitionFailed  = errors.New("transition failed")

	// Validation errors
	ErrValidationFailed = errors.New("validation failed")
	ErrBadRequest       = errors.New("bad request")

	// Resource errors
	ErrResourceNotFound = errors.New("resource not found")
	ErrCourseNotFound   = errors.New("course not found")
	ErrUserNotFound     = errors.New("user not found")

	// Repository errors
	ErrRepository        = errors.New("repository error")
	ErrRepositoryTimeout = errors.New("repository timeout")
	ErrStaleWrite        = errors.New("stale write rejected")
)

// Authentication errors
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenInvalid       = errors.New("invalid token")
	ErrTokenNotFound      = errors.New("token not found")
	ErrEmailAlreadyExists = errors.New("email already exists")
	ErrAccountDisabled    = errors.New("account is disabled")
)

// Conflict sub-reasons for self-assignment (stable codes so the UI can render a
// targeted message per case instead of matching on error strings).
const (
	ConflictAlreadyAssigned    = "ALREADY_ASSIGNED"
	ConflictPreviouslyRejected = "PREVIOUSLY_REJECTED"
	ConflictPendingElsewhere   = "PENDING_ELSEWHERE"
	ConflictCourseImmutable    = "COURSE_IMMUTABLE"
)

// CustomError carries structured context alongside a sentinel error.
type CustomError struct {
	Err      error
	Message  string
	Code     string
	Field    string
	CourseID int64
	Details  map[string]interface{}
}

// Error implements the error interface
func (e *CustomError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

// Unwrap implements errors.Unwrap
func (e *CustomError) Unwrap() error {
	return e.Err
}

// WithCourse attaches the offending course id
func (e *CustomError) WithCourse(id int64) *CustomError {
	e.CourseID = id
	return e
}

// WithField attaches the offending field name
func (e *CustomError) WithField(field string) *CustomError {
	e.Field = field
	return e
}

// WithDetails attaches freeform context
func (e *CustomError) WithDetails(details map[string]interface{}) *CustomError {
	e.Details = details
	return e
}

// NewPermissionDeniedError creates a permission error with a message
func NewPermissionDeniedError(message string) *CustomError {
	return &CustomError{Err: ErrPermissionDenied, Message: message}
}

// NewInvalidTransitionError creates an invalid-transition error with a message
func NewInvalidTransitionError(message string) *CustomError {
	return &CustomError{Err: ErrInvalidTransition, Message: message}
}

// NewConflictError creates a conflict error with a sub-reason code
func NewConflictError(code, message string) *CustomError {
	return &CustomError{Err: ErrConflict, Code: code, Message: message}
}

// NewValidationError creates a validation error for a specific field
func NewValidationError(field, message string) *CustomError {
	return &CustomError{Err: ErrValidationFailed, Field: field, Message: message}
}

// NewNotFoundError creates a resource-not-found error with a message
func NewNotFoundError(message string) *CustomError {
	return &CustomError{Err: ErrResourceNotFound, Message: message}
}

// ConflictCode extracts the conflict sub-reason from an error chain, if any.
func ConflictCode(err error) string {
	var ce *CustomError
	if errors.As(err, &ce) {
		return ce.Code
	}
	return ""
}
