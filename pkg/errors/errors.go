package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorType represents the category of a domain error
type ErrorType string

const (
	// DataIntegrityError indicates empty or malformed static network data
	DataIntegrityError ErrorType = "DATA_INTEGRITY_ERROR"

	// NoPathError indicates the query endpoints are not mutually reachable
	NoPathError ErrorType = "NO_PATH"

	// InvalidFeedbackError indicates a rejected feedback submission
	InvalidFeedbackError ErrorType = "INVALID_FEEDBACK"

	// ValidationError indicates malformed request input
	ValidationError ErrorType = "VALIDATION_ERROR"

	// NotFoundError indicates a missing resource
	NotFoundError ErrorType = "NOT_FOUND"

	// ConflictError indicates an operation on a resource in the wrong state
	ConflictError ErrorType = "CONFLICT"

	// UnauthorizedError indicates missing or invalid credentials
	UnauthorizedError ErrorType = "UNAUTHORIZED"
)

// DomainError is a classified error carried across the query boundary
type DomainError struct {
	Type    ErrorType              `json:"type"`
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
	Cause   error                  `json:"-"`
}

// New creates a new domain error
func New(errorType ErrorType, code, message string) *DomainError {
	return &DomainError{
		Type:    errorType,
		Code:    code,
		Message: message,
	}
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s:%s] %s: %v", e.Type, e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s:%s] %s", e.Type, e.Code, e.Message)
}

// Is matches domain errors by type and code, so derived errors match their sentinel
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Type == t.Type && e.Code == t.Code
}

// Unwrap returns the underlying cause
func (e *DomainError) Unwrap() error {
	return e.Cause
}

// WithCause returns a copy of the error carrying cause
func (e *DomainError) WithCause(cause error) *DomainError {
	c := e.clone()
	c.Cause = cause
	return c
}

// WithDetail returns a copy of the error with an extra detail
func (e *DomainError) WithDetail(key string, value interface{}) *DomainError {
	c := e.clone()
	c.Details[key] = value
	return c
}

// WithMessage returns a copy of the error with a more specific message
func (e *DomainError) WithMessage(format string, args ...interface{}) *DomainError {
	c := e.clone()
	c.Message = fmt.Sprintf(format, args...)
	return c
}

// clone copies the error so shared sentinels are never mutated
func (e *DomainError) clone() *DomainError {
	c := *e
	c.Details = make(map[string]interface{}, len(e.Details)+1)
	for k, v := range e.Details {
		c.Details[k] = v
	}
	return &c
}

// StatusCode maps the error type to an HTTP status code
func (e *DomainError) StatusCode() int {
	switch e.Type {
	case ValidationError, InvalidFeedbackError:
		return http.StatusBadRequest
	case UnauthorizedError:
		return http.StatusUnauthorized
	case NotFoundError:
		return http.StatusNotFound
	case ConflictError:
		return http.StatusConflict
	case NoPathError:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

var (
	ErrEmptySegmentSet  = New(DataIntegrityError, "EMPTY_SEGMENT_SET", "segment set is empty")
	ErrMalformedSegment = New(DataIntegrityError, "MALFORMED_SEGMENT", "segment record is malformed")
	ErrDuplicateSegment = New(DataIntegrityError, "DUPLICATE_SEGMENT", "segment id is not unique")
	ErrMissingNode      = New(DataIntegrityError, "MISSING_NODE", "node has no known coordinate")

	ErrNoPath = New(NoPathError, "NO_PATH", "no path between the requested endpoints")

	ErrInvalidRating      = New(InvalidFeedbackError, "INVALID_RATING", "rating must be an integer between 1 and 5")
	ErrInvalidTrustWeight = New(InvalidFeedbackError, "INVALID_TRUST_WEIGHT", "trust weight must be a number between 0 and 10")
	ErrFutureTimestamp    = New(InvalidFeedbackError, "FUTURE_TIMESTAMP", "feedback timestamp is in the future")
	ErrUnknownSegment     = New(InvalidFeedbackError, "UNKNOWN_SEGMENT", "feedback references an unknown segment")

	ErrInvalidInput     = New(ValidationError, "INVALID_INPUT", "invalid request input")
	ErrPointUnmatchable = New(ValidationError, "POINT_UNMATCHABLE", "point cannot be matched to any segment")
	ErrSegmentNotFound  = New(NotFoundError, "SEGMENT_NOT_FOUND", "segment not found")
	ErrSessionNotFound  = New(NotFoundError, "TRIP_NOT_FOUND", "trip session not found")
	ErrTripEnded        = New(ConflictError, "TRIP_ENDED", "trip has already ended")
	ErrTooManyTrips     = New(ConflictError, "TOO_MANY_TRIPS", "too many active trip sessions")
	ErrUnauthorized     = New(UnauthorizedError, "UNAUTHORIZED", "missing or invalid credentials")
)

// IsDataIntegrity reports whether err is a data-integrity failure
func IsDataIntegrity(err error) bool {
	var de *DomainError
	return errors.As(err, &de) && de.Type == DataIntegrityError
}

// AsDomain extracts a domain error from an error chain
func AsDomain(err error) (*DomainError, bool) {
	var de *DomainError
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

// IsNoPath reports whether err is a no-path failure
func IsNoPath(err error) bool {
	return errors.Is(err, ErrNoPath)
}
