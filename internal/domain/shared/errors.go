// Package shared contains common domain types, errors, events, and value objects
// that are used across all domain packages. This package has zero external dependencies.
package shared

import (
	"errors"
	"fmt"
)

// Base domain errors that can be used for error checking with errors.Is().
var (
	// Entity errors
	ErrNotFound      = errors.New("entity not found")
	ErrAlreadyExists = errors.New("entity already exists")
	ErrInvalidEntity = errors.New("invalid entity")

	// Validation errors
	ErrValidation      = errors.New("validation error")
	ErrInvalidID       = errors.New("invalid ID")
	ErrInvalidInput    = errors.New("invalid input")
	ErrEmptyValue      = errors.New("value cannot be empty")
	ErrValueOutOfRange = errors.New("value out of range")
	ErrInvalidFormat   = errors.New("invalid format")

	// State errors
	ErrInvalidState     = errors.New("invalid state")
	ErrStateTransition  = errors.New("invalid state transition")
	ErrAlreadyProcessed = errors.New("already processed")

	// Authorization errors
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")

	// Concurrency errors
	ErrConcurrentModification = errors.New("concurrent modification detected")

	// External service errors
	ErrExternalService    = errors.New("external service error")
	ErrServiceUnavailable = errors.New("service unavailable")
	ErrTimeout            = errors.New("operation timeout")
	ErrRateLimited        = errors.New("rate limited")
)

// DomainError represents a domain-specific error with context.
type DomainError struct {
	Domain  string // e.g., "directory", "registration", "academic"
	Op      string // Operation that failed, e.g., "Create", "Update"
	Kind    error  // Base error type for errors.Is() checking
	Message string // Human-readable message
	Err     error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s.%s: %s: %v", e.Domain, e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s.%s: %s", e.Domain, e.Op, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap().
func (e *DomainError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return e.Kind
}

// Is implements errors.Is() matching.
func (e *DomainError) Is(target error) bool {
	if e.Kind != nil && errors.Is(e.Kind, target) {
		return true
	}
	if e.Err != nil && errors.Is(e.Err, target) {
		return true
	}
	return false
}

// NewDomainError creates a new domain error.
func NewDomainError(domain, op string, kind error, message string) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
	}
}

// WrapError wraps an existing error with domain context.
func WrapError(domain, op string, kind error, message string, err error) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
		Err:     err,
	}
}

// Directory domain errors
var (
	ErrStudentNotFound      = NewDomainError("directory", "FindStudent", ErrNotFound, "student not found")
	ErrTeacherNotFound      = NewDomainError("directory", "FindTeacher", ErrNotFound, "teacher not found")
	ErrStudentAlreadyExists = NewDomainError("directory", "AddStudent", ErrAlreadyExists, "student already exists")
	ErrTeacherAlreadyExists = NewDomainError("directory", "AddTeacher", ErrAlreadyExists, "teacher already exists")
	ErrUsernameTaken        = NewDomainError("directory", "Register", ErrAlreadyExists, "username is already taken")
	ErrInvalidCredentials   = NewDomainError("directory", "Authenticate", ErrUnauthorized, "invalid username or password")
	ErrInvalidRole          = NewDomainError("directory", "Validate", ErrInvalidInput, "invalid role")
	ErrMissingRequiredField = NewDomainError("directory", "Validate", ErrEmptyValue, "name, email and course or department are required")
	ErrInvalidSemester      = NewDomainError("directory", "Validate", ErrValueOutOfRange, "semester must be between 1 and 8")
	ErrIDSpaceExhausted     = NewDomainError("directory", "NewID", ErrInvalidState, "no free identifiers left")
	ErrNotificationNotFound = NewDomainError("directory", "MarkRead", ErrNotFound, "notification not found")
	ErrStudentNotAssigned   = NewDomainError("directory", "CheckAssignment", ErrForbidden, "student is not assigned to this teacher")
)

// Registration domain errors
var (
	ErrRegistrationNotFound   = NewDomainError("registration", "Find", ErrNotFound, "registration not found")
	ErrRegistrationIncomplete = NewDomainError("registration", "Validate", ErrEmptyValue, "full name, email, username and password are required")
	ErrPasswordMismatch       = NewDomainError("registration", "Validate", ErrValidation, "passwords do not match")
	ErrTermsNotAccepted       = NewDomainError("registration", "Validate", ErrValidation, "you must agree to the terms and conditions")
)

// Announcement domain errors
var (
	ErrEmptyAnnouncement = NewDomainError("announcement", "Post", ErrEmptyValue, "announcement content cannot be empty")
	ErrInvalidScope      = NewDomainError("announcement", "Post", ErrInvalidInput, "invalid announcement scope")
	ErrEmptyNote         = NewDomainError("announcement", "SendNote", ErrEmptyValue, "note cannot be empty")
	ErrEmptyTag          = NewDomainError("announcement", "Tag", ErrEmptyValue, "tag cannot be empty")
)

// Coursework errors
var (
	ErrAssignmentNotFound   = NewDomainError("coursework", "FindAssignment", ErrNotFound, "assignment not found")
	ErrMaterialNotFound     = NewDomainError("coursework", "FindMaterial", ErrNotFound, "study material not found")
	ErrEmptyCourseworkTitle = NewDomainError("coursework", "Validate", ErrEmptyValue, "title cannot be empty")
	ErrEmptyCourseCode      = NewDomainError("coursework", "Validate", ErrEmptyValue, "course code cannot be empty")
	ErrInvalidDueDate       = NewDomainError("coursework", "Validate", ErrInvalidFormat, "due date must be YYYY-MM-DD")
)

// Academic domain errors
var (
	ErrHistoryNotFound  = NewDomainError("academic", "FindHistory", ErrNotFound, "academic history not found")
	ErrSemesterNotFound = NewDomainError("academic", "FindSemester", ErrNotFound, "semester data unavailable")
)

// Snapshot errors
var (
	ErrSnapshotNotFound = NewDomainError("snapshot", "Load", ErrNotFound, "snapshot not found")
	ErrSnapshotCorrupt  = NewDomainError("snapshot", "Load", ErrInvalidFormat, "snapshot cannot be decoded")
)

// External service errors
var (
	ErrChatbotUnavailable     = NewDomainError("chatbot", "Answer", ErrServiceUnavailable, "assistant is unavailable")
	ErrChatbotRateLimited     = NewDomainError("chatbot", "Answer", ErrRateLimited, "assistant rate limit exceeded")
	ErrChatbotTimeout         = NewDomainError("chatbot", "Answer", ErrTimeout, "assistant request timeout")
	ErrChatbotInvalidResponse = NewDomainError("chatbot", "Parse", ErrInvalidFormat, "invalid response from assistant")
)

// IsNotFound checks if the error is a "not found" error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsAlreadyExists checks if the error is an "already exists" error.
func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}

// IsValidation checks if the error is a validation error.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrInvalidID) ||
		errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrEmptyValue) ||
		errors.Is(err, ErrValueOutOfRange)
}

// IsUnauthorized checks if the error is an authentication failure.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}

// IsForbidden checks if the error is an authorization failure.
func IsForbidden(err error) bool {
	return errors.Is(err, ErrForbidden)
}

// IsExternalService checks if the error is from an external service.
func IsExternalService(err error) bool {
	return errors.Is(err, ErrExternalService) ||
		errors.Is(err, ErrServiceUnavailable) ||
		errors.Is(err, ErrTimeout) ||
		errors.Is(err, ErrRateLimited)
}

// IsRetryable checks if the operation can be retried.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrServiceUnavailable) ||
		errors.Is(err, ErrTimeout) ||
		errors.Is(err, ErrConcurrentModification)
}
