package shared

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDomainError_Is(t *testing.T) {
	wrapped := fmt.Errorf("approve: %w", ErrRegistrationNotFound)

	assert.True(t, IsNotFound(wrapped))
	assert.True(t, errors.Is(wrapped, ErrRegistrationNotFound))
	assert.False(t, IsAlreadyExists(wrapped))
	assert.Equal(t, "registration.Find: registration not found", ErrRegistrationNotFound.Error())
}

func TestDomainError_WrapKeepsCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := WrapError("snapshot", "Save", ErrServiceUnavailable, "cannot save snapshot", cause)

	assert.ErrorIs(t, err, cause)
	assert.True(t, IsRetryable(err))
	assert.True(t, IsExternalService(err))
	assert.Contains(t, err.Error(), "connection reset")
}

func TestErrorClassifiers(t *testing.T) {
	assert.True(t, IsValidation(ErrPasswordMismatch))
	assert.True(t, IsValidation(ErrMissingRequiredField))
	assert.True(t, IsValidation(ErrInvalidSemester))
	assert.True(t, IsUnauthorized(ErrInvalidCredentials))
	assert.True(t, IsForbidden(ErrStudentNotAssigned))
	assert.True(t, IsAlreadyExists(ErrUsernameTaken))
	assert.True(t, IsExternalService(ErrChatbotTimeout))
	assert.False(t, IsRetryable(ErrChatbotInvalidResponse))
}

func TestValueObjects(t *testing.T) {
	assert.True(t, StudentID("STU-004").IsValid())
	assert.False(t, StudentID("FAC-004").IsValid())
	assert.False(t, StudentID("STU-4").IsValid())
	assert.True(t, TeacherID("FAC-002").IsValid())
	assert.Equal(t, "STU-042", FormatID(StudentIDPrefix, 42))

	r, err := ParseRole(" Teacher ")
	assert.NoError(t, err)
	assert.Equal(t, RoleTeacher, r)
	_, err = ParseRole("dean")
	assert.ErrorIs(t, err, ErrInvalidRole)

	_, err = NewSemester(9)
	assert.True(t, IsValidation(err))
	s, err := NewSemester(3)
	assert.NoError(t, err)
	assert.Equal(t, "Semester 3", s.String())

	p := NewPagination(2, 4)
	start, end := p.Bounds(6)
	assert.Equal(t, 4, start)
	assert.Equal(t, 6, end)
	start, end = NewPagination(5, 4).Bounds(6)
	assert.Equal(t, 6, start)
	assert.Equal(t, 6, end)
}
