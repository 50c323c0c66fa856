// Package shared contains common domain types, errors, events, and value objects
// that are used across all domain packages.
package shared

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ═══════════════════════════════════════════════════════════════════════════
// Role Value Object
// ═══════════════════════════════════════════════════════════════════════════

// Role identifies which dashboard a user signs in to.
type Role string

const (
	RoleStudent Role = "student"
	RoleTeacher Role = "teacher"
	RoleAdmin   Role = "admin"
)

// IsValid checks if the role is known.
func (r Role) IsValid() bool {
	switch r {
	case RoleStudent, RoleTeacher, RoleAdmin:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (r Role) String() string {
	return string(r)
}

// ParseRole parses a role name case-insensitively.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if !r.IsValid() {
		return "", ErrInvalidRole
	}
	return r, nil
}

// ═══════════════════════════════════════════════════════════════════════════
// ID Value Objects
// ═══════════════════════════════════════════════════════════════════════════

// Identifier prefixes.
const (
	StudentIDPrefix = "STU"
	TeacherIDPrefix = "FAC"
)

var portalIDRegex = regexp.MustCompile(`^(STU|FAC)-[0-9]{3}$`)

// StudentID identifies a student, e.g. "STU-004".
type StudentID string

// IsValid checks the STU-nnn format.
func (s StudentID) IsValid() bool {
	return portalIDRegex.MatchString(string(s)) && strings.HasPrefix(string(s), StudentIDPrefix)
}

// String returns the string representation.
func (s StudentID) String() string {
	return string(s)
}

// TeacherID identifies a faculty member, e.g. "FAC-002".
type TeacherID string

// IsValid checks the FAC-nnn format.
func (t TeacherID) IsValid() bool {
	return portalIDRegex.MatchString(string(t)) && strings.HasPrefix(string(t), TeacherIDPrefix)
}

// String returns the string representation.
func (t TeacherID) String() string {
	return string(t)
}

// FormatID builds a prefixed identifier such as "STU-123".
func FormatID(prefix string, n int) string {
	return fmt.Sprintf("%s-%03d", prefix, n)
}

// ═══════════════════════════════════════════════════════════════════════════
// Semester Value Object
// ═══════════════════════════════════════════════════════════════════════════

// Semester bounds of the programme.
const (
	FirstSemester = 1
	LastSemester  = 8
)

// Semester is the 1-based semester a student is currently in.
type Semester int

// IsValid checks that the semester is within the programme.
func (s Semester) IsValid() bool {
	return s >= FirstSemester && s <= LastSemester
}

// Int returns the underlying value.
func (s Semester) Int() int {
	return int(s)
}

// String returns "Semester 3" style label.
func (s Semester) String() string {
	return "Semester " + strconv.Itoa(int(s))
}

// NewSemester creates a Semester with validation.
func NewSemester(n int) (Semester, error) {
	s := Semester(n)
	if !s.IsValid() {
		return 0, ErrInvalidSemester
	}
	return s, nil
}

// ═══════════════════════════════════════════════════════════════════════════
// Pagination Value Object
// ═══════════════════════════════════════════════════════════════════════════

// Pagination represents pagination parameters.
type Pagination struct {
	Page     int
	PageSize int
}

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Offset returns the offset of the first item on the page.
func (p Pagination) Offset() int {
	if p.Page <= 0 {
		return 0
	}
	return (p.Page - 1) * p.Limit()
}

// Limit returns the page size clamped to MaxPageSize.
func (p Pagination) Limit() int {
	if p.PageSize <= 0 {
		return DefaultPageSize
	}
	if p.PageSize > MaxPageSize {
		return MaxPageSize
	}
	return p.PageSize
}

// Bounds returns the [start, end) slice bounds for a collection of n items.
func (p Pagination) Bounds(n int) (int, int) {
	start := min(p.Offset(), n)
	end := min(start+p.Limit(), n)
	return start, end
}

// NewPagination creates a new Pagination with defaults.
func NewPagination(page, pageSize int) Pagination {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return Pagination{Page: page, PageSize: pageSize}
}

// DefaultPagination returns default pagination.
func DefaultPagination() Pagination {
	return NewPagination(1, DefaultPageSize)
}
