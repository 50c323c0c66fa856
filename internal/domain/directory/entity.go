package directory

import (
	"slices"
	"strings"
	"time"

	"github.com/nextedu/portal/internal/domain/academic"
	"github.com/nextedu/portal/internal/domain/shared"
)

// DefaultAvatar - аватар, который получает пользователь без фотографии.
const DefaultAvatar = "https://placehold.co/100x100.png"

// DefaultCourse - программа, на которую зачисляются новые студенты.
const DefaultCourse = "B.Tech CSE (AI/ML)"

// ══════════════════════════════════════════════════════════════════════════════
// STUDENT
// ══════════════════════════════════════════════════════════════════════════════

// Notification - личное сообщение студенту от преподавателя.
type Notification struct {
	ID        string    `json:"id"`
	From      string    `json:"from"`
	Message   string    `json:"message"`
	Read      bool      `json:"read"`
	Timestamp time.Time `json:"timestamp"`
}

// Student - студент портала.
//
// History создаётся при зачислении и дальше не изменяется,
// поэтому копии студента разделяют одну и ту же историю.
type Student struct {
	ID            string           `json:"id"`
	Name          string           `json:"name"`
	Email         string           `json:"email"`
	Course        string           `json:"course"`
	Avatar        string           `json:"avatar"`
	DOB           string           `json:"dob"` // DD-MM-YYYY
	Contact       string           `json:"contact"`
	ParentContact string           `json:"parentContact"`
	Semester      int              `json:"semester"`
	Username      string           `json:"username"`
	PasswordHash  string           `json:"passwordHash"`
	TeacherID     string           `json:"teacherId,omitempty"`
	Notifications []Notification   `json:"notifications"`
	Tags          []string         `json:"tags"`
	History       academic.History `json:"history"`
}

// HasTag проверяет наличие метки без учёта регистра.
func (s *Student) HasTag(tag string) bool {
	return slices.ContainsFunc(s.Tags, func(t string) bool {
		return strings.EqualFold(t, tag)
	})
}

// UnreadCount возвращает число непрочитанных уведомлений.
func (s *Student) UnreadCount() int {
	n := 0
	for _, note := range s.Notifications {
		if !note.Read {
			n++
		}
	}
	return n
}

// IsAssignedTo проверяет, закреплён ли студент за преподавателем.
func (s *Student) IsAssignedTo(teacherID string) bool {
	return teacherID != "" && s.TeacherID == teacherID
}

// Clone возвращает копию студента с независимыми срезами.
func (s Student) Clone() Student {
	s.Notifications = slices.Clone(s.Notifications)
	s.Tags = slices.Clone(s.Tags)
	return s
}

// ══════════════════════════════════════════════════════════════════════════════
// TEACHER
// ══════════════════════════════════════════════════════════════════════════════

// Teacher - преподаватель.
type Teacher struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Department   string `json:"department"`
	Avatar       string `json:"avatar"`
	Username     string `json:"username"`
	PasswordHash string `json:"passwordHash"`
}

// ══════════════════════════════════════════════════════════════════════════════
// REGISTRATION
// ══════════════════════════════════════════════════════════════════════════════

// Registration - заявка на регистрацию, ожидающая решения администратора.
type Registration struct {
	FullName      string    `json:"fullName"`
	DOB           string    `json:"dob"` // YYYY-MM-DD
	Gender        string    `json:"gender"`
	StudentMobile string    `json:"studentMobile"`
	ParentMobile  string    `json:"parentMobile"`
	Email         string    `json:"email"`
	ProgramName   string    `json:"programName"`
	Section       string    `json:"section"`
	City          string    `json:"city"`
	State         string    `json:"state"`
	Username      string    `json:"username"`
	PasswordHash  string    `json:"passwordHash"`
	AgreeTerms    bool      `json:"agreeTerms"`
	SubmittedAt   time.Time `json:"submittedAt"`
}

// ══════════════════════════════════════════════════════════════════════════════
// ANNOUNCEMENTS & ACTIVITY
// ══════════════════════════════════════════════════════════════════════════════

// Scope определяет аудиторию объявления.
type Scope string

const (
	// ScopeTeacher - объявление видят только студенты преподавателя.
	ScopeTeacher Scope = "teacher"
	// ScopeGlobal - объявление видят все.
	ScopeGlobal Scope = "global"
)

// IsValid проверяет корректность области видимости.
func (s Scope) IsValid() bool {
	return s == ScopeTeacher || s == ScopeGlobal
}

// Announcement - объявление на главной странице.
type Announcement struct {
	ID        string    `json:"id"`
	By        string    `json:"by"`
	Content   string    `json:"content"`
	Time      time.Time `json:"time"`
	Scope     Scope     `json:"scope"`
	TeacherID string    `json:"teacherId,omitempty"`
}

// VisibleTo проверяет, видит ли студент объявление.
func (a Announcement) VisibleTo(s *Student) bool {
	if a.Scope == ScopeGlobal {
		return true
	}
	return s != nil && s.IsAssignedTo(a.TeacherID)
}

// ActivityEntry - запись журнала действий преподавателей.
type ActivityEntry struct {
	ID     string    `json:"id"`
	Actor  string    `json:"actor"`
	Action string    `json:"action"`
	Time   time.Time `json:"time"`
}

// MaxActivityEntries - сколько последних записей хранит журнал.
const MaxActivityEntries = 50

// ══════════════════════════════════════════════════════════════════════════════
// ACCOUNT
// ══════════════════════════════════════════════════════════════════════════════

// Account - результат успешного входа.
type Account struct {
	Role   shared.Role `json:"role"`
	ID     string      `json:"id"`
	Name   string      `json:"name"`
	Email  string      `json:"email"`
	Avatar string      `json:"avatar,omitempty"`
}
