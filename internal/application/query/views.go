package query

import (
	"time"

	"github.com/nextedu/portal/internal/domain/academic"
	"github.com/nextedu/portal/internal/domain/directory"
	"github.com/nextedu/portal/pkg/timeutil"
)

// StudentProfile is a student without credentials or history.
type StudentProfile struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Email         string   `json:"email"`
	Course        string   `json:"course"`
	Avatar        string   `json:"avatar"`
	DOB           string   `json:"dob"`
	Contact       string   `json:"contact"`
	ParentContact string   `json:"parentContact"`
	Semester      int      `json:"semester"`
	Username      string   `json:"username"`
	TeacherID     string   `json:"teacherId,omitempty"`
	Tags          []string `json:"tags"`
}

// NewStudentProfile strips credentials from a student.
func NewStudentProfile(s directory.Student) StudentProfile {
	tags := s.Tags
	if tags == nil {
		tags = []string{}
	}
	return StudentProfile{
		ID:            s.ID,
		Name:          s.Name,
		Email:         s.Email,
		Course:        s.Course,
		Avatar:        s.Avatar,
		DOB:           s.DOB,
		Contact:       s.Contact,
		ParentContact: s.ParentContact,
		Semester:      s.Semester,
		Username:      s.Username,
		TeacherID:     s.TeacherID,
		Tags:          tags,
	}
}

// TeacherProfile is a teacher without credentials.
type TeacherProfile struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Department string `json:"department"`
	Avatar     string `json:"avatar"`
	Username   string `json:"username"`
}

// NewTeacherProfile strips credentials from a teacher.
func NewTeacherProfile(t directory.Teacher) TeacherProfile {
	return TeacherProfile{
		ID:         t.ID,
		Name:       t.Name,
		Email:      t.Email,
		Department: t.Department,
		Avatar:     t.Avatar,
		Username:   t.Username,
	}
}

// AnnouncementView is an announcement with a display time.
type AnnouncementView struct {
	directory.Announcement
	Posted  string `json:"posted"`
	Display string `json:"display"`
}

func newAnnouncementViews(now time.Time, list []directory.Announcement) []AnnouncementView {
	out := make([]AnnouncementView, len(list))
	for i, a := range list {
		out[i] = AnnouncementView{
			Announcement: a,
			Posted:       timeutil.FormatRelative(now, a.Time),
			Display:      timeutil.FormatDisplayTime(a.Time),
		}
	}
	return out
}

// AttendanceStanding summarizes overall attendance.
type AttendanceStanding struct {
	Overall  academic.Percentage `json:"overall"`
	Standing academic.Standing   `json:"standing"`
	Warning  string              `json:"warning,omitempty"`
}

func newAttendanceStanding(p academic.Percentage) AttendanceStanding {
	s := AttendanceStanding{Overall: p, Standing: academic.StandingOf(p)}
	if s.Standing == academic.StandingLow {
		s.Warning = academic.LowAttendanceMessage
	}
	return s
}
