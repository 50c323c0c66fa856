package query

import (
	"fmt"

	"github.com/nextedu/portal/internal/domain/academic"
	"github.com/nextedu/portal/internal/domain/directory"
	"github.com/nextedu/portal/pkg/timeutil"
)

// AssignedStudent is one row of the teacher's student list.
type AssignedStudent struct {
	StudentProfile
	Attendance academic.Percentage `json:"attendance"`
	Standing   academic.Standing   `json:"standing"`
	CGPA       string              `json:"cgpa,omitempty"`
	Unread     int                 `json:"unreadNotifications"`
}

// AssignmentView is an assignment with its submission count, "3/4".
type AssignmentView struct {
	directory.Assignment
	Submissions string `json:"submissions"`
}

// TeacherDashboard is the teacher home page.
type TeacherDashboard struct {
	Profile        TeacherProfile            `json:"profile"`
	Students       []AssignedStudent         `json:"students"`
	LowAttendance  int                       `json:"lowAttendance"`
	Announcements  []AnnouncementView        `json:"announcements"`
	Assignments    []AssignmentView          `json:"assignments"`
	StudyMaterials []directory.StudyMaterial `json:"studyMaterials"`
}

// TeacherDashboardHandler assembles the teacher dashboard.
type TeacherDashboardHandler struct {
	dir Directory
	now Clock
}

// NewTeacherDashboardHandler creates a new TeacherDashboardHandler.
func NewTeacherDashboardHandler(dir Directory, now Clock) *TeacherDashboardHandler {
	if now == nil {
		now = timeutil.Now
	}
	return &TeacherDashboardHandler{dir: dir, now: now}
}

// Handle lists the teacher's students, own announcements and coursework.
func (h *TeacherDashboardHandler) Handle(teacherID string) (*TeacherDashboard, error) {
	t, err := h.dir.Teacher(teacherID)
	if err != nil {
		return nil, fmt.Errorf("teacher_dashboard: %w", err)
	}
	students, err := h.dir.AssignedStudents(teacherID)
	if err != nil {
		return nil, fmt.Errorf("teacher_dashboard: %w", err)
	}

	d := &TeacherDashboard{
		Profile:  NewTeacherProfile(t),
		Students: make([]AssignedStudent, len(students)),
	}
	for i, st := range students {
		row := AssignedStudent{
			StudentProfile: NewStudentProfile(st),
			Attendance:     st.History.OverallAttendance(),
			Unread:         st.UnreadCount(),
		}
		row.Standing = academic.StandingOf(row.Attendance)
		if row.Standing == academic.StandingLow {
			d.LowAttendance++
		}
		if _, sum := st.History.LatestSummary(); sum != nil {
			row.CGPA = sum.CGPA
		}
		d.Students[i] = row
	}

	var own []directory.Announcement
	for _, a := range h.dir.Announcements() {
		if a.TeacherID == teacherID {
			own = append(own, a)
		}
	}
	d.Announcements = newAnnouncementViews(h.now(), own)

	assignments := h.dir.Assignments(teacherID)
	d.Assignments = make([]AssignmentView, len(assignments))
	for i, a := range assignments {
		d.Assignments[i] = AssignmentView{
			Assignment:  a,
			Submissions: fmt.Sprintf("%d/%d", min(a.Submitted, len(students)), len(students)),
		}
	}
	d.StudyMaterials = h.dir.Materials(teacherID)
	if d.StudyMaterials == nil {
		d.StudyMaterials = []directory.StudyMaterial{}
	}
	return d, nil
}
