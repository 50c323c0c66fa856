package query

import (
	"context"
	"fmt"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/nextedu/portal/internal/domain/directory"
	"github.com/nextedu/portal/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// STUDENT DASHBOARD
// ══════════════════════════════════════════════════════════════════════════════

// LatestResult is the newest completed semester.
type LatestResult struct {
	Semester string `json:"semester"`
	SGPA     string `json:"sgpa"`
	CGPA     string `json:"cgpa"`
	Status   string `json:"status"`
}

// StudentDashboard is the student home page.
type StudentDashboard struct {
	Profile       StudentProfile           `json:"profile"`
	Attendance    AttendanceStanding       `json:"attendance"`
	Latest        *LatestResult            `json:"latestResult,omitempty"`
	Unread        int                      `json:"unreadNotifications"`
	Notifications []directory.Notification `json:"notifications"`
	Announcements []AnnouncementView       `json:"announcements"`
	FeesDue       int                      `json:"feesOutstanding"`
}

// StudentDashboardHandler assembles the dashboard.
type StudentDashboardHandler struct {
	dir  Directory
	fees *FeesHandler
	now  Clock
}

// NewStudentDashboardHandler creates a new StudentDashboardHandler.
func NewStudentDashboardHandler(dir Directory, fees *FeesHandler, now Clock) *StudentDashboardHandler {
	if now == nil {
		now = timeutil.Now
	}
	return &StudentDashboardHandler{dir: dir, fees: fees, now: now}
}

// Handle builds the dashboard. Sections are computed concurrently.
func (h *StudentDashboardHandler) Handle(ctx context.Context, studentID string) (*StudentDashboard, error) {
	st, err := h.dir.Student(studentID)
	if err != nil {
		return nil, fmt.Errorf("student_dashboard: %w", err)
	}
	now := h.now()

	d := &StudentDashboard{
		Profile: NewStudentProfile(st),
		Unread:  st.UnreadCount(),
	}

	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		d.Attendance = newAttendanceStanding(st.History.OverallAttendance())
		if key, sum := st.History.LatestSummary(); sum != nil {
			d.Latest = &LatestResult{Semester: key, SGPA: sum.SGPA, CGPA: sum.CGPA, Status: sum.Status}
		}
		return nil
	})
	g.Go(func() error {
		list, err := h.dir.AnnouncementsFor(st.ID)
		if err != nil {
			return err
		}
		d.Announcements = newAnnouncementViews(now, list)
		return nil
	})
	g.Go(func() error {
		notes := slices.Clone(st.Notifications)
		slices.Reverse(notes)
		d.Notifications = notes
		if h.fees != nil {
			d.FeesDue = h.fees.view(st.ID, now).TotalOutstanding
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("student_dashboard: %w", err)
	}
	if d.Notifications == nil {
		d.Notifications = []directory.Notification{}
	}
	return d, nil
}
