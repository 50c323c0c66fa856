package query

import (
	"context"
	"log/slog"
	"time"

	"github.com/nextedu/portal/internal/domain/directory"
	"github.com/nextedu/portal/internal/domain/shared"
	"github.com/nextedu/portal/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// ADMIN
// ══════════════════════════════════════════════════════════════════════════════

// RegistrationView is a pending request without the password hash.
type RegistrationView struct {
	FullName    string    `json:"fullName"`
	DOB         string    `json:"dob"`
	Gender      string    `json:"gender"`
	Email       string    `json:"email"`
	Mobile      string    `json:"studentMobile"`
	ProgramName string    `json:"programName"`
	Section     string    `json:"section"`
	City        string    `json:"city"`
	State       string    `json:"state"`
	Username    string    `json:"username"`
	SubmittedAt time.Time `json:"submittedAt"`
	Submitted   string    `json:"submitted"`
}

// ActivityView is an activity log entry with a relative time.
type ActivityView struct {
	directory.ActivityEntry
	When string `json:"when"`
}

// AdminOverview is the admin home page.
type AdminOverview struct {
	Stats          directory.Stats             `json:"stats"`
	UnsavedChanges bool                        `json:"unsavedChanges"`
	Registrations  []RegistrationView          `json:"pendingStudents"`
	Activity       []ActivityView              `json:"activity"`
	Versions       []directory.SnapshotVersion `json:"snapshotVersions,omitempty"`
}

// Page is one page of a list.
type Page[T any] struct {
	Items    []T `json:"items"`
	Total    int `json:"total"`
	Page     int `json:"page"`
	PageSize int `json:"pageSize"`
}

func paginate[T any](all []T, p shared.Pagination) Page[T] {
	lo, hi := p.Bounds(len(all))
	items := all[lo:hi]
	if items == nil {
		items = []T{}
	}
	return Page[T]{Items: items, Total: len(all), Page: p.Page, PageSize: p.Limit()}
}

// AdminHandler answers admin queries.
type AdminHandler struct {
	dir      Directory
	versions SnapshotVersions
	logger   *slog.Logger
	now      Clock
}

// NewAdminHandler creates a new AdminHandler. versions may be nil when
// the snapshot store keeps no history.
func NewAdminHandler(dir Directory, versions SnapshotVersions, logger *slog.Logger, now Clock) *AdminHandler {
	if logger == nil {
		logger = slog.Default()
	}
	if now == nil {
		now = timeutil.Now
	}
	return &AdminHandler{dir: dir, versions: versions, logger: logger, now: now}
}

// Overview returns directory sizes, the approval queue, recent activity
// and, if available, saved snapshot versions.
func (h *AdminHandler) Overview(ctx context.Context, activityLimit int) *AdminOverview {
	now := h.now()
	o := &AdminOverview{
		Stats:          h.dir.Stats(),
		UnsavedChanges: h.dir.IsDirty(),
		Registrations:  h.registrations(now),
	}

	entries := h.dir.Activity(activityLimit)
	o.Activity = make([]ActivityView, len(entries))
	for i, e := range entries {
		o.Activity[i] = ActivityView{ActivityEntry: e, When: timeutil.FormatRelative(now, e.Time)}
	}

	if h.versions != nil {
		v, err := h.versions.History(ctx, 10)
		if err != nil {
			h.logger.Warn("failed to list snapshot versions", "error", err)
		}
		o.Versions = v
	}
	return o
}

func (h *AdminHandler) registrations(now time.Time) []RegistrationView {
	regs := h.dir.Registrations()
	out := make([]RegistrationView, len(regs))
	for i, r := range regs {
		out[i] = RegistrationView{
			FullName:    r.FullName,
			DOB:         directory.DisplayDate(r.DOB),
			Gender:      r.Gender,
			Email:       r.Email,
			Mobile:      r.StudentMobile,
			ProgramName: r.ProgramName,
			Section:     r.Section,
			City:        r.City,
			State:       r.State,
			Username:    r.Username,
			SubmittedAt: r.SubmittedAt,
			Submitted:   timeutil.FormatRelative(now, r.SubmittedAt),
		}
	}
	return out
}

// Students lists students, newest first.
func (h *AdminHandler) Students(p shared.Pagination) Page[StudentProfile] {
	all := h.dir.Students()
	profiles := make([]StudentProfile, len(all))
	for i, st := range all {
		profiles[i] = NewStudentProfile(st)
	}
	return paginate(profiles, p)
}

// Teachers lists teachers.
func (h *AdminHandler) Teachers(p shared.Pagination) Page[TeacherProfile] {
	all := h.dir.Teachers()
	profiles := make([]TeacherProfile, len(all))
	for i, t := range all {
		profiles[i] = NewTeacherProfile(t)
	}
	return paginate(profiles, p)
}
