package query

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nextedu/portal/internal/domain/academic"
	"github.com/nextedu/portal/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// SEMESTER RECORDS
// Attendance and results pages show one completed semester at a time.
// ══════════════════════════════════════════════════════════════════════════════

// SemesterRecordQuery asks for one semester of a student.
type SemesterRecordQuery struct {
	StudentID   string
	SemesterKey string // "sem1".."sem8"
}

// SemesterRecordView is one semester with attendance standing.
type SemesterRecordView struct {
	StudentID  string                     `json:"studentId"`
	Key        string                     `json:"semester"`
	Available  []string                   `json:"available"`
	Attendance *academic.AttendanceRecord `json:"attendance,omitempty"`
	Standing   *AttendanceStanding        `json:"standing,omitempty"`
	Results    *academic.ResultsRecord    `json:"results,omitempty"`
	Cached     bool                       `json:"-"`
}

// SemesterRecordHandler handles SemesterRecordQuery.
type SemesterRecordHandler struct {
	dir      Directory
	cache    RecordCache
	observer CacheObserver
	logger   *slog.Logger
}

// NewSemesterRecordHandler creates the handler. cache and observer may be nil.
func NewSemesterRecordHandler(dir Directory, cache RecordCache, observer CacheObserver, logger *slog.Logger) *SemesterRecordHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &SemesterRecordHandler{
		dir:      dir,
		cache:    cache,
		observer: observer,
		logger:   logger.With("handler", "semester_record"),
	}
}

// Handle returns the semester or shared.ErrSemesterNotFound when the
// semester is not completed yet.
func (h *SemesterRecordHandler) Handle(ctx context.Context, q SemesterRecordQuery) (*SemesterRecordView, error) {
	if _, err := academic.ParseSemesterKey(q.SemesterKey); err != nil {
		return nil, shared.WrapError("academic", "ParseSemesterKey", shared.ErrInvalidFormat, "invalid semester key", err)
	}
	st, err := h.dir.Student(q.StudentID)
	if err != nil {
		return nil, fmt.Errorf("semester_record: %w", err)
	}

	view := &SemesterRecordView{
		StudentID: st.ID,
		Key:       q.SemesterKey,
		Available: st.History.SemesterKeys(),
	}

	gen := h.dir.Generation()
	rec, cached := h.lookup(ctx, gen, st.ID, q.SemesterKey)
	if !cached {
		rec = st.History.Semester(q.SemesterKey)
		if rec.IsEmpty() {
			return nil, fmt.Errorf("semester_record: %s of %s: %w", q.SemesterKey, st.ID, shared.ErrSemesterNotFound)
		}
		h.store(ctx, gen, st.ID, q.SemesterKey, rec)
	}

	view.Cached = cached
	view.Attendance = rec.Attendance
	view.Results = rec.Results
	if rec.Attendance != nil {
		s := newAttendanceStanding(rec.Attendance.Overall)
		view.Standing = &s
	}
	return view, nil
}

// lookup reads the cache. Errors fall back to the directory.
func (h *SemesterRecordHandler) lookup(ctx context.Context, gen, studentID, key string) (academic.SemesterRecord, bool) {
	if h.cache == nil {
		return academic.SemesterRecord{}, false
	}
	rec, found, err := h.cache.Get(ctx, gen, studentID, key)
	if h.observer != nil {
		h.observer.ObserveHistoryCache(found, err)
	}
	if err != nil {
		h.logger.Warn("history cache read failed", "student_id", studentID, "semester", key, "error", err)
		return academic.SemesterRecord{}, false
	}
	return rec, found && !rec.IsEmpty()
}

func (h *SemesterRecordHandler) store(ctx context.Context, gen, studentID, key string, rec academic.SemesterRecord) {
	if h.cache == nil {
		return
	}
	if err := h.cache.Set(ctx, gen, studentID, key, rec); err != nil {
		h.logger.Warn("history cache write failed", "student_id", studentID, "semester", key, "error", err)
	}
}
