// Package eventhandler reacts to domain events published on the bus.
package eventhandler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nextedu/portal/internal/domain/directory"
	"github.com/nextedu/portal/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// ACTIVITY RECORDER
// Writes faculty actions into the admin activity log.
// ══════════════════════════════════════════════════════════════════════════════

// ActivityLog is the part of the directory the recorder needs.
type ActivityLog interface {
	Teacher(id string) (directory.Teacher, error)
	LogActivity(ctx context.Context, actor, action string) (directory.ActivityEntry, error)
}

// Activity messages shown on the admin dashboard.
const (
	ActionAnnouncement = "Posted announcement for their students."
	actionNoteFmt      = "Sent a note to %s"
	actionTagFmt       = "Tagged %s with %q"
)

// ActivityRecorder handles faculty events.
type ActivityRecorder struct {
	log     ActivityLog
	logger  *slog.Logger
	timeout time.Duration
}

// NewActivityRecorder creates a new ActivityRecorder.
func NewActivityRecorder(log ActivityLog, logger *slog.Logger) *ActivityRecorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &ActivityRecorder{
		log:     log,
		logger:  logger.With("handler", "activity_recorder"),
		timeout: 5 * time.Second,
	}
}

// Register subscribes the recorder to faculty events.
func (r *ActivityRecorder) Register(bus shared.EventSubscriber) error {
	for _, t := range []shared.EventType{
		shared.EventAnnouncementPosted,
		shared.EventNoteSent,
		shared.EventStudentTagged,
	} {
		if err := bus.Subscribe(t, r.Handle); err != nil {
			return fmt.Errorf("subscribe %s: %w", t, err)
		}
	}
	return nil
}

// Handle records one faculty event. Administrator announcements have no
// teacher and are not logged.
func (r *ActivityRecorder) Handle(event shared.Event) error {
	var teacherID, action string

	switch e := event.(type) {
	case shared.AnnouncementPostedEvent:
		teacherID, action = e.TeacherID, ActionAnnouncement
	case shared.NoteSentEvent:
		teacherID, action = e.TeacherID, fmt.Sprintf(actionNoteFmt, e.StudentName)
	case shared.StudentTaggedEvent:
		teacherID, action = e.TeacherID, fmt.Sprintf(actionTagFmt, e.StudentName, e.Tag)
	default:
		return nil
	}
	if teacherID == "" {
		return nil
	}

	teacher, err := r.log.Teacher(teacherID)
	if err != nil {
		return fmt.Errorf("activity_recorder: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()
	if _, err := r.log.LogActivity(ctx, teacher.Name, action); err != nil {
		return fmt.Errorf("activity_recorder: %w", err)
	}

	r.logger.Debug("activity recorded", "actor", teacher.Name, "action", action)
	return nil
}
