package command

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nextedu/portal/internal/domain/directory"
	"github.com/nextedu/portal/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// ADMIN: STUDENTS & TEACHERS
// ══════════════════════════════════════════════════════════════════════════════

// People is the part of the directory the admin screens change.
type People interface {
	Student(id string) (directory.Student, error)
	AddStudent(ctx context.Context, p directory.StudentParams) (directory.Student, error)
	UpdateStudent(ctx context.Context, id string, u directory.StudentUpdate) (directory.Student, error)
	RemoveStudent(ctx context.Context, id string) (directory.Student, error)
	AddTeacher(ctx context.Context, p directory.TeacherParams) (directory.Teacher, error)
	UpdateTeacher(ctx context.Context, id string, u directory.TeacherUpdate) (directory.Teacher, error)
	RemoveTeacher(ctx context.Context, id string) (directory.Teacher, error)
}

// Operation selects what a people command does.
type Operation string

const (
	OpAdd    Operation = "add"
	OpUpdate Operation = "update"
	OpRemove Operation = "remove"
)

// StudentCommand adds, updates or removes a student.
type StudentCommand struct {
	Op     Operation
	ID     string                  // update, remove
	Params directory.StudentParams // add
	Update directory.StudentUpdate // update
}

// Validate validates the command.
func (c StudentCommand) Validate() error {
	switch c.Op {
	case OpAdd:
		return nil
	case OpUpdate, OpRemove:
		if !shared.StudentID(c.ID).IsValid() {
			return shared.WrapError("directory", "Validate", shared.ErrInvalidID, "invalid student id", fmt.Errorf("%q", c.ID))
		}
		return nil
	default:
		return shared.NewDomainError("directory", "Validate", shared.ErrInvalidInput, "unknown operation")
	}
}

// TeacherCommand adds, updates or removes a teacher.
type TeacherCommand struct {
	Op     Operation
	ID     string
	Params directory.TeacherParams
	Update directory.TeacherUpdate
}

// Validate validates the command.
func (c TeacherCommand) Validate() error {
	switch c.Op {
	case OpAdd:
		return nil
	case OpUpdate, OpRemove:
		if !shared.TeacherID(c.ID).IsValid() {
			return shared.WrapError("directory", "Validate", shared.ErrInvalidID, "invalid teacher id", fmt.Errorf("%q", c.ID))
		}
		return nil
	default:
		return shared.NewDomainError("directory", "Validate", shared.ErrInvalidInput, "unknown operation")
	}
}

// PeopleHandler handles StudentCommand and TeacherCommand.
type PeopleHandler struct {
	people    People
	history   HistoryInvalidator
	publisher shared.EventPublisher
	logger    *slog.Logger
}

// NewPeopleHandler creates a new PeopleHandler. history may be nil when
// semester records are not cached.
func NewPeopleHandler(people People, history HistoryInvalidator, publisher shared.EventPublisher, logger *slog.Logger) *PeopleHandler {
	return &PeopleHandler{
		people:    people,
		history:   history,
		publisher: publisher,
		logger:    loggerOrDefault(logger).With("handler", "people"),
	}
}

// HandleStudent executes a StudentCommand. For removals the returned
// student is the removed record.
func (h *PeopleHandler) HandleStudent(ctx context.Context, cmd StudentCommand) (directory.Student, error) {
	if err := cmd.Validate(); err != nil {
		return directory.Student{}, fmt.Errorf("student_%s: %w", cmd.Op, err)
	}

	switch cmd.Op {
	case OpAdd:
		st, err := h.people.AddStudent(ctx, cmd.Params)
		if err != nil {
			return directory.Student{}, fmt.Errorf("student_add: %w", err)
		}
		publish(h.publisher, h.logger, shared.NewStudentEnrolledEvent(st.ID, st.Name, st.Semester, "admin"))
		return st, nil

	case OpUpdate:
		before, err := h.people.Student(cmd.ID)
		if err != nil {
			return directory.Student{}, fmt.Errorf("student_update: %w", err)
		}
		st, err := h.people.UpdateStudent(ctx, cmd.ID, cmd.Update)
		if err != nil {
			return directory.Student{}, fmt.Errorf("student_update: %w", err)
		}
		if st.Semester != before.Semester {
			h.invalidate(ctx, st.ID)
		}
		publish(h.publisher, h.logger, shared.NewDirectoryChangedEvent(shared.EventStudentUpdated, st.ID, st.Name))
		return st, nil

	default:
		st, err := h.people.RemoveStudent(ctx, cmd.ID)
		if err != nil {
			return directory.Student{}, fmt.Errorf("student_remove: %w", err)
		}
		h.invalidate(ctx, st.ID)
		publish(h.publisher, h.logger, shared.NewDirectoryChangedEvent(shared.EventStudentRemoved, st.ID, st.Name))
		return st, nil
	}
}

// HandleTeacher executes a TeacherCommand.
func (h *PeopleHandler) HandleTeacher(ctx context.Context, cmd TeacherCommand) (directory.Teacher, error) {
	if err := cmd.Validate(); err != nil {
		return directory.Teacher{}, fmt.Errorf("teacher_%s: %w", cmd.Op, err)
	}

	var (
		t     directory.Teacher
		err   error
		event shared.EventType
	)
	switch cmd.Op {
	case OpAdd:
		t, err = h.people.AddTeacher(ctx, cmd.Params)
		event = shared.EventTeacherAdded
	case OpUpdate:
		t, err = h.people.UpdateTeacher(ctx, cmd.ID, cmd.Update)
		event = shared.EventTeacherUpdated
	default:
		t, err = h.people.RemoveTeacher(ctx, cmd.ID)
		event = shared.EventTeacherRemoved
	}
	if err != nil {
		return directory.Teacher{}, fmt.Errorf("teacher_%s: %w", cmd.Op, err)
	}

	publish(h.publisher, h.logger, shared.NewDirectoryChangedEvent(event, t.ID, t.Name))
	return t, nil
}

// invalidate drops cached records. A stale cache only costs a refresh,
// so failures are logged.
func (h *PeopleHandler) invalidate(ctx context.Context, studentID string) {
	if h.history == nil {
		return
	}
	if err := h.history.Invalidate(ctx, studentID); err != nil {
		h.logger.Warn("failed to invalidate history cache", "student_id", studentID, "error", err)
	}
}
