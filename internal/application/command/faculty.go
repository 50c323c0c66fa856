package command

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nextedu/portal/internal/domain/directory"
	"github.com/nextedu/portal/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// FACULTY ACTIONS
// Teachers post announcements, send notes and tag their assigned students.
// The activity log is written by the event handler, not here.
// ══════════════════════════════════════════════════════════════════════════════

// Faculty is the part of the directory faculty actions change.
type Faculty interface {
	PostAnnouncement(ctx context.Context, p directory.AnnouncementParams) (directory.Announcement, error)
	SendNote(ctx context.Context, teacherID, studentID, message string) (directory.Student, directory.Notification, error)
	TagStudent(ctx context.Context, teacherID, studentID, tag string) (directory.Student, bool, error)
	MarkNotificationRead(ctx context.Context, studentID, notificationID string) error
	CreateAssignment(ctx context.Context, p directory.AssignmentParams) (directory.Assignment, error)
	RemoveAssignment(ctx context.Context, teacherID, id string) (directory.Assignment, error)
	UploadMaterial(ctx context.Context, p directory.MaterialParams) (directory.StudyMaterial, error)
	RemoveMaterial(ctx context.Context, teacherID, id string) (directory.StudyMaterial, error)
}

// PostAnnouncementCommand posts an announcement. An empty TeacherID
// means the administrator posts it, and then Scope must be global.
type PostAnnouncementCommand struct {
	TeacherID string
	By        string
	Scope     directory.Scope
	Content   string
}

// SendNoteCommand sends a private note to an assigned student.
type SendNoteCommand struct {
	TeacherID string
	StudentID string
	Message   string
}

// TagStudentCommand labels an assigned student.
type TagStudentCommand struct {
	TeacherID string
	StudentID string
	Tag       string
}

// TagStudentResult reports whether the tag was new.
type TagStudentResult struct {
	Student directory.Student
	Added   bool
}

// MarkNotificationReadCommand marks one of the student's notes read.
type MarkNotificationReadCommand struct {
	StudentID      string
	NotificationID string
}

// CreateAssignmentCommand adds an assignment to the teacher's list.
type CreateAssignmentCommand struct {
	TeacherID string
	Title     string
	Due       string
}

// UploadMaterialCommand records a study material for a course code.
type UploadMaterialCommand struct {
	TeacherID string
	Title     string
	Course    string
}

// RemoveCourseworkCommand removes one of the teacher's assignments or materials.
type RemoveCourseworkCommand struct {
	TeacherID string
	ID        string
}

// FacultyHandler handles faculty and notification commands.
type FacultyHandler struct {
	faculty   Faculty
	publisher shared.EventPublisher
	logger    *slog.Logger
}

// NewFacultyHandler creates a new FacultyHandler.
func NewFacultyHandler(faculty Faculty, publisher shared.EventPublisher, logger *slog.Logger) *FacultyHandler {
	return &FacultyHandler{faculty: faculty, publisher: publisher, logger: loggerOrDefault(logger)}
}

// PostAnnouncement publishes an announcement, newest first.
func (h *FacultyHandler) PostAnnouncement(ctx context.Context, cmd PostAnnouncementCommand) (directory.Announcement, error) {
	a, err := h.faculty.PostAnnouncement(ctx, directory.AnnouncementParams{
		By:        cmd.By,
		TeacherID: cmd.TeacherID,
		Scope:     cmd.Scope,
		Content:   cmd.Content,
	})
	if err != nil {
		return directory.Announcement{}, fmt.Errorf("post_announcement: %w", err)
	}
	publish(h.publisher, h.logger, shared.NewAnnouncementPostedEvent(a.ID, a.By, a.TeacherID, string(a.Scope)))
	return a, nil
}

// SendNote appends a notification to the student.
func (h *FacultyHandler) SendNote(ctx context.Context, cmd SendNoteCommand) (directory.Notification, error) {
	st, note, err := h.faculty.SendNote(ctx, cmd.TeacherID, cmd.StudentID, cmd.Message)
	if err != nil {
		return directory.Notification{}, fmt.Errorf("send_note: %w", err)
	}
	publish(h.publisher, h.logger, shared.NewNoteSentEvent(cmd.TeacherID, st.ID, st.Name, note.ID))
	return note, nil
}

// TagStudent adds a tag. A repeated tag is not an error.
func (h *FacultyHandler) TagStudent(ctx context.Context, cmd TagStudentCommand) (*TagStudentResult, error) {
	st, added, err := h.faculty.TagStudent(ctx, cmd.TeacherID, cmd.StudentID, cmd.Tag)
	if err != nil {
		return nil, fmt.Errorf("tag_student: %w", err)
	}
	if added {
		publish(h.publisher, h.logger, shared.NewStudentTaggedEvent(cmd.TeacherID, st.ID, st.Name, st.Tags[len(st.Tags)-1]))
	}
	return &TagStudentResult{Student: st, Added: added}, nil
}

// MarkNotificationRead marks a note read.
func (h *FacultyHandler) MarkNotificationRead(ctx context.Context, cmd MarkNotificationReadCommand) error {
	if err := h.faculty.MarkNotificationRead(ctx, cmd.StudentID, cmd.NotificationID); err != nil {
		return fmt.Errorf("mark_notification_read: %w", err)
	}
	return nil
}

// CreateAssignment adds an assignment.
func (h *FacultyHandler) CreateAssignment(ctx context.Context, cmd CreateAssignmentCommand) (directory.Assignment, error) {
	a, err := h.faculty.CreateAssignment(ctx, directory.AssignmentParams{TeacherID: cmd.TeacherID, Title: cmd.Title, Due: cmd.Due})
	if err != nil {
		return directory.Assignment{}, fmt.Errorf("create_assignment: %w", err)
	}
	publish(h.publisher, h.logger, shared.NewCourseworkEvent(shared.EventAssignmentCreated, a.TeacherID, a.ID, a.Title))
	return a, nil
}

// RemoveAssignment deletes an assignment of the teacher.
func (h *FacultyHandler) RemoveAssignment(ctx context.Context, cmd RemoveCourseworkCommand) error {
	a, err := h.faculty.RemoveAssignment(ctx, cmd.TeacherID, cmd.ID)
	if err != nil {
		return fmt.Errorf("remove_assignment: %w", err)
	}
	publish(h.publisher, h.logger, shared.NewCourseworkEvent(shared.EventAssignmentRemoved, a.TeacherID, a.ID, a.Title))
	return nil
}

// UploadMaterial records a study material.
func (h *FacultyHandler) UploadMaterial(ctx context.Context, cmd UploadMaterialCommand) (directory.StudyMaterial, error) {
	m, err := h.faculty.UploadMaterial(ctx, directory.MaterialParams{TeacherID: cmd.TeacherID, Title: cmd.Title, Course: cmd.Course})
	if err != nil {
		return directory.StudyMaterial{}, fmt.Errorf("upload_material: %w", err)
	}
	publish(h.publisher, h.logger, shared.NewCourseworkEvent(shared.EventMaterialUploaded, m.TeacherID, m.ID, m.Title))
	return m, nil
}

// RemoveMaterial deletes a study material of the teacher.
func (h *FacultyHandler) RemoveMaterial(ctx context.Context, cmd RemoveCourseworkCommand) error {
	m, err := h.faculty.RemoveMaterial(ctx, cmd.TeacherID, cmd.ID)
	if err != nil {
		return fmt.Errorf("remove_material: %w", err)
	}
	publish(h.publisher, h.logger, shared.NewCourseworkEvent(shared.EventMaterialRemoved, m.TeacherID, m.ID, m.Title))
	return nil
}
