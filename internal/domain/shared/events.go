// Package shared contains common domain types, errors, events, and value objects
// that are used across all domain packages.
package shared

import (
	"time"
)

// EventType represents the type of domain event.
type EventType string

// Domain event types. Each event represents something significant that
// happened in the portal.
const (
	// Directory events
	EventStudentEnrolled EventType = "student.enrolled"
	EventStudentUpdated  EventType = "student.updated"
	EventStudentRemoved  EventType = "student.removed"
	EventTeacherAdded    EventType = "teacher.added"
	EventTeacherUpdated  EventType = "teacher.updated"
	EventTeacherRemoved  EventType = "teacher.removed"

	// Registration events
	EventRegistrationSubmitted EventType = "registration.submitted"
	EventRegistrationApproved  EventType = "registration.approved"
	EventRegistrationRejected  EventType = "registration.rejected"

	// Faculty events
	EventAnnouncementPosted EventType = "faculty.announcement_posted"
	EventNoteSent           EventType = "faculty.note_sent"
	EventStudentTagged      EventType = "faculty.student_tagged"

	// Coursework events
	EventAssignmentCreated EventType = "coursework.assignment_created"
	EventAssignmentRemoved EventType = "coursework.assignment_removed"
	EventMaterialUploaded  EventType = "coursework.material_uploaded"
	EventMaterialRemoved   EventType = "coursework.material_removed"

	// System events
	EventSnapshotSaved EventType = "system.snapshot_saved"
)

// Event is the base interface for all domain events.
type Event interface {
	// EventType returns the type of the event.
	EventType() EventType

	// OccurredAt returns when the event occurred.
	OccurredAt() time.Time

	// AggregateID returns the ID of the aggregate that produced this event.
	AggregateID() string

	// Payload returns the event data as a map for serialization.
	Payload() map[string]interface{}
}

// BaseEvent provides common event functionality.
type BaseEvent struct {
	Type          EventType `json:"type"`
	Timestamp     time.Time `json:"timestamp"`
	AggregateId   string    `json:"aggregate_id"`
	Version       int       `json:"version"`
	CorrelationID string    `json:"correlation_id,omitempty"`
}

// EventType implements Event interface.
func (e BaseEvent) EventType() EventType {
	return e.Type
}

// OccurredAt implements Event interface.
func (e BaseEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// AggregateID implements Event interface.
func (e BaseEvent) AggregateID() string {
	return e.AggregateId
}

// NewBaseEvent creates a new base event.
func NewBaseEvent(eventType EventType, aggregateID string) BaseEvent {
	return BaseEvent{
		Type:        eventType,
		Timestamp:   time.Now(),
		AggregateId: aggregateID,
		Version:     1,
	}
}

// WithCorrelationID sets the correlation ID for tracing.
func (e BaseEvent) WithCorrelationID(id string) BaseEvent {
	e.CorrelationID = id
	return e
}

// ═══════════════════════════════════════════════════════════════════════════
// Directory Events
// ═══════════════════════════════════════════════════════════════════════════

// Enrollment sources.
const (
	SourceSeed         = "seed"
	SourceAdmin        = "admin"
	SourceRegistration = "registration"
)

// StudentEnrolledEvent is emitted when a student record is created.
type StudentEnrolledEvent struct {
	BaseEvent
	StudentID string `json:"student_id"`
	Name      string `json:"name"`
	Semester  int    `json:"semester"`
	Source    string `json:"source"`
}

// Payload implements Event interface.
func (e StudentEnrolledEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"student_id": e.StudentID,
		"name":       e.Name,
		"semester":   e.Semester,
		"source":     e.Source,
	}
}

// NewStudentEnrolledEvent creates a new StudentEnrolledEvent.
func NewStudentEnrolledEvent(studentID, name string, semester int, source string) StudentEnrolledEvent {
	return StudentEnrolledEvent{
		BaseEvent: NewBaseEvent(EventStudentEnrolled, studentID),
		StudentID: studentID,
		Name:      name,
		Semester:  semester,
		Source:    source,
	}
}

// DirectoryChangedEvent covers updates and removals of students and teachers.
type DirectoryChangedEvent struct {
	BaseEvent
	SubjectID string `json:"subject_id"`
	Name      string `json:"name"`
}

// Payload implements Event interface.
func (e DirectoryChangedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"subject_id": e.SubjectID,
		"name":       e.Name,
	}
}

// NewDirectoryChangedEvent creates an event of one of the student/teacher
// update, removal or teacher.added types.
func NewDirectoryChangedEvent(eventType EventType, id, name string) DirectoryChangedEvent {
	return DirectoryChangedEvent{
		BaseEvent: NewBaseEvent(eventType, id),
		SubjectID: id,
		Name:      name,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Registration Events
// ═══════════════════════════════════════════════════════════════════════════

// RegistrationEvent is emitted when a registration is submitted, approved or rejected.
type RegistrationEvent struct {
	BaseEvent
	Username  string `json:"username"`
	FullName  string `json:"full_name"`
	StudentID string `json:"student_id,omitempty"` // set on approval
}

// Payload implements Event interface.
func (e RegistrationEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"username":   e.Username,
		"full_name":  e.FullName,
		"student_id": e.StudentID,
	}
}

// NewRegistrationEvent creates a new RegistrationEvent.
func NewRegistrationEvent(eventType EventType, username, fullName string) RegistrationEvent {
	return RegistrationEvent{
		BaseEvent: NewBaseEvent(eventType, username),
		Username:  username,
		FullName:  fullName,
	}
}

// WithStudent records the student created from an approved registration.
func (e RegistrationEvent) WithStudent(studentID string) RegistrationEvent {
	e.StudentID = studentID
	return e
}

// ═══════════════════════════════════════════════════════════════════════════
// Faculty Events
// ═══════════════════════════════════════════════════════════════════════════

// AnnouncementPostedEvent is emitted when a teacher or admin posts an announcement.
type AnnouncementPostedEvent struct {
	BaseEvent
	AnnouncementID string `json:"announcement_id"`
	By             string `json:"by"`
	TeacherID      string `json:"teacher_id,omitempty"`
	Scope          string `json:"scope"`
}

// Payload implements Event interface.
func (e AnnouncementPostedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"announcement_id": e.AnnouncementID,
		"by":              e.By,
		"teacher_id":      e.TeacherID,
		"scope":           e.Scope,
	}
}

// NewAnnouncementPostedEvent creates a new AnnouncementPostedEvent.
func NewAnnouncementPostedEvent(announcementID, by, teacherID, scope string) AnnouncementPostedEvent {
	return AnnouncementPostedEvent{
		BaseEvent:      NewBaseEvent(EventAnnouncementPosted, announcementID),
		AnnouncementID: announcementID,
		By:             by,
		TeacherID:      teacherID,
		Scope:          scope,
	}
}

// NoteSentEvent is emitted when a teacher sends a private note to a student.
type NoteSentEvent struct {
	BaseEvent
	TeacherID      string `json:"teacher_id"`
	StudentID      string `json:"student_id"`
	StudentName    string `json:"student_name"`
	NotificationID string `json:"notification_id"`
}

// Payload implements Event interface.
func (e NoteSentEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"teacher_id":      e.TeacherID,
		"student_id":      e.StudentID,
		"student_name":    e.StudentName,
		"notification_id": e.NotificationID,
	}
}

// NewNoteSentEvent creates a new NoteSentEvent.
func NewNoteSentEvent(teacherID, studentID, studentName, notificationID string) NoteSentEvent {
	return NoteSentEvent{
		BaseEvent:      NewBaseEvent(EventNoteSent, studentID),
		TeacherID:      teacherID,
		StudentID:      studentID,
		StudentName:    studentName,
		NotificationID: notificationID,
	}
}

// StudentTaggedEvent is emitted when a teacher tags a student.
type StudentTaggedEvent struct {
	BaseEvent
	TeacherID   string `json:"teacher_id"`
	StudentID   string `json:"student_id"`
	StudentName string `json:"student_name"`
	Tag         string `json:"tag"`
}

// Payload implements Event interface.
func (e StudentTaggedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"teacher_id":   e.TeacherID,
		"student_id":   e.StudentID,
		"student_name": e.StudentName,
		"tag":          e.Tag,
	}
}

// NewStudentTaggedEvent creates a new StudentTaggedEvent.
func NewStudentTaggedEvent(teacherID, studentID, studentName, tag string) StudentTaggedEvent {
	return StudentTaggedEvent{
		BaseEvent:   NewBaseEvent(EventStudentTagged, studentID),
		TeacherID:   teacherID,
		StudentID:   studentID,
		StudentName: studentName,
		Tag:         tag,
	}
}

// CourseworkEvent is emitted when a teacher adds or removes an assignment
// or a study material.
type CourseworkEvent struct {
	BaseEvent
	TeacherID string `json:"teacher_id"`
	ItemID    string `json:"item_id"`
	Title     string `json:"title"`
}

// Payload implements Event interface.
func (e CourseworkEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"teacher_id": e.TeacherID,
		"item_id":    e.ItemID,
		"title":      e.Title,
	}
}

// NewCourseworkEvent creates a new CourseworkEvent.
func NewCourseworkEvent(eventType EventType, teacherID, itemID, title string) CourseworkEvent {
	return CourseworkEvent{
		BaseEvent: NewBaseEvent(eventType, itemID),
		TeacherID: teacherID,
		ItemID:    itemID,
		Title:     title,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// System Events
// ═══════════════════════════════════════════════════════════════════════════

// SnapshotSavedEvent is emitted after the directory is persisted.
type SnapshotSavedEvent struct {
	BaseEvent
	Students int           `json:"students"`
	Teachers int           `json:"teachers"`
	Duration time.Duration `json:"duration"`
}

// Payload implements Event interface.
func (e SnapshotSavedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"students": e.Students,
		"teachers": e.Teachers,
		"duration": e.Duration.String(),
	}
}

// NewSnapshotSavedEvent creates a new SnapshotSavedEvent.
func NewSnapshotSavedEvent(students, teachers int, duration time.Duration) SnapshotSavedEvent {
	return SnapshotSavedEvent{
		BaseEvent: NewBaseEvent(EventSnapshotSaved, "directory"),
		Students:  students,
		Teachers:  teachers,
		Duration:  duration,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Event Bus Contracts
// ═══════════════════════════════════════════════════════════════════════════

// EventHandler is a function that handles an event.
type EventHandler func(event Event) error

// EventPublisher defines the interface for publishing events.
type EventPublisher interface {
	// Publish sends an event to subscribers.
	Publish(event Event) error
}

// EventSubscriber defines the interface for subscribing to events.
type EventSubscriber interface {
	// Subscribe registers a handler for an event type.
	Subscribe(eventType EventType, handler EventHandler) error

	// SubscribeAll registers a handler for all events.
	SubscribeAll(handler EventHandler) error
}

// EventBus combines publishing and subscribing.
type EventBus interface {
	EventPublisher
	EventSubscriber
}
