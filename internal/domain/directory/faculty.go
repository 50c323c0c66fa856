package directory

import (
	"context"
	"slices"
	"strings"

	"github.com/nextedu/portal/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// ANNOUNCEMENTS
// ══════════════════════════════════════════════════════════════════════════════

// AnnouncementParams - новое объявление.
// Для ScopeTeacher TeacherID обязателен.
type AnnouncementParams struct {
	By        string
	TeacherID string
	Scope     Scope
	Content   string
}

// PostAnnouncement публикует объявление. Новые объявления идут первыми.
func (s *Store) PostAnnouncement(ctx context.Context, p AnnouncementParams) (Announcement, error) {
	content := strings.TrimSpace(p.Content)
	if content == "" {
		return Announcement{}, shared.ErrEmptyAnnouncement
	}
	if !p.Scope.IsValid() {
		return Announcement{}, shared.ErrInvalidScope
	}

	var posted Announcement
	err := s.mutate(ctx, func() error {
		by := p.By
		if p.TeacherID != "" {
			i := s.teacherIndexLocked(p.TeacherID)
			if i < 0 {
				return shared.ErrTeacherNotFound
			}
			if by == "" {
				by = s.teachers[i].Name
			}
		} else if p.Scope == ScopeTeacher {
			return shared.ErrInvalidScope
		}

		posted = Announcement{
			ID:        s.newID(),
			By:        by,
			Content:   content,
			Time:      s.clock(),
			Scope:     p.Scope,
			TeacherID: p.TeacherID,
		}
		s.announcements = slices.Insert(s.announcements, 0, posted)
		return nil
	})
	return posted, err
}

// ══════════════════════════════════════════════════════════════════════════════
// NOTES & TAGS
// ══════════════════════════════════════════════════════════════════════════════

// SendNote добавляет студенту уведомление от преподавателя.
// Студент должен быть закреплён за этим преподавателем.
func (s *Store) SendNote(ctx context.Context, teacherID, studentID, message string) (Student, Notification, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return Student{}, Notification{}, shared.ErrEmptyNote
	}

	var (
		student Student
		note    Notification
	)
	err := s.mutate(ctx, func() error {
		ti, si, err := s.assignmentLocked(teacherID, studentID)
		if err != nil {
			return err
		}
		note = Notification{
			ID:        s.newID(),
			From:      s.teachers[ti].Name,
			Message:   message,
			Read:      false,
			Timestamp: s.clock(),
		}
		st := &s.students[si]
		st.Notifications = append(slices.Clone(st.Notifications), note)
		student = st.Clone()
		return nil
	})
	if err != nil {
		return Student{}, Notification{}, err
	}
	return student, note, nil
}

// TagStudent добавляет студенту метку. Повторная метка (без учёта
// регистра) не добавляется; added сообщает, была ли метка новой.
func (s *Store) TagStudent(ctx context.Context, teacherID, studentID, tag string) (student Student, added bool, err error) {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return Student{}, false, shared.ErrEmptyTag
	}

	err = s.mutate(ctx, func() error {
		_, si, err := s.assignmentLocked(teacherID, studentID)
		if err != nil {
			return err
		}
		st := &s.students[si]
		if !st.HasTag(tag) {
			st.Tags = append(slices.Clone(st.Tags), tag)
			added = true
		}
		student = st.Clone()
		return nil
	})
	if err != nil {
		return Student{}, false, err
	}
	return student, added, nil
}

// MarkNotificationRead отмечает уведомление студента прочитанным.
func (s *Store) MarkNotificationRead(ctx context.Context, studentID, notificationID string) error {
	return s.mutate(ctx, func() error {
		si := s.studentIndexLocked(studentID)
		if si < 0 {
			return shared.ErrStudentNotFound
		}
		st := &s.students[si]
		ni := slices.IndexFunc(st.Notifications, func(n Notification) bool { return n.ID == notificationID })
		if ni < 0 {
			return shared.ErrNotificationNotFound
		}
		st.Notifications = slices.Clone(st.Notifications)
		st.Notifications[ni].Read = true
		return nil
	})
}

func (s *Store) assignmentLocked(teacherID, studentID string) (int, int, error) {
	ti := s.teacherIndexLocked(teacherID)
	if ti < 0 {
		return 0, 0, shared.ErrTeacherNotFound
	}
	si := s.studentIndexLocked(studentID)
	if si < 0 {
		return 0, 0, shared.ErrStudentNotFound
	}
	if !s.students[si].IsAssignedTo(teacherID) {
		return 0, 0, shared.ErrStudentNotAssigned
	}
	return ti, si, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// ACTIVITY LOG
// ══════════════════════════════════════════════════════════════════════════════

// LogActivity добавляет запись в журнал. Хранятся только
// MaxActivityEntries последних записей.
func (s *Store) LogActivity(ctx context.Context, actor, action string) (ActivityEntry, error) {
	var entry ActivityEntry
	err := s.mutate(ctx, func() error {
		entry = ActivityEntry{
			ID:     s.newID(),
			Actor:  actor,
			Action: action,
			Time:   s.clock(),
		}
		s.activity = slices.Insert(s.activity, 0, entry)
		if len(s.activity) > MaxActivityEntries {
			s.activity = s.activity[:MaxActivityEntries]
		}
		return nil
	})
	return entry, err
}
