package directory

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/nextedu/portal/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// COURSEWORK
// Задания и учебные материалы преподавателя. Видны только ему самому
// на его панели; студентам они не рассылаются.
// ══════════════════════════════════════════════════════════════════════════════

// DueDateLayout - формат срока сдачи задания.
const DueDateLayout = "2006-01-02"

// Assignment - задание преподавателя.
type Assignment struct {
	ID        string    `json:"id"`
	TeacherID string    `json:"teacherId"`
	Title     string    `json:"title"`
	Due       string    `json:"due"`
	Submitted int       `json:"submitted"`
	CreatedAt time.Time `json:"createdAt"`
}

// StudyMaterial - учебный файл, привязанный к коду курса (CS-301).
// Хранится только описание файла, не содержимое.
type StudyMaterial struct {
	ID         string    `json:"id"`
	TeacherID  string    `json:"teacherId"`
	Title      string    `json:"title"`
	Course     string    `json:"course"`
	UploadedAt time.Time `json:"uploadedAt"`
}

// AssignmentParams - новое задание.
type AssignmentParams struct {
	TeacherID string
	Title     string
	Due       string // YYYY-MM-DD
}

// MaterialParams - новый учебный материал.
type MaterialParams struct {
	TeacherID string
	Title     string
	Course    string
}

// CreateAssignment добавляет задание в конец списка преподавателя.
func (s *Store) CreateAssignment(ctx context.Context, p AssignmentParams) (Assignment, error) {
	title := strings.TrimSpace(p.Title)
	if title == "" {
		return Assignment{}, shared.ErrEmptyCourseworkTitle
	}
	due := strings.TrimSpace(p.Due)
	if _, err := time.Parse(DueDateLayout, due); err != nil {
		return Assignment{}, shared.ErrInvalidDueDate
	}

	var created Assignment
	err := s.mutate(ctx, func() error {
		if s.teacherIndexLocked(p.TeacherID) < 0 {
			return shared.ErrTeacherNotFound
		}
		created = Assignment{
			ID:        s.newID(),
			TeacherID: p.TeacherID,
			Title:     title,
			Due:       due,
			CreatedAt: s.clock(),
		}
		s.assignments = append(slices.Clone(s.assignments), created)
		return nil
	})
	return created, err
}

// RemoveAssignment удаляет задание. Чужое задание не находится.
func (s *Store) RemoveAssignment(ctx context.Context, teacherID, id string) (Assignment, error) {
	var removed Assignment
	err := s.mutate(ctx, func() error {
		i := slices.IndexFunc(s.assignments, func(a Assignment) bool {
			return a.ID == id && a.TeacherID == teacherID
		})
		if i < 0 {
			return shared.ErrAssignmentNotFound
		}
		removed = s.assignments[i]
		s.assignments = slices.Delete(slices.Clone(s.assignments), i, i+1)
		return nil
	})
	return removed, err
}

// Assignments возвращает задания преподавателя в порядке создания.
func (s *Store) Assignments(teacherID string) []Assignment {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Assignment
	for _, a := range s.assignments {
		if a.TeacherID == teacherID {
			out = append(out, a)
		}
	}
	return out
}

// UploadMaterial добавляет учебный материал.
func (s *Store) UploadMaterial(ctx context.Context, p MaterialParams) (StudyMaterial, error) {
	title := strings.TrimSpace(p.Title)
	if title == "" {
		return StudyMaterial{}, shared.ErrEmptyCourseworkTitle
	}
	course := strings.ToUpper(strings.TrimSpace(p.Course))
	if course == "" {
		return StudyMaterial{}, shared.ErrEmptyCourseCode
	}

	var uploaded StudyMaterial
	err := s.mutate(ctx, func() error {
		if s.teacherIndexLocked(p.TeacherID) < 0 {
			return shared.ErrTeacherNotFound
		}
		uploaded = StudyMaterial{
			ID:         s.newID(),
			TeacherID:  p.TeacherID,
			Title:      title,
			Course:     course,
			UploadedAt: s.clock(),
		}
		s.materials = append(slices.Clone(s.materials), uploaded)
		return nil
	})
	return uploaded, err
}

// RemoveMaterial удаляет учебный материал преподавателя.
func (s *Store) RemoveMaterial(ctx context.Context, teacherID, id string) (StudyMaterial, error) {
	var removed StudyMaterial
	err := s.mutate(ctx, func() error {
		i := slices.IndexFunc(s.materials, func(m StudyMaterial) bool {
			return m.ID == id && m.TeacherID == teacherID
		})
		if i < 0 {
			return shared.ErrMaterialNotFound
		}
		removed = s.materials[i]
		s.materials = slices.Delete(slices.Clone(s.materials), i, i+1)
		return nil
	})
	return removed, err
}

// Materials возвращает материалы преподавателя в порядке загрузки.
func (s *Store) Materials(teacherID string) []StudyMaterial {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []StudyMaterial
	for _, m := range s.materials {
		if m.TeacherID == teacherID {
			out = append(out, m)
		}
	}
	return out
}

// dropCourseworkLocked удаляет задания и материалы ушедшего преподавателя.
func (s *Store) dropCourseworkLocked(teacherID string) {
	s.assignments = slices.DeleteFunc(slices.Clone(s.assignments), func(a Assignment) bool { return a.TeacherID == teacherID })
	s.materials = slices.DeleteFunc(slices.Clone(s.materials), func(m StudyMaterial) bool { return m.TeacherID == teacherID })
}
