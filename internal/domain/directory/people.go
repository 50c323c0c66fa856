package directory

import (
	"context"
	"slices"
	"strings"

	"github.com/nextedu/portal/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// STUDENTS
// ══════════════════════════════════════════════════════════════════════════════

// StudentParams - данные нового студента.
type StudentParams struct {
	Name          string
	Email         string
	Course        string
	Avatar        string
	DOB           string
	Contact       string
	ParentContact string
	Semester      int // 0 означает первый семестр
	Username      string
	Password      string // пустой пароль означает, что вход невозможен
	TeacherID     string
}

// StudentUpdate - изменения студента. nil означает "не менять".
type StudentUpdate struct {
	Name      *string
	Email     *string
	Course    *string
	Avatar    *string
	Semester  *int
	TeacherID *string
}

// AddStudent добавляет студента с новым ID вида STU-nnn и генерирует
// историю за завершённые семестры. Новый студент идёт первым в списке.
func (s *Store) AddStudent(ctx context.Context, p StudentParams) (Student, error) {
	p.Name, p.Email, p.Course = strings.TrimSpace(p.Name), strings.TrimSpace(p.Email), strings.TrimSpace(p.Course)
	if p.Name == "" || p.Email == "" || p.Course == "" {
		return Student{}, shared.ErrMissingRequiredField
	}
	if p.Semester == 0 {
		p.Semester = shared.FirstSemester
	}
	if !shared.Semester(p.Semester).IsValid() {
		return Student{}, shared.ErrInvalidSemester
	}
	if p.Avatar == "" {
		p.Avatar = DefaultAvatar
	}

	var hash string
	if p.Password != "" {
		h, err := s.hasher.Hash(p.Password)
		if err != nil {
			return Student{}, err
		}
		hash = h
	}

	var created Student
	err := s.mutate(ctx, func() error {
		if p.TeacherID != "" && s.teacherIndexLocked(p.TeacherID) < 0 {
			return shared.ErrTeacherNotFound
		}
		if s.usernameTakenLocked(p.Username) {
			return shared.ErrUsernameTaken
		}
		id, err := s.newPortalIDLocked(shared.StudentIDPrefix)
		if err != nil {
			return err
		}

		created = Student{
			ID:            id,
			Name:          p.Name,
			Email:         p.Email,
			Course:        p.Course,
			Avatar:        p.Avatar,
			DOB:           p.DOB,
			Contact:       p.Contact,
			ParentContact: p.ParentContact,
			Semester:      p.Semester,
			Username:      p.Username,
			PasswordHash:  hash,
			TeacherID:     p.TeacherID,
			Notifications: []Notification{},
			Tags:          []string{},
			History:       s.synth.GenerateHistory(p.Semester),
		}
		s.students = slices.Insert(s.students, 0, created)
		return nil
	})
	if err != nil {
		return Student{}, err
	}
	return created.Clone(), nil
}

// UpdateStudent изменяет данные студента. Обязательные поля не могут
// стать пустыми. При смене семестра история генерируется заново.
func (s *Store) UpdateStudent(ctx context.Context, id string, u StudentUpdate) (Student, error) {
	var updated Student
	err := s.mutate(ctx, func() error {
		i := s.studentIndexLocked(id)
		if i < 0 {
			return shared.ErrStudentNotFound
		}
		st := s.students[i].Clone()

		if err := applyRequired(&st.Name, u.Name); err != nil {
			return err
		}
		if err := applyRequired(&st.Email, u.Email); err != nil {
			return err
		}
		if err := applyRequired(&st.Course, u.Course); err != nil {
			return err
		}
		if u.Avatar != nil {
			st.Avatar = strings.TrimSpace(*u.Avatar)
		}
		if u.TeacherID != nil {
			if *u.TeacherID != "" && s.teacherIndexLocked(*u.TeacherID) < 0 {
				return shared.ErrTeacherNotFound
			}
			st.TeacherID = *u.TeacherID
		}
		if u.Semester != nil && *u.Semester != st.Semester {
			if !shared.Semester(*u.Semester).IsValid() {
				return shared.ErrInvalidSemester
			}
			st.Semester = *u.Semester
			st.History = s.synth.GenerateHistory(st.Semester)
		}

		s.students[i] = st
		updated = st
		return nil
	})
	if err != nil {
		return Student{}, err
	}
	return updated.Clone(), nil
}

// RemoveStudent удаляет студента и возвращает удалённую запись.
func (s *Store) RemoveStudent(ctx context.Context, id string) (Student, error) {
	var removed Student
	err := s.mutate(ctx, func() error {
		i := s.studentIndexLocked(id)
		if i < 0 {
			return shared.ErrStudentNotFound
		}
		removed = s.students[i]
		s.students = slices.Delete(s.students, i, i+1)
		return nil
	})
	return removed, err
}

// ══════════════════════════════════════════════════════════════════════════════
// TEACHERS
// ══════════════════════════════════════════════════════════════════════════════

// TeacherParams - данные нового преподавателя.
type TeacherParams struct {
	Name       string
	Email      string
	Department string
	Avatar     string
	Username   string
	Password   string
}

// TeacherUpdate - изменения преподавателя. nil означает "не менять".
type TeacherUpdate struct {
	Name       *string
	Email      *string
	Department *string
	Avatar     *string
}

// AddTeacher добавляет преподавателя с новым ID вида FAC-nnn.
func (s *Store) AddTeacher(ctx context.Context, p TeacherParams) (Teacher, error) {
	p.Name, p.Email, p.Department = strings.TrimSpace(p.Name), strings.TrimSpace(p.Email), strings.TrimSpace(p.Department)
	if p.Name == "" || p.Email == "" || p.Department == "" {
		return Teacher{}, shared.ErrMissingRequiredField
	}
	if p.Avatar == "" {
		p.Avatar = DefaultAvatar
	}

	var hash string
	if p.Password != "" {
		h, err := s.hasher.Hash(p.Password)
		if err != nil {
			return Teacher{}, err
		}
		hash = h
	}

	var created Teacher
	err := s.mutate(ctx, func() error {
		if s.usernameTakenLocked(p.Username) {
			return shared.ErrUsernameTaken
		}
		id, err := s.newPortalIDLocked(shared.TeacherIDPrefix)
		if err != nil {
			return err
		}
		created = Teacher{
			ID:           id,
			Name:         p.Name,
			Email:        p.Email,
			Department:   p.Department,
			Avatar:       p.Avatar,
			Username:     p.Username,
			PasswordHash: hash,
		}
		s.teachers = slices.Insert(s.teachers, 0, created)
		return nil
	})
	return created, err
}

// UpdateTeacher изменяет данные преподавателя.
func (s *Store) UpdateTeacher(ctx context.Context, id string, u TeacherUpdate) (Teacher, error) {
	var updated Teacher
	err := s.mutate(ctx, func() error {
		i := s.teacherIndexLocked(id)
		if i < 0 {
			return shared.ErrTeacherNotFound
		}
		t := s.teachers[i]

		if err := applyRequired(&t.Name, u.Name); err != nil {
			return err
		}
		if err := applyRequired(&t.Email, u.Email); err != nil {
			return err
		}
		if err := applyRequired(&t.Department, u.Department); err != nil {
			return err
		}
		if u.Avatar != nil {
			t.Avatar = strings.TrimSpace(*u.Avatar)
		}

		s.teachers[i] = t
		updated = t
		return nil
	})
	return updated, err
}

// RemoveTeacher удаляет преподавателя. Его студенты остаются без куратора.
func (s *Store) RemoveTeacher(ctx context.Context, id string) (Teacher, error) {
	var removed Teacher
	err := s.mutate(ctx, func() error {
		i := s.teacherIndexLocked(id)
		if i < 0 {
			return shared.ErrTeacherNotFound
		}
		removed = s.teachers[i]
		s.teachers = slices.Delete(s.teachers, i, i+1)
		s.dropCourseworkLocked(id)
		for j := range s.students {
			if s.students[j].TeacherID == id {
				s.students[j].TeacherID = ""
			}
		}
		return nil
	})
	return removed, err
}

func applyRequired(dst *string, v *string) error {
	if v == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*v)
	if trimmed == "" {
		return shared.ErrMissingRequiredField
	}
	*dst = trimmed
	return nil
}
