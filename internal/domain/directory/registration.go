package directory

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/nextedu/portal/internal/domain/shared"
)

// RegistrationParams - анкета самостоятельной регистрации студента.
type RegistrationParams struct {
	FullName        string
	DOB             string // YYYY-MM-DD
	Gender          string
	StudentMobile   string
	ParentMobile    string
	Email           string
	ProgramName     string
	Section         string
	City            string
	State           string
	Username        string
	Password        string
	ConfirmPassword string
	AgreeTerms      bool
}

// Validate проверяет анкету без обращения к хранилищу.
func (p RegistrationParams) Validate() error {
	if strings.TrimSpace(p.FullName) == "" || strings.TrimSpace(p.Email) == "" ||
		strings.TrimSpace(p.Username) == "" || p.Password == "" {
		return shared.ErrRegistrationIncomplete
	}
	if p.Password != p.ConfirmPassword {
		return shared.ErrPasswordMismatch
	}
	if !p.AgreeTerms {
		return shared.ErrTermsNotAccepted
	}
	return nil
}

// SubmitRegistration сохраняет заявку до решения администратора.
// Логин должен быть свободен среди студентов, преподавателей и заявок.
func (s *Store) SubmitRegistration(ctx context.Context, p RegistrationParams) (Registration, error) {
	if err := p.Validate(); err != nil {
		return Registration{}, err
	}
	hash, err := s.hasher.Hash(p.Password)
	if err != nil {
		return Registration{}, err
	}

	reg := Registration{
		FullName:      strings.TrimSpace(p.FullName),
		DOB:           p.DOB,
		Gender:        p.Gender,
		StudentMobile: p.StudentMobile,
		ParentMobile:  p.ParentMobile,
		Email:         strings.TrimSpace(p.Email),
		ProgramName:   p.ProgramName,
		Section:       p.Section,
		City:          p.City,
		State:         p.State,
		Username:      strings.TrimSpace(p.Username),
		PasswordHash:  hash,
		AgreeTerms:    p.AgreeTerms,
		SubmittedAt:   s.clock(),
	}

	err = s.mutate(ctx, func() error {
		if s.usernameTakenLocked(reg.Username) {
			return shared.ErrUsernameTaken
		}
		s.registrations = append(s.registrations, reg)
		return nil
	})
	if err != nil {
		return Registration{}, err
	}
	return reg, nil
}

// ApproveRegistration зачисляет студента в первый семестр и удаляет заявку.
func (s *Store) ApproveRegistration(ctx context.Context, username string) (Student, error) {
	var created Student
	err := s.mutate(ctx, func() error {
		i := s.registrationIndexLocked(username)
		if i < 0 {
			return shared.ErrRegistrationNotFound
		}
		reg := s.registrations[i]

		id, err := s.newPortalIDLocked(shared.StudentIDPrefix)
		if err != nil {
			return err
		}
		course := reg.ProgramName
		if course == "" {
			course = DefaultCourse
		}

		created = Student{
			ID:            id,
			Name:          reg.FullName,
			Email:         reg.Email,
			Course:        course,
			Avatar:        DefaultAvatar,
			DOB:           DisplayDate(reg.DOB),
			Contact:       reg.StudentMobile,
			ParentContact: reg.ParentMobile,
			Semester:      shared.FirstSemester,
			Username:      reg.Username,
			PasswordHash:  reg.PasswordHash,
			Notifications: []Notification{},
			Tags:          []string{},
			History:       s.synth.GenerateHistory(shared.FirstSemester),
		}
		s.registrations = slices.Delete(s.registrations, i, i+1)
		s.students = slices.Insert(s.students, 0, created)
		return nil
	})
	if err != nil {
		return Student{}, err
	}
	return created.Clone(), nil
}

// RejectRegistration удаляет заявку и возвращает её.
func (s *Store) RejectRegistration(ctx context.Context, username string) (Registration, error) {
	var removed Registration
	err := s.mutate(ctx, func() error {
		i := s.registrationIndexLocked(username)
		if i < 0 {
			return shared.ErrRegistrationNotFound
		}
		removed = s.registrations[i]
		s.registrations = slices.Delete(s.registrations, i, i+1)
		return nil
	})
	return removed, err
}

// DisplayDate переводит дату из YYYY-MM-DD в формат портала DD-MM-YYYY.
// Нераспознанное значение возвращается как есть.
func DisplayDate(iso string) string {
	t, err := time.Parse(time.DateOnly, iso)
	if err != nil {
		return iso
	}
	return t.Format("02-01-2006")
}
