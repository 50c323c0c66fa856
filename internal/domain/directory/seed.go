package directory

import (
	"fmt"
	"strings"
	"time"

	"github.com/nextedu/portal/internal/domain/academic"
)

// ══════════════════════════════════════════════════════════════════════════════
// SEED DATA
// Начальный состав портала, который создаётся при пустом хранилище.
// ══════════════════════════════════════════════════════════════════════════════

const (
	seedPassword        = "password"
	seedPendingPassword = "password123"
	seedEmailDomain     = "university.edu"
)

type seedStudent struct {
	id       string
	name     string
	dob      string
	contact  string
	parent   string
	semester int
}

var seedStudents = []seedStudent{
	{"STU-001", "Aarav Patel", "12-05-2003", "+91 9876543210", "+91 9876543211", 3},
	{"STU-002", "Aditi Sharma", "22-08-2003", "+91 9876543212", "+91 9876543213", 3},
	{"STU-003", "Arjun Kumar", "05-11-2002", "+91 9876543214", "+91 9876543215", 4},
	{"STU-004", "Diya Singh", "19-02-2003", "+91 9876543216", "+91 9876543217", 3},
	{"STU-005", "Ishaan Gupta", "30-07-2003", "+91 9876543218", "+91 9876543219", 3},
	{"STU-006", "Kavya Reddy", "14-04-2003", "+91 9876543220", "+91 9876543221", 4},
	{"STU-007", "Mohammed Khan", "25-09-2002", "+91 9876543222", "+91 9876543223", 3},
	{"STU-008", "Myra Desai", "08-12-2003", "+91 9876543224", "+91 9876543225", 3},
	{"STU-009", "Riya Verma", "03-01-2004", "+91 9876543226", "+91 9876543227", 2},
	{"STU-010", "Rohan Mehta", "18-06-2003", "+91 9876543228", "+91 9876543229", 3},
}

type seedTeacher struct {
	id         string
	name       string
	username   string
	department string
}

var seedTeachers = []seedTeacher{
	{"FAC-001", "Dr. Meera Iyer", "meera.iyer", "Computer Science"},
	{"FAC-002", "Dr. Rajeev Menon", "rajeev.menon", "Artificial Intelligence"},
	{"FAC-003", "Prof. Sunita Sharma", "sunita.sharma", "Machine Learning"},
}

// Задания и материалы, которые получает каждый преподаватель при посеве.
// submitted/of - доля сданных работ; число сдавших считается от
// количества закреплённых студентов.
var seedAssignments = []struct {
	title         string
	due           string
	submitted, of int
}{
	{"Algorithm Analysis Report", "2024-08-15", 42, 46},
	{"Database Normalization Task", "2024-08-18", 38, 46},
	{"Final Project Proposal", "2024-08-25", 15, 46},
}

var seedMaterials = []struct{ title, course string }{
	{"Lecture 5 - NP-Completeness.pdf", "CS-301"},
	{"SQL Injection Prevention Guide.docx", "CS-302"},
	{"React Hooks Cheatsheet.pdf", "CS-303L"},
}

// SeedConfig - зависимости посева.
type SeedConfig struct {
	Hasher      PasswordHasher
	Synthesizer *academic.Synthesizer
	Now         time.Time
}

// Seed строит начальный снимок: 10 студентов, 3 преподавателя и одна заявка.
// Студенты закрепляются за преподавателями по кругу. История каждого
// студента генерируется синтезатором.
func Seed(cfg SeedConfig) (*Snapshot, error) {
	if cfg.Synthesizer == nil {
		cfg.Synthesizer = academic.NewSynthesizer()
	}
	if cfg.Now.IsZero() {
		cfg.Now = time.Now()
	}

	hash, err := cfg.Hasher.Hash(seedPassword)
	if err != nil {
		return nil, fmt.Errorf("seed: hash password: %w", err)
	}
	pendingHash, err := cfg.Hasher.Hash(seedPendingPassword)
	if err != nil {
		return nil, fmt.Errorf("seed: hash password: %w", err)
	}

	snap := &Snapshot{
		Students:      make([]Student, 0, len(seedStudents)),
		Teachers:      make([]Teacher, 0, len(seedTeachers)),
		Announcements: []Announcement{},
		Activity:      []ActivityEntry{},
		Assignments:   []Assignment{},
		Materials:     []StudyMaterial{},
		SavedAt:       cfg.Now,
	}

	for _, t := range seedTeachers {
		snap.Teachers = append(snap.Teachers, Teacher{
			ID:           t.id,
			Name:         t.name,
			Email:        t.username + "@" + seedEmailDomain,
			Department:   t.department,
			Avatar:       DefaultAvatar,
			Username:     t.username,
			PasswordHash: hash,
		})
	}

	for i, s := range seedStudents {
		username := strings.ToLower(strings.ReplaceAll(s.name, " ", "."))
		snap.Students = append(snap.Students, Student{
			ID:            s.id,
			Name:          s.name,
			Email:         username + "@" + seedEmailDomain,
			Course:        DefaultCourse,
			Avatar:        DefaultAvatar,
			DOB:           s.dob,
			Contact:       s.contact,
			ParentContact: s.parent,
			Semester:      s.semester,
			Username:      username,
			PasswordHash:  hash,
			TeacherID:     seedTeachers[i%len(seedTeachers)].id,
			Notifications: []Notification{},
			Tags:          []string{},
			History:       cfg.Synthesizer.GenerateHistory(s.semester),
		})
	}

	roster := make(map[string]int, len(seedTeachers))
	for _, s := range snap.Students {
		roster[s.TeacherID]++
	}
	for _, t := range seedTeachers {
		for n, a := range seedAssignments {
			snap.Assignments = append(snap.Assignments, Assignment{
				ID:        fmt.Sprintf("%s-A%d", t.id, n+1),
				TeacherID: t.id,
				Title:     a.title,
				Due:       a.due,
				Submitted: roster[t.id] * a.submitted / a.of,
				CreatedAt: cfg.Now,
			})
		}
		for n, m := range seedMaterials {
			snap.Materials = append(snap.Materials, StudyMaterial{
				ID:         fmt.Sprintf("%s-M%d", t.id, n+1),
				TeacherID:  t.id,
				Title:      m.title,
				Course:     m.course,
				UploadedAt: cfg.Now,
			})
		}
	}

	snap.Registrations = []Registration{{
		FullName:      "Priya Chauhan",
		DOB:           "2004-05-20",
		Gender:        "female",
		StudentMobile: "9876512345",
		ParentMobile:  "9876512346",
		Email:         "priya.chauhan@example.com",
		ProgramName:   DefaultCourse,
		Section:       "A",
		City:          "Mumbai",
		State:         "Maharashtra",
		Username:      "priya.chauhan",
		PasswordHash:  pendingHash,
		AgreeTerms:    true,
		SubmittedAt:   cfg.Now,
	}}

	return snap, nil
}
