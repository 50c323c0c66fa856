package directory

import (
	"context"
	"slices"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nextedu/portal/internal/domain/academic"
	"github.com/nextedu/portal/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// STORE
// ══════════════════════════════════════════════════════════════════════════════

// Config - зависимости Store.
type Config struct {
	// Snapshots - порт загрузки и сохранения снимка. Обязателен.
	Snapshots SnapshotStore

	// Hasher - хэширование паролей. Обязателен.
	Hasher PasswordHasher

	// Synthesizer генерирует историю новым студентам.
	Synthesizer *academic.Synthesizer

	// Random выбирает номера для идентификаторов STU-nnn и FAC-nnn.
	Random academic.RandomSource

	// NewID генерирует идентификаторы объявлений, уведомлений и записей журнала.
	NewID func() string

	// Clock возвращает текущее время.
	Clock func() time.Time

	// WriteThrough сохраняет снимок после каждого изменения.
	// Без него изменения сохраняет Flush.
	WriteThrough bool
}

// Store - каталог пользователей портала: студенты, преподаватели,
// заявки на регистрацию, объявления и журнал действий.
// Безопасен для конкурентного использования.
type Store struct {
	mu sync.RWMutex

	snapshots    SnapshotStore
	hasher       PasswordHasher
	synth        *academic.Synthesizer
	rnd          academic.RandomSource
	newID        func() string
	clock        func() time.Time
	writeThrough bool

	students      []Student
	teachers      []Teacher
	registrations []Registration
	announcements []Announcement
	activity      []ActivityEntry
	assignments   []Assignment
	materials     []StudyMaterial

	// version растёт при каждом изменении, savedVersion - версия
	// последнего сохранённого снимка.
	version      uint64
	savedVersion uint64

	// generation меняется при каждом Open. Кэши истории ключуются по нему,
	// поэтому посев или восстановление снимка не отдают старые записи.
	generation string

	flushMu sync.Mutex
}

// NewStore создаёт пустой каталог. Данные загружает Open.
func NewStore(cfg Config) *Store {
	s := &Store{
		snapshots:    cfg.Snapshots,
		hasher:       cfg.Hasher,
		synth:        cfg.Synthesizer,
		rnd:          cfg.Random,
		newID:        cfg.NewID,
		clock:        cfg.Clock,
		writeThrough: cfg.WriteThrough,
	}
	if s.clock == nil {
		s.clock = time.Now
	}
	if s.synth == nil {
		s.synth = academic.NewSynthesizer()
	}
	if s.rnd == nil {
		s.rnd = academic.NewRandomSource(s.clock().UnixNano())
	}
	if s.newID == nil {
		s.newID = func() string { return strconv.FormatInt(s.clock().UnixNano(), 10) }
	}
	return s
}

// Open загружает снимок. Если снимка нет, каталог заполняется
// начальными данными и сохраняется. Возвращает true, если был посев.
func (s *Store) Open(ctx context.Context) (bool, error) {
	snap, err := s.snapshots.Load(ctx)
	seeded := false

	switch {
	case shared.IsNotFound(err):
		snap, err = Seed(SeedConfig{
			Hasher:      s.hasher,
			Synthesizer: s.synth,
			Now:         s.clock(),
		})
		if err != nil {
			return false, err
		}
		seeded = true
	case err != nil:
		return false, shared.WrapError("snapshot", "Load", shared.ErrServiceUnavailable, "cannot load snapshot", err)
	}

	s.mu.Lock()
	s.restoreLocked(snap)
	s.generation = s.newID() + "." + strconv.FormatUint(opens.Add(1), 10)
	s.version++
	if !seeded {
		s.savedVersion = s.version
	}
	s.mu.Unlock()

	if seeded {
		if _, err := s.Flush(ctx); err != nil {
			return true, err
		}
	}
	return seeded, nil
}

// opens различает поколения при одинаковом NewID.
var opens atomic.Uint64

// Generation возвращает поколение данных, загруженных последним Open.
func (s *Store) Generation() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.generation
}

func (s *Store) restoreLocked(snap *Snapshot) {
	snap = snap.Clone()
	s.students = snap.Students
	s.teachers = snap.Teachers
	s.registrations = snap.Registrations
	s.announcements = snap.Announcements
	s.activity = snap.Activity
	s.assignments = snap.Assignments
	s.materials = snap.Materials

	for i := range s.students {
		h := &s.students[i].History
		if h.Attendance == nil {
			h.Attendance = make(map[string]academic.AttendanceRecord)
		}
		if h.Results == nil {
			h.Results = make(map[string]academic.ResultsRecord)
		}
	}
}

// Snapshot возвращает копию текущего состояния.
func (s *Store) Snapshot() *Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() *Snapshot {
	snap := &Snapshot{
		Students:      s.students,
		Teachers:      s.teachers,
		Registrations: s.registrations,
		Announcements: s.announcements,
		Activity:      s.activity,
		Assignments:   s.assignments,
		Materials:     s.materials,
		SavedAt:       s.clock(),
	}
	return snap.Clone()
}

// IsDirty возвращает true, если есть несохранённые изменения.
func (s *Store) IsDirty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version != s.savedVersion
}

// Flush сохраняет снимок, если есть несохранённые изменения.
// Возвращает true, если снимок был записан.
func (s *Store) Flush(ctx context.Context) (bool, error) {
	s.flushMu.Lock()
	defer s.flushMu.Unlock()

	s.mu.RLock()
	if s.version == s.savedVersion {
		s.mu.RUnlock()
		return false, nil
	}
	version := s.version
	snap := s.snapshotLocked()
	s.mu.RUnlock()

	if err := s.snapshots.Save(ctx, snap); err != nil {
		return false, shared.WrapError("snapshot", "Save", shared.ErrServiceUnavailable, "cannot save snapshot", err)
	}

	s.mu.Lock()
	if version > s.savedVersion {
		s.savedVersion = version
	}
	s.mu.Unlock()
	return true, nil
}

// Stats - размеры коллекций каталога.
type Stats struct {
	Students      int `json:"students"`
	Teachers      int `json:"teachers"`
	Registrations int `json:"pendingRegistrations"`
	Announcements int `json:"announcements"`
}

// Stats возвращает размеры коллекций.
func (s *Store) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Stats{
		Students:      len(s.students),
		Teachers:      len(s.teachers),
		Registrations: len(s.registrations),
		Announcements: len(s.announcements),
	}
}

// mutate применяет изменение под блокировкой. В режиме WriteThrough
// сразу сохраняет снимок; ошибка сохранения не откатывает изменение.
func (s *Store) mutate(ctx context.Context, fn func() error) error {
	s.mu.Lock()
	if err := fn(); err != nil {
		s.mu.Unlock()
		return err
	}
	s.version++
	s.mu.Unlock()

	if s.writeThrough {
		if _, err := s.Flush(ctx); err != nil {
			return err
		}
	}
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// AUTHENTICATION
// ══════════════════════════════════════════════════════════════════════════════

// Authenticate проверяет логин и пароль студента или преподавателя.
// Администраторы проверяются на уровне приложения.
func (s *Store) Authenticate(role shared.Role, username, password string) (Account, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return Account{}, shared.ErrInvalidCredentials
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	switch role {
	case shared.RoleStudent:
		for _, st := range s.students {
			if st.Username == username && s.checkPassword(st.PasswordHash, password) {
				return Account{Role: role, ID: st.ID, Name: st.Name, Email: st.Email, Avatar: st.Avatar}, nil
			}
		}
	case shared.RoleTeacher:
		for _, t := range s.teachers {
			if t.Username == username && s.checkPassword(t.PasswordHash, password) {
				return Account{Role: role, ID: t.ID, Name: t.Name, Email: t.Email, Avatar: t.Avatar}, nil
			}
		}
	default:
		return Account{}, shared.ErrInvalidRole
	}
	return Account{}, shared.ErrInvalidCredentials
}

func (s *Store) checkPassword(hash, password string) bool {
	return hash != "" && s.hasher.Compare(hash, password)
}

// ══════════════════════════════════════════════════════════════════════════════
// QUERIES
// ══════════════════════════════════════════════════════════════════════════════

// Students возвращает копии всех студентов.
func (s *Store) Students() []Student {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Student, len(s.students))
	for i, st := range s.students {
		out[i] = st.Clone()
	}
	return out
}

// Student возвращает студента по ID.
func (s *Store) Student(id string) (Student, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.studentIndexLocked(id)
	if i < 0 {
		return Student{}, shared.ErrStudentNotFound
	}
	return s.students[i].Clone(), nil
}

// Teachers возвращает всех преподавателей.
func (s *Store) Teachers() []Teacher {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.teachers)
}

// Teacher возвращает преподавателя по ID.
func (s *Store) Teacher(id string) (Teacher, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.teacherIndexLocked(id)
	if i < 0 {
		return Teacher{}, shared.ErrTeacherNotFound
	}
	return s.teachers[i], nil
}

// AssignedStudents возвращает студентов, закреплённых за преподавателем.
func (s *Store) AssignedStudents(teacherID string) ([]Student, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.teacherIndexLocked(teacherID) < 0 {
		return nil, shared.ErrTeacherNotFound
	}
	var out []Student
	for _, st := range s.students {
		if st.IsAssignedTo(teacherID) {
			out = append(out, st.Clone())
		}
	}
	return out, nil
}

// Registrations возвращает заявки, ожидающие решения.
func (s *Store) Registrations() []Registration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.registrations)
}

// Announcements возвращает все объявления, новые первыми.
func (s *Store) Announcements() []Announcement {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.announcements)
}

// AnnouncementsFor возвращает объявления, которые видит студент:
// все глобальные и объявления его преподавателя.
func (s *Store) AnnouncementsFor(studentID string) ([]Announcement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.studentIndexLocked(studentID)
	if i < 0 {
		return nil, shared.ErrStudentNotFound
	}
	st := &s.students[i]

	var out []Announcement
	for _, a := range s.announcements {
		if a.VisibleTo(st) {
			out = append(out, a)
		}
	}
	return out, nil
}

// Activity возвращает последние записи журнала, новые первыми.
// limit <= 0 означает все записи.
func (s *Store) Activity(limit int) []ActivityEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 || limit > len(s.activity) {
		limit = len(s.activity)
	}
	return slices.Clone(s.activity[:limit])
}

func (s *Store) studentIndexLocked(id string) int {
	return slices.IndexFunc(s.students, func(st Student) bool { return st.ID == id })
}

func (s *Store) teacherIndexLocked(id string) int {
	return slices.IndexFunc(s.teachers, func(t Teacher) bool { return t.ID == id })
}

func (s *Store) registrationIndexLocked(username string) int {
	return slices.IndexFunc(s.registrations, func(r Registration) bool { return r.Username == username })
}

func (s *Store) usernameTakenLocked(username string) bool {
	if username == "" {
		return false
	}
	for _, st := range s.students {
		if strings.EqualFold(st.Username, username) {
			return true
		}
	}
	for _, t := range s.teachers {
		if strings.EqualFold(t.Username, username) {
			return true
		}
	}
	for _, r := range s.registrations {
		if strings.EqualFold(r.Username, username) {
			return true
		}
	}
	return false
}

// ══════════════════════════════════════════════════════════════════════════════
// IDENTIFIERS
// ══════════════════════════════════════════════════════════════════════════════

const (
	minPortalNumber = 100
	maxPortalNumber = 999
	randomIDTries   = 32
)

// newPortalIDLocked выбирает свободный номер в диапазоне 100..999:
// сначала случайно, затем перебором.
func (s *Store) newPortalIDLocked(prefix string) (string, error) {
	taken := func(id string) bool {
		if prefix == shared.StudentIDPrefix {
			return s.studentIndexLocked(id) >= 0
		}
		return s.teacherIndexLocked(id) >= 0
	}

	span := maxPortalNumber - minPortalNumber + 1
	for range randomIDTries {
		id := shared.FormatID(prefix, minPortalNumber+s.rnd.Intn(span))
		if !taken(id) {
			return id, nil
		}
	}
	for n := minPortalNumber; n <= maxPortalNumber; n++ {
		if id := shared.FormatID(prefix, n); !taken(id) {
			return id, nil
		}
	}
	return "", shared.ErrIDSpaceExhausted
}
