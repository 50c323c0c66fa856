package directory

import (
	"context"
	"slices"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// SNAPSHOT PORT
// Хранилище снимков реализуется в infrastructure/persistence.
// ══════════════════════════════════════════════════════════════════════════════

// Snapshot - полное состояние каталога пользователей.
// Сохраняется одним JSON-документом без версии и миграций.
type Snapshot struct {
	Students      []Student       `json:"students"`
	Teachers      []Teacher       `json:"teachers"`
	Registrations []Registration  `json:"pendingStudents"`
	Announcements []Announcement  `json:"announcements"`
	Activity      []ActivityEntry `json:"activity"`
	Assignments   []Assignment    `json:"assignments"`
	Materials     []StudyMaterial `json:"studyMaterials"`
	SavedAt       time.Time       `json:"savedAt"`
}

// SnapshotStore загружает и сохраняет снимок.
type SnapshotStore interface {
	// Load возвращает последний сохранённый снимок.
	// Возвращает shared.ErrSnapshotNotFound, если снимка ещё нет.
	Load(ctx context.Context) (*Snapshot, error)

	// Save заменяет сохранённый снимок.
	Save(ctx context.Context, snap *Snapshot) error
}

// SnapshotVersion - описание одной сохранённой версии снимка.
type SnapshotVersion struct {
	ID       int64     `json:"id"`
	Students int       `json:"students"`
	Teachers int       `json:"teachers"`
	SavedAt  time.Time `json:"savedAt"`
}

// VersionedSnapshotStore хранит предыдущие версии снимка и умеет
// вернуться к любой из них.
type VersionedSnapshotStore interface {
	SnapshotStore
	History(ctx context.Context, limit int) ([]SnapshotVersion, error)
	Restore(ctx context.Context, id int64) error
}

// Clone возвращает глубокую копию снимка (кроме неизменяемых историй).
func (s *Snapshot) Clone() *Snapshot {
	if s == nil {
		return nil
	}
	out := &Snapshot{
		Students:      make([]Student, len(s.Students)),
		Teachers:      slices.Clone(s.Teachers),
		Registrations: slices.Clone(s.Registrations),
		Announcements: slices.Clone(s.Announcements),
		Activity:      slices.Clone(s.Activity),
		Assignments:   slices.Clone(s.Assignments),
		Materials:     slices.Clone(s.Materials),
		SavedAt:       s.SavedAt,
	}
	for i, st := range s.Students {
		out.Students[i] = st.Clone()
	}
	return out
}
