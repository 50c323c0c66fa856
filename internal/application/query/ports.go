// Package query contains the portal's read models: what each dashboard
// shows, assembled from the directory and the caches.
package query

import (
	"context"
	"time"

	"github.com/nextedu/portal/internal/domain/academic"
	"github.com/nextedu/portal/internal/domain/directory"
)

// Directory is the read side of directory.Store.
type Directory interface {
	Students() []directory.Student
	Student(id string) (directory.Student, error)
	Teachers() []directory.Teacher
	Teacher(id string) (directory.Teacher, error)
	AssignedStudents(teacherID string) ([]directory.Student, error)
	Registrations() []directory.Registration
	Announcements() []directory.Announcement
	AnnouncementsFor(studentID string) ([]directory.Announcement, error)
	Assignments(teacherID string) []directory.Assignment
	Materials(teacherID string) []directory.StudyMaterial
	Activity(limit int) []directory.ActivityEntry
	Stats() directory.Stats
	IsDirty() bool
	Generation() string
}

// RecordCache caches semester records per student. Records are scoped
// to a directory generation; a reseeded or restored directory never
// sees records cached for an earlier one.
type RecordCache interface {
	Get(ctx context.Context, generation, studentID, semesterKey string) (academic.SemesterRecord, bool, error)
	Set(ctx context.Context, generation, studentID, semesterKey string, rec academic.SemesterRecord) error
}

// CacheObserver receives cache lookups.
type CacheObserver interface {
	ObserveHistoryCache(hit bool, err error)
}

// SnapshotVersions lists stored snapshot versions.
type SnapshotVersions interface {
	History(ctx context.Context, limit int) ([]directory.SnapshotVersion, error)
}

// Clock returns the current time.
type Clock func() time.Time
