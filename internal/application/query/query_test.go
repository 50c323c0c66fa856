package query

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nextedu/portal/internal/domain/academic"
	"github.com/nextedu/portal/internal/domain/directory"
	"github.com/nextedu/portal/internal/domain/shared"
	"github.com/nextedu/portal/internal/infrastructure/persistence/local"
	"github.com/nextedu/portal/pkg/timeutil"
)

type plainHasher struct{}

func (plainHasher) Hash(pw string) (string, error) { return "plain:" + pw, nil }
func (plainHasher) Compare(hash, pw string) bool  { return hash == "plain:"+pw }

var fixedNow = time.Date(2024, 7, 20, 12, 0, 0, 0, timeutil.CampusTZ)

func clock() time.Time { return fixedNow }

func newSeededStore(t *testing.T) *directory.Store {
	t.Helper()
	return newSeededStoreWithSeed(t, 11)
}

func newSeededStoreWithSeed(t *testing.T, seed int64) *directory.Store {
	t.Helper()
	store := directory.NewStore(directory.Config{
		Snapshots:   local.NewMemoryStore(),
		Hasher:      plainHasher{},
		Synthesizer: academic.NewSynthesizer(academic.WithRandomSource(academic.NewRandomSource(seed))),
		Random:      academic.NewRandomSource(seed),
		Clock:       clock,
	})
	_, err := store.Open(context.Background())
	require.NoError(t, err)
	return store
}

type cacheKey struct{ generation, student, semester string }

type fakeCache struct {
	records map[cacheKey]academic.SemesterRecord
	getErr  error
	gets    int
	sets    int
}

func newFakeCache() *fakeCache {
	return &fakeCache{records: make(map[cacheKey]academic.SemesterRecord)}
}

func (c *fakeCache) Get(_ context.Context, gen, studentID, key string) (academic.SemesterRecord, bool, error) {
	c.gets++
	if c.getErr != nil {
		return academic.SemesterRecord{}, false, c.getErr
	}
	rec, ok := c.records[cacheKey{gen, studentID, key}]
	return rec, ok, nil
}

func (c *fakeCache) Set(_ context.Context, gen, studentID, key string, rec academic.SemesterRecord) error {
	c.sets++
	c.records[cacheKey{gen, studentID, key}] = rec
	return nil
}

type lookupCounter struct{ hits, misses, errs int }

func (o *lookupCounter) ObserveHistoryCache(hit bool, err error) {
	switch {
	case err != nil:
		o.errs++
	case hit:
		o.hits++
	default:
		o.misses++
	}
}

func TestSemesterRecord_CachesAfterFirstRead(t *testing.T) {
	store := newSeededStore(t)
	cache := newFakeCache()
	obs := &lookupCounter{}
	h := NewSemesterRecordHandler(store, cache, obs, nil)
	ctx := context.Background()

	first, err := h.Handle(ctx, SemesterRecordQuery{StudentID: "STU-001", SemesterKey: "sem1"})
	require.NoError(t, err)
	assert.False(t, first.Cached)
	require.NotNil(t, first.Attendance)
	require.NotNil(t, first.Results)
	require.NotNil(t, first.Standing)
	assert.Equal(t, []string{"sem1", "sem2"}, first.Available)

	second, err := h.Handle(ctx, SemesterRecordQuery{StudentID: "STU-001", SemesterKey: "sem1"})
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, first.Results.Summary, second.Results.Summary)

	assert.Equal(t, 1, cache.sets)
	assert.Equal(t, 1, obs.hits)
	assert.Equal(t, 1, obs.misses)
}

func TestSemesterRecord_ReseededDirectoryIgnoresOldRecords(t *testing.T) {
	cache := newFakeCache()
	ctx := context.Background()
	q := SemesterRecordQuery{StudentID: "STU-003", SemesterKey: "sem3"}

	first := newSeededStoreWithSeed(t, 1)
	view, err := NewSemesterRecordHandler(first, cache, nil, nil).Handle(ctx, q)
	require.NoError(t, err)
	require.False(t, view.Cached)

	// Same cache, fresh directory with different random histories.
	second := newSeededStoreWithSeed(t, 2)
	require.NotEqual(t, first.Generation(), second.Generation())

	view, err = NewSemesterRecordHandler(second, cache, nil, nil).Handle(ctx, q)
	require.NoError(t, err)
	assert.False(t, view.Cached)

	st, err := second.Student("STU-003")
	require.NoError(t, err)
	want := st.History.Semester("sem3")
	assert.Equal(t, want.Results, view.Results)
	assert.Equal(t, want.Attendance, view.Attendance)

	again, err := NewSemesterRecordHandler(second, cache, nil, nil).Handle(ctx, q)
	require.NoError(t, err)
	assert.True(t, again.Cached)
	assert.Equal(t, want.Results, again.Results)
}

func TestSemesterRecord_CacheErrorFallsBack(t *testing.T) {
	store := newSeededStore(t)
	cache := newFakeCache()
	cache.getErr = errors.New("connection refused")
	obs := &lookupCounter{}
	h := NewSemesterRecordHandler(store, cache, obs, nil)

	view, err := h.Handle(context.Background(), SemesterRecordQuery{StudentID: "STU-003", SemesterKey: "sem3"})
	require.NoError(t, err)
	assert.False(t, view.Cached)
	assert.NotNil(t, view.Results)
	assert.Equal(t, 1, obs.errs)
}

func TestSemesterRecord_Errors(t *testing.T) {
	store := newSeededStore(t)
	h := NewSemesterRecordHandler(store, nil, nil, nil)
	ctx := context.Background()

	tests := []struct {
		name  string
		query SemesterRecordQuery
		want  error
	}{
		{"bad key", SemesterRecordQuery{StudentID: "STU-001", SemesterKey: "semester-1"}, shared.ErrInvalidFormat},
		{"unknown student", SemesterRecordQuery{StudentID: "STU-999", SemesterKey: "sem1"}, shared.ErrStudentNotFound},
		{"current semester", SemesterRecordQuery{StudentID: "STU-001", SemesterKey: "sem3"}, shared.ErrSemesterNotFound},
		{"future semester", SemesterRecordQuery{StudentID: "STU-009", SemesterKey: "sem5"}, shared.ErrSemesterNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.Handle(ctx, tt.query)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestFees(t *testing.T) {
	store := newSeededStore(t)
	h := NewFeesHandler(store, clock)

	view, err := h.Handle("STU-002")
	require.NoError(t, err)
	assert.Equal(t, 500, view.TotalOutstanding)
	require.Len(t, view.Items, 3)

	exam := view.Items[1]
	assert.Equal(t, "Exam Fee", exam.Head)
	require.NotNil(t, exam.DaysUntilDue)
	assert.Equal(t, 5, *exam.DaysUntilDue)
	assert.False(t, exam.Overdue)

	assert.Nil(t, view.Items[0].DaysUntilDue, "settled items have no countdown")

	_, err = h.Handle("STU-404")
	assert.ErrorIs(t, err, shared.ErrStudentNotFound)
}

func TestStudentDashboard(t *testing.T) {
	store := newSeededStore(t)
	ctx := context.Background()

	_, err := store.PostAnnouncement(ctx, directory.AnnouncementParams{
		By: "Administrator", Scope: directory.ScopeGlobal, Content: "Campus closed on Friday",
	})
	require.NoError(t, err)
	_, err = store.PostAnnouncement(ctx, directory.AnnouncementParams{
		By: "Dr. Rajeev Menon", TeacherID: "FAC-002", Scope: directory.ScopeTeacher, Content: "Lab moved to room 4",
	})
	require.NoError(t, err)
	_, _, err = store.SendNote(ctx, "FAC-001", "STU-001", "Submit the report")
	require.NoError(t, err)

	h := NewStudentDashboardHandler(store, NewFeesHandler(store, clock), clock)
	d, err := h.Handle(ctx, "STU-001")
	require.NoError(t, err)

	assert.Equal(t, "Aarav Patel", d.Profile.Name)
	assert.Equal(t, 1, d.Unread)
	require.Len(t, d.Notifications, 1)
	assert.Equal(t, "Submit the report", d.Notifications[0].Message)

	require.Len(t, d.Announcements, 1, "FAC-002 announcement is not visible to STU-001")
	assert.Equal(t, "Campus closed on Friday", d.Announcements[0].Content)

	require.NotNil(t, d.Latest)
	assert.Equal(t, "sem2", d.Latest.Semester)
	assert.True(t, d.Attendance.Overall.IsAvailable())
	assert.NotEqual(t, academic.StandingUnknown, d.Attendance.Standing)
	assert.Equal(t, 500, d.FeesDue)

	_, err = h.Handle(ctx, "STU-404")
	assert.ErrorIs(t, err, shared.ErrStudentNotFound)
}

func TestStudentDashboard_NewStudentHasNoHistory(t *testing.T) {
	store := newSeededStore(t)
	ctx := context.Background()

	st, err := store.ApproveRegistration(ctx, "priya.chauhan")
	require.NoError(t, err)

	d, err := NewStudentDashboardHandler(store, nil, clock).Handle(ctx, st.ID)
	require.NoError(t, err)
	assert.Nil(t, d.Latest)
	assert.False(t, d.Attendance.Overall.IsAvailable())
	assert.Equal(t, academic.StandingUnknown, d.Attendance.Standing)
	assert.Empty(t, d.Attendance.Warning)
	assert.NotNil(t, d.Notifications)
}

func TestTeacherDashboard(t *testing.T) {
	store := newSeededStore(t)
	ctx := context.Background()

	_, err := store.PostAnnouncement(ctx, directory.AnnouncementParams{
		By: "Dr. Meera Iyer", TeacherID: "FAC-001", Scope: directory.ScopeTeacher, Content: "Quiz on Monday",
	})
	require.NoError(t, err)
	_, _, err = store.TagStudent(ctx, "FAC-001", "STU-004", "mentor")
	require.NoError(t, err)

	h := NewTeacherDashboardHandler(store, clock)
	d, err := h.Handle("FAC-001")
	require.NoError(t, err)

	ids := make([]string, len(d.Students))
	for i, s := range d.Students {
		ids[i] = s.ID
	}
	assert.ElementsMatch(t, []string{"STU-001", "STU-004", "STU-007", "STU-010"}, ids)
	require.Len(t, d.Announcements, 1)

	for _, s := range d.Students {
		if s.ID == "STU-004" {
			assert.Equal(t, []string{"mentor"}, s.Tags)
		}
		assert.NotEmpty(t, s.CGPA)
	}

	require.Len(t, d.Assignments, 3)
	assert.Equal(t, []string{"3/4", "3/4", "1/4"}, []string{
		d.Assignments[0].Submissions, d.Assignments[1].Submissions, d.Assignments[2].Submissions,
	})
	assert.Len(t, d.StudyMaterials, 3)

	// Submissions never exceed the current roster.
	_, err = store.RemoveStudent(ctx, "STU-010")
	require.NoError(t, err)
	_, err = store.RemoveStudent(ctx, "STU-007")
	require.NoError(t, err)
	d, err = h.Handle("FAC-001")
	require.NoError(t, err)
	assert.Equal(t, "2/2", d.Assignments[0].Submissions)

	_, err = h.Handle("FAC-999")
	assert.ErrorIs(t, err, shared.ErrTeacherNotFound)
}

type fakeVersions struct {
	versions []directory.SnapshotVersion
	err      error
}

func (f fakeVersions) History(context.Context, int) ([]directory.SnapshotVersion, error) {
	return f.versions, f.err
}

func TestAdminOverview(t *testing.T) {
	store := newSeededStore(t)
	ctx := context.Background()

	_, err := store.LogActivity(ctx, "Dr. Meera Iyer", "Posted announcement for their students.")
	require.NoError(t, err)

	versions := fakeVersions{versions: []directory.SnapshotVersion{{ID: 3, Students: 10, Teachers: 3, SavedAt: fixedNow}}}
	h := NewAdminHandler(store, versions, nil, clock)

	o := h.Overview(ctx, 10)
	assert.Equal(t, 10, o.Stats.Students)
	assert.Equal(t, 3, o.Stats.Teachers)
	assert.True(t, o.UnsavedChanges)
	require.Len(t, o.Registrations, 1)
	assert.Equal(t, "priya.chauhan", o.Registrations[0].Username)
	assert.Equal(t, "20-05-2004", o.Registrations[0].DOB)
	require.Len(t, o.Activity, 1)
	assert.Equal(t, "Dr. Meera Iyer", o.Activity[0].Actor)
	assert.NotEmpty(t, o.Activity[0].When)
	assert.Len(t, o.Versions, 1)
}

func TestAdminOverview_VersionErrorIsNotFatal(t *testing.T) {
	store := newSeededStore(t)
	h := NewAdminHandler(store, fakeVersions{err: errors.New("db down")}, nil, clock)

	o := h.Overview(context.Background(), 5)
	assert.Empty(t, o.Versions)
	assert.Equal(t, 10, o.Stats.Students)
}

func TestAdminLists_Paginate(t *testing.T) {
	store := newSeededStore(t)
	h := NewAdminHandler(store, nil, nil, clock)

	page := h.Students(shared.NewPagination(2, 4))
	assert.Equal(t, 10, page.Total)
	assert.Equal(t, 2, page.Page)
	assert.Len(t, page.Items, 4)

	last := h.Students(shared.NewPagination(3, 4))
	assert.Len(t, last.Items, 2)

	beyond := h.Teachers(shared.NewPagination(5, 20))
	assert.Equal(t, 3, beyond.Total)
	assert.NotNil(t, beyond.Items)
	assert.Empty(t, beyond.Items)
}
