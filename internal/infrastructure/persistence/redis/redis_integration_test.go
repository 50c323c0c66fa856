//go:build integration

package redis

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
	"github.com/nextedu/portal/pkg/testutil/containers"
)

func newTestCache(t *testing.T) *Cache {
	t.Helper()
	rc := containers.NewRedisContainer(t)
	cache, err := NewCache(context.Background(), Config{URL: rc.URL})
	require.NoError(t, err)
	t.Cleanup(func() { _ = cache.Close() })
	return cache
}

func TestHistoryCache_RoundTripAndInvalidate(t *testing.T) {
	cache := newTestCache(t)
	hc := NewHistoryCache(cache, time.Minute)
	ctx := context.Background()

	_, found, err := hc.Get(ctx, "g1", "STU-001", "sem1")
	require.NoError(t, err)
	assert.False(t, found)

	rec := academic.SemesterRecord{
		Attendance: &academic.AttendanceRecord{
			Subjects: []academic.AttendanceSubject{{Name: "Physics", Type: academic.SubjectTheory, Conducted: 40, Present: 35, Absent: 5}},
			Overall:  academic.NewPercentage(87.5),
		},
	}
	require.NoError(t, hc.Set(ctx, "g1", "STU-001", "sem1", rec))
	require.NoError(t, hc.Set(ctx, "g1", "STU-001", "sem2", rec))
	require.NoError(t, hc.Set(ctx, "g1", "STU-002", "sem1", rec))

	got, found, err := hc.Get(ctx, "g1", "STU-001", "sem1")
	require.NoError(t, err)
	require.True(t, found)
	require.NotNil(t, got.Attendance)
	assert.Equal(t, 35, got.Attendance.Subjects[0].Present)
	assert.Nil(t, got.Results)

	ttl, err := cache.TTL(ctx, HistoryKey("g1", "STU-001", "sem1"))
	require.NoError(t, err)
	assert.Greater(t, ttl, 50*time.Second)

	_, found, err = hc.Get(ctx, "g2", "STU-001", "sem1")
	require.NoError(t, err)
	assert.False(t, found, "records of another generation are not visible")

	require.NoError(t, hc.Invalidate(ctx, "STU-001"))
	_, found, err = hc.Get(ctx, "g1", "STU-001", "sem2")
	require.NoError(t, err)
	assert.False(t, found)
	_, found, err = hc.Get(ctx, "g1", "STU-002", "sem1")
	require.NoError(t, err)
	assert.True(t, found)
}

func TestHistoryCache_Purge(t *testing.T) {
	cache := newTestCache(t)
	hc := NewHistoryCache(cache, time.Minute)
	ctx := context.Background()

	rec := academic.SemesterRecord{Attendance: &academic.AttendanceRecord{Overall: academic.NewPercentage(80)}}
	require.NoError(t, hc.Set(ctx, "g1", "STU-001", "sem1", rec))
	require.NoError(t, hc.Set(ctx, "g2", "STU-002", "sem1", rec))
	require.NoError(t, cache.Set(ctx, RateLimitKey("1.2.3.4", "login", 1), 1, time.Minute))

	n, err := hc.Purge(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	_, found, err := hc.Get(ctx, "g2", "STU-002", "sem1")
	require.NoError(t, err)
	assert.False(t, found)
	var hits int
	require.NoError(t, cache.Get(ctx, RateLimitKey("1.2.3.4", "login", 1), &hits))
	assert.Equal(t, 1, hits)
}

type countingStore struct {
	snap  *directory.Snapshot
	loads int
	fail  error
}

func (s *countingStore) Load(context.Context) (*directory.Snapshot, error) {
	s.loads++
	if s.snap == nil {
		return nil, shared.ErrSnapshotNotFound
	}
	return s.snap, nil
}

func (s *countingStore) Save(_ context.Context, snap *directory.Snapshot) error {
	if s.fail != nil {
		return s.fail
	}
	s.snap = snap
	return nil
}

func TestSnapshotCache_ReadThrough(t *testing.T) {
	cache := newTestCache(t)
	inner := &countingStore{}
	sc := NewSnapshotCache(inner, cache, "portal", time.Minute, nil)
	ctx := context.Background()

	_, err := sc.Load(ctx)
	assert.ErrorIs(t, err, shared.ErrSnapshotNotFound)

	snap := &directory.Snapshot{Teachers: []directory.Teacher{{ID: "FAC-001", Name: "Dr. Sharma"}}}
	require.NoError(t, sc.Save(ctx, snap))

	loadsBefore := inner.loads
	got, err := sc.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Dr. Sharma", got.Teachers[0].Name)
	assert.Equal(t, loadsBefore, inner.loads)

	inner.fail = errors.New("db down")
	assert.Error(t, sc.Save(ctx, snap))
	_, err = sc.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, loadsBefore+1, inner.loads)
}

// versionedStore keeps every save; Restore makes an old one current.
type versionedStore struct {
	countingStore
	saved []*directory.Snapshot
}

func (s *versionedStore) Save(ctx context.Context, snap *directory.Snapshot) error {
	s.saved = append(s.saved, snap)
	return s.countingStore.Save(ctx, snap)
}

func (s *versionedStore) History(context.Context, int) ([]directory.SnapshotVersion, error) {
	out := make([]directory.SnapshotVersion, len(s.saved))
	for i, snap := range s.saved {
		out[i] = directory.SnapshotVersion{ID: int64(i + 1), Teachers: len(snap.Teachers)}
	}
	return out, nil
}

func (s *versionedStore) Restore(_ context.Context, id int64) error {
	if id < 1 || int(id) > len(s.saved) {
		return shared.ErrSnapshotNotFound
	}
	s.snap = s.saved[id-1]
	return nil
}

func TestSnapshotCache_RestoreDropsCachedSnapshot(t *testing.T) {
	cache := newTestCache(t)
	inner := &versionedStore{}
	sc := NewSnapshotCache(inner, cache, "portal", time.Minute, nil)
	ctx := context.Background()

	require.NoError(t, sc.Save(ctx, &directory.Snapshot{Teachers: []directory.Teacher{{ID: "FAC-001", Name: "Dr. Sharma"}}}))
	require.NoError(t, sc.Save(ctx, &directory.Snapshot{Teachers: []directory.Teacher{{ID: "FAC-001", Name: "Dr. Verma"}}}))

	got, err := sc.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Dr. Verma", got.Teachers[0].Name)

	versions, err := sc.History(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, versions, 2)

	require.NoError(t, sc.Restore(ctx, 1))
	got, err = sc.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Dr. Sharma", got.Teachers[0].Name)

	assert.ErrorIs(t, sc.Restore(ctx, 9), shared.ErrSnapshotNotFound)
}

func TestSnapshotCache_VersionsNeedVersionedStore(t *testing.T) {
	cache := newTestCache(t)
	sc := NewSnapshotCache(&countingStore{}, cache, "portal", time.Minute, nil)

	_, err := sc.History(context.Background(), 0)
	assert.ErrorIs(t, err, ErrVersionsUnsupported)
	assert.ErrorIs(t, sc.Restore(context.Background(), 1), ErrVersionsUnsupported)
}

func TestRateLimiter_Window(t *testing.T) {
	cache := newTestCache(t)
	rl := NewRateLimiter(cache, 2, time.Minute)
	rl.now = func() time.Time { return time.Unix(600, 0) }
	ctx := context.Background()

	for i, want := range []bool{true, true, false} {
		ok, _, err := rl.Allow(ctx, "STU-001", "chatbot")
		require.NoError(t, err)
		assert.Equal(t, want, ok, "request %d", i)
	}

	ok, remaining, err := rl.Allow(ctx, "STU-002", "chatbot")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1, remaining)

	rl.now = func() time.Time { return time.Unix(660, 0) }
	ok, _, err = rl.Allow(ctx, "STU-001", "chatbot")
	require.NoError(t, err)
	assert.True(t, ok)
}
