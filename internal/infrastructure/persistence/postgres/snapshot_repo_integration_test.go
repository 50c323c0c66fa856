//go:build integration

package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nextedu/portal/internal/domain/directory"
	"github.com/nextedu/portal/internal/domain/shared"
	"github.com/nextedu/portal/pkg/testutil/containers"
)

func newTestRepo(t *testing.T, opts ...SnapshotOption) (*SnapshotRepository, *Connection) {
	t.Helper()
	ctx := context.Background()

	pg := containers.NewPostgresContainer(t)
	conn, err := NewConnectionFromURL(ctx, pg.URL, DefaultPoolOptions())
	require.NoError(t, err)
	t.Cleanup(conn.Close)

	require.NoError(t, NewMigrator(conn).Migrate(ctx))
	return NewSnapshotRepository(conn, opts...), conn
}

func TestSnapshotRepository_LoadMissing(t *testing.T) {
	repo, _ := newTestRepo(t)

	_, err := repo.Load(context.Background())
	assert.ErrorIs(t, err, shared.ErrSnapshotNotFound)
}

func TestSnapshotRepository_SaveAndLoad(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	snap := &directory.Snapshot{
		Students: []directory.Student{{ID: "STU-101", Name: "Asha Rao", Semester: 3, Username: "asha"}},
		Teachers: []directory.Teacher{{ID: "FAC-001", Name: "Dr. Sharma"}},
		SavedAt:  time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
	}
	require.NoError(t, repo.Save(ctx, snap))

	got, err := repo.Load(ctx)
	require.NoError(t, err)
	require.Len(t, got.Students, 1)
	assert.Equal(t, "Asha Rao", got.Students[0].Name)
	assert.Equal(t, 3, got.Students[0].Semester)
	assert.True(t, snap.SavedAt.Equal(got.SavedAt))
}

func TestSnapshotRepository_HistoryIsPruned(t *testing.T) {
	repo, _ := newTestRepo(t, WithHistoryDepth(3))
	ctx := context.Background()

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := range 5 {
		snap := &directory.Snapshot{
			Students: make([]directory.Student, i),
			SavedAt:  base.Add(time.Duration(i) * time.Hour),
		}
		require.NoError(t, repo.Save(ctx, snap))
	}

	history, err := repo.History(ctx, 0)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, 4, history[0].Students)
	assert.Equal(t, 2, history[2].Students)

	require.NoError(t, repo.Restore(ctx, history[2].ID))
	got, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, got.Students, 2)

	assert.ErrorIs(t, repo.Restore(ctx, 999999), shared.ErrSnapshotNotFound)
}

func TestSnapshotRepository_CorruptPayload(t *testing.T) {
	repo, conn := newTestRepo(t)
	ctx := context.Background()

	_, err := conn.Exec(ctx, `
		INSERT INTO portal_snapshots (name, payload, saved_at)
		VALUES ($1, '{"students": "nope"}', NOW())
	`, DefaultSnapshotName)
	require.NoError(t, err)

	_, err = repo.Load(ctx)
	assert.ErrorIs(t, err, shared.ErrSnapshotCorrupt)
}

func TestMigrator_StatusAndRollback(t *testing.T) {
	_, conn := newTestRepo(t)
	ctx := context.Background()
	m := NewMigrator(conn)

	status, err := m.Status(ctx)
	require.NoError(t, err)
	for _, mig := range status {
		assert.True(t, mig.IsApplied, mig.Name)
	}

	require.NoError(t, m.Rollback(ctx))
	status, err = m.Status(ctx)
	require.NoError(t, err)
	assert.False(t, status[len(status)-1].IsApplied)

	require.NoError(t, m.Migrate(ctx))
}

func TestConnection_Health(t *testing.T) {
	_, conn := newTestRepo(t)

	status, err := conn.Health(context.Background())
	require.NoError(t, err)
	assert.True(t, status.Healthy)

	conn.Close()
	_, err = conn.Health(context.Background())
	assert.ErrorIs(t, err, ErrConnectionClosed)
}
