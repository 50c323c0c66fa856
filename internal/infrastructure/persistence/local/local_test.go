package local

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nextedu/portal/internal/domain/directory"
	"github.com/nextedu/portal/internal/domain/shared"
)

func sampleSnapshot() *directory.Snapshot {
	return &directory.Snapshot{
		Students: []directory.Student{{ID: "STU-001", Name: "Aarav Sharma", Tags: []string{"Topper"}}},
		Teachers: []directory.Teacher{{ID: "FAC-001", Name: "Dr. Sharma"}},
		SavedAt:  time.Date(2024, 7, 1, 9, 0, 0, 0, time.UTC),
	}
}

func TestMemoryStore(t *testing.T) {
	m := NewMemoryStore()
	ctx := context.Background()

	_, err := m.Load(ctx)
	assert.ErrorIs(t, err, shared.ErrSnapshotNotFound)

	snap := sampleSnapshot()
	require.NoError(t, m.Save(ctx, snap))
	snap.Students[0].Tags[0] = "changed"

	got, err := m.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Topper", got.Students[0].Tags[0])
	assert.Equal(t, 1, m.Saves())
}

func TestFileStore_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "portal.json")
	f := NewFileStore(path)
	ctx := context.Background()

	_, err := f.Load(ctx)
	assert.ErrorIs(t, err, shared.ErrSnapshotNotFound)

	require.NoError(t, f.Save(ctx, sampleSnapshot()))
	got, err := f.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Aarav Sharma", got.Students[0].Name)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestFileStore_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "portal.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := NewFileStore(path).Load(context.Background())
	assert.ErrorIs(t, err, shared.ErrSnapshotCorrupt)
}
