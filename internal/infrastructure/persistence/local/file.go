package local

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/nextedu/portal/internal/domain/directory"
	"github.com/nextedu/portal/internal/domain/shared"
)

// FileStore keeps the snapshot as one JSON file. Writes go to a temporary
// file in the same directory and are renamed over the target.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore stores the snapshot at path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

var _ directory.SnapshotStore = (*FileStore)(nil)

// Path returns the snapshot file location.
func (f *FileStore) Path() string { return f.path }

// Load reads and decodes the snapshot file.
func (f *FileStore) Load(context.Context) (*directory.Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, shared.ErrSnapshotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot file: %w", err)
	}

	var snap directory.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, shared.WrapError("snapshot", "Load", shared.ErrSnapshotCorrupt, "snapshot cannot be decoded", err)
	}
	return &snap, nil
}

// Save encodes snap and atomically replaces the file.
func (f *FileStore) Save(ctx context.Context, snap *directory.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create snapshot directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".snapshot-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close snapshot: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("failed to replace snapshot: %w", err)
	}
	return nil
}
