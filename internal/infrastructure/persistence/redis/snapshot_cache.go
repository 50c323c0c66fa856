package redis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nextedu/portal/internal/domain/directory"
	"github.com/nextedu/portal/pkg/retry"
)

// DefaultSnapshotTTL bounds how stale a cached snapshot can be.
const DefaultSnapshotTTL = 10 * time.Minute

// ErrVersionsUnsupported is returned by History and Restore when the
// wrapped store keeps no versions.
var ErrVersionsUnsupported = errors.New("cache: wrapped snapshot store keeps no versions")

// SnapshotCache is a read-through directory.SnapshotStore. Redis failures
// are logged and never fail a Load or Save; the wrapped store is the
// source of truth.
type SnapshotCache struct {
	next    directory.SnapshotStore
	cache   *Cache
	key     string
	ttl     time.Duration
	retrier *retry.Retrier
	logger  *slog.Logger
}

// NewSnapshotCache wraps next. A non-positive ttl uses DefaultSnapshotTTL.
func NewSnapshotCache(next directory.SnapshotStore, cache *Cache, name string, ttl time.Duration, logger *slog.Logger) *SnapshotCache {
	if ttl <= 0 {
		ttl = DefaultSnapshotTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SnapshotCache{
		next:    next,
		cache:   cache,
		key:     SnapshotKey(name),
		ttl:     ttl,
		retrier: retry.CacheRetrier(),
		logger:  logger.With("component", "snapshot_cache"),
	}
}

var _ directory.VersionedSnapshotStore = (*SnapshotCache)(nil)

// Load returns the cached snapshot, falling back to the wrapped store.
func (s *SnapshotCache) Load(ctx context.Context) (*directory.Snapshot, error) {
	snap, err := retry.Value(ctx, s.retrier, func(ctx context.Context) (*directory.Snapshot, error) {
		var snap directory.Snapshot
		if err := s.cache.Get(ctx, s.key, &snap); err != nil {
			if IsMiss(err) {
				return nil, retry.Permanent(err)
			}
			return nil, retry.Retryable(err)
		}
		return &snap, nil
	})
	if err == nil {
		return snap, nil
	}
	if !IsMiss(err) {
		s.logger.Warn("snapshot cache read failed", "error", err)
	}

	snap, err = s.next.Load(ctx)
	if err != nil {
		return nil, err
	}
	s.store(ctx, snap)
	return snap, nil
}

// Save writes through to the wrapped store, then refreshes the cache.
// On failure the cached copy is dropped so the next Load goes to the store.
func (s *SnapshotCache) Save(ctx context.Context, snap *directory.Snapshot) error {
	if err := s.next.Save(ctx, snap); err != nil {
		if delErr := s.cache.Delete(ctx, s.key); delErr != nil {
			s.logger.Warn("snapshot cache evict failed", "error", delErr)
		}
		return err
	}
	s.store(ctx, snap)
	return nil
}

// History lists versions of the wrapped store.
func (s *SnapshotCache) History(ctx context.Context, limit int) ([]directory.SnapshotVersion, error) {
	versioned, ok := s.next.(directory.VersionedSnapshotStore)
	if !ok {
		return nil, ErrVersionsUnsupported
	}
	return versioned.History(ctx, limit)
}

// Restore restores a version in the wrapped store and drops the cached
// copy, so the next Load sees the restored snapshot.
func (s *SnapshotCache) Restore(ctx context.Context, id int64) error {
	versioned, ok := s.next.(directory.VersionedSnapshotStore)
	if !ok {
		return ErrVersionsUnsupported
	}
	if err := versioned.Restore(ctx, id); err != nil {
		return err
	}
	return s.Evict(ctx)
}

// Evict drops the cached snapshot.
func (s *SnapshotCache) Evict(ctx context.Context) error {
	if err := s.cache.Delete(ctx, s.key); err != nil {
		return fmt.Errorf("failed to evict cached snapshot: %w", err)
	}
	return nil
}

func (s *SnapshotCache) store(ctx context.Context, snap *directory.Snapshot) {
	err := s.retrier.Do(ctx, func(ctx context.Context) error {
		return retry.Retryable(s.cache.Set(ctx, s.key, snap, s.ttl))
	})
	if err != nil {
		s.logger.Warn("snapshot cache write failed", "error", err)
	}
}
