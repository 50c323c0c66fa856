package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nextedu/portal/internal/domain/academic"
)

// DefaultHistoryTTL keeps records for a day. Histories only change when a
// student's semester changes, and that path invalidates explicitly.
const DefaultHistoryTTL = 24 * time.Hour

// HistoryCache caches semester records per student.
type HistoryCache struct {
	cache *Cache
	ttl   time.Duration
}

// NewHistoryCache creates a HistoryCache. A non-positive ttl uses DefaultHistoryTTL.
func NewHistoryCache(cache *Cache, ttl time.Duration) *HistoryCache {
	if ttl <= 0 {
		ttl = DefaultHistoryTTL
	}
	return &HistoryCache{cache: cache, ttl: ttl}
}

// Get returns a record cached for the given directory generation.
// found is false on a miss.
func (h *HistoryCache) Get(ctx context.Context, generation, studentID, semesterKey string) (rec academic.SemesterRecord, found bool, err error) {
	if err := h.cache.Get(ctx, HistoryKey(generation, studentID, semesterKey), &rec); err != nil {
		if IsMiss(err) {
			return academic.SemesterRecord{}, false, nil
		}
		return academic.SemesterRecord{}, false, err
	}
	return rec, true, nil
}

// Set stores a record.
func (h *HistoryCache) Set(ctx context.Context, generation, studentID, semesterKey string, rec academic.SemesterRecord) error {
	if err := h.cache.Set(ctx, HistoryKey(generation, studentID, semesterKey), rec, h.ttl); err != nil {
		return fmt.Errorf("failed to cache %s/%s: %w", studentID, semesterKey, err)
	}
	return nil
}

// Invalidate drops every cached semester of a student in all generations.
func (h *HistoryCache) Invalidate(ctx context.Context, studentID string) error {
	if _, err := h.cache.DeleteByPattern(ctx, HistoryPattern(studentID)); err != nil {
		return fmt.Errorf("failed to invalidate history of %s: %w", studentID, err)
	}
	return nil
}

// Purge drops every cached record. Returns the number of deleted keys.
func (h *HistoryCache) Purge(ctx context.Context) (int, error) {
	n, err := h.cache.DeleteByPattern(ctx, PrefixHistory+"*")
	if err != nil {
		return n, fmt.Errorf("failed to purge history cache: %w", err)
	}
	return n, nil
}

// IsMiss reports a cache miss.
func IsMiss(err error) bool {
	return errors.Is(err, ErrCacheMiss)
}
