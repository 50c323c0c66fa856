// Package jobs contains the portal's scheduled jobs.
package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nextedu/portal/internal/domain/directory"
	"github.com/nextedu/portal/internal/domain/shared"
)

// Flusher is the part of directory.Store the autosave job needs.
type Flusher interface {
	Flush(ctx context.Context) (bool, error)
	Stats() directory.Stats
}

// AutosaveSnapshotJob persists the directory when it has unsaved changes.
type AutosaveSnapshotJob struct {
	store     Flusher
	publisher shared.EventPublisher
	logger    *slog.Logger
	now       func() time.Time
}

// NewAutosaveSnapshotJob creates the job. publisher may be nil.
func NewAutosaveSnapshotJob(store Flusher, publisher shared.EventPublisher, logger *slog.Logger) *AutosaveSnapshotJob {
	if logger == nil {
		logger = slog.Default()
	}
	return &AutosaveSnapshotJob{
		store:     store,
		publisher: publisher,
		logger:    logger.With("job", "autosave_snapshot"),
		now:       time.Now,
	}
}

func (j *AutosaveSnapshotJob) Name() string { return "autosave_snapshot" }

func (j *AutosaveSnapshotJob) Description() string {
	return "Saves the directory snapshot when it has unsaved changes"
}

// Run flushes the store and announces a successful save.
func (j *AutosaveSnapshotJob) Run(ctx context.Context) error {
	start := j.now()
	saved, err := j.store.Flush(ctx)
	if err != nil {
		return fmt.Errorf("failed to flush directory: %w", err)
	}
	if !saved {
		return nil
	}

	stats := j.store.Stats()
	elapsed := j.now().Sub(start)
	j.logger.Info("snapshot saved",
		"students", stats.Students,
		"teachers", stats.Teachers,
		"duration", elapsed.String(),
	)

	if j.publisher != nil {
		if err := j.publisher.Publish(shared.NewSnapshotSavedEvent(stats.Students, stats.Teachers, elapsed)); err != nil {
			j.logger.Warn("failed to publish snapshot event", "error", err)
		}
	}
	return nil
}
