package jobs

import (
	"context"

	"github.com/nextedu/portal/internal/domain/directory"
)

// StatsSource reports directory sizes.
type StatsSource interface {
	Stats() directory.Stats
	IsDirty() bool
}

// GaugeSink receives directory sizes. The metrics package implements it.
type GaugeSink interface {
	SetDirectoryStats(stats directory.Stats, dirty bool)
}

// DirectoryGaugesJob copies directory sizes into gauges.
type DirectoryGaugesJob struct {
	source StatsSource
	sink   GaugeSink
}

func NewDirectoryGaugesJob(source StatsSource, sink GaugeSink) *DirectoryGaugesJob {
	return &DirectoryGaugesJob{source: source, sink: sink}
}

func (j *DirectoryGaugesJob) Name() string { return "directory_gauges" }

func (j *DirectoryGaugesJob) Description() string {
	return "Publishes directory sizes as gauges"
}

func (j *DirectoryGaugesJob) Run(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	j.sink.SetDirectoryStats(j.source.Stats(), j.source.IsDirty())
	return nil
}
