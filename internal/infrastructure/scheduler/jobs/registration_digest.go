package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/nextedu/portal/internal/domain/directory"
	"github.com/nextedu/portal/pkg/timeutil"
)

// RegistrationSource lists pending registrations.
type RegistrationSource interface {
	Registrations() []directory.Registration
}

// RegistrationDigest summarizes the approval queue.
type RegistrationDigest struct {
	Pending   int           `json:"pending"`
	OldestAge time.Duration `json:"oldestAge"`
	OldestAt  time.Time     `json:"oldestAt"`
	Oldest    string        `json:"oldest,omitempty"`
	Stale     int           `json:"stale"`
}

// RegistrationDigestJob reminds the admin about the approval queue.
type RegistrationDigestJob struct {
	source     RegistrationSource
	staleAfter time.Duration
	logger     *slog.Logger
	now        func() time.Time

	last RegistrationDigest
}

// NewRegistrationDigestJob creates the job. Requests older than
// staleAfter are counted as stale.
func NewRegistrationDigestJob(source RegistrationSource, staleAfter time.Duration, logger *slog.Logger) *RegistrationDigestJob {
	if logger == nil {
		logger = slog.Default()
	}
	if staleAfter <= 0 {
		staleAfter = 72 * time.Hour
	}
	return &RegistrationDigestJob{
		source:     source,
		staleAfter: staleAfter,
		logger:     logger.With("job", "registration_digest"),
		now:        time.Now,
	}
}

func (j *RegistrationDigestJob) Name() string { return "registration_digest" }

func (j *RegistrationDigestJob) Description() string {
	return "Logs a daily summary of pending registrations"
}

func (j *RegistrationDigestJob) Run(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	digest := j.summarize(j.source.Registrations())
	j.last = digest
	if digest.Pending == 0 {
		j.logger.Debug("no pending registrations")
		return nil
	}

	j.logger.Info("pending registrations",
		"pending", digest.Pending,
		"stale", digest.Stale,
		"oldest", digest.Oldest,
		"submitted", timeutil.FormatRelative(j.now(), digest.OldestAt),
	)
	return nil
}

// Last returns the digest of the previous run.
func (j *RegistrationDigestJob) Last() RegistrationDigest {
	return j.last
}

func (j *RegistrationDigestJob) summarize(regs []directory.Registration) RegistrationDigest {
	now := j.now()
	d := RegistrationDigest{Pending: len(regs)}
	for _, r := range regs {
		age := now.Sub(r.SubmittedAt)
		if age > j.staleAfter {
			d.Stale++
		}
		if age > d.OldestAge {
			d.OldestAge = age
			d.Oldest = r.Username
			d.OldestAt = r.SubmittedAt
		}
	}
	return d
}
