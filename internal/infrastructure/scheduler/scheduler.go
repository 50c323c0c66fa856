// Package scheduler runs the portal's background jobs: snapshot
// autosave, directory gauges and the registration digest.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// JOB INTERFACE
// ══════════════════════════════════════════════════════════════════════════════

// Job is a unit of background work.
type Job interface {
	Name() string
	Description() string

	// Run executes the job. ctx is cancelled when the scheduler stops.
	Run(ctx context.Context) error
}

// Schedule decides when a job runs next.
type Schedule interface {
	Next(t time.Time) time.Time
	String() string
}

// JobResult contains the result of a job execution.
type JobResult struct {
	JobName     string        `json:"job"`
	StartedAt   time.Time     `json:"startedAt"`
	CompletedAt time.Time     `json:"completedAt"`
	Duration    time.Duration `json:"duration"`
	Success     bool          `json:"success"`
	Error       string        `json:"error,omitempty"`
	Manual      bool          `json:"manual,omitempty"`
}

// Observer receives job measurements. The metrics package implements it.
type Observer interface {
	JobFinished(job string, d time.Duration, err error)
}

// ══════════════════════════════════════════════════════════════════════════════
// SCHEDULER
// ══════════════════════════════════════════════════════════════════════════════

// Scheduler manages and executes scheduled jobs.
type Scheduler struct {
	mu sync.RWMutex

	logger     *slog.Logger
	timezone   *time.Location
	tick       time.Duration
	jobTimeout time.Duration
	now        func() time.Time
	observer   Observer
	maxHistory int

	jobs       map[string]*scheduledJob
	running    bool
	ctx        context.Context
	cancel     context.CancelFunc
	wg         sync.WaitGroup
	startedAt  time.Time
	runHistory []JobResult
}

type scheduledJob struct {
	job       Job
	schedule  Schedule
	enabled   bool
	inFlight  bool
	lastRun   time.Time
	nextRun   time.Time
	runCount  int64
	failCount int64
	last      *JobResult
}

// Config contains configuration for the Scheduler.
type Config struct {
	Logger *slog.Logger

	// Timezone for schedule calculations. Defaults to UTC.
	Timezone *time.Location

	// Tick is how often due jobs are checked. Defaults to one second.
	Tick time.Duration

	// JobTimeout bounds a single run. Zero means no limit.
	JobTimeout time.Duration

	// MaxHistorySize bounds the run history. Defaults to 200.
	MaxHistorySize int

	Observer Observer
}

// New creates a new Scheduler.
func New(config Config) *Scheduler {
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	if config.Timezone == nil {
		config.Timezone = time.UTC
	}
	if config.Tick <= 0 {
		config.Tick = time.Second
	}
	if config.MaxHistorySize <= 0 {
		config.MaxHistorySize = 200
	}

	return &Scheduler{
		logger:     config.Logger.With("component", "scheduler"),
		timezone:   config.Timezone,
		tick:       config.Tick,
		jobTimeout: config.JobTimeout,
		now:        time.Now,
		observer:   config.Observer,
		maxHistory: config.MaxHistorySize,
		jobs:       make(map[string]*scheduledJob),
	}
}

// Register adds a job with its schedule.
func (s *Scheduler) Register(job Job, schedule Schedule) error {
	if job == nil {
		return ErrNilJob
	}
	if schedule == nil {
		return ErrNilSchedule
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	name := job.Name()
	if _, exists := s.jobs[name]; exists {
		return fmt.Errorf("%w: %s", ErrJobAlreadyExists, name)
	}

	sj := &scheduledJob{
		job:      job,
		schedule: schedule,
		enabled:  true,
		nextRun:  schedule.Next(s.now().In(s.timezone)),
	}
	s.jobs[name] = sj

	s.logger.Info("job registered",
		"job", name,
		"schedule", schedule.String(),
		"next_run", sj.nextRun.Format(time.RFC3339),
	)
	return nil
}

// SetEnabled turns a job on or off.
func (s *Scheduler) SetEnabled(jobName string, enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sj, exists := s.jobs[jobName]
	if !exists {
		return fmt.Errorf("%w: %s", ErrJobNotFound, jobName)
	}
	sj.enabled = enabled
	if enabled {
		sj.nextRun = sj.schedule.Next(s.now().In(s.timezone))
	}
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// LIFECYCLE
// ══════════════════════════════════════════════════════════════════════════════

// Start begins the scheduler loop.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return ErrSchedulerAlreadyRunning
	}
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.running = true
	s.startedAt = s.now()
	count := len(s.jobs)
	s.mu.Unlock()

	s.logger.Info("scheduler started", "jobs_count", count)

	s.wg.Add(1)
	go s.runLoop()
	return nil
}

// Stop cancels running jobs and waits for them to return.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return ErrSchedulerNotRunning
	}
	s.running = false
	s.cancel()
	s.mu.Unlock()

	s.wg.Wait()
	s.logger.Info("scheduler stopped", "uptime", time.Since(s.startedAt).String())
	return nil
}

// IsRunning returns true if the scheduler is running.
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

func (s *Scheduler) runLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.runDue()
		}
	}
}

// runDue starts every enabled job whose time has come. A job never
// overlaps with itself.
func (s *Scheduler) runDue() {
	now := s.now().In(s.timezone)

	s.mu.Lock()
	var due []*scheduledJob
	for _, sj := range s.jobs {
		if sj.enabled && !sj.inFlight && !sj.nextRun.IsZero() && !now.Before(sj.nextRun) {
			sj.inFlight = true
			sj.lastRun = now
			sj.nextRun = sj.schedule.Next(now)
			sj.runCount++
			due = append(due, sj)
		}
	}
	ctx := s.ctx
	s.wg.Add(len(due))
	s.mu.Unlock()

	for _, sj := range due {
		go func() {
			defer s.wg.Done()
			s.execute(ctx, sj, false)
		}()
	}
}

func (s *Scheduler) execute(ctx context.Context, sj *scheduledJob, manual bool) JobResult {
	name := sj.job.Name()
	if s.jobTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.jobTimeout)
		defer cancel()
	}

	startedAt := s.now()
	err := safeRun(ctx, sj.job)
	completedAt := s.now()

	result := JobResult{
		JobName:     name,
		StartedAt:   startedAt,
		CompletedAt: completedAt,
		Duration:    completedAt.Sub(startedAt),
		Success:     err == nil,
		Manual:      manual,
	}
	if err != nil {
		result.Error = err.Error()
	}

	s.mu.Lock()
	sj.inFlight = false
	if err != nil {
		sj.failCount++
	}
	sj.last = &result
	s.runHistory = append(s.runHistory, result)
	if len(s.runHistory) > s.maxHistory {
		s.runHistory = s.runHistory[len(s.runHistory)-s.maxHistory:]
	}
	s.mu.Unlock()

	if s.observer != nil {
		s.observer.JobFinished(name, result.Duration, err)
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		s.logger.Error("job failed", "job", name, "duration", result.Duration.String(), "error", err)
	} else {
		s.logger.Debug("job completed", "job", name, "duration", result.Duration.String())
	}
	return result
}

func safeRun(ctx context.Context, job Job) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("job panic: %v", p)
		}
	}()
	return job.Run(ctx)
}

// RunNow executes a job immediately, ignoring its schedule.
func (s *Scheduler) RunNow(ctx context.Context, jobName string) (JobResult, error) {
	s.mu.Lock()
	sj, exists := s.jobs[jobName]
	if !exists {
		s.mu.Unlock()
		return JobResult{}, fmt.Errorf("%w: %s", ErrJobNotFound, jobName)
	}
	if sj.inFlight {
		s.mu.Unlock()
		return JobResult{}, fmt.Errorf("%w: %s", ErrJobRunning, jobName)
	}
	sj.inFlight = true
	sj.runCount++
	s.mu.Unlock()

	result := s.execute(ctx, sj, true)
	if !result.Success {
		return result, errors.New(result.Error)
	}
	return result, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// STATUS
// ══════════════════════════════════════════════════════════════════════════════

// JobInfo describes a registered job.
type JobInfo struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Enabled     bool       `json:"enabled"`
	Schedule    string     `json:"schedule"`
	LastRun     time.Time  `json:"lastRun"`
	NextRun     time.Time  `json:"nextRun"`
	RunCount    int64      `json:"runCount"`
	FailCount   int64      `json:"failCount"`
	LastResult  *JobResult `json:"lastResult,omitempty"`
}

// ListJobs returns all registered jobs sorted by name.
func (s *Scheduler) ListJobs() []JobInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	infos := make([]JobInfo, 0, len(s.jobs))
	for name, sj := range s.jobs {
		infos = append(infos, JobInfo{
			Name:        name,
			Description: sj.job.Description(),
			Enabled:     sj.enabled,
			Schedule:    sj.schedule.String(),
			LastRun:     sj.lastRun,
			NextRun:     sj.nextRun,
			RunCount:    sj.runCount,
			FailCount:   sj.failCount,
			LastResult:  sj.last,
		})
	}
	slices.SortFunc(infos, func(a, b JobInfo) int { return strings.Compare(a.Name, b.Name) })
	return infos
}

// History returns the most recent results, oldest first.
func (s *Scheduler) History(limit int) []JobResult {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 || limit > len(s.runHistory) {
		limit = len(s.runHistory)
	}
	return slices.Clone(s.runHistory[len(s.runHistory)-limit:])
}

// ══════════════════════════════════════════════════════════════════════════════
// ERRORS
// ══════════════════════════════════════════════════════════════════════════════

var (
	ErrNilJob                  = errors.New("job cannot be nil")
	ErrNilSchedule             = errors.New("schedule cannot be nil")
	ErrJobAlreadyExists        = errors.New("job already exists")
	ErrJobNotFound             = errors.New("job not found")
	ErrJobRunning              = errors.New("job is already running")
	ErrSchedulerAlreadyRunning = errors.New("scheduler is already running")
	ErrSchedulerNotRunning     = errors.New("scheduler is not running")
)
