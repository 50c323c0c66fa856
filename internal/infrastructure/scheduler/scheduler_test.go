package scheduler

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nextedu/portal/pkg/timeutil"
)

type funcJob struct {
	name string
	runs atomic.Int32
	fn   func(ctx context.Context) error
}

func (j *funcJob) Name() string        { return j.name }
func (j *funcJob) Description() string { return "test job " + j.name }
func (j *funcJob) Run(ctx context.Context) error {
	j.runs.Add(1)
	if j.fn == nil {
		return nil
	}
	return j.fn(ctx)
}

type recordingObserver struct {
	mu   sync.Mutex
	errs map[string][]error
}

func (o *recordingObserver) JobFinished(job string, _ time.Duration, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.errs == nil {
		o.errs = map[string][]error{}
	}
	o.errs[job] = append(o.errs[job], err)
}

func TestParseCronExpression(t *testing.T) {
	tests := []struct {
		expr    string
		wantErr bool
	}{
		{"* * * * *", false},
		{"*/15 9-17 * * 1-5", false},
		{"0 9,13 1 1-6/2 *", false},
		{"0 9 * *", true},
		{"60 * * * *", true},
		{"* 24 * * *", true},
		{"*/0 * * * *", true},
		{"5-1 * * * *", true},
		{"a * * * *", true},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			_, err := ParseCronExpression(tt.expr, nil)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidCron)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestCronExpression_Next(t *testing.T) {
	utc := func(s string) time.Time {
		v, err := time.Parse(time.RFC3339, s)
		require.NoError(t, err)
		return v
	}

	tests := []struct {
		name string
		expr string
		loc  *time.Location
		from time.Time
		want time.Time
	}{
		{"every minute", EveryMinute, nil, utc("2024-05-01T10:00:30Z"), utc("2024-05-01T10:01:00Z")},
		{"strictly after", "0 * * * *", nil, utc("2024-05-01T10:00:00Z"), utc("2024-05-01T11:00:00Z")},
		{"next day", DailyMorning, nil, utc("2024-05-01T09:30:00Z"), utc("2024-05-02T09:00:00Z")},
		{"weekday", "0 9 * * 1", nil, utc("2024-05-01T00:00:00Z"), utc("2024-05-06T09:00:00Z")},
		{"year wrap", "0 0 1 1 *", nil, utc("2024-05-01T00:00:00Z"), utc("2025-01-01T00:00:00Z")},
		{"campus morning", DailyMorning, timeutil.CampusTZ, utc("2024-05-01T00:00:00Z"), utc("2024-05-01T03:30:00Z")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ce := MustParseCronExpression(tt.expr, tt.loc)
			assert.True(t, tt.want.Equal(ce.Next(tt.from)), "got %s", ce.Next(tt.from))
		})
	}
}

func TestCronExpression_NeverMatches(t *testing.T) {
	ce := MustParseCronExpression("0 0 31 2 *", nil)
	assert.True(t, ce.Next(time.Now()).IsZero())
}

func TestIntervalSchedule(t *testing.T) {
	s := Every(5 * time.Minute)
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	assert.Equal(t, now.Add(5*time.Minute), s.Next(now))
	assert.Equal(t, "@every 5m0s", s.String())
}

func TestScheduler_Register(t *testing.T) {
	s := New(Config{})

	require.NoError(t, s.Register(&funcJob{name: "a"}, Every(time.Minute)))
	assert.ErrorIs(t, s.Register(&funcJob{name: "a"}, Every(time.Minute)), ErrJobAlreadyExists)
	assert.ErrorIs(t, s.Register(nil, Every(time.Minute)), ErrNilJob)
	assert.ErrorIs(t, s.Register(&funcJob{name: "b"}, nil), ErrNilSchedule)
	assert.ErrorIs(t, s.SetEnabled("missing", true), ErrJobNotFound)

	jobs := s.ListJobs()
	require.Len(t, jobs, 1)
	assert.Equal(t, "a", jobs[0].Name)
	assert.True(t, jobs[0].Enabled)
}

func TestScheduler_RunDue(t *testing.T) {
	obs := &recordingObserver{}
	s := New(Config{Observer: obs})
	clock := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return clock }
	s.ctx = context.Background()

	ok := &funcJob{name: "ok"}
	failing := &funcJob{name: "failing", fn: func(context.Context) error { return errors.New("boom") }}
	disabled := &funcJob{name: "disabled"}
	require.NoError(t, s.Register(ok, Every(time.Minute)))
	require.NoError(t, s.Register(failing, Every(time.Minute)))
	require.NoError(t, s.Register(disabled, Every(time.Minute)))
	require.NoError(t, s.SetEnabled("disabled", false))

	s.runDue()
	s.wg.Wait()
	assert.Zero(t, ok.runs.Load(), "nothing is due yet")

	clock = clock.Add(time.Minute)
	s.runDue()
	s.wg.Wait()

	assert.EqualValues(t, 1, ok.runs.Load())
	assert.EqualValues(t, 1, failing.runs.Load())
	assert.Zero(t, disabled.runs.Load())

	jobs := s.ListJobs()
	require.Len(t, jobs, 3)
	assert.Equal(t, "failing", jobs[1].Name)
	assert.EqualValues(t, 1, jobs[1].FailCount)
	assert.Equal(t, clock.Add(time.Minute), jobs[2].NextRun)

	obs.mu.Lock()
	defer obs.mu.Unlock()
	assert.Len(t, obs.errs["ok"], 1)
	assert.EqualError(t, obs.errs["failing"][0], "boom")
}

func TestScheduler_RunNow(t *testing.T) {
	s := New(Config{MaxHistorySize: 2})
	job := &funcJob{name: "job"}
	require.NoError(t, s.Register(job, Every(time.Hour)))

	for range 3 {
		res, err := s.RunNow(context.Background(), "job")
		require.NoError(t, err)
		assert.True(t, res.Success)
		assert.True(t, res.Manual)
	}
	assert.EqualValues(t, 3, job.runs.Load())
	assert.Len(t, s.History(0), 2)
	assert.Len(t, s.History(1), 1)

	_, err := s.RunNow(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrJobNotFound)
}

func TestScheduler_RecoversPanicsAndAppliesTimeout(t *testing.T) {
	s := New(Config{JobTimeout: 10 * time.Millisecond})
	require.NoError(t, s.Register(&funcJob{name: "panics", fn: func(context.Context) error { panic("oops") }}, Every(time.Hour)))
	require.NoError(t, s.Register(&funcJob{name: "slow", fn: func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}}, Every(time.Hour)))

	res, err := s.RunNow(context.Background(), "panics")
	require.Error(t, err)
	assert.Contains(t, res.Error, "oops")

	_, err = s.RunNow(context.Background(), "slow")
	assert.ErrorContains(t, err, context.DeadlineExceeded.Error())
}

func TestScheduler_StartStop(t *testing.T) {
	s := New(Config{Tick: 5 * time.Millisecond})
	done := make(chan struct{})
	var once sync.Once
	require.NoError(t, s.Register(&funcJob{name: "tick", fn: func(context.Context) error {
		once.Do(func() { close(done) })
		return nil
	}}, Every(time.Millisecond)))

	require.NoError(t, s.Start(context.Background()))
	assert.ErrorIs(t, s.Start(context.Background()), ErrSchedulerAlreadyRunning)
	assert.True(t, s.IsRunning())

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("job did not run")
	}

	require.NoError(t, s.Stop())
	assert.ErrorIs(t, s.Stop(), ErrSchedulerNotRunning)
	assert.False(t, s.IsRunning())
}
