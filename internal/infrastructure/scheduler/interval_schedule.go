package scheduler

import (
	"fmt"
	"time"
)

// IntervalSchedule runs a job every Interval after the previous start.
type IntervalSchedule struct {
	Interval time.Duration
}

// Every returns an IntervalSchedule.
func Every(interval time.Duration) IntervalSchedule {
	return IntervalSchedule{Interval: interval}
}

// Next returns t + Interval.
func (s IntervalSchedule) Next(t time.Time) time.Time {
	return t.Add(s.Interval)
}

func (s IntervalSchedule) String() string {
	return fmt.Sprintf("@every %s", s.Interval)
}
