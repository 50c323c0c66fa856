package scheduler

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// CronExpression is a parsed five-field cron expression:
// minute hour day-of-month month day-of-week.
//
//   - "*/5 * * * *"  every 5 minutes
//   - "0 9 * * *"    every day at 09:00
//   - "0 9 * * 1-5"  weekdays at 09:00
//
// Times are evaluated in Location, so "0 9 * * *" means 09:00 on campus
// even when the server runs in UTC.
type CronExpression struct {
	raw      string
	loc      *time.Location
	minutes  uint64 // bit i set means minute i matches
	hours    uint64
	days     uint64
	months   uint64
	weekdays uint64
}

// Common expressions.
const (
	EveryMinute  = "* * * * *"
	EveryHour    = "0 * * * *"
	DailyMorning = "0 9 * * *"
	DailyNight   = "0 23 * * *"
)

// ParseCronExpression parses expr evaluated in loc (UTC when nil).
func ParseCronExpression(expr string, loc *time.Location) (*CronExpression, error) {
	fields := strings.Fields(expr)
	if len(fields) != 5 {
		return nil, fmt.Errorf("%w: expected 5 fields, got %d", ErrInvalidCron, len(fields))
	}
	if loc == nil {
		loc = time.UTC
	}

	ce := &CronExpression{raw: expr, loc: loc}
	bounds := [5][2]int{{0, 59}, {0, 23}, {1, 31}, {1, 12}, {0, 6}}
	targets := [5]*uint64{&ce.minutes, &ce.hours, &ce.days, &ce.months, &ce.weekdays}
	for i, field := range fields {
		set, err := parseField(field, bounds[i][0], bounds[i][1])
		if err != nil {
			return nil, fmt.Errorf("%w: field %d %q: %v", ErrInvalidCron, i+1, field, err)
		}
		*targets[i] = set
	}
	return ce, nil
}

// MustParseCronExpression panics on an invalid expression.
func MustParseCronExpression(expr string, loc *time.Location) *CronExpression {
	ce, err := ParseCronExpression(expr, loc)
	if err != nil {
		panic(err)
	}
	return ce
}

// parseField handles *, n, a-b, */n, a-b/n and comma lists.
func parseField(field string, lo, hi int) (uint64, error) {
	var set uint64
	for _, part := range strings.Split(field, ",") {
		rng, stepStr, hasStep := strings.Cut(part, "/")
		step := 1
		if hasStep {
			n, err := strconv.Atoi(stepStr)
			if err != nil || n <= 0 {
				return 0, fmt.Errorf("invalid step %q", stepStr)
			}
			step = n
		}

		start, end := lo, hi
		switch {
		case rng == "*":
		case strings.Contains(rng, "-"):
			a, b, _ := strings.Cut(rng, "-")
			var err error
			if start, err = strconv.Atoi(a); err != nil {
				return 0, fmt.Errorf("invalid range %q", rng)
			}
			if end, err = strconv.Atoi(b); err != nil {
				return 0, fmt.Errorf("invalid range %q", rng)
			}
		default:
			v, err := strconv.Atoi(rng)
			if err != nil {
				return 0, fmt.Errorf("invalid value %q", rng)
			}
			start = v
			if !hasStep {
				end = v
			}
		}

		if start < lo || end > hi || start > end {
			return 0, fmt.Errorf("%q out of range %d-%d", part, lo, hi)
		}
		for v := start; v <= end; v += step {
			set |= 1 << uint(v)
		}
	}
	return set, nil
}

func (ce *CronExpression) String() string {
	return ce.raw
}

// Next returns the first matching minute strictly after t, in t's
// location. A zero time means nothing matches within a year.
func (ce *CronExpression) Next(t time.Time) time.Time {
	orig := t.Location()
	cur := t.In(ce.loc).Truncate(time.Minute).Add(time.Minute)
	limit := cur.AddDate(1, 0, 0)

	for cur.Before(limit) {
		if !has(ce.months, int(cur.Month())) {
			cur = time.Date(cur.Year(), cur.Month()+1, 1, 0, 0, 0, 0, ce.loc)
			continue
		}
		if !has(ce.days, cur.Day()) || !has(ce.weekdays, int(cur.Weekday())) {
			cur = time.Date(cur.Year(), cur.Month(), cur.Day()+1, 0, 0, 0, 0, ce.loc)
			continue
		}
		if !has(ce.hours, cur.Hour()) {
			cur = time.Date(cur.Year(), cur.Month(), cur.Day(), cur.Hour()+1, 0, 0, 0, ce.loc)
			continue
		}
		if !has(ce.minutes, cur.Minute()) {
			cur = cur.Add(time.Minute)
			continue
		}
		return cur.In(orig)
	}
	return time.Time{}
}

func has(set uint64, v int) bool {
	return set&(1<<uint(v)) != 0
}

// ErrInvalidCron is returned for malformed expressions.
var ErrInvalidCron = fmt.Errorf("invalid cron expression")
