// Package timeutil holds campus-time helpers. The university runs on
// Indian Standard Time (UTC+5:30, no DST) and shows dates as DD-MM-YYYY.
package timeutil

import (
	"fmt"
	"time"
)

// CampusTZ is Indian Standard Time.
var CampusTZ = time.FixedZone("Asia/Kolkata", 5*60*60+30*60)

// Common layouts.
const (
	// FormatISODate is the wire format of registration forms (YYYY-MM-DD).
	FormatISODate = "2006-01-02"
	// FormatDisplayDate is the portal display format (DD-MM-YYYY).
	FormatDisplayDate = "02-01-2006"
	// FormatDisplayDateTime is used on announcements and notes.
	FormatDisplayDateTime = "02-01-2006 15:04"
	// FormatSession is the exam session label layout ("May 2024").
	FormatSession = "Jan 2006"
)

// Now returns the current time on campus.
func Now() time.Time {
	return time.Now().In(CampusTZ)
}

// ToCampus converts a time to campus time.
func ToCampus(t time.Time) time.Time {
	return t.In(CampusTZ)
}

// Date creates midnight of the given day in campus time.
func Date(year, month, day int) time.Time {
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, CampusTZ)
}

// StartOfDay returns campus midnight of t's day.
func StartOfDay(t time.Time) time.Time {
	c := ToCampus(t)
	return time.Date(c.Year(), c.Month(), c.Day(), 0, 0, 0, 0, CampusTZ)
}

// IsSameDay checks if two times fall on the same campus day.
func IsSameDay(t1, t2 time.Time) bool {
	a, b := ToCampus(t1), ToCampus(t2)
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}

// DaysBetween returns the signed number of campus days from t1 to t2.
func DaysBetween(t1, t2 time.Time) int {
	return int(StartOfDay(t2).Sub(StartOfDay(t1)).Hours() / 24)
}

// FormatDisplay formats t as DD-MM-YYYY in campus time.
func FormatDisplay(t time.Time) string {
	return ToCampus(t).Format(FormatDisplayDate)
}

// FormatDisplayTime formats t as DD-MM-YYYY HH:MM in campus time.
func FormatDisplayTime(t time.Time) string {
	return ToCampus(t).Format(FormatDisplayDateTime)
}

// ParseDisplayDate parses DD-MM-YYYY as a campus date.
func ParseDisplayDate(value string) (time.Time, error) {
	return time.ParseInLocation(FormatDisplayDate, value, CampusTZ)
}

// ParseISODate parses YYYY-MM-DD as a campus date.
func ParseISODate(value string) (time.Time, error) {
	return time.ParseInLocation(FormatISODate, value, CampusTZ)
}

// ISOToDisplay converts YYYY-MM-DD to DD-MM-YYYY.
// Values that do not parse are returned unchanged.
func ISOToDisplay(value string) string {
	t, err := ParseISODate(value)
	if err != nil {
		return value
	}
	return t.Format(FormatDisplayDate)
}

// DaysUntil returns how many campus days remain until a DD-MM-YYYY due date,
// negative when overdue. ok is false for malformed dates.
func DaysUntil(now time.Time, due string) (days int, ok bool) {
	d, err := ParseDisplayDate(due)
	if err != nil {
		return 0, false
	}
	return DaysBetween(now, d), true
}

// FormatRelative renders t relative to now ("just now", "5 min ago",
// "in 2 days").
func FormatRelative(now, t time.Time) string {
	d := now.Sub(t)
	if d < 0 {
		return formatFuture(-d)
	}
	return formatPast(d)
}

func formatPast(d time.Duration) string {
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%d min ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return plural(int(d.Hours()), "hour") + " ago"
	case d < 48*time.Hour:
		return "yesterday"
	case d < 30*24*time.Hour:
		return plural(int(d.Hours()/24), "day") + " ago"
	case d < 365*24*time.Hour:
		return plural(int(d.Hours()/24/30), "month") + " ago"
	default:
		return plural(int(d.Hours()/24/365), "year") + " ago"
	}
}

func formatFuture(d time.Duration) string {
	switch {
	case d < time.Minute:
		return "now"
	case d < time.Hour:
		return fmt.Sprintf("in %d min", int(d.Minutes()))
	case d < 24*time.Hour:
		return "in " + plural(int(d.Hours()), "hour")
	case d < 48*time.Hour:
		return "tomorrow"
	default:
		return "in " + plural(int(d.Hours()/24), "day")
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
