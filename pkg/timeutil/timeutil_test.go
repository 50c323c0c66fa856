package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCampusTZ_Offset(t *testing.T) {
	utc := time.Date(2024, 7, 8, 20, 0, 0, 0, time.UTC)
	c := ToCampus(utc)
	assert.Equal(t, 9, c.Day())
	assert.Equal(t, 1, c.Hour())
	assert.Equal(t, 30, c.Minute())
}

func TestDisplayDates(t *testing.T) {
	assert.Equal(t, "15-08-2003", ISOToDisplay("2003-08-15"))
	assert.Equal(t, "garbage", ISOToDisplay("garbage"))

	d, err := ParseDisplayDate("25-07-2024")
	require.NoError(t, err)
	assert.Equal(t, "25-07-2024", FormatDisplay(d))
	assert.Equal(t, "25-07-2024 00:00", FormatDisplayTime(d))
}

func TestDaysUntil(t *testing.T) {
	now := Date(2024, 7, 20)

	days, ok := DaysUntil(now, "25-07-2024")
	assert.True(t, ok)
	assert.Equal(t, 5, days)

	days, ok = DaysUntil(now, "10-07-2024")
	assert.True(t, ok)
	assert.Equal(t, -10, days)

	_, ok = DaysUntil(now, "2024-07-25")
	assert.False(t, ok)
}

func TestFormatRelative(t *testing.T) {
	now := time.Date(2024, 7, 8, 12, 0, 0, 0, CampusTZ)
	tests := []struct {
		at   time.Time
		want string
	}{
		{now.Add(-10 * time.Second), "just now"},
		{now.Add(-5 * time.Minute), "5 min ago"},
		{now.Add(-1 * time.Hour), "1 hour ago"},
		{now.Add(-3 * time.Hour), "3 hours ago"},
		{now.Add(-30 * time.Hour), "yesterday"},
		{now.Add(-4 * 24 * time.Hour), "4 days ago"},
		{now.Add(-65 * 24 * time.Hour), "2 months ago"},
		{now.Add(-800 * 24 * time.Hour), "2 years ago"},
		{now.Add(20 * time.Minute), "in 20 min"},
		{now.Add(30 * time.Hour), "tomorrow"},
		{now.Add(72 * time.Hour), "in 3 days"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatRelative(now, tt.at))
	}
}

func TestIsSameDayAndDaysBetween(t *testing.T) {
	a := time.Date(2024, 1, 15, 19, 0, 0, 0, time.UTC) // 00:30 on the 16th in IST
	b := Date(2024, 1, 16)
	assert.True(t, IsSameDay(a, b))
	assert.Equal(t, 0, DaysBetween(a, b))
	assert.Equal(t, 1, DaysBetween(b, b.AddDate(0, 0, 1)))
}
