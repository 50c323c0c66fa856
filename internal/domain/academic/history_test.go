package academic

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPercentage_JSON(t *testing.T) {
	tests := []struct {
		name string
		in   Percentage
		want string
	}{
		{"available", PercentageOf(157, 210), `74.76`},
		{"whole", PercentageOf(60, 60), `100`},
		{"not available", PercentageOf(0, 0), `"not available"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.in)
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(data))

			var back Percentage
			require.NoError(t, json.Unmarshal(data, &back))
			assert.Equal(t, tt.in, back)
		})
	}
}

func TestPercentage_RejectsUnknownString(t *testing.T) {
	var p Percentage
	err := json.Unmarshal([]byte(`"n/a"`), &p)
	assert.Error(t, err)
}

func TestPercentage_String(t *testing.T) {
	assert.Equal(t, "87.50", NewPercentage(87.5).String())
	assert.Equal(t, NotAvailable, Percentage{}.String())
}

func TestHistory_JSONRoundTrip(t *testing.T) {
	h := NewSynthesizer(seeded(21)).GenerateHistory(3)

	data, err := json.Marshal(h)
	require.NoError(t, err)

	var back History
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, h, back)
}

func TestHistory_LatestSummaryAndOverall(t *testing.T) {
	empty := NewHistory()
	key, sum := empty.LatestSummary()
	assert.Empty(t, key)
	assert.Nil(t, sum)
	assert.False(t, empty.OverallAttendance().IsAvailable())

	h := NewSynthesizer(seeded(4)).GenerateHistory(11)
	key, sum = h.LatestSummary()
	assert.Equal(t, "sem8", key)
	require.NotNil(t, sum)
	assert.Equal(t, h.Results["sem8"].Summary.CGPA, sum.CGPA)

	v, ok := h.OverallAttendance().Value()
	assert.True(t, ok)
	assert.GreaterOrEqual(t, v, 75.0)
}

func TestSemesterKeys(t *testing.T) {
	assert.Equal(t, "sem3", SemesterKey(3))

	n, err := ParseSemesterKey("sem12")
	require.NoError(t, err)
	assert.Equal(t, 12, n)

	for _, bad := range []string{"", "sem", "semx", "sem0", "term1"} {
		_, err := ParseSemesterKey(bad)
		assert.Error(t, err, bad)
	}

	h := History{
		Attendance: map[string]AttendanceRecord{"sem10": {}, "sem2": {}},
		Results:    map[string]ResultsRecord{"sem1": {}, "bogus": {}},
	}
	assert.Equal(t, []string{"sem1", "sem2", "sem10"}, h.SemesterKeys())
}

func TestSessionLabel(t *testing.T) {
	tests := []struct {
		semester int
		want     string
	}{
		{1, "May 2022"},
		{2, "Dec 2022"},
		{3, "May 2023"},
		{4, "Dec 2023"},
		{7, "May 2025"},
		{8, "Dec 2025"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SessionLabel(tt.semester, DefaultBaseYear))
	}
}

func TestSubjectCode(t *testing.T) {
	assert.Equal(t, "DA302", SubjectCode("Database Systems", 3, 1))
	assert.Equal(t, "AI403", SubjectCode("AI/ML", 4, 2))
	assert.Equal(t, "X101", SubjectCode("X", 1, 0))
}

func TestGrade_Points(t *testing.T) {
	want := []int{10, 9, 8, 7, 6}
	for i, g := range GradePool {
		assert.Equal(t, want[i], g.Points(), g)
	}
	assert.False(t, Grade("F").IsValid())
	assert.Zero(t, Grade("F").Points())
}

func TestStandingOf(t *testing.T) {
	assert.Equal(t, StandingUnknown, StandingOf(PercentageOf(0, 0)))
	assert.Equal(t, StandingLow, StandingOf(NewPercentage(74.99)))
	assert.Equal(t, StandingWarning, StandingOf(NewPercentage(75)))
	assert.Equal(t, StandingWarning, StandingOf(NewPercentage(84.99)))
	assert.Equal(t, StandingGood, StandingOf(NewPercentage(85)))
}

func TestHistory_Semester(t *testing.T) {
	h := NewHistory()
	h.Attendance["sem1"] = AttendanceRecord{Overall: PercentageOf(40, 50)}
	h.Results["sem1"] = ResultsRecord{Session: "Nov-Dec 2022", Summary: &Summary{SGPA: "8.00", CGPA: "8.00"}}
	h.Results["sem2"] = ResultsRecord{Session: "May-Jun 2023"}

	rec := h.Semester("sem1")
	require.NotNil(t, rec.Attendance)
	require.NotNil(t, rec.Results)
	assert.Equal(t, "8.00", rec.Results.Summary.SGPA)

	partial := h.Semester("sem2")
	assert.Nil(t, partial.Attendance)
	assert.False(t, partial.IsEmpty())

	assert.True(t, h.Semester("sem7").IsEmpty())
}
