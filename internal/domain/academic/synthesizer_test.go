package academic

import (
	"fmt"
	"math/rand"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedSource replays fixed values and wraps around when exhausted.
type scriptedSource struct {
	floats []float64
	ints   []int
	fi, ii int
}

func (s *scriptedSource) Float64() float64 {
	if len(s.floats) == 0 {
		return 0
	}
	v := s.floats[s.fi%len(s.floats)]
	s.fi++
	return v
}

func (s *scriptedSource) Intn(n int) int {
	if len(s.ints) == 0 {
		return 0
	}
	v := s.ints[s.ii%len(s.ints)]
	s.ii++
	return v % n
}

func seeded(seed int64) Option {
	return WithRandomSource(rand.New(rand.NewSource(seed)))
}

func parseGPA(t *testing.T, s string) float64 {
	t.Helper()
	v, err := strconv.ParseFloat(s, 64)
	require.NoError(t, err)
	return v
}

func TestGenerateHistory_NoCompletedSemesters(t *testing.T) {
	synth := NewSynthesizer(seeded(1))

	for _, n := range []int{-3, 0, 1} {
		h := synth.GenerateHistory(n)
		assert.NotNil(t, h.Attendance, "n=%d", n)
		assert.NotNil(t, h.Results, "n=%d", n)
		assert.Empty(t, h.Attendance, "n=%d", n)
		assert.Empty(t, h.Results, "n=%d", n)
		assert.True(t, h.IsEmpty())
	}
}

func TestGenerateHistory_KeyCoverage(t *testing.T) {
	synth := NewSynthesizer(seeded(7))

	for n := 2; n <= 12; n++ {
		h := synth.GenerateHistory(n)

		last := n - 1
		if last > MaxSemester {
			last = MaxSemester
		}
		var want []string
		for i := 1; i <= last; i++ {
			want = append(want, SemesterKey(i))
		}

		assert.Equal(t, want, h.SemesterKeys(), "n=%d", n)
		assert.Len(t, h.Attendance, last, "n=%d", n)
		assert.Len(t, h.Results, last, "n=%d", n)
		assert.NotContains(t, h.Attendance, SemesterKey(n))
		assert.NotContains(t, h.Results, SemesterKey(n))
	}
}

func TestGenerateHistory_SkipsSemestersMissingFromCatalog(t *testing.T) {
	catalog := Catalog{
		1: {"Algebra"},
		3: {"Geometry"},
	}
	synth := NewSynthesizer(seeded(3), WithCatalog(catalog))

	h := synth.GenerateHistory(5)

	assert.Equal(t, []string{"sem1", "sem3"}, h.SemesterKeys())
	// Cumulative totals carry over the gap.
	_, s1 := h.Results["sem1"].Credits()
	_, s3 := h.Results["sem3"].Credits()
	want := formatGPA(s1+s3, 8)
	assert.Equal(t, want, h.Results["sem3"].Summary.CGPA)
}

func TestGenerateHistory_AttendanceInvariants(t *testing.T) {
	for seed := int64(0); seed < 50; seed++ {
		h := NewSynthesizer(seeded(seed)).GenerateHistory(9)

		for key, rec := range h.Attendance {
			require.Len(t, rec.Subjects, 4, key)

			var conducted, present int
			for _, s := range rec.Subjects {
				assert.Equal(t, s.Conducted, s.Present+s.Absent, "%s/%s", key, s.Name)
				assert.LessOrEqual(t, s.Present, s.Conducted)
				assert.GreaterOrEqual(t, float64(s.Present), 0.75*float64(s.Conducted))

				if IsPractical(s.Name) {
					assert.Equal(t, PracticalHours, s.Conducted)
					assert.Equal(t, SubjectPractical, s.Type)
				} else {
					assert.Equal(t, TheoryHours, s.Conducted)
					assert.Equal(t, SubjectTheory, s.Type)
				}
				conducted += s.Conducted
				present += s.Present
			}

			overall, ok := rec.Overall.Value()
			require.True(t, ok, key)
			assert.GreaterOrEqual(t, overall, 75.0)
			assert.LessOrEqual(t, overall, 100.0)
			assert.Equal(t, PercentageOf(present, conducted), rec.Overall)
		}
	}
}

func TestGenerateHistory_AttendanceBounds(t *testing.T) {
	catalog := Catalog{1: {"Mathematics I", "Lab Work"}}

	low := NewSynthesizer(WithCatalog(catalog), WithRandomSource(&scriptedSource{floats: []float64{0}}))
	rec := low.GenerateHistory(2).Attendance["sem1"]
	assert.Equal(t, 45, rec.Subjects[0].Present)
	assert.Equal(t, 23, rec.Subjects[1].Present) // 22.5 rounds up
	assert.Equal(t, 7, rec.Subjects[1].Absent)
	v, _ := rec.Overall.Value()
	assert.Equal(t, 75.56, v)

	high := NewSynthesizer(WithCatalog(catalog), WithRandomSource(&scriptedSource{floats: []float64{0.9999999}}))
	rec = high.GenerateHistory(2).Attendance["sem1"]
	assert.Equal(t, 59, rec.Subjects[0].Present)
	assert.Equal(t, 29, rec.Subjects[1].Present)
}

func TestGenerateHistory_CGPAIsCreditWeighted(t *testing.T) {
	catalog := Catalog{
		1: {"Algebra", "Lab Work"},
		2: {"Calculus"},
	}
	// A+ and C in sem1, C in sem2.
	rnd := &scriptedSource{floats: []float64{0.5}, ints: []int{0, 4, 4}}
	synth := NewSynthesizer(WithCatalog(catalog), WithRandomSource(rnd))

	h := synth.GenerateHistory(3)

	sem1 := h.Results["sem1"].Summary
	sem2 := h.Results["sem2"].Summary
	require.NotNil(t, sem1)
	require.NotNil(t, sem2)

	assert.Equal(t, "8.67", sem1.SGPA) // (40 + 12) / 6
	assert.Equal(t, "8.67", sem1.CGPA)
	assert.Equal(t, "6.00", sem2.SGPA)
	assert.Equal(t, "7.60", sem2.CGPA) // (52 + 24) / 10

	mean := (parseGPA(t, sem1.SGPA) + parseGPA(t, sem2.SGPA)) / 2
	assert.NotEqual(t, fmt.Sprintf("%.2f", mean), sem2.CGPA)
}

func TestGenerateHistory_CGPAMatchesRollup(t *testing.T) {
	for seed := int64(0); seed < 20; seed++ {
		h := NewSynthesizer(seeded(seed)).GenerateHistory(9)

		var credits, points int
		for _, key := range h.SemesterKeys() {
			rec := h.Results[key]
			c, p := rec.Credits()
			credits += c
			points += p

			require.NotNil(t, rec.Summary)
			assert.Equal(t, formatGPA(p, c), rec.Summary.SGPA, key)
			assert.Equal(t, formatGPA(points, credits), rec.Summary.CGPA, key)
		}
	}
}

func TestGenerateHistory_StatusAndBacklogsConstant(t *testing.T) {
	h := NewSynthesizer(seeded(11)).GenerateHistory(9)

	for key, rec := range h.Results {
		require.NotNil(t, rec.Summary, key)
		assert.Equal(t, 0, rec.Summary.Backlogs)
		assert.Equal(t, StatusPassed, rec.Summary.Status)
		for _, s := range rec.Results {
			assert.True(t, s.Grade.IsValid(), s.Grade)
		}
	}
}

func TestGenerateHistory_StableShapeAcrossCalls(t *testing.T) {
	synth := NewSynthesizer(seeded(5))

	a := synth.GenerateHistory(7)
	b := synth.GenerateHistory(7)

	require.Equal(t, a.SemesterKeys(), b.SemesterKeys())
	for _, key := range a.SemesterKeys() {
		ra, rb := a.Results[key], b.Results[key]
		require.Len(t, rb.Results, len(ra.Results))
		for i := range ra.Results {
			assert.Equal(t, ra.Results[i].Code, rb.Results[i].Code)
			assert.Equal(t, ra.Results[i].Credits, rb.Results[i].Credits)
			assert.Equal(t, ra.Results[i].Name, rb.Results[i].Name)
		}
		assert.Equal(t, ra.Session, rb.Session)
	}
}

func TestGenerateHistory_FourthSemesterStudent(t *testing.T) {
	h := NewSynthesizer(seeded(42)).GenerateHistory(4)

	assert.Equal(t, []string{"sem1", "sem2", "sem3"}, h.SemesterKeys())
	for _, key := range h.SemesterKeys() {
		assert.Len(t, h.Attendance[key].Subjects, 4)
		assert.Len(t, h.Results[key].Results, 4)
	}

	sem1 := h.Results["sem1"].Summary
	assert.Equal(t, sem1.SGPA, sem1.CGPA)

	var credits, points int
	for _, key := range h.SemesterKeys() {
		c, p := h.Results[key].Credits()
		credits += c
		points += p
	}
	assert.Equal(t, 48, credits)
	assert.Equal(t, formatGPA(points, credits), h.Results["sem3"].Summary.CGPA)

	assert.Equal(t, "May 2022", h.Results["sem1"].Session)
	assert.Equal(t, "Dec 2022", h.Results["sem2"].Session)
	assert.Equal(t, "May 2023", h.Results["sem3"].Session)

	codes := []string{}
	for _, s := range h.Results["sem3"].Results {
		codes = append(codes, s.Code)
	}
	assert.Equal(t, []string{"AD301", "DA302", "WE303", "OP304"}, codes)
}

func TestGenerateHistory_ReducedCreditsForProjects(t *testing.T) {
	h := NewSynthesizer(seeded(9)).GenerateHistory(9)

	want := map[string]int{
		"sem1": 16, "sem2": 16, "sem3": 16, "sem4": 16,
		"sem5": 14, "sem6": 16, "sem7": 14, "sem8": 14,
	}
	for key, credits := range want {
		c, _ := h.Results[key].Credits()
		assert.Equal(t, credits, c, key)
	}
}

func TestGenerateHistory_BaseYear(t *testing.T) {
	h := NewSynthesizer(seeded(1), WithBaseYear(2030)).GenerateHistory(5)

	assert.Equal(t, "May 2030", h.Results["sem1"].Session)
	assert.Equal(t, "Dec 2030", h.Results["sem2"].Session)
	assert.Equal(t, "May 2031", h.Results["sem3"].Session)
	assert.Equal(t, "Dec 2031", h.Results["sem4"].Session)
}

func TestNewRandomSource_IsDeterministic(t *testing.T) {
	a := NewSynthesizer(WithRandomSource(NewRandomSource(99))).GenerateHistory(6)
	b := NewSynthesizer(WithRandomSource(NewRandomSource(99))).GenerateHistory(6)

	assert.Equal(t, a, b)
}
