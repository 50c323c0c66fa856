package academic

import (
	"math"
	"strconv"
)

// DefaultBaseYear - год первой сессии (семестр 1 сдаётся в мае этого года).
const DefaultBaseYear = 2022

// minAttendanceRatio - нижняя граница доли посещённых занятий.
const minAttendanceRatio = 0.75

// Synthesizer генерирует академическую историю студента.
// Безопасен для конкурентного использования, если безопасен RandomSource.
type Synthesizer struct {
	rnd      RandomSource
	catalog  Catalog
	baseYear int
}

// Option настраивает Synthesizer.
type Option func(*Synthesizer)

// WithRandomSource задаёт источник случайности.
func WithRandomSource(rnd RandomSource) Option {
	return func(s *Synthesizer) {
		if rnd != nil {
			s.rnd = rnd
		}
	}
}

// WithCatalog задаёт каталог предметов.
func WithCatalog(c Catalog) Option {
	return func(s *Synthesizer) {
		if c != nil {
			s.catalog = c
		}
	}
}

// WithBaseYear задаёт год первой сессии.
func WithBaseYear(year int) Option {
	return func(s *Synthesizer) {
		if year > 0 {
			s.baseYear = year
		}
	}
}

// NewSynthesizer создаёт синтезатор. По умолчанию используется
// DefaultCatalog, DefaultBaseYear и источник, засеянный текущим временем.
func NewSynthesizer(opts ...Option) *Synthesizer {
	s := &Synthesizer{
		catalog:  DefaultCatalog(),
		baseYear: DefaultBaseYear,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rnd == nil {
		s.rnd = newTimeSeededSource()
	}
	return s
}

// BaseYear возвращает год первой сессии.
func (s *Synthesizer) BaseYear() int {
	return s.baseYear
}

// GenerateHistory строит историю для завершённых семестров 1..currentSemester-1.
//
// Семестры без списка предметов в каталоге пропускаются молча.
// При currentSemester <= 1 возвращается пустая история.
// CGPA считается по кредитам нарастающим итогом, а не как среднее SGPA.
func (s *Synthesizer) GenerateHistory(currentSemester int) History {
	history := NewHistory()

	var cumulativeCredits, cumulativePoints int
	for i := 1; i < currentSemester; i++ {
		subjects := s.catalog.Subjects(i)
		if len(subjects) == 0 {
			continue
		}
		key := SemesterKey(i)

		history.Attendance[key] = s.attendance(subjects)

		results, credits, points := s.results(subjects, i)
		cumulativeCredits += credits
		cumulativePoints += points

		history.Results[key] = ResultsRecord{
			Session: SessionLabel(i, s.baseYear),
			Results: results,
			Summary: &Summary{
				SGPA:     formatGPA(points, credits),
				CGPA:     formatGPA(cumulativePoints, cumulativeCredits),
				Backlogs: 0,
				Status:   StatusPassed,
			},
		}
	}

	return history
}

func (s *Synthesizer) attendance(subjects []string) AttendanceRecord {
	rec := AttendanceRecord{Subjects: make([]AttendanceSubject, 0, len(subjects))}

	var conducted, present int
	for _, name := range subjects {
		subj := AttendanceSubject{Name: name, Type: SubjectTheory, Conducted: TheoryHours}
		if IsPractical(name) {
			subj.Type = SubjectPractical
			subj.Conducted = PracticalHours
		}

		// Нижняя граница округляется вверх: 30 * 0.75 = 22.5 даёт 23,
		// иначе предмет окажется ниже 75%.
		floor := int(math.Ceil(float64(subj.Conducted) * minAttendanceRatio))
		ratio := minAttendanceRatio + s.rnd.Float64()*(1-minAttendanceRatio)
		subj.Present = min(max(int(math.Floor(float64(subj.Conducted)*ratio)), floor), subj.Conducted)
		subj.Absent = subj.Conducted - subj.Present

		conducted += subj.Conducted
		present += subj.Present
		rec.Subjects = append(rec.Subjects, subj)
	}

	rec.Overall = PercentageOf(present, conducted)
	return rec
}

func (s *Synthesizer) results(subjects []string, semester int) ([]ResultSubject, int, int) {
	out := make([]ResultSubject, 0, len(subjects))

	var credits, points int
	for pos, name := range subjects {
		c := TheoryCredits
		if IsPractical(name) {
			c = PracticalCredits
		}
		grade := GradePool[s.rnd.Intn(len(GradePool))]

		credits += c
		points += c * grade.Points()
		out = append(out, ResultSubject{
			Code:    SubjectCode(name, semester, pos),
			Name:    name,
			Credits: c,
			Grade:   grade,
		})
	}

	return out, credits, points
}

// formatGPA возвращает points/credits, округлённое до двух знаков
// (половина вверх), "0.00" при нуле кредитов.
func formatGPA(points, credits int) string {
	if credits == 0 {
		return "0.00"
	}
	return strconv.FormatFloat(round2(float64(points)/float64(credits)), 'f', 2, 64)
}
