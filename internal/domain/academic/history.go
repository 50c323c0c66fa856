package academic

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
)

// ══════════════════════════════════════════════════════════════════════════════
// VALUE OBJECTS
// ══════════════════════════════════════════════════════════════════════════════

// SubjectType определяет тип занятий по предмету.
type SubjectType string

const (
	SubjectTheory    SubjectType = "Theory"
	SubjectPractical SubjectType = "Practical"
)

// IsValid проверяет корректность типа.
func (t SubjectType) IsValid() bool {
	return t == SubjectTheory || t == SubjectPractical
}

// NotAvailable - значение процента, когда занятий не проводилось.
const NotAvailable = "not available"

// Percentage - процент с точностью до двух знаков либо "not available".
// В JSON кодируется числом или строкой NotAvailable.
type Percentage struct {
	value     float64
	available bool
}

// NewPercentage создаёт процент, округлённый до двух знаков.
func NewPercentage(v float64) Percentage {
	return Percentage{value: round2(v), available: true}
}

// PercentageOf вычисляет 100*part/total. При total == 0 возвращает NotAvailable.
func PercentageOf(part, total int) Percentage {
	if total <= 0 {
		return Percentage{}
	}
	return NewPercentage(100 * float64(part) / float64(total))
}

// Value возвращает значение и признак его наличия.
func (p Percentage) Value() (float64, bool) {
	return p.value, p.available
}

// IsAvailable возвращает true, если значение определено.
func (p Percentage) IsAvailable() bool {
	return p.available
}

// String форматирует процент как "87.50" или "not available".
func (p Percentage) String() string {
	if !p.available {
		return NotAvailable
	}
	return strconv.FormatFloat(p.value, 'f', 2, 64)
}

// MarshalJSON реализует json.Marshaler.
func (p Percentage) MarshalJSON() ([]byte, error) {
	if !p.available {
		return json.Marshal(NotAvailable)
	}
	return []byte(strconv.FormatFloat(p.value, 'f', -1, 64)), nil
}

// UnmarshalJSON реализует json.Unmarshaler.
func (p *Percentage) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s != NotAvailable {
			return fmt.Errorf("percentage: unexpected string %q", s)
		}
		*p = Percentage{}
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("percentage: %w", err)
	}
	*p = NewPercentage(v)
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// ATTENDANCE
// ══════════════════════════════════════════════════════════════════════════════

// AttendanceSubject - посещаемость одного предмета.
// Инвариант: Present + Absent == Conducted.
type AttendanceSubject struct {
	Name      string      `json:"name"`
	Type      SubjectType `json:"type"`
	Conducted int         `json:"conducted"`
	Present   int         `json:"present"`
	Absent    int         `json:"absent"`
}

// Percentage возвращает процент посещаемости предмета.
func (s AttendanceSubject) Percentage() Percentage {
	return PercentageOf(s.Present, s.Conducted)
}

// AttendanceRecord - посещаемость за семестр.
type AttendanceRecord struct {
	Subjects []AttendanceSubject `json:"subjects"`
	Overall  Percentage          `json:"overall"`
}

// Totals возвращает суммарное число проведённых и посещённых занятий.
func (r AttendanceRecord) Totals() (conducted, present int) {
	for _, s := range r.Subjects {
		conducted += s.Conducted
		present += s.Present
	}
	return conducted, present
}

// ══════════════════════════════════════════════════════════════════════════════
// RESULTS
// ══════════════════════════════════════════════════════════════════════════════

// StatusPassed - единственный статус семестра, который порождает синтезатор.
const StatusPassed = "Passed"

// ResultSubject - результат экзамена по предмету.
type ResultSubject struct {
	Code    string `json:"code"`
	Name    string `json:"name"`
	Credits int    `json:"credits"`
	Grade   Grade  `json:"grade"`
}

// Summary - итоги семестра. SGPA и CGPA хранятся строками "8.50".
type Summary struct {
	SGPA     string `json:"sgpa"`
	CGPA     string `json:"cgpa"`
	Backlogs int    `json:"backlogs"`
	Status   string `json:"status"`
}

// ResultsRecord - результаты за семестр.
// Summary == nil означает, что семестр ещё не завершён.
type ResultsRecord struct {
	Session string          `json:"session"`
	Results []ResultSubject `json:"results"`
	Summary *Summary        `json:"summary"`
}

// Credits возвращает сумму кредитов и сумму взвешенных баллов.
func (r ResultsRecord) Credits() (credits, weightedPoints int) {
	for _, s := range r.Results {
		credits += s.Credits
		weightedPoints += s.Credits * s.Grade.Points()
	}
	return credits, weightedPoints
}

// ══════════════════════════════════════════════════════════════════════════════
// HISTORY
// ══════════════════════════════════════════════════════════════════════════════

// History - академическая история студента по ключам "sem1".."sem8".
type History struct {
	Attendance map[string]AttendanceRecord `json:"attendance"`
	Results    map[string]ResultsRecord    `json:"results"`
}

// NewHistory создаёт пустую историю с инициализированными картами.
func NewHistory() History {
	return History{
		Attendance: make(map[string]AttendanceRecord),
		Results:    make(map[string]ResultsRecord),
	}
}

// IsEmpty возвращает true, если нет ни одного завершённого семестра.
func (h History) IsEmpty() bool {
	return len(h.Attendance) == 0 && len(h.Results) == 0
}

// SemesterKeys возвращает ключи семестров из обеих карт по возрастанию номера.
func (h History) SemesterKeys() []string {
	seen := make(map[int]struct{})
	for k := range h.Attendance {
		if n, err := ParseSemesterKey(k); err == nil {
			seen[n] = struct{}{}
		}
	}
	for k := range h.Results {
		if n, err := ParseSemesterKey(k); err == nil {
			seen[n] = struct{}{}
		}
	}
	nums := make([]int, 0, len(seen))
	for n := range seen {
		nums = append(nums, n)
	}
	sort.Ints(nums)

	keys := make([]string, len(nums))
	for i, n := range nums {
		keys[i] = SemesterKey(n)
	}
	return keys
}

// LatestSummary возвращает итоги последнего семестра с результатами.
func (h History) LatestSummary() (string, *Summary) {
	keys := h.SemesterKeys()
	for i := len(keys) - 1; i >= 0; i-- {
		if rec, ok := h.Results[keys[i]]; ok && rec.Summary != nil {
			return keys[i], rec.Summary
		}
	}
	return "", nil
}

// OverallAttendance возвращает посещаемость по всем семестрам.
func (h History) OverallAttendance() Percentage {
	var conducted, present int
	for _, rec := range h.Attendance {
		c, p := rec.Totals()
		conducted += c
		present += p
	}
	return PercentageOf(present, conducted)
}

// SemesterRecord - данные одного семестра для страниц посещаемости
// и результатов. Любая часть может отсутствовать.
type SemesterRecord struct {
	Attendance *AttendanceRecord `json:"attendance,omitempty"`
	Results    *ResultsRecord    `json:"results,omitempty"`
}

// IsEmpty возвращает true, если за семестр нет данных.
func (r SemesterRecord) IsEmpty() bool {
	return r.Attendance == nil && r.Results == nil
}

// Semester возвращает данные семестра по ключу "semN".
func (h History) Semester(key string) SemesterRecord {
	var rec SemesterRecord
	if a, ok := h.Attendance[key]; ok {
		rec.Attendance = &a
	}
	if r, ok := h.Results[key]; ok {
		rec.Results = &r
	}
	return rec
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
