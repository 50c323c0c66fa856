package academic

// Grade представляет буквенную оценку за предмет.
type Grade string

const (
	GradeAPlus Grade = "A+"
	GradeA     Grade = "A"
	GradeBPlus Grade = "B+"
	GradeB     Grade = "B"
	GradeC     Grade = "C"
)

// GradePool - набор оценок, из которого синтезатор выбирает равновероятно.
// Порядок фиксирован: от высшей к низшей.
var GradePool = []Grade{GradeAPlus, GradeA, GradeBPlus, GradeB, GradeC}

var gradePoints = map[Grade]int{
	GradeAPlus: 10,
	GradeA:     9,
	GradeBPlus: 8,
	GradeB:     7,
	GradeC:     6,
}

// IsValid проверяет, что оценка входит в шкалу.
func (g Grade) IsValid() bool {
	_, ok := gradePoints[g]
	return ok
}

// Points возвращает количество баллов за оценку (A+=10 ... C=6).
// Для неизвестной оценки возвращает 0.
func (g Grade) Points() int {
	return gradePoints[g]
}

// String возвращает строковое представление оценки.
func (g Grade) String() string {
	return string(g)
}
