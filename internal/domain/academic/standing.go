package academic

// Standing - оценка посещаемости для предупреждений на панели студента.
type Standing string

const (
	// StandingGood - посещаемость 85% и выше.
	StandingGood Standing = "good"
	// StandingWarning - от 75% до 85%.
	StandingWarning Standing = "warning"
	// StandingLow - ниже 75%, есть риск недопуска к экзаменам.
	StandingLow Standing = "low"
	// StandingUnknown - занятий ещё не было.
	StandingUnknown Standing = "unknown"
)

// Пороги посещаемости в процентах.
const (
	EligibilityThreshold = 75.0
	WarningThreshold     = 85.0
)

// LowAttendanceMessage - предупреждение при посещаемости ниже порога допуска.
const LowAttendanceMessage = "Your attendance is below 75%. You may face exam eligibility issues."

// StandingOf классифицирует процент посещаемости.
func StandingOf(p Percentage) Standing {
	v, ok := p.Value()
	switch {
	case !ok:
		return StandingUnknown
	case v < EligibilityThreshold:
		return StandingLow
	case v < WarningThreshold:
		return StandingWarning
	default:
		return StandingGood
	}
}
