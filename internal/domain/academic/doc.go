// Package academic содержит доменную модель академической истории студента.
//
// Пакет определяет:
//
//   - Value Objects: Grade, SubjectType, Percentage, Catalog
//   - Записи: AttendanceRecord, ResultsRecord, History
//   - Синтезатор истории: Synthesizer
//
// # Синтезатор
//
// Synthesizer строит историю посещаемости и результатов экзаменов
// для всех завершённых семестров (1..currentSemester-1):
//
//	synth := academic.NewSynthesizer(
//	    academic.WithBaseYear(2022),
//	    academic.WithRandomSource(rand.New(rand.NewSource(42))),
//	)
//	history := synth.GenerateHistory(4) // sem1, sem2, sem3
//
// История создаётся один раз при зачислении студента и дальше не меняется:
// это снимок, а не журнал.
//
// Источник случайности внедряется через RandomSource, поэтому тесты
// могут подставить детерминированную последовательность.
//
// Пакет не имеет внешних зависимостей.
package academic
