package academic

import (
	"fmt"
	"strconv"
	"strings"
)

// ══════════════════════════════════════════════════════════════════════════════
// CATALOG
// ══════════════════════════════════════════════════════════════════════════════

// MaxSemester - последний семестр программы.
const MaxSemester = 8

const (
	// TheoryHours - число проведённых занятий для теоретического предмета.
	TheoryHours = 60
	// PracticalHours - число занятий для лабораторной или проектной работы.
	PracticalHours = 30

	// TheoryCredits - кредиты за теоретический предмет.
	TheoryCredits = 4
	// PracticalCredits - кредиты за лабораторную или проектную работу.
	PracticalCredits = 2
)

// Catalog - упорядоченные списки предметов по номеру семестра (с 1).
type Catalog map[int][]string

// DefaultCatalog возвращает каталог программы B.Tech CSE (AI/ML).
func DefaultCatalog() Catalog {
	return Catalog{
		1: {"Mathematics I", "Physics", "Basic Electrical Engg.", "Problem Solving with C"},
		2: {"Mathematics II", "Chemistry", "Data Structures", "Object Oriented Prog."},
		3: {"Advanced Algorithms", "Database Systems", "Web Development", "Operating Systems"},
		4: {"Computer Networks", "Software Engineering", "AI/ML", "Compiler Design"},
		5: {"Distributed Systems", "Cryptography", "Image Processing", "Project Mgmt"},
		6: {"Cloud Computing", "Big Data Analytics", "IoT", "Mobile Computing"},
		7: {"Deep Learning", "Natural Language Processing", "Cyber Security", "Final Project I"},
		8: {"Final Project II", "Internship", "Ethics in Engineering", "Elective"},
	}
}

// Subjects возвращает предметы семестра. Для семестра вне каталога
// возвращает nil.
func (c Catalog) Subjects(semester int) []string {
	if c == nil {
		return nil
	}
	return c[semester]
}

// IsPractical определяет лабораторную или проектную работу по названию.
func IsPractical(name string) bool {
	return strings.Contains(name, "Lab") || strings.Contains(name, "Project")
}

// SubjectCode строит код предмета: две первые буквы названия в верхнем
// регистре, номер семестра, "0" и позиция предмета с 1.
// Например, второй предмет третьего семестра "Database Systems" -> "DA302".
func SubjectCode(name string, semester, position int) string {
	prefix := []rune(name)
	if len(prefix) > 2 {
		prefix = prefix[:2]
	}
	return fmt.Sprintf("%s%d0%d", strings.ToUpper(string(prefix)), semester, position+1)
}

// ══════════════════════════════════════════════════════════════════════════════
// SEMESTER KEYS
// ══════════════════════════════════════════════════════════════════════════════

// SemesterKey возвращает ключ семестра вида "sem3".
func SemesterKey(semester int) string {
	return "sem" + strconv.Itoa(semester)
}

// ParseSemesterKey разбирает ключ "semN" и возвращает N.
func ParseSemesterKey(key string) (int, error) {
	rest, ok := strings.CutPrefix(key, "sem")
	if !ok {
		return 0, fmt.Errorf("invalid semester key %q", key)
	}
	n, err := strconv.Atoi(rest)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid semester key %q", key)
	}
	return n, nil
}

// SessionLabel возвращает подпись экзаменационной сессии.
// Нечётные семестры сдаются в мае, чётные в декабре:
// 1 -> "May 2022", 2 -> "Dec 2022", 3 -> "May 2023".
func SessionLabel(semester, baseYear int) string {
	if semester%2 != 0 {
		return fmt.Sprintf("May %d", baseYear+semester/2)
	}
	return fmt.Sprintf("Dec %d", baseYear+(semester-1)/2)
}
