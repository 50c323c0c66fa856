package directory

import "unicode/utf8"

// PasswordHasher хэширует и проверяет пароли.
// Реализация (bcrypt) находится в infrastructure/security.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) bool
}

// PasswordStrength оценивает пароль по шкале 0..100:
// по 25 баллов за длину от 8 символов, заглавную букву, строчную букву,
// цифру и спецсимвол (любой символ кроме латиницы и цифр),
// с ограничением 100.
func PasswordStrength(password string) int {
	var upper, lower, digit, special bool
	for _, r := range password {
		switch {
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= '0' && r <= '9':
			digit = true
		default:
			special = true
		}
	}

	score := 0
	if utf8.RuneCountInString(password) >= 8 {
		score += 25
	}
	for _, ok := range []bool{upper, lower, digit, special} {
		if ok {
			score += 25
		}
	}
	return min(score, 100)
}
