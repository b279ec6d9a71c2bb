package utils

import (
	"strconv"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

const BcryptCost = 12

// HashPassword — единственная точка хеширования паролей. Открытый текст
// нигде не сохраняется и не логируется.
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// ParseOptionalInt реализует политику снисходительности к необязательным
// числовым полям: пустая строка — значение отсутствует, некорректный текст
// молча игнорируется (ok=false), запись при этом не прерывается.
func ParseOptionalInt(raw string) (value *int, ok bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil, false
	}
	return &n, true
}

// ParseOptionalFloat — то же для дробных значений (рейтинг жокея).
func ParseOptionalFloat(raw string) (value *float64, ok bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, true
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, false
	}
	return &f, true
}

// OptionalString возвращает nil для пустой строки.
func OptionalString(raw string) *string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	return &raw
}
