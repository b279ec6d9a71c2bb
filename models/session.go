package models

import "time"

// Session — строка в таблице sessions. Токен (jti из JWT) проверяется на
// каждом запросе; logout удаляет строку и тем самым немедленно отзывает
// токен, даже если его exp ещё не наступил.
type Session struct {
	Token     string
	UserID    int
	Role      UserRole
	CreatedAt time.Time
	ExpiresAt time.Time
}

func (s *Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}
