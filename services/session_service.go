package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/valkyria/equestrian-club/models"
	"github.com/valkyria/equestrian-club/repositories"
)

// SessionService выпускает и отзывает токены. Токен — это JWT с jti,
// который дополнительно хранится в таблице sessions: подпись защищает от
// подделки, а строка в БД делает logout немедленным.
type SessionService interface {
	Issue(ctx context.Context, user *models.User) (string, error)
	Resolve(ctx context.Context, token string) (models.Actor, string, error)
	Revoke(ctx context.Context, sessionToken string) error
	PurgeExpired(ctx context.Context) (int64, error)
	PurgeLoop(ctx context.Context, interval time.Duration)
}

type sessionService struct {
	sessionRepo repositories.SessionRepository
	jwtSecret   []byte
	ttl         time.Duration
}

func NewSessionService(sessionRepo repositories.SessionRepository, jwtSecret string, ttl time.Duration) SessionService {
	return &sessionService{
		sessionRepo: sessionRepo,
		jwtSecret:   []byte(jwtSecret),
		ttl:         ttl,
	}
}

func (s *sessionService) Issue(ctx context.Context, user *models.User) (string, error) {
	sessionToken := generateRandomToken(32)
	now := time.Now()
	expiresAt := now.Add(s.ttl)

	session := &models.Session{
		Token:     sessionToken,
		UserID:    user.ID,
		Role:      user.Role,
		ExpiresAt: expiresAt,
	}
	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return "", fmt.Errorf("failed to persist session: %w", err)
	}

	claims := jwt.MapClaims{
		"user_id": user.ID,
		"role":    string(user.Role),
		"jti":     sessionToken,
		"exp":     expiresAt.Unix(),
		"iat":     now.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Resolve проверяет подпись и наличие неотозванной сессии, возвращая актора
// и jti (нужен обработчику logout).
func (s *sessionService) Resolve(ctx context.Context, tokenString string) (models.Actor, string, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return models.Anonymous(), "", ErrSessionInvalid
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return models.Anonymous(), "", ErrSessionInvalid
	}

	jti, _ := claims["jti"].(string)
	if jti == "" {
		return models.Anonymous(), "", ErrSessionInvalid
	}

	session, err := s.sessionRepo.GetByToken(ctx, jti)
	if err != nil {
		if errors.Is(err, repositories.ErrSessionNotFound) {
			// Сессия отозвана logout-ом.
			return models.Anonymous(), "", ErrSessionInvalid
		}
		return models.Anonymous(), "", fmt.Errorf("failed to load session: %w", err)
	}
	if session.Expired(time.Now()) {
		return models.Anonymous(), "", ErrSessionInvalid
	}

	actor := models.Actor{
		ID:            session.UserID,
		Role:          session.Role,
		Authenticated: true,
	}
	return actor, jti, nil
}

func (s *sessionService) Revoke(ctx context.Context, sessionToken string) error {
	err := s.sessionRepo.Delete(ctx, sessionToken)
	if err != nil && !errors.Is(err, repositories.ErrSessionNotFound) {
		return fmt.Errorf("failed to revoke session: %w", err)
	}
	return nil
}

func (s *sessionService) PurgeExpired(ctx context.Context) (int64, error) {
	return s.sessionRepo.DeleteExpired(ctx)
}

// PurgeLoop периодически вычищает истёкшие сессии и завершается вместе с
// контекстом приложения.
func (s *sessionService) PurgeLoop(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			purged, err := s.PurgeExpired(ctx)
			if err != nil {
				slog.Error("session purge failed", slog.Any("error", err))
				continue
			}
			if purged > 0 {
				slog.Info("expired sessions purged", slog.Int64("count", purged))
			}
		}
	}
}

func generateRandomToken(length int) string {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	randomBytes := make([]byte, length)
	if _, err := rand.Read(randomBytes); err != nil {
		panic(fmt.Sprintf("crypto/rand unavailable: %v", err))
	}
	b := make([]byte, length)
	for i, rb := range randomBytes {
		b[i] = charset[int(rb)%len(charset)]
	}
	return string(b)
}
