package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/valkyria/equestrian-club/models"
)

const testJWTSecret = "test-secret"

func TestSessionIssueResolveRevoke(t *testing.T) {
	repo := newFakeSessionRepo()
	service := NewSessionService(repo, testJWTSecret, time.Hour)

	user := &models.User{ID: 7, Role: models.RoleOwner}
	token, err := service.Issue(context.Background(), user)
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}
	if token == "" {
		t.Fatalf("empty token issued")
	}

	actor, jti, err := service.Resolve(context.Background(), token)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if actor.ID != user.ID || actor.Role != user.Role || !actor.Authenticated {
		t.Fatalf("wrong actor resolved: %+v", actor)
	}
	if jti == "" {
		t.Fatalf("empty session id resolved")
	}

	// Отзыв действует немедленно: тот же токен больше не принимается.
	if err := service.Revoke(context.Background(), jti); err != nil {
		t.Fatalf("revoke failed: %v", err)
	}
	if _, _, err := service.Resolve(context.Background(), token); !errors.Is(err, ErrSessionInvalid) {
		t.Fatalf("revoked token must be rejected, got %v", err)
	}

	// Повторный отзыв идемпотентен.
	if err := service.Revoke(context.Background(), jti); err != nil {
		t.Fatalf("second revoke must not fail: %v", err)
	}
}

func TestResolveRejectsForgedAndForeignTokens(t *testing.T) {
	repo := newFakeSessionRepo()
	service := NewSessionService(repo, testJWTSecret, time.Hour)
	foreign := NewSessionService(newFakeSessionRepo(), "another-secret", time.Hour)

	user := &models.User{ID: 7, Role: models.RoleOwner}
	foreignToken, err := foreign.Issue(context.Background(), user)
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	cases := []struct {
		name  string
		token string
	}{
		{"garbage", "not-a-token"},
		{"empty", ""},
		{"wrong signature", foreignToken},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			actor, _, err := service.Resolve(context.Background(), tc.token)
			if !errors.Is(err, ErrSessionInvalid) {
				t.Fatalf("expected ErrSessionInvalid, got %v", err)
			}
			if actor.Authenticated {
				t.Fatalf("rejected token must yield an anonymous actor")
			}
		})
	}
}

func TestResolveRejectsExpiredSession(t *testing.T) {
	repo := newFakeSessionRepo()
	service := NewSessionService(repo, testJWTSecret, -time.Minute)

	user := &models.User{ID: 7, Role: models.RoleJockey}
	token, err := service.Issue(context.Background(), user)
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	if _, _, err := service.Resolve(context.Background(), token); !errors.Is(err, ErrSessionInvalid) {
		t.Fatalf("expired token must be rejected, got %v", err)
	}
}

// Фоновая чистка выполняет работу по тикеру и завершается по отмене
// контекста приложения.
func TestPurgeLoopRunsAndStopsWithContext(t *testing.T) {
	repo := newFakeSessionRepo()
	stale := &models.Session{Token: "stale", UserID: 2, Role: models.RoleJockey, ExpiresAt: time.Now().Add(-time.Hour)}
	if err := repo.Create(context.Background(), stale); err != nil {
		t.Fatalf("seed session failed: %v", err)
	}

	service := NewSessionService(repo, testJWTSecret, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		service.PurgeLoop(ctx, 5*time.Millisecond)
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for {
		if _, err := repo.GetByToken(context.Background(), "stale"); err != nil {
			break
		}
		select {
		case <-deadline:
			t.Fatalf("stale session was never purged")
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("purge loop did not stop after context cancellation")
	}
}

func TestPurgeExpiredKeepsLiveSessions(t *testing.T) {
	repo := newFakeSessionRepo()

	live := &models.Session{Token: "live", UserID: 1, Role: models.RoleOwner, ExpiresAt: time.Now().Add(time.Hour)}
	stale := &models.Session{Token: "stale", UserID: 2, Role: models.RoleJockey, ExpiresAt: time.Now().Add(-time.Hour)}
	_ = repo.Create(context.Background(), live)
	_ = repo.Create(context.Background(), stale)

	service := NewSessionService(repo, testJWTSecret, time.Hour)
	purged, err := service.PurgeExpired(context.Background())
	if err != nil {
		t.Fatalf("purge failed: %v", err)
	}
	if purged != 1 {
		t.Fatalf("expected 1 purged session, got %d", purged)
	}
	if _, err := repo.GetByToken(context.Background(), "live"); err != nil {
		t.Fatalf("live session must survive the purge: %v", err)
	}
	if _, err := repo.GetByToken(context.Background(), "stale"); err == nil {
		t.Fatalf("stale session must be removed")
	}
}
