package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/valkyria/equestrian-club/models"
	"github.com/valkyria/equestrian-club/services"
)

type contextKey string

const (
	actorContextKey        contextKey = "actor"
	sessionTokenContextKey contextKey = "session_token"
)

// Authenticator резолвит актора по Bearer-токену через SessionService:
// подпись JWT плюс живая строка сессии в БД. Ролевые проверки здесь не
// выполняются — это работа services.Authorize перед каждой операцией.
type Authenticator struct {
	sessions services.SessionService
}

func NewAuthenticator(sessions services.SessionService) *Authenticator {
	return &Authenticator{sessions: sessions}
}

// Require отклоняет запрос без установленной личности. Ответ 401
// соответствует причине отказа "authentication required".
func (a *Authenticator) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, sessionToken, err := a.resolve(r)
		if err != nil || !actor.Authenticated {
			http.Error(w, "authentication required", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r.WithContext(withIdentity(r.Context(), actor, sessionToken)))
	})
}

// Optional пропускает запрос в любом случае, подкладывая анонимного актора,
// если токена нет или он отозван. Нужен публичным маршрутам и регистрации
// (она блокируется для уже аутентифицированных).
func (a *Authenticator) Optional(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, sessionToken, err := a.resolve(r)
		if err != nil {
			actor = models.Anonymous()
			sessionToken = ""
		}
		next.ServeHTTP(w, r.WithContext(withIdentity(r.Context(), actor, sessionToken)))
	})
}

func (a *Authenticator) resolve(r *http.Request) (models.Actor, string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return models.Anonymous(), "", nil
	}
	tokenString, found := strings.CutPrefix(header, "Bearer ")
	if !found || tokenString == "" {
		return models.Anonymous(), "", errors.New("malformed authorization header")
	}
	return a.sessions.Resolve(r.Context(), tokenString)
}

func withIdentity(ctx context.Context, actor models.Actor, sessionToken string) context.Context {
	ctx = context.WithValue(ctx, actorContextKey, actor)
	if sessionToken != "" {
		ctx = context.WithValue(ctx, sessionTokenContextKey, sessionToken)
	}
	return ctx
}

// ActorFromContext возвращает актора запроса; при отсутствии — анонимного.
func ActorFromContext(ctx context.Context) models.Actor {
	if actor, ok := ctx.Value(actorContextKey).(models.Actor); ok {
		return actor
	}
	return models.Anonymous()
}

// SessionTokenFromContext нужен обработчику logout для отзыва сессии.
func SessionTokenFromContext(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(sessionTokenContextKey).(string)
	return token, ok && token != ""
}
