package handlers

import (
	"errors"
	"net/http"

	"github.com/valkyria/equestrian-club/middleware"
	"github.com/valkyria/equestrian-club/services"
)

type AuthHandler struct {
	authService    services.AuthService
	sessionService services.SessionService
}

func NewAuthHandler(authService services.AuthService, sessionService services.SessionService) *AuthHandler {
	return &AuthHandler{
		authService:    authService,
		sessionService: sessionService,
	}
}

// Register — самостоятельная регистрация жокея или владельца. Для уже
// аутентифицированного актора запрос отклоняется.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var input services.RegisterInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	actor := middleware.ActorFromContext(r.Context())
	user, err := h.authService.Register(r.Context(), actor, input)
	if err != nil {
		if errors.Is(err, services.ErrInsufficientPrivilege) {
			badRequestResponse(w, r, errors.New("already authenticated"))
			return
		}
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"user": user}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var input services.LoginInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if input.Username == "" || input.Password == "" {
		badRequestResponse(w, r, errors.New("username and password are required"))
		return
	}

	user, err := h.authService.Login(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	token, err := h.sessionService.Issue(r.Context(), user)
	if err != nil {
		serverErrorResponse(w, r, err)
		return
	}

	response := jsonResponse{
		"token": token,
		"user":  user,
	}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Logout отзывает сессию немедленно: токен перестаёт действовать до
// истечения своего exp.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	sessionToken, ok := middleware.SessionTokenFromContext(r.Context())
	if !ok {
		unauthorizedResponse(w, r, "authentication required")
		return
	}

	if err := h.sessionService.Revoke(r.Context(), sessionToken); err != nil {
		serverErrorResponse(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"message": "logged out"}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
