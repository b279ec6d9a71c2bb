package handlers

import (
	"net/http"

	"github.com/valkyria/equestrian-club/middleware"
	"github.com/valkyria/equestrian-club/services"
)

type UserHandler struct {
	userService services.UserService
}

func NewUserHandler(userService services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	actor := middleware.ActorFromContext(r.Context())

	user, err := h.userService.GetProfile(r.Context(), actor)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"user": user}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// UpdateProfile сохраняет изменения даже при некорректных числовых полях;
// такие поля остаются прежними, а клиенту возвращаются предупреждения.
func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var input services.UpdateProfileInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	actor := middleware.ActorFromContext(r.Context())
	user, warnings, err := h.userService.UpdateProfile(r.Context(), actor, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"user": user}
	if len(warnings) > 0 {
		response["warnings"] = warnings
	}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListJockeys и ListOwners отдают варианты для форм результатов и лошадей.
func (h *UserHandler) ListJockeys(w http.ResponseWriter, r *http.Request) {
	jockeys, err := h.userService.ListJockeys(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"jockeys": jockeys}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *UserHandler) ListOwners(w http.ResponseWriter, r *http.Request) {
	owners, err := h.userService.ListOwners(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"owners": owners}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
