package handlers

import (
	"net/http"
	"strconv"

	"github.com/valkyria/equestrian-club/middleware"
	"github.com/valkyria/equestrian-club/services"
)

type DashboardHandler struct {
	dashboardService services.DashboardService
}

func NewDashboardHandler(dashboardService services.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// Show отдаёт кабинет, соответствующий роли актора.
func (h *DashboardHandler) Show(w http.ResponseWriter, r *http.Request) {
	actor := middleware.ActorFromContext(r.Context())

	dashboard, err := h.dashboardService.ForActor(r.Context(), actor)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"dashboard": dashboard}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// TopJockeys — отчётная выборка рейтинга для администратора; limit задаётся
// query-параметром.
func (h *DashboardHandler) TopJockeys(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			limit = parsed
		}
	}

	actor := middleware.ActorFromContext(r.Context())
	jockeys, err := h.dashboardService.TopJockeys(r.Context(), actor, limit)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"top_jockeys": jockeys}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
