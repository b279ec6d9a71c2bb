package handlers

import (
	"errors"
	"net/http"

	"github.com/valkyria/equestrian-club/middleware"
	"github.com/valkyria/equestrian-club/services"
)

const maxPhotoSize = 5 << 20 // 5MB

type HorseHandler struct {
	horseService services.HorseService
}

func NewHorseHandler(horseService services.HorseService) *HorseHandler {
	return &HorseHandler{horseService: horseService}
}

// List возвращает лошадей с ролевым фильтром видимости: администратору —
// всех, владельцу — только своих.
func (h *HorseHandler) List(w http.ResponseWriter, r *http.Request) {
	actor := middleware.ActorFromContext(r.Context())

	horses, err := h.horseService.ListVisible(r.Context(), actor)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"horses": horses}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *HorseHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	actor := middleware.ActorFromContext(r.Context())
	horse, err := h.horseService.GetByID(r.Context(), actor, id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"horse": horse}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *HorseHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input services.HorseInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	actor := middleware.ActorFromContext(r.Context())
	horse, err := h.horseService.Create(r.Context(), actor, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusCreated, jsonResponse{"horse": horse}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *HorseHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.HorseInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	actor := middleware.ActorFromContext(r.Context())
	horse, err := h.horseService.Update(r.Context(), actor, id, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"horse": horse}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *HorseHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	actor := middleware.ActorFromContext(r.Context())
	if err := h.horseService.Delete(r.Context(), actor, id); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UploadPhoto принимает multipart-форму с полем "photo".
func (h *HorseHandler) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := r.ParseMultipartForm(maxPhotoSize); err != nil {
		badRequestResponse(w, r, errors.New("photo upload must be a multipart form"))
		return
	}
	file, header, err := r.FormFile("photo")
	if err != nil {
		badRequestResponse(w, r, errors.New("photo file is required"))
		return
	}
	defer file.Close()

	actor := middleware.ActorFromContext(r.Context())
	horse, err := h.horseService.UploadPhoto(r.Context(), actor, id, header.Header.Get("Content-Type"), file)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"horse": horse}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
