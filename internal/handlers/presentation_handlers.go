package handlers

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"anniversary-timeline/internal/logger"
	"anniversary-timeline/internal/models"
	"anniversary-timeline/internal/services"
)

// PresentationHandler handles HTTP requests for saved presentations
type PresentationHandler struct {
	session   *services.Session
	validator *RequestValidator
	log       *logger.Logger
}

// NewPresentationHandler creates a new presentation handler
func NewPresentationHandler(session *services.Session, validator *RequestValidator, log *logger.Logger) *PresentationHandler {
	return &PresentationHandler{
		session:   session,
		validator: validator,
		log:       log,
	}
}

// SavePresentationRequest names the presentation the current slides are saved as
type SavePresentationRequest struct {
	Title string `json:"title" validate:"required,max=100"`
}

// SavePresentationResponse carries the id the store assigned
type SavePresentationResponse struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// LoadPresentationResponse is what the editor now holds
type LoadPresentationResponse struct {
	ID     string         `json:"id"`
	Title  string         `json:"title"`
	Slides []models.Slide `json:"slides"`
}

// ListPresentations returns every saved presentation
// GET /api/presentations
func (h *PresentationHandler) ListPresentations(w http.ResponseWriter, r *http.Request) {
	presentations, err := h.session.ListPresentations(r.Context())
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, presentations)
}

// SavePresentation stores the current slides as a new presentation
// POST /api/presentations
func (h *PresentationHandler) SavePresentation(w http.ResponseWriter, r *http.Request) {
	var req SavePresentationRequest
	if err := h.validator.decodeJSON(r, &req); err != nil {
		writeError(w, h.log, err)
		return
	}

	id, err := h.session.Save(r.Context(), req.Title)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, SavePresentationResponse{ID: id, Title: req.Title})
}

// GetPresentation returns one saved presentation
// GET /api/presentations/{id}
func (h *PresentationHandler) GetPresentation(w http.ResponseWriter, r *http.Request) {
	p, found, err := h.session.GetPresentation(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	if !found {
		writeNotFound(w, "presentation")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// UpdatePresentation overwrites a saved presentation with the current slides
// PUT /api/presentations/{id}
func (h *PresentationHandler) UpdatePresentation(w http.ResponseWriter, r *http.Request) {
	var req SavePresentationRequest
	if err := h.validator.decodeJSON(r, &req); err != nil {
		writeError(w, h.log, err)
		return
	}

	id := mux.Vars(r)["id"]
	if err := h.session.UpdatePresentation(r.Context(), id, req.Title); err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, SavePresentationResponse{ID: id, Title: req.Title})
}

// DeletePresentation removes a saved presentation
// DELETE /api/presentations/{id}?confirm=true
func (h *PresentationHandler) DeletePresentation(w http.ResponseWriter, r *http.Request) {
	d := decisionOf(r)
	if _, err := h.session.DeletePresentation(r.Context(), mux.Vars(r)["id"], d); err != nil {
		writeError(w, h.log, err)
		return
	}
	writeDecision(w, d)
}

// LoadPresentation replaces the editor slides with a saved presentation
// POST /api/presentations/{id}/load
func (h *PresentationHandler) LoadPresentation(w http.ResponseWriter, r *http.Request) {
	p, found, err := h.session.Load(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	if !found {
		writeNotFound(w, "presentation")
		return
	}
	writeJSON(w, http.StatusOK, LoadPresentationResponse{ID: p.ID, Title: p.Title, Slides: h.session.Slides()})
}

// ExportPresentation downloads a saved presentation as JSON
// GET /api/presentations/{id}/export
func (h *PresentationHandler) ExportPresentation(w http.ResponseWriter, r *http.Request) {
	filename, data, found, err := h.session.Export(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	if !found {
		writeNotFound(w, "presentation")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
