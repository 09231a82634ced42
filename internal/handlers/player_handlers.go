package handlers

import (
	"fmt"
	"net/http"

	"anniversary-timeline/internal/imaging"
	"anniversary-timeline/internal/logger"
	"anniversary-timeline/internal/player"
	"anniversary-timeline/internal/services"
)

// PlayerHandler drives the presentation player over HTTP
type PlayerHandler struct {
	session   *services.Session
	validator *RequestValidator
	render    imaging.RenderOptions
	log       *logger.Logger
}

func NewPlayerHandler(session *services.Session, validator *RequestValidator, log *logger.Logger) *PlayerHandler {
	return &PlayerHandler{
		session:   session,
		validator: validator,
		render:    imaging.DefaultRenderOptions(),
		log:       log,
	}
}

// PlayerResponse is the view after an action and whether the action did anything
type PlayerResponse struct {
	Changed bool        `json:"changed"`
	View    player.View `json:"view"`
}

type KeyRequest struct {
	Key string `json:"key" validate:"required"`
}

type ScrollRequest struct {
	ScrollTop      float64 `json:"scrollTop" validate:"min=0"`
	ScrollHeight   float64 `json:"scrollHeight" validate:"min=0"`
	ViewportHeight float64 `json:"viewportHeight" validate:"min=0"`
}

// SwipeRequest is one touch gesture, start and end points in screen pixels
type SwipeRequest struct {
	StartX float64        `json:"startX"`
	StartY float64        `json:"startY"`
	EndX   float64        `json:"endX"`
	EndY   float64        `json:"endY"`
	Scroll *ScrollRequest `json:"scroll,omitempty"`
}

func (s SwipeRequest) swipe() player.Swipe {
	sw := player.Swipe{StartX: s.StartX, StartY: s.StartY, EndX: s.EndX, EndY: s.EndY}
	if s.Scroll != nil {
		sw.Scroll = &player.ScrollState{
			ScrollTop:      s.Scroll.ScrollTop,
			ScrollHeight:   s.Scroll.ScrollHeight,
			ViewportHeight: s.Scroll.ViewportHeight,
		}
	}
	return sw
}

type SelectRequest struct {
	AnswerID string `json:"answerId" validate:"required"`
}

func respondPlayer(w http.ResponseWriter, v player.View, changed bool) {
	writeJSON(w, http.StatusOK, PlayerResponse{Changed: changed, View: v})
}

// GetView returns the current player view
// GET /api/player
func (h *PlayerHandler) GetView(w http.ResponseWriter, r *http.Request) {
	respondPlayer(w, h.session.View(), false)
}

// Present starts playback at the first slide
// POST /api/player/present
func (h *PlayerHandler) Present(w http.ResponseWriter, r *http.Request) {
	v, changed := h.session.Present()
	if !changed && v.Total == 0 {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:  "validation failed",
			Fields: map[string]string{"slides": "Add at least one slide first"},
		})
		return
	}
	respondPlayer(w, v, changed)
}

// POST /api/player/advance
func (h *PlayerHandler) Advance(w http.ResponseWriter, r *http.Request) {
	v, changed := h.session.Advance()
	respondPlayer(w, v, changed)
}

// POST /api/player/retreat
func (h *PlayerHandler) Retreat(w http.ResponseWriter, r *http.Request) {
	v, changed := h.session.Retreat()
	respondPlayer(w, v, changed)
}

// POST /api/player/exit
func (h *PlayerHandler) Exit(w http.ResponseWriter, r *http.Request) {
	v, changed := h.session.Exit()
	respondPlayer(w, v, changed)
}

// Key applies a keyboard key: ArrowUp, ArrowDown or Escape
// POST /api/player/key
func (h *PlayerHandler) Key(w http.ResponseWriter, r *http.Request) {
	var req KeyRequest
	if err := h.validator.decodeJSON(r, &req); err != nil {
		writeError(w, h.log, err)
		return
	}
	v, changed := h.session.HandleKey(req.Key)
	respondPlayer(w, v, changed)
}

// Swipe applies a touch gesture
// POST /api/player/swipe
func (h *PlayerHandler) Swipe(w http.ResponseWriter, r *http.Request) {
	var req SwipeRequest
	if err := h.validator.decodeJSON(r, &req); err != nil {
		writeError(w, h.log, err)
		return
	}
	v, changed := h.session.HandleSwipe(req.swipe())
	respondPlayer(w, v, changed)
}

// Select answers the quiz on the current slide
// POST /api/player/select
func (h *PlayerHandler) Select(w http.ResponseWriter, r *http.Request) {
	var req SelectRequest
	if err := h.validator.decodeJSON(r, &req); err != nil {
		writeError(w, h.log, err)
		return
	}
	v, changed := h.session.Select(req.AnswerID)
	respondPlayer(w, v, changed)
}

// SlidePNG downloads the current slide as an image
// GET /api/player/slide.png
func (h *PlayerHandler) SlidePNG(w http.ResponseWriter, r *http.Request) {
	filename, png, err := h.session.RenderCurrentSlide(h.render)
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}
