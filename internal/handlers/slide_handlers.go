package handlers

import (
	"io"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"anniversary-timeline/internal/editor"
	"anniversary-timeline/internal/imaging"
	"anniversary-timeline/internal/logger"
	"anniversary-timeline/internal/models"
	"anniversary-timeline/internal/services"
)

// SlideHandler handles HTTP requests for the slides being edited
type SlideHandler struct {
	session        *services.Session
	validator      *RequestValidator
	maxUploadBytes int64
	log            *logger.Logger
}

func NewSlideHandler(session *services.Session, validator *RequestValidator, maxUploadBytes int64, log *logger.Logger) *SlideHandler {
	return &SlideHandler{
		session:        session,
		validator:      validator,
		maxUploadBytes: maxUploadBytes,
		log:            log,
	}
}

// SlidesResponse is the editor state
type SlidesResponse struct {
	Slides         []models.Slide `json:"slides"`
	PresentationID string         `json:"presentationId,omitempty"`
	Title          string         `json:"title,omitempty"`
}

// UpdateSlideRequest carries the fields to change. Omitted fields are kept.
type UpdateSlideRequest struct {
	Image  *string `json:"image"`
	Phrase *string `json:"phrase" validate:"omitempty,max=200"`
}

type AnswerRequest struct {
	ID        string `json:"id"`
	Text      string `json:"text" validate:"max=100"`
	IsCorrect bool   `json:"isCorrect"`
}

// QuizRequest is a complete quiz for one slide
type QuizRequest struct {
	Question       string          `json:"question" validate:"max=200"`
	Answers        []AnswerRequest `json:"answers" validate:"max=4,dive"`
	CorrectMessage string          `json:"correctMessage" validate:"max=100"`
}

func (q QuizRequest) draft() *editor.QuizDraft {
	quiz := &models.Quiz{Question: q.Question, CorrectMessage: q.CorrectMessage}
	for _, a := range q.Answers {
		quiz.Answers = append(quiz.Answers, models.Answer{ID: a.ID, Text: a.Text, IsCorrect: a.IsCorrect})
	}
	return editor.DraftFromQuiz(quiz)
}

// ListSlides returns every slide in order
// GET /api/slides
func (h *SlideHandler) ListSlides(w http.ResponseWriter, r *http.Request) {
	id, title := h.session.Loaded()
	writeJSON(w, http.StatusOK, SlidesResponse{
		Slides:         h.session.Slides(),
		PresentationID: id,
		Title:          title,
	})
}

// AddSlide appends a blank slide
// POST /api/slides
func (h *SlideHandler) AddSlide(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusCreated, h.session.AddSlide())
}

// ClearSlides empties the editor
// DELETE /api/slides?confirm=true
func (h *SlideHandler) ClearSlides(w http.ResponseWriter, r *http.Request) {
	d := decisionOf(r)
	h.session.ClearSlides(d)
	writeDecision(w, d)
}

// UpdateSlide changes the photo and/or caption of a slide
// PATCH /api/slides/{id}
func (h *SlideHandler) UpdateSlide(w http.ResponseWriter, r *http.Request) {
	var req UpdateSlideRequest
	if err := h.validator.decodeJSON(r, &req); err != nil {
		writeError(w, h.log, err)
		return
	}

	slide, ok := h.session.UpdateSlide(mux.Vars(r)["id"], editor.SlidePatch{Image: req.Image, Phrase: req.Phrase})
	if !ok {
		writeNotFound(w, "slide")
		return
	}
	writeJSON(w, http.StatusOK, slide)
}

// DeleteSlide removes a slide
// DELETE /api/slides/{id}
func (h *SlideHandler) DeleteSlide(w http.ResponseWriter, r *http.Request) {
	if !h.session.DeleteSlide(mux.Vars(r)["id"]) {
		writeNotFound(w, "slide")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UploadImage reads a multipart "image" file or a raw image body and sets
// it as the slide photo
// POST /api/slides/{id}/image
func (h *SlideHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if _, ok := h.session.Slide(id); !ok {
		writeNotFound(w, "slide")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes+1<<20)

	var body io.Reader = r.Body
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
		file, _, err := r.FormFile("image")
		if err != nil {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{
				Error:  "validation failed",
				Fields: map[string]string{"image": "is required"},
			})
			return
		}
		defer file.Close()
		body = file
	}

	uri, err := imaging.DataURIFromUpload(body, h.maxUploadBytes)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:  "validation failed",
			Fields: map[string]string{"image": err.Error()},
		})
		return
	}

	slide, ok := h.session.UpdateSlide(id, editor.SlidePatch{Image: &uri})
	if !ok {
		writeNotFound(w, "slide")
		return
	}
	writeJSON(w, http.StatusOK, slide)
}

// SetQuiz attaches or replaces the quiz of a slide
// PUT /api/slides/{id}/quiz
func (h *SlideHandler) SetQuiz(w http.ResponseWriter, r *http.Request) {
	var req QuizRequest
	if err := h.validator.decodeJSON(r, &req); err != nil {
		writeError(w, h.log, err)
		return
	}

	slide, found, err := h.session.SetQuiz(mux.Vars(r)["id"], req.draft())
	if !found {
		writeNotFound(w, "slide")
		return
	}
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, slide)
}

// RemoveQuiz detaches the quiz of a slide
// DELETE /api/slides/{id}/quiz?confirm=true
func (h *SlideHandler) RemoveQuiz(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	slide, ok := h.session.Slide(id)
	if !ok || !slide.HasQuiz() {
		writeNotFound(w, "quiz")
		return
	}

	d := decisionOf(r)
	h.session.RemoveQuiz(id, d)
	writeDecision(w, d)
}
