package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"anniversary-timeline/internal/metrics"
	"anniversary-timeline/internal/services"
)

// HealthHandler reports liveness and whether persistence is configured
type HealthHandler struct {
	service *services.PresentationService
}

func NewHealthHandler(service *services.PresentationService) *HealthHandler {
	return &HealthHandler{service: service}
}

type HealthResponse struct {
	Status  string `json:"status"`
	Storage bool   `json:"storage"`
}

// GET /healthz
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok", Storage: h.service.Available()})
}

// SetupRoutes configures all HTTP routes
func SetupRoutes(
	slideHandler *SlideHandler,
	presentationHandler *PresentationHandler,
	playerHandler *PlayerHandler,
	wsHandler *WebSocketHandler,
	healthHandler *HealthHandler,
	m *metrics.Metrics,
) *mux.Router {
	r := mux.NewRouter()
	if m != nil {
		r.Use(m.Middleware)
		r.Handle("/metrics", m.Handler()).Methods("GET")
	}

	r.HandleFunc("/healthz", healthHandler.Health).Methods("GET")
	r.HandleFunc("/ws/player", wsHandler.ServeWS).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()

	// Slides being edited
	api.HandleFunc("/slides", slideHandler.ListSlides).Methods("GET")
	api.HandleFunc("/slides", slideHandler.AddSlide).Methods("POST")
	api.HandleFunc("/slides", slideHandler.ClearSlides).Methods("DELETE")
	api.HandleFunc("/slides/{id}", slideHandler.UpdateSlide).Methods("PATCH")
	api.HandleFunc("/slides/{id}", slideHandler.DeleteSlide).Methods("DELETE")
	api.HandleFunc("/slides/{id}/quiz", slideHandler.SetQuiz).Methods("PUT")
	api.HandleFunc("/slides/{id}/quiz", slideHandler.RemoveQuiz).Methods("DELETE")
	api.HandleFunc("/slides/{id}/image", slideHandler.UploadImage).Methods("POST")

	// Saved presentations
	api.HandleFunc("/presentations", presentationHandler.ListPresentations).Methods("GET")
	api.HandleFunc("/presentations", presentationHandler.SavePresentation).Methods("POST")
	api.HandleFunc("/presentations/{id}", presentationHandler.GetPresentation).Methods("GET")
	api.HandleFunc("/presentations/{id}", presentationHandler.UpdatePresentation).Methods("PUT")
	api.HandleFunc("/presentations/{id}", presentationHandler.DeletePresentation).Methods("DELETE")
	api.HandleFunc("/presentations/{id}/load", presentationHandler.LoadPresentation).Methods("POST")
	api.HandleFunc("/presentations/{id}/export", presentationHandler.ExportPresentation).Methods("GET")

	// Player
	api.HandleFunc("/player", playerHandler.GetView).Methods("GET")
	api.HandleFunc("/player/slide.png", playerHandler.SlidePNG).Methods("GET")
	api.HandleFunc("/player/present", playerHandler.Present).Methods("POST")
	api.HandleFunc("/player/advance", playerHandler.Advance).Methods("POST")
	api.HandleFunc("/player/retreat", playerHandler.Retreat).Methods("POST")
	api.HandleFunc("/player/exit", playerHandler.Exit).Methods("POST")
	api.HandleFunc("/player/key", playerHandler.Key).Methods("POST")
	api.HandleFunc("/player/swipe", playerHandler.Swipe).Methods("POST")
	api.HandleFunc("/player/select", playerHandler.Select).Methods("POST")

	return r
}
