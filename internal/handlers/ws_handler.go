package handlers

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/websocket"

	"anniversary-timeline/internal/logger"
	"anniversary-timeline/internal/realtime"
	"anniversary-timeline/internal/services"
)

// WebSocketHandler upgrades player screens and feeds their input back into
// the session
type WebSocketHandler struct {
	hub      *realtime.Hub
	session  *services.Session
	upgrader websocket.Upgrader
	log      *logger.Logger
}

// NewWebSocketHandler accepts connections from allowedOrigins. An empty
// list only allows same-host origins.
func NewWebSocketHandler(hub *realtime.Hub, session *services.Session, allowedOrigins []string, log *logger.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		hub:     hub,
		session: session,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
		log: log,
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, a := range allowed {
			if a == "*" || strings.EqualFold(a, origin) {
				return true
			}
		}
		u, err := url.Parse(origin)
		return err == nil && strings.EqualFold(u.Host, r.Host)
	}
}

// ClientMessage is what a player screen may send
type ClientMessage struct {
	Type     string        `json:"type"`
	Key      string        `json:"key,omitempty"`
	AnswerID string        `json:"answerId,omitempty"`
	Swipe    *SwipeRequest `json:"swipe,omitempty"`
}

// ServeWS handles websocket connections
// GET /ws/player
func (h *WebSocketHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", "error", err)
		return
	}

	initial, err := json.Marshal(h.session.View())
	if err != nil {
		conn.Close()
		return
	}
	h.hub.Serve(conn, initial, h.handleMessage)
}

// handleMessage applies one client message. Changes reach every screen
// through the session's change broadcast.
func (h *WebSocketHandler) handleMessage(raw []byte) {
	var msg ClientMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		h.log.Debug("ignoring malformed websocket message", "error", err)
		return
	}

	switch msg.Type {
	case "key":
		h.session.HandleKey(msg.Key)
	case "swipe":
		if msg.Swipe != nil {
			h.session.HandleSwipe(msg.Swipe.swipe())
		}
	case "select":
		h.session.Select(msg.AnswerID)
	case "present":
		h.session.Present()
	case "exit":
		h.session.Exit()
	default:
		h.log.Debug("ignoring websocket message", "type", msg.Type)
	}
}
