package http

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"live-quiz-service/internal/app"
	"live-quiz-service/internal/domain"
)

const (
	writeWait      = 10 * time.Second
	maxMessageSize = 64 << 10
)

type WSHandler struct {
	registry *app.Registry
	hub      *Hub
	log      zerolog.Logger
	upgrader websocket.Upgrader
}

func NewWSHandler(registry *app.Registry, hub *Hub, logger zerolog.Logger) *WSHandler {
	return &WSHandler{
		registry: registry,
		hub:      hub,
		log:      logger.With().Str("component", "ws").Logger(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// ServeWS upgrades HTTP requests to websockets and feeds inbound events to the registry.
// Identity is issued upstream and passed as userId, name and avatar query parameters.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	p := domain.Participant{
		ID:     r.URL.Query().Get("userId"),
		Name:   r.URL.Query().Get("name"),
		Avatar: r.URL.Query().Get("avatar"),
	}
	if p.ID == "" || p.Name == "" {
		http.Error(w, "missing userId or name", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("ws upgrade failed")
		return
	}
	defer conn.Close()

	queue, err := h.hub.Register(p.ID)
	if err != nil {
		h.log.Warn().Str("user_id", p.ID).Msg("rejecting duplicate connection")
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.ClosePolicyViolation, err.Error()),
			time.Now().Add(writeWait))
		return
	}

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		for msg := range queue {
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				h.log.Debug().Err(err).Str("user_id", p.ID).Msg("ws write error")
				// Unblock the reader; the queue is drained until Remove closes it.
				_ = conn.Close()
				for range queue {
				}
				return
			}
		}
	}()

	if err := h.registry.Connect(p); err != nil {
		h.hub.Remove(p.ID)
		<-writerDone
		return
	}

	conn.SetReadLimit(maxMessageSize)
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			break
		}
		ev, err := app.DecodeEvent(data)
		if err != nil {
			h.log.Warn().Err(err).Str("user_id", p.ID).Msg("discarding inbound message")
			continue
		}
		// Dispatch reports and logs its own failures.
		_ = h.registry.Dispatch(r.Context(), p.ID, ev)
	}

	h.registry.Disconnect(p.ID)
	<-writerDone
}
