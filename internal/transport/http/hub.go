package http

import (
	"encoding/json"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"live-quiz-service/internal/observability"
)

var errAlreadyConnected = errors.New("participant already connected")

// Hub is the connection directory: it maps participant ids to outbound queues and
// groups them per session. Sends never block; a full queue drops the message.
type Hub struct {
	queueSize int
	log       zerolog.Logger

	mu      sync.RWMutex
	clients map[string]*client
	groups  map[string]map[string]struct{}
}

type client struct {
	id   string
	send chan []byte
}

func NewHub(queueSize int, logger zerolog.Logger) *Hub {
	if queueSize <= 0 {
		queueSize = 32
	}
	return &Hub{
		queueSize: queueSize,
		log:       logger.With().Str("component", "hub").Logger(),
		clients:   make(map[string]*client),
		groups:    make(map[string]map[string]struct{}),
	}
}

// Register allocates the outbound queue for a participant. The queue is closed by Remove.
func (h *Hub) Register(participantID string) (<-chan []byte, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[participantID]; ok {
		return nil, errAlreadyConnected
	}
	c := &client{id: participantID, send: make(chan []byte, h.queueSize)}
	h.clients[participantID] = c
	return c.send, nil
}

func (h *Hub) Send(participantID string, msg any) {
	data, ok := h.encode(msg)
	if !ok {
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	if c, ok := h.clients[participantID]; ok {
		h.enqueue(c, data)
	}
}

func (h *Hub) AddToGroup(participantID, sessionID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	members, ok := h.groups[sessionID]
	if !ok {
		members = make(map[string]struct{})
		h.groups[sessionID] = members
	}
	members[participantID] = struct{}{}
}

func (h *Hub) Broadcast(sessionID string, msg any) {
	data, ok := h.encode(msg)
	if !ok {
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for id := range h.groups[sessionID] {
		if c, ok := h.clients[id]; ok {
			h.enqueue(c, data)
		}
	}
}

// Remove drops the participant from every group and closes its queue.
func (h *Hub) Remove(participantID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	c, ok := h.clients[participantID]
	if !ok {
		return
	}
	delete(h.clients, participantID)
	for sessionID, members := range h.groups {
		delete(members, participantID)
		if len(members) == 0 {
			delete(h.groups, sessionID)
		}
	}
	close(c.send)
}

// GroupSize returns the number of participants addressed by a session broadcast.
func (h *Hub) GroupSize(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.groups[sessionID])
}

// enqueue must be called with h.mu held.
func (h *Hub) enqueue(c *client, data []byte) {
	select {
	case c.send <- data:
	default:
		observability.DroppedMessages.Inc()
		h.log.Warn().Str("user_id", c.id).Msg("outbound queue full, message dropped")
	}
}

func (h *Hub) encode(msg any) ([]byte, bool) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.log.Error().Err(err).Msg("encode outbound message")
		return nil, false
	}
	return data, true
}
