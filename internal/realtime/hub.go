package realtime

import (
	"encoding/json"
	"sync"
	"time"

	"pet-care-reminders/internal/domain/reminders"
	"pet-care-reminders/internal/platform/logger"
)

const TypeSnapshotPublished = "snapshot_published"

// Message avisa al browser que el cache del owner cambió; el cliente vuelve a pedir
// /reminders/calendar y /reminders/upcoming.
type Message struct {
	Type        string    `json:"type"`
	Version     uint64    `json:"version"`
	Count       int       `json:"count"`
	PublishedAt time.Time `json:"published_at"`
}

func SnapshotMessage(s reminders.Snapshot) Message {
	return Message{
		Type:        TypeSnapshotPublished,
		Version:     s.Version,
		Count:       s.Len(),
		PublishedAt: s.PublishedAt,
	}
}

// Hub mantiene las conexiones abiertas agrupadas por owner.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]map[*Client]struct{}
	log     logger.Logger
}

func NewHub(log logger.Logger) *Hub {
	if log == nil {
		log = logger.Nop()
	}
	return &Hub{
		clients: map[string]map[*Client]struct{}{},
		log:     log,
	}
}

func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	set, ok := h.clients[c.owner]
	if !ok {
		set = map[*Client]struct{}{}
		h.clients[c.owner] = set
	}
	set[c] = struct{}{}
	h.mu.Unlock()
}

// Unregister saca al cliente y cierra su canal. Llamarlo dos veces no hace nada.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if set, ok := h.clients[c.owner]; ok {
		if _, ok := set[c]; ok {
			delete(set, c)
			close(c.send)
		}
		if len(set) == 0 {
			delete(h.clients, c.owner)
		}
	}
	h.mu.Unlock()
}

// Publish manda msg a las conexiones del owner. Nunca bloquea: si el buffer
// de un cliente está lleno el mensaje se descarta para ese cliente.
func (h *Hub) Publish(owner string, msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.log.Error("realtime marshal", map[string]any{"error": err.Error()})
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.clients[owner] {
		select {
		case c.send <- data:
		default:
			h.log.Debug("realtime message dropped", map[string]any{"owner": owner, "type": msg.Type})
		}
	}
}

// Attach suscribe el hub a los snapshots del repository de la sesión.
// Se registra con Sessions.OnOpen.
func (h *Hub) Attach(sess *reminders.Session) {
	owner := sess.Owner()
	sess.Repository().Subscribe(func(s reminders.Snapshot) {
		h.Publish(owner, SnapshotMessage(s))
	})
}

func (h *Hub) ClientCount(owner string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[owner])
}
