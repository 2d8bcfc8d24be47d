package hub

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/allblack/restaurant-app/models"
	"github.com/allblack/restaurant-app/utils"
	"github.com/gorilla/websocket"
)

// Event types
const (
	EventSessionStarted = "session_started"
	EventSessionFreed   = "session_freed"
	EventAccountCreated = "account_created"
	EventAccountUpdated = "account_updated"
)

type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// Per-client outbound buffering. A client whose buffer fills, or whose write
// misses the deadline, is dropped.
const (
	sendBuffer = 16
	writeWait  = 5 * time.Second
)

// conn is the part of *websocket.Conn the hub writes to.
type conn interface {
	WriteMessage(messageType int, data []byte) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

type client struct {
	conn conn
	role string
	send chan []byte
}

// Hub keeps the staff screens watching table occupancy. Broadcast never blocks
// on a client: each one has its own writer goroutine.
type Hub struct {
	clients map[conn]*client
	mutex   sync.Mutex
}

func New() *Hub {
	return &Hub{clients: make(map[conn]*client)}
}

func (h *Hub) Register(c *websocket.Conn, role string) {
	h.register(c, role)
}

func (h *Hub) register(c conn, role string) {
	cl := &client{conn: c, role: role, send: make(chan []byte, sendBuffer)}

	h.mutex.Lock()
	if old, ok := h.clients[c]; ok {
		close(old.send)
	}
	h.clients[c] = cl
	h.mutex.Unlock()

	go h.writePump(cl)
}

func (h *Hub) Unregister(c *websocket.Conn) {
	h.unregister(c)
}

func (h *Hub) unregister(c conn) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	h.removeLocked(c)
}

// removeLocked drops c and stops its writer. h.mutex must be held.
func (h *Hub) removeLocked(c conn) {
	cl, ok := h.clients[c]
	if !ok {
		return
	}
	delete(h.clients, c)
	close(cl.send)
	c.Close()
}

func (h *Hub) writePump(cl *client) {
	for data := range cl.send {
		cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := cl.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			utils.ErrorLogger.WithError(err).WithField("role", cl.role).Warn("dropping hub client")
			h.unregisterClient(cl)
			return
		}
	}
}

// unregisterClient removes cl unless its conn has since been registered again.
func (h *Hub) unregisterClient(cl *client) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	if h.clients[cl.conn] == cl {
		h.removeLocked(cl.conn)
	}
}

func (h *Hub) ClientCount() int {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return len(h.clients)
}

func (h *Hub) SessionStarted(session models.ActiveSession) {
	h.Broadcast(Message{Event: EventSessionStarted, Data: session})
}

func (h *Hub) SessionFreed(userID string) {
	h.Broadcast(Message{Event: EventSessionFreed, Data: map[string]string{"user_id": userID}})
}

func (h *Hub) AccountCreated(account models.Account) {
	h.Broadcast(Message{Event: EventAccountCreated, Data: account})
}

func (h *Hub) AccountUpdated(account models.Account) {
	h.Broadcast(Message{Event: EventAccountUpdated, Data: account})
}

// Broadcast queues msg for every client and returns without waiting for the
// writes. Clients that are too far behind are dropped.
func (h *Hub) Broadcast(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		utils.ErrorLogger.WithError(err).Error("marshaling hub message")
		return
	}

	h.mutex.Lock()
	defer h.mutex.Unlock()

	for c, cl := range h.clients {
		select {
		case cl.send <- data:
		default:
			utils.ErrorLogger.WithField("role", cl.role).Warn("hub client too slow, dropping")
			h.removeLocked(c)
		}
	}
}
