package ws

import (
	"encoding/json"
	"sync"

	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/NaufalAlfiR/task-management-system/pkg/logger"
)

// Event is the wire shape pushed to connected clients.
type Event struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// Task event names.
const (
	EventTaskCreated = "task.created"
	EventTaskUpdated = "task.updated"
	EventTaskDeleted = "task.deleted"
)

// Client is one WebSocket connection, bound to the user it authenticated as.
type Client struct {
	OwnerID int
	Conn    *websocket.Conn
	Mu      sync.Mutex
}

type ownerMessage struct {
	ownerID int
	payload []byte
}

// Hub fans task events out to WebSocket clients. Events are only delivered
// to connections owned by the task's user, so the ownership invariant holds
// on this surface too.
type Hub struct {
	Register   chan *Client
	Unregister chan *Client
	broadcast  chan ownerMessage
	clients    map[*Client]bool
}

func NewHub() *Hub {
	return &Hub{
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		broadcast:  make(chan ownerMessage, 64),
		clients:    make(map[*Client]bool),
	}
}

// Publish queues an event for the owner's connections. Safe to call on a nil
// hub (tests run handlers without one) and never blocks the caller.
func (h *Hub) Publish(ownerID int, event string, data interface{}) {
	if h == nil {
		return
	}
	payload, err := json.Marshal(Event{Event: event, Data: data})
	if err != nil {
		return
	}
	select {
	case h.broadcast <- ownerMessage{ownerID: ownerID, payload: payload}:
	default:
		logger.SystemLogger.Warn("Dropping task event, hub backlog full",
			zap.Int("owner_id", ownerID), zap.String("event", event))
	}
}

// Run manages register, unregister, and broadcast. Call in its own goroutine.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.clients[client] = true
		case client := <-h.Unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				client.Conn.Close()
			}
		case msg := <-h.broadcast:
			for client := range h.clients {
				if client.OwnerID != msg.ownerID {
					continue
				}
				client.Mu.Lock()
				err := client.Conn.WriteMessage(websocket.TextMessage, msg.payload)
				client.Mu.Unlock()
				if err != nil {
					delete(h.clients, client)
					client.Conn.Close()
				}
			}
		}
	}
}
