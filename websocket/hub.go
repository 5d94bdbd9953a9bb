package websocket

import (
	"fmt"
	"sync"

	"github.com/gorilla/websocket"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Notification types pushed to connected dashboards
const (
	NotificationTypePayoutRequested = "payout_requested"
	NotificationTypePayoutStatus    = "payout_status"
)

// Notification represents a message sent over WebSocket
type Notification struct {
	Type    string      `json:"type"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Client represents a connected WebSocket client
type Client struct {
	AccountID primitive.ObjectID
	Conn      *websocket.Conn
	IsAdmin   bool
}

// Hub maintains the set of active clients and broadcasts messages
type Hub struct {
	clients    map[primitive.ObjectID]*Client
	admins     map[*Client]bool
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex
}

// NewHub creates a new Hub instance
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[primitive.ObjectID]*Client),
		admins:     make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Run starts the hub's event loop
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if client.IsAdmin {
				h.admins[client] = true
			} else if client.AccountID != primitive.NilObjectID {
				h.clients[client.AccountID] = client
			}
			h.mu.Unlock()
		case client := <-h.unregister:
			h.mu.Lock()
			if client.IsAdmin {
				delete(h.admins, client)
			} else if client.AccountID != primitive.NilObjectID {
				if _, ok := h.clients[client.AccountID]; ok {
					delete(h.clients, client.AccountID)
				}
			}
			client.Conn.Close()
			h.mu.Unlock()
		}
	}
}

// SendToAccount sends a message to a specific account's dashboard
func (h *Hub) SendToAccount(accountID primitive.ObjectID, notification Notification) error {
	h.mu.RLock()
	client, ok := h.clients[accountID]
	h.mu.RUnlock()

	if !ok {
		return fmt.Errorf("account not connected")
	}

	return client.Conn.WriteJSON(notification)
}

// BroadcastToAdmins pushes a notification to every connected admin session.
func (h *Hub) BroadcastToAdmins(notification Notification) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.admins {
		client.Conn.WriteJSON(notification)
	}
}
