package ws

import (
	"encoding/json"
	"log"
	"sync"
)

// Event is an order-lifecycle notification pushed to connected buyers and
// sellers. Delivery is fire-and-forget; an offline user simply misses it.
type Event struct {
	Type        string `json:"type"` // 'order_created', 'order_status'
	OrderID     uint   `json:"order_id,omitempty"`
	OrderNumber string `json:"order_number,omitempty"`
	Status      string `json:"status,omitempty"`
	Message     string `json:"message,omitempty"`
}

// Hub maintains the set of active clients and routes order events to the
// users they concern.
type Hub struct {
	// Registered clients.
	clients map[*Client]bool

	// Register requests from the clients.
	Register chan *Client

	// Unregister requests from clients.
	Unregister chan *Client

	// Map to quickly find clients by UserID
	userClients map[uint][]*Client

	// Mutex to protect the userClients map
	mutex sync.Mutex
}

func NewHub() *Hub {
	return &Hub{
		Register:    make(chan *Client),
		Unregister:  make(chan *Client),
		clients:     make(map[*Client]bool),
		userClients: make(map[uint][]*Client),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.clients[client] = true
			h.addUserClient(client)
		case client := <-h.Unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.Send)
				h.removeUserClient(client)
			}
		}
	}
}

func (h *Hub) addUserClient(client *Client) {
	h.mutex.Lock()
	h.userClients[client.UserID] = append(h.userClients[client.UserID], client)
	count := len(h.userClients[client.UserID])
	h.mutex.Unlock()

	log.Printf("User %d connected. Total connections for user: %d", client.UserID, count)
}

func (h *Hub) removeUserClient(client *Client) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	userConns := h.userClients[client.UserID]
	for i, conn := range userConns {
		if conn == client {
			h.userClients[client.UserID] = append(userConns[:i], userConns[i+1:]...)
			break
		}
	}
	if len(h.userClients[client.UserID]) == 0 {
		delete(h.userClients, client.UserID)
	}
}

// SendToUser sends a message to a specific user (all their active connections)
func (h *Hub) SendToUser(userID uint, message []byte) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if clients, ok := h.userClients[userID]; ok {
		for _, client := range clients {
			select {
			case client.Send <- message:
			default:
				close(client.Send)
				delete(h.clients, client)
			}
		}
	}
}

// Publish marshals an event and delivers it to every connection of the user.
func (h *Hub) Publish(userID uint, ev Event) {
	payload, err := json.Marshal(ev)
	if err != nil {
		return
	}
	h.SendToUser(userID, payload)
}

// IsUserOnline checks if a user has any active WebSocket connection.
func (h *Hub) IsUserOnline(userID uint) bool {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	clients, ok := h.userClients[userID]
	return ok && len(clients) > 0
}
