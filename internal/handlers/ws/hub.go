package ws

import (
	"log"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/unilinkhq/messaging-backend/internal/apperr"
	"github.com/unilinkhq/messaging-backend/internal/models"
)

// Conn is the slice of *websocket.Conn the hub needs; tests substitute fakes.
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	WriteJSON(v interface{}) error
	WriteControl(messageType int, data []byte, deadline time.Time) error
	SetPongHandler(h func(string) error)
	SetReadDeadline(t time.Time) error
}

// MessageLoader re-fetches a stored message with its sender joined so
// subscribers always receive the normalized shape, never a partial row.
type MessageLoader interface {
	GetMessage(id uint) (*models.Message, error)
}

// ClientConnection wraps a WebSocket connection with metadata. writeMu
// serializes frames: fan-out from different senders and the ping routine all
// target the same conn, and concurrent writes on one conn are not allowed.
type ClientConnection struct {
	Conn       Conn
	UserID     uint
	LastPong   time.Time
	PingTicker *time.Ticker
	CloseChan  chan struct{}

	writeMu sync.Mutex
}

func (c *ClientConnection) writeJSON(v interface{}) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.Conn.WriteJSON(v)
}

func (c *ClientConnection) writeControl(messageType int, data []byte, deadline time.Time) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.Conn.WriteControl(messageType, data, deadline)
}

// Event is the push envelope. Subscribers may see a redelivered message
// after a reconnect; they dedupe by message id.
type Event struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

type TypingEvent struct {
	ConversationID uint `json:"conversation_id"`
	UserID         uint `json:"user_id"`
	IsTyping       bool `json:"is_typing"`
}

// Hub manages active connections and the per-conversation subscription
// registry. One connection per user; a user holds one subscription per open
// conversation, established idempotently.
type Hub struct {
	mu      sync.RWMutex
	clients map[uint]*ClientConnection
	// subscribers[conversationID][userID]
	subscribers map[uint]map[uint]*ClientConnection
	// userSubs[userID] is the reverse index for teardown.
	userSubs map[uint]map[uint]struct{}

	typing *TypingTracker
	loader MessageLoader

	pingInterval time.Duration
	pongTimeout  time.Duration
}

func NewHub(loader MessageLoader) *Hub {
	h := &Hub{
		clients:      make(map[uint]*ClientConnection),
		subscribers:  make(map[uint]map[uint]*ClientConnection),
		userSubs:     make(map[uint]map[uint]struct{}),
		loader:       loader,
		pingInterval: 30 * time.Second,
		pongTimeout:  90 * time.Second,
	}
	h.typing = NewTypingTracker(TypingLease, func(conversationID, userID uint) {
		h.broadcastTyping(conversationID, userID, false)
	})

	go h.connectionHealthChecker()

	return h
}

// Register adds a client connection with health monitoring.
func (h *Hub) Register(userID uint, conn Conn) {
	clientConn := &ClientConnection{
		Conn:       conn,
		UserID:     userID,
		LastPong:   time.Now(),
		PingTicker: time.NewTicker(h.pingInterval),
		CloseChan:  make(chan struct{}),
	}

	conn.SetPongHandler(func(appData string) error {
		h.mu.Lock()
		if client, exists := h.clients[userID]; exists {
			client.LastPong = time.Now()
		}
		h.mu.Unlock()
		return nil
	})
	conn.SetReadDeadline(time.Now().Add(h.pongTimeout))

	h.mu.Lock()
	h.clients[userID] = clientConn
	total := len(h.clients)
	h.mu.Unlock()

	go h.pingRoutine(clientConn)

	log.Printf("User %d connected to hub (total: %d)", userID, total)
}

// Unregister removes a client and tears down all its subscriptions and
// typing leases.
func (h *Hub) Unregister(userID uint) {
	h.mu.Lock()
	if client, exists := h.clients[userID]; exists {
		if client.PingTicker != nil {
			client.PingTicker.Stop()
		}
		close(client.CloseChan)
	}
	delete(h.clients, userID)
	for convID := range h.userSubs[userID] {
		if byUser := h.subscribers[convID]; byUser != nil {
			delete(byUser, userID)
			if len(byUser) == 0 {
				delete(h.subscribers, convID)
			}
		}
	}
	delete(h.userSubs, userID)
	count := len(h.clients)
	h.mu.Unlock()

	for _, convID := range h.typing.ClearUser(userID) {
		h.broadcastTyping(convID, userID, false)
	}

	log.Printf("User %d disconnected from hub (total: %d)", userID, count)
}

// Subscribe attaches the user's connection to a conversation's event
// channel. Idempotent: a second call for the same conversation is a no-op,
// so a single insert is only ever delivered once per connection.
func (h *Hub) Subscribe(userID, conversationID uint) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	client, exists := h.clients[userID]
	if !exists {
		return apperr.ErrSubscription
	}

	byUser, ok := h.subscribers[conversationID]
	if !ok {
		byUser = make(map[uint]*ClientConnection)
		h.subscribers[conversationID] = byUser
	}
	if _, already := byUser[userID]; already {
		return nil
	}
	byUser[userID] = client

	subs, ok := h.userSubs[userID]
	if !ok {
		subs = make(map[uint]struct{})
		h.userSubs[userID] = subs
	}
	subs[conversationID] = struct{}{}
	return nil
}

// Unsubscribe detaches the user from a conversation; safe to call when not
// subscribed.
func (h *Hub) Unsubscribe(userID, conversationID uint) {
	h.mu.Lock()
	if byUser := h.subscribers[conversationID]; byUser != nil {
		delete(byUser, userID)
		if len(byUser) == 0 {
			delete(h.subscribers, conversationID)
		}
	}
	if subs := h.userSubs[userID]; subs != nil {
		delete(subs, conversationID)
	}
	h.mu.Unlock()

	if h.typing.Clear(conversationID, userID) {
		h.broadcastTyping(conversationID, userID, false)
	}
}

// IsSubscribed reports whether the user currently holds a subscription.
func (h *Hub) IsSubscribed(userID, conversationID uint) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	byUser := h.subscribers[conversationID]
	_, ok := byUser[userID]
	return ok
}

// IsOnline checks if a user is connected.
func (h *Hub) IsOnline(userID uint) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, exists := h.clients[userID]
	return exists
}

// PublishMessage fans a freshly persisted message out to every subscriber
// of its conversation. The row is re-fetched with the sender joined.
func (h *Hub) PublishMessage(conversationID, messageID uint) {
	message, err := h.loader.GetMessage(messageID)
	if err != nil {
		log.Printf("Hub: cannot load message %d for fan-out: %v", messageID, err)
		return
	}
	h.publish(conversationID, 0, Event{Type: "message", Payload: message.ToResponse()})
}

// SetTyping starts/refreshes the sender's typing lease and broadcasts the
// start to other subscribers.
func (h *Hub) SetTyping(conversationID, userID uint) {
	if h.typing.Set(conversationID, userID) {
		h.broadcastTyping(conversationID, userID, true)
	}
}

// ClearTyping ends the lease early (explicit stop or message sent).
func (h *Hub) ClearTyping(conversationID, userID uint) {
	if h.typing.Clear(conversationID, userID) {
		h.broadcastTyping(conversationID, userID, false)
	}
}

// TypingUsers returns who is currently typing in the conversation.
func (h *Hub) TypingUsers(conversationID uint) []uint {
	return h.typing.Users(conversationID)
}

func (h *Hub) broadcastTyping(conversationID, typistID uint, isTyping bool) {
	h.publish(conversationID, typistID, Event{
		Type: "typing",
		Payload: TypingEvent{
			ConversationID: conversationID,
			UserID:         typistID,
			IsTyping:       isTyping,
		},
	})
}

// publish writes the event to every subscriber of the conversation except
// excludeUserID (0 excludes nobody). Dead connections are unregistered.
func (h *Hub) publish(conversationID, excludeUserID uint, event Event) {
	h.mu.RLock()
	targets := make([]*ClientConnection, 0, len(h.subscribers[conversationID]))
	for userID, client := range h.subscribers[conversationID] {
		if userID == excludeUserID {
			continue
		}
		targets = append(targets, client)
	}
	h.mu.RUnlock()

	for _, client := range targets {
		if err := client.writeJSON(event); err != nil {
			log.Printf("Hub: write to user %d failed: %v", client.UserID, err)
			h.Unregister(client.UserID)
		}
	}
}

// pingRoutine sends periodic ping frames to keep the connection alive.
func (h *Hub) pingRoutine(client *ClientConnection) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Ping routine recovered from panic for user %d: %v", client.UserID, r)
		}
	}()

	for {
		select {
		case <-client.CloseChan:
			return
		case <-client.PingTicker.C:
			h.mu.RLock()
			_, exists := h.clients[client.UserID]
			h.mu.RUnlock()
			if !exists {
				return
			}

			if err := client.writeControl(websocket.PingMessage, []byte{}, time.Now().Add(10*time.Second)); err != nil {
				log.Printf("Ping failed for user %d: %v", client.UserID, err)
				h.Unregister(client.UserID)
				return
			}
		}
	}
}

// connectionHealthChecker reaps connections that stopped answering pings.
func (h *Hub) connectionHealthChecker() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		h.mu.RLock()
		dead := make([]uint, 0)
		now := time.Now()
		for userID, client := range h.clients {
			if now.Sub(client.LastPong) > h.pongTimeout {
				dead = append(dead, userID)
			}
		}
		h.mu.RUnlock()

		for _, userID := range dead {
			log.Printf("Removing dead connection for user %d (no pong received)", userID)
			h.Unregister(userID)
		}
	}
}
