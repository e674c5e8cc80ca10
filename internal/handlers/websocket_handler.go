package handlers

import (
	"log"

	"github.com/gofiber/websocket/v2"
	"github.com/unilinkhq/messaging-backend/internal/cache"
	"github.com/unilinkhq/messaging-backend/internal/handlers/ws"
	"github.com/unilinkhq/messaging-backend/internal/service"
)

type WebSocketHandler struct {
	messageService      *service.MessageService
	conversationService *service.ConversationService
	listService         *service.ConversationListService
	hub                 *ws.Hub
	presence            *cache.PresenceCache
}

func NewWebSocketHandler(
	messageService *service.MessageService,
	conversationService *service.ConversationService,
	listService *service.ConversationListService,
	presence *cache.PresenceCache,
) *WebSocketHandler {
	return &WebSocketHandler{
		messageService:      messageService,
		conversationService: conversationService,
		listService:         listService,
		hub:                 ws.NewHub(messageService),
		presence:            presence,
	}
}

// GetHub returns the hub instance (useful for sending messages from other handlers)
func (h *WebSocketHandler) GetHub() *ws.Hub {
	return h.hub
}

func (h *WebSocketHandler) HandleWebSocket(c *websocket.Conn) {
	userID := c.Locals("userID").(uint)

	h.hub.Register(userID, c)

	go func() {
		if err := h.presence.SetUserOnline(userID); err != nil {
			log.Printf("Failed to set user %d online: %v", userID, err)
		}
	}()

	defer func() {
		h.hub.Unregister(userID)
		go func() {
			if err := h.presence.SetUserOffline(userID); err != nil {
				log.Printf("Failed to set user %d offline: %v", userID, err)
			}
		}()
	}()

	log.Printf("User %d connected via WebSocket", userID)

	ctx := &ws.MessageContext{
		UserID:              userID,
		Conn:                c,
		Hub:                 h.hub,
		MessageService:      h.messageService,
		ConversationService: h.conversationService,
		ListService:         h.listService,
		Presence:            h.presence,
	}

	for {
		_, messageBytes, err := c.ReadMessage()
		if err != nil {
			log.Printf("Error reading message from user %d: %v", userID, err)
			break
		}

		msg, err := ws.Deserialize(messageBytes)
		if err != nil {
			log.Printf("Error deserializing message from user %d: %v", userID, err)
			ws.SendError(c, "invalid_message", "Invalid message format", err.Error())
			continue
		}

		if err := msg.Process(ctx); err != nil {
			log.Printf("Error processing message %s from user %d: %v", msg.GetType(), userID, err)
			ws.SendError(c, "processing_failed", "Failed to process message", err.Error())
		}
	}

	log.Printf("User %d disconnected from WebSocket", userID)
}
