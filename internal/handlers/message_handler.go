package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/unilinkhq/messaging-backend/internal/handlers/ws"
	"github.com/unilinkhq/messaging-backend/internal/httpx"
	"github.com/unilinkhq/messaging-backend/internal/models"
	"github.com/unilinkhq/messaging-backend/internal/service"
)

type MessageHandler struct {
	messageService      *service.MessageService
	conversationService *service.ConversationService
	listService         *service.ConversationListService
	hub                 *ws.Hub
}

func NewMessageHandler(
	messageService *service.MessageService,
	conversationService *service.ConversationService,
	listService *service.ConversationListService,
	hub *ws.Hub,
) *MessageHandler {
	return &MessageHandler{
		messageService:      messageService,
		conversationService: conversationService,
		listService:         listService,
		hub:                 hub,
	}
}

func (h *MessageHandler) SendMessage(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}
	convID, err := c.ParamsInt("id")
	if err != nil || convID <= 0 {
		return httpx.BadRequest(c, "invalid_conversation", "Invalid conversation id")
	}

	var input service.SendMessageInput
	if err := c.BodyParser(&input); err != nil {
		return httpx.BadRequest(c, "invalid_request_body", "Invalid request body")
	}
	input.ConversationID = uint(convID)

	message, err := h.messageService.SendMessage(userID, input)
	if err != nil {
		return httpx.FromError(c, err)
	}

	h.hub.ClearTyping(message.ConversationID, userID)
	h.hub.PublishMessage(message.ConversationID, message.ID)
	h.listService.InvalidateFor(message.ConversationID)

	return c.Status(fiber.StatusCreated).JSON(message.ToResponse())
}

// GetMessages returns a page of history in ascending chronological order.
// Cursor pagination is the canonical contract ("cursor" = load messages
// older than that id); "page" is the legacy offset wrapper.
func (h *MessageHandler) GetMessages(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}
	convID, err := c.ParamsInt("id")
	if err != nil || convID <= 0 {
		return httpx.BadRequest(c, "invalid_conversation", "Invalid conversation id")
	}

	ok, err := h.conversationService.IsParticipant(uint(convID), userID)
	if err != nil {
		return httpx.FromError(c, err)
	}
	if !ok {
		return httpx.NotFound(c, "not_found", "Not found")
	}

	limit := 50
	if limitStr := c.Query("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 100 {
			limit = l
		}
	}

	var messages []models.Message
	if pageStr := c.Query("page"); pageStr != "" {
		page, err := strconv.Atoi(pageStr)
		if err != nil || page < 0 {
			return httpx.BadRequest(c, "invalid_page", "Invalid page")
		}
		messages, err = h.messageService.GetConversationMessages(uint(convID), page, limit)
		if err != nil {
			return httpx.FromError(c, err)
		}
	} else {
		var cursor uint
		if cursorStr := c.Query("cursor"); cursorStr != "" {
			parsed, err := strconv.ParseUint(cursorStr, 10, 32)
			if err != nil {
				return httpx.BadRequest(c, "invalid_cursor", "Invalid cursor")
			}
			cursor = uint(parsed)
		}
		messages, err = h.messageService.GetMessagesBefore(uint(convID), cursor, limit)
		if err != nil {
			return httpx.FromError(c, err)
		}
	}

	responses := make([]interface{}, len(messages))
	for i, msg := range messages {
		responses[i] = msg.ToResponse()
	}

	result := fiber.Map{
		"messages": responses,
		"count":    len(messages),
	}
	if len(messages) > 0 {
		// Pages are ascending; the first element is the oldest loaded, so
		// it anchors the next "load older" request.
		result["next_cursor"] = messages[0].ID
	}

	return c.JSON(result)
}

func (h *MessageHandler) MarkRead(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}
	convID, err := c.ParamsInt("id")
	if err != nil || convID <= 0 {
		return httpx.BadRequest(c, "invalid_conversation", "Invalid conversation id")
	}

	if err := h.messageService.MarkRead(uint(convID), userID); err != nil {
		return httpx.FromError(c, err)
	}
	h.listService.InvalidateFor(uint(convID))

	return c.JSON(fiber.Map{"status": "ok"})
}

// SyncMessages returns messages newer than last_message_id, for catching up
// after a realtime gap over REST.
func (h *MessageHandler) SyncMessages(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}
	convID, err := c.ParamsInt("id")
	if err != nil || convID <= 0 {
		return httpx.BadRequest(c, "invalid_conversation", "Invalid conversation id")
	}

	ok, err := h.conversationService.IsParticipant(uint(convID), userID)
	if err != nil {
		return httpx.FromError(c, err)
	}
	if !ok {
		return httpx.NotFound(c, "not_found", "Not found")
	}

	var lastID uint64
	if s := c.Query("last_message_id"); s != "" {
		lastID, err = strconv.ParseUint(s, 10, 32)
		if err != nil {
			return httpx.BadRequest(c, "invalid_last_message_id", "Invalid last_message_id")
		}
	}
	limit := 100
	if limitStr := c.Query("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 200 {
			limit = l
		}
	}

	messages, err := h.messageService.GetMessagesSince(uint(convID), uint(lastID), limit)
	if err != nil {
		return httpx.FromError(c, err)
	}

	responses := make([]interface{}, len(messages))
	for i, msg := range messages {
		responses[i] = msg.ToResponse()
	}
	return c.JSON(fiber.Map{
		"messages": responses,
		"count":    len(messages),
	})
}
