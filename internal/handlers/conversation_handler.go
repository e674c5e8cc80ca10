package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/unilinkhq/messaging-backend/internal/httpx"
	"github.com/unilinkhq/messaging-backend/internal/service"
)

type ConversationHandler struct {
	conversationService *service.ConversationService
	listService         *service.ConversationListService
}

func NewConversationHandler(conversationService *service.ConversationService, listService *service.ConversationListService) *ConversationHandler {
	return &ConversationHandler{
		conversationService: conversationService,
		listService:         listService,
	}
}

// GetConversations returns the caller's conversation list, most recent
// activity first, with previews and unread counts.
func (h *ConversationHandler) GetConversations(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	limit := 50
	if limitStr := c.Query("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 100 {
			limit = l
		}
	}

	summaries, err := h.listService.ListConversations(userID, limit)
	if err != nil {
		return httpx.FromError(c, err)
	}

	return c.JSON(fiber.Map{
		"conversations": summaries,
		"count":         len(summaries),
	})
}

type createDirectInput struct {
	PeerID uint `json:"peer_id"`
}

// CreateDirect resolves or creates the 1:1 conversation with the peer.
// Calling it twice returns the same conversation.
func (h *ConversationHandler) CreateDirect(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	var input createDirectInput
	if err := c.BodyParser(&input); err != nil {
		return httpx.BadRequest(c, "invalid_request_body", "Invalid request body")
	}
	if input.PeerID == 0 || input.PeerID == userID {
		return httpx.BadRequest(c, "invalid_peer", "peer_id must be another user")
	}

	conv, err := h.conversationService.GetOrCreateConversation(userID, input.PeerID)
	if err != nil {
		return httpx.FromError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(conv.ToResponse())
}

type createGroupInput struct {
	Name           string `json:"name"`
	ParticipantIDs []uint `json:"participant_ids"`
}

func (h *ConversationHandler) CreateGroup(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	var input createGroupInput
	if err := c.BodyParser(&input); err != nil {
		return httpx.BadRequest(c, "invalid_request_body", "Invalid request body")
	}
	if input.Name == "" {
		return httpx.BadRequest(c, "missing_name", "Group name is required")
	}
	if len(input.ParticipantIDs) == 0 {
		return httpx.BadRequest(c, "missing_participants", "participant_ids is required")
	}

	conv, err := h.conversationService.CreateGroupConversation(userID, input.ParticipantIDs, input.Name)
	if err != nil {
		return httpx.FromError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(conv.ToResponse())
}

// GetConversation loads one conversation the caller belongs to.
func (h *ConversationHandler) GetConversation(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}
	convID, err := c.ParamsInt("id")
	if err != nil || convID <= 0 {
		return httpx.BadRequest(c, "invalid_conversation", "Invalid conversation id")
	}

	conv, err := h.conversationService.GetConversation(uint(convID), userID)
	if err != nil {
		return httpx.FromError(c, err)
	}
	return c.JSON(conv.ToResponse())
}
