package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/unilinkhq/messaging-backend/internal/httpx"
	"github.com/unilinkhq/messaging-backend/internal/service"
)

type UserHandler struct {
	userService *service.UserService
}

func NewUserHandler(userService *service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// SearchUsers finds people to start a conversation with.
func (h *UserHandler) SearchUsers(c *fiber.Ctx) error {
	if _, err := httpx.LocalUint(c, "userID"); err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	limit := 20
	if limitStr := c.Query("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 50 {
			limit = l
		}
	}

	users, err := h.userService.SearchUsers(c.Query("q"), limit)
	if err != nil {
		return httpx.FromError(c, err)
	}
	return c.JSON(fiber.Map{
		"users": users,
		"count": len(users),
	})
}

// OnlineUsers lists who currently has a live connection.
func (h *UserHandler) OnlineUsers(c *fiber.Ctx) error {
	if _, err := httpx.LocalUint(c, "userID"); err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	users, err := h.userService.OnlineUsers()
	if err != nil {
		return httpx.FromError(c, err)
	}
	return c.JSON(fiber.Map{
		"users": users,
		"count": len(users),
	})
}
