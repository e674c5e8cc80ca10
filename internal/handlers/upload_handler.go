package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/unilinkhq/messaging-backend/internal/httpx"
	"github.com/unilinkhq/messaging-backend/internal/service"
	"github.com/unilinkhq/messaging-backend/internal/validation"
)

type UploadHandler struct {
	uploadService *service.UploadService
}

func NewUploadHandler(uploadService *service.UploadService) *UploadHandler {
	return &UploadHandler{uploadService: uploadService}
}

// UploadAttachment accepts a multipart "file" field for message attachments
// (10MB cap, enforced before the storage write).
func (h *UploadHandler) UploadAttachment(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return httpx.BadRequest(c, "missing_file", "file field is required")
	}
	if fileHeader.Size > validation.MaxAttachmentBytes() {
		return httpx.Error(c, fiber.StatusRequestEntityTooLarge, "file_too_large", "Attachment exceeds the size limit")
	}

	f, err := fileHeader.Open()
	if err != nil {
		return httpx.Internal(c, "upload_failed")
	}
	defer f.Close()

	ref, err := h.uploadService.UploadAttachment(
		c.Context(),
		userID,
		fileHeader.Filename,
		fileHeader.Size,
		fileHeader.Header.Get("Content-Type"),
		f,
	)
	if err != nil {
		return httpx.FromError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(ref)
}

// UploadImage accepts a multipart "file" field for profile, marketplace or
// group images (5MB cap); images are downscaled and re-encoded.
func (h *UploadHandler) UploadImage(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return httpx.BadRequest(c, "missing_file", "file field is required")
	}
	if fileHeader.Size > validation.MaxImageBytes() {
		return httpx.Error(c, fiber.StatusRequestEntityTooLarge, "file_too_large", "Image exceeds the size limit")
	}

	f, err := fileHeader.Open()
	if err != nil {
		return httpx.Internal(c, "upload_failed")
	}
	defer f.Close()

	ref, err := h.uploadService.UploadImage(c.Context(), userID, c.Query("kind"), f)
	if err != nil {
		return httpx.FromError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(ref)
}

// DeleteUpload removes one of the caller's own stored files, e.g. an
// attachment uploaded but never sent.
func (h *UploadHandler) DeleteUpload(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	if err := h.uploadService.DeleteUpload(c.Context(), userID, c.Params("*")); err != nil {
		return httpx.FromError(c, err)
	}
	return c.JSON(fiber.Map{"status": "ok"})
}
