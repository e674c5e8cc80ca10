package handlers

import (
	"errors"
	"io"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/minio/minio-go/v7"
	"github.com/unilinkhq/messaging-backend/internal/httpx"
	"github.com/unilinkhq/messaging-backend/internal/storage"
)

// MediaHandler streams stored attachments and images back to clients with
// ETag handling so browsers cache aggressively.
type MediaHandler struct {
	s3 *storage.S3Storage
}

func NewMediaHandler(s3 *storage.S3Storage) *MediaHandler {
	return &MediaHandler{s3: s3}
}

func normalizeETag(v string) string {
	v = strings.TrimSpace(v)
	v = strings.TrimPrefix(v, "W/")
	v = strings.Trim(v, "\"")
	return v
}

func (h *MediaHandler) GetObject(c *fiber.Ctx) error {
	if h.s3 == nil {
		return httpx.Error(c, fiber.StatusServiceUnavailable, "storage_not_configured", "Storage not configured")
	}

	keyParam := strings.TrimSpace(c.Params("*"))
	key, err := storage.SafeJoinKey("", keyParam)
	if err != nil {
		return httpx.NotFound(c, "not_found", "Not found")
	}

	obj, st, err := h.s3.GetObject(c.Context(), key)
	if err != nil {
		var resp minio.ErrorResponse
		if errors.As(err, &resp) {
			if resp.StatusCode == 404 || resp.Code == "NoSuchKey" || resp.Code == "NoSuchObject" {
				return httpx.NotFound(c, "not_found", "Not found")
			}
		}
		log.Printf("media: fetch failed key=%q err=%v", key, err)
		return httpx.Internal(c, "media_fetch_failed")
	}
	defer obj.Close()

	etag := normalizeETag(st.ETag)
	if etag != "" && normalizeETag(c.Get("If-None-Match")) == etag {
		return c.SendStatus(fiber.StatusNotModified)
	}

	if st.ContentType != "" {
		c.Set("Content-Type", st.ContentType)
	}
	if st.Size > 0 {
		c.Set("Content-Length", strconv.FormatInt(st.Size, 10))
	}
	if etag != "" {
		c.Set("ETag", "\""+etag+"\"")
	}
	c.Set("Cache-Control", "private, max-age=86400")
	c.Set("Last-Modified", st.LastModified.UTC().Format(time.RFC1123))

	data, err := io.ReadAll(obj)
	if err != nil {
		return httpx.Internal(c, "media_fetch_failed")
	}
	return c.Send(data)
}
