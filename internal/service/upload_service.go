package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/unilinkhq/messaging-backend/internal/apperr"
	"github.com/unilinkhq/messaging-backend/internal/models"
	"github.com/unilinkhq/messaging-backend/internal/storage"
	"github.com/unilinkhq/messaging-backend/internal/validation"
)

// UploadService pushes message attachments and images into object storage
// and returns the FileRef that gets attached to messages or records. Size
// validation happens before any byte reaches the store.
type UploadService struct {
	s3 *storage.S3Storage
	// mediaBase prefixes returned URLs, e.g. "/api/media".
	mediaBase string
}

func NewUploadService(s3 *storage.S3Storage, mediaBase string) *UploadService {
	if mediaBase == "" {
		mediaBase = "/api/media"
	}
	return &UploadService{s3: s3, mediaBase: strings.TrimRight(mediaBase, "/")}
}

// UploadAttachment stores a raw message attachment (10MB cap).
func (s *UploadService) UploadAttachment(ctx context.Context, userID uint, filename string, size int64, contentType string, r io.Reader) (*models.FileRef, error) {
	if s.s3 == nil {
		return nil, fmt.Errorf("%w: storage not configured", apperr.ErrUpload)
	}
	maxBytes := validation.MaxAttachmentBytes()
	if size <= 0 || size > maxBytes {
		return nil, fmt.Errorf("%w: attachment exceeds %d bytes", apperr.ErrUpload, maxBytes)
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	key := fmt.Sprintf("attachments/%d/%s%s", userID, uuid.NewString(), safeExt(filename))
	if _, err := s.s3.PutObject(ctx, key, io.LimitReader(r, maxBytes), size, contentType); err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrUpload, err)
	}

	return &models.FileRef{
		URL:  s.mediaBase + "/" + key,
		Name: path.Base(filename),
		Size: size,
		Type: contentType,
	}, nil
}

// UploadImage validates, downscales and re-encodes an image (5MB cap) for
// profile, marketplace or group-photo use. kind only picks the key prefix.
func (s *UploadService) UploadImage(ctx context.Context, userID uint, kind string, r io.Reader) (*models.FileRef, error) {
	if s.s3 == nil {
		return nil, fmt.Errorf("%w: storage not configured", apperr.ErrUpload)
	}
	switch kind {
	case "profile", "marketplace", "group":
	default:
		kind = "images"
	}

	data, contentType, size, err := storage.ProcessImage(r, storage.DefaultImageOptions(validation.MaxImageBytes()))
	if err != nil {
		if errors.Is(err, storage.ErrTooLarge) {
			return nil, fmt.Errorf("%w: image exceeds %d bytes", apperr.ErrUpload, validation.MaxImageBytes())
		}
		return nil, fmt.Errorf("%w: %v", apperr.ErrUpload, err)
	}

	key := fmt.Sprintf("%s/%d/%s.jpg", kind, userID, uuid.NewString())
	if _, err := s.s3.PutObject(ctx, key, bytes.NewReader(data), size, contentType); err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrUpload, err)
	}

	return &models.FileRef{
		URL:  s.mediaBase + "/" + key,
		Name: path.Base(key),
		Size: size,
		Type: contentType,
	}, nil
}

// DeleteUpload removes an object the caller uploaded. Keys embed the owner id
// as their second segment ("attachments/<uid>/..." or "<kind>/<uid>/..."), so
// ownership is checked from the key before storage is touched.
func (s *UploadService) DeleteUpload(ctx context.Context, userID uint, rawKey string) error {
	key, err := storage.SafeJoinKey("", rawKey)
	if err != nil {
		return apperr.ErrNotFound
	}
	parts := strings.SplitN(key, "/", 3)
	if len(parts) < 3 || parts[1] != strconv.FormatUint(uint64(userID), 10) {
		return apperr.ErrNotFound
	}
	if s.s3 == nil {
		return fmt.Errorf("%w: storage not configured", apperr.ErrUpload)
	}
	if err := s.s3.DeleteObject(ctx, key); err != nil {
		return fmt.Errorf("%w: %v", apperr.ErrUpload, err)
	}
	return nil
}

func safeExt(filename string) string {
	ext := strings.ToLower(path.Ext(path.Base(filename)))
	if len(ext) > 10 || strings.ContainsAny(ext, "/\\") {
		return ""
	}
	return ext
}
