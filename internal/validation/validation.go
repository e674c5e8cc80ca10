package validation

import (
	"os"
	"strconv"
	"strings"
)

func MaxMessageLength() int {
	maxStr := os.Getenv("MAX_MESSAGE_LENGTH")
	if maxStr == "" {
		return 4000
	}
	max, err := strconv.Atoi(maxStr)
	if err != nil || max < 1 {
		return 4000
	}
	return max
}

// MaxAttachmentBytes is the cap for message attachments (10MB default).
func MaxAttachmentBytes() int64 {
	return envBytes("MAX_ATTACHMENT_BYTES", 10*1024*1024)
}

// MaxImageBytes is the cap for profile/marketplace/group images (5MB
// default). The two limits are intentionally separate configuration.
func MaxImageBytes() int64 {
	return envBytes("MAX_IMAGE_BYTES", 5*1024*1024)
}

func envBytes(key string, def int64) int64 {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil || v < 1 {
		return def
	}
	return v
}

// ValidMessageContent reports whether a message may be sent: non-blank text,
// or any content at all when a file is attached.
func ValidMessageContent(content string, hasFile bool) bool {
	if strings.TrimSpace(content) != "" {
		return true
	}
	return hasFile
}

// TrimAndLimit trims whitespace and caps the result at max runes. Counting
// runes keeps a multi-byte character from being split at the cap.
func TrimAndLimit(s string, max int) string {
	s = strings.TrimSpace(s)
	if max <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) > max {
		return string(runes[:max])
	}
	return s
}

// PreviewLimit is the display length of a conversation-list preview,
// including the trailing ellipsis.
const PreviewLimit = 50

// TruncatePreview shortens s to PreviewLimit characters, replacing the tail
// with "..." when it does not fit.
func TruncatePreview(s string) string {
	runes := []rune(s)
	if len(runes) <= PreviewLimit {
		return s
	}
	return string(runes[:PreviewLimit-3]) + "..."
}
