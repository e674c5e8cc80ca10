package validation

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestValidMessageContent(t *testing.T) {
	tests := []struct {
		name    string
		content string
		hasFile bool
		want    bool
	}{
		{"plain text", "hello", false, true},
		{"empty", "", false, false},
		{"whitespace only", "  \t\n ", false, false},
		{"empty with file", "", true, true},
		{"whitespace with file", "   ", true, true},
		{"text with file", "see attached", true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidMessageContent(tt.content, tt.hasFile); got != tt.want {
				t.Errorf("ValidMessageContent(%q, %v) = %v, want %v", tt.content, tt.hasFile, got, tt.want)
			}
		})
	}
}

func TestTruncatePreview(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"short", "hey", "hey"},
		{"exactly at limit", strings.Repeat("x", 50), strings.Repeat("x", 50)},
		{"one over", strings.Repeat("x", 51), strings.Repeat("x", 47) + "..."},
		{"well over", strings.Repeat("x", 200), strings.Repeat("x", 47) + "..."},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TruncatePreview(tt.input)
			if got != tt.want {
				t.Errorf("TruncatePreview: got %q, want %q", got, tt.want)
			}
			if n := len([]rune(got)); n > PreviewLimit {
				t.Errorf("result length %d exceeds limit %d", n, PreviewLimit)
			}
		})
	}
}

func TestTruncatePreviewMultibyte(t *testing.T) {
	// Truncation counts runes, not bytes.
	input := strings.Repeat("é", 60)
	got := TruncatePreview(input)
	if n := len([]rune(got)); n != 50 {
		t.Errorf("rune length: got %d, want 50", n)
	}
	if !strings.HasSuffix(got, "...") {
		t.Errorf("missing ellipsis: %q", got)
	}
	if !strings.HasPrefix(got, strings.Repeat("é", 47)) {
		t.Errorf("multibyte prefix mangled: %q", got)
	}
}

func TestTrimAndLimit(t *testing.T) {
	tests := []struct {
		name  string
		input string
		max   int
		want  string
	}{
		{"trims whitespace", "  hello  ", 100, "hello"},
		{"caps length", "abcdef", 3, "abc"},
		{"zero max means unlimited", "abcdef", 0, "abcdef"},
		{"multibyte kept whole at the cap", "ééééé", 3, "ééé"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TrimAndLimit(tt.input, tt.max)
			if got != tt.want {
				t.Errorf("TrimAndLimit(%q, %d) = %q, want %q", tt.input, tt.max, got, tt.want)
			}
			if !utf8.ValidString(got) {
				t.Errorf("TrimAndLimit(%q, %d) produced invalid UTF-8", tt.input, tt.max)
			}
		})
	}
}

func TestMaxMessageLength(t *testing.T) {
	t.Setenv("MAX_MESSAGE_LENGTH", "")
	if got := MaxMessageLength(); got != 4000 {
		t.Errorf("default: got %d, want 4000", got)
	}

	t.Setenv("MAX_MESSAGE_LENGTH", "500")
	if got := MaxMessageLength(); got != 500 {
		t.Errorf("override: got %d, want 500", got)
	}

	t.Setenv("MAX_MESSAGE_LENGTH", "not-a-number")
	if got := MaxMessageLength(); got != 4000 {
		t.Errorf("garbage falls back: got %d, want 4000", got)
	}
}

func TestUploadLimits(t *testing.T) {
	t.Setenv("MAX_ATTACHMENT_BYTES", "")
	t.Setenv("MAX_IMAGE_BYTES", "")
	if got := MaxAttachmentBytes(); got != 10*1024*1024 {
		t.Errorf("attachment default: got %d", got)
	}
	if got := MaxImageBytes(); got != 5*1024*1024 {
		t.Errorf("image default: got %d", got)
	}

	t.Setenv("MAX_ATTACHMENT_BYTES", "1048576")
	if got := MaxAttachmentBytes(); got != 1048576 {
		t.Errorf("attachment override: got %d", got)
	}
}
