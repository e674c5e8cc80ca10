package storage

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 120, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encoding png fixture: %v", err)
	}
	return buf.Bytes()
}

func encodeJPEG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}); err != nil {
		t.Fatalf("encoding jpeg fixture: %v", err)
	}
	return buf.Bytes()
}

func TestDetectMagic(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		want    string
		wantErr error
	}{
		{"jpeg", encodeJPEG(t, 16, 16), "image/jpeg", nil},
		{"png", encodePNG(t, 16, 16), "image/png", nil},
		{"webp header", []byte("RIFF\x00\x00\x00\x00WEBPVP8 "), "image/webp", nil},
		{"gif rejected", []byte("GIF89a\x00\x00\x00\x00\x00\x00"), "", ErrUnsupported},
		{"too short", []byte{0xFF, 0xD8}, "", ErrInvalidImage},
		{"garbage", bytes.Repeat([]byte{0x42}, 16), "", ErrUnsupported},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := detectMagic(tt.data[:min(len(tt.data), 12)])
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err: got %v, want %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("type: got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestProcessImageRejectsOversize(t *testing.T) {
	opts := DefaultImageOptions(256)
	data := bytes.Repeat([]byte{0xAB}, 512)

	_, _, _, err := ProcessImage(bytes.NewReader(data), opts)
	if !errors.Is(err, ErrTooLarge) {
		t.Errorf("got %v, want ErrTooLarge", err)
	}
}

func TestProcessImageRejectsNonImages(t *testing.T) {
	opts := DefaultImageOptions(1 << 20)

	_, _, _, err := ProcessImage(bytes.NewReader([]byte("%PDF-1.4 not an image")), opts)
	if !errors.Is(err, ErrUnsupported) {
		t.Errorf("pdf: got %v, want ErrUnsupported", err)
	}

	_, _, _, err = ProcessImage(bytes.NewReader([]byte{0x01}), opts)
	if !errors.Is(err, ErrInvalidImage) {
		t.Errorf("tiny blob: got %v, want ErrInvalidImage", err)
	}
}

func TestProcessImageReencodesAsJPEG(t *testing.T) {
	opts := DefaultImageOptions(1 << 20)

	out, contentType, size, err := ProcessImage(bytes.NewReader(encodePNG(t, 64, 48)), opts)
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if contentType != "image/jpeg" {
		t.Errorf("content type: got %q", contentType)
	}
	if size != int64(len(out)) {
		t.Errorf("size mismatch: %d vs %d bytes", size, len(out))
	}

	decoded, err := jpeg.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("output is not a decodable jpeg: %v", err)
	}
	b := decoded.Bounds()
	if b.Dx() != 64 || b.Dy() != 48 {
		t.Errorf("small image must not be resized: got %dx%d", b.Dx(), b.Dy())
	}
}

func TestProcessImageDownscales(t *testing.T) {
	opts := DefaultImageOptions(4 << 20)
	opts.MaxDim = 100

	out, _, _, err := ProcessImage(bytes.NewReader(encodeJPEG(t, 400, 200)), opts)
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	decoded, err := jpeg.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("decode output: %v", err)
	}
	b := decoded.Bounds()
	if b.Dx() != 100 || b.Dy() != 50 {
		t.Errorf("aspect-preserving downscale: got %dx%d, want 100x50", b.Dx(), b.Dy())
	}
}

func TestSafeJoinKey(t *testing.T) {
	tests := []struct {
		name    string
		prefix  string
		key     string
		want    string
		wantErr bool
	}{
		{"plain", "media", "attachments/1/a.pdf", "media/attachments/1/a.pdf", false},
		{"leading slash stripped", "media", "/images/2/p.jpg", "media/images/2/p.jpg", false},
		{"no prefix", "", "attachments/1/a.pdf", "attachments/1/a.pdf", false},
		{"traversal rejected", "media", "../secrets/env", "", true},
		{"backslash rejected", "media", "a\\b", "", true},
		{"empty rejected", "media", "   ", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SafeJoinKey(tt.prefix, tt.key)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err: %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("key: got %q, want %q", got, tt.want)
			}
		})
	}
}
