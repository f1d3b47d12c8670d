package storage

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"hash/crc32"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func pngDataURL(t *testing.T, w, h int) string {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.RGBA{R: 255, A: 255})
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("Failed to encode png: %v", err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}

// TestLocalUpload_DataURL データURLを保存してURLを返す
func TestLocalUpload_DataURL(t *testing.T) {
	dir := t.TempDir()
	l, err := NewLocal(dir, "/uploads")
	if err != nil {
		t.Fatalf("NewLocal failed: %v", err)
	}

	url, err := l.Upload(context.Background(), pngDataURL(t, 4, 4))
	if err != nil {
		t.Fatalf("Upload failed: %v", err)
	}
	if !strings.HasPrefix(url, "/uploads/") || !strings.HasSuffix(url, ".png") {
		t.Errorf("Unexpected url %q", url)
	}

	name := strings.TrimPrefix(url, "/uploads/")
	if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
		t.Errorf("Uploaded file should exist: %v", err)
	}
}

// TestLocalUpload_BareBase64 data: 接頭辞の無いbase64も受け付ける
func TestLocalUpload_BareBase64(t *testing.T) {
	l, _ := NewLocal(t.TempDir(), "/uploads")
	bare := strings.TrimPrefix(pngDataURL(t, 2, 2), "data:image/png;base64,")

	if _, err := l.Upload(context.Background(), bare); err != nil {
		t.Errorf("Bare base64 should be accepted: %v", err)
	}
}

// TestLocalUpload_InvalidPayload 画像でないペイロードは拒否
func TestLocalUpload_InvalidPayload(t *testing.T) {
	l, _ := NewLocal(t.TempDir(), "/uploads")

	cases := []string{
		"",
		"not base64 at all!!",
		"data:image/png,plain",
		"data:text/plain;base64," + base64.StdEncoding.EncodeToString([]byte("hello world")),
	}
	for _, payload := range cases {
		if _, err := l.Upload(context.Background(), payload); !errors.Is(err, ErrInvalidPayload) {
			t.Errorf("Expected ErrInvalidPayload for %q, got %v", payload, err)
		}
	}
}

// TestProfilePicture_Downscales 大きな画像は枠内に縮小される
func TestProfilePicture_Downscales(t *testing.T) {
	out, err := ProfilePicture(pngDataURL(t, 800, 400), 200)
	if err != nil {
		t.Fatalf("ProfilePicture failed: %v", err)
	}
	if !strings.HasPrefix(out, "data:image/jpeg;base64,") {
		t.Fatalf("Expected jpeg data URL, got %.40s", out)
	}

	raw, _ := base64.StdEncoding.DecodeString(strings.TrimPrefix(out, "data:image/jpeg;base64,"))
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("Output should decode: %v", err)
	}
	b := img.Bounds()
	if b.Dx() != 200 || b.Dy() != 100 {
		t.Errorf("Expected 200x100, got %dx%d", b.Dx(), b.Dy())
	}
}

// TestProfilePicture_SmallUnchanged 枠内の画像はそのまま
func TestProfilePicture_SmallUnchanged(t *testing.T) {
	in := pngDataURL(t, 10, 10)

	out, err := ProfilePicture(in, 200)
	if err != nil {
		t.Fatalf("ProfilePicture failed: %v", err)
	}
	if out != in {
		t.Error("Small image should be returned unchanged")
	}
}

// TestProfilePicture_WebP WebPもプロフィール画像として受け付ける
func TestProfilePicture_WebP(t *testing.T) {
	in := "data:image/webp;base64,UklGRhoAAABXRUJQVlA4TA0AAAAvAAAAEAcQERGIiP4HAA=="

	out, err := ProfilePicture(in, 200)
	if err != nil {
		t.Fatalf("WebP should be accepted: %v", err)
	}
	if out != in {
		t.Error("Small WebP should be returned unchanged")
	}
}

// TestProfilePicture_UnknownFormatPassesThrough デコーダの無い画像形式はそのまま
func TestProfilePicture_UnknownFormatPassesThrough(t *testing.T) {
	ico := []byte{0x00, 0x00, 0x01, 0x00, 0x01, 0x00, 0x01, 0x01, 0x00, 0x00, 0x01, 0x00, 0x20, 0x00}
	in := "data:image/x-icon;base64," + base64.StdEncoding.EncodeToString(ico)

	out, err := ProfilePicture(in, 200)
	if err != nil {
		t.Fatalf("Unknown image format should pass through: %v", err)
	}
	if out != in {
		t.Error("Payload should be returned unchanged")
	}
}

// TestProfilePicture_RejectsHugeDimensions 巨大な寸法を宣言した画像はデコード前に拒否
func TestProfilePicture_RejectsHugeDimensions(t *testing.T) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 1, 1))); err != nil {
		t.Fatalf("Failed to encode png: %v", err)
	}
	raw := buf.Bytes()

	// IHDR: length(4) type(4) width(4) height(4) ... crc, directly after the 8-byte signature
	binary.BigEndian.PutUint32(raw[16:20], 20000)
	binary.BigEndian.PutUint32(raw[20:24], 20000)
	binary.BigEndian.PutUint32(raw[29:33], crc32.ChecksumIEEE(raw[12:29]))

	payload := "data:image/png;base64," + base64.StdEncoding.EncodeToString(raw)
	if _, err := ProfilePicture(payload, 200); !errors.Is(err, ErrInvalidPayload) {
		t.Errorf("Expected ErrInvalidPayload, got %v", err)
	}
}
