package storage

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"

	"github.com/nfnt/resize"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// MaxPixels caps the declared size of an image before it is decoded
const MaxPixels = 40_000_000

// ProfilePicture shrinks the image to fit within maxPx×maxPx and returns it as a
// JPEG data URL. Images already inside the box, and image types with no
// registered decoder, are returned unchanged.
func ProfilePicture(payload string, maxPx uint) (string, error) {
	raw, contentType, err := decodePayload(payload)
	if err != nil {
		return "", err
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(raw))
	if errors.Is(err, image.ErrFormat) {
		return toDataURL(raw, contentType), nil
	}
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || int64(cfg.Width)*int64(cfg.Height) > MaxPixels {
		return "", fmt.Errorf("%w: %dx%d exceeds pixel limit", ErrInvalidPayload, cfg.Width, cfg.Height)
	}

	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	b := img.Bounds()
	if maxPx == 0 || (uint(b.Dx()) <= maxPx && uint(b.Dy()) <= maxPx) {
		return toDataURL(raw, contentType), nil
	}

	thumb := resize.Thumbnail(maxPx, maxPx, img, resize.Lanczos3)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, thumb, &jpeg.Options{Quality: 85}); err != nil {
		return "", fmt.Errorf("encode profile picture: %w", err)
	}
	return toDataURL(buf.Bytes(), "image/jpeg"), nil
}
