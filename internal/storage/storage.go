package storage

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"pulsechat/internal/config"
)

// ErrInvalidPayload is returned for payloads that are not a base64 encoded image
var ErrInvalidPayload = errors.New("invalid image payload")

// Uploader stores an image payload and returns its public URL
type Uploader interface {
	Upload(ctx context.Context, payload string) (string, error)
}

// New builds the Uploader selected by cfg.StorageBackend
func New(cfg config.Config) (Uploader, error) {
	switch cfg.StorageBackend {
	case "cloudinary":
		return NewCloudinary(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret, cfg.CloudinaryFolder)
	case "local":
		return NewLocal(cfg.UploadDir, cfg.UploadBaseURL)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}

// decodePayload accepts a data URL ("data:image/png;base64,...") or bare base64
// and returns the raw bytes with their sniffed content type
func decodePayload(payload string) ([]byte, string, error) {
	payload = strings.TrimSpace(payload)
	if payload == "" {
		return nil, "", ErrInvalidPayload
	}

	encoded := payload
	if strings.HasPrefix(payload, "data:") {
		meta, data, ok := strings.Cut(payload, ",")
		if !ok || !strings.HasSuffix(meta, ";base64") {
			return nil, "", ErrInvalidPayload
		}
		encoded = data
	}

	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		if raw, err = base64.RawStdEncoding.DecodeString(encoded); err != nil {
			return nil, "", fmt.Errorf("%w: %v", ErrInvalidPayload, err)
		}
	}
	if len(raw) == 0 {
		return nil, "", ErrInvalidPayload
	}

	contentType := http.DetectContentType(raw)
	if !strings.HasPrefix(contentType, "image/") {
		return nil, "", fmt.Errorf("%w: content type %s", ErrInvalidPayload, contentType)
	}
	return raw, contentType, nil
}

func toDataURL(raw []byte, contentType string) string {
	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(raw)
}

func extension(contentType string) string {
	switch contentType {
	case "image/png":
		return ".png"
	case "image/jpeg":
		return ".jpg"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	case "image/bmp":
		return ".bmp"
	default:
		return ".img"
	}
}
