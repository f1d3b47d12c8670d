package storage

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Local keeps uploads on disk and serves them from BaseURL
type Local struct {
	Dir     string
	BaseURL string
}

// NewLocal creates the upload directory if needed
func NewLocal(dir, baseURL string) (*Local, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Local{Dir: dir, BaseURL: baseURL}, nil
}

// Upload writes the decoded image under a random name
func (l *Local) Upload(ctx context.Context, payload string) (string, error) {
	raw, contentType, err := decodePayload(payload)
	if err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	name := uuid.NewString() + extension(contentType)
	if err := os.WriteFile(filepath.Join(l.Dir, name), raw, 0644); err != nil {
		return "", fmt.Errorf("write upload: %w", err)
	}

	log.Printf("[Storage] ✅ Stored %s (%d bytes)", name, len(raw))
	return l.BaseURL + "/" + name, nil
}
