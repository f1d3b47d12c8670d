package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// Cloudinary uploads images to the hosted Cloudinary service
type Cloudinary struct {
	cld    *cloudinary.Cloudinary
	folder string
}

// NewCloudinary configures a client from account credentials
func NewCloudinary(cloudName, apiKey, apiSecret, folder string) (*Cloudinary, error) {
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("configure cloudinary: %w", err)
	}
	return &Cloudinary{cld: cld, folder: folder}, nil
}

// Upload sends the image as a data URL and returns the secure URL
func (c *Cloudinary) Upload(ctx context.Context, payload string) (string, error) {
	raw, contentType, err := decodePayload(payload)
	if err != nil {
		return "", err
	}

	resp, err := c.cld.Upload.Upload(ctx, toDataURL(raw, contentType), uploader.UploadParams{
		Folder: c.folder,
	})
	if err != nil {
		return "", fmt.Errorf("cloudinary upload: %w", err)
	}
	if resp.Error.Message != "" {
		return "", errors.New("cloudinary upload: " + resp.Error.Message)
	}
	return resp.SecureURL, nil
}
