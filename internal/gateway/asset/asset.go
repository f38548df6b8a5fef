// Package asset uploads images to a hosted asset store.
package asset

import (
	"context"
	"fmt"
	"io"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/google/uuid"
	"storefront/internal/config"
	"storefront/internal/domain"
)

type Store interface {
	Upload(ctx context.Context, r io.Reader, filename string) (string, error)
}

type CloudinaryStore struct {
	cld     *cloudinary.Cloudinary
	folder  string
	timeout time.Duration
}

func NewCloudinary(cfg config.CloudinaryConfig, timeout time.Duration) (*CloudinaryStore, error) {
	cld, err := cloudinary.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	if err != nil {
		return nil, fmt.Errorf("init cloudinary: %w", err)
	}
	return &CloudinaryStore{cld: cld, folder: cfg.Folder, timeout: timeout}, nil
}

// Upload stores the file and returns its public https URL.
func (s *CloudinaryStore) Upload(ctx context.Context, r io.Reader, filename string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	resp, err := s.cld.Upload.Upload(ctx, r, uploader.UploadParams{
		PublicID: PublicID(filename),
		Folder:   s.folder,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrUploadFailed, err)
	}
	if resp.Error.Message != "" {
		return "", fmt.Errorf("%w: %s", domain.ErrUploadFailed, resp.Error.Message)
	}
	if resp.SecureURL == "" {
		return "", fmt.Errorf("%w: empty url in response", domain.ErrUploadFailed)
	}
	return resp.SecureURL, nil
}

// Unconfigured rejects every upload. It stands in when no credentials are set.
type Unconfigured struct{}

func (Unconfigured) Upload(context.Context, io.Reader, string) (string, error) {
	return "", fmt.Errorf("%w: asset store not configured", domain.ErrUploadFailed)
}

var unsafeChars = regexp.MustCompile(`[^a-z0-9_-]+`)

// PublicID derives a unique, URL safe asset id from the uploaded file name.
func PublicID(filename string) string {
	base := strings.ToLower(strings.TrimSuffix(path.Base(filename), path.Ext(filename)))
	base = strings.Trim(unsafeChars.ReplaceAllString(base, "-"), "-")
	if base == "" || base == "." {
		base = "upload"
	}
	return base + "-" + uuid.NewString()[:8]
}
