package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/babushkai/saas-marketplace/internal/apperr"
	"github.com/babushkai/saas-marketplace/internal/models"
	"github.com/babushkai/saas-marketplace/internal/storage"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

const defaultFolder = "misc"

var (
	uploadFolders = map[string]bool{"logos": true, "screenshots": true, "avatars": true, defaultFolder: true}
	imageTypes    = []string{"image/jpeg", "image/png", "image/gif", "image/webp"}
)

// UploadResult locates a stored object.
type UploadResult struct {
	URL  string `json:"url"`
	Path string `json:"path"`
}

// UploadService validates images and stores them namespaced by identity.
type UploadService struct {
	store    storage.ObjectStore
	maxBytes int64
}

// NewUploadService creates a new UploadService.
func NewUploadService(store storage.ObjectStore, maxBytes int64) *UploadService {
	return &UploadService{store: store, maxBytes: maxBytes}
}

// Upload stores an image read from r under the identity's namespace.
// The content type is sniffed from the bytes, never taken from the client.
func (s *UploadService) Upload(ctx context.Context, identity models.Identity, folder string, size int64, r io.Reader) (*UploadResult, error) {
	folder = strings.TrimSpace(folder)
	if folder == "" {
		folder = defaultFolder
	}
	if !uploadFolders[folder] {
		return nil, apperr.Validation("invalid folder: must be one of logos, screenshots, avatars, misc")
	}
	if size > s.maxBytes {
		return nil, s.tooLarge()
	}

	data, err := io.ReadAll(io.LimitReader(r, s.maxBytes+1))
	if err != nil {
		return nil, apperr.Internal("failed to read upload", err)
	}
	if int64(len(data)) > s.maxBytes {
		return nil, s.tooLarge()
	}
	if len(data) == 0 {
		return nil, apperr.Validation("missing required field: file")
	}

	mtype := mimetype.Detect(data)
	if !mimetype.EqualsAny(mtype.String(), imageTypes...) {
		return nil, apperr.Validation("invalid file type: only JPEG, PNG, GIF and WebP images are allowed")
	}

	objectPath := storage.Namespace(identity.Subject) + "/" + folder + "/" + uuid.NewString() + mtype.Extension()
	if err := s.store.Put(ctx, objectPath, bytes.NewReader(data)); err != nil {
		return nil, apperr.Internal("failed to store upload", err)
	}
	return &UploadResult{URL: s.store.URL(objectPath), Path: objectPath}, nil
}

func (s *UploadService) tooLarge() error {
	return apperr.Validation(fmt.Sprintf("file too large: maximum size is %d bytes", s.maxBytes))
}

// Delete removes an object the identity owns.
func (s *UploadService) Delete(ctx context.Context, identity models.Identity, objectPath string) error {
	objectPath = strings.TrimSpace(objectPath)
	if objectPath == "" {
		return apperr.Validation("missing required field: path")
	}
	cleaned, err := storage.Clean(objectPath)
	if err != nil {
		return apperr.Validation("invalid path")
	}
	if !strings.HasPrefix(cleaned, storage.Namespace(identity.Subject)+"/") {
		return apperr.Forbidden("you do not own this file")
	}

	if err := s.store.Delete(ctx, cleaned); err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return apperr.NotFound("file not found")
		}
		return apperr.Internal("failed to delete upload", err)
	}
	return nil
}
