// Package storage is a pass-through object store for uploaded images.
package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"strings"

	"github.com/spf13/afero"
)

// ErrObjectNotFound is returned when deleting an object that does not exist.
var ErrObjectNotFound = errors.New("object not found")

// ErrInvalidPath is returned for object paths that escape the store root.
var ErrInvalidPath = errors.New("invalid object path")

// ObjectStore persists uploaded objects under slash-separated paths.
type ObjectStore interface {
	Put(ctx context.Context, objectPath string, r io.Reader) error
	Delete(ctx context.Context, objectPath string) error
	// URL returns the public URL objectPath is served from.
	URL(objectPath string) string
}

// FSStore stores objects on an afero filesystem.
type FSStore struct {
	fs      afero.Fs
	baseURL string
}

// NewFSStore creates a store on fs. Objects are served below baseURL.
func NewFSStore(fs afero.Fs, baseURL string) *FSStore {
	return &FSStore{fs: fs, baseURL: strings.TrimRight(baseURL, "/")}
}

// NewLocalStore roots a store at dir on the OS filesystem.
func NewLocalStore(dir, baseURL string) (*FSStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir %s: %w", dir, err)
	}
	return NewFSStore(afero.NewBasePathFs(afero.NewOsFs(), dir), baseURL), nil
}

// Clean normalizes an object path and rejects traversal outside the root.
func Clean(objectPath string) (string, error) {
	if objectPath == "" || strings.HasPrefix(objectPath, "/") {
		return "", ErrInvalidPath
	}
	cleaned := path.Clean(objectPath)
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", ErrInvalidPath
	}
	return cleaned, nil
}

// Put writes r to objectPath, creating parent directories.
func (s *FSStore) Put(ctx context.Context, objectPath string, r io.Reader) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p, err := Clean(objectPath)
	if err != nil {
		return err
	}
	if err := s.fs.MkdirAll(path.Dir(p), 0o755); err != nil {
		return fmt.Errorf("failed to create object dir: %w", err)
	}

	f, err := s.fs.OpenFile(p, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open object %s: %w", p, err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return fmt.Errorf("failed to write object %s: %w", p, err)
	}
	return f.Close()
}

// Delete removes objectPath.
func (s *FSStore) Delete(ctx context.Context, objectPath string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p, err := Clean(objectPath)
	if err != nil {
		return err
	}
	exists, err := afero.Exists(s.fs, p)
	if err != nil {
		return fmt.Errorf("failed to stat object %s: %w", p, err)
	}
	if !exists {
		return ErrObjectNotFound
	}
	if err := s.fs.Remove(p); err != nil {
		return fmt.Errorf("failed to delete object %s: %w", p, err)
	}
	return nil
}

// URL joins the base URL and the object path.
func (s *FSStore) URL(objectPath string) string {
	return s.baseURL + "/" + strings.TrimLeft(objectPath, "/")
}

// Namespace returns the directory an identity's objects live under. The
// subject is hashed so arbitrary token subjects yield safe path segments.
func Namespace(subject string) string {
	sum := sha256.Sum256([]byte(subject))
	return hex.EncodeToString(sum[:])[:32]
}
