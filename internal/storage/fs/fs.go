package fs

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	internal_errors "github.com/clubhub-dev/clubhub/internal/errors"
)

// Storage is a local-disk blob store for message attachments. It never
// inspects file bytes; callers classify uploads from declared metadata only.
type Storage struct {
	rootPath string
}

func New(rootPath string) (*Storage, error) {
	// Use filepath.Clean to prevent path traversal issues like "media/../"
	p := filepath.Clean(rootPath)

	if err := os.MkdirAll(p, 0755); err != nil {
		return nil, fmt.Errorf("failed to create root storage directory %s: %w", p, err)
	}

	return &Storage{rootPath: p}, nil
}

// Save streams the blob to disk under a generated name and returns that name.
// The original filename contributes only its extension; the stored name is a
// uuid so uploads can never collide or traverse outside the root.
func (s *Storage) Save(fileData io.Reader, originalFilename string) (string, error) {
	ext := filepath.Ext(filepath.Base(originalFilename))
	filename := uuid.NewString() + ext
	fullPath := filepath.Join(s.rootPath, filename)

	dst, err := os.Create(fullPath)
	if err != nil {
		return "", fmt.Errorf("failed to create destination file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, fileData); err != nil {
		os.Remove(fullPath) // Best effort, ignore error here.
		return "", fmt.Errorf("failed to copy file data: %w", err)
	}

	return filename, nil
}

// Open returns the stored blob for reading. The caller closes it.
func (s *Storage) Open(filename string) (io.ReadCloser, error) {
	fullPath := filepath.Join(s.rootPath, filepath.Base(filename))

	file, err := os.Open(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: no stored attachment %s", internal_errors.NotFound, filename)
		}
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	return file, nil
}

// Remove deletes a stored blob. Missing files are not an error so rollback
// paths can call it unconditionally.
func (s *Storage) Remove(filename string) error {
	err := os.Remove(filepath.Join(s.rootPath, filepath.Base(filename)))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove file: %w", err)
	}
	return nil
}
