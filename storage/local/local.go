package local

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Storage provides traversal-guarded file access under a base
// directory. The library root and the thumbnail store are both
// instances of it.
type Storage struct {
	absBasePath string
}

// NewStorage creates a storage rooted at basePath, creating it when
// missing.
func NewStorage(basePath string) (*Storage, error) {
	absPath, err := filepath.Abs(basePath)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path for '%s': %w", basePath, err)
	}

	if err := os.MkdirAll(absPath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory '%s': %w", absPath, err)
	}

	return &Storage{
		absBasePath: absPath + string(os.PathSeparator),
	}, nil
}

// SaveWithContext writes a file under the base directory.
func (s *Storage) SaveWithContext(ctx context.Context, identifier string, file io.Reader) error {
	fullPath, err := s.resolve(identifier)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return fmt.Errorf("failed to create parent directory for '%s': %w", identifier, err)
	}

	dst, err := os.Create(fullPath)
	if err != nil {
		return fmt.Errorf("failed to create destination file '%s': %w", fullPath, err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		_ = os.Remove(fullPath)
		return fmt.Errorf("failed to copy file content to '%s': %w", fullPath, err)
	}

	return nil
}

// GetWithContext opens a file under the base directory.
func (s *Storage) GetWithContext(ctx context.Context, identifier string) (io.ReadSeekCloser, error) {
	fullPath, err := s.resolve(identifier)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("file not found: %s", identifier)
		}
		return nil, fmt.Errorf("failed to open file '%s': %w", identifier, err)
	}

	return file, nil
}

// DeleteWithContext removes a file under the base directory.
func (s *Storage) DeleteWithContext(ctx context.Context, identifier string) error {
	fullPath, err := s.resolve(identifier)
	if err != nil {
		return err
	}

	if err := os.Remove(fullPath); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("file to delete not found: %s", identifier)
		}
		return fmt.Errorf("failed to delete file '%s': %w", fullPath, err)
	}

	return nil
}

// Exists reports whether a file is present.
func (s *Storage) Exists(ctx context.Context, identifier string) (bool, error) {
	fullPath, err := s.resolve(identifier)
	if err != nil {
		return false, err
	}

	if _, err := os.Stat(fullPath); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Health checks the base directory is readable.
func (s *Storage) Health(ctx context.Context) error {
	_, err := os.ReadDir(s.absBasePath)
	return err
}

// Name returns the storage name.
func (s *Storage) Name() string {
	return "local"
}

// BasePath returns the absolute base path.
func (s *Storage) BasePath() string {
	return s.absBasePath
}

// resolve validates an identifier and returns its absolute path.
func (s *Storage) resolve(identifier string) (string, error) {
	if !IsValidIdentifier(identifier) {
		return "", fmt.Errorf("invalid file identifier: %s", identifier)
	}

	fullPath := filepath.Join(s.absBasePath, filepath.FromSlash(identifier))
	if !strings.HasPrefix(fullPath, s.absBasePath) {
		return "", fmt.Errorf("invalid file path, potential directory traversal: %s", identifier)
	}
	return fullPath, nil
}

// IsValidIdentifier reports whether identifier is a safe slash-form
// relative path.
func IsValidIdentifier(identifier string) bool {
	if identifier == "" {
		return false
	}

	if filepath.IsAbs(identifier) || strings.HasPrefix(identifier, "/") {
		return false
	}

	if strings.Contains(identifier, "\\") {
		return false
	}

	for _, part := range strings.Split(identifier, "/") {
		if part == "" || part == "." || part == ".." {
			return false
		}
	}

	return true
}
