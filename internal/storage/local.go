package storage

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
)

// LocalStorage writes objects below a directory on disk. The directory is
// served by the backend under baseURL.
type LocalStorage struct {
	root    string
	baseURL string
}

// NewLocalStorage creates the root directory if needed
func NewLocalStorage(root, baseURL string) (*LocalStorage, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	log.Printf("Photo storage: local directory %s", root)
	return &LocalStorage{
		root:    root,
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}, nil
}

// Root returns the directory objects are written to
func (s *LocalStorage) Root() string {
	return s.root
}

// Put writes the object and returns its public URL
func (s *LocalStorage) Put(ctx context.Context, key, contentType string, data []byte) (string, error) {
	key, err := CleanKey(key)
	if err != nil {
		return "", err
	}
	if err := CheckContentType(contentType); err != nil {
		return "", err
	}

	filePath := filepath.Join(s.root, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return "", fmt.Errorf("failed to create object directory: %w", err)
	}

	file, err := os.Create(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to create object: %w", err)
	}
	defer file.Close()

	if _, err := file.Write(data); err != nil {
		return "", fmt.Errorf("failed to write object: %w", err)
	}
	if err := file.Sync(); err != nil {
		return "", fmt.Errorf("failed to sync object: %w", err)
	}

	return s.baseURL + "/" + key, nil
}
