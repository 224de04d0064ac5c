// Package storage holds uploaded photos, either in an S3 bucket or on the
// local filesystem.
package storage

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
)

var (
	ErrInvalidKey      = errors.New("invalid object key")
	ErrUnsupportedType = errors.New("unsupported content type")
	ErrObjectTooLarge  = errors.New("object too large")
)

var allowedContentTypes = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/webp": "webp",
	"image/gif":  "gif",
}

// Storage stores an object under a key and returns its public URL
type Storage interface {
	Put(ctx context.Context, key, contentType string, data []byte) (string, error)
}

// CleanKey normalises an object key and rejects keys that escape the bucket
func CleanKey(key string) (string, error) {
	key = strings.TrimPrefix(key, "/")
	if key == "" || strings.Contains(key, "..") || strings.Contains(key, "\\") {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	cleaned := path.Clean(key)
	if cleaned != key {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return cleaned, nil
}

// OwnedBy reports whether a key lives under the user's prefix
func OwnedBy(key, userID string) bool {
	return userID != "" && strings.HasPrefix(key, userID+"/")
}

// CheckContentType reports whether photos of this type are accepted
func CheckContentType(contentType string) error {
	if _, ok := allowedContentTypes[strings.ToLower(contentType)]; !ok {
		return fmt.Errorf("%w: %s", ErrUnsupportedType, contentType)
	}
	return nil
}

// ExtensionFor returns the file extension for an accepted content type
func ExtensionFor(contentType string) string {
	if ext, ok := allowedContentTypes[strings.ToLower(contentType)]; ok {
		return ext
	}
	return "bin"
}
