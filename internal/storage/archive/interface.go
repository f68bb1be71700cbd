// Package archive stores generated reports and signal-history exports.
package archive

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/tradercopilot/swingdash/internal/core"
)

// Storage is a blob store addressed by slash-separated paths.
type Storage interface {
	// Write stores data at the given path
	Write(ctx context.Context, path string, data []byte) error

	// Read retrieves data from the given path; a missing path yields core.ErrNotFound
	Read(ctx context.Context, path string) ([]byte, error)

	// List returns all paths matching the prefix
	List(ctx context.Context, prefix string) ([]string, error)

	// Delete removes the data at the given path
	Delete(ctx context.Context, path string) error

	// Exists checks if data exists at the given path
	Exists(ctx context.Context, path string) (bool, error)
}

// CleanPath normalizes p and rejects paths escaping the archive root.
func CleanPath(p string) (string, error) {
	if strings.Contains(p, "\\") {
		return "", core.WrapError(core.ErrArchiveFailed, fmt.Errorf("invalid path %q", p))
	}
	clean := path.Clean("/" + p)
	if clean == "/" || strings.Contains(p, "..") {
		return "", core.WrapError(core.ErrArchiveFailed, fmt.Errorf("invalid path %q", p))
	}
	return strings.TrimPrefix(clean, "/"), nil
}

// ContentType guesses the MIME type of an archived path from its extension.
func ContentType(p string) string {
	switch strings.ToLower(path.Ext(p)) {
	case ".md":
		return "text/markdown; charset=utf-8"
	case ".json":
		return "application/json"
	default:
		return "application/octet-stream"
	}
}
