// Package storage provides access to the remote disk backend: a thin
// Backend interface over the raw API plus a retrying, rate-limited Client
// that every other component goes through.
package storage

import (
	"context"
)

// Folder describes one child directory of a remote path.
// It is the single descriptor shape produced everywhere: backend listings
// and allow-list expansions alike.
type Folder struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

// Meta holds the metadata of a remote resource.
type Meta struct {
	Name string `json:"name"`
	Path string `json:"path"`
	Type string `json:"type"` // "dir" or "file"
	Size int64  `json:"size,omitempty"`
	MD5  string `json:"md5,omitempty"`
	Mime string `json:"mime_type,omitempty"`
}

// IsDir reports whether the resource is a directory.
func (m *Meta) IsDir() bool { return m.Type == "dir" }

// Backend abstracts the raw remote disk API.
// Implementations must be safe for concurrent use. Every method may fail
// with an *Error carrying one of the Code* constants.
type Backend interface {
	// GetMeta retrieves metadata for a remote path.
	// Returns an error with CodeNotFound if the path does not exist.
	GetMeta(ctx context.Context, path string) (*Meta, error)

	// ListChildren returns the direct children of a remote directory.
	ListChildren(ctx context.Context, path string) ([]Meta, error)

	// Mkdir creates a single directory. The parent must already exist.
	// Returns an error with CodeConflict if the directory is already present.
	Mkdir(ctx context.Context, path string) error

	// Upload writes data to a remote path, overwriting any existing content.
	Upload(ctx context.Context, path string, data []byte) error

	// Download retrieves the content of a remote file.
	Download(ctx context.Context, path string) ([]byte, error)
}
