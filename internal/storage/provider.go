// Package storage reads and writes canvas files inside the vault directory.
package storage

import "github.com/starford/tscanvas/internal/models"

// Ext is the file extension of canvas files.
const Ext = ".canvas"

// Provider is the vault file-system abstraction. Paths are relative to the
// vault root.
type Provider interface {
	// List returns metadata for every canvas file under dir.
	List(dir string) ([]models.CanvasMetadata, error)
	// Read returns the content of path, or an error wrapping apperr.ErrNotFound.
	Read(path string) ([]byte, error)
	// Write replaces the content of path atomically.
	Write(path string, content []byte) error
	// Delete removes path.
	Delete(path string) error
}
