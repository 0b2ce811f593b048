package storage

import (
	"context"
)

// DocumentStore persists rendered documents under slash-separated paths
// relative to a vault root.
type DocumentStore interface {
	// Exists checks if a file or collection exists
	Exists(ctx context.Context, path string) (bool, error)

	// CreateCollection creates a folder for documents
	CreateCollection(ctx context.Context, path string) error

	// Write replaces the content of a document, creating it if needed
	Write(ctx context.Context, path string, content string) error
}

// EnsureCollection creates the collection when it does not exist yet.
// The check and the creation are not atomic.
func EnsureCollection(ctx context.Context, store DocumentStore, path string) error {
	exists, err := store.Exists(ctx, path)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	return store.CreateCollection(ctx, path)
}
