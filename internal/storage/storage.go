package storage

import (
	"context"
	"errors"
)

// Object store failure modes callers branch on.
var (
	// ErrNotFound marks a deletion target that no longer exists. Removal
	// flows treat it as already-deleted.
	ErrNotFound = errors.New("storage: object not found")
	// ErrQuotaExceeded marks an upload rejected because the backing store
	// is full.
	ErrQuotaExceeded = errors.New("storage: quota exceeded")
)

// ObjectStore persists binary image payloads and addresses them by durable
// URL. Implementations map their own keys to and from those URLs.
type ObjectStore interface {
	// Put writes data under key and returns the durable URL for it.
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
	// Delete removes the object a previously returned URL points to.
	// Deleting an absent object fails with ErrNotFound.
	Delete(ctx context.Context, url string) error
}
