// Package objectstore holds post image blobs. Objects live under a path
// namespaced by owner ID with a randomized name; reads are public via the
// configured base URL, writes and deletes are owner-scoped by the gateway.
package objectstore

import "context"

// PutInput is one image upload.
type PutInput struct {
	OwnerID     uint
	Filename    string
	ContentType string
	Data        []byte
}

// Store is the blob storage contract.
type Store interface {
	// Put stores the processed image and returns its public URL.
	Put(ctx context.Context, in PutInput) (string, error)
	// Remove deletes the object behind a previously returned URL. Removal is
	// best-effort; a missing object is not an error.
	Remove(ctx context.Context, url string) error
}
