// Package storage talks to the external object storage service that
// holds business, service and profile images.
package storage

import (
	"context"
	"io"
	"net/url"
)

// Gateway is the object storage client surface.
type Gateway interface {
	// Upload stores a blob and returns its retrievable URL.
	Upload(ctx context.Context, filename, contentType string, r io.Reader) (string, error)
	// Delete removes a blob by its id.
	Delete(ctx context.Context, blobID string) error
}

// BlobIDFromURL extracts the blob id from a retrievable URL. URLs carry
// the id as an `id` query parameter; anything else yields "".
func BlobIDFromURL(rawURL string) string {
	if rawURL == "" {
		return ""
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Query().Get("id")
}
