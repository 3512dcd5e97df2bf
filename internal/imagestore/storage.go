// Package imagestore uploads image bytes to object storage and returns
// retrievable URLs.
package imagestore

import "context"

// Storage writes image bytes under a key and returns a dereferenceable
// URL. URL lifetime is backend-dependent; the S3 backend returns a
// presigned URL valid for seven days.
type Storage interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
}
