// Package objectstore abstracts the durable object storage that selection
// images are published to. S3 is the primary backend; Supabase Storage is
// supported for deployments that keep their media there.
package objectstore

import (
	"context"
	"time"
)

// Store publishes objects and derives time-limited retrieval URLs.
// Implementations must be safe for concurrent use; a single Store is shared
// by every per-item goroutine in a run.
type Store interface {
	// Put writes body under key, overwriting any existing object.
	Put(ctx context.Context, key string, body []byte, contentType string) error

	// SignedGetURL returns a URL that allows a GET of key for ttl.
	SignedGetURL(ctx context.Context, key string, ttl time.Duration) (string, error)

	// Location names the bucket (and backend) for logging.
	Location() string
}
