// Package storage issues time-limited write URLs against object storage.
// The MinIO implementation works with any S3-compatible provider; the S3
// implementation uses the AWS SDK and its default credential chain.
package storage

import (
	"context"
	"strings"
	"time"
)

// Signer issues pre-signed PUT URLs and builds public read URLs.
type Signer interface {
	// PresignPut returns a URL that accepts a single PUT of key until expiry.
	PresignPut(ctx context.Context, key, contentType string, expiry time.Duration) (string, error)
	// PublicURL constructs the browser-accessible URL for a given key.
	PublicURL(key string) string
}

// publicURL joins base and key with exactly one slash.
func publicURL(base, key string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(key, "/")
}
