package model

import "context"

// KeyValueStore defines the key-value persistence consumed by the image cache.
// Get returns ErrNotFound for absent keys. Remove is idempotent.
type KeyValueStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, keys ...string) error
	Keys(ctx context.Context, pattern string) ([]string, error)
}

// ImageMetadata describes a cached profile image at save time.
type ImageMetadata struct {
	OriginalURI string `json:"original_uri"`
	Timestamp   int64  `json:"timestamp"` // epoch milliseconds
	Size        int64  `json:"size,omitempty"`
}

// LocalImageRecord is the cached profile image reference for one user.
// At most one record exists per user; saves are last-write-wins.
type LocalImageRecord struct {
	UserID   string        `json:"user_id"`
	ImageURI string        `json:"image_uri"`
	Metadata ImageMetadata `json:"metadata"`
}

// ImportSummary tallies an image cache import batch.
type ImportSummary struct {
	Imported int `json:"imported"`
	Failed   int `json:"failed"`
}

// CacheStats is a user-facing estimate of local cache usage.
type CacheStats struct {
	TotalImages   int    `json:"total_images"`
	EstimatedSize string `json:"estimated_size"`
}
