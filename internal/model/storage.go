package model

import (
	"context"
	"io"
	"time"
)

// ObjectInfo describes a stored object.
type ObjectInfo struct {
	Key          string
	Size         int64
	LastModified time.Time
}

// ObjectStorage defines bucket-scoped object storage operations.
// Upload has upsert semantics: writing an existing key overwrites it.
type ObjectStorage interface {
	Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error
	List(ctx context.Context, prefix string, limit int) ([]ObjectInfo, error)
	Delete(ctx context.Context, key string) error
	DeleteMany(ctx context.Context, keys []string) error
	Buckets(ctx context.Context) ([]string, error)
	Bucket() string
	PublicURL(key string) string
}
