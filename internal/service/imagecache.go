package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/clubhub-app/clubhub-backend/internal/logger"
	"github.com/clubhub-app/clubhub-backend/internal/model"
)

const (
	imageKeyPrefix = "club:image:"
	metaKeyPrefix  = "club:imagemeta:"

	// Cached references older than this are removed by CleanupOld.
	maxImageAge = 30 * 24 * time.Hour

	// Assumed average image size for the user-facing cache estimate.
	assumedImageSize = 500 * 1024
)

// ResourceChecker reports whether the resource behind an image URI is still
// reachable. Image references can be invalidated by OS-level cache eviction
// or app reinstall; the cache must not keep serving dead references.
type ResourceChecker interface {
	Exists(ctx context.Context, uri string) bool
}

// ImageCache stores at most one profile image reference per user in
// key-value storage, pairing each URI with save-time metadata.
type ImageCache struct {
	kv      model.KeyValueStore
	checker ResourceChecker
	logger  *logger.Logger
	now     func() time.Time
}

// NewImageCache creates an ImageCache. checker may be nil, in which case
// reads trust the stored URI without verifying the resource still exists.
func NewImageCache(kv model.KeyValueStore, checker ResourceChecker, logger *logger.Logger) *ImageCache {
	return &ImageCache{
		kv:      kv,
		checker: checker,
		logger:  logger,
		now:     time.Now,
	}
}

func imageKey(userID string) string {
	return imageKeyPrefix + userID
}

func metaKey(userID string) string {
	return metaKeyPrefix + userID
}

// Save stores imageURI for userID, overwriting any prior record. The URI and
// its metadata are written as a pair; there is no rollback if the second
// write fails, drift is repaired by Reconcile.
func (c *ImageCache) Save(ctx context.Context, userID, imageURI string) (string, error) {
	if userID == "" || imageURI == "" {
		return "", fmt.Errorf("user id and image uri are required: %w", model.ErrInvalidParameters)
	}

	meta := model.ImageMetadata{
		OriginalURI: imageURI,
		Timestamp:   c.now().UnixMilli(),
	}
	metaJSON, err := json.Marshal(meta)
	if err != nil {
		return "", fmt.Errorf("failed to marshal metadata: %w", err)
	}

	if err := c.kv.Set(ctx, imageKey(userID), imageURI); err != nil {
		return "", fmt.Errorf("%w: %w", model.ErrLocalWrite, err)
	}
	if err := c.kv.Set(ctx, metaKey(userID), string(metaJSON)); err != nil {
		return "", fmt.Errorf("%w: %w", model.ErrLocalWrite, err)
	}

	return imageURI, nil
}

// Get returns the cached image URI for userID. An absent record is not an
// error. When a checker is configured and the referenced resource is gone,
// the stale record is removed and the read reports absence (self-healing).
func (c *ImageCache) Get(ctx context.Context, userID string) (string, bool, error) {
	uri, err := c.kv.Get(ctx, imageKey(userID))
	if errors.Is(err, model.ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read cached image: %w", err)
	}

	if c.checker != nil && !c.checker.Exists(ctx, uri) {
		c.logger.Info("cached image no longer resolvable, removing", "user_id", userID)
		if err := c.Remove(ctx, userID); err != nil {
			c.logger.Warn("failed to remove stale image record", "user_id", userID, "error", err)
		}
		return "", false, nil
	}

	return uri, true, nil
}

// Remove deletes the URI and metadata entries for userID. Removing an
// already-absent record still succeeds.
func (c *ImageCache) Remove(ctx context.Context, userID string) error {
	if err := c.kv.Remove(ctx, imageKey(userID), metaKey(userID)); err != nil {
		return fmt.Errorf("failed to remove cached image: %w", err)
	}
	return nil
}

// Metadata returns the save-time metadata for userID without verifying the
// underlying resource.
func (c *ImageCache) Metadata(ctx context.Context, userID string) (model.ImageMetadata, bool, error) {
	raw, err := c.kv.Get(ctx, metaKey(userID))
	if errors.Is(err, model.ErrNotFound) {
		return model.ImageMetadata{}, false, nil
	}
	if err != nil {
		return model.ImageMetadata{}, false, fmt.Errorf("failed to read image metadata: %w", err)
	}

	var meta model.ImageMetadata
	if err := json.Unmarshal([]byte(raw), &meta); err != nil {
		return model.ImageMetadata{}, false, fmt.Errorf("failed to unmarshal image metadata: %w", err)
	}

	return meta, true, nil
}

// All enumerates every cached image record. Entries missing either the URI
// or the metadata half are silently excluded; Reconcile cleans those up.
func (c *ImageCache) All(ctx context.Context) ([]model.LocalImageRecord, error) {
	keys, err := c.kv.Keys(ctx, imageKeyPrefix+"*")
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate image keys: %w", err)
	}

	records := make([]model.LocalImageRecord, 0, len(keys))
	for _, key := range keys {
		userID := strings.TrimPrefix(key, imageKeyPrefix)

		uri, err := c.kv.Get(ctx, key)
		if errors.Is(err, model.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read image key: %w", err)
		}

		meta, ok, err := c.Metadata(ctx, userID)
		if err != nil || !ok {
			continue
		}

		records = append(records, model.LocalImageRecord{
			UserID:   userID,
			ImageURI: uri,
			Metadata: meta,
		})
	}

	return records, nil
}

// CleanupOld removes every record whose save timestamp predates the fixed
// 30-day threshold and returns the number of records removed.
func (c *ImageCache) CleanupOld(ctx context.Context) (int, error) {
	records, err := c.All(ctx)
	if err != nil {
		return 0, err
	}

	cutoff := c.now().Add(-maxImageAge).UnixMilli()
	removed := 0
	for _, rec := range records {
		if rec.Metadata.Timestamp >= cutoff {
			continue
		}
		if err := c.Remove(ctx, rec.UserID); err != nil {
			c.logger.Warn("failed to remove expired image", "user_id", rec.UserID, "error", err)
			continue
		}
		removed++
	}

	return removed, nil
}

// StorageSize estimates local cache usage for diagnostics. The size is a
// count-based estimate, not a byte-accurate measurement.
func (c *ImageCache) StorageSize(ctx context.Context) (model.CacheStats, error) {
	records, err := c.All(ctx)
	if err != nil {
		return model.CacheStats{}, err
	}

	totalBytes := int64(len(records)) * assumedImageSize
	return model.CacheStats{
		TotalImages:   len(records),
		EstimatedSize: formatSize(totalBytes),
	}, nil
}

// Export returns all cached records for backup purposes.
func (c *ImageCache) Export(ctx context.Context) ([]model.LocalImageRecord, error) {
	return c.All(ctx)
}

// Import re-saves each record independently; one failing entry does not
// abort the batch. Timestamps are refreshed on import.
func (c *ImageCache) Import(ctx context.Context, records []model.LocalImageRecord) (model.ImportSummary, error) {
	var summary model.ImportSummary
	for _, rec := range records {
		if _, err := c.Save(ctx, rec.UserID, rec.ImageURI); err != nil {
			c.logger.Warn("failed to import image record", "user_id", rec.UserID, "error", err)
			summary.Failed++
			continue
		}
		summary.Imported++
	}
	return summary, nil
}

// Reconcile removes half-records left behind by an interrupted dual write:
// URIs without metadata and metadata without a URI. Returns the number of
// users repaired.
func (c *ImageCache) Reconcile(ctx context.Context) (int, error) {
	imageKeys, err := c.kv.Keys(ctx, imageKeyPrefix+"*")
	if err != nil {
		return 0, fmt.Errorf("failed to enumerate image keys: %w", err)
	}
	metaKeys, err := c.kv.Keys(ctx, metaKeyPrefix+"*")
	if err != nil {
		return 0, fmt.Errorf("failed to enumerate metadata keys: %w", err)
	}

	haveURI := make(map[string]bool, len(imageKeys))
	for _, key := range imageKeys {
		haveURI[strings.TrimPrefix(key, imageKeyPrefix)] = true
	}
	haveMeta := make(map[string]bool, len(metaKeys))
	for _, key := range metaKeys {
		haveMeta[strings.TrimPrefix(key, metaKeyPrefix)] = true
	}

	repaired := 0
	for userID := range haveURI {
		if haveMeta[userID] {
			continue
		}
		if err := c.Remove(ctx, userID); err != nil {
			return repaired, err
		}
		repaired++
	}
	for userID := range haveMeta {
		if haveURI[userID] {
			continue
		}
		if err := c.Remove(ctx, userID); err != nil {
			return repaired, err
		}
		repaired++
	}

	return repaired, nil
}

func formatSize(bytes int64) string {
	const mb = 1024 * 1024
	if bytes >= mb {
		return fmt.Sprintf("%.1f MB", float64(bytes)/float64(mb))
	}
	return fmt.Sprintf("%d KB", bytes/1024)
}
