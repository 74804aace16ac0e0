package service

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/clubhub-app/clubhub-backend/internal/logger"
	"github.com/clubhub-app/clubhub-backend/internal/model"
)

const (
	// Uploads above this size are rejected. The limit is inclusive: a
	// payload of exactly this size is accepted.
	maxUploadSize = 5 << 20

	// CleanupOld keeps this many most recent avatars per user.
	keepRecentAvatars = 3

	defaultAvatarFilename = "avatar.jpg"
)

// URIFetcher materializes an image URI into a binary payload plus a
// best-effort content type.
type URIFetcher interface {
	Fetch(ctx context.Context, uri string) ([]byte, string, error)
}

// StorageErrorClass categorizes upload failures for user-facing messages.
type StorageErrorClass string

const (
	StorageErrorBucketMissing    StorageErrorClass = "bucket_missing"
	StorageErrorPermissionDenied StorageErrorClass = "permission_denied"
	StorageErrorTooLarge         StorageErrorClass = "too_large"
	StorageErrorUnsupportedType  StorageErrorClass = "unsupported_type"
	StorageErrorGeneric          StorageErrorClass = "generic"
)

// StorageError wraps a backend storage failure with a classified,
// user-facing message.
type StorageError struct {
	Class   StorageErrorClass
	Message string
	Err     error
}

func (e *StorageError) Error() string { return e.Message }
func (e *StorageError) Unwrap() error { return e.Err }

// The backend reports failures as free text, not structured codes, so
// classification is substring matching kept in one table. First match wins.
var storageErrorClasses = []struct {
	substr  string
	class   StorageErrorClass
	message string
}{
	{"bucket not found", StorageErrorBucketMissing, "Image storage is not set up. Please contact support."},
	{"no such bucket", StorageErrorBucketMissing, "Image storage is not set up. Please contact support."},
	{"access denied", StorageErrorPermissionDenied, "You don't have permission to upload images."},
	{"permission", StorageErrorPermissionDenied, "You don't have permission to upload images."},
	{"entitytoolarge", StorageErrorTooLarge, "The image is too large to upload."},
	{"too large", StorageErrorTooLarge, "The image is too large to upload."},
	{"exceeds the maximum", StorageErrorTooLarge, "The image is too large to upload."},
	{"unsupported", StorageErrorUnsupportedType, "This image format is not supported."},
}

func classifyStorageError(err error) *StorageError {
	text := strings.ToLower(err.Error())
	for _, c := range storageErrorClasses {
		if strings.Contains(text, c.substr) {
			return &StorageError{Class: c.class, Message: c.message, Err: err}
		}
	}
	return &StorageError{Class: StorageErrorGeneric, Message: "Image upload failed. Please try again.", Err: err}
}

// URI shapes the clients hand over: web URLs, local file handles, photo
// library handles and inline data URIs.
var allowedURIPrefixes = []string{
	"http://", "https://", "file://", "content://", "ph://",
	"assets-library://", "data:", "/",
}

var mimeByExtension = map[string]string{
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"png":  "image/png",
	"gif":  "image/gif",
	"webp": "image/webp",
	"heic": "image/heic",
}

// Avatar uploads profile images to object storage under deterministic
// per-user keys and mirrors the resulting URL onto the profile record on a
// best-effort basis. Object storage is the source of truth; the profile
// mirror is allowed to drift.
type Avatar struct {
	storage  model.ObjectStorage
	profiles model.ProfileStore
	fetcher  URIFetcher
	logger   *logger.Logger
	now      func() time.Time
}

// NewAvatar creates an Avatar service.
func NewAvatar(storage model.ObjectStorage, profiles model.ProfileStore, fetcher URIFetcher, logger *logger.Logger) *Avatar {
	return &Avatar{
		storage:  storage,
		profiles: profiles,
		fetcher:  fetcher,
		logger:   logger,
		now:      time.Now,
	}
}

// Upload materializes imageURI, validates it and writes it to object storage
// under {userID}/avatar_{epochMillis}.{ext}. The timestamp in the key makes
// every upload a distinct object so clients never see a cached stale image
// at a reused name. Returns the public URL of the uploaded object.
//
// Upload success is defined by the object write alone; a failed profile
// mirror update is logged and does not fail the call.
func (s *Avatar) Upload(ctx context.Context, userID, imageURI string) (string, error) {
	if userID == "" || imageURI == "" {
		return "", fmt.Errorf("user id and image uri are required: %w", model.ErrInvalidParameters)
	}
	if !validImageURI(imageURI) {
		return "", fmt.Errorf("unsupported uri shape %q: %w", imageURI, model.ErrInvalidURI)
	}

	data, contentType, err := s.fetcher.Fetch(ctx, imageURI)
	if err != nil {
		return "", fmt.Errorf("%w: %w", model.ErrConversion, err)
	}

	ext := extensionFromURI(imageURI)
	// Some URI schemes report no useful content type; correct it from the
	// extension, defaulting to JPEG.
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = mimeByExtension[ext]
		if contentType == "" {
			contentType = "image/jpeg"
		}
	}

	if len(data) == 0 {
		return "", model.ErrEmptyImage
	}
	if len(data) > maxUploadSize {
		return "", fmt.Errorf("image is %d bytes, limit is %d: %w", len(data), maxUploadSize, model.ErrTooLarge)
	}

	key := fmt.Sprintf("%s/avatar_%d.%s", userID, s.now().UnixMilli(), ext)

	if err := s.storage.Upload(ctx, key, bytes.NewReader(data), int64(len(data)), contentType); err != nil {
		return "", classifyStorageError(err)
	}

	url := s.storage.PublicURL(key)

	if err := s.profiles.UpdateAvatarURL(ctx, userID, url); err != nil {
		s.logger.Warn("failed to mirror avatar url onto profile",
			"user_id", userID, "url", url, "error", err)
	}

	return url, nil
}

// Delete removes the object referenced by avatarURL from the user's storage
// prefix and best-effort clears the profile mirror field.
func (s *Avatar) Delete(ctx context.Context, userID, avatarURL string) error {
	if userID == "" || avatarURL == "" {
		return fmt.Errorf("user id and avatar url are required: %w", model.ErrInvalidParameters)
	}

	filename := path.Base(strings.TrimRight(avatarURL, "/"))
	if filename == "" || filename == "." || filename == "/" {
		return fmt.Errorf("cannot extract filename from %q: %w", avatarURL, model.ErrInvalidParameters)
	}

	key := userID + "/" + filename
	if err := s.storage.Delete(ctx, key); err != nil {
		return fmt.Errorf("failed to delete avatar: %w", err)
	}

	if err := s.profiles.ClearAvatarURL(ctx, userID); err != nil {
		s.logger.Warn("failed to clear avatar url on profile", "user_id", userID, "error", err)
	}

	return nil
}

// AvatarURL constructs the public URL for a user's avatar without any
// network call. filename defaults to avatar.jpg.
func (s *Avatar) AvatarURL(userID, filename string) string {
	if filename == "" {
		filename = defaultAvatarFilename
	}
	return s.storage.PublicURL(userID + "/" + filename)
}

// UserAvatars lists the public URLs of all avatars stored for userID,
// newest first.
func (s *Avatar) UserAvatars(ctx context.Context, userID string) ([]string, error) {
	objects, err := s.storage.List(ctx, userID+"/", 0)
	if err != nil {
		return nil, fmt.Errorf("failed to list avatars: %w", err)
	}

	urls := make([]string, 0, len(objects))
	for _, obj := range objects {
		urls = append(urls, s.storage.PublicURL(obj.Key))
	}
	return urls, nil
}

// CleanupOld keeps the three most recently created avatars for userID and
// deletes the remainder in one batched call. Returns the number deleted.
func (s *Avatar) CleanupOld(ctx context.Context, userID string) (int, error) {
	objects, err := s.storage.List(ctx, userID+"/", 0)
	if err != nil {
		return 0, fmt.Errorf("failed to list avatars: %w", err)
	}
	if len(objects) <= keepRecentAvatars {
		return 0, nil
	}

	// List is sorted newest first.
	stale := make([]string, 0, len(objects)-keepRecentAvatars)
	for _, obj := range objects[keepRecentAvatars:] {
		stale = append(stale, obj.Key)
	}

	if err := s.storage.DeleteMany(ctx, stale); err != nil {
		return 0, fmt.Errorf("failed to delete old avatars: %w", err)
	}
	return len(stale), nil
}

// StorageStatus is the result of a storage connectivity check.
type StorageStatus struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}

// CheckStorage runs three sequential diagnostics against object storage:
// buckets are listable, the configured bucket exists, and the bucket is
// enumerable. Each check short-circuits with a distinct message.
func (s *Avatar) CheckStorage(ctx context.Context) StorageStatus {
	buckets, err := s.storage.Buckets(ctx)
	if err != nil {
		return StorageStatus{Message: fmt.Sprintf("cannot list storage buckets: %v", err)}
	}

	bucket := s.storage.Bucket()
	found := false
	for _, name := range buckets {
		if name == bucket {
			found = true
			break
		}
	}
	if !found {
		return StorageStatus{Message: fmt.Sprintf("bucket %q does not exist", bucket)}
	}

	if _, err := s.storage.List(ctx, "", 1); err != nil {
		return StorageStatus{Message: fmt.Sprintf("bucket %q is not accessible: %v", bucket, err)}
	}

	return StorageStatus{OK: true, Message: "storage connection ok"}
}

func validImageURI(uri string) bool {
	for _, prefix := range allowedURIPrefixes {
		if strings.HasPrefix(uri, prefix) {
			return true
		}
	}
	return false
}

// extensionFromURI sniffs the trailing extension, ignoring any query
// string. Unknown or missing extensions default to jpg.
func extensionFromURI(uri string) string {
	trimmed := uri
	if i := strings.IndexByte(trimmed, '?'); i >= 0 {
		trimmed = trimmed[:i]
	}
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(trimmed), "."))
	if _, ok := mimeByExtension[ext]; !ok {
		return "jpg"
	}
	return ext
}
