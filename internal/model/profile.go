package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ProfileStore defines persistence operations for profiles.
// Avatar URL updates are a best-effort mirror of object storage state;
// callers may treat their failure as non-fatal.
type ProfileStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (Profile, error)
	UpdateAvatarURL(ctx context.Context, userID string, url string) error
	ClearAvatarURL(ctx context.Context, userID string) error
}

// Profile represents a club member profile.
type Profile struct {
	ID        uuid.UUID
	FullName  string
	Email     string
	AvatarURL string
	CreatedAt time.Time
	UpdatedAt time.Time
}
