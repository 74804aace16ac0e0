package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/clubhub-app/clubhub-backend/internal/model"
)

var _ model.ProfileStore = (*ProfileRepository)(nil)

type ProfileRepository struct {
	db *Connection
}

func NewProfileRepository(db *Connection) *ProfileRepository {
	return &ProfileRepository{
		db: db,
	}
}

func (r *ProfileRepository) GetByID(ctx context.Context, id uuid.UUID) (model.Profile, error) {
	query := `
		SELECT p.id, p.full_name, p.email, p.avatar_url, p.created_at, p.updated_at
		FROM profiles p
		WHERE p.id = $1`

	var profile model.Profile
	var avatarURL *string
	err := r.db.QueryRow(ctx, query, id).Scan(
		&profile.ID, &profile.FullName, &profile.Email, &avatarURL,
		&profile.CreatedAt, &profile.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Profile{}, model.ErrNotFound
		}
		return model.Profile{}, err
	}
	if avatarURL != nil {
		profile.AvatarURL = *avatarURL
	}

	return profile, nil
}

// UpdateAvatarURL mirrors the latest uploaded avatar's public URL onto the
// profile row. userID is the opaque identity used in storage keys; it must
// parse as the profile's uuid.
func (r *ProfileRepository) UpdateAvatarURL(ctx context.Context, userID string, url string) error {
	id, err := uuid.Parse(userID)
	if err != nil {
		return model.ErrInvalidParameters
	}

	const query = `UPDATE profiles SET avatar_url = $2, updated_at = NOW() WHERE id = $1`
	cmd, err := r.db.Exec(ctx, query, id, url)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return model.ErrNotFound
	}
	return nil
}

// ClearAvatarURL resets the mirror field after an avatar delete.
func (r *ProfileRepository) ClearAvatarURL(ctx context.Context, userID string) error {
	id, err := uuid.Parse(userID)
	if err != nil {
		return model.ErrInvalidParameters
	}

	const query = `UPDATE profiles SET avatar_url = NULL, updated_at = NOW() WHERE id = $1`
	cmd, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return model.ErrNotFound
	}
	return nil
}
