package postgres

import (
	"context"

	"github.com/google/uuid"

	"github.com/clubhub-app/clubhub-backend/internal/model"
)

var _ model.RegistrationStore = (*RegistrationRepository)(nil)

type RegistrationRepository struct {
	db *Connection
}

func NewRegistrationRepository(db *Connection) *RegistrationRepository {
	return &RegistrationRepository{
		db: db,
	}
}

// ListByProfile returns the profile's registrations joined with their event
// in a single query. Status may be NULL in the table; a missing status is
// surfaced as empty and defaulted by the service transform.
func (r *RegistrationRepository) ListByProfile(ctx context.Context, profileID uuid.UUID) ([]model.EventRegistration, error) {
	query := `
		SELECT r.id, r.event_id, r.profile_id, r.status, r.created_at,
		       e.id, e.title, e.description, e.start_time, e.end_time, e.location, e.type
		FROM event_registrations r
		JOIN events e ON e.id = r.event_id
		WHERE r.profile_id = $1
		ORDER BY e.start_time ASC`

	rows, err := r.db.Query(ctx, query, profileID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var registrations []model.EventRegistration
	for rows.Next() {
		var reg model.EventRegistration
		var status *string
		err := rows.Scan(
			&reg.ID, &reg.EventID, &reg.ProfileID, &status, &reg.CreatedAt,
			&reg.Event.ID, &reg.Event.Title, &reg.Event.Description,
			&reg.Event.StartTime, &reg.Event.EndTime, &reg.Event.Location, &reg.Event.Type,
		)
		if err != nil {
			return nil, err
		}
		if status != nil {
			reg.Status = model.RegistrationStatus(*status)
		}
		registrations = append(registrations, reg)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return registrations, nil
}

// Delete removes a registration row by id.
func (r *RegistrationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	const query = `DELETE FROM event_registrations WHERE id = $1`
	cmd, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return model.ErrNotFound
	}
	return nil
}
