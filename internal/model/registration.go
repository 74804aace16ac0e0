package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// RegistrationStore defines persistence operations for event registrations.
type RegistrationStore interface {
	ListByProfile(ctx context.Context, profileID uuid.UUID) ([]EventRegistration, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// RegistrationStatus enumerates approval states of a registration.
type RegistrationStatus string

const (
	// StatusPending is the default state of a new registration.
	StatusPending RegistrationStatus = "pending"
	// StatusAccepted marks an approved registration.
	StatusAccepted RegistrationStatus = "accepted"
	// StatusDeclined marks a rejected registration.
	StatusDeclined RegistrationStatus = "declined"
)

// EventType enumerates event kinds.
type EventType string

const (
	// EventTypeGame is a regular game.
	EventTypeGame EventType = "game"
	// EventTypeTournament is a tournament.
	EventTypeTournament EventType = "tournament"
	// EventTypePractice is a practice session.
	EventTypePractice EventType = "practice"
)

// Event represents a club event.
type Event struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	Location    string    `json:"location"`
	Type        EventType `json:"type"`
}

// EventRegistration links one profile to one event with an approval status.
// The canonical foreign key against profiles is profile_id.
type EventRegistration struct {
	ID        uuid.UUID          `json:"id"`
	EventID   uuid.UUID          `json:"event_id"`
	ProfileID uuid.UUID          `json:"profile_id"`
	Status    RegistrationStatus `json:"status"`
	CreatedAt time.Time          `json:"created_at"`
	Event     Event              `json:"event"`
}
