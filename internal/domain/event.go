package domain

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested entity does not exist.
var ErrNotFound = errors.New("not found")

// ErrForbidden is returned when the caller does not own the entity.
var ErrForbidden = errors.New("forbidden")

// ErrInvalidInput is returned when input fails validation.
var ErrInvalidInput = errors.New("invalid input")

// Event represents a certificate-issuing event owned by a user.
// swagger:model Event
type Event struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	OwnerID    string    `json:"owner_id"`
	TemplateID *string   `json:"template_id"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// NewEvent returns a new Event with the given fields. ID is typically set by the repository on create.
func NewEvent(title, ownerID string, createdAt, updatedAt time.Time) *Event {
	return &Event{
		Title:     title,
		OwnerID:   ownerID,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}
}

// EventRepository defines the interface for event storage
type EventRepository interface {
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id string) (*Event, error)
	ListByOwnerID(ctx context.Context, ownerID string) ([]*Event, error)
	UpdateTitle(ctx context.Context, id, title string) (*Event, error)
	SetTemplateID(ctx context.Context, id, templateID string) error
	Delete(ctx context.Context, id string) error
}

// EventService defines event and participant management operations.
// Every operation that takes a callerID enforces event ownership.
type EventService interface {
	CreateEvent(ctx context.Context, event *Event) error
	GetEventByID(ctx context.Context, eventID, callerID string) (*Event, *CertificateTemplate, []*Participant, error)
	ListEventsByOwner(ctx context.Context, ownerID string) ([]*Event, error)
	UpdateEvent(ctx context.Context, eventID, callerID, title string) (*Event, error)
	DeleteEvent(ctx context.Context, eventID, callerID string) error
	UpdateEventTemplate(ctx context.Context, eventID, callerID string, patch TemplatePatch) (*CertificateTemplate, error)
	AddParticipants(ctx context.Context, eventID, callerID string, entries []ParticipantEntry) ([]*Participant, error)
	ListParticipants(ctx context.Context, eventID, callerID string, params PaginationParams) ([]*Participant, int, error)
	DeleteParticipant(ctx context.Context, eventID, participantID, callerID string) error
}
