package domain

import (
	"context"
	"errors"
	"time"
)

// ErrDuplicateParticipant is returned when an email is already registered
// for the event.
var ErrDuplicateParticipant = errors.New("participant already exists for event")

// Participant represents a certificate recipient belonging to an event.
// Emailed is true only after a confirmed provider send. VerificationCode,
// once assigned, is immutable and globally unique.
// swagger:model Participant
type Participant struct {
	ID               string     `json:"id"`
	EventID          string     `json:"event_id"`
	Name             string     `json:"name"`
	Email            string     `json:"email"`
	Emailed          bool       `json:"emailed"`
	CertificateURL   *string    `json:"certificate_url"`
	VerificationCode *string    `json:"verification_code"`
	CertificateHash  *string    `json:"certificate_hash"`
	IsVerified       bool       `json:"is_verified"`
	VerifiedAt       *time.Time `json:"verified_at"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// ParticipantEntry is the input for adding a participant to an event.
type ParticipantEntry struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// CertificateRecord holds the certificate metadata persisted before a send
// attempt. The Emailed flag is written separately, only on provider success.
type CertificateRecord struct {
	CertificateURL   string
	VerificationCode string
	CertificateHash  string
	VerifiedAt       time.Time
}

// ParticipantRepository defines the interface for participant storage.
type ParticipantRepository interface {
	Create(ctx context.Context, p *Participant) error
	GetByID(ctx context.Context, id string) (*Participant, error)
	GetByVerificationCode(ctx context.Context, code string) (*Participant, error)
	ListByEventID(ctx context.Context, eventID string, params PaginationParams) ([]*Participant, int, error)
	// ListUnsentByEventID returns participants with emailed=false in
	// insertion order. Participants already emailed are never returned.
	ListUnsentByEventID(ctx context.Context, eventID string) ([]*Participant, error)
	UpdateCertificate(ctx context.Context, id string, rec CertificateRecord) error
	MarkEmailed(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}
