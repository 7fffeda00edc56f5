package domain

import (
	"context"
	"time"
)

// VerifiedCertificate is the public view returned by the verification lookup.
// Values come straight from the stored participant row; the hash is returned
// as-is and not recomputed server-side.
// swagger:model VerifiedCertificate
type VerifiedCertificate struct {
	Verified        bool      `json:"verified"`
	ParticipantName string    `json:"participant_name"`
	EventTitle      string    `json:"event_title"`
	CertificateURL  string    `json:"certificate_url"`
	CertificateHash string    `json:"certificate_hash"`
	IssuedAt        time.Time `json:"issued_at"`
}

// CertificateService issues certificates: verification stamping, image URL
// generation, email delivery, and reconciliation of the emailed flag.
type CertificateService interface {
	// SendCertificate runs the full per-participant pipeline. Certificate
	// metadata is persisted before the provider call; Emailed is set only
	// after confirmed provider success.
	SendCertificate(ctx context.Context, participantID, eventID, callerID, subject, transcript string) error
	// VerifyCertificate looks up a certificate by its verification code.
	VerifyCertificate(ctx context.Context, code string) (*VerifiedCertificate, error)
}
