package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"regexp"
	"strings"
	"time"

	"certforge/internal/adapters/imaging"
	"certforge/internal/domain"
)

const (
	verificationCodePrefix = "VF-"
	verificationCodeLength = 6
)

var (
	verificationCodeAlphabet = []rune("ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789")
	verificationCodeRegexp   = regexp.MustCompile(`^VF-[A-Z0-9]{6}$`)
)

// generateVerificationCode returns "VF-" followed by 6 characters drawn
// uniformly from [A-Z0-9]. Uniqueness is left to the database constraint.
func generateVerificationCode() (string, error) {
	b := make([]rune, verificationCodeLength)
	max := big.NewInt(int64(len(verificationCodeAlphabet)))
	for i := 0; i < verificationCodeLength; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b[i] = verificationCodeAlphabet[n.Int64()]
	}
	return verificationCodePrefix + string(b), nil
}

// CertificateHash returns the SHA-256 hex digest over the hyphen-joined
// tuple (name, eventTitle, issueDateISO, code). It is recomputed at send
// time with the current timestamp, so it is a snapshot-integrity token:
// recomputing it later requires the issue timestamp stored in verified_at.
func CertificateHash(name, eventTitle, issueDateISO, code string) string {
	sum := sha256.Sum256([]byte(strings.Join([]string{name, eventTitle, issueDateISO, code}, "-")))
	return hex.EncodeToString(sum[:])
}

// substitutePlaceholders fills {name} and {event} in caller-supplied
// subject/transcript text.
func substitutePlaceholders(s, name, eventTitle string) string {
	s = strings.ReplaceAll(s, "{name}", name)
	return strings.ReplaceAll(s, "{event}", eventTitle)
}

type certificateService struct {
	eventRepo       domain.EventRepository
	templateRepo    domain.TemplateRepository
	participantRepo domain.ParticipantRepository
	emailService    domain.EmailService
	contextTimeout  time.Duration
}

func NewCertificateService(eventRepo domain.EventRepository,
	templateRepo domain.TemplateRepository,
	participantRepo domain.ParticipantRepository,
	emailService domain.EmailService,
	timeout time.Duration,
) domain.CertificateService {
	return &certificateService{
		eventRepo:       eventRepo,
		templateRepo:    templateRepo,
		participantRepo: participantRepo,
		emailService:    emailService,
		contextTimeout:  timeout,
	}
}

// SendCertificate runs the full pipeline for one participant:
//
//  1. Load event, template, and participant; enforce ownership and linkage.
//  2. Assign a verification code if the participant has none.
//  3. Build the transformed certificate image URL.
//  4. Persist certificate metadata (url, code, hash, issue timestamp).
//  5. Render and send the delivery email.
//  6. On confirmed provider success only, mark the participant emailed.
//
// A failure at step 5 leaves emailed=false; the persisted metadata from
// step 4 is reused on the next attempt (the code is immutable once set).
func (s *certificateService) SendCertificate(ctx context.Context, participantID, eventID, callerID, subject, transcript string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("get event: %w", err)
	}
	if event.OwnerID != callerID {
		return domain.ErrForbidden
	}
	if event.TemplateID == nil {
		return fmt.Errorf("%w: event has no certificate template", domain.ErrInvalidInput)
	}
	template, err := s.templateRepo.GetByID(ctx, *event.TemplateID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("get template: %w", err)
	}

	participant, err := s.participantRepo.GetByID(ctx, participantID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("get participant: %w", err)
	}
	if participant.EventID != eventID {
		return domain.ErrNotFound
	}

	code := ""
	if participant.VerificationCode != nil {
		code = *participant.VerificationCode
	} else {
		code, err = generateVerificationCode()
		if err != nil {
			return fmt.Errorf("generate verification code: %w", err)
		}
	}

	certURL := imaging.CertificateURL(template.ImageURL, participant.Name, code, template)
	issuedAt := time.Now().UTC()
	hash := CertificateHash(participant.Name, event.Title, issuedAt.Format(time.RFC3339), code)

	// Certificate metadata is written before the send attempt; the emailed
	// flag is a separate write gated on provider success.
	if err := s.participantRepo.UpdateCertificate(ctx, participantID, domain.CertificateRecord{
		CertificateURL:   certURL,
		VerificationCode: code,
		CertificateHash:  hash,
		VerifiedAt:       issuedAt,
	}); err != nil {
		return fmt.Errorf("persist certificate metadata: %w", err)
	}

	data := &domain.CertificateEmailData{
		Name:           participant.Name,
		EventTitle:     event.Title,
		Subject:        substitutePlaceholders(subject, participant.Name, event.Title),
		Message:        substitutePlaceholders(transcript, participant.Name, event.Title),
		CertificateURL: certURL,
	}
	if err := s.emailService.SendCertificateEmail(ctx, participant.Email, data); err != nil {
		return err
	}

	if err := s.participantRepo.MarkEmailed(ctx, participantID); err != nil {
		return fmt.Errorf("mark emailed: %w", err)
	}
	return nil
}

// VerifyCertificate looks up a participant by verification code and returns
// the stored certificate metadata. The stored values are the source of
// truth; the hash is returned as-is, not recomputed.
func (s *certificateService) VerifyCertificate(ctx context.Context, code string) (*domain.VerifiedCertificate, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	code = strings.ToUpper(strings.TrimSpace(code))
	if !verificationCodeRegexp.MatchString(code) {
		return nil, fmt.Errorf("%w: malformed verification code", domain.ErrInvalidInput)
	}

	participant, err := s.participantRepo.GetByVerificationCode(ctx, code)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("lookup verification code: %w", err)
	}

	event, err := s.eventRepo.GetByID(ctx, participant.EventID)
	if err != nil {
		return nil, fmt.Errorf("get event: %w", err)
	}

	out := &domain.VerifiedCertificate{
		Verified:        participant.IsVerified,
		ParticipantName: participant.Name,
		EventTitle:      event.Title,
	}
	if participant.CertificateURL != nil {
		out.CertificateURL = *participant.CertificateURL
	}
	if participant.CertificateHash != nil {
		out.CertificateHash = *participant.CertificateHash
	}
	if participant.VerifiedAt != nil {
		out.IssuedAt = *participant.VerifiedAt
	}
	return out, nil
}
