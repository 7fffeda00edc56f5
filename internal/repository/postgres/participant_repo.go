package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"certforge/internal/domain"
)

const participantColumns = `id, event_id, name, email, emailed, certificate_url, verification_code, certificate_hash, is_verified, verified_at, created_at, updated_at`

type participantRepository struct {
	DB *sql.DB
}

func NewParticipantRepository(db *sql.DB) domain.ParticipantRepository {
	return &participantRepository{DB: db}
}

func scanParticipant(row interface{ Scan(...any) error }) (*domain.Participant, error) {
	p := &domain.Participant{}
	var certURL, code, hash sql.NullString
	var verifiedAt sql.NullTime
	err := row.Scan(
		&p.ID, &p.EventID, &p.Name, &p.Email, &p.Emailed,
		&certURL, &code, &hash, &p.IsVerified, &verifiedAt,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if certURL.Valid {
		p.CertificateURL = &certURL.String
	}
	if code.Valid {
		p.VerificationCode = &code.String
	}
	if hash.Valid {
		p.CertificateHash = &hash.String
	}
	if verifiedAt.Valid {
		p.VerifiedAt = &verifiedAt.Time
	}
	return p, nil
}

func (r *participantRepository) Create(ctx context.Context, p *domain.Participant) error {
	query := `
		INSERT INTO participants (event_id, name, email, emailed, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	err := r.DB.QueryRowContext(ctx, query, p.EventID, p.Name, p.Email, p.Emailed, p.CreatedAt, p.UpdatedAt).Scan(&p.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return domain.ErrDuplicateParticipant
		}
		return err
	}
	return nil
}

func (r *participantRepository) GetByID(ctx context.Context, id string) (*domain.Participant, error) {
	query := fmt.Sprintf(`SELECT %s FROM participants WHERE id = $1`, participantColumns)
	p, err := scanParticipant(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *participantRepository) GetByVerificationCode(ctx context.Context, code string) (*domain.Participant, error) {
	query := fmt.Sprintf(`SELECT %s FROM participants WHERE verification_code = $1`, participantColumns)
	p, err := scanParticipant(r.DB.QueryRowContext(ctx, query, code))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *participantRepository) ListByEventID(ctx context.Context, eventID string, params domain.PaginationParams) ([]*domain.Participant, int, error) {
	var total int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM participants WHERE event_id = $1`, eventID).Scan(&total); err != nil {
		return nil, 0, err
	}
	query := fmt.Sprintf(`
		SELECT %s FROM participants
		WHERE event_id = $1
		ORDER BY created_at ASC, id ASC
		LIMIT $2 OFFSET $3
	`, participantColumns)
	rows, err := r.DB.QueryContext(ctx, query, eventID, params.PageSize, params.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	participants := make([]*domain.Participant, 0)
	for rows.Next() {
		p, err := scanParticipant(rows)
		if err != nil {
			return nil, 0, err
		}
		participants = append(participants, p)
	}
	return participants, total, rows.Err()
}

func (r *participantRepository) ListUnsentByEventID(ctx context.Context, eventID string) ([]*domain.Participant, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM participants
		WHERE event_id = $1 AND emailed = FALSE
		ORDER BY created_at ASC, id ASC
	`, participantColumns)
	rows, err := r.DB.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	participants := make([]*domain.Participant, 0)
	for rows.Next() {
		p, err := scanParticipant(rows)
		if err != nil {
			return nil, err
		}
		participants = append(participants, p)
	}
	return participants, rows.Err()
}

// UpdateCertificate persists certificate metadata ahead of a send attempt.
// The verification code is written with COALESCE so an existing code is
// never overwritten.
func (r *participantRepository) UpdateCertificate(ctx context.Context, id string, rec domain.CertificateRecord) error {
	query := `
		UPDATE participants
		SET certificate_url = $1,
		    verification_code = COALESCE(verification_code, $2),
		    certificate_hash = $3,
		    is_verified = TRUE,
		    verified_at = $4,
		    updated_at = NOW()
		WHERE id = $5
	`
	result, err := r.DB.ExecContext(ctx, query, rec.CertificateURL, rec.VerificationCode, rec.CertificateHash, rec.VerifiedAt, id)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *participantRepository) MarkEmailed(ctx context.Context, id string) error {
	query := `UPDATE participants SET emailed = TRUE, updated_at = NOW() WHERE id = $1`
	result, err := r.DB.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *participantRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM participants WHERE id = $1`
	result, err := r.DB.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}
