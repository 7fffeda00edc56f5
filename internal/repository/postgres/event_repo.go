package postgres

import (
	"context"
	"database/sql"
	"errors"

	"certforge/internal/domain"
)

type eventRepository struct {
	DB *sql.DB
}

func NewEventRepository(db *sql.DB) domain.EventRepository {
	return &eventRepository{
		DB: db,
	}
}

func (r *eventRepository) Create(ctx context.Context, e *domain.Event) error {
	query := `
		INSERT INTO events (title, owner_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	return r.DB.QueryRowContext(ctx, query, e.Title, e.OwnerID, e.CreatedAt, e.UpdatedAt).Scan(&e.ID)
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	query := `
		SELECT id, title, owner_id, template_id, created_at, updated_at
		FROM events
		WHERE id = $1
	`
	e := &domain.Event{}
	var templateNull sql.NullString
	err := r.DB.QueryRowContext(ctx, query, id).Scan(
		&e.ID, &e.Title, &e.OwnerID, &templateNull, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if templateNull.Valid {
		e.TemplateID = &templateNull.String
	}
	return e, nil
}

func (r *eventRepository) ListByOwnerID(ctx context.Context, ownerID string) ([]*domain.Event, error) {
	query := `
		SELECT id, title, owner_id, template_id, created_at, updated_at
		FROM events
		WHERE owner_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.DB.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	events := make([]*domain.Event, 0)
	for rows.Next() {
		e := &domain.Event{}
		var templateNull sql.NullString
		if err := rows.Scan(&e.ID, &e.Title, &e.OwnerID, &templateNull, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, err
		}
		if templateNull.Valid {
			e.TemplateID = &templateNull.String
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func (r *eventRepository) UpdateTitle(ctx context.Context, id, title string) (*domain.Event, error) {
	query := `
		UPDATE events SET title = $1, updated_at = NOW()
		WHERE id = $2
		RETURNING id, title, owner_id, template_id, created_at, updated_at
	`
	e := &domain.Event{}
	var templateNull sql.NullString
	err := r.DB.QueryRowContext(ctx, query, title, id).Scan(
		&e.ID, &e.Title, &e.OwnerID, &templateNull, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if templateNull.Valid {
		e.TemplateID = &templateNull.String
	}
	return e, nil
}

func (r *eventRepository) SetTemplateID(ctx context.Context, id, templateID string) error {
	query := `UPDATE events SET template_id = $1, updated_at = NOW() WHERE id = $2`
	result, err := r.DB.ExecContext(ctx, query, templateID, id)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *eventRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM events WHERE id = $1`
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
