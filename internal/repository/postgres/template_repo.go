package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"certforge/internal/domain"
)

const templateColumns = `id, owner_id, image_url, position_x, position_y, width, height, font_family, font_size, font_color, created_at, updated_at`

type templateRepository struct {
	DB *sql.DB
}

func NewTemplateRepository(db *sql.DB) domain.TemplateRepository {
	return &templateRepository{DB: db}
}

func scanTemplate(row interface{ Scan(...any) error }) (*domain.CertificateTemplate, error) {
	t := &domain.CertificateTemplate{}
	err := row.Scan(
		&t.ID, &t.OwnerID, &t.ImageURL,
		&t.PositionX, &t.PositionY, &t.Width, &t.Height,
		&t.FontFamily, &t.FontSize, &t.FontColor,
		&t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (r *templateRepository) Create(ctx context.Context, t *domain.CertificateTemplate) error {
	query := `
		INSERT INTO certificate_templates
			(owner_id, image_url, position_x, position_y, width, height, font_family, font_size, font_color, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id
	`
	return r.DB.QueryRowContext(ctx, query,
		t.OwnerID, t.ImageURL, t.PositionX, t.PositionY, t.Width, t.Height,
		t.FontFamily, t.FontSize, t.FontColor, t.CreatedAt, t.UpdatedAt,
	).Scan(&t.ID)
}

func (r *templateRepository) GetByID(ctx context.Context, id string) (*domain.CertificateTemplate, error) {
	query := fmt.Sprintf(`SELECT %s FROM certificate_templates WHERE id = $1`, templateColumns)
	t, err := scanTemplate(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return t, nil
}

func (r *templateRepository) ListByOwnerID(ctx context.Context, ownerID string) ([]*domain.CertificateTemplate, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM certificate_templates
		WHERE owner_id = $1
		ORDER BY created_at DESC
	`, templateColumns)
	rows, err := r.DB.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	templates := make([]*domain.CertificateTemplate, 0)
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, err
		}
		templates = append(templates, t)
	}
	return templates, rows.Err()
}

func (r *templateRepository) Update(ctx context.Context, id string, patch domain.TemplatePatch) (*domain.CertificateTemplate, error) {
	setClauses := []string{"updated_at = NOW()"}
	args := []interface{}{}
	n := 1
	add := func(column string, value interface{}) {
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, n))
		args = append(args, value)
		n++
	}
	if patch.ImageURL != nil {
		add("image_url", *patch.ImageURL)
	}
	if patch.PositionX != nil {
		add("position_x", *patch.PositionX)
	}
	if patch.PositionY != nil {
		add("position_y", *patch.PositionY)
	}
	if patch.Width != nil {
		add("width", *patch.Width)
	}
	if patch.Height != nil {
		add("height", *patch.Height)
	}
	if patch.FontFamily != nil {
		add("font_family", *patch.FontFamily)
	}
	if patch.FontSize != nil {
		add("font_size", *patch.FontSize)
	}
	if patch.FontColor != nil {
		add("font_color", *patch.FontColor)
	}
	if n == 1 {
		// No fields to update; just fetch current row
		return r.GetByID(ctx, id)
	}
	args = append(args, id)
	query := fmt.Sprintf(`
		UPDATE certificate_templates SET %s
		WHERE id = $%d
		RETURNING %s
	`, strings.Join(setClauses, ", "), n, templateColumns)
	t, err := scanTemplate(r.DB.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return t, nil
}
