package domain

import (
	"context"
	"time"
)

// Defaults applied when a template is created without explicit settings.
const (
	DefaultFontFamily = "Arial"
	DefaultFontSize   = 48
	DefaultFontColor  = "#000000"
	DefaultPositionX  = 50
	DefaultPositionY  = 50
	DefaultBoxWidth   = 80
	DefaultBoxHeight  = 15
)

// CertificateTemplate holds the background image and text-overlay settings
// for certificates. Position and box dimensions are percentages of the
// image dimensions; x/y locate the center of the text box.
// swagger:model CertificateTemplate
type CertificateTemplate struct {
	ID         string    `json:"id"`
	OwnerID    string    `json:"owner_id"`
	ImageURL   string    `json:"image_url"`
	PositionX  float64   `json:"position_x"`
	PositionY  float64   `json:"position_y"`
	Width      float64   `json:"width"`
	Height     float64   `json:"height"`
	FontFamily string    `json:"font_family"`
	FontSize   int       `json:"font_size"`
	FontColor  string    `json:"font_color"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// NewCertificateTemplate returns a template with default overlay settings.
func NewCertificateTemplate(ownerID, imageURL string, createdAt, updatedAt time.Time) *CertificateTemplate {
	return &CertificateTemplate{
		OwnerID:    ownerID,
		ImageURL:   imageURL,
		PositionX:  DefaultPositionX,
		PositionY:  DefaultPositionY,
		Width:      DefaultBoxWidth,
		Height:     DefaultBoxHeight,
		FontFamily: DefaultFontFamily,
		FontSize:   DefaultFontSize,
		FontColor:  DefaultFontColor,
		CreatedAt:  createdAt,
		UpdatedAt:  updatedAt,
	}
}

// TemplatePatch carries a partial template update. Nil fields are unchanged.
type TemplatePatch struct {
	ImageURL   *string
	PositionX  *float64
	PositionY  *float64
	Width      *float64
	Height     *float64
	FontFamily *string
	FontSize   *int
	FontColor  *string
}

// TemplateRepository defines the interface for certificate template storage.
type TemplateRepository interface {
	Create(ctx context.Context, t *CertificateTemplate) error
	GetByID(ctx context.Context, id string) (*CertificateTemplate, error)
	ListByOwnerID(ctx context.Context, ownerID string) ([]*CertificateTemplate, error)
	Update(ctx context.Context, id string, patch TemplatePatch) (*CertificateTemplate, error)
}

// TemplateService defines template management operations.
type TemplateService interface {
	CreateTemplate(ctx context.Context, t *CertificateTemplate) error
	GetTemplateByID(ctx context.Context, templateID, callerID string) (*CertificateTemplate, error)
	ListTemplatesByOwner(ctx context.Context, ownerID string) ([]*CertificateTemplate, error)
}
