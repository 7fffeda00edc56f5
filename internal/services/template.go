package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"certforge/internal/domain"
)

type templateService struct {
	templateRepo   domain.TemplateRepository
	contextTimeout time.Duration
}

func NewTemplateService(templateRepo domain.TemplateRepository, timeout time.Duration) domain.TemplateService {
	return &templateService{
		templateRepo:   templateRepo,
		contextTimeout: timeout,
	}
}

func (s *templateService) CreateTemplate(ctx context.Context, t *domain.CertificateTemplate) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if strings.TrimSpace(t.ImageURL) == "" {
		return fmt.Errorf("%w: image_url is required", domain.ErrInvalidInput)
	}
	if t.FontFamily == "" {
		t.FontFamily = domain.DefaultFontFamily
	}
	if t.FontSize == 0 {
		t.FontSize = domain.DefaultFontSize
	}
	if t.FontColor == "" {
		t.FontColor = domain.DefaultFontColor
	}
	now := time.Now()
	t.CreatedAt = now
	t.UpdatedAt = now
	return s.templateRepo.Create(ctx, t)
}

func (s *templateService) GetTemplateByID(ctx context.Context, templateID, callerID string) (*domain.CertificateTemplate, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	t, err := s.templateRepo.GetByID(ctx, templateID)
	if err != nil {
		return nil, err
	}
	if t.OwnerID != callerID {
		return nil, domain.ErrForbidden
	}
	return t, nil
}

func (s *templateService) ListTemplatesByOwner(ctx context.Context, ownerID string) ([]*domain.CertificateTemplate, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	return s.templateRepo.ListByOwnerID(ctx, ownerID)
}
