package services

import (
	"context"
	"fmt"
	"log/slog"

	"certforge/internal/domain"
)

type emailService struct {
	mailer   domain.Mailer
	renderer domain.EmailTemplateRenderer
	logger   *slog.Logger
}

// NewEmailService returns an EmailService that uses the given Mailer and template renderer.
func NewEmailService(mailer domain.Mailer, renderer domain.EmailTemplateRenderer, logger *slog.Logger) domain.EmailService {
	return &emailService{mailer: mailer, renderer: renderer, logger: logger}
}

// SendCertificateEmail sends the certificate delivery email using the
// "certificate" template and the given data.
func (s *emailService) SendCertificateEmail(ctx context.Context, to string, data *domain.CertificateEmailData) error {
	if data == nil {
		return fmt.Errorf("certificate email data is nil")
	}
	subject, htmlBody, textBody, err := s.renderer.Render("certificate", data)
	if err != nil {
		return fmt.Errorf("failed to render certificate template: %w", err)
	}
	if err := s.mailer.Send(to, subject, htmlBody, textBody); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrSendFailed, err)
	}
	s.logger.InfoContext(ctx, "certificate email sent", "to", to, "event", data.EventTitle)
	return nil
}
