package domain

import (
	"context"
	"errors"
)

// ErrSendFailed is returned when the email provider rejects or fails a send.
var ErrSendFailed = errors.New("email send failed")

// Mailer defines the contract for sending emails (infrastructure port).
type Mailer interface {
	Send(to, subject, html, text string) error
}

// EmailTemplateRenderer renders email content from a named template with the given data.
type EmailTemplateRenderer interface {
	Render(templateName string, data any) (subject, htmlBody, textBody string, err error)
}

// CertificateEmailData holds data for the certificate delivery email.
type CertificateEmailData struct {
	Name           string
	EventTitle     string
	Subject        string
	Message        string // transcript with placeholders already substituted
	CertificateURL string
}

// EmailService defines the contract for sending domain-level emails.
type EmailService interface {
	SendCertificateEmail(ctx context.Context, to string, data *CertificateEmailData) error
}
