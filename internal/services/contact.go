package services

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"clubsite/internal/domain"
	"clubsite/internal/metrics"
)

const (
	maxContactNameLen    = 200
	maxContactMessageLen = 5000
)

// ContactEmailData is the template data for the "contact" email.
type ContactEmailData struct {
	Name        string
	Email       string
	Message     string
	SubmittedAt time.Time
}

type contactService struct {
	mailer         domain.Mailer
	renderer       domain.EmailTemplateRenderer
	recipient      string
	contextTimeout time.Duration
}

// NewContactService returns a ContactService that mails submissions to recipient.
func NewContactService(mailer domain.Mailer, renderer domain.EmailTemplateRenderer, recipient string, timeout time.Duration) domain.ContactService {
	return &contactService{
		mailer:         mailer,
		renderer:       renderer,
		recipient:      recipient,
		contextTimeout: timeout,
	}
}

func (s *contactService) Submit(ctx context.Context, msg *domain.ContactMessage) error {
	if msg == nil {
		return domain.NewValidationError("", "contact message is required")
	}
	data := ContactEmailData{
		Name:        strings.TrimSpace(msg.Name),
		Email:       normalizeEmail(msg.Email),
		Message:     strings.TrimSpace(msg.Message),
		SubmittedAt: time.Now().UTC(),
	}
	if err := validateContact(data); err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	subject, htmlBody, textBody, err := s.renderer.Render("contact", data)
	if err != nil {
		return fmt.Errorf("render contact template: %w", err)
	}
	if err := s.mailer.Send(ctx, s.recipient, subject, htmlBody, textBody); err != nil {
		metrics.ContactSubmissionsTotal.WithLabelValues("failed").Inc()
		return fmt.Errorf("send contact email: %w: %w", domain.ErrUpstream, err)
	}
	metrics.ContactSubmissionsTotal.WithLabelValues("sent").Inc()
	return nil
}

func validateContact(d ContactEmailData) error {
	switch {
	case d.Name == "":
		return domain.NewValidationError("name", "name is required")
	case utf8.RuneCountInString(d.Name) > maxContactNameLen:
		return domain.NewValidationError("name", fmt.Sprintf("name must be at most %d characters", maxContactNameLen))
	case !emailRegexp.MatchString(d.Email):
		return domain.NewValidationError("email", "invalid email format")
	case d.Message == "":
		return domain.NewValidationError("message", "message is required")
	case utf8.RuneCountInString(d.Message) > maxContactMessageLen:
		return domain.NewValidationError("message", fmt.Sprintf("message must be at most %d characters", maxContactMessageLen))
	}
	return nil
}
