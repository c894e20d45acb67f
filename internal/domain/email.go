package domain

import "context"

// Mailer defines the contract for sending emails (infrastructure port).
type Mailer interface {
	Send(ctx context.Context, to, subject, html, text string) error
}

// EmailTemplateRenderer renders email content from a named template with the given data.
type EmailTemplateRenderer interface {
	Render(templateName string, data any) (subject, htmlBody, textBody string, err error)
}

// ContactMessage is a public contact form submission.
type ContactMessage struct {
	Name    string
	Email   string
	Message string
}

// ContactService forwards contact form submissions to the club.
type ContactService interface {
	Submit(ctx context.Context, msg *ContactMessage) error
}
