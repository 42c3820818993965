package domain

import (
	"context"
	"time"
)

// Mailer sends a single email. Implementations: SES, noop.
type Mailer interface {
	Send(to, subject, html, text string) error
}

// EmailTemplateRenderer renders a named email template to subject, HTML
// body, and text body.
type EmailTemplateRenderer interface {
	Render(templateName string, data interface{}) (subject, htmlBody, textBody string, err error)
}

// RegistrationConfirmationEmailData feeds the sign-up confirmation template.
type RegistrationConfirmationEmailData struct {
	Email         string
	FirstName     string
	EventTitle    string
	EventLocation string
	EventStart    time.Time
}

// EmailService defines the outbound email operations of the application.
type EmailService interface {
	SendRegistrationConfirmation(ctx context.Context, data *RegistrationConfirmationEmailData) error
}
