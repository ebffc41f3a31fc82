// Package mailer sends transactional email through Resend. Sending is
// best-effort: callers log failures and never surface them to API clients.
package mailer

import (
	"context"
	"fmt"

	"github.com/resend/resend-go/v2"
)

// Mailer wraps the Resend client for the one template this service sends.
type Mailer struct {
	client *resend.Client
	from   string
}

// New creates a Mailer. Returns nil when no API key is configured;
// callers treat a nil Mailer as "email disabled".
func New(apiKey, from string) *Mailer {
	if apiKey == "" {
		return nil
	}
	return &Mailer{
		client: resend.NewClient(apiKey),
		from:   from,
	}
}

// SendWelcome emails a newly approved member.
func (m *Mailer) SendWelcome(ctx context.Context, email, fullName string) error {
	name := fullName
	if name == "" {
		name = "there"
	}

	_, err := m.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    m.from,
		To:      []string{email},
		Subject: "Welcome to Matchpoint",
		Text: fmt.Sprintf(
			"Hi %s,\n\nYour membership has been approved. You can now join matches, book courts, and register a ladder team.\n\nSee you on court,\nThe Matchpoint team\n",
			name),
	})
	if err != nil {
		return fmt.Errorf("send welcome email: %w", err)
	}
	return nil
}
