package mail

import (
	"context"
	"errors"
	"fmt"

	"github.com/resend/resend-go/v2"
)

// ErrMissingAPIKey is returned when no Resend credential is
// configured. Callers degrade to in-app-only notifications instead of
// treating it as fatal.
var ErrMissingAPIKey = errors.New("resend api key is not configured")

type ResendAdapter struct {
	client *resend.Client
	from   string
}

// NewResendAdapter builds the transport. An empty apiKey is allowed;
// Send then fails fast without any network I/O.
func NewResendAdapter(apiKey, from string) *ResendAdapter {
	a := &ResendAdapter{from: from}
	if apiKey != "" {
		a.client = resend.NewClient(apiKey)
	}

	return a
}

func (a *ResendAdapter) Send(ctx context.Context, to, subject, html string) (string, error) {
	if a.client == nil {
		return "", ErrMissingAPIKey
	}

	sent, err := a.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    a.from,
		To:      []string{to},
		Subject: subject,
		Html:    html,
	})
	if err != nil {
		return "", fmt.Errorf("send email: %w", err)
	}

	return sent.Id, nil
}
