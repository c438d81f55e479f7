package port

import "context"

type Mailer interface {
	// Send delivers a single HTML email and returns the provider
	// message id. No retry, no queuing; callers treat failure as
	// best-effort.
	Send(ctx context.Context, to, subject, html string) (string, error)
}
