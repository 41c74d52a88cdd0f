package ports

import "context"

// ResetMail is a single reset-link delivery job.
type ResetMail struct {
	Recipient string
	Link      string
}

// Notifier accepts reset-link mail jobs for asynchronous, fire-and-forget
// delivery. Enqueue never blocks the caller on delivery.
type Notifier interface {
	Enqueue(mail ResetMail)
}

// MailSender performs the actual outbound delivery of one reset link.
type MailSender interface {
	Send(ctx context.Context, recipient, link string) error
}

// ResetThrottle bounds how often reset mail is sent to one address. A
// throttled request still succeeds; only the mail is skipped.
type ResetThrottle interface {
	IsThrottled(ctx context.Context, email string) (bool, error)
	Mark(ctx context.Context, email string) error
}
