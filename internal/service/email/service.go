package email

import (
	"context"
	"fmt"

	"github.com/resend/resend-go/v3"

	"ops-journal/internal/config"
)

// Mailer is the external mail-sending collaborator. Delivery failures are
// reported to the caller (the outbox worker records them as terminal);
// they are never propagated to record-mutation paths.
type Mailer interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

type resendMailer struct {
	client *resend.Client
	from   string
}

func NewResendMailer(cfg *config.Config) Mailer {
	return &resendMailer{
		client: resend.NewClient(cfg.ResendAPIKey),
		from:   cfg.FromEmail,
	}
}

func (m *resendMailer) Send(ctx context.Context, to, subject, htmlBody string) error {
	params := &resend.SendEmailRequest{
		From:    fmt.Sprintf("Ops Journal <%s>", m.from),
		To:      []string{to},
		Subject: subject,
		Html:    htmlBody,
	}

	_, err := m.client.Emails.Send(params)
	return err
}
