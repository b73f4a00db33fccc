package users

import (
	"context"

	"github.com/nytevibe/nytevibe/internal/logging"
)

// Mail is an outgoing message carrying one or more action links.
type Mail struct {
	To      string
	Subject string
	Links   []string
}

type Mailer interface {
	Send(ctx context.Context, m Mail) error
}

// LogMailer writes mail to the log instead of delivering it.
type LogMailer struct {
	logger logging.Logger
}

func NewLogMailer(l logging.Logger) *LogMailer {
	return &LogMailer{logger: l.With("module", "mailer")}
}

func (m *LogMailer) Send(ctx context.Context, mail Mail) error {
	m.logger.Info(ctx, "mail", "to", mail.To, "subject", mail.Subject, "links", mail.Links)
	return nil
}
