package email

import (
	"context"
	"fmt"
	"net/smtp"

	"go.uber.org/zap"

	"github.com/hasanRafi2002/asgn-12-server/internal/config"
	"github.com/hasanRafi2002/asgn-12-server/internal/utils"
)

// Message is a fully rendered email. Raw holds the RFC 822 headers and body.
type Message struct {
	To         []string
	Subject    string
	TemplateID string
	Raw        []byte
}

// Sender delivers rendered emails.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// SMTPSender implements Sender using net/smtp.
type SMTPSender struct {
	from string
	auth smtp.Auth
	addr string
}

// NewSMTPSender creates an SMTP sender, or a LoggingSender when no SMTP host is configured.
func NewSMTPSender(cfg *config.Config) Sender {
	if cfg.SmtpHost == "" {
		utils.Logger().Warn("SMTP host not configured, using logging email sender")
		return &LoggingSender{from: cfg.SmtpFromAddress}
	}

	var auth smtp.Auth
	if cfg.SmtpUsername != "" {
		auth = smtp.PlainAuth("", cfg.SmtpUsername, cfg.SmtpPassword, cfg.SmtpHost)
	}
	return &SMTPSender{
		from: cfg.SmtpFromAddress,
		auth: auth,
		addr: fmt.Sprintf("%s:%d", cfg.SmtpHost, cfg.SmtpPort),
	}
}

func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := smtp.SendMail(s.addr, s.auth, s.from, msg.To, msg.Raw); err != nil {
		return fmt.Errorf("smtp error: %w", err)
	}
	utils.Logger().Info("email sent via SMTP", zap.Strings("to", msg.To), zap.String("template", msg.TemplateID))
	return nil
}

// LoggingSender writes emails to the application log instead of sending them.
type LoggingSender struct {
	from string
}

func (s *LoggingSender) Send(_ context.Context, msg Message) error {
	utils.Logger().Info("email (logged only)",
		zap.Strings("to", msg.To),
		zap.String("from", s.from),
		zap.String("subject", msg.Subject),
		zap.String("template", msg.TemplateID),
		zap.ByteString("raw", msg.Raw),
	)
	return nil
}
