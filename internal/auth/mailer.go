package auth

import (
	"context"
	"fmt"

	gomail "github.com/wneessen/go-mail"

	"github.com/MrSnakeDoc/devmarks/internal/logger"
)

// Mailer delivers sign-in links.
type Mailer interface {
	SendMagicLink(ctx context.Context, to, link string) error
}

// SMTPConfig holds outgoing mail settings.
type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

// SMTPMailer sends links over SMTP.
type SMTPMailer struct {
	cfg SMTPConfig
}

// NewSMTPMailer creates an SMTP mailer.
func NewSMTPMailer(cfg SMTPConfig) *SMTPMailer {
	return &SMTPMailer{cfg: cfg}
}

func (m *SMTPMailer) SendMagicLink(ctx context.Context, to, link string) error {
	msg := gomail.NewMsg()
	if err := msg.From(m.cfg.From); err != nil {
		return fmt.Errorf("invalid sender: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("invalid recipient: %w", err)
	}
	msg.Subject("Your devmarks sign-in link")
	msg.SetBodyString(gomail.TypeTextPlain, magicLinkBody(link))

	opts := []gomail.Option{
		gomail.WithPort(m.cfg.Port),
		gomail.WithTLSPolicy(gomail.TLSOpportunistic),
	}
	if m.cfg.User != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(m.cfg.User),
			gomail.WithPassword(m.cfg.Password),
		)
	}

	client, err := gomail.NewClient(m.cfg.Host, opts...)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}
	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

// LogMailer writes links to the log. Used when SMTP is not configured.
type LogMailer struct {
	logger logger.Logger
}

// NewLogMailer creates a mailer that only logs.
func NewLogMailer(log logger.Logger) *LogMailer {
	return &LogMailer{logger: log}
}

func (m *LogMailer) SendMagicLink(_ context.Context, to, link string) error {
	m.logger.Warn("SMTP not configured, magic link logged instead of mailed",
		logger.String("to", to),
		logger.String("link", link))
	return nil
}

func magicLinkBody(link string) string {
	return "Hi,\n\nClick the link below to sign in to devmarks:\n\n" + link +
		"\n\nThe link can be used once and expires soon. If you did not ask for it, ignore this email.\n"
}
