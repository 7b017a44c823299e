// Package notify implements the accounts.Notifier contract: SMTP delivery for
// real deployments and a console printer for development.
package notify

import (
	"context"
	"fmt"

	"github.com/campuskit/go-accounts"
	goerrors "github.com/goliatone/go-errors"
	"github.com/wneessen/go-mail"
)

// SMTP delivers verification and reset messages over an SMTP relay.
type SMTP struct {
	cfg    accounts.SMTPConfig
	client *mail.Client
}

var _ accounts.Notifier = (*SMTP)(nil)

// NewSMTP validates the transport credentials up front so an operation fails
// fast with Unconfigured instead of half way through a flow.
func NewSMTP(cfg accounts.SMTPConfig) (*SMTP, error) {
	if cfg.Host == "" || cfg.Username == "" || cfg.Password == "" {
		return nil, accounts.ErrNotifierUnconfigured
	}

	opts := []mail.Option{
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(cfg.Username),
		mail.WithPassword(cfg.Password),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	}

	if cfg.Port == 465 {
		opts = append(opts, mail.WithSSL())
	} else if cfg.Port != 0 {
		opts = append(opts, mail.WithPort(cfg.Port))
	}

	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to build mail client")
	}

	return &SMTP{cfg: cfg, client: client}, nil
}

// Notify implements accounts.Notifier.
func (s *SMTP) Notify(ctx context.Context, recipient string, purpose accounts.Purpose, link string) error {
	msg := mail.NewMsg()

	if err := msg.From(s.from()); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "invalid sender address")
	}
	if err := msg.To(recipient); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryBadInput, "invalid recipient address")
	}

	subject, body := Compose(purpose, link)
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, body)

	if err := s.client.DialAndSendWithContext(ctx, msg); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryOperation, "smtp delivery failed").
			WithMetadata(map[string]any{"purpose": string(purpose)})
	}

	return nil
}

func (s *SMTP) from() string {
	if s.cfg.From != "" {
		return s.cfg.From
	}
	return s.cfg.Username
}

// Compose renders the subject and body for a purpose.
func Compose(purpose accounts.Purpose, link string) (subject, body string) {
	switch purpose {
	case accounts.PurposeReset:
		return "Password Reset",
			fmt.Sprintf("Click the link to reset your password: %s", link)
	default:
		return "Verify Your Email",
			fmt.Sprintf("Click the link to verify your email address: %s", link)
	}
}
