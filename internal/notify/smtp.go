package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/wneessen/go-mail"
	"golang.org/x/text/language"

	"github.com/oponion/oponion-api/internal/i18n"
)

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	TLS      bool
	Timeout  time.Duration
}

type SMTPNotifier struct {
	logger   zerolog.Logger
	client   *mail.Client
	from     string
	composer composer
}

func NewSMTPNotifier(
	logger zerolog.Logger,
	cfg SMTPConfig,
	catalog *i18n.Catalog,
	tag language.Tag,
	baseURL string,
) (*SMTPNotifier, error) {
	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithTimeout(cfg.Timeout),
	}
	if cfg.TLS {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.NoTLS))
	}
	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}

	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create smtp client: %w", err)
	}

	return &SMTPNotifier{
		logger: logger,
		client: client,
		from:   cfg.From,
		composer: composer{
			catalog: catalog,
			tag:     tag,
			baseURL: baseURL,
		},
	}, nil
}

func (n *SMTPNotifier) NotifyInvitation(ctx context.Context, invitation Invitation) error {
	msg := n.composer.compose(invitation)

	m := mail.NewMsg()
	err := m.From(n.from)
	if err != nil {
		return fmt.Errorf("invalid sender address: %w", err)
	}
	err = m.To(invitation.RecipientEmail)
	if err != nil {
		return fmt.Errorf("invalid recipient address: %w", err)
	}
	m.Subject(msg.Subject)
	m.SetBodyString(mail.TypeTextPlain, msg.Body)

	err = n.client.DialAndSendWithContext(ctx, m)
	if err != nil {
		n.logger.Error().
			Err(err).
			Str("recipient", invitation.RecipientEmail).
			Msg("failed to send invitation email")
		return fmt.Errorf("failed to send invitation email: %w", err)
	}

	n.logger.Debug().
		Str("recipient", invitation.RecipientEmail).
		Msg("sent invitation email")
	return nil
}
