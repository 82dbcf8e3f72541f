package notify

import (
	"context"

	"github.com/rs/zerolog"
	"golang.org/x/text/language"

	"github.com/oponion/oponion-api/internal/i18n"
)

// LogNotifier writes invitations to the log instead of sending them.
// Used when no SMTP server is configured.
type LogNotifier struct {
	logger   zerolog.Logger
	composer composer
}

func NewLogNotifier(logger zerolog.Logger, catalog *i18n.Catalog, tag language.Tag, baseURL string) *LogNotifier {
	return &LogNotifier{
		logger: logger,
		composer: composer{
			catalog: catalog,
			tag:     tag,
			baseURL: baseURL,
		},
	}
}

func (n *LogNotifier) NotifyInvitation(_ context.Context, invitation Invitation) error {
	msg := n.composer.compose(invitation)
	n.logger.Info().
		Str("recipient", invitation.RecipientEmail).
		Str("subject", msg.Subject).
		Str("link", msg.Link).
		Msg("invitation notification")
	return nil
}
