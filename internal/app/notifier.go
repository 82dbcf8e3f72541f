package app

import (
	"github.com/oponion/oponion-api/internal/config"
	"github.com/oponion/oponion-api/internal/i18n"
	"github.com/oponion/oponion-api/internal/notify"
)

var (
	globalCatalog  *i18n.Catalog
	globalNotifier notify.Notifier
)

func MustLoadCatalog() {
	cfg := config.Global()

	var err error
	globalCatalog, err = i18n.Load(cfg.DefaultLocale)
	if err != nil {
		globalLogger.Error().
			Err(err).
			Str("locale", cfg.DefaultLocale).
			Msg("failed to load locales")
		panic(err)
	}
}

// MustInitNotifier sends invitations by SMTP when a host is configured
// and logs them otherwise. Emails use the default locale.
func MustInitNotifier() {
	cfg := config.Global()
	tag := globalCatalog.Fallback()

	if cfg.SMTP.Host == "" {
		globalNotifier = notify.NewLogNotifier(globalLogger, globalCatalog, tag, cfg.FrontendURL)
		globalLogger.Warn().Msg("smtp host not set, invitations are only logged")
		return
	}

	smtpNotifier, err := notify.NewSMTPNotifier(globalLogger, notify.SMTPConfig{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
		TLS:      cfg.SMTP.TLS,
		Timeout:  cfg.SMTP.Timeout,
	}, globalCatalog, tag, cfg.FrontendURL)
	if err != nil {
		globalLogger.Error().
			Err(err).
			Msg("failed to init smtp notifier")
		panic(err)
	}
	globalNotifier = smtpNotifier
	globalLogger.Info().
		Str("host", cfg.SMTP.Host).
		Int("port", cfg.SMTP.Port).
		Msg("initialized smtp notifier")
}
