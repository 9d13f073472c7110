package mail

import (
	"errors"
	"fmt"
	"time"

	"xuper/internal/service"
)

const (
	ProviderBrevo = "brevo"
	ProviderSMTP  = "smtp"
	ProviderLog   = "log"
)

type Config struct {
	Provider string
	From     string
	FromName string

	BrevoAPIKey   string
	BrevoEndpoint string

	SMTPHost string
	SMTPPort int
	SMTPUser string
	SMTPPass string

	CodeTTL time.Duration
}

var ErrMissingCredentials = errors.New("mail: missing credentials")

// New returns the sender selected by cfg.Provider, failing when the
// provider's credentials are incomplete.
func New(cfg Config) (service.EmailService, error) {
	switch cfg.Provider {
	case ProviderBrevo:
		if cfg.BrevoAPIKey == "" || cfg.From == "" {
			return nil, fmt.Errorf("%w: BREVO_API_KEY and EMAIL_FROM are required", ErrMissingCredentials)
		}
		return &BrevoSender{
			APIKey:   cfg.BrevoAPIKey,
			From:     cfg.From,
			FromName: cfg.FromName,
			Endpoint: cfg.BrevoEndpoint,
			TTL:      cfg.CodeTTL,
		}, nil
	case ProviderSMTP:
		if cfg.SMTPHost == "" || cfg.SMTPPort == 0 || (cfg.From == "" && cfg.SMTPUser == "") {
			return nil, fmt.Errorf("%w: SMTP_HOST, SMTP_PORT and EMAIL_FROM are required", ErrMissingCredentials)
		}
		return &SMTPSender{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			User:     cfg.SMTPUser,
			Pass:     cfg.SMTPPass,
			From:     cfg.From,
			FromName: cfg.FromName,
			TTL:      cfg.CodeTTL,
		}, nil
	case ProviderLog:
		return LogSender{}, nil
	}
	return nil, fmt.Errorf("mail: unknown provider %q", cfg.Provider)
}
