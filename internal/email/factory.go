package email

import (
	"github.com/capitalprocrm/capitalpro-email-service/internal/config"
)

// NewTransport selects and constructs a transport from the configuration
// snapshot. An SMTP host always wins over Gmail credentials. Construction
// never touches the network; credential problems surface on first Send.
func NewTransport(cfg *config.Config) (Transport, error) {
	if cfg.SMTP.Host != "" {
		if cfg.SMTP.Port == 0 || cfg.SMTP.User == "" || cfg.SMTP.Pass == "" {
			return nil, &ConfigError{Reason: "missing SMTP vars"}
		}
		return NewSMTPTransport(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Secure, cfg.SMTP.User, cfg.SMTP.Pass), nil
	}

	if cfg.Gmail.User == "" || cfg.Gmail.AppPassword == "" {
		return nil, &ConfigError{Reason: "missing Gmail vars"}
	}
	return NewGmailTransport(cfg.Gmail.User, cfg.Gmail.AppPassword), nil
}
