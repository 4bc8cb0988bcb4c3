package session

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/zarlcorp/zprofile/internal/config"
	"github.com/zarlcorp/zprofile/internal/mailbox"
	"github.com/zarlcorp/zprofile/internal/mailbox/mailtm"
	"github.com/zarlcorp/zprofile/internal/mailbox/secmail"
)

// NewProvider builds the mailbox backend named in cfg.
func NewProvider(cfg *config.Config, log *zap.Logger) (mailbox.Provider, error) {
	if log == nil {
		log = zap.NewNop()
	}
	t := mailbox.NewTransport(cfg.Transport(), log.Named("http").With(zap.String("provider", cfg.Provider.Name)))

	switch cfg.Provider.Name {
	case secmail.Name:
		return secmail.NewClient(cfg.Provider.SecmailURL, t), nil
	case mailtm.Name:
		return mailtm.NewClient(cfg.Provider.MailtmURL, cfg.Provider.MailtmFormat, t), nil
	default:
		return nil, fmt.Errorf("unknown mailbox provider %q", cfg.Provider.Name)
	}
}
