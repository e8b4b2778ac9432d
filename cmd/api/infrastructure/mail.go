package infrastructure

import (
	"go.uber.org/zap"

	"user-account-service/internal/adapter/mail"
	"user-account-service/internal/config"
)

// NewMailSender returns an SMTP sender, or a sender that drops mail when delivery is disabled
func NewMailSender(cfg *config.Config, l *zap.Logger) mail.Sender {
	if !cfg.Mail.Enabled {
		l.Info("mail delivery disabled")
		return mail.NewNopSender(l)
	}

	l.Info("mail delivery via SMTP",
		zap.String("host", cfg.Mail.SMTPHost),
		zap.Int("port", cfg.Mail.SMTPPort),
		zap.String("from", cfg.Mail.FromAddress),
	)
	return mail.NewSMTPSender(mail.SMTPConfig{
		Host:     cfg.Mail.SMTPHost,
		Port:     cfg.Mail.SMTPPort,
		Username: cfg.Mail.SMTPUser,
		Password: cfg.Mail.SMTPPass,
		From:     cfg.Mail.FromAddress,
	}, l)
}
