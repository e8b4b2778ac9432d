package mail

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

// Sender delivers a Message.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// SMTPConfig holds the SMTP relay settings.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SMTPSender sends mail through an SMTP relay using gomail.
type SMTPSender struct {
	cfg    SMTPConfig
	dialer *gomail.Dialer
	log    *zap.Logger
}

// NewSMTPSender creates a new SMTPSender.
func NewSMTPSender(cfg SMTPConfig, log *zap.Logger) *SMTPSender {
	return &SMTPSender{
		cfg:    cfg,
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		log:    log,
	}
}

// Send delivers msg as an HTML email. The SMTP exchange itself is not
// cancellable; ctx only bounds how long Send waits for it.
func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	if msg.RecipientEmail == "" {
		return errors.New("mail: recipient is required")
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.cfg.From)
	m.SetHeader("To", msg.RecipientEmail)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/html", msg.Body)

	done := make(chan error, 1)
	go func() {
		done <- s.dialer.DialAndSend(m)
	}()

	select {
	case err := <-done:
		if err != nil {
			return err
		}
		s.log.Info("mail sent", zap.String("to", msg.RecipientEmail), zap.String("subject", msg.Subject))
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// NopSender drops every message. It is used when mail delivery is disabled.
type NopSender struct {
	log *zap.Logger
}

// NewNopSender creates a new NopSender.
func NewNopSender(log *zap.Logger) *NopSender {
	return &NopSender{log: log}
}

// Send logs msg and discards it.
func (s *NopSender) Send(_ context.Context, msg Message) error {
	s.log.Info("mail delivery disabled, dropping message",
		zap.String("to", msg.RecipientEmail),
		zap.String("subject", msg.Subject),
	)
	return nil
}
