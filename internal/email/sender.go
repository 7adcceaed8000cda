package email

import (
	"context"
	"fmt"
	"net/smtp"

	"go.uber.org/zap"

	"github.com/SnehitGunjikar/RFP-Management-System/internal/config"
)

// Sender defines the interface for sending emails.
// The rawMessage parameter should contain the full email message, including headers and body, properly formatted.
type Sender interface {
	Send(ctx context.Context, to []string, subject string, rawMessage []byte) error
}

// SMTPSender implements the Sender interface using Go's net/smtp package.
type SMTPSender struct {
	from   string
	auth   smtp.Auth
	addr   string
	logger *zap.Logger
}

// NewSMTPSender creates a new SMTPSender.
// Without an SMTP host it falls back to a LoggingSender.
func NewSMTPSender(cfg *config.Config, logger *zap.Logger) Sender {
	if cfg.SmtpHost == "" {
		logger.Warn("SMTP host not configured, using logging email sender")
		return NewLoggingSender(cfg.SmtpFromAddress, logger)
	}

	var auth smtp.Auth
	if cfg.SmtpUsername != "" {
		auth = smtp.PlainAuth("", cfg.SmtpUsername, cfg.SmtpPassword, cfg.SmtpHost)
	}

	return &SMTPSender{
		from:   cfg.SmtpFromAddress,
		auth:   auth,
		addr:   fmt.Sprintf("%s:%d", cfg.SmtpHost, cfg.SmtpPort),
		logger: logger,
	}
}

// Send sends an email using SMTP.
// The rawMessage is expected to be the complete email content.
func (s *SMTPSender) Send(ctx context.Context, to []string, subject string, rawMessage []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := smtp.SendMail(s.addr, s.auth, s.from, to, rawMessage); err != nil {
		s.logger.Error("smtp send failed", zap.Strings("to", to), zap.Error(err))
		return fmt.Errorf("smtp error: %w", err)
	}
	s.logger.Info("email sent via smtp", zap.Strings("to", to), zap.String("subject", subject))
	return nil
}

// LoggingSender just logs email details.
// Useful for development or when SMTP isn't configured.
type LoggingSender struct {
	from   string
	logger *zap.Logger
}

func NewLoggingSender(from string, logger *zap.Logger) *LoggingSender {
	return &LoggingSender{from: from, logger: logger}
}

// Send logs the email details instead of sending.
func (s *LoggingSender) Send(ctx context.Context, to []string, subject string, rawMessage []byte) error {
	s.logger.Info("email logged (not sent)",
		zap.Strings("to", to),
		zap.String("from", s.from),
		zap.String("subject", subject),
		zap.ByteString("raw", rawMessage),
	)
	return nil
}

// NewSenderFromConfig assembles the sender used by the application:
// SMTP (or logging) plus the optional file and Redis sinks.
func NewSenderFromConfig(cfg *config.Config, redisSink RedisSink, logger *zap.Logger) (Sender, error) {
	if cfg.MockServices && redisSink != nil {
		logger.Info("MOCK_SERVICES enabled, storing outbound email in redis")
		composite := NewCompositeEmailSender(NewRedisSender(redisSink, cfg.SmtpFromAddress))
		if cfg.LogEmailsPath != "" {
			fileSender, err := NewFileEmailSender(cfg.LogEmailsPath, logger)
			if err != nil {
				return nil, err
			}
			composite.AddSender(fileSender)
		}
		return composite, nil
	}

	primary := NewSMTPSender(cfg, logger)
	if cfg.LogEmailsPath == "" {
		return primary, nil
	}
	fileSender, err := NewFileEmailSender(cfg.LogEmailsPath, logger)
	if err != nil {
		return nil, err
	}
	return NewCompositeEmailSender(primary, fileSender), nil
}
