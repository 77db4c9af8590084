package digest

import (
	"fmt"
	"net/smtp"

	"github.com/budgetwise/forecast-service/internal/config"
	"github.com/jordan-wright/email"
	"github.com/sirupsen/logrus"
)

// Message is a plain-text e-mail
type Message struct {
	To      string
	Subject string
	Body    string
}

// Sender delivers messages
type Sender interface {
	Send(msg Message) error
}

// SMTPSender handles sending emails via SMTP
type SMTPSender struct {
	cfg    *config.Config
	logger *logrus.Logger
}

// NewSMTPSender creates a new email sender
func NewSMTPSender(cfg *config.Config, logger *logrus.Logger) *SMTPSender {
	return &SMTPSender{
		cfg:    cfg,
		logger: logger,
	}
}

// Send sends msg through the configured SMTP server
func (s *SMTPSender) Send(msg Message) error {
	e := email.NewEmail()
	e.From = s.cfg.SenderEmail
	e.To = []string{msg.To}
	e.Subject = msg.Subject
	e.Text = []byte(msg.Body)

	addr := fmt.Sprintf("%s:%s", s.cfg.SMTPHost, s.cfg.SMTPPort)
	var auth smtp.Auth
	if s.cfg.SMTPUsername != "" {
		auth = smtp.PlainAuth("", s.cfg.SMTPUsername, s.cfg.SMTPPassword, s.cfg.SMTPHost)
	}
	if err := e.Send(addr, auth); err != nil {
		s.logger.Errorf("Failed to send email to %s: %v", msg.To, err)
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.Infof("Email sent to %s: %s", msg.To, msg.Subject)
	return nil
}
