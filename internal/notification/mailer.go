package notification

import (
	"fmt"

	"gopkg.in/gomail.v2"
)

// Sender dispatches a rendered message to a recipient.
type Sender interface {
	Send(to string, msg Message) error
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type smtpSender struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPSender(cfg SMTPConfig) Sender {
	return &smtpSender{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

func (s *smtpSender) Send(to string, msg Message) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/plain", msg.Body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send mail to %s: %w", to, err)
	}
	return nil
}

// CredentialNotifier adapts Sender to the identity provider's Notifier
// interface.
type CredentialNotifier struct {
	sender Sender
}

func NewCredentialNotifier(sender Sender) *CredentialNotifier {
	return &CredentialNotifier{sender: sender}
}

func (n *CredentialNotifier) SendTemporaryCredential(email, tempCredential string) error {
	msg, err := RenderTemporaryCredential(tempCredential)
	if err != nil {
		return err
	}
	return n.sender.Send(email, msg)
}
