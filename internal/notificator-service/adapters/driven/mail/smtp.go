package mail

import (
	"fmt"
	"net/smtp"
	"strings"

	"hatbazar/internal/config"
	"hatbazar/internal/notificator-service/core/ports"
)

// Mailer sends plain-text mail over SMTP. smtp.SendMail negotiates
// STARTTLS when the server offers it.
type Mailer struct {
	cfg *config.Mailconfig
}

var _ ports.IMailer = (*Mailer)(nil)

func New(cfg *config.Mailconfig) *Mailer {
	return &Mailer{cfg: cfg}
}

func (m *Mailer) Send(to, subject, body string) error {
	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)

	var auth smtp.Auth
	if m.cfg.User != "" {
		auth = smtp.PlainAuth("", m.cfg.User, m.cfg.Password, m.cfg.Host)
	}

	msg := strings.Join([]string{
		"From: " + m.cfg.From,
		"To: " + to,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		`Content-Type: text/plain; charset="utf-8"`,
		"",
		body,
	}, "\r\n")

	if err := smtp.SendMail(addr, auth, m.cfg.From, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("send mail to %s: %w", to, err)
	}
	return nil
}
