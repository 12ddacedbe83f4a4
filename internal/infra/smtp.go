package infra

import (
	"fmt"
	"net/smtp"

	"github.com/codefren/s4t-koroshi-sms-backend/internal/config"

	"github.com/jordan-wright/email"
)

// Mailer wraps SMTP configuration for supervisor notifications.
type Mailer struct {
	host     string
	user     string
	password string
	addr     string
}

func NewMailer(cfg *config.Config) *Mailer {
	return &Mailer{
		host:     cfg.SMTPHost,
		user:     cfg.SMTPUser,
		password: cfg.SMTPPassword,
		addr:     fmt.Sprintf("%s:%d", cfg.SMTPHost, cfg.SMTPPort),
	}
}

// Configured reports whether an SMTP host was provided.
func (m *Mailer) Configured() bool { return m != nil && m.host != "" }

// Send delivers a plain-text message, optionally attaching the file at attachPath.
func (m *Mailer) Send(to, subject, body, attachPath string) error {
	if !m.Configured() {
		return fmt.Errorf("mailer: SMTP no configurado")
	}
	e := email.NewEmail()
	e.From = m.user
	e.To = []string{to}
	e.Subject = subject
	e.Text = []byte(body)

	if attachPath != "" {
		if _, err := e.AttachFile(attachPath); err != nil {
			return fmt.Errorf("mailer: attach file: %w", err)
		}
	}

	var auth smtp.Auth
	if m.user != "" {
		auth = smtp.PlainAuth("", m.user, m.password, m.host)
	}
	return e.Send(m.addr, auth)
}
