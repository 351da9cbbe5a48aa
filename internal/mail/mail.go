// Package mail sends transactional email.
package mail

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/gofiber/fiber/v2/log"
)

type Dispatcher interface {
	Send(ctx context.Context, to, subject, body string) error
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type SMTPDispatcher struct {
	cfg SMTPConfig
}

func NewSMTPDispatcher(cfg SMTPConfig) *SMTPDispatcher {
	return &SMTPDispatcher{cfg: cfg}
}

func (d *SMTPDispatcher) Send(_ context.Context, to, subject, body string) error {
	addr := fmt.Sprintf("%s:%d", d.cfg.Host, d.cfg.Port)
	var auth smtp.Auth
	if d.cfg.Username != "" {
		auth = smtp.PlainAuth("", d.cfg.Username, d.cfg.Password, d.cfg.Host)
	}
	return smtp.SendMail(addr, auth, d.cfg.From, []string{to}, buildMessage(d.cfg.From, to, subject, body))
}

func buildMessage(from, to, subject, body string) []byte {
	var b strings.Builder
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + to + "\r\n")
	b.WriteString("Subject: " + subject + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(body)
	return []byte(b.String())
}

// LogDispatcher writes messages to the log. Used when no SMTP host is configured.
type LogDispatcher struct{}

func (LogDispatcher) Send(_ context.Context, to, subject, body string) error {
	log.Infof("mail to=%s subject=%q\n%s", to, subject, body)
	return nil
}

// SendAsync delivers in the background; failures are logged only.
func SendAsync(d Dispatcher, to, subject, body string) {
	go func() {
		if err := d.Send(context.Background(), to, subject, body); err != nil {
			log.Errorf("mail to %s failed: %v", to, err)
		}
	}()
}
