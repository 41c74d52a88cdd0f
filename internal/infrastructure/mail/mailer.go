package mail

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const dialTimeout = 10 * time.Second

// Config captures the SMTP settings for outbound reset mail.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Mailer delivers reset links over SMTP with STARTTLS when the server offers
// it. Delivery is best-effort; callers treat errors as log-and-forget.
type Mailer struct {
	cfg Config
	log zerolog.Logger
}

func NewMailer(cfg Config, log zerolog.Logger) *Mailer {
	return &Mailer{cfg: cfg, log: log}
}

// Send delivers one reset link to recipient.
func (m *Mailer) Send(ctx context.Context, recipient, link string) error {
	addr := net.JoinHostPort(m.cfg.Host, strconv.Itoa(m.cfg.Port))

	dialer := &net.Dialer{Timeout: dialTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("smtp dial %s: %w", addr, err)
	}

	client, err := smtp.NewClient(conn, m.cfg.Host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("smtp handshake: %w", err)
	}
	defer client.Close()

	if ok, _ := client.Extension("STARTTLS"); ok {
		if err := client.StartTLS(&tls.Config{ServerName: m.cfg.Host}); err != nil {
			return fmt.Errorf("smtp starttls: %w", err)
		}
	}

	if m.cfg.Username != "" {
		auth := smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("smtp auth: %w", err)
		}
	}

	if err := client.Mail(m.cfg.From); err != nil {
		return fmt.Errorf("smtp mail from: %w", err)
	}
	if err := client.Rcpt(recipient); err != nil {
		return fmt.Errorf("smtp rcpt to: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("smtp data: %w", err)
	}
	if _, err := w.Write([]byte(resetMessage(m.cfg.From, recipient, link))); err != nil {
		w.Close()
		return fmt.Errorf("smtp write body: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("smtp close body: %w", err)
	}

	return client.Quit()
}

func resetMessage(from, to, link string) string {
	var b strings.Builder
	b.WriteString("From: Spoon <" + from + ">\r\n")
	b.WriteString("To: " + to + "\r\n")
	b.WriteString("Subject: reset-password\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	b.WriteString("\r\n")
	b.WriteString("<div><h2>This reset link is only valid for 5 minutes.</h2>")
	b.WriteString(`<p><a href="` + link + `">Reset your password</a></p></div>` + "\r\n")
	return b.String()
}
