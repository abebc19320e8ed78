// Package mail implements the primary reminder channel over SMTP.
package mail

import (
	"context"
	"crypto/tls"
	"fmt"
	"mime"
	"net"
	"net/smtp"
	"strings"

	"go.uber.org/zap"

	"github.com/developersatisa/gestor-back-facturas-pendientes/internal/application/port"
)

// Config holds the SMTP connection and sender identity.
type Config struct {
	Host       string
	Port       int
	Username   string
	Password   string
	From       string
	SenderName string
}

// SMTPSender delivers reminder emails over SMTP with STARTTLS. Each send
// opens its own connection; the notifier's volume does not justify pooling.
type SMTPSender struct {
	config Config
	logger *zap.Logger
}

// NewSMTPSender creates the mail channel.
func NewSMTPSender(config Config, logger *zap.Logger) *SMTPSender {
	return &SMTPSender{config: config, logger: logger}
}

// Send delivers one message. The context bounds the connection dial; SMTP
// conversation errors surface as channel failures to the dispatcher.
func (s *SMTPSender) Send(ctx context.Context, msg port.MailMessage) error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}

	client, err := smtp.NewClient(conn, s.config.Host)
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("failed to open SMTP session: %w", err)
	}
	defer client.Close()

	if ok, _ := client.Extension("STARTTLS"); ok {
		if err := client.StartTLS(&tls.Config{ServerName: s.config.Host}); err != nil {
			return fmt.Errorf("failed to start TLS: %w", err)
		}
	}

	if s.config.Username != "" {
		auth := smtp.PlainAuth("", s.config.Username, s.config.Password, s.config.Host)
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("failed to authenticate: %w", err)
		}
	}

	if err := client.Mail(s.config.From); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}
	if err := client.Rcpt(msg.To); err != nil {
		return fmt.Errorf("failed to set recipient: %w", err)
	}

	writer, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to open message body: %w", err)
	}
	if _, err := writer.Write([]byte(s.render(msg))); err != nil {
		return fmt.Errorf("failed to write message body: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finish message body: %w", err)
	}

	if err := client.Quit(); err != nil {
		s.logger.Debug("SMTP quit failed after successful send", zap.Error(err))
	}

	s.logger.Info("Reminder email sent",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject))
	return nil
}

// render builds a multipart/alternative message with plain-text and HTML
// parts, matching what mail clients expect from the reminder emails.
func (s *SMTPSender) render(msg port.MailMessage) string {
	from := s.config.From
	if s.config.SenderName != "" {
		from = fmt.Sprintf("%s <%s>", mime.QEncoding.Encode("utf-8", s.config.SenderName), s.config.From)
	}

	const boundary = "gestor-facturas-alt"
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", msg.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", msg.Subject))
	b.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&b, "Content-Type: multipart/alternative; boundary=%q\r\n", boundary)
	b.WriteString("\r\n")

	fmt.Fprintf(&b, "--%s\r\n", boundary)
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n\r\n")
	b.WriteString(msg.TextBody)
	b.WriteString("\r\n")

	fmt.Fprintf(&b, "--%s\r\n", boundary)
	b.WriteString("Content-Type: text/html; charset=utf-8\r\n\r\n")
	b.WriteString(msg.HTMLBody)
	b.WriteString("\r\n")

	fmt.Fprintf(&b, "--%s--\r\n", boundary)
	return b.String()
}
