// Package mailer sends HTML notification emails over SMTP-SSL. Every send is
// best effort: callers log failures and never surface them to the client.
package mailer

import (
	"crypto/tls"
	"fmt"
	"net/smtp"
	"strings"

	"go.uber.org/zap"
)

type Sender interface {
	Send(to, subject, html string) error
}

type SMTPSender struct {
	Host     string
	Port     int
	From     string
	Password string
	Log      *zap.Logger
}

func NewSMTPSender(host string, port int, from, password string, log *zap.Logger) *SMTPSender {
	return &SMTPSender{Host: host, Port: port, From: from, Password: password, Log: log}
}

// Send delivers one HTML email over an implicit-TLS SMTP connection.
func (s *SMTPSender) Send(to, subject, html string) error {
	if s.Password == "" {
		return fmt.Errorf("smtp password not configured")
	}

	addr := fmt.Sprintf("%s:%d", s.Host, s.Port)
	conn, err := tls.Dial("tcp", addr, &tls.Config{ServerName: s.Host})
	if err != nil {
		return fmt.Errorf("smtp dial: %w", err)
	}

	client, err := smtp.NewClient(conn, s.Host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("smtp client: %w", err)
	}
	defer client.Close()

	auth := smtp.PlainAuth("", s.From, s.Password, s.Host)
	if err := client.Auth(auth); err != nil {
		return fmt.Errorf("smtp auth: %w", err)
	}
	if err := client.Mail(s.From); err != nil {
		return err
	}
	if err := client.Rcpt(to); err != nil {
		return err
	}

	w, err := client.Data()
	if err != nil {
		return err
	}

	var msg strings.Builder
	msg.WriteString("From: " + s.From + "\r\n")
	msg.WriteString("To: " + to + "\r\n")
	msg.WriteString("Subject: " + subject + "\r\n")
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=UTF-8\r\n\r\n")
	msg.WriteString(html)

	if _, err := w.Write([]byte(msg.String())); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}

	s.Log.Info("email sent", zap.String("to", to), zap.String("subject", subject))
	return client.Quit()
}
