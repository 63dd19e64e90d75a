package auth

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/smtp"
	"net/url"
	"strings"
)

type Mailer interface {
	SendVerificationLink(ctx context.Context, email, token string) error
}

// ConsoleMailer logs the verification link instead of sending it.
// Used in dev when SMTP is not configured.
type ConsoleMailer struct {
	baseURL string
}

func NewConsoleMailer(baseURL string) *ConsoleMailer {
	return &ConsoleMailer{baseURL: baseURL}
}

func (m *ConsoleMailer) SendVerificationLink(_ context.Context, email, token string) error {
	log.Printf("[DEV-EMAIL] verification link email=%s url=%s", email, verificationURL(m.baseURL, token))
	return nil
}

// SMTPMailer sends the verification link over an authenticated SMTP
// relay. smtp.SendMail upgrades to STARTTLS when the server offers it.
type SMTPMailer struct {
	host     string
	port     string
	username string
	password string
	from     string
	baseURL  string
}

func NewSMTPMailer(host, port, username, password, from, baseURL string) *SMTPMailer {
	return &SMTPMailer{
		host:     host,
		port:     port,
		username: username,
		password: password,
		from:     from,
		baseURL:  baseURL,
	}
}

func (m *SMTPMailer) SendVerificationLink(_ context.Context, email, token string) error {
	link := verificationURL(m.baseURL, token)

	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s\r\n", m.from)
	fmt.Fprintf(&msg, "To: %s\r\n", email)
	msg.WriteString("Subject: Verify your email\r\n")
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	msg.WriteString("\r\n")
	fmt.Fprintf(&msg, "Click the link to verify your email: %s\r\n", link)

	var auth smtp.Auth
	if m.username != "" {
		auth = smtp.PlainAuth("", m.username, m.password, m.host)
	}

	addr := net.JoinHostPort(m.host, m.port)
	return smtp.SendMail(addr, auth, m.from, []string{email}, []byte(msg.String()))
}

func verificationURL(baseURL, token string) string {
	return fmt.Sprintf("%s/api/v1/auth/verify-email?token=%s", baseURL, url.QueryEscape(token))
}
