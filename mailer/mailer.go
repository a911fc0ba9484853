package mailer

import (
	"fmt"
	"log"
	"net/smtp"
	"os"
)

// Mailer delivers a plain-text message to one address. Implementations
// return an error on delivery failure; callers decide whether that failure
// is retryable.
type Mailer interface {
	Send(to, subject, body string) error
}

// SMTP sends through a single SMTP relay with PLAIN auth.
type SMTP struct {
	Host string
	Port string
	From string
	Pass string
}

// NewSMTPFromEnv reads SMTP_HOST, SMTP_PORT, SMTP_USER and SMTP_PASS, with
// gmail defaults for host and port.
func NewSMTPFromEnv() *SMTP {
	host := os.Getenv("SMTP_HOST")
	if host == "" {
		host = "smtp.gmail.com"
	}
	port := os.Getenv("SMTP_PORT")
	if port == "" {
		port = "587"
	}
	return &SMTP{
		Host: host,
		Port: port,
		From: os.Getenv("SMTP_USER"),
		Pass: os.Getenv("SMTP_PASS"),
	}
}

func (s *SMTP) Send(to, subject, body string) error {
	msg := []byte(fmt.Sprintf("From: Visitor System <%s>\r\nTo: %s\r\nSubject: %s\r\n\r\n%s", s.From, to, subject, body))
	auth := smtp.PlainAuth("", s.From, s.Pass, s.Host)
	if err := smtp.SendMail(s.Host+":"+s.Port, auth, s.From, []string{to}, msg); err != nil {
		return fmt.Errorf("smtp send to %s: %w", to, err)
	}
	log.Printf("email sent to %s: %s", to, subject)
	return nil
}
