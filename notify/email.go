package notify

import (
	"errors"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/davide122/energy-sub000/utils"
)

func (d *Dispatcher) sendEmail(recipient, subject, body string) error {
	if d.smtpHost == "" {
		return errors.New("SMTP_HOST not configured")
	}
	if !utils.IsValidEmail(recipient) {
		return fmt.Errorf("invalid recipient email %q", recipient)
	}

	msg := strings.Join([]string{
		"From: " + d.fromAddr,
		"To: " + recipient,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"utf-8\"",
		"",
		body,
	}, "\r\n")

	addr := d.smtpHost + ":" + d.smtpPort
	var auth smtp.Auth
	if d.smtpUser != "" {
		auth = smtp.PlainAuth("", d.smtpUser, d.smtpPass, d.smtpHost)
	}
	return smtp.SendMail(addr, auth, d.fromAddr, []string{recipient}, []byte(msg))
}

// SendRaw delivers an arbitrary message to one address (used by the admin
// cycle digest, which is not a contract notification).
func (d *Dispatcher) SendRaw(recipient, subject, body string) error {
	return d.sendEmail(recipient, subject, body)
}
