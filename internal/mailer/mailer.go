package mailer

import (
	"errors"
	"fmt"
	"net/smtp"
	"os"

	"ticket-marketplace/internal/models"
)

var ErrSMTPNotConfigured = errors.New("SMTP configuration environment variables are missing")

// Mailer sends customer receipt emails over SMTP. Credentials come from
// SMTP_FROM / SMTP_PASSWORD; host and port default to Gmail's relay.
type Mailer struct {
	from     string
	password string
	host     string
	port     string
}

func NewMailer() *Mailer {
	return &Mailer{
		from:     os.Getenv("SMTP_FROM"),
		password: os.Getenv("SMTP_PASSWORD"),
		host:     envOr("SMTP_HOST", "smtp.gmail.com"),
		port:     envOr("SMTP_PORT", "587"),
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// SendReceipt emails a payment receipt to the customer snapshot on the
// ledger entry.
func (m *Mailer) SendReceipt(payment *models.Payment) error {
	if m.from == "" || m.password == "" {
		return ErrSMTPNotConfigured
	}

	message := []byte(fmt.Sprintf(
		"Subject: 🎟 Your ticket payment receipt\r\n"+
			"MIME-version: 1.0;\r\n"+
			"Content-Type: text/html; charset=\"UTF-8\";\r\n\r\n"+
			`<div style="font-family: Arial, sans-serif; max-width: 500px; margin: auto; border: 2px dashed #FF6600; border-radius: 10px; padding: 20px; background-color: #fff9f2;">
				<div style="text-align: center;">
					<h2 style="color: #FF6600;">🎟 Payment received</h2>
					<p style="font-size: 16px; color: #555;">Thanks %s, your payment has been confirmed.</p>
					<div style="font-size: 20px; font-weight: bold; color: #000; background-color: #FFE0CC; padding: 10px; display: inline-block; border-radius: 8px;">
						%d ticket(s) at $%.2f each
					</div>
					<p style="font-size: 14px; color: #888; margin-top: 15px;">
						Transaction reference: %s
					</p>
				</div>
			</div>`,
		payment.Customer.Name, payment.Quantity, payment.Price, payment.TransactionID))

	auth := smtp.PlainAuth("", m.from, m.password, m.host)

	if err := smtp.SendMail(m.host+":"+m.port, auth, m.from, []string{payment.Customer.Email}, message); err != nil {
		return fmt.Errorf("failed to send receipt: %w", err)
	}
	return nil
}
