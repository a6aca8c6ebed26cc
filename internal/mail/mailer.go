// Package mail renders and delivers the account lifecycle emails consumed
// from the notification queue. Delivery uses plain SMTP with STARTTLS.
package mail

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"mime/multipart"
	"net/smtp"
	"net/textproto"
	"strings"

	"expenseflow/internal/amqp"
)

// Mailer sends one rendered message per notification event.
type Mailer interface {
	Send(msg *amqp.NotificationMessage) error
}

// SMTPMailer delivers via an authenticated SMTP relay.
type SMTPMailer struct {
	addr     string // host:port
	host     string
	from     string
	password string
}

func NewSMTPMailer(addr, from, password string) *SMTPMailer {
	host := addr
	if i := strings.IndexByte(addr, ':'); i >= 0 {
		host = addr[:i]
	}
	return &SMTPMailer{addr: addr, host: host, from: from, password: password}
}

func (m *SMTPMailer) Send(msg *amqp.NotificationMessage) error {
	subject, body := render(msg)

	payload, err := compose(m.from, msg.Email, subject, body, msg.Attachment)
	if err != nil {
		return fmt.Errorf("compose message: %w", err)
	}

	auth := smtp.PlainAuth("", m.from, m.password, m.host)
	if err := smtp.SendMail(m.addr, auth, m.from, []string{msg.Email}, payload); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	return nil
}

func render(msg *amqp.NotificationMessage) (subject, body string) {
	switch msg.Event {
	case amqp.EventWelcome:
		return "Welcome to ExpenseFlow - Your Financial Journey Starts Here!",
			htmlBody("Welcome to ExpenseFlow!",
				"We're thrilled to have you join ExpenseFlow, your go-to tool for managing finances effortlessly. Get started today and take control of your financial journey!")
	case amqp.EventPasswordChange:
		return "Your ExpenseFlow Password Has Been Updated",
			htmlBody("Password Updated",
				"Your password was changed successfully. If this wasn't you, please reset your password immediately.")
	case amqp.EventDashboardReset:
		return "Your ExpenseFlow Dashboard Has Been Reset",
			htmlBody("Dashboard Reset",
				"All transactions on your dashboard have been cleared. If this wasn't you, please contact support.")
	case amqp.EventOTP:
		return "Your ExpenseFlow One-Time Passcode",
			htmlBody("Password Reset Code",
				"Your one-time passcode is <strong>"+msg.OTP+"</strong>. It expires in 5 minutes.")
	case amqp.EventReport:
		return "Your ExpenseFlow Transactions Report",
			htmlBody("Your Transactions Report",
				"Please find your attached ExpenseFlow transactions report. If you have any questions, feel free to contact us.")
	default:
		return "ExpenseFlow Notification", htmlBody("Notification", "You have a new notification from ExpenseFlow.")
	}
}

func htmlBody(title, text string) string {
	var b strings.Builder
	b.WriteString("<html><body style=\"font-family: Arial, sans-serif;\">")
	b.WriteString("<div style=\"max-width: 600px; margin: auto; padding: 20px;\">")
	b.WriteString("<h2 style=\"color: #2c3e50;\">" + title + "</h2>")
	b.WriteString("<p style=\"color: #555;\">Hi there,</p>")
	b.WriteString("<p style=\"color: #555;\">" + text + "</p>")
	b.WriteString("<p style=\"color: #555;\">Best regards,<br><strong>The ExpenseFlow Team</strong></p>")
	b.WriteString("</div></body></html>")
	return b.String()
}

// compose builds an RFC 2045 multipart message with an HTML part and an
// optional CSV attachment.
func compose(from, to, subject, htmlBody string, attachment []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	fmt.Fprintf(&buf, "From: %s\r\n", from)
	fmt.Fprintf(&buf, "To: %s\r\n", to)
	fmt.Fprintf(&buf, "Subject: %s\r\n", subject)
	fmt.Fprintf(&buf, "MIME-Version: 1.0\r\n")
	fmt.Fprintf(&buf, "Content-Type: multipart/mixed; boundary=%s\r\n\r\n", w.Boundary())

	htmlHeader := textproto.MIMEHeader{}
	htmlHeader.Set("Content-Type", "text/html; charset=utf-8")
	part, err := w.CreatePart(htmlHeader)
	if err != nil {
		return nil, err
	}
	if _, err := part.Write([]byte(htmlBody)); err != nil {
		return nil, err
	}

	if len(attachment) > 0 {
		attHeader := textproto.MIMEHeader{}
		attHeader.Set("Content-Type", "text/csv")
		attHeader.Set("Content-Transfer-Encoding", "base64")
		attHeader.Set("Content-Disposition", `attachment; filename="transactions.csv"`)
		att, err := w.CreatePart(attHeader)
		if err != nil {
			return nil, err
		}
		encoded := base64.StdEncoding.EncodeToString(attachment)
		if _, err := att.Write([]byte(encoded)); err != nil {
			return nil, err
		}
	}

	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
