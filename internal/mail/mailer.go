package mail

import (
	"fmt"
	"net/smtp"
	"os"

	"github.com/sirupsen/logrus"
)

// Mailer sends transactional mail over plain SMTP with STARTTLS handled by
// the smtp package. Configuration comes from SMTP_HOST, SMTP_PORT,
// SMTP_USER, SMTP_PASS and SMTP_FROM.
type Mailer struct {
	host string
	port string
	user string
	pass string
	from string
	log  *logrus.Logger

	// send is swappable in tests.
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewMailerFromEnv(log *logrus.Logger) *Mailer {
	return &Mailer{
		host: os.Getenv("SMTP_HOST"),
		port: getEnv("SMTP_PORT", "587"),
		user: os.Getenv("SMTP_USER"),
		pass: os.Getenv("SMTP_PASS"),
		from: os.Getenv("SMTP_FROM"),
		log:  log,
		send: smtp.SendMail,
	}
}

// Enabled reports whether SMTP is configured at all. Without it, reset codes
// are logged instead of mailed, which keeps local development workable.
func (m *Mailer) Enabled() bool {
	return m.host != ""
}

// SendResetOTP mails a password reset code.
func (m *Mailer) SendResetOTP(to, otp string) error {
	if !m.Enabled() {
		m.log.WithField("email", to).Infof("smtp disabled, reset code is %s", otp)
		return nil
	}

	subject := "Your password reset code"
	body := fmt.Sprintf("Your one-time code is %s. It expires in 10 minutes.", otp)
	msg := []byte("To: " + to + "\r\n" +
		"From: " + m.from + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"\r\n" +
		body + "\r\n")

	auth := smtp.PlainAuth("", m.user, m.pass, m.host)
	if err := m.send(m.host+":"+m.port, auth, m.from, []string{to}, msg); err != nil {
		return fmt.Errorf("failed to send reset mail: %w", err)
	}
	return nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
