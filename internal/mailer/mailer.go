package mailer

import (
	"context"
	"fmt"
	"net/smtp"

	"clinical-records-backend/internal/config"
	"clinical-records-backend/internal/logger"
)

// Mailer delivers one credential email. Delivery is fire-and-forget from
// the caller's point of view; failures are logged, never surfaced.
type Mailer interface {
	SendCredentials(to, loginID, password string) error
}

// SMTPMailer sends credential mail over plain SMTP
type SMTPMailer struct {
	addr string
	auth smtp.Auth
	from string
}

func NewSMTPMailer(cfg config.SMTPConfig) *SMTPMailer {
	return &SMTPMailer{
		addr: cfg.Host + ":" + cfg.Port,
		auth: smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host),
		from: cfg.From,
	}
}

func (m *SMTPMailer) SendCredentials(to, loginID, password string) error {
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: Your Medical Record Login Credentials\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n"+
		"Dear user,\r\n\r\n"+
		"Here are your login credentials:\r\n\r\n"+
		"  User ID:  %s\r\n"+
		"  Password: %s\r\n\r\n"+
		"Please keep this information safe and do not share it with others.\r\n\r\n"+
		"Your Medical Records Team\r\n",
		m.from, to, loginID, password)

	return smtp.SendMail(m.addr, m.auth, m.from, []string{to}, []byte(msg))
}

// LogMailer is the no-SMTP fallback: it logs that a credential mail would
// have gone out without ever logging the password.
type LogMailer struct{}

func (LogMailer) SendCredentials(to, loginID, _ string) error {
	logger.WithField("to", to).WithField("login_id", loginID).
		Info("SMTP not configured, skipping credential mail")
	return nil
}

type credentialMail struct {
	to       string
	loginID  string
	password string
}

// Dispatcher queues credential emails and delivers them from a background
// worker so provisioning requests never block on SMTP.
type Dispatcher struct {
	mailer Mailer
	queue  chan credentialMail
}

func NewDispatcher(mailer Mailer) *Dispatcher {
	return &Dispatcher{
		mailer: mailer,
		queue:  make(chan credentialMail, 64),
	}
}

// Start runs the delivery loop until the context is cancelled
func (d *Dispatcher) Start(ctx context.Context) {
	logger.Log.Info("Credential mail dispatcher started")
	for {
		select {
		case <-ctx.Done():
			logger.Log.Info("Credential mail dispatcher stopped")
			return
		case mail := <-d.queue:
			if err := d.mailer.SendCredentials(mail.to, mail.loginID, mail.password); err != nil {
				logger.WithField("to", mail.to).WithField("error", err.Error()).
					Error("Failed to send credential mail")
			}
		}
	}
}

// Enqueue hands a credential mail to the background worker. A full queue
// drops the mail rather than blocking the provisioning request.
func (d *Dispatcher) Enqueue(to, loginID, password string) {
	select {
	case d.queue <- credentialMail{to: to, loginID: loginID, password: password}:
	default:
		logger.WithField("to", to).Warn("Credential mail queue full, dropping mail")
	}
}
