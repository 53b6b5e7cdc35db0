package report

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/wneessen/go-mail"
)

const (
	// SenderName and SenderAddress form the From header.
	SenderName    = "Raw Honey Guide"
	SenderAddress = "sam@mycoffeeexplorer.com"

	// Recipient receives every run report.
	Recipient = "samfrench@gmail.com"
)

// ErrTemporary marks a delivery the relay rejected with a temporary (4xx)
// reply. A later attempt may succeed.
var ErrTemporary = errors.New("temporary delivery failure")

// MailerConfig holds SMTP settings. The SMTP login is always the sender address.
type MailerConfig struct {
	Host     string
	Port     int
	Password string
	Timeout  time.Duration
}

// Mailer sends reports over authenticated SMTP with mandatory STARTTLS.
type Mailer struct {
	config MailerConfig
	logger *slog.Logger
}

// NewMailer creates a new SMTP mailer.
func NewMailer(config MailerConfig, logger *slog.Logger) *Mailer {
	if config.Host == "" {
		config.Host = "smtp.gmail.com"
	}
	if config.Port == 0 {
		config.Port = 587
	}
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}
	return &Mailer{config: config, logger: logger}
}

// BuildMessage renders summary into a ready-to-send message.
func (m *Mailer) BuildMessage(summary Summary) (*mail.Msg, error) {
	body, err := Render(summary)
	if err != nil {
		return nil, err
	}

	msg := mail.NewMsg()
	if err := msg.FromFormat(SenderName, SenderAddress); err != nil {
		return nil, fmt.Errorf("invalid sender: %w", err)
	}
	if err := msg.To(Recipient); err != nil {
		return nil, fmt.Errorf("invalid recipient: %w", err)
	}
	msg.Subject(summary.Subject())
	msg.SetBodyString(mail.TypeTextHTML, body)
	return msg, nil
}

// Send renders and delivers one report.
func (m *Mailer) Send(ctx context.Context, summary Summary) error {
	msg, err := m.BuildMessage(summary)
	if err != nil {
		return err
	}

	client, err := mail.NewClient(m.config.Host,
		mail.WithPort(m.config.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(SenderAddress),
		mail.WithPassword(m.config.Password),
		mail.WithTLSPortPolicy(mail.TLSMandatory),
		mail.WithTimeout(m.config.Timeout),
	)
	if err != nil {
		return fmt.Errorf("failed to create smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return classifySendError(err)
	}

	m.logger.Info("report sent",
		"recipient", Recipient,
		"subject", summary.Subject(),
	)
	return nil
}

func classifySendError(err error) error {
	var sendErr *mail.SendError
	if errors.As(err, &sendErr) && sendErr.IsTemp() {
		return fmt.Errorf("failed to send report: %w: %w", ErrTemporary, err)
	}
	return fmt.Errorf("failed to send report: %w", err)
}
