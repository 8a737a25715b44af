// Package mail delivers outbound email over SMTP.
package mail

import (
	"context"
	"crypto/tls"
	"fmt"
	"strings"
	"time"

	"github.com/dealerhub/dealerhub/internal/common/config"
	gomail "github.com/go-mail/mail"
	"go.uber.org/zap"
)

// Message is a single outbound email
type Message struct {
	To      []string
	Subject string
	Text    string
	HTML    string
}

// Sender delivers messages
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// NewSender returns an SMTP sender when mail is enabled and a LogSender otherwise
func NewSender(cfg config.MailConfig, logger *zap.Logger) Sender {
	if logger == nil {
		logger = zap.NewNop()
	}
	if !cfg.Enabled {
		return NewLogSender(logger)
	}
	return &SMTPSender{
		Host:               cfg.Host,
		Port:               cfg.Port,
		From:               cfg.From,
		User:               cfg.Username,
		Pass:               cfg.Password,
		TLSMode:            cfg.TLSMode,
		InsecureSkipVerify: cfg.InsecureSkipVerify,
		Timeout:            cfg.Timeout,
		logger:             logger.Named("mail"),
	}
}

// SMTPSender implements Sender using SMTP
type SMTPSender struct {
	Host               string
	Port               int
	From               string
	User               string
	Pass               string
	TLSMode            string // auto, starttls, ssl, none
	InsecureSkipVerify bool
	Timeout            time.Duration

	logger *zap.Logger
}

// Send delivers msg with a text part and an optional HTML alternative
func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	if len(msg.To) == 0 {
		return fmt.Errorf("smtp send: no recipients")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.From)
	m.SetHeader("To", msg.To...)
	m.SetHeader("Subject", msg.Subject)
	switch {
	case msg.Text != "" && msg.HTML != "":
		m.SetBody("text/plain", msg.Text)
		m.AddAlternative("text/html", msg.HTML)
	case msg.HTML != "":
		m.SetBody("text/html", msg.HTML)
	default:
		m.SetBody("text/plain", msg.Text)
	}

	d := s.dialer()
	if deadline, ok := ctx.Deadline(); ok {
		if left := time.Until(deadline); left > 0 && (d.Timeout == 0 || left < d.Timeout) {
			d.Timeout = left
		}
	}

	if err := d.DialAndSend(m); err != nil {
		s.log().Warn("smtp send failed",
			zap.String("host", s.Host),
			zap.Int("port", s.Port),
			zap.String("to", strings.Join(msg.To, ",")),
			zap.Error(err))
		return fmt.Errorf("smtp send: %w", err)
	}
	s.log().Debug("email sent", zap.String("to", strings.Join(msg.To, ",")), zap.String("subject", msg.Subject))
	return nil
}

func (s *SMTPSender) dialer() *gomail.Dialer {
	d := gomail.NewDialer(s.Host, s.Port, s.User, s.Pass)
	d.TLSConfig = &tls.Config{
		ServerName:         s.Host,
		InsecureSkipVerify: s.InsecureSkipVerify,
	}
	if s.Timeout > 0 {
		d.Timeout = s.Timeout
	}
	switch s.TLSMode {
	case "ssl":
		d.SSL = true
	case "starttls":
		d.StartTLSPolicy = gomail.MandatoryStartTLS
	case "none":
		d.StartTLSPolicy = gomail.NoStartTLS
	default:
		d.StartTLSPolicy = gomail.OpportunisticStartTLS
	}
	return d
}

func (s *SMTPSender) log() *zap.Logger {
	if s.logger == nil {
		return zap.NewNop()
	}
	return s.logger
}

// LogSender writes messages to the log instead of sending them
type LogSender struct {
	logger *zap.Logger
}

// NewLogSender creates a sender for deployments without SMTP
func NewLogSender(logger *zap.Logger) *LogSender {
	return &LogSender{logger: logger.Named("mail")}
}

func (s *LogSender) Send(_ context.Context, msg Message) error {
	s.logger.Info("mail delivery disabled, message logged",
		zap.Strings("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.String("body", msg.Text))
	return nil
}
