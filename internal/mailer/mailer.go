// Package mailer sends HTML email over SMTP.
package mailer

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"time"

	"github.com/ahmetcoskunkizilkaya/bizsite-backend/internal/config"
	mail "github.com/go-mail/mail/v2"
)

var ErrNotConfigured = errors.New("smtp not configured (SMTP_HOST/SMTP_FROM)")

// Inline is an image embedded in the message body and referenced from the
// HTML as cid:<Name>.
type Inline struct {
	Name string
	Path string
}

type Message struct {
	To      []string
	ReplyTo string
	Subject string
	HTML    string
	Inline  []Inline
}

type Sender interface {
	Send(ctx context.Context, msg Message) error
}

type SMTPSender struct {
	dialer *mail.Dialer
	from   string
}

func NewSMTPSender(cfg *config.Config) *SMTPSender {
	d := mail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass)
	d.StartTLSPolicy = mail.MandatoryStartTLS
	if cfg.SMTPPort == 465 {
		d.SSL = true
		d.StartTLSPolicy = mail.NoStartTLS
	}
	d.TLSConfig = &tls.Config{
		ServerName:         cfg.SMTPHost,
		InsecureSkipVerify: cfg.SMTPSkipTLSVerify,
	}
	d.Timeout = 20 * time.Second
	return &SMTPSender{dialer: d, from: cfg.SMTPFrom}
}

func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	if len(msg.To) == 0 {
		return errors.New("message has no recipients")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	m := mail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", msg.To...)
	if msg.ReplyTo != "" {
		m.SetHeader("Reply-To", msg.ReplyTo)
	}
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/html", msg.HTML)
	for _, img := range msg.Inline {
		m.Embed(img.Path, mail.Rename(img.Name))
	}

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("smtp send to %v: %w", msg.To, err)
	}
	return nil
}

// Unconfigured fails every send. Used when SMTP settings are absent so
// best-effort paths log instead of silently dropping mail.
type Unconfigured struct{}

func (Unconfigured) Send(context.Context, Message) error { return ErrNotConfigured }
