package mailing

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ahmetcoskunkizilkaya/bizsite-backend/internal/apperr"
	"github.com/ahmetcoskunkizilkaya/bizsite-backend/internal/mailer"
	"github.com/ahmetcoskunkizilkaya/bizsite-backend/internal/metrics"
	"github.com/ahmetcoskunkizilkaya/bizsite-backend/internal/services"
	"github.com/ahmetcoskunkizilkaya/bizsite-backend/internal/site"
	"github.com/ahmetcoskunkizilkaya/bizsite-backend/internal/validation"
)

const (
	entityEmail   = "email"
	maxRecipients = 500
)

var ErrNoRecipients = apperr.Invalid("recipients", "no recipients to send to")

// RecipientSource supplies the default broadcast audience.
type RecipientSource interface {
	Recipients(ctx context.Context) ([]string, error)
}

// EmailRequest is an operator-composed message. HTML may reference inline
// images as cid:<filename>.
type EmailRequest struct {
	To         string   `json:"to" form:"to"`
	Recipients []string `json:"recipients" form:"recipients"`
	Subject    string   `json:"subject" form:"subject" validate:"required,max=200"`
	Heading    string   `json:"heading" form:"heading" validate:"max=200"`
	HTML       string   `json:"html" form:"html" validate:"required"`
}

type MailingService struct {
	sender   mailer.Sender
	site     *site.Registry
	audit    *services.AuditService
	audience RecipientSource
}

func NewMailingService(sender mailer.Sender, registry *site.Registry, audit *services.AuditService, audience RecipientSource) *MailingService {
	return &MailingService{sender: sender, site: registry, audit: audit, audience: audience}
}

func (s *MailingService) compose(req EmailRequest, inline []mailer.Inline) (mailer.Message, error) {
	if err := validation.Struct(req); err != nil {
		return mailer.Message{}, err
	}
	html, err := mailer.RenderAdminMessage(s.site.BusinessName(), req.Subject, req.Heading, req.HTML)
	if err != nil {
		return mailer.Message{}, err
	}
	return mailer.Message{Subject: req.Subject, HTML: html, Inline: inline}, nil
}

// Send delivers one message to req.To and reports the SMTP error, if any.
func (s *MailingService) Send(ctx context.Context, req EmailRequest, inline []mailer.Inline, ip string) error {
	to := strings.TrimSpace(req.To)
	if !validation.Email(to) {
		return apperr.Invalid("to", "must be a valid email address")
	}
	msg, err := s.compose(req, inline)
	if err != nil {
		return err
	}
	msg.To = []string{to}

	err = s.sender.Send(ctx, msg)
	metrics.EmailResult("admin_single", err)
	if err != nil {
		return fmt.Errorf("failed to send email to %s: %w", to, err)
	}

	s.audit.Record(ctx, services.AuditEntry{
		Action:     services.ActionSendEmail,
		EntityType: entityEmail,
		Details:    fmt.Sprintf("Sent %q to %s", req.Subject, to),
		IP:         ip,
	})
	return nil
}

// Broadcast sends to the explicit recipients, or to every active contact when
// none are given. Per-recipient failures are counted in the result.
func (s *MailingService) Broadcast(ctx context.Context, req EmailRequest, inline []mailer.Inline, ip string) (mailer.BroadcastResult, error) {
	msg, err := s.compose(req, inline)
	if err != nil {
		return mailer.BroadcastResult{}, err
	}

	recipients, err := s.resolve(ctx, req.Recipients)
	if err != nil {
		return mailer.BroadcastResult{}, err
	}

	result := mailer.Broadcast(ctx, s.sender, recipients, func(to string) mailer.Message {
		m := msg
		m.To = []string{to}
		return m
	})

	s.audit.Record(ctx, services.AuditEntry{
		Action:     services.ActionBroadcast,
		EntityType: entityEmail,
		Details:    fmt.Sprintf("Broadcast %q: %d sent, %d failed of %d", req.Subject, result.Sent, result.Failed, result.Total),
		IP:         ip,
	})
	return result, nil
}

func (s *MailingService) resolve(ctx context.Context, explicit []string) ([]string, error) {
	var list []string
	for _, entry := range explicit {
		list = append(list, SplitAddresses(entry)...)
	}
	if len(list) == 0 {
		if s.audience == nil {
			return nil, ErrNoRecipients
		}
		all, err := s.audience.Recipients(ctx)
		if err != nil {
			return nil, err
		}
		list = all
	}

	out := Dedupe(list)
	for _, addr := range out {
		if !validation.Email(addr) {
			return nil, apperr.Invalid("recipients", "%q is not a valid email address", addr)
		}
	}
	if len(out) == 0 {
		return nil, ErrNoRecipients
	}
	if len(out) > maxRecipients {
		return nil, apperr.Invalid("recipients", "at most %d recipients per broadcast", maxRecipients)
	}
	return out, nil
}

// SplitAddresses splits a comma, semicolon or newline separated list.
func SplitAddresses(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ';' || r == '\n' || r == '\r'
	})
	out := fields[:0]
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

// Dedupe drops repeated addresses, comparing case-insensitively and keeping
// the first spelling.
func Dedupe(addrs []string) []string {
	seen := make(map[string]bool, len(addrs))
	out := make([]string, 0, len(addrs))
	for _, a := range addrs {
		key := strings.ToLower(a)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, a)
	}
	return out
}

// IsNotConfigured reports a send that failed because SMTP is not set up.
func IsNotConfigured(err error) bool {
	return errors.Is(err, mailer.ErrNotConfigured)
}
