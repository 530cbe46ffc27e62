package mailer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ahmetcoskunkizilkaya/bizsite-backend/internal/metrics"
	"github.com/ahmetcoskunkizilkaya/bizsite-backend/internal/site"
	"golang.org/x/sync/errgroup"
)

// Notifier sends the transactional pair (submitter confirmation + operator
// notification) for public form submissions. Failures are logged and never
// returned: the submission has already been stored.
type Notifier struct {
	sender   Sender
	site     *site.Registry
	operator string
	timeout  time.Duration
}

func NewNotifier(sender Sender, registry *site.Registry, operatorEmail string) *Notifier {
	return &Notifier{
		sender:   sender,
		site:     registry,
		operator: operatorEmail,
		timeout:  30 * time.Second,
	}
}

type ContactNotice struct {
	Name       string
	Email      string
	Phone      string
	Service    string
	Message    string
	ReceivedAt time.Time
}

type ReviewNotice struct {
	Name       string
	Email      string
	Rating     int
	Category   string
	Text       string
	ImageCount int
}

type pageData struct {
	Subject      string
	BusinessName string
	Name         string
	Email        string
	Phone        string
	Service      string
	Message      string
	ReceivedAt   string
	Rating       int
	Category     string
	Text         string
	ImageCount   int
}

func (n *Notifier) ContactReceived(ctx context.Context, c ContactNotice) {
	business := n.site.BusinessName()
	data := pageData{
		BusinessName: business,
		Name:         c.Name,
		Email:        c.Email,
		Phone:        c.Phone,
		Service:      c.Service,
		Message:      c.Message,
		ReceivedAt:   c.ReceivedAt.Format("Jan 2, 2006 3:04 PM MST"),
	}

	confirm := data
	confirm.Subject = "We received your message - " + business
	notify := data
	notify.Subject = fmt.Sprintf("New contact from %s", c.Name)

	n.sendPair(ctx, "contact",
		n.build(TemplateContactConfirmation, confirm, c.Email, ""),
		n.build(TemplateContactNotification, notify, n.operator, c.Email),
	)
}

func (n *Notifier) ReviewSubmitted(ctx context.Context, r ReviewNotice) {
	business := n.site.BusinessName()
	data := pageData{
		BusinessName: business,
		Name:         r.Name,
		Email:        r.Email,
		Rating:       r.Rating,
		Category:     r.Category,
		Text:         r.Text,
		ImageCount:   r.ImageCount,
	}

	confirm := data
	confirm.Subject = "Thanks for your review - " + business
	notify := data
	notify.Subject = fmt.Sprintf("New %d-star review from %s", r.Rating, r.Name)

	n.sendPair(ctx, "review",
		n.build(TemplateReviewConfirmation, confirm, r.Email, ""),
		n.build(TemplateReviewNotification, notify, n.operator, r.Email),
	)
}

type pending struct {
	kind string
	msg  Message
	err  error
}

func (n *Notifier) build(tmpl string, data pageData, to, replyTo string) pending {
	p := pending{kind: tmpl}
	if to == "" {
		p.err = fmt.Errorf("no recipient for %s", tmpl)
		return p
	}
	html, err := Render(tmpl, data)
	if err != nil {
		p.err = err
		return p
	}
	p.msg = Message{To: []string{to}, ReplyTo: replyTo, Subject: data.Subject, HTML: html}
	return p
}

// sendPair sends the messages concurrently and waits for both. The caller's
// cancellation does not abort the sends.
func (n *Notifier) sendPair(ctx context.Context, form string, msgs ...pending) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), n.timeout)
	defer cancel()

	var g errgroup.Group
	for _, p := range msgs {
		g.Go(func() error {
			err := p.err
			if err == nil {
				err = n.sender.Send(ctx, p.msg)
			}
			metrics.EmailResult(p.kind, err)
			if err != nil {
				slog.Error("transactional email failed", "form", form, "template", p.kind, "error", err)
			}
			return nil
		})
	}
	g.Wait()
}
