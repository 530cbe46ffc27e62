package mailer_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/bizsite-backend/internal/mailer"
	"github.com/ahmetcoskunkizilkaya/bizsite-backend/internal/mailer/mailertest"
	"github.com/ahmetcoskunkizilkaya/bizsite-backend/internal/site"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderEscapesFields(t *testing.T) {
	html, err := mailer.Render(mailer.TemplateContactNotification, map[string]any{
		"Subject":      "New contact",
		"BusinessName": "Sparkle Pros",
		"Name":         "<script>alert(1)</script>",
		"Email":        "a@b.c",
		"Message":      "hi",
		"ReceivedAt":   "now",
	})
	require.NoError(t, err)

	assert.Contains(t, html, "&lt;script&gt;")
	assert.NotContains(t, html, "<script>")
	assert.Contains(t, html, "Sparkle Pros")
}

func TestRenderUnknownTemplate(t *testing.T) {
	_, err := mailer.Render("nope", nil)
	assert.Error(t, err)
}

func TestBroadcastCountsFailures(t *testing.T) {
	rec := mailertest.NewRecorder("bad@example.com")
	recipients := []string{"a@example.com", "bad@example.com", "c@example.com"}

	result := mailer.Broadcast(context.Background(), rec, recipients, func(to string) mailer.Message {
		return mailer.Message{To: []string{to}, Subject: "Spring specials", HTML: "<p>hi</p>"}
	})

	assert.Equal(t, 2, result.Sent)
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, 3, result.Total)
	require.Len(t, result.Failures, 1)
	assert.Equal(t, "bad@example.com", result.Failures[0].Recipient)
	assert.Len(t, rec.Sent(), 2)
}

func TestBroadcastEmpty(t *testing.T) {
	result := mailer.Broadcast(context.Background(), mailertest.NewRecorder(), nil, nil)
	assert.Equal(t, mailer.BroadcastResult{}, result)
}

func TestNotifierContactReceived(t *testing.T) {
	rec := mailertest.NewRecorder()
	n := mailer.NewNotifier(rec, site.NewRegistry(site.Info{BusinessName: "Sparkle Pros"}), "owner@example.com")

	n.ContactReceived(context.Background(), mailer.ContactNotice{
		Name: "Jane", Email: "jane@example.com", Message: "Quote please", ReceivedAt: time.Now(),
	})

	confirm := rec.SentTo("jane@example.com")
	require.Len(t, confirm, 1)
	assert.True(t, strings.Contains(confirm[0].Subject, "Sparkle Pros"))

	notify := rec.SentTo("owner@example.com")
	require.Len(t, notify, 1)
	assert.Equal(t, "jane@example.com", notify[0].ReplyTo)
	assert.Contains(t, notify[0].HTML, "Quote please")
}

func TestNotifierSwallowsFailures(t *testing.T) {
	rec := mailertest.NewRecorder("jane@example.com")
	n := mailer.NewNotifier(rec, site.Default(), "owner@example.com")

	n.ReviewSubmitted(context.Background(), mailer.ReviewNotice{
		Name: "Jane", Email: "jane@example.com", Rating: 5, Category: "Cleaning",
	})

	assert.Len(t, rec.SentTo("owner@example.com"), 1, "operator mail still goes out")
}

func TestNotifierWithoutOperator(t *testing.T) {
	rec := mailertest.NewRecorder()
	n := mailer.NewNotifier(rec, site.Default(), "")

	n.ReviewSubmitted(context.Background(), mailer.ReviewNotice{Name: "Jane", Email: "jane@example.com", Rating: 4})

	assert.Len(t, rec.Sent(), 1)
}

func TestUnconfigured(t *testing.T) {
	assert.ErrorIs(t, mailer.Unconfigured{}.Send(context.Background(), mailer.Message{}), mailer.ErrNotConfigured)
}
