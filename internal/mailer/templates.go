package mailer

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	TemplateContactConfirmation = "contact_confirmation"
	TemplateContactNotification = "contact_notification"
	TemplateReviewConfirmation  = "review_confirmation"
	TemplateReviewNotification  = "review_notification"
	TemplateAdminMessage        = "admin_message"
)

var pages = mustParsePages(
	TemplateContactConfirmation,
	TemplateContactNotification,
	TemplateReviewConfirmation,
	TemplateReviewNotification,
	TemplateAdminMessage,
)

func mustParsePages(names ...string) map[string]*template.Template {
	layout := template.Must(template.ParseFS(templateFS, "templates/layout.html"))
	out := make(map[string]*template.Template, len(names))
	for _, name := range names {
		t := template.Must(layout.Clone())
		out[name] = template.Must(t.ParseFS(templateFS, "templates/"+name+".html"))
	}
	return out
}

// Render executes a page template inside the shared layout. data must expose
// Subject and BusinessName for the layout.
func Render(name string, data any) (string, error) {
	t, ok := pages[name]
	if !ok {
		return "", fmt.Errorf("unknown email template %q", name)
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout.html", data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return buf.String(), nil
}

type adminMessageData struct {
	Subject      string
	BusinessName string
	Heading      string
	Body         template.HTML
}

// RenderAdminMessage wraps operator-authored HTML in the shared layout. The
// body is trusted: only authenticated admins reach this path.
func RenderAdminMessage(business, subject, heading, body string) (string, error) {
	return Render(TemplateAdminMessage, adminMessageData{
		Subject:      subject,
		BusinessName: business,
		Heading:      heading,
		Body:         template.HTML(body),
	})
}
