package metrics

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	FormSubmissions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bizsite_form_submissions_total",
		Help: "Public form submissions by form and outcome.",
	}, []string{"form", "outcome"})

	ModerationActions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bizsite_moderation_actions_total",
		Help: "Review submission moderation actions.",
	}, []string{"action"})

	EmailsSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bizsite_emails_total",
		Help: "Outbound emails by kind and result.",
	}, []string{"kind", "result"})

	Uploads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bizsite_uploads_total",
		Help: "Stored media uploads by folder.",
	}, []string{"folder"})
)

// Handler exposes the default registry in Prometheus text format.
func Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}

func EmailResult(kind string, err error) {
	result := "sent"
	if err != nil {
		result = "failed"
	}
	EmailsSent.WithLabelValues(kind, result).Inc()
}
