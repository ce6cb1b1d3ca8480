// Package api exposes Prometheus metrics for the enrollbot service.
package api

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// chatTurnsTotal counts dialogue turns by the step the client submitted.
	chatTurnsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "enrollbot_chat_turns_total",
		Help: "Total chat turns processed, labeled by submitted step.",
	}, []string{"step"})

	// leadsCapturedTotal counts leads accepted via POST /api/leads.
	leadsCapturedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "enrollbot_leads_captured_total",
		Help: "Total leads captured.",
	})

	// freeformFallbacksTotal counts free-form turns answered with the static
	// fallback because the AI backend failed or timed out.
	freeformFallbacksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "enrollbot_freeform_fallbacks_total",
		Help: "Total free-form questions answered with the static fallback.",
	})

	// notifyFailuresTotal counts lead notifications that failed to deliver.
	notifyFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "enrollbot_notify_failures_total",
		Help: "Total lead notifications that failed.",
	})
)
