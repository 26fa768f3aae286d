package metrics

import (
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	promptsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "prompt_agent_prompts_total",
		Help: "Total number of free-text prompts processed by outcome",
	}, []string{"outcome"})

	promptDurationSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "prompt_agent_prompt_duration_seconds",
		Help:    "Time from prompt receipt to dispatch, including model calls",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 4, 8, 15, 30, 60},
	}, []string{"outcome"})

	resolveFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "prompt_agent_resolve_failures_total",
		Help: "Resolution calls that produced no usable action, by failure kind",
	}, []string{"kind"})

	navigationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "prompt_agent_navigations_total",
		Help: "Image navigation requests by action and result",
	}, []string{"action", "result"})
)

// RecordPrompt records one processed prompt and its latency.
func RecordPrompt(outcome string, latency time.Duration) {
	label := normalizeOutcomeLabel(outcome)
	promptsTotal.WithLabelValues(label).Inc()
	promptDurationSeconds.WithLabelValues(label).Observe(latency.Seconds())
}

// RecordResolveFailure counts a resolution that ended without an action.
func RecordResolveFailure(kind string) {
	resolveFailuresTotal.WithLabelValues(normalizeKindLabel(kind)).Inc()
}

// RecordNavigation counts one navigation attempt.
func RecordNavigation(action string, ok bool) {
	result := "ok"
	if !ok {
		result = "error"
	}
	navigationsTotal.WithLabelValues(normalizeActionLabel(action), result).Inc()
}

func normalizeOutcomeLabel(outcome string) string {
	switch strings.ToLower(strings.TrimSpace(outcome)) {
	case "dispatched", "unknown_action", "unhandled", "absent", "dispatch_failed":
		return strings.ToLower(strings.TrimSpace(outcome))
	default:
		return "other"
	}
}

func normalizeKindLabel(kind string) string {
	switch k := strings.ToLower(strings.TrimSpace(kind)); k {
	case "gateway_service", "gateway_transport", "gateway_disabled", "no_json", "malformed_json", "field_missing", "field_type":
		return k
	default:
		return "other"
	}
}

func normalizeActionLabel(action string) string {
	switch a := strings.ToLower(strings.TrimSpace(action)); a {
	case "load_next_image", "load_previous_image":
		return a
	default:
		return "other"
	}
}
