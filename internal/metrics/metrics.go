package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Refresh triggers
const (
	TriggerProactive = "proactive"
	TriggerReactive  = "reactive"
)

// Metrics counts session lifecycle events. A nil *Metrics is valid and records nothing.
type Metrics struct {
	RefreshAttempts    *prometheus.CounterVec
	RequestRetries     *prometheus.CounterVec
	SessionTransitions *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RefreshAttempts: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "session_client_refresh_attempts_total",
			Help: "Refresh-token exchanges issued, by trigger and result",
		}, []string{"trigger", "result"}),
		RequestRetries: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "session_client_request_retries_total",
			Help: "Requests retried after a 401, by outcome of the retry",
		}, []string{"result"}),
		SessionTransitions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "session_client_session_transitions_total",
			Help: "Session status transitions, by target status",
		}, []string{"status"}),
	}
}

func (m *Metrics) ObserveRefresh(trigger string, err error) {
	if m == nil {
		return
	}
	m.RefreshAttempts.WithLabelValues(trigger, result(err)).Inc()
}

func (m *Metrics) ObserveRetry(err error) {
	if m == nil {
		return
	}
	m.RequestRetries.WithLabelValues(result(err)).Inc()
}

func (m *Metrics) ObserveTransition(status string) {
	if m == nil {
		return
	}
	m.SessionTransitions.WithLabelValues(status).Inc()
}

func result(err error) string {
	if err != nil {
		return "failure"
	}
	return "success"
}
