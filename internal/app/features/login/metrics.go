// internal/app/features/login/metrics.go
package login

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	outcomeSuccess   = "success"
	outcomeInvalid   = "invalid_input"
	outcomeThrottled = "rate_limited"
	outcomeNoTenant  = "no_tenant"
	outcomeBadCreds  = "bad_credentials"
	outcomeNotMember = "not_member"
	outcomeError     = "error"
)

// Metrics counts login attempts by outcome. A nil *Metrics records nothing.
type Metrics struct {
	attempts *prometheus.CounterVec
}

// NewMetrics registers the login collectors on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		attempts: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: "ovibase",
			Subsystem: "auth",
			Name:      "login_attempts_total",
			Help:      "Login attempts by outcome",
		}, []string{"outcome"}),
	}
}

func (m *Metrics) observe(outcome string) {
	if m == nil {
		return
	}
	m.attempts.WithLabelValues(outcome).Inc()
}
