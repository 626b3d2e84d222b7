// internal/app/system/sms/metrics.go
package sms

import (
	"time"

	"github.com/ovibase/ovibase/internal/domain/models"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts dispatch outcomes. A nil *Metrics records nothing.
type Metrics struct {
	messages *prometheus.CounterVec
	batches  *prometheus.HistogramVec
}

// NewMetrics registers the SMS collectors on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		messages: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ovibase",
			Subsystem: "sms",
			Name:      "messages_total",
			Help:      "SMS messages by provider and outcome",
		}, []string{"provider", "status"}),
		batches: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "ovibase",
			Subsystem: "sms",
			Name:      "batch_duration_seconds",
			Help:      "Wall time of one SMS batch",
			Buckets:   prometheus.DefBuckets,
		}, []string{"provider"}),
	}
}

// RecordBatch records one finished batch.
func (m *Metrics) RecordBatch(provider models.SmsProviderKind, sent, failed int, took time.Duration) {
	if m == nil {
		return
	}
	p := string(provider)
	m.messages.WithLabelValues(p, string(models.SmsSent)).Add(float64(sent))
	m.messages.WithLabelValues(p, string(models.SmsFailed)).Add(float64(failed))
	m.batches.WithLabelValues(p).Observe(took.Seconds())
}
