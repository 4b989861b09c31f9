package server

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	imported prometheus.Counter
	exported *prometheus.CounterVec
}

func newMetrics(reg prometheus.Registerer) *metrics {
	f := promauto.With(reg)
	return &metrics{
		requests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "acctdesk_http_requests_total",
			Help: "Requests handled, by route and status code.",
		}, []string{"route", "code"}),
		duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "acctdesk_http_request_duration_seconds",
			Help:    "Request handling time by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		imported: f.NewCounter(prometheus.CounterOpts{
			Name: "acctdesk_accounts_imported_total",
			Help: "Accounts created from uploaded files.",
		}),
		exported: f.NewCounterVec(prometheus.CounterOpts{
			Name: "acctdesk_accounts_exported_total",
			Help: "Accounts written to exports, by format.",
		}, []string{"format"}),
	}
}

func (m *metrics) observe(route string, status int, elapsed time.Duration) {
	m.requests.WithLabelValues(route, strconv.Itoa(status)).Inc()
	m.duration.WithLabelValues(route).Observe(elapsed.Seconds())
}
