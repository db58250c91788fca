package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all prometheus metrics
type Metrics struct {
	Assignments      *prometheus.CounterVec
	LogEdits         *prometheus.CounterVec
	AdviceRequests   *prometheus.CounterVec
	AdviceLatency    prometheus.Histogram
	EventsPublished  *prometheus.CounterVec
	WebsocketClients prometheus.Gauge
}

// NewMetrics registers the application metrics with reg
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Assignments: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "assignments_total",
			Help:      "Load assignment attempts by result",
		}, []string{"result"}),
		LogEdits: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "log_edits_total",
			Help:      "Log edit proposals and resolutions by action and result",
		}, []string{"action", "result"}),
		AdviceRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "advice_requests_total",
			Help:      "AI advice requests by result",
		}, []string{"result"}),
		AdviceLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "advice_latency_seconds",
			Help:      "Time taken by the text generation service",
			Buckets:   prometheus.DefBuckets,
		}),
		EventsPublished: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_published_total",
			Help:      "Domain events published by sink and result",
		}, []string{"sink", "result"}),
		WebsocketClients: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "websocket_clients",
			Help:      "Currently connected websocket clients",
		}),
	}
}

// NewTestMetrics registers against a private registry so tests can build
// as many instances as they like
func NewTestMetrics() *Metrics {
	return NewMetrics("test", prometheus.NewRegistry())
}

// Result labels
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)
