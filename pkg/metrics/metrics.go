package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "servibid_http_requests_total",
			Help: "Total number of HTTP requests by method, route and status",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "servibid_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// Realtime metrics
	ConnectedClients = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "servibid_ws_connected_clients",
			Help: "Number of connected push clients",
		},
	)

	EventsEmitted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "servibid_ws_events_emitted_total",
			Help: "Push events delivered to client send buffers by event type",
		},
		[]string{"event"},
	)

	EventsDropped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "servibid_ws_events_dropped_total",
			Help: "Push events dropped because a client buffer was full",
		},
		[]string{"event"},
	)

	// Domain metrics
	NotificationsCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "servibid_notifications_created_total",
			Help: "Notifications persisted by type",
		},
		[]string{"type"},
	)

	EmailsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "servibid_emails_total",
			Help: "Email send attempts by result",
		},
		[]string{"result"},
	)

	PaymentsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "servibid_payments_total",
			Help: "Payment recordings by result",
		},
		[]string{"result"},
	)
)

func init() {
	prometheus.MustRegister(HTTPRequestsTotal)
	prometheus.MustRegister(HTTPRequestDuration)
	prometheus.MustRegister(ConnectedClients)
	prometheus.MustRegister(EventsEmitted)
	prometheus.MustRegister(EventsDropped)
	prometheus.MustRegister(NotificationsCreated)
	prometheus.MustRegister(EmailsTotal)
	prometheus.MustRegister(PaymentsTotal)
}

// Handler returns the Prometheus HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}

// Timer measures elapsed time for a histogram observation.
type Timer struct {
	start time.Time
}

func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

func (t *Timer) ObserveDurationVec(histogram *prometheus.HistogramVec, labels ...string) {
	histogram.WithLabelValues(labels...).Observe(time.Since(t.start).Seconds())
}
