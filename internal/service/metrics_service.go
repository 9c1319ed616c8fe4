package service

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kelasku/kelasku-api/internal/models"
)

// MetricsService owns the Prometheus registry and the application counters.
type MetricsService struct {
	registry *prometheus.Registry

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec

	purchasesInitiated *prometheus.CounterVec
	purchasesCompleted *prometheus.CounterVec
	verifyFailures     prometheus.Counter
}

// NewMetricsService builds the registry with all collectors registered.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	s := &MetricsService{
		registry: registry,
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests by method, path and status.",
		}, []string{"method", "path", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency by method and path.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"}),
		purchasesInitiated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "purchases_initiated_total",
			Help: "Purchases initiated by purchase kind.",
		}, []string{"kind"}),
		purchasesCompleted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "purchases_completed_total",
			Help: "Purchases completed by purchase kind.",
		}, []string{"kind"}),
		verifyFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "payment_verification_failures_total",
			Help: "Payment callbacks rejected by signature verification.",
		}),
	}

	registry.MustRegister(s.httpRequests, s.httpDuration, s.purchasesInitiated, s.purchasesCompleted, s.verifyFailures)
	return s
}

// Handler exposes the registry for scraping.
func (s *MetricsService) Handler() http.Handler {
	return promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})
}

// ObserveHTTP records a finished HTTP request.
func (s *MetricsService) ObserveHTTP(method, path string, status int, duration time.Duration) {
	s.httpRequests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	s.httpDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// PurchaseInitiated counts an initiated purchase.
func (s *MetricsService) PurchaseInitiated(kind models.PurchaseKind) {
	s.purchasesInitiated.WithLabelValues(string(kind)).Inc()
}

// PurchaseCompleted counts a completed purchase.
func (s *MetricsService) PurchaseCompleted(kind models.PurchaseKind) {
	s.purchasesCompleted.WithLabelValues(string(kind)).Inc()
}

// VerificationFailed counts a rejected payment callback.
func (s *MetricsService) VerificationFailed() {
	s.verifyFailures.Inc()
}
