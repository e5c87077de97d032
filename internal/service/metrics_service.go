package service

import (
	"fmt"
	"net/http"
	"runtime"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/noah-isme/lms-admin-api/internal/models"
)

// MetricsService encapsulates Prometheus instrumentation for HTTP traffic and
// rule-engine outcomes. All methods are safe on a nil receiver.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	holdDecisions   *prometheus.CounterVec
	leaveDecisions  *prometheus.CounterVec
	txRetries       *prometheus.CounterVec
	alerts          *prometheus.CounterVec
	notifications   *prometheus.CounterVec
}

// NewMetricsService registers core Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	holdDecisions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "course_hold_decisions_total",
		Help: "Course hold approvals and rejections, split by whether they changed state",
	}, []string{"status", "applied"})

	leaveDecisions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "leave_decisions_total",
		Help: "Processed leave requests by action",
	}, []string{"action"})

	txRetries := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_tx_retries_total",
		Help: "Transactions retried after lock contention",
	}, []string{"operation"})

	alerts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "attendance_alerts_total",
		Help: "Attendance alerts raised by kind",
	}, []string{"kind"})

	notifications := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "notifications_total",
		Help: "Notification deliveries by outcome",
	}, []string{"outcome"})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, holdDecisions, leaveDecisions, txRetries, alerts, notifications, goroutines)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		holdDecisions:   holdDecisions,
		leaveDecisions:  leaveDecisions,
		txRetries:       txRetries,
		alerts:          alerts,
		notifications:   notifications,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// RecordHoldDecision counts an approve or reject call.
func (m *MetricsService) RecordHoldDecision(status models.HoldStatus, applied bool) {
	if m == nil {
		return
	}
	m.holdDecisions.WithLabelValues(string(status), strconv.FormatBool(applied)).Inc()
}

// RecordLeaveDecision counts a processed leave request.
func (m *MetricsService) RecordLeaveDecision(action models.LeaveAction) {
	if m == nil {
		return
	}
	m.leaveDecisions.WithLabelValues(string(action)).Inc()
}

// RecordTxRetry counts a transaction retried after contention.
func (m *MetricsService) RecordTxRetry(operation string) {
	if m == nil {
		return
	}
	m.txRetries.WithLabelValues(operation).Inc()
}

// RecordAlert counts an attendance alert.
func (m *MetricsService) RecordAlert(kind models.NotificationKind) {
	if m == nil {
		return
	}
	m.alerts.WithLabelValues(string(kind)).Inc()
}

// RecordNotification counts a delivery outcome: delivered, failed or dropped.
func (m *MetricsService) RecordNotification(outcome string) {
	if m == nil {
		return
	}
	m.notifications.WithLabelValues(outcome).Inc()
}
