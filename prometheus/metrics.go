package prometheus

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Counter metrics
var (
	// Login counters
	LoginCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "pathosaathi_login_total",
			Help: "Total number of login attempts",
		},
	)

	// Token refresh counter
	RefreshCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "pathosaathi_token_refresh_total",
			Help: "Total number of token refresh attempts",
		},
	)

	// Tenant resolution counter by outcome
	TenantResolutionCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pathosaathi_tenant_resolutions_total",
			Help: "Total number of tenant resolutions by classification",
		},
		[]string{"kind"}, // "root_main", "root_fallback", "partner"
	)

	// Identifier generation counter by entity type
	IdentifierCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pathosaathi_identifiers_generated_total",
			Help: "Total number of business identifiers generated",
		},
		[]string{"entity"},
	)

	// Branding CSS render counter
	BrandingCSSCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "pathosaathi_branding_css_total",
			Help: "Total number of branding CSS renders",
		},
	)

	// HTTP request counter by endpoint and status
	HTTPRequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pathosaathi_http_requests_total",
			Help: "Total number of HTTP requests by endpoint and status",
		},
		[]string{"endpoint", "method", "status"},
	)

	// Error counters
	AuthErrorCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pathosaathi_auth_errors_total",
			Help: "Total number of authentication errors",
		},
		[]string{"type"}, // "invalid_credentials", "account_locked", "domain_mismatch", etc.
	)

	// Partner operation counter
	PartnerOperationCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pathosaathi_partner_operations_total",
			Help: "Total number of partner operations",
		},
		[]string{"operation"}, // "create", "update", "payment_status", etc.
	)
)

// Histogram metrics
var (
	// Request duration
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pathosaathi_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint", "method", "status"},
	)

	// Database operation duration
	DBOperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pathosaathi_db_operation_duration_seconds",
			Help:    "Duration of database operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"}, // "query", "insert", "update", "delete"
	)
)

// Gauge metrics
var (
	// Active sessions
	ActiveSessionsGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "pathosaathi_active_sessions",
			Help: "Number of currently active authentication sessions",
		},
	)

	// System info
	InfoGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "pathosaathi_info",
			Help: "Information about the backend service",
		},
		[]string{"version"},
	)
)

func init() {
	prometheus.MustRegister(LoginCounter)
	prometheus.MustRegister(RefreshCounter)
	prometheus.MustRegister(TenantResolutionCounter)
	prometheus.MustRegister(IdentifierCounter)
	prometheus.MustRegister(BrandingCSSCounter)
	prometheus.MustRegister(HTTPRequestCounter)
	prometheus.MustRegister(AuthErrorCounter)
	prometheus.MustRegister(PartnerOperationCounter)

	prometheus.MustRegister(RequestDuration)
	prometheus.MustRegister(DBOperationDuration)

	prometheus.MustRegister(ActiveSessionsGauge)
	prometheus.MustRegister(InfoGauge)

	InfoGauge.With(prometheus.Labels{"version": "1.0.0"}).Set(1)
}

// GetPrometheusHandler returns an HTTP handler for the Prometheus metrics
func GetPrometheusHandler() http.Handler {
	return promhttp.Handler()
}

// TrackDBOperation measures database operation durations
func TrackDBOperation(operation string) func(time.Time) {
	startTime := time.Now()
	return func(endTime time.Time) {
		duration := time.Since(startTime).Seconds()
		DBOperationDuration.With(prometheus.Labels{
			"operation": operation,
		}).Observe(duration)
	}
}

// MetricsMiddleware creates a middleware function that captures metrics for each request
func MetricsMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)

			duration := time.Since(start).Seconds()
			status := strconv.Itoa(c.Response().Status)
			endpoint := c.Path()
			method := c.Request().Method

			RequestDuration.With(prometheus.Labels{
				"endpoint": endpoint,
				"method":   method,
				"status":   status,
			}).Observe(duration)

			HTTPRequestCounter.With(prometheus.Labels{
				"endpoint": endpoint,
				"method":   method,
				"status":   status,
			}).Inc()

			return err
		}
	}
}

// RecordAuthError records an authentication error by type
func RecordAuthError(errorType string) {
	AuthErrorCounter.With(prometheus.Labels{"type": errorType}).Inc()
}

// RecordTenantResolution records a tenant resolution outcome
func RecordTenantResolution(kind string) {
	TenantResolutionCounter.With(prometheus.Labels{"kind": kind}).Inc()
}

// RecordIdentifier records a generated identifier by entity type
func RecordIdentifier(entity string) {
	IdentifierCounter.With(prometheus.Labels{"entity": entity}).Inc()
}

// RecordPartnerOperation records a partner operation
func RecordPartnerOperation(operation string) {
	PartnerOperationCounter.With(prometheus.Labels{"operation": operation}).Inc()
}
