// internal/pkg/telemetry/metrics.go
package telemetry

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_http_requests_total",
			Help: "Total number of HTTP requests served by the storefront",
		},
		[]string{"method", "endpoint", "status"},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "storefront_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	apiCallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_api_calls_total",
			Help: "Total number of calls made to the bakery API",
		},
		[]string{"endpoint", "outcome"},
	)

	checkoutRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_checkout_runs_total",
			Help: "Total number of checkout pipeline runs by outcome",
		},
		[]string{"outcome"},
	)

	paymentCallbacksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_payment_callbacks_total",
			Help: "Total number of payment gateway callbacks received",
		},
		[]string{"event"},
	)
)

func init() {
	prometheus.MustRegister(httpRequestsTotal)
	prometheus.MustRegister(httpRequestDuration)
	prometheus.MustRegister(apiCallsTotal)
	prometheus.MustRegister(checkoutRunsTotal)
	prometheus.MustRegister(paymentCallbacksTotal)
}

// ObserveHTTP records one served request
func ObserveHTTP(method, endpoint, status string, seconds float64) {
	httpRequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	httpRequestDuration.WithLabelValues(method, endpoint).Observe(seconds)
}

// RecordAPICall counts an outbound call; outcome is "ok" or an error kind
func RecordAPICall(endpoint, outcome string) {
	apiCallsTotal.WithLabelValues(endpoint, outcome).Inc()
}

func RecordCheckout(outcome string) {
	checkoutRunsTotal.WithLabelValues(outcome).Inc()
}

func RecordPaymentCallback(event string) {
	paymentCallbacksTotal.WithLabelValues(event).Inc()
}

// PrometheusHandler exposes the default registry
func PrometheusHandler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
