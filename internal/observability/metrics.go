package observability

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewMetricsRegistry creates a registry with Go and process collectors.
func NewMetricsRegistry() *prometheus.Registry {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return registry
}

type HTTPMetrics struct {
	registry    *prometheus.Registry
	inFlight    prometheus.Gauge
	reqTotal    *prometheus.CounterVec
	reqDuration *prometheus.HistogramVec
}

// NewHTTPMetrics registers the HTTP server metrics on registry
func NewHTTPMetrics(registry *prometheus.Registry, serviceName string) *HTTPMetrics {
	if registry == nil {
		registry = NewMetricsRegistry()
	}

	constLabels := prometheus.Labels{}
	if serviceName != "" {
		constLabels["service"] = serviceName
	}
	inFlight := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace:   "http",
		Subsystem:   "server",
		Name:        "in_flight_requests",
		Help:        "Number of in-flight HTTP requests.",
		ConstLabels: constLabels,
	})
	reqTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace:   "http",
		Subsystem:   "server",
		Name:        "requests_total",
		Help:        "Total number of HTTP requests.",
		ConstLabels: constLabels,
	}, []string{"method", "path", "status"})
	reqDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   "http",
		Subsystem:   "server",
		Name:        "request_duration_seconds",
		Help:        "HTTP request duration in seconds.",
		Buckets:     prometheus.DefBuckets,
		ConstLabels: constLabels,
	}, []string{"method", "path", "status"})

	registry.MustRegister(inFlight, reqTotal, reqDuration)

	return &HTTPMetrics{
		registry:    registry,
		inFlight:    inFlight,
		reqTotal:    reqTotal,
		reqDuration: reqDuration,
	}
}

// Handler exposes the registry in the Prometheus text format
func (m *HTTPMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Middleware records request counts and latency, labelled by route template
func (m *HTTPMetrics) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			m.inFlight.Inc()
			start := time.Now()
			err := next(c)
			m.inFlight.Dec()

			// Errors are rendered after the middleware chain returns, so take the
			// status from the error when there is one.
			status := c.Response().Status
			if err != nil {
				status = http.StatusInternalServerError
				var he *echo.HTTPError
				if errors.As(err, &he) {
					status = he.Code
				}
			}
			path := c.Path()
			if path == "" {
				path = c.Request().URL.Path
			}
			method := c.Request().Method
			statusLabel := strconv.Itoa(status)
			m.reqTotal.WithLabelValues(method, path, statusLabel).Inc()
			m.reqDuration.WithLabelValues(method, path, statusLabel).Observe(time.Since(start).Seconds())
			return err
		}
	}
}
