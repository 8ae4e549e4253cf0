package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

// noEngine labels requests that did not run a script.
const noEngine = "none"

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jsengine_http_requests_total",
			Help: "HTTP requests by route, status class and the engine that served them.",
		},
		[]string{"method", "route", "class", "engine"},
	)

	// Buckets reach past the default evaluation timeout.
	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "jsengine_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds by route and engine.",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 14),
		},
		[]string{"route", "engine"},
	)
)

func init() {
	prometheus.MustRegister(httpRequestsTotal, httpRequestDuration)
}

type engineLabelKey struct{}

// engineLabel is filled in by handlers that evaluate a script.
type engineLabel struct {
	name string
}

// labelEngine attributes the request to the named engine in HTTP metrics.
func labelEngine(r *http.Request, name string) {
	if l, ok := r.Context().Value(engineLabelKey{}).(*engineLabel); ok {
		l.name = name
	}
}

func metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		label := &engineLabel{name: noEngine}
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r.WithContext(context.WithValue(r.Context(), engineLabelKey{}, label)))

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		httpRequestsTotal.WithLabelValues(r.Method, route, statusClass(ww.Status()), label.name).Inc()
		httpRequestDuration.WithLabelValues(route, label.name).Observe(time.Since(start).Seconds())
	})
}

// statusClass maps a status code to "2xx", "4xx" and so on. A handler that
// never wrote a header answered 200.
func statusClass(code int) string {
	if code == 0 {
		code = http.StatusOK
	}
	return fmt.Sprintf("%dxx", code/100)
}
