package metrics

import (
	"bufio"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "docsync",
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests received",
	}, []string{"method", "path", "status"})

	httpLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "docsync",
		Name:      "http_request_duration_seconds",
		Help:      "Duration of HTTP requests in seconds",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	// RoomsGauge tracks live in-memory rooms.
	RoomsGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "docsync",
		Name:      "session_rooms",
		Help:      "Current number of live document rooms",
	})

	// ConnectionsGauge tracks registered websocket connections.
	ConnectionsGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "docsync",
		Name:      "session_connections",
		Help:      "Current number of live connections",
	})

	// EditsTotal counts accepted content updates.
	EditsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "docsync",
		Name:      "session_edits_total",
		Help:      "Total number of accepted edit events",
	})

	// DeliveryFailures counts per-peer fan-out writes that were dropped.
	DeliveryFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "docsync",
		Name:      "session_delivery_failures_total",
		Help:      "Total number of broadcast deliveries dropped due to transport errors",
	})
)

type responseRecorder struct {
	http.ResponseWriter
	status int
}

func (r *responseRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *responseRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Hijack passes through so the websocket upgrade keeps working behind
// the middleware.
func (r *responseRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	if h, ok := r.ResponseWriter.(http.Hijacker); ok {
		return h.Hijack()
	}
	return nil, nil, errors.New("metrics: underlying ResponseWriter does not support hijacking")
}

// Middleware records request count and latency per route.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &responseRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r)

		labels := prometheus.Labels{
			"method": r.Method,
			"path":   r.URL.Path,
			"status": strconv.Itoa(rec.status),
		}
		httpRequests.With(labels).Inc()
		httpLatency.With(labels).Observe(time.Since(start).Seconds())
	})
}

// Handler exposes the Prometheus metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
