package observability

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"mosbookings/internal/domain"
)

var (
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "mosbookings", Name: "http_requests_total", Help: "Companion HTTP requests."},
		[]string{"route", "method", "status"},
	)
	HTTPLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "mosbookings", Name: "http_request_duration_seconds",
			Help:    "Companion HTTP request duration seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)
	ExternalRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "mosbookings", Name: "api_requests_total", Help: "Requests to the booking backend."},
		[]string{"op", "status"},
	)
	ExternalLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "mosbookings", Name: "api_request_duration_seconds",
			Help:    "Booking backend round trip seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"op"},
	)
	OperationFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "mosbookings", Name: "operation_failures_total", Help: "Failed facade operations by error kind."},
		[]string{"op", "kind"},
	)
	StoreEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "mosbookings", Name: "store_events_total", Help: "Local store loads/saves/clears."},
		[]string{"store", "event"}, // event: hit|miss|save|clear
	)
	ExportsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "mosbookings", Name: "report_exports_total", Help: "Generated report files."},
		[]string{"format"},
	)
)

// Serve exposes reg on addr in the background for the CLI tools. An empty
// addr disables it.
func Serve(reg *prometheus.Registry, addr string) {
	if addr == "" {
		return // disabled
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", MetricsHandler(reg))

	go func() {
		srv := &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
		log.Info().Str("addr", addr).Msg("metrics server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("metrics server failed")
		}
	}()
}

func InitRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(HTTPRequests, HTTPLatency, ExternalRequests, ExternalLatency,
		OperationFailures, StoreEvents, ExportsTotal)
	return reg
}

func MetricsHandler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

func ObserveHTTP(route, method string, status int, dur time.Duration) {
	HTTPRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	HTTPLatency.WithLabelValues(route, method).Observe(dur.Seconds())
}

// ObserveExternal records one backend round trip. status is 0 for transport failures.
func ObserveExternal(op string, status int, dur time.Duration) {
	ExternalRequests.WithLabelValues(op, strconv.Itoa(status)).Inc()
	ExternalLatency.WithLabelValues(op).Observe(dur.Seconds())
}

func ObserveFailure(op string, err error) {
	OperationFailures.WithLabelValues(op, LabelErr(err)).Inc()
}

func ObserveStore(store, event string) {
	StoreEvents.WithLabelValues(store, event).Inc()
}

func ObserveExport(format string) {
	ExportsTotal.WithLabelValues(format).Inc()
}

// LabelErr maps err onto a low-cardinality label.
func LabelErr(err error) string {
	if err == nil {
		return "none"
	}
	var ae *domain.APIError
	if errors.As(err, &ae) {
		return ae.Kind.String()
	}
	if errors.Is(err, domain.ErrNoSession) {
		return domain.KindNoSession.String()
	}
	return "other"
}
