package observability

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"hotel_recommender/internal/domain"
)

var (
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "hotelrec", Name: "http_requests_total", Help: "HTTP requests."},
		[]string{"route", "method", "status"},
	)
	HTTPLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "hotelrec", Name: "http_request_duration_seconds",
			Help:    "HTTP request duration seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)
	ExternalRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "hotelrec", Name: "external_requests_total", Help: "Outbound requests."},
		[]string{"service", "endpoint", "status"},
	)
	ExternalLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "hotelrec", Name: "external_request_duration_seconds",
			Help:    "Outbound request duration seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"service", "endpoint"},
	)
	CacheEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "hotelrec", Name: "cache_events_total", Help: "Cache hits/misses/sets/dels."},
		[]string{"cache", "event"}, // event: hit|miss|set|del
	)
	Recommendations = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "hotelrec", Name: "recommendations_total", Help: "Recommend calls by outcome."},
		[]string{"outcome"},
	)
	RecommendLatency = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "hotelrec", Name: "recommend_duration_seconds",
			Help:    "Time spent transforming a preference and querying the index.",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 14),
		},
	)
	ModelCorpusSize = prometheus.NewGauge(
		prometheus.GaugeOpts{Namespace: "hotelrec", Name: "model_corpus_size", Help: "Records in the loaded model."},
	)
	FitDuration = prometheus.NewGauge(
		prometheus.GaugeOpts{Namespace: "hotelrec", Name: "model_fit_seconds", Help: "Duration of the last fit."},
	)
	ImportedRows = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "hotelrec", Name: "imported_rows_total", Help: "Booking rows written by the importer."},
		[]string{"status"},
	)
)

// Serve exposes reg on a separate listener. An empty addr disables it.
func Serve(addr string, reg *prometheus.Registry) {
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
	reg.MustRegister(HTTPRequests, HTTPLatency, ExternalRequests, ExternalLatency, CacheEvents,
		Recommendations, RecommendLatency, ModelCorpusSize, FitDuration, ImportedRows)
	return reg
}

func MetricsHandler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

func ObserveHTTP(route, method string, status int, dur time.Duration) {
	HTTPRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	HTTPLatency.WithLabelValues(route, method).Observe(dur.Seconds())
}

func ObserveExternal(service, endpoint string, status int, dur time.Duration) {
	ExternalRequests.WithLabelValues(service, endpoint, strconv.Itoa(status)).Inc()
	ExternalLatency.WithLabelValues(service, endpoint).Observe(dur.Seconds())
}

func ObserveCache(cache, event string) { // event: hit|miss|set|del
	CacheEvents.WithLabelValues(cache, event).Inc()
}

func ObserveRecommend(err error, dur time.Duration) {
	Recommendations.WithLabelValues(LabelErr(err)).Inc()
	RecommendLatency.Observe(dur.Seconds())
}

func ObserveFit(corpus int, dur time.Duration) {
	ModelCorpusSize.Set(float64(corpus))
	FitDuration.Set(dur.Seconds())
}

func ObserveImport(status string, n int) {
	ImportedRows.WithLabelValues(status).Add(float64(n))
}

// LabelErr maps an error to a low-cardinality label.
func LabelErr(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrInvalidParameter):
		return "invalid_parameter"
	case errors.Is(err, domain.ErrSchemaMismatch):
		return "schema_mismatch"
	case errors.Is(err, domain.ErrModelNotFitted):
		return "model_not_fitted"
	case errors.Is(err, domain.ErrInputNotFound):
		return "input_not_found"
	}
	return "error"
}
