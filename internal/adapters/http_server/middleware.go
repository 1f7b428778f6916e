package httpserver

import (
	"context"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"hotel_recommender/internal/adapters/observability"
)

func Timeout(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler { return http.TimeoutHandler(next, d, "timeout") }
}

// ---- status-recording ResponseWriter ----

type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (w *statusRecorder) WriteHeader(code int) {
	if w.status == 0 {
		w.status = code
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusRecorder) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	n, err := w.ResponseWriter.Write(b)
	w.bytes += n
	return n, err
}

func (w *statusRecorder) Status() int {
	if w.status == 0 {
		return http.StatusOK
	}
	return w.status
}

// routeLabel is the chi pattern of the matched route. Unmatched paths share
// one label so scanners cannot blow up the metric cardinality.
func routeLabel(r *http.Request) string {
	if rc := chi.RouteContext(r.Context()); rc != nil {
		if p := rc.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}

// ---- per-request recommendation fields ----

// reqFields carries what a handler learned about the request up to the
// logging middleware.
type reqFields struct {
	modelID string
	k       int // 0: server default
	count   int
}

type reqFieldsKey struct{}

// annotate lets a handler add fields to the access log line of r.
func annotate(r *http.Request, fn func(*reqFields)) {
	if f, ok := r.Context().Value(reqFieldsKey{}).(*reqFields); ok {
		fn(f)
	}
}

// ---- Metrics middleware ----

func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusRecorder{ResponseWriter: w}
		next.ServeHTTP(sw, r)
		observability.ObserveHTTP(routeLabel(r), r.Method, sw.Status(), time.Since(start))
	})
}

// ---- Rate limiting middleware ----

// RateLimit sheds load above rps with 429 and a Retry-After hint. /healthz
// and /metrics are never limited.
func RateLimit(rps float64, burst int) func(http.Handler) http.Handler {
	if burst < 1 {
		burst = int(math.Max(1, math.Ceil(rps)))
	}
	lim := rate.NewLimiter(rate.Limit(rps), burst)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/healthz" || r.URL.Path == "/metrics" {
				next.ServeHTTP(w, r)
				return
			}
			res := lim.Reserve()
			if d := res.Delay(); d > 0 {
				res.Cancel()
				w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(d.Seconds()))))
				writeProblem(w, http.StatusTooManyRequests, "Too Many Requests", "request rate limit exceeded")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ---- Structured logging middleware ----

// Logger writes one access line per request. Recommendation requests also
// carry the model that answered, the requested k and the result count.
func Logger(l zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := &statusRecorder{ResponseWriter: w}
			f := &reqFields{}
			r = r.WithContext(context.WithValue(r.Context(), reqFieldsKey{}, f))
			next.ServeHTTP(sw, r)

			ev := l.Info()
			if sw.Status() >= http.StatusInternalServerError {
				ev = l.Error()
			}
			ev = ev.
				Str("request_id", chimw.GetReqID(r.Context())).
				Str("route", routeLabel(r)).
				Str("method", r.Method).
				Int("status", sw.Status()).
				Int("bytes", sw.bytes).
				Dur("duration", time.Since(start)).
				Str("remote", remoteIP(r))
			if f.modelID != "" {
				ev = ev.Str("model_id", f.modelID).Int("count", f.count)
			}
			if f.k > 0 {
				ev = ev.Int("k", f.k)
			}
			ev.Msg("http_request")
		})
	}
}

// Picks first X-Forwarded-For IP, else X-Real-IP, else RemoteAddr host.
func remoteIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.Split(xff, ",")
		return strings.TrimSpace(parts[0])
	}
	if xrip := r.Header.Get("X-Real-IP"); xrip != "" {
		return xrip
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && host != "" {
		return host
	}
	return r.RemoteAddr
}
