package httpapi

import (
	"context"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"restaurant-ordering/ordering-svc/internal/storage"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type ctxKey int

const (
	loggerKey ctxKey = iota
	connWriterKey
)

func requestLogger(r *http.Request, fallback logrus.FieldLogger) logrus.FieldLogger {
	if entry, ok := r.Context().Value(loggerKey).(logrus.FieldLogger); ok {
		return entry
	}
	return fallback
}

// connWriter returns the ResponseWriter the server handed to the outermost
// middleware. http.MaxBytesReader can only mark the connection for closing
// through that writer, not through a wrapper.
func connWriter(w http.ResponseWriter, r *http.Request) http.ResponseWriter {
	if raw, ok := r.Context().Value(connWriterKey).(http.ResponseWriter); ok {
		return raw
	}
	return w
}

type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Write(b []byte) (int, error) {
	if s.status == 0 {
		s.status = http.StatusOK
	}
	n, err := s.ResponseWriter.Write(b)
	s.bytes += n
	return n, err
}

// LoggingMiddleware tags each request with an id and logs its outcome.
func LoggingMiddleware(log logrus.FieldLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			requestID := r.Header.Get("X-Request-ID")
			if requestID == "" {
				requestID = uuid.NewString()
			}
			w.Header().Set("X-Request-ID", requestID)

			entry := log.WithFields(logrus.Fields{
				"request_id": requestID,
				"method":     r.Method,
				"path":       r.URL.Path,
			})
			rec := &statusRecorder{ResponseWriter: w}

			defer func() {
				if p := recover(); p != nil {
					entry.WithField("panic", p).Error("handler panicked")
					if rec.status == 0 {
						writeJSON(rec, r, http.StatusInternalServerError, errorResponse{Message: "internal server error", Error: kindInternal})
					}
				}
				entry.WithFields(logrus.Fields{
					"status":   rec.status,
					"bytes":    rec.bytes,
					"duration": time.Since(start).String(),
				}).Info("request handled")
			}()

			ctx := context.WithValue(r.Context(), loggerKey, logrus.FieldLogger(entry))
			ctx = context.WithValue(ctx, connWriterKey, w)
			next.ServeHTTP(rec, r.WithContext(ctx))
		})
	}
}

type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (storage.RateDecision, error)
}

type RateRule struct {
	Name    string
	Prefix  string
	Limit   int
	Window  time.Duration
	Message string
}

// DefaultRateRules are checked together: a request under /api/orders counts
// against both its own rule and the general /api one.
func DefaultRateRules() []RateRule {
	return []RateRule{
		{Name: "orders", Prefix: "/api/orders", Limit: 200, Window: time.Minute, Message: "订单请求频率超限，请稍后再试"},
		{Name: "dishes", Prefix: "/api/dishes", Limit: 300, Window: time.Minute, Message: "菜品请求频率超限，请稍后再试"},
		{Name: "api", Prefix: "/api", Limit: 500, Window: 5 * time.Minute, Message: "请求频率超限，请稍后再试"},
	}
}

func (rule RateRule) matches(path string) bool {
	return path == rule.Prefix || strings.HasPrefix(path, rule.Prefix+"/")
}

// RateLimitMiddleware enforces per-IP fixed windows. Limiter errors let the
// request through. X-Forwarded-For is only read when trustProxy is set.
func RateLimitMiddleware(limiter RateLimiter, rules []RateRule, trustProxy bool, log logrus.FieldLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := clientIP(r, trustProxy)
			for _, rule := range rules {
				if !rule.matches(r.URL.Path) {
					continue
				}
				decision, err := limiter.Allow(r.Context(), rule.Name+":"+ip, rule.Limit, rule.Window)
				if err != nil {
					requestLogger(r, log).WithError(err).Warn("rate limiter unavailable")
					continue
				}
				w.Header().Set("RateLimit-Limit", strconv.Itoa(decision.Limit))
				w.Header().Set("RateLimit-Remaining", strconv.Itoa(decision.Remaining))
				if !decision.Allowed {
					retryAfter := int(math.Ceil(decision.RetryAfter.Seconds()))
					w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
					writeJSON(w, r, http.StatusTooManyRequests, map[string]any{
						"error":      "Too many requests",
						"message":    rule.Message,
						"retryAfter": retryAfter,
					})
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request, trustProxy bool) string {
	if trustProxy {
		if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
			first, _, _ := strings.Cut(fwd, ",")
			if ip := strings.TrimSpace(first); ip != "" {
				return ip
			}
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
