package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"
)

type RouterOptions struct {
	UploadDir      string
	MaxRequestSize int64
	Limiter        RateLimiter
	RateRules      []RateRule
	TrustProxy     bool
}

func NewRouter(handler *Handler, opts RouterOptions) http.Handler {
	log := handler.logger()

	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(notFound)
	handler.RegisterRoutes(r)
	if opts.UploadDir != "" {
		files := http.StripPrefix("/uploads/", http.FileServer(http.Dir(opts.UploadDir)))
		r.PathPrefix("/uploads/").Handler(noListing(files)).Methods("GET", "HEAD")
	}

	var h http.Handler = r
	if opts.MaxRequestSize > 0 {
		h = limitBody(opts.MaxRequestSize, h)
	}
	if opts.Limiter != nil {
		rules := opts.RateRules
		if rules == nil {
			rules = DefaultRateRules()
		}
		h = RateLimitMiddleware(opts.Limiter, rules, opts.TrustProxy, log)(h)
	}
	h = handlers.CompressHandler(h)
	h = cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS", "HEAD"},
		AllowedHeaders: []string{"*"},
		ExposedHeaders: []string{"X-Request-ID", "Retry-After"},
	}).Handler(h)
	h = SecurityHeaders(h)
	return LoggingMiddleware(log)(h)
}

func notFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusNotFound, errorResponse{Message: "resource not found", Error: kindNotFound})
}

func noListing(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/") {
			notFound(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func limitBody(limit int64, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Body != nil {
			r.Body = http.MaxBytesReader(connWriter(w, r), r.Body, limit)
		}
		next.ServeHTTP(w, r)
	})
}

// StartServer serves until ctx is cancelled, then drains in-flight requests.
func StartServer(ctx context.Context, addr string, handler http.Handler, log logrus.FieldLogger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", addr).Info("ordering service starting")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
