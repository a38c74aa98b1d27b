// Package httpadapter serves health, metrics and the synchronous product
// generation API.
package httpadapter

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server exposes the operational routes and, with a generator, the /v1 API.
type Server struct {
	srv    *http.Server
	logger *slog.Logger
}

// NewServer builds the server. gen may be nil, in which case only /healthz,
// /readyz and /metrics are served.
func NewServer(addr string, ready sharedobs.ReadinessChecker, gen Generator, logger *slog.Logger) *Server {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(ready))
	mux.Handle("GET /metrics", promhttp.Handler())
	if gen != nil {
		mountAPI(mux, &productHandler{gen: gen, logger: logger}, &objectHandler{clock: clockwork.NewRealClock()}, logger)
	}

	return &Server{
		srv: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second, // generation with river lookups can be slow
			IdleTimeout:  60 * time.Second,
		},
		logger: logger,
	}
}

func mountAPI(mux *http.ServeMux, h *productHandler, objects *objectHandler, logger *slog.Logger) {
	routes := map[string]http.HandlerFunc{
		"POST /v1/products":               h.generate(false),
		"POST /v1/products/issue":         h.generate(true),
		"POST /v1/validate":               h.validate,
		"POST /v1/probabilistic/{action}": objects.apply,
	}
	for pattern, fn := range routes {
		mux.Handle(pattern, accessLog(logger, fn))
	}
}

// accessLog logs one line per API request.
func accessLog(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		level := slog.LevelInfo
		if rec.status >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		logger.Log(r.Context(), level, "api request",
			"method", r.Method, "path", r.URL.Path, "status", rec.status, "duration", time.Since(start))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Start listens until Shutdown, when it returns http.ErrServerClosed.
func (s *Server) Start() error {
	s.logger.Info("http server listening", "addr", s.srv.Addr)
	return s.srv.ListenAndServe()
}

// Shutdown drains open connections until ctx expires.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.srv.Handler.ServeHTTP(w, r)
}
