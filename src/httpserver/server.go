// Package httpserver serves the MCP streamable HTTP transport, Prometheus
// metrics and a health check.
package httpserver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"jenkins-mcp/src/logger"
	"jenkins-mcp/src/metrics"
)

const gracefulShutdownTimeout = 5 * time.Second

// Server is an HTTP server with a chi router.
type Server struct {
	bindAddress string
	httpServer  *http.Server
	log         logger.Logger
}

// New builds a server on bindAddress. mcpHandler is mounted on /mcp when non-nil.
func New(bindAddress string, mcpHandler http.Handler, log logger.Logger) *Server {
	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.Recoverer,
		requestLogger(log),
	)

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("ok"))
	})
	router.Handle("/metrics", metrics.Handler())
	if mcpHandler != nil {
		router.Handle("/mcp", mcpHandler)
	}

	return &Server{
		bindAddress: bindAddress,
		log:         log,
		httpServer: &http.Server{
			Addr:              bindAddress,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.bindAddress)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.bindAddress, err)
	}
	return s.Serve(ctx, listener)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	go func() {
		<-ctx.Done()
		ctxTimeout, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
		defer cancel()

		s.httpServer.SetKeepAlivesEnabled(false)
		_ = s.httpServer.Shutdown(ctxTimeout)
		s.log.Info("http server on %s terminated", listener.Addr())
	}()

	s.log.Info("serving http on %s", listener.Addr())
	if err := s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// requestLogger logs one line per request. Health checks log at debug.
func requestLogger(log logger.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			defer func() {
				l := logger.With(log, "request_id", middleware.GetReqID(r.Context()))
				msg := "%s %s -> %d (%d bytes, %s)"
				args := []interface{}{r.Method, r.URL.Path, ww.Status(), ww.BytesWritten(), time.Since(start)}

				switch {
				case ww.Status() >= 500:
					l.Error(msg, args...)
				case ww.Status() >= 400:
					l.Warn(msg, args...)
				case r.URL.Path == "/healthz":
					l.Debug(msg, args...)
				default:
					l.Info(msg, args...)
				}
			}()

			next.ServeHTTP(ww, r)
		}
		return http.HandlerFunc(fn)
	}
}
