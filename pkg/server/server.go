package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nullwave/audiograph/pkg/editproto"
	"github.com/nullwave/audiograph/pkg/engine"
	"github.com/nullwave/audiograph/pkg/health"
	"github.com/nullwave/audiograph/pkg/logging"
	"github.com/nullwave/audiograph/pkg/telemetry"
	"github.com/nullwave/audiograph/pkg/types"
)

// Config holds server configuration.
type Config struct {
	// Address to listen on (e.g., ":8080")
	Address string

	// ReadTimeout for HTTP requests
	ReadTimeout time.Duration

	// WriteTimeout for HTTP responses
	WriteTimeout time.Duration

	// ShutdownTimeout for graceful shutdown
	ShutdownTimeout time.Duration

	// EditTimeout bounds how long handleEdit waits for the generator to
	// reply to a submitted command before giving up.
	EditTimeout time.Duration

	// MaxRequestBodySize limits request body size
	MaxRequestBodySize int64

	// EnableCORS enables CORS headers
	EnableCORS bool
}

// DefaultConfig returns default server configuration.
func DefaultConfig() Config {
	return Config{
		Address:            ":8080",
		ReadTimeout:        30 * time.Second,
		WriteTimeout:       30 * time.Second,
		ShutdownTimeout:    10 * time.Second,
		EditTimeout:        5 * time.Second,
		MaxRequestBodySize: 1 << 20, // 1MB, comfortably larger than any single edit command
		EnableCORS:         true,
	}
}

// Server is the HTTP control-plane surface over an Engine (§6.2, §6.4): it
// turns a request body into a submitted edit command and waits for the
// generator's reply, and exposes the topology snapshot, health, and metrics
// endpoints. The real-time audio path (§6.1) never touches this server; only
// the Engine's Ring does, handed to the host audio adapter directly.
type Server struct {
	config            Config
	engine            *engine.Engine
	healthChecker     *health.Checker
	telemetryProvider *telemetry.Provider
	logger            *logging.Logger
	httpServer        *http.Server
}

// New creates a server fronting eng. It registers a telemetry provider and
// observer on eng as a side effect, so callers should not also call
// eng.WithTelemetry themselves.
func New(config Config, eng *engine.Engine) (*Server, error) {
	logger := logging.New(logging.DefaultConfig())

	telemetryProvider, err := telemetry.NewProvider(context.Background(), telemetry.DefaultConfig())
	if err != nil {
		return nil, fmt.Errorf("server: create telemetry provider: %w", err)
	}
	eng.WithTelemetry(telemetryProvider)
	eng.RegisterObserver(telemetry.NewTelemetryObserver(telemetryProvider))

	healthChecker := health.NewChecker("audiograph-engine", "0.1.0")
	healthChecker.RegisterCheck("ring", func(ctx context.Context) error {
		// The generator loop owns the ring exclusively; there is nothing
		// this process can probe about its own goroutine's liveness
		// beyond "the server is still able to answer HTTP requests".
		return nil
	}, 5*time.Second, true)

	s := &Server{
		config:            config,
		engine:            eng,
		healthChecker:     healthChecker,
		telemetryProvider: telemetryProvider,
		logger:            logger,
	}

	mux := http.NewServeMux()
	s.registerRoutes(mux)

	s.httpServer = &http.Server{
		Addr:         config.Address,
		Handler:      s.middlewareChain(mux),
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
	}

	return s, nil
}

func (s *Server) registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/health", s.healthChecker.HTTPHandler())
	mux.HandleFunc("/health/live", s.healthChecker.LivenessHandler())
	mux.HandleFunc("/health/ready", s.healthChecker.ReadinessHandler())

	mux.Handle("/metrics", promhttp.Handler())

	mux.HandleFunc("/api/v1/edit", s.handleEdit)
	mux.HandleFunc("/api/v1/snapshot", s.handleSnapshot)
}

func (s *Server) middlewareChain(handler http.Handler) http.Handler {
	if s.config.EnableCORS {
		handler = s.corsMiddleware(handler)
	}
	handler = s.loggingMiddleware(handler)
	handler = s.recoveryMiddleware(handler)
	return handler
}

// handleEdit decodes one edit command from the request body, submits it to
// the engine, and waits for the generator's reply (§6.2). Each request is
// treated as its own control-plane connection: this collapses the spec's
// persistent-connection, many-commands-per-connection model down to one
// command per HTTP request, which is sufficient to exercise edit
// arbitration and the Ok/Err taxonomy without a stateful transport.
func (s *Server) handleEdit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.config.MaxRequestBodySize)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		s.writeErrorResponse(w, http.StatusBadRequest, "failed to read request body", err)
		return
	}

	connID := types.NewConnectionID()
	cmd, err := editproto.Decode(connID, body)
	if err != nil {
		s.writeErrorResponse(w, http.StatusBadRequest, "malformed edit command", err)
		return
	}

	replies := s.engine.Subscribe(connID)
	defer s.engine.Unsubscribe(connID)

	if err := s.engine.Submit(cmd); err != nil {
		s.writeErrorResponse(w, http.StatusServiceUnavailable, "engine rejected command", err)
		return
	}

	select {
	case reply := <-replies:
		s.writeReply(w, reply)
	case <-time.After(s.config.EditTimeout):
		http.Error(w, "timed out waiting for generator reply", http.StatusGatewayTimeout)
	}
}

// handleSnapshot returns the current topology as Graphviz DOT (§4.1, §6.4).
func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	dot, err := s.engine.Snapshot()
	if err != nil {
		s.writeErrorResponse(w, http.StatusInternalServerError, "failed to produce snapshot", err)
		return
	}
	w.Header().Set("Content-Type", "text/vnd.graphviz")
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, dot)
}

func (s *Server) writeReply(w http.ResponseWriter, reply editproto.Reply) {
	encoded, err := reply.Encode()
	if err != nil {
		s.logger.WithError(err).Error("failed to encode reply")
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	statusCode := http.StatusOK
	if reply.Type == editproto.ReplyErr {
		statusCode = http.StatusUnprocessableEntity
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	w.Write(encoded)
}

func (s *Server) writeErrorResponse(w http.ResponseWriter, statusCode int, message string, err error) {
	s.logger.WithError(err).WithField("status_code", statusCode).Error(message)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]string{
		"error":   message,
		"details": err.Error(),
	})
}

// Start starts the HTTP server. Blocks until Shutdown is called.
func (s *Server) Start() error {
	s.logger.WithField("address", s.config.Address).Info("starting server")
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server: listen: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the HTTP server and telemetry provider. It
// does not shut down the Engine; callers own that lifecycle separately.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down server")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server: shutdown http server: %w", err)
	}
	if err := s.telemetryProvider.Shutdown(ctx); err != nil {
		return fmt.Errorf("server: shutdown telemetry: %w", err)
	}
	s.logger.Info("server shutdown complete")
	return nil
}

func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)
		s.logger.WithFields(map[string]interface{}{
			"method":      r.Method,
			"path":        r.URL.Path,
			"status_code": rw.statusCode,
			"duration_ms": time.Since(start).Milliseconds(),
			"remote_addr": r.RemoteAddr,
		}).Info("http request")
	})
}

func (s *Server) recoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				s.logger.WithField("error", fmt.Sprintf("%v", err)).
					WithField("path", r.URL.Path).
					Error("panic recovered")
				http.Error(w, "internal server error", http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
