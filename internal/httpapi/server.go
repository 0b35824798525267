// Package httpapi implements the JSON HTTP surface documented in spec.md
// §6: zone/partition listing, arm/disarm/bypass commands, user PIN
// management, and the long-poll /events endpoint. Handlers read the shared
// panel.Registry directly and mutate state only via controller Enqueue*
// methods, per spec.md §4.5.
//
// The option-struct construction and graceful-Shutdown lifecycle mirror
// internal/server/server.go; gorilla/mux replaces the teacher's raw TCP
// framing server for path-parameter routing (/zones/{n}, /users/{n}),
// since the wire format here is JSON-over-HTTP rather than a framed
// client protocol.
package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/nx584/panelgw/internal/eventqueue"
	"github.com/nx584/panelgw/internal/metrics"
	"github.com/nx584/panelgw/internal/panel"
	"github.com/rs/xid"
)

// Version is reported by GET /version.
const Version = "1.1"

// controllerAPI is the subset of *controller.Controller the HTTP layer
// needs; defined locally so tests can supply a fake without importing
// internal/controller.
type controllerAPI interface {
	Registry() *panel.Registry
	Events() *eventqueue.Queue
	EnqueueArm(kind string, partitionNumber int) bool
	EnqueueDisarm(pin4 [4]int, partitionNumber int)
	EnqueueZoneBypassToggle(zoneNumber int)
	EnqueueUserInfoRequest(masterPin [6]int, userNumber int)
	EnqueueSetUserCode(masterPin [6]int, userNumber int, userPin [6]int)
	PendingOutbound() int
}

// Server owns the HTTP listener for the panel API.
type Server struct {
	addr       string
	controller controllerAPI
	logger     *slog.Logger
	httpServer *http.Server

	defaultEventTimeout time.Duration
}

type Option func(*Server)

func WithListenAddr(addr string) Option { return func(s *Server) { s.addr = addr } }
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}
func WithDefaultEventTimeout(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.defaultEventTimeout = d
		}
	}
}

// NewServer constructs a Server bound to controller c; Start actually
// opens the listener.
func NewServer(c controllerAPI, opts ...Option) *Server {
	s := &Server{
		controller:          c,
		addr:                ":9430",
		logger:              slog.Default(),
		defaultEventTimeout: 30 * time.Second,
	}
	for _, o := range opts {
		o(s)
	}
	s.httpServer = &http.Server{Addr: s.addr, Handler: s.routes()}
	return s
}

func (s *Server) routes() http.Handler {
	r := mux.NewRouter()
	r.Use(s.requestIDMiddleware)
	r.HandleFunc("/zones", s.handleListZones).Methods(http.MethodGet)
	r.HandleFunc("/zones/{n}", s.handlePutZone).Methods(http.MethodPut)
	r.HandleFunc("/partitions", s.handleListPartitions).Methods(http.MethodGet)
	r.HandleFunc("/command", s.handleCommand).Methods(http.MethodGet)
	r.HandleFunc("/users/{n}", s.handleGetUser).Methods(http.MethodGet)
	r.HandleFunc("/users/{n}", s.handlePutUser).Methods(http.MethodPut)
	r.HandleFunc("/events", s.handleEvents).Methods(http.MethodGet)
	r.HandleFunc("/version", s.handleVersion).Methods(http.MethodGet)
	return r
}

type requestIDKey struct{}

func (s *Server) requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := xid.New().String()
		ctx := context.WithValue(r.Context(), requestIDKey{}, id)
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r.WithContext(ctx))
		s.logger.Debug("http_request",
			"request_id", id, "method", r.Method, "path", r.URL.Path,
			"status", rec.status, "duration", time.Since(start))
		metrics.HTTPRequests.WithLabelValues(r.URL.Path, statusClass(rec.status)).Inc()
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

func statusClass(code int) string {
	switch {
	case code >= 500:
		return "5xx"
	case code >= 400:
		return "4xx"
	case code >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}

// Start runs ListenAndServe in a background goroutine; errors other than
// server-closed are logged.
func (s *Server) Start() {
	go func() {
		s.logger.Info("httpapi_listen", "addr", s.addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error("httpapi_error", "error", err)
		}
	}()
}

// Shutdown gracefully stops the HTTP listener.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
