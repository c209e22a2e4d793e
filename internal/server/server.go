// Package server exposes a live scene over HTTP: the current document can be
// read, replaced and queried, and scene events are streamed over websockets.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/salinityengine/salinity/internal/core/events/bus"
	"github.com/salinityengine/salinity/internal/core/observability/log"
)

type Config struct {
	Addr            string
	Token           string
	ReadTimeout     time.Duration
	ShutdownTimeout time.Duration
}

func DefaultConfig() Config {
	return Config{
		Addr:            "127.0.0.1:8080",
		ReadTimeout:     10 * time.Second,
		ShutdownTimeout: 5 * time.Second,
	}
}

// Server is the live inspector.
type Server struct {
	config Config
	live   *Live
	events bus.EventBus
	logger log.Log
	hub    *hub
	sub    bus.Subscription

	httpServer *http.Server
	listener   net.Listener

	running int32 // atomic bool
	closed  int32 // atomic bool
}

func NewServer(config Config, live *Live, events bus.EventBus, logger log.Log) (*Server, error) {
	if logger == nil {
		logger = log.NewNop()
	}
	if events == nil {
		events = bus.New()
	}
	logger = logger.With(log.String("component", "server"))

	s := &Server{
		config: config,
		live:   live,
		events: events,
		logger: logger,
		hub:    newHub(logger),
	}
	sub, err := events.Subscribe(bus.AllEvents, s.hub.broadcast)
	if err != nil {
		return nil, err
	}
	s.sub = sub
	return s, nil
}

// Handler returns the routing table, wrapped in token auth when configured.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /scene", s.handleGetScene)
	mux.HandleFunc("PUT /scene", s.handlePutScene)
	mux.HandleFunc("GET /scene/query", s.handleQuery)
	mux.HandleFunc("GET /ws", s.handleWebSocket)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	return TokenAuth{Token: s.config.Token}.Wrap(mux)
}

// Start listens on the configured address and serves in the background.
func (s *Server) Start(ctx context.Context) error {
	if atomic.LoadInt32(&s.closed) == 1 {
		return ErrServerClosed
	}
	if !atomic.CompareAndSwapInt32(&s.running, 0, 1) {
		return ErrServerAlreadyRunning
	}

	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", s.config.Addr)
	if err != nil {
		atomic.StoreInt32(&s.running, 0)
		s.logger.Error("Failed to create listener", log.Error(err))
		return fmt.Errorf("listen %s: %w", s.config.Addr, err)
	}
	s.listener = ln
	s.httpServer = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: s.config.ReadTimeout,
	}

	go func() {
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("Server stopped unexpectedly", log.Error(err))
		}
	}()

	s.logger.Info("Server listening", log.String("addr", ln.Addr().String()))
	return nil
}

// Addr is the bound address, useful when listening on port 0.
func (s *Server) Addr() string {
	if s.listener == nil {
		return s.config.Addr
	}
	return s.listener.Addr().String()
}

// Stop shuts the HTTP server down and disconnects inspectors.
func (s *Server) Stop(ctx context.Context) error {
	if !atomic.CompareAndSwapInt32(&s.running, 1, 0) {
		return ErrServerNotRunning
	}
	s.logger.Info("Stopping server")

	if s.config.ShutdownTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.ShutdownTimeout)
		defer cancel()
	}
	// Hijacked websocket connections are not tracked by Shutdown.
	s.hub.closeAll()
	err := s.httpServer.Shutdown(ctx)

	s.logger.Info("Server stopped")
	return err
}

// Close stops the server if needed and detaches it from the event bus.
func (s *Server) Close() error {
	if !atomic.CompareAndSwapInt32(&s.closed, 0, 1) {
		return nil
	}
	if atomic.LoadInt32(&s.running) == 1 {
		_ = s.Stop(context.Background())
	}
	return s.events.Unsubscribe(s.sub)
}

func formatHex(v uint64) string {
	return fmt.Sprintf("%016x", v)
}
