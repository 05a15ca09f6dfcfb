package ws

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rickgao/chainfeed/internal/hub"
)

const (
	subscribeCommand = "subscribe"
	maxMessageSize   = 512
)

// Config holds subscription server configuration.
type Config struct {
	Port         int
	WriteTimeout time.Duration // Per-send deadline (default: 10s)
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Port:         8081,
		WriteTimeout: 10 * time.Second,
	}
}

// Server accepts WebSocket connections and streams published payloads to
// clients that have sent the subscribe command.
type Server struct {
	cfg    Config
	hub    *hub.Hub
	logger *slog.Logger

	upgrader   websocket.Upgrader
	httpServer *http.Server
}

// New creates a subscription server fanning out from the given hub.
func New(cfg Config, h *hub.Hub, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = 10 * time.Second
	}
	return &Server{
		cfg:    cfg,
		hub:    h,
		logger: logger,
		upgrader: websocket.Upgrader{
			// Browser clients connect from arbitrary origins; subscribers
			// are unauthenticated read-only consumers.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Start begins accepting connections. It returns once the listener is
// running; accept errors after startup are logged.
func (s *Server) Start(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWS)

	s.httpServer = &http.Server{
		Addr:    fmt.Sprintf(":%d", s.cfg.Port),
		Handler: mux,
	}

	go func() {
		if err := s.httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("subscription server error", "error", err)
		}
	}()

	s.logger.Info("subscription server started", "port", s.cfg.Port)
	return nil
}

// Stop shuts down the listener. Established connections close naturally
// when the process exits or their send fails.
func (s *Server) Stop(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return err
	}
	s.logger.Info("subscription server stopped")
	return nil
}

// handleWS upgrades the connection and serves it until it closes.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}

	s.serveConn(conn)
}

// serveConn waits for the subscribe command, then forwards every published
// payload until the connection dies. Runs on the handler goroutine, so
// there is exactly one writer per connection.
func (s *Server) serveConn(conn *websocket.Conn) {
	defer conn.Close()

	conn.SetReadLimit(maxMessageSize)

	if !s.awaitSubscribe(conn) {
		return
	}

	sub := s.hub.Subscribe()
	defer sub.Close()

	s.logger.Info("subscriber attached",
		"subscription", sub.ID(),
		"remote", conn.RemoteAddr(),
	)

	// Keep reading so a peer close is noticed even between publishes.
	// Closing the subscription unblocks the forward loop below.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				sub.Close()
				return
			}
		}
	}()

	for {
		payload, ok := sub.Next()
		if !ok {
			s.logger.Info("subscriber detached", "subscription", sub.ID())
			return
		}

		data, err := json.Marshal(payload)
		if err != nil {
			s.logger.Error("failed to marshal payload", "error", err)
			continue
		}

		conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			s.logger.Info("subscriber send failed, detaching",
				"subscription", sub.ID(),
				"error", err,
			)
			return
		}
	}
}

// awaitSubscribe reads until the subscribe command arrives. Anything else
// is ignored. Returns false when the connection closes first.
func (s *Server) awaitSubscribe(conn *websocket.Conn) bool {
	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			return false
		}
		if msgType == websocket.TextMessage && strings.TrimSpace(string(data)) == subscribeCommand {
			return true
		}
		s.logger.Debug("ignoring pre-subscribe message", "remote", conn.RemoteAddr())
	}
}
