package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rickgao/chainfeed/internal/api"
	"github.com/rickgao/chainfeed/internal/config"
	"github.com/rickgao/chainfeed/internal/database"
	"github.com/rickgao/chainfeed/internal/hub"
	"github.com/rickgao/chainfeed/internal/metrics"
	"github.com/rickgao/chainfeed/internal/poller"
	"github.com/rickgao/chainfeed/internal/store"
	"github.com/rickgao/chainfeed/internal/version"
	"github.com/rickgao/chainfeed/internal/ws"
)

const recentBlocksLimit = 5

func main() {
	configPath := flag.String("config", "configs/chainfeedd.local.yaml", "path to config file")
	flag.Parse()

	// Set up structured logging
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	logger.Info("starting chainfeedd",
		"version", version.Version,
		"commit", version.Commit,
		"config", *configPath,
	)

	// Load configuration
	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger.Info("configuration loaded",
		"instance_id", cfg.Instance.ID,
		"height_url", cfg.Feeds.HeightURL,
		"price_url", cfg.Feeds.PriceURL,
	)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	// Connect to database. An unreachable store at startup is fatal: the
	// daemon must not run half-initialized.
	logger.Info("connecting to database",
		"host", cfg.Database.Postgres.Host,
		"port", cfg.Database.Postgres.Port,
		"database", cfg.Database.Postgres.Name,
	)

	pool, err := database.Connect(ctx, cfg.Database.Postgres)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	logger.Info("database connected")

	st := store.New(pool, logger)

	// Create feed client
	feeds := api.NewClient(
		cfg.Feeds.HeightURL,
		cfg.Feeds.PriceURL,
		api.WithLogger(logger),
		api.WithTimeout(cfg.Feeds.Timeout),
	)

	// The hub is constructed here and handed to both the poller and the
	// subscription server; the poller holds the only publish side.
	broadcast := hub.New(cfg.Hub.BufferSize, logger)

	// Start subscription server
	wsServer := ws.New(ws.Config{
		Port:         cfg.Server.Port,
		WriteTimeout: cfg.Server.WriteTimeout,
	}, broadcast, logger)
	if err := wsServer.Start(ctx); err != nil {
		logger.Error("failed to start subscription server", "error", err)
		os.Exit(1)
	}

	// Start poller
	p := poller.New(poller.Config{
		Interval:     cfg.Poller.Interval,
		FetchTimeout: cfg.Feeds.Timeout,
	}, feeds, feeds, broadcast, st, logger)
	if err := p.Start(ctx); err != nil {
		logger.Error("failed to start poller", "error", err)
		os.Exit(1)
	}

	// Operational HTTP server: health, recent blocks, metrics
	opsServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Metrics.Port),
		Handler: createOpsHandler(cfg.Metrics.Path, pool, st, broadcast, logger),
	}

	go func() {
		logger.Info("starting ops server", "port", cfg.Metrics.Port)
		if err := opsServer.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("ops server error", "error", err)
		}
	}()

	logger.Info("chainfeedd running",
		"instance_id", cfg.Instance.ID,
		"ws_url", fmt.Sprintf("ws://localhost:%d/ws", cfg.Server.Port),
		"health_url", fmt.Sprintf("http://localhost:%d/health", cfg.Metrics.Port),
	)

	// Wait for shutdown
	<-ctx.Done()

	logger.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	// Poller first so nothing new is published, then the hub so forwarding
	// loops drain out, then the listeners.
	if err := p.Stop(shutdownCtx); err != nil {
		logger.Warn("poller stop", "error", err)
	}
	broadcast.Close()
	if err := wsServer.Stop(shutdownCtx); err != nil {
		logger.Warn("subscription server stop", "error", err)
	}
	opsServer.Shutdown(shutdownCtx)

	logger.Info("chainfeedd stopped")
}

// createOpsHandler creates the HTTP handler for health, recent blocks and
// metrics.
func createOpsHandler(metricsPath string, pool *pgxpool.Pool, st *store.Store, broadcast *hub.Hub, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		health := struct {
			Status     string         `json:"status"`
			Components map[string]any `json:"components"`
		}{
			Status:     "healthy",
			Components: make(map[string]any),
		}

		// Check database
		if err := pool.Ping(ctx); err != nil {
			health.Status = "unhealthy"
			health.Components["postgres"] = map[string]string{
				"status": "disconnected",
				"error":  err.Error(),
			}
		} else {
			health.Components["postgres"] = "connected"
		}

		health.Components["hub"] = map[string]any{
			"subscribers": broadcast.SubscriberCount(),
		}

		w.Header().Set("Content-Type", "application/json")
		if health.Status == "unhealthy" {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		json.NewEncoder(w).Encode(health)
	})

	mux.HandleFunc("/blocks", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		blocks, err := st.RecentBlocks(ctx, recentBlocksLimit)
		if err != nil {
			logger.Warn("recent blocks query failed", "error", err)
			http.Error(w, "query failed", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(blocks)
	})

	mux.Handle(metricsPath, metrics.Handler())

	return mux
}
