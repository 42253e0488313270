package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/akazantsev/surebet/internal/pkg/config"
	"github.com/akazantsev/surebet/internal/pkg/logging"
	"github.com/akazantsev/surebet/internal/pkg/storage"
	"github.com/akazantsev/surebet/internal/providers"
	_ "github.com/akazantsev/surebet/internal/providers/all"
	"github.com/akazantsev/surebet/internal/scanner"
)

const defaultConfigPath = "configs/production.yaml"

// Sent-arbitrage rows twice the dedup window old can never match a lookup
// again and only bloat the table.
const sentArbRetention = 48 * time.Hour

func main() {
	var configPath string

	defaultConfig := os.Getenv("CONFIG_PATH")
	if defaultConfig == "" {
		defaultConfig = defaultConfigPath
	}

	flag.StringVar(&configPath, "config", defaultConfig, "Path to config file (can be set via CONFIG_PATH env var)")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if _, err := logging.SetupLogger(&cfg.Logging, "scanner"); err != nil {
		log.Printf("Warning: failed to setup logging: %v, continuing with default logger", err)
	}
	slog.Info("Config loaded", "path", configPath, "providers", len(cfg.Providers))

	applyEnvOverrides(cfg)

	if cfg.Telegram.BotToken == "" || cfg.Telegram.ChatID == 0 {
		log.Fatal("scanner: telegram bot_token and chat_id are required (config or TELEGRAM_BOT_TOKEN / TELEGRAM_CHAT_ID env vars)")
	}
	if cfg.Postgres.DSN == "" {
		log.Fatal("scanner: postgres DSN is required (config or POSTGRES_DSN env var)")
	}
	if len(cfg.Providers) < 2 {
		log.Fatal("scanner: at least 2 providers are required to detect arbitrage")
	}

	store, err := storage.NewPostgresStorage(&cfg.Postgres)
	if err != nil {
		log.Fatalf("scanner: failed to initialize PostgreSQL storage: %v", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			slog.Error("Error closing PostgreSQL storage", "error", err)
		}
	}()

	// Startup hygiene: drop notification rows nobody will look up again.
	cleanCtx, cleanCancel := context.WithTimeout(context.Background(), 10*time.Second)
	if n, err := store.DeleteOlderThan(cleanCtx, time.Now().Add(-sentArbRetention)); err != nil {
		slog.Warn("Failed to clean old rows on startup", "error", err)
	} else if n > 0 {
		slog.Info("Cleaned old rows on startup", "deleted", n)
	}
	cleanCancel()

	var cache *storage.QuoteCache
	if cfg.Redis.Enabled {
		cache, err = storage.NewQuoteCache(&cfg.Redis)
		if err != nil {
			// The cache is an optimization, the scanner works without it.
			slog.Warn("Redis cache unavailable, continuing without it", "error", err)
			cache = nil
		} else {
			defer cache.Close()
		}
	}

	roster, err := providers.BuildRoster(cfg.Providers, cfg.Scanner.FetchTimeout)
	if err != nil {
		log.Fatalf("scanner: failed to build provider roster: %v", err)
	}

	channel, err := scanner.NewTelegramChannel(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Telegram.SendInterval)
	if err != nil {
		log.Fatalf("scanner: failed to initialize telegram channel: %v", err)
	}

	s := scanner.New(cfg.Scanner, roster, store, store, channel, cache)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		slog.Info("Received shutdown signal, stopping scanner", "signal", sig)
		cancel()
	}()

	startHealthServer(ctx, cfg.Health.Addr)

	slog.Info("Starting arbitrage scanner")
	if err := s.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("Scanner failed: %v", err)
	}
	slog.Info("Arbitrage scanner stopped")
}

// applyEnvOverrides lets deployment secrets win over the config file.
func applyEnvOverrides(cfg *config.Config) {
	if token := os.Getenv("TELEGRAM_BOT_TOKEN"); token != "" {
		cfg.Telegram.BotToken = token
		slog.Info("Using Telegram bot token from environment")
	}
	if chatIDStr := os.Getenv("TELEGRAM_CHAT_ID"); chatIDStr != "" {
		if chatID, err := strconv.ParseInt(chatIDStr, 10, 64); err == nil {
			cfg.Telegram.ChatID = chatID
			slog.Info("Using Telegram chat ID from environment", "chat_id", chatID)
		} else {
			slog.Warn("Ignoring malformed TELEGRAM_CHAT_ID", "value", chatIDStr)
		}
	}
	if dsn := os.Getenv("POSTGRES_DSN"); dsn != "" {
		cfg.Postgres.DSN = dsn
		slog.Info("Using PostgreSQL DSN from environment")
	}
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		cfg.Redis.Addr = addr
		cfg.Redis.Enabled = true
		slog.Info("Using Redis address from environment", "addr", addr)
	}
}

func startHealthServer(ctx context.Context, addr string) {
	mux := http.NewServeMux()
	mux.HandleFunc("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("pong\n"))
	})
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok\n"))
	})
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	go func() {
		slog.Info("HTTP server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server error", "error", err)
		}
	}()
}
