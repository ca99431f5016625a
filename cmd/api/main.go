package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"kpi_extractor/pkg/api/config"
	"kpi_extractor/pkg/api/kpi"
	"kpi_extractor/pkg/core/agent"
	"kpi_extractor/pkg/core/extract"
	"kpi_extractor/pkg/core/prompt"
	"kpi_extractor/pkg/core/session"
	"kpi_extractor/pkg/core/settings"
	"kpi_extractor/pkg/core/store"
)

func main() {
	// Load environment variables
	godotenv.Load()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg := settings.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("config.invalid", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize Prompt Library
	// Determine resources path (relative to executable or working directory)
	resourcesPath := cfg.ResourcesDir
	if _, err := os.Stat(resourcesPath); os.IsNotExist(err) {
		// Try from executable directory
		exePath, _ := os.Executable()
		resourcesPath = filepath.Join(filepath.Dir(exePath), "resources")
	}
	if err := prompt.LoadFromDirectory(resourcesPath, logger); err != nil {
		logger.Warn("prompt.load_failed", "dir", resourcesPath, "error", err, "fallback", "built-in prompts")
	}

	// Initialize manager from config
	agentCfg, err := agent.LoadConfig(cfg.ModelsConfig)
	if err != nil {
		logger.Error("agent.config_invalid", "path", cfg.ModelsConfig, "error", err)
		os.Exit(1)
	}
	agentMgr := agent.NewManager(agentCfg, logger)

	gateway, err := extract.NewLLMGateway(agentMgr, prompt.Get(), extract.Config{
		StripHTML: cfg.StripHTML,
		Timeout:   cfg.ExtractTimeout,
	}, logger)
	if err != nil {
		logger.Error("extract.init_failed", "error", err)
		os.Exit(1)
	}

	sessionStore, closeStore, err := openSessionStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("store.init_failed", "error", err)
		os.Exit(1)
	}
	defer closeStore()

	sessions := session.NewManager(sessionStore, gateway, logger)
	kpiHandler, err := kpi.NewHandler(sessions, gateway, logger)
	if err != nil {
		logger.Error("kpi.init_failed", "error", err)
		os.Exit(1)
	}

	mux := http.NewServeMux()
	kpiHandler.Register(mux)

	// Config endpoints
	configHandler := config.NewHandler(agentMgr)
	configHandler.Register(mux)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	fmt.Printf("API server starting on %s...\n", cfg.Addr)
	for _, route := range kpi.Routes() {
		fmt.Printf("  - %s\n", route)
	}
	fmt.Println("  - GET  /api/config")
	fmt.Println("  - POST /api/config/switch")
	fmt.Printf("Active provider: %s (available: %v)\n", agentMgr.GetActiveProvider(), agentMgr.Available())

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server.failed", "error", err)
		os.Exit(1)
	}
	logger.Info("server.stopped")
}

// openSessionStore picks Postgres when DATABASE_URL is set, JSON files when
// SESSION_DIR is set, and memory otherwise.
func openSessionStore(ctx context.Context, cfg *settings.Settings, logger *slog.Logger) (session.Store, func(), error) {
	switch {
	case cfg.DatabaseURL != "":
		if err := store.InitDB(ctx, cfg.DatabaseURL); err != nil {
			return nil, nil, err
		}
		logger.Info("store.ready", "backend", "postgres")
		return store.NewSessionCache(store.GetPool(), "", cfg.SessionTTL, logger), store.Close, nil
	case cfg.SessionDir != "":
		logger.Info("store.ready", "backend", "file", "dir", cfg.SessionDir)
		return store.NewSessionCache(nil, cfg.SessionDir, cfg.SessionTTL, logger), func() {}, nil
	default:
		mem := session.NewMemoryStore(cfg.SessionTTL)
		go sweep(ctx, mem, logger)
		logger.Info("store.ready", "backend", "memory")
		return mem, func() {}, nil
	}
}

func sweep(ctx context.Context, mem *session.MemoryStore, logger *slog.Logger) {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := mem.Sweep(); n > 0 {
				logger.Info("store.swept", "expired", n)
			}
		}
	}
}
