package cmd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/diligent-ai/diligent/internal/adapters/llm"
	"github.com/diligent-ai/diligent/internal/api"
	"github.com/diligent-ai/diligent/internal/config"
	"github.com/diligent-ai/diligent/internal/core"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Start the REST API server exposing analysis and debate operations.

Examples:
  # Start with defaults (127.0.0.1:8378)
  diligent serve

  # Start on a custom host and port
  diligent serve --host 0.0.0.0 --port 3000

  # Reload configuration when the config file changes
  diligent serve --watch-config`,
	RunE: runServe,
}

var (
	serveHost  string
	servePort  int
	serveWatch bool
)

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveHost, "host", "",
		"Host address to bind to (default: from config)")
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0,
		"Port to listen on (default: from config)")
	serveCmd.Flags().BoolVar(&serveWatch, "watch-config", false,
		"Reload configuration when the config file changes")
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	registry := buildRegistry(cfg, logger)
	defer func() { _ = registry.Close() }()

	analyzer, err := newAnalyzer(cfg, registry, logger)
	if err != nil {
		return err
	}
	debates, err := newDebateOrchestrator(registry, logger)
	if err != nil {
		return err
	}

	resultStore, err := openStore(cfg, logger, false)
	if err != nil {
		return err
	}
	if resultStore != nil {
		defer func() { _ = resultStore.Close() }()
	}

	opts := []api.ServerOption{
		api.WithCORSOrigins(cfg.Server.CORSOrigins),
	}
	if resultStore != nil {
		opts = append(opts, api.WithStore(resultStore))
	}
	if d, err := time.ParseDuration(cfg.Server.RequestTimeout); err == nil && d > 0 {
		opts = append(opts, api.WithRequestTimeout(d))
	}

	server := api.NewServer(
		analyzer,
		debates,
		registry,
		func(name string) (core.BackendDescriptor, bool) { return cfg.Descriptor(name) },
		func() []core.BackendDescriptor { return cfg.DefaultDescriptors() },
		logger,
		opts...,
	)

	host := cfg.Server.Host
	if serveHost != "" {
		host = serveHost
	}
	port := cfg.Server.Port
	if servePort != 0 {
		port = servePort
	}
	addr := net.JoinHostPort(host, strconv.Itoa(port))

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Optional hot reload of backend configuration. The running server
	// keeps its address; only backend settings are re-applied.
	if serveWatch {
		if path := viper.ConfigFileUsed(); path != "" {
			watcher := config.NewWatcher(path, func(next *config.Config) {
				// Configure drops each backend's cached adapter, so the
				// next request picks up the new settings.
				llm.ConfigureFromConfig(registry, next)
				logger.Info("configuration reloaded", "path", path)
			}, logger)
			go func() {
				if err := watcher.Run(ctx); err != nil {
					logger.Warn("config watcher stopped", "error", err)
				}
			}()
		} else {
			logger.Warn("no config file in use; --watch-config has no effect")
		}
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-sigCh:
	}

	logger.Info("shutting down server...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	logger.Info("server stopped")
	return nil
}
