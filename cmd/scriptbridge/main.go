// Package main implements the scriptbridge daemon: the node catalog
// and script-graph configuration engine served over NATS and HTTP for
// agent-driven script editing.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/c360/scriptbridge/catalog"
	"github.com/c360/scriptbridge/config"
	"github.com/c360/scriptbridge/docstore"
	"github.com/c360/scriptbridge/metric"
	"github.com/c360/scriptbridge/natsclient"
	"github.com/c360/scriptbridge/service"
)

// Build information constants
const (
	Version   = "0.1.0"
	BuildTime = "dev"
	appName   = "scriptbridge"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := run(); err != nil {
		slog.Error("Application failed", "error", err, "exit_code", 1)
		os.Exit(1)
	}
}

func run() error {
	cliCfg := parseFlags()
	if err := validateFlags(cliCfg); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}
	if cliCfg.ShowVersion {
		fmt.Printf("%s version %s\n", appName, Version)
		return nil
	}
	if cliCfg.ShowHelp {
		printDetailedHelp()
		return nil
	}

	cfg, err := config.Load(cliCfg.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	applyFlagOverrides(cfg, cliCfg)

	logger := setupLogger(cfg.Logging.Level, cfg.Logging.Format)
	slog.SetDefault(logger)
	slog.Info("Starting scriptbridge",
		"version", Version,
		"build_time", BuildTime,
		"config_path", cliCfg.ConfigPath)

	if cliCfg.Validate {
		slog.Info("Configuration is valid")
		return nil
	}

	signalCtx, signalCancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer signalCancel()

	registry, types, err := buildCatalog(cfg)
	if err != nil {
		return err
	}

	metricsRegistry := metric.NewMetricsRegistry()
	metricsServer, err := startMetricsServer(cfg, metricsRegistry)
	if err != nil {
		return err
	}
	if metricsServer != nil {
		defer func() { _ = metricsServer.Stop() }()
	}

	natsClient, store, err := connectInfrastructure(signalCtx, cfg, metricsRegistry, logger)
	if err != nil {
		return err
	}
	defer func() { _ = natsClient.Close() }()

	svc, err := service.NewScriptService(cfg, service.Dependencies{
		Catalog:         registry,
		Types:           types,
		NATSClient:      natsClient,
		MetricsRegistry: metricsRegistry,
		Store:           store,
		Logger:          logger,
	})
	if err != nil {
		return fmt.Errorf("create service: %w", err)
	}
	if err := svc.Start(signalCtx); err != nil {
		return fmt.Errorf("start service: %w", err)
	}

	httpServer := startHTTPServer(cfg, svc)

	slog.Info("scriptbridge started",
		"command_subject", cfg.Service.CommandSubject,
		"catalog_entries", registry.Len())

	<-signalCtx.Done()
	slog.Info("Received shutdown signal")
	return shutdown(svc, httpServer, cliCfg.ShutdownTimeout)
}

// buildCatalog creates the registry and type system, loading the host
// manifest when one is configured
func buildCatalog(cfg *config.Config) (*catalog.Registry, *catalog.TypeSystem, error) {
	registry := catalog.NewRegistry()
	types := catalog.NewTypeSystem()

	if cfg.Catalog.ManifestPath == "" {
		slog.Warn("no catalog manifest configured; starting with an empty catalog")
		return registry, types, nil
	}

	manifest, err := catalog.LoadManifest(cfg.Catalog.ManifestPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load catalog manifest: %w", err)
	}
	if err := manifest.Apply(registry, types); err != nil {
		return nil, nil, fmt.Errorf("apply catalog manifest: %w", err)
	}
	slog.Info("catalog manifest loaded",
		"path", cfg.Catalog.ManifestPath,
		"entries", registry.Len(),
		"types", len(manifest.Types))
	return registry, types, nil
}

func startMetricsServer(cfg *config.Config, registry *metric.MetricsRegistry) (*metric.Server, error) {
	if !cfg.Metrics.Enabled {
		return nil, nil
	}
	srv := metric.NewServer(cfg.Metrics.Port, cfg.Metrics.Path, registry)
	if err := srv.Start(); err != nil {
		return nil, fmt.Errorf("start metrics server: %w", err)
	}
	slog.Info("metrics server started", "address", srv.Address(), "path", cfg.Metrics.Path)
	return srv, nil
}

// connectInfrastructure connects NATS and binds the document bucket
func connectInfrastructure(
	ctx context.Context,
	cfg *config.Config,
	metricsRegistry *metric.MetricsRegistry,
	logger *slog.Logger,
) (*natsclient.Client, *docstore.Store, error) {
	core := metricsRegistry.CoreMetrics()
	opts := []natsclient.ClientOption{
		natsclient.WithLogger(logger),
		natsclient.WithName(cfg.Service.Name),
		natsclient.WithStatusCallback(core.RecordNATSStatus),
		natsclient.WithReconnectCallback(core.RecordNATSReconnect),
	}
	if cfg.NATS.ConnectTimeout > 0 {
		opts = append(opts, natsclient.WithTimeout(cfg.NATS.ConnectTimeout))
	}
	if cfg.NATS.Username != "" {
		opts = append(opts, natsclient.WithCredentials(cfg.NATS.Username, cfg.NATS.Password))
	}
	if cfg.NATS.Token != "" {
		opts = append(opts, natsclient.WithToken(cfg.NATS.Token))
	}

	natsClient, err := natsclient.NewClient(cfg.NATS.URL, opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("create NATS client: %w", err)
	}

	slog.Info("Connecting to NATS", "url", cfg.NATS.URL)
	if err := natsClient.Connect(ctx); err != nil {
		return nil, nil, fmt.Errorf("connect to NATS: %w", err)
	}

	kv, err := natsClient.CreateKeyValueBucket(ctx, jetstream.KeyValueConfig{
		Bucket:      cfg.Store.Bucket,
		Description: "scriptbridge script documents",
	})
	if err != nil {
		_ = natsClient.Close()
		return nil, nil, fmt.Errorf("bind document bucket %s: %w", cfg.Store.Bucket, err)
	}
	slog.Info("document bucket bound", "bucket", cfg.Store.Bucket)

	return natsClient, docstore.NewStore(kv), nil
}

func startHTTPServer(cfg *config.Config, svc *service.ScriptService) *http.Server {
	if !cfg.HTTP.Enabled {
		return nil
	}
	mux := http.NewServeMux()
	svc.RegisterHTTPHandlers(mux)
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		slog.Info("HTTP command endpoint started", "address", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server failed", "error", err)
		}
	}()
	return srv
}

// shutdown stops the surfaces in reverse start order
func shutdown(svc *service.ScriptService, httpServer *http.Server, timeout time.Duration) error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if httpServer != nil {
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			slog.Warn("HTTP shutdown incomplete", "error", err)
		}
	}
	if err := svc.Stop(timeout); err != nil {
		return fmt.Errorf("stop service: %w", err)
	}

	slog.Info("scriptbridge shutdown complete")
	return nil
}
