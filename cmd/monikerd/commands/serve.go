package commands

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/openmoniker/openmoniker/audit"
	"github.com/openmoniker/openmoniker/cache"
	"github.com/openmoniker/openmoniker/catalog"
	"github.com/openmoniker/openmoniker/config"
	"github.com/openmoniker/openmoniker/errors"
	"github.com/openmoniker/openmoniker/logger"
	"github.com/openmoniker/openmoniker/resolver"
	"github.com/openmoniker/openmoniker/server"
	"github.com/openmoniker/openmoniker/telemetry"
)

// ServeCmd starts the resolution service
var ServeCmd = &cobra.Command{
	Use:     "serve",
	Aliases: []string{"server"},
	Short:   "Start the moniker resolution service",
	Long:    `Load the declarative catalog, start the hot reloader, and serve the resolution API.`,
	RunE:    runServe,
}

var (
	serveConfigPath string
	servePort       int
)

func init() {
	ServeCmd.Flags().StringVarP(&serveConfigPath, "config", "c", "", "Config file path (default: moniker.toml found walking up)")
	ServeCmd.Flags().IntVarP(&servePort, "port", "p", 0, "Listen port (overrides config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(serveConfigPath)
	if err != nil {
		return errors.Wrap(err, "load configuration")
	}
	if servePort != 0 {
		cfg.Server.Port = servePort
	}

	log := logger.Logger

	// First catalog load is fatal on failure; after startup, reload failures
	// retain the serving snapshot.
	registry := catalog.NewRegistry()
	reloader := catalog.NewReloader(registry, cfg.Catalog.Paths,
		time.Duration(cfg.Catalog.ReloadIntervalSeconds)*time.Second, log)
	nodes, err := reloader.Reload()
	if err != nil {
		return errors.Wrap(err, "initial catalog load")
	}

	var resultCache *cache.InMemory
	cacheTTL := time.Duration(cfg.Cache.TTLSeconds) * time.Second
	if cfg.Cache.Enabled {
		resultCache = cache.NewInMemory(cacheTTL)
	}

	service := resolver.NewService(registry, resultCache, cacheTTL, log)
	metrics := telemetry.NewMetrics()
	metrics.CatalogNodes.Set(float64(nodes))

	var auditStore *audit.Store
	if cfg.Audit.Path != "" {
		auditStore, err = audit.Open(cfg.Audit.Path, log)
		if err != nil {
			return errors.Wrap(err, "open audit store")
		}
		defer auditStore.Close()
	}

	srv := server.New(server.Options{
		Config:   cfg,
		Registry: registry,
		Service:  service,
		Reloader: reloader,
		Cache:    resultCache,
		AuditLog: auditStore,
		Emitter:  telemetry.NewLogEmitter(log, metrics),
		Metrics:  metrics,
		Logger:   log,
	})

	var watcher *catalog.FileWatcher
	if cfg.Catalog.WatchFiles {
		watcher, err = catalog.NewFileWatcher(reloader, cfg.Catalog.Paths, log)
		if err != nil {
			log.Warnw("Catalog file watching unavailable", "error", err)
		} else {
			watcher.Start()
			defer watcher.Close()
		}
	}

	verbosity, _ := cmd.Flags().GetCount("verbose")
	printStartupBanner(verbosity, cfg, nodes)

	// SIGINT/SIGTERM trigger a graceful drain; clean shutdown exits 0.
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		log.Infow("Signal received, draining", "signal", sig.String())
		if err := srv.Shutdown(); err != nil {
			return err
		}
	}
	return nil
}
