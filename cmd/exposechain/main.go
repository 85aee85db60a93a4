// cmd/exposechain/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"exposechain/internal/adapters/output"
	"exposechain/internal/core/domain"
	"exposechain/internal/core/ports"
	"exposechain/internal/core/usecases"
	"exposechain/internal/platform/cache"
	"exposechain/internal/platform/config"
	"exposechain/internal/platform/errors"
	"exposechain/internal/platform/logx"
	"exposechain/internal/platform/netguard"
	"exposechain/internal/platform/rate"
	"exposechain/internal/platform/registry"
	"exposechain/internal/platform/ui"

	// Import sources for auto-registration via init()
	_ "exposechain/internal/sources/dnsx"
	_ "exposechain/internal/sources/geoip"
	_ "exposechain/internal/sources/sslx"
	_ "exposechain/internal/sources/whoisx"
)

var (
	// Rellenables con -ldflags en build
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: configuration load failed: %v\n", err)
		os.Exit(2)
	}

	if cfg.PrintVersion {
		fmt.Printf("exposechain %s (commit %s, built %s)\n", version, commit, date)
		return
	}

	if cfg.Target == "" {
		fmt.Fprintln(os.Stderr, "Error: target is required")
		fmt.Fprintln(os.Stderr, "Usage: exposechain -t <domain|ip> [--type quick|full]")
		fmt.Fprintln(os.Stderr, "Try: exposechain -h for help")
		os.Exit(2)
	}

	logger := logx.New()
	logger.Info("ExposeChain starting",
		"version", version,
		"target", cfg.Target,
		"type", cfg.ScanType,
		"caller", cfg.Caller,
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	sources, err := buildSources(cfg, logger)
	if err != nil {
		logger.Err(err, "phase", "source-build")
		os.Exit(2)
	}

	store := output.NewJSONStore(cfg.OutputDir, logger)

	orch := usecases.NewOrchestrator(usecases.OrchestratorOptions{
		Sources:       sources,
		Cache:         cache.New(cfg.Cache.Capacity, cfg.CacheTTL(), cfg.CacheFailureTTL()),
		Guard:         netguard.New(&netguard.NetResolver{Timeout: cfg.DNSTimeout()}, cfg.Guard.ExtraBlockedCIDRs, logger),
		Limiter:       rate.NewCallerLimiter(cfg.RateLimit.Limit, cfg.RateWindow()),
		Scorer:        usecases.NewScorer(cfg.Risk.Weights),
		Store:         store,
		Logger:        logger,
		FullDeadline:  cfg.FullDeadline(),
		QuickDeadline: cfg.QuickDeadline(),
		Version:       version,
	})
	defer func() {
		if err := orch.Close(); err != nil {
			logger.Warn("shutdown cleanup failed", "error", err.Error())
		}
	}()

	result, err := orch.RunScan(ctx, cfg.Target, domain.ScanType(cfg.ScanType), cfg.Caller)
	if err != nil {
		logger.Err(err, "phase", "scan")
		os.Exit(exitCodeFor(err))
	}

	if !cfg.Outputs.TableDisabled {
		var presenter ports.ScanPresenter = ui.NewReporter()
		if cfg.Outputs.Plain {
			presenter = output.NewTablePresenter(os.Stdout)
		}
		if err := presenter.Render(result); err != nil {
			logger.Err(err, "phase", "render")
		}
	}

	logger.Info("ExposeChain finished",
		"scan_id", result.ID,
		"score", result.Risk.Score,
		"level", result.Risk.Level,
		"duration_ms", result.Metadata.Duration.Milliseconds(),
	)
}

// buildSources arma la configuración por fuente y las construye desde
// el registro global.
func buildSources(cfg config.Config, logger logx.Logger) (map[domain.SourceKind]ports.Source, error) {
	configs := map[domain.SourceKind]ports.SourceConfig{
		domain.SourceKindDNS: {
			Enabled: true,
			Timeout: cfg.DNSTimeout(),
			Custom:  map[string]interface{}{"resolvers": cfg.DNS.Resolvers},
		},
		domain.SourceKindWhois: {
			Enabled: true,
			Timeout: cfg.WhoisTimeout(),
		},
		domain.SourceKindSSL: {
			Enabled: true,
			Timeout: cfg.SSLTimeout(),
			Custom:  map[string]interface{}{"port": cfg.SSL.Port},
		},
		domain.SourceKindGeo: {
			Enabled: true,
			Timeout: cfg.GeoTimeout(),
			Custom: map[string]interface{}{
				"endpoint":     cfg.Geo.Endpoint,
				"upstream_rpm": cfg.Geo.UpstreamRPM,
			},
		},
	}
	return registry.Global().Build(configs, logger)
}

// exitCodeFor distingue rechazos de petición (2) de bloqueos de
// política (3).
func exitCodeFor(err error) int {
	var rejected *domain.RejectedError
	if errors.As(err, &rejected) {
		return 2
	}
	var blocked *domain.BlockedError
	if errors.As(err, &blocked) {
		return 3
	}
	return 1
}
