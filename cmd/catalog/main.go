package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"MiniCatalog/internal/catalog"
	"MiniCatalog/internal/config"
	"MiniCatalog/pkg/kit"
)

func main() {
	configFile := flag.String("config", "config.yaml", "path to an optional YAML config file")
	envFile := flag.String("env-file", ".env", "path to an optional .env file")
	flag.Parse()

	cfg, err := config.Load(*configFile, *envFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	service := cfg.Service.Name
	log := kit.NewLogger(service, cfg.Log.Level)
	defer func() { _ = log.Sync() }()

	logEffectiveConfig(log, cfg)

	if err := run(context.Background(), cfg, log); err != nil {
		log.Fatal("http server stopped", zap.Error(err))
	}
}

// logEffectiveConfig dumps the resolved settings in development only. The
// token is masked by Config.String.
func logEffectiveConfig(log *zap.Logger, cfg config.Config) {
	if !cfg.Service.Development {
		return
	}
	log.Info("effective configuration", zap.Stringer("config", cfg))
}

func run(ctx context.Context, cfg config.Config, log *zap.Logger) error {
	service := cfg.Service.Name

	if cfg.Tracing.Endpoint != "" {
		tp, err := kit.NewTracerProvider(ctx, service, cfg.Tracing.Endpoint)
		if err != nil {
			return fmt.Errorf("tracing: %w", err)
		}
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := tp.Shutdown(sctx); err != nil {
				log.Warn("tracer shutdown", zap.Error(err))
			}
		}()
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	store := catalog.NewMemStore()
	s := &catalog.Server{
		Store:   store,
		Log:     log,
		Metrics: catalog.NewMetrics(reg, store),
	}

	h := catalog.NewHandler(s, catalog.HTTPDeps{
		Log:            log,
		Service:        service,
		Registry:       reg,
		MetricsEnabled: cfg.Metrics.Enabled,
		MetricsToken:   cfg.Metrics.Token,
		RateLimit:      cfg.RateLimit.Requests,
		RateWindow:     cfg.RateLimit.Window,
		CORSOrigins:    cfg.CORS.AllowedOrigins(),
		Development:    cfg.Service.Development,
	})

	return kit.RunHTTPServer(ctx, kit.ServerOptions{
		Addr:            cfg.HTTP.Addr(),
		ReadTimeout:     cfg.HTTP.ReadTimeout,
		WriteTimeout:    cfg.HTTP.WriteTimeout,
		IdleTimeout:     cfg.HTTP.IdleTimeout,
		ShutdownTimeout: cfg.HTTP.ShutdownTimeout,
	}, h, log)
}
