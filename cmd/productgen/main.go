package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"

	"github.com/couchcryptid/hazard-product-generator/internal/adapter/httpadapter"
	kafkaadapter "github.com/couchcryptid/hazard-product-generator/internal/adapter/kafka"
	"github.com/couchcryptid/hazard-product-generator/internal/adapter/metadatafile"
	"github.com/couchcryptid/hazard-product-generator/internal/adapter/riverforecast"
	"github.com/couchcryptid/hazard-product-generator/internal/adapter/sqlite"
	"github.com/couchcryptid/hazard-product-generator/internal/config"
	"github.com/couchcryptid/hazard-product-generator/internal/generator"
	"github.com/couchcryptid/hazard-product-generator/internal/observability"
	"github.com/couchcryptid/hazard-product-generator/internal/pipeline"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	if err := run(cfg, logger, metrics); err != nil {
		logger.Error("service failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) error {
	site, err := config.LoadSite(cfg.SiteConfig)
	if err != nil {
		return err
	}

	store, err := sqlite.Open(cfg.SQLitePath)
	if err != nil {
		return err
	}
	defer store.Close() //nolint:errcheck // closed on exit

	collab := generator.Collaborators{Events: store, Records: store}

	if cfg.MetadataDir != "" {
		md, err := metadatafile.Open(cfg.MetadataDir, cfg.MetadataCacheSize, metrics)
		if err != nil {
			return err
		}
		collab.Metadata = md
		logger.Info("hazard metadata enabled", "dir", cfg.MetadataDir, "cache_size", cfg.MetadataCacheSize)
	}

	// River forecasts are feature-flagged via RIVER_ENABLED / RIVER_SERVICE_URL.
	if cfg.RiverEnabled {
		client := riverforecast.NewClient(cfg.RiverServiceURL, cfg.RiverServiceTimeout, metrics, logger)
		collab.Rivers = riverforecast.NewCachedService(client, cfg.RiverCacheSize, metrics)
		logger.Info("river forecasts enabled", "url", cfg.RiverServiceURL, "cache_size", cfg.RiverCacheSize)
	} else {
		logger.Info("river forecasts disabled")
	}

	gen, err := generator.New(site, collab, logger, metrics)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ready := &readiness{store: store}

	var reader *kafkaadapter.Reader
	var writer *kafkaadapter.Writer
	if cfg.KafkaEnabled {
		reader = kafkaadapter.NewReader(cfg, logger)
		writer = kafkaadapter.NewWriter(cfg, logger)
		p := pipeline.New(reader, pipeline.NewTransformer(gen, logger), writer, logger, metrics, cfg.BatchSize)
		ready.pipeline = p

		go func() {
			if err := p.Run(ctx); err != nil {
				logger.Error("pipeline error", "error", err)
			}
		}()
	} else {
		logger.Info("kafka pipeline disabled")
	}

	srv := httpadapter.NewServer(cfg.HTTPAddr, ready, gen, logger)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if reader != nil {
		if err := reader.Close(); err != nil {
			logger.Error("kafka reader close error", "error", err)
		}
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
	return nil
}

// readiness requires the database, and the pipeline when Kafka is enabled.
type readiness struct {
	store    *sqlite.Store
	pipeline sharedobs.ReadinessChecker
}

func (r *readiness) CheckReadiness(ctx context.Context) error {
	if err := r.store.Ping(ctx); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if r.pipeline != nil {
		return r.pipeline.CheckReadiness(ctx)
	}
	return nil
}
