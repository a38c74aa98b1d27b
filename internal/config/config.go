package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	KafkaBrokers      []string
	KafkaRequestTopic string
	KafkaProductTopic string
	KafkaGroupID      string
	KafkaEnabled      bool
	HTTPAddr          string
	LogLevel          string
	LogFormat         string
	ShutdownTimeout   time.Duration

	BatchSize          int
	BatchFlushInterval time.Duration

	// SiteConfig is the TOML site file; empty uses the built-in defaults.
	SiteConfig string

	// Collaborators.
	MetadataDir         string
	MetadataCacheSize   int
	SQLitePath          string
	RiverServiceURL     string
	RiverEnabled        bool
	RiverServiceTimeout time.Duration
	RiverCacheSize      int
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	riverTimeoutStr := sharedcfg.EnvOrDefault("RIVER_SERVICE_TIMEOUT", "5s")
	riverTimeout, err2 := time.ParseDuration(riverTimeoutStr)
	if err2 != nil || riverTimeout <= 0 {
		return nil, errors.New("invalid RIVER_SERVICE_TIMEOUT")
	}

	batchSize, err := sharedcfg.ParseBatchSize()
	if err != nil {
		return nil, err
	}

	flushInterval, err := sharedcfg.ParseBatchFlushInterval()
	if err != nil {
		return nil, err
	}

	riverURL := os.Getenv("RIVER_SERVICE_URL")
	riverEnabled := riverURL != ""
	if v := os.Getenv("RIVER_ENABLED"); v != "" {
		riverEnabled = v == "true"
	}

	cfg := &Config{
		KafkaBrokers:       sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaRequestTopic:  sharedcfg.EnvOrDefault("KAFKA_REQUEST_TOPIC", "hazard-event-sets"),
		KafkaProductTopic:  sharedcfg.EnvOrDefault("KAFKA_PRODUCT_TOPIC", "hazard-products"),
		KafkaGroupID:       sharedcfg.EnvOrDefault("KAFKA_GROUP_ID", "hazard-product-generator"),
		KafkaEnabled:       sharedcfg.EnvOrDefault("KAFKA_ENABLED", "true") == "true",
		HTTPAddr:           sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:           sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:          sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout:    shutdownTimeout,
		BatchSize:          batchSize,
		BatchFlushInterval: flushInterval,

		SiteConfig: os.Getenv("SITE_CONFIG"),

		MetadataDir:         os.Getenv("METADATA_DIR"),
		MetadataCacheSize:   parseSize("METADATA_CACHE_SIZE", 256),
		SQLitePath:          sharedcfg.EnvOrDefault("SQLITE_PATH", "hazards.db"),
		RiverServiceURL:     riverURL,
		RiverEnabled:        riverEnabled,
		RiverServiceTimeout: riverTimeout,
		RiverCacheSize:      parseSize("RIVER_CACHE_SIZE", 1000),
	}

	if cfg.KafkaEnabled {
		if len(cfg.KafkaBrokers) == 0 {
			return nil, errors.New("KAFKA_BROKERS is required")
		}
		if cfg.KafkaRequestTopic == "" {
			return nil, errors.New("KAFKA_REQUEST_TOPIC is required")
		}
		if cfg.KafkaProductTopic == "" {
			return nil, errors.New("KAFKA_PRODUCT_TOPIC is required")
		}
	}
	if cfg.RiverEnabled && cfg.RiverServiceURL == "" {
		return nil, errors.New("RIVER_ENABLED is true but RIVER_SERVICE_URL is not set")
	}

	return cfg, nil
}

func parseSize(name string, def int) int {
	if s := os.Getenv(name); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return def
}
