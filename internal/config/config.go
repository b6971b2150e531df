package config

import (
	"fmt"

	pkgconfig "github.com/kalasangam/search-service/pkg/config"
)

// Config holds all configuration for the search service.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort int `env:"SEARCH_HTTP_PORT" envDefault:"8010"`

	// MongoDB Atlas
	MongoURI         string `env:"MONGODB_URI" envDefault:"mongodb://localhost:27017"`
	MongoDatabase    string `env:"MONGODB_DATABASE" envDefault:"kalasangam"`
	SearchCollection string `env:"SEARCH_COLLECTION" envDefault:"search_documents"`
	SearchIndex      string `env:"SEARCH_INDEX" envDefault:"marketplace_search"`

	// Search engine selection (atlas or memory)
	SearchEngine string `env:"SEARCH_ENGINE" envDefault:"atlas"`

	// Catalog service URL for reindex fetching
	CatalogServiceURL string `env:"CATALOG_SERVICE_URL" envDefault:"http://localhost:8080"`

	// Kafka
	KafkaBrokers []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load search config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate checks configuration invariants.
func (c *Config) validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}
	if c.SearchEngine != "atlas" && c.SearchEngine != "memory" {
		return fmt.Errorf("invalid search engine: %q", c.SearchEngine)
	}
	return nil
}
