package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/mendel-inheritance-server/internal/domain"
)

// Manager loads and validates application configuration using Viper.
type Manager struct {
	config *domain.Config
}

// NewManager creates a new configuration manager
func NewManager() (*Manager, error) {
	m := &Manager{}
	if err := m.loadConfig(); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return m, nil
}

// loadConfig loads configuration from file, environment and defaults
func (m *Manager) loadConfig() error {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/etc/mendel-inheritance-server/")

	viper.SetEnvPrefix("MENDEL")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	m.setDefaults()

	// Config file is optional; defaults and env vars suffice
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	config := &domain.Config{}
	if err := viper.Unmarshal(config); err != nil {
		return fmt.Errorf("error unmarshaling config: %w", err)
	}

	m.config = config
	return nil
}

// setDefaults sets default configuration values
func (m *Manager) setDefaults() {
	// Server defaults
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", "30s")
	viper.SetDefault("server.write_timeout", "30s")
	viper.SetDefault("server.idle_timeout", "120s")

	// Gene-annotation service defaults
	viper.SetDefault("annotation.base_url", "https://rest.ensembl.org")
	viper.SetDefault("annotation.timeout", "30s")
	viper.SetDefault("annotation.rate_limit", 10)
	viper.SetDefault("annotation.cache_size", 4096)
	viper.SetDefault("annotation.cache_path", "./data/annotation_cache.db")
	viper.SetDefault("annotation.cache_ttl", "24h")

	// Analysis defaults: 0 workers means GOMAXPROCS
	viper.SetDefault("analysis.workers", 0)

	// Logging defaults
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")
	viper.SetDefault("logging.output", "stdout")
}

// GetConfig returns the complete configuration
func (m *Manager) GetConfig() *domain.Config {
	return m.config
}

// GetAnnotationConfig returns gene-annotation service configuration
func (m *Manager) GetAnnotationConfig() *domain.AnnotationConfig {
	return &m.config.Annotation
}

// GetAnalysisConfig returns analysis pipeline configuration
func (m *Manager) GetAnalysisConfig() *domain.AnalysisConfig {
	return &m.config.Analysis
}

// Validate validates the configuration
func (m *Manager) Validate() error {
	config := m.config

	if config.Server.Port <= 0 || config.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", config.Server.Port)
	}

	if config.Annotation.BaseURL == "" {
		return fmt.Errorf("annotation base URL is required")
	}
	if config.Annotation.RateLimit <= 0 {
		return fmt.Errorf("annotation rate limit must be positive: %d", config.Annotation.RateLimit)
	}
	if config.Annotation.CacheSize <= 0 {
		return fmt.Errorf("annotation cache size must be positive: %d", config.Annotation.CacheSize)
	}

	if config.Analysis.Workers < 0 {
		return fmt.Errorf("invalid worker count: %d", config.Analysis.Workers)
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true, "fatal": true, "panic": true,
	}
	if !validLogLevels[strings.ToLower(config.Logging.Level)] {
		return fmt.Errorf("invalid log level: %s", config.Logging.Level)
	}

	return nil
}
