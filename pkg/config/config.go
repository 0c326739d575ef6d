// Package config provides configuration loading and validation for the
// reviewforge review core: the server-independent knobs the executor,
// registry, MCP server, and CLI all read at startup (§2.1 AMBIENT STACK).
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Sentinel validation errors.
var (
	ErrInvalidConcurrency   = errors.New("analysis concurrency must be positive")
	ErrInvalidDriverTimeout = errors.New("driver timeout must be positive")
	ErrInvalidCancelGrace   = errors.New("cancel grace window must be positive")
	ErrInvalidCacheTTL      = errors.New("cache ttl must be positive")
)

// Default configuration values.
const (
	defaultConcurrency  = 3
	defaultDriverTimeout = 60 * time.Second
	defaultCancelGrace   = 5 * time.Second
	defaultCacheTTL      = 7 * 24 * time.Hour
	defaultCacheMaxSize  = "256MB"
	defaultBatchSize     = 0 // zero lets the executor derive NumCPU * multiplier
)

// Config holds all configuration for the reviewforge review core.
type Config struct {
	Analysis AnalysisConfig `mapstructure:"analysis"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Drivers  DriversConfig  `mapstructure:"drivers"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	MCP      MCPConfig      `mapstructure:"mcp"`
}

// AnalysisConfig holds the executor's dispatch-policy knobs (§4.4, §5).
type AnalysisConfig struct {
	// Concurrency bounds simultaneously running analyzer subprocesses (N
	// in §5; a sensible default is 2-3).
	Concurrency int `mapstructure:"concurrency"`

	// BatchSize bounds how many files are handed to one driver invocation.
	// Zero lets the executor derive a default from NumCPU.
	BatchSize int `mapstructure:"batch_size"`

	// DriverTimeout is the per-batch subprocess deadline (§5 Timeouts).
	DriverTimeout time.Duration `mapstructure:"driver_timeout"`

	// CancelGrace is the SIGTERM-to-SIGKILL escalation window (§5
	// Cancellation).
	CancelGrace time.Duration `mapstructure:"cancel_grace"`

	// Categories is the default category selection for a create() request
	// that doesn't specify one explicitly.
	Categories []string `mapstructure:"categories"`
}

// CacheConfig holds the optional analyzer-result cache's knobs (§6
// "Persisted state", [[pkg/cache]]).
type CacheConfig struct {
	Enabled   bool          `mapstructure:"enabled"`
	Directory string        `mapstructure:"directory"`
	MaxSize   string        `mapstructure:"max_size"`
	TTL       time.Duration `mapstructure:"ttl"`
}

// DriverBinaryConfig is one analyzer's binary path/args override, for
// hosts where the tool isn't on PATH or needs extra flags. BinaryPath is
// applied to the eslint and bandit drivers; ExtraArgs is loaded but not
// passed to any driver.
type DriverBinaryConfig struct {
	BinaryPath string   `mapstructure:"binary_path"`
	ExtraArgs  []string `mapstructure:"extra_args"`
}

// DriversConfig holds per-driver binary path/arg overrides, keyed by
// analyzer name, plus the directory descriptor packs are loaded from.
type DriversConfig struct {
	Binaries      map[string]DriverBinaryConfig `mapstructure:"binaries"`
	DescriptorDir string                        `mapstructure:"descriptor_dir"`
}

// LoggingConfig holds logging-specific configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// MCPConfig holds the MCP stdio server's configuration.
type MCPConfig struct {
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`
	Debug        bool   `mapstructure:"debug"`
}

// LoadConfig loads configuration from file and environment variables.
func LoadConfig(configPath string) (*Config, error) {
	viperCfg := viper.New()

	setDefaults(viperCfg)

	if configPath != "" {
		viperCfg.SetConfigFile(configPath)
	} else {
		viperCfg.SetConfigName("reviewforge")
		viperCfg.SetConfigType("yaml")
		viperCfg.AddConfigPath(".")
		viperCfg.AddConfigPath("./config")
		viperCfg.AddConfigPath("/etc/reviewforge")
	}

	viperCfg.SetEnvPrefix("REVIEWFORGE")
	viperCfg.AutomaticEnv()
	viperCfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	readErr := viperCfg.ReadInConfig()
	if readErr != nil {
		var notFoundErr viper.ConfigFileNotFoundError
		if !errors.As(readErr, &notFoundErr) {
			return nil, fmt.Errorf("failed to read config file: %w", readErr)
		}
	}

	var cfg Config

	unmarshalErr := viperCfg.Unmarshal(&cfg)
	if unmarshalErr != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", unmarshalErr)
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values.
func setDefaults(viperCfg *viper.Viper) {
	viperCfg.SetDefault("analysis.concurrency", defaultConcurrency)
	viperCfg.SetDefault("analysis.batch_size", defaultBatchSize)
	viperCfg.SetDefault("analysis.driver_timeout", defaultDriverTimeout)
	viperCfg.SetDefault("analysis.cancel_grace", defaultCancelGrace)
	viperCfg.SetDefault("analysis.categories", []string{"security", "performance", "quality"})

	viperCfg.SetDefault("cache.enabled", true)
	viperCfg.SetDefault("cache.directory", "/tmp/reviewforge-cache")
	viperCfg.SetDefault("cache.max_size", defaultCacheMaxSize)
	viperCfg.SetDefault("cache.ttl", defaultCacheTTL)

	viperCfg.SetDefault("drivers.descriptor_dir", "")

	viperCfg.SetDefault("logging.level", "info")
	viperCfg.SetDefault("logging.format", "json")

	viperCfg.SetDefault("mcp.debug", false)
}

// validateConfig validates the configuration.
func validateConfig(cfg *Config) error {
	if cfg.Analysis.Concurrency <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidConcurrency, cfg.Analysis.Concurrency)
	}

	if cfg.Analysis.DriverTimeout <= 0 {
		return fmt.Errorf("%w: %s", ErrInvalidDriverTimeout, cfg.Analysis.DriverTimeout)
	}

	if cfg.Analysis.CancelGrace <= 0 {
		return fmt.Errorf("%w: %s", ErrInvalidCancelGrace, cfg.Analysis.CancelGrace)
	}

	if cfg.Cache.Enabled && cfg.Cache.TTL <= 0 {
		return fmt.Errorf("%w: %s", ErrInvalidCacheTTL, cfg.Cache.TTL)
	}

	return nil
}
