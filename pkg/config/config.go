// Package config provides configuration loading and validation for gitsynth.
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
	ErrInvalidSimilarity   = errors.New("rename similarity must be between 1 and 100")
	ErrInvalidBatchSize    = errors.New("synthesis batch size must be positive")
	ErrInvalidMemoryBudget = errors.New("blob cache max bytes must be positive")
	ErrInvalidServerPort   = errors.New("invalid server port")
	ErrMissingAuthor       = errors.New("synthesis author name and email are required")
)

// Default configuration values.
const (
	defaultRenameSimilarity = 50
	defaultBatchSize        = 256
	defaultBlobCacheBytes   = 256 << 20 // 256 MiB, matches pkg/synth.blobCacheMaxBytes.
	defaultServerPort       = 8080
	maxPort                 = 65535
)

// Config holds all configuration for the gitsynth server and CLI.
type Config struct {
	Repository    RepositoryConfig    `mapstructure:"repository"`
	Synthesis     SynthesisConfig     `mapstructure:"synthesis"`
	Language      LanguageConfig      `mapstructure:"language"`
	Observability ObservabilityConfig `mapstructure:"observability"`
	Server        ServerConfig        `mapstructure:"server"`
}

// RepositoryConfig controls which git repository and revisions a pipeline
// run targets.
type RepositoryConfig struct {
	Path             string `mapstructure:"path"`
	GitBinary        string `mapstructure:"git_binary"`
	RenameSimilarity int    `mapstructure:"rename_similarity"`
	TargetPath       string `mapstructure:"target_path"`
	Branch           string `mapstructure:"branch"`
	TrackUntracked   bool   `mapstructure:"track_untracked"`
}

// SynthesisConfig controls the commit-synthesis stage.
type SynthesisConfig struct {
	AuthorName     string        `mapstructure:"author_name"`
	AuthorMail     string        `mapstructure:"author_mail"`
	BatchSize      int           `mapstructure:"batch_size"`
	BlobCacheBytes int64         `mapstructure:"blob_cache_bytes"`
	SyncWorktree   bool          `mapstructure:"sync_worktree"`
	Timeout        time.Duration `mapstructure:"timeout"`
}

// LanguageConfig selects which tree-sitter grammars the labelling stage
// loads.
type LanguageConfig struct {
	ConfigPath       string   `mapstructure:"config_path"`
	EnabledLanguages []string `mapstructure:"enabled_languages"`
}

// ObservabilityConfig controls structured logging and metrics export.
type ObservabilityConfig struct {
	LogLevel     string `mapstructure:"log_level"`
	LogFormat    string `mapstructure:"log_format"`
	MetricsAddr  string `mapstructure:"metrics_addr"`
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`
}

// ServerConfig holds the MCP/HTTP server's listen configuration.
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	Enabled      bool          `mapstructure:"enabled"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// LoadConfig loads configuration from file and environment variables.
func LoadConfig(configPath string) (*Config, error) {
	viperCfg := viper.New()

	setDefaults(viperCfg)

	if configPath != "" {
		viperCfg.SetConfigFile(configPath)
	} else {
		viperCfg.SetConfigName("gitsynth")
		viperCfg.SetConfigType("yaml")
		viperCfg.AddConfigPath(".")
		viperCfg.AddConfigPath("./config")
		viperCfg.AddConfigPath("/etc/gitsynth")
	}

	viperCfg.SetEnvPrefix("GITSYNTH")
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

	if err := viperCfg.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values.
func setDefaults(viperCfg *viper.Viper) {
	viperCfg.SetDefault("repository.git_binary", "git")
	viperCfg.SetDefault("repository.rename_similarity", defaultRenameSimilarity)
	viperCfg.SetDefault("repository.branch", "")
	viperCfg.SetDefault("repository.track_untracked", true)

	viperCfg.SetDefault("synthesis.author_name", "gitsynth")
	viperCfg.SetDefault("synthesis.author_mail", "gitsynth@localhost")
	viperCfg.SetDefault("synthesis.batch_size", defaultBatchSize)
	viperCfg.SetDefault("synthesis.blob_cache_bytes", defaultBlobCacheBytes)
	viperCfg.SetDefault("synthesis.sync_worktree", false)
	viperCfg.SetDefault("synthesis.timeout", "10m")

	viperCfg.SetDefault("language.enabled_languages", []string{"go", "python", "javascript", "typescript"})

	viperCfg.SetDefault("observability.log_level", "info")
	viperCfg.SetDefault("observability.log_format", "json")
	viperCfg.SetDefault("observability.metrics_addr", ":9090")

	viperCfg.SetDefault("server.enabled", false)
	viperCfg.SetDefault("server.port", defaultServerPort)
	viperCfg.SetDefault("server.host", "0.0.0.0")
	viperCfg.SetDefault("server.read_timeout", "30s")
	viperCfg.SetDefault("server.write_timeout", "30s")
}

// Validate checks that a loaded Config is internally consistent.
func (c *Config) Validate() error {
	if c.Repository.RenameSimilarity <= 0 || c.Repository.RenameSimilarity > 100 {
		return fmt.Errorf("%w: %d", ErrInvalidSimilarity, c.Repository.RenameSimilarity)
	}

	if c.Synthesis.BatchSize <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidBatchSize, c.Synthesis.BatchSize)
	}

	if c.Synthesis.BlobCacheBytes <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidMemoryBudget, c.Synthesis.BlobCacheBytes)
	}

	if c.Synthesis.AuthorName == "" || c.Synthesis.AuthorMail == "" {
		return ErrMissingAuthor
	}

	if c.Server.Enabled && (c.Server.Port <= 0 || c.Server.Port > maxPort) {
		return fmt.Errorf("%w: %d", ErrInvalidServerPort, c.Server.Port)
	}

	return nil
}
