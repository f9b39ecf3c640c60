// Package config provides configuration management for the TasteTrail backend.
// It supports loading configuration from a YAML file with environment variable
// overrides for deployment-specific settings.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Default configuration values.
const (
	DefaultListenAddr     = ":8080"
	DefaultBatchLimit     = 5
	DefaultRequestTimeout = 30 * time.Second
	DefaultSearchCacheTTL = 5 * time.Minute
)

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// ListenAddr is the address the REST API binds to (host:port).
	ListenAddr string `yaml:"listen_addr"`

	// ReadTimeout bounds how long reading a request may take.
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout bounds how long writing a response may take.
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Database string `yaml:"database"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
	MaxConns int32  `yaml:"max_conns"`
	MinConns int32  `yaml:"min_conns"`
}

// RedisConfig holds Redis cache settings.
type RedisConfig struct {
	// Addr is the Redis server address (host:port). Empty disables caching.
	Addr string `yaml:"addr"`

	// Password is the optional Redis AUTH password.
	Password string `yaml:"password"`

	// DB selects the Redis logical database.
	DB int `yaml:"db"`

	// SearchCacheTTL is how long restaurant search responses stay cached.
	SearchCacheTTL time.Duration `yaml:"search_cache_ttl"`
}

// YouTubeConfig holds settings for the video metadata and caption provider.
type YouTubeConfig struct {
	// APIKey authenticates against the metadata API.
	APIKey string `yaml:"api_key"`

	// BaseURL overrides the provider endpoint (tests, proxies).
	BaseURL string `yaml:"base_url,omitempty"`

	// FallbackURL is the secondary transcript provider endpoint.
	FallbackURL string `yaml:"fallback_url,omitempty"`

	// RequestTimeout bounds individual provider calls.
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

// LLMConfig holds settings for the language-model completion endpoint.
type LLMConfig struct {
	// GatewayURL is the chat-completions endpoint.
	GatewayURL string `yaml:"gateway_url"`

	// APIKey authenticates against the gateway.
	APIKey string `yaml:"api_key"`

	// Model is the model identifier sent with each request.
	Model string `yaml:"model"`

	// MaxTokens bounds completion length to keep cost predictable.
	MaxTokens int `yaml:"max_tokens"`

	// Temperature controls sampling; kept low for extraction stability.
	Temperature float64 `yaml:"temperature"`

	// RequestTimeout bounds a single completion call.
	RequestTimeout time.Duration `yaml:"request_timeout"`

	// MaxRetryTime bounds the exponential backoff retry window.
	MaxRetryTime time.Duration `yaml:"max_retry_time"`
}

// PlacesConfig holds settings for the map/places enrichment provider.
type PlacesConfig struct {
	APIKey         string        `yaml:"api_key"`
	BaseURL        string        `yaml:"base_url,omitempty"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

// PipelineConfig holds processing pipeline settings.
type PipelineConfig struct {
	// BatchLimit is the default number of videos pulled per batch run.
	BatchLimit int `yaml:"batch_limit"`

	// MinDurationSeconds is the unprocessed-video query duration floor.
	MinDurationSeconds int `yaml:"min_duration_seconds"`

	// MaxTranscriptChars truncates transcripts before prompting to bound token cost.
	MaxTranscriptChars int `yaml:"max_transcript_chars"`
}

// Config is the root configuration for all TasteTrail services.
type Config struct {
	Environment string         `yaml:"environment"`
	LogLevel    string         `yaml:"log_level"`
	LogJSON     bool           `yaml:"log_json"`
	Server      ServerConfig   `yaml:"server"`
	Database    DatabaseConfig `yaml:"database"`
	Redis       RedisConfig    `yaml:"redis"`
	YouTube     YouTubeConfig  `yaml:"youtube"`
	LLM         LLMConfig      `yaml:"llm"`
	Places      PlacesConfig   `yaml:"places"`
	Pipeline    PipelineConfig `yaml:"pipeline"`
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Environment: "development",
		LogLevel:    "info",
		Server: ServerConfig{
			ListenAddr:   DefaultListenAddr,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 60 * time.Second,
		},
		Database: DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			Database: "tastetrail",
			User:     "tastetrail",
			SSLMode:  "disable",
			MaxConns: 25,
			MinConns: 5,
		},
		Redis: RedisConfig{
			SearchCacheTTL: DefaultSearchCacheTTL,
		},
		YouTube: YouTubeConfig{
			RequestTimeout: DefaultRequestTimeout,
		},
		LLM: LLMConfig{
			Model:          "gpt-4o-mini",
			MaxTokens:      2048,
			Temperature:    0.1,
			RequestTimeout: 25 * time.Second,
			MaxRetryTime:   45 * time.Second,
		},
		Places: PlacesConfig{
			RequestTimeout: 10 * time.Second,
		},
		Pipeline: PipelineConfig{
			BatchLimit:         DefaultBatchLimit,
			MinDurationSeconds: 120,
			MaxTranscriptChars: 24000,
		},
	}
}

// Load reads configuration from the given YAML file (optional) and overlays
// environment variables. Configuration is loaded in this order (later sources
// override earlier):
//  1. Default values
//  2. Config file (if path is non-empty and exists)
//  3. Environment variables (TT_*)
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := loadFromFile(cfg, path); err != nil {
				return nil, fmt.Errorf("loading config file: %w", err)
			}
		}
	}

	loadFromEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// loadFromFile loads configuration from a YAML file.
func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}

	return nil
}

// loadFromEnv overlays environment variables onto the configuration.
func loadFromEnv(cfg *Config) {
	setString(&cfg.Environment, "TT_ENVIRONMENT")
	setString(&cfg.LogLevel, "TT_LOG_LEVEL")
	if v := os.Getenv("TT_LOG_JSON"); v == "true" || v == "1" {
		cfg.LogJSON = true
	}

	setString(&cfg.Server.ListenAddr, "TT_LISTEN_ADDR")

	setString(&cfg.Database.Host, "TT_DB_HOST")
	setInt(&cfg.Database.Port, "TT_DB_PORT")
	setString(&cfg.Database.Database, "TT_DB_NAME")
	setString(&cfg.Database.User, "TT_DB_USER")
	setString(&cfg.Database.Password, "TT_DB_PASSWORD")
	setString(&cfg.Database.SSLMode, "TT_DB_SSLMODE")

	setString(&cfg.Redis.Addr, "TT_REDIS_ADDR")
	setString(&cfg.Redis.Password, "TT_REDIS_PASSWORD")

	setString(&cfg.YouTube.APIKey, "TT_YOUTUBE_API_KEY")
	setString(&cfg.YouTube.BaseURL, "TT_YOUTUBE_BASE_URL")
	setString(&cfg.YouTube.FallbackURL, "TT_TRANSCRIPT_FALLBACK_URL")

	setString(&cfg.LLM.GatewayURL, "TT_LLM_GATEWAY_URL")
	setString(&cfg.LLM.APIKey, "TT_LLM_API_KEY")
	setString(&cfg.LLM.Model, "TT_LLM_MODEL")

	setString(&cfg.Places.APIKey, "TT_PLACES_API_KEY")
	setString(&cfg.Places.BaseURL, "TT_PLACES_BASE_URL")

	setInt(&cfg.Pipeline.BatchLimit, "TT_BATCH_LIMIT")
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.Server.ListenAddr == "" {
		return fmt.Errorf("server.listen_addr is required")
	}
	if c.Database.Host == "" {
		return fmt.Errorf("database.host is required")
	}
	if c.Database.Port <= 0 || c.Database.Port > 65535 {
		return fmt.Errorf("invalid database.port: %d", c.Database.Port)
	}
	if c.Database.MaxConns < c.Database.MinConns {
		return fmt.Errorf("database.max_conns (%d) must be >= database.min_conns (%d)",
			c.Database.MaxConns, c.Database.MinConns)
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		return fmt.Errorf("llm.temperature must be in [0, 2], got %v", c.LLM.Temperature)
	}
	if c.Pipeline.BatchLimit <= 0 {
		return fmt.Errorf("pipeline.batch_limit must be positive")
	}
	return nil
}
