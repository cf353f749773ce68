package config

import (
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	"leadscout/internal/leads"
)

// EnvPrefix namespaces every environment variable, e.g. LEADSCOUT_SERVER_PORT
const EnvPrefix = "LEADSCOUT"

// ConfigFileEnv names the variable that points at an explicit YAML file
const ConfigFileEnv = "LEADSCOUT_CONFIG"

// DefaultLogFile is used when file logging is enabled without a path
const DefaultLogFile = "logs/leadscout.log"

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server" envconfig:"SERVER"`
	Security  SecurityConfig  `yaml:"security" envconfig:"SECURITY"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Scoring   ScoringConfig   `yaml:"scoring" envconfig:"SCORING"`
	Sentiment SentimentConfig `yaml:"sentiment" envconfig:"SENTIMENT"`
	Dataset   DatasetConfig   `yaml:"dataset" envconfig:"DATASET"`
	Directory DirectoryConfig `yaml:"directory" envconfig:"DIRECTORY"`
	Export    ExportConfig    `yaml:"export" envconfig:"EXPORT"`
	WebSocket WebSocketConfig `yaml:"websocket" envconfig:"WEBSOCKET"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT"`
	MaxHeaderBytes  int           `yaml:"max_header_bytes" envconfig:"MAX_HEADER_BYTES"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT"`
	RequestTimeout  time.Duration `yaml:"request_timeout" envconfig:"REQUEST_TIMEOUT"`
}

// SecurityConfig contains security-related configuration
type SecurityConfig struct {
	AllowedOrigins []string        `yaml:"allowed_origins" envconfig:"ALLOWED_ORIGINS"`
	EnableCORS     bool            `yaml:"enable_cors" envconfig:"ENABLE_CORS"`
	MaxUploadBytes int64           `yaml:"max_upload_bytes" envconfig:"MAX_UPLOAD_BYTES"`
	RateLimit      RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED"`
	RPS     float64 `yaml:"rps" envconfig:"RPS"`
	Burst   int     `yaml:"burst" envconfig:"BURST"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level       string `yaml:"level" envconfig:"LEVEL"`
	Format      string `yaml:"format" envconfig:"FORMAT"`
	Output      string `yaml:"output" envconfig:"OUTPUT"`
	FilePath    string `yaml:"file_path" envconfig:"FILE_PATH"`
	Development bool   `yaml:"development" envconfig:"DEVELOPMENT"`
}

// ScoringConfig contains the lead scoring policy
type ScoringConfig struct {
	WeightingMode     string  `yaml:"weighting_mode" envconfig:"WEIGHTING_MODE"`
	SentimentWeight   float64 `yaml:"sentiment_weight" envconfig:"SENTIMENT_WEIGHT"`
	OnUnknownCategory string  `yaml:"on_unknown_category" envconfig:"ON_UNKNOWN_CATEGORY"`
	Workers           int     `yaml:"workers" envconfig:"WORKERS"`
	BatchSize         int     `yaml:"batch_size" envconfig:"BATCH_SIZE"`
	TopN              int     `yaml:"top_n" envconfig:"TOP_N"`
}

// Policy converts the section to the engine's scoring config
func (s ScoringConfig) Policy() leads.ScoringConfig {
	return leads.ScoringConfig{
		WeightingMode:     leads.WeightingMode(s.WeightingMode),
		SentimentWeight:   s.SentimentWeight,
		OnUnknownCategory: leads.UnknownCategoryPolicy(s.OnUnknownCategory),
	}
}

// Sentiment providers
const (
	SentimentProviderLexicon = "lexicon"
	SentimentProviderHTTP    = "http"
)

// SentimentConfig selects and tunes the sentiment scorer
type SentimentConfig struct {
	Provider      string        `yaml:"provider" envconfig:"PROVIDER"`
	Endpoint      string        `yaml:"endpoint" envconfig:"ENDPOINT"`
	APIKey        string        `yaml:"api_key" envconfig:"API_KEY"`
	Timeout       time.Duration `yaml:"timeout" envconfig:"TIMEOUT"`
	RatePerSecond float64       `yaml:"rate_per_second" envconfig:"RATE_PER_SECOND"`
	Burst         int           `yaml:"burst" envconfig:"BURST"`
	MaxFailures   uint32        `yaml:"max_failures" envconfig:"MAX_FAILURES"`
	OpenTimeout   time.Duration `yaml:"open_timeout" envconfig:"OPEN_TIMEOUT"`
	// FallbackToLexicon scores locally when the remote scorer is unavailable
	FallbackToLexicon bool `yaml:"fallback_to_lexicon" envconfig:"FALLBACK_TO_LEXICON"`
}

// DatasetConfig controls where the served news dataset comes from
type DatasetConfig struct {
	InitialFile     string `yaml:"initial_file" envconfig:"INITIAL_FILE"`
	GenerateOnStart bool   `yaml:"generate_on_start" envconfig:"GENERATE_ON_START"`
	SyntheticCount  int    `yaml:"synthetic_count" envconfig:"SYNTHETIC_COUNT"`
	Seed            int64  `yaml:"seed" envconfig:"SEED"`
	RefreshCron     string `yaml:"refresh_cron" envconfig:"REFRESH_CRON"`
}

// DirectoryConfig locates the company directory
type DirectoryConfig struct {
	CompaniesFile string `yaml:"companies_file" envconfig:"COMPANIES_FILE"`
}

// ExportConfig contains file export configuration
type ExportConfig struct {
	Dir string `yaml:"dir" envconfig:"DIR"`
}

// WebSocketConfig contains WebSocket configuration
type WebSocketConfig struct {
	ReadBufferSize  int           `yaml:"read_buffer_size" envconfig:"READ_BUFFER_SIZE"`
	WriteBufferSize int           `yaml:"write_buffer_size" envconfig:"WRITE_BUFFER_SIZE"`
	PingPeriod      time.Duration `yaml:"ping_period" envconfig:"PING_PERIOD"`
	PongWait        time.Duration `yaml:"pong_wait" envconfig:"PONG_WAIT"`
}

// TelemetryConfig contains OpenTelemetry configuration
type TelemetryConfig struct {
	ServiceName    string  `yaml:"service_name" envconfig:"SERVICE_NAME"`
	Environment    string  `yaml:"environment" envconfig:"ENVIRONMENT"`
	TracingEnabled bool    `yaml:"tracing_enabled" envconfig:"TRACING_ENABLED"`
	TraceExporter  string  `yaml:"trace_exporter" envconfig:"TRACE_EXPORTER"`
	MetricsEnabled bool    `yaml:"metrics_enabled" envconfig:"METRICS_ENABLED"`
	SampleRate     float64 `yaml:"sample_rate" envconfig:"SAMPLE_RATE"`
}

// Load builds the configuration in three layers: Default(), then the YAML file
// if one is found, then LEADSCOUT_* environment variables.
func Load() (*Config, error) {
	cfg := Default()

	if configFile := getConfigFilePath(); configFile != "" {
		if err := loadFromFile(configFile, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// loadFromFile overlays the YAML file onto cfg; keys missing from the file keep
// their current value
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// validate validates the configuration
func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server read timeout must be positive")
	}

	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server write timeout must be positive")
	}

	if c.Security.EnableCORS && len(c.Security.AllowedOrigins) == 0 {
		return fmt.Errorf("at least one allowed origin must be specified")
	}

	if c.Security.RateLimit.Enabled && (c.Security.RateLimit.RPS <= 0 || c.Security.RateLimit.Burst <= 0) {
		return fmt.Errorf("rate limit rps and burst must be positive")
	}

	if err := c.Scoring.Policy().Validate(); err != nil {
		return fmt.Errorf("scoring: %w", err)
	}
	if c.Scoring.Workers < 0 || c.Scoring.BatchSize < 0 || c.Scoring.TopN < 0 {
		return fmt.Errorf("scoring workers, batch size and top n must not be negative")
	}

	switch c.Sentiment.Provider {
	case SentimentProviderLexicon:
	case SentimentProviderHTTP:
		if c.Sentiment.Endpoint == "" {
			return fmt.Errorf("sentiment endpoint is required for the http provider")
		}
	default:
		return fmt.Errorf("unsupported sentiment provider %q", c.Sentiment.Provider)
	}

	if c.Dataset.SyntheticCount < 1 || c.Dataset.SyntheticCount > 10000 {
		return fmt.Errorf("dataset synthetic count must be in [1, 10000], got %d", c.Dataset.SyntheticCount)
	}

	switch c.Logging.Output {
	case "console", "file", "both":
	default:
		c.Logging.Output = "console"
	}
	if c.Logging.Format != "json" {
		c.Logging.Format = "json"
	}
	if c.Logging.Output != "console" && c.Logging.FilePath == "" {
		c.Logging.FilePath = DefaultLogFile
	}

	return nil
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	if explicit := os.Getenv(ConfigFileEnv); explicit != "" {
		return explicit
	}

	locations := []string{
		"config.yaml",
		"configs/config.yaml",
		"../configs/config.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return "" // No config file found, use env vars only
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     60 * time.Second,
			MaxHeaderBytes:  1 << 20, // 1MB
			ShutdownTimeout: 30 * time.Second,
			RequestTimeout:  30 * time.Second,
		},
		Security: SecurityConfig{
			AllowedOrigins: []string{"http://localhost:8080"},
			EnableCORS:     true,
			MaxUploadBytes: 10 << 20,
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     100,
				Burst:   50,
			},
		},
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "console",
			FilePath: DefaultLogFile,
		},
		Scoring: ScoringConfig{
			WeightingMode:     string(leads.WeightingWeighted),
			SentimentWeight:   leads.DefaultSentimentWeight,
			OnUnknownCategory: string(leads.UnknownCategoryFail),
			BatchSize:         64,
			TopN:              5,
		},
		Sentiment: SentimentConfig{
			Provider:          SentimentProviderLexicon,
			Timeout:           2 * time.Second,
			MaxFailures:       5,
			OpenTimeout:       30 * time.Second,
			FallbackToLexicon: true,
		},
		Dataset: DatasetConfig{
			GenerateOnStart: true,
			SyntheticCount:  50,
		},
		Export: ExportConfig{
			Dir: "data/exports",
		},
		WebSocket: WebSocketConfig{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			PingPeriod:      30 * time.Second,
			PongWait:        60 * time.Second,
		},
		Telemetry: TelemetryConfig{
			ServiceName:    "leadscout",
			Environment:    "development",
			TracingEnabled: false,
			TraceExporter:  "stdout",
			MetricsEnabled: true,
			SampleRate:     1.0,
		},
	}
}
