package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Storage   StorageConfig
	CORS      CORSConfig
	Logging   LogConfig
	RateLimit RateLimitConfig
	Dashboard DashboardConfig
	WebSocket WebSocketConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port string `envconfig:"PORT" default:"3000"`
	Host string `envconfig:"HOST" default:"0.0.0.0"`
}

// StorageConfig locates the persisted documents and optional preset seeds.
type StorageConfig struct {
	DataDir      string `envconfig:"DATA_DIR" default:"./data"`
	PresetsDir   string `envconfig:"PRESETS_DIR"`
	WatchPresets bool   `envconfig:"PRESETS_WATCH" default:"false"`
}

// CORSConfig lists the display origins allowed to call the API.
type CORSConfig struct {
	Origins []string `envconfig:"CORS_ORIGIN" default:"http://localhost:5173,http://localhost:8080"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string        `envconfig:"LOG_LEVEL" default:"info"`
	Development bool          `envconfig:"LOG_DEV" default:"false"`
	SlowRequest time.Duration `envconfig:"LOG_SLOW_REQUEST" default:"1s"`
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" default:"100"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" default:"200"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
}

// DashboardConfig holds orchestration behavior.
type DashboardConfig struct {
	ActivateDefaultOnStart bool `envconfig:"ACTIVATE_DEFAULT_ON_START" default:"false"`
	FeedDefaultLimit       int  `envconfig:"FEED_DEFAULT_LIMIT" default:"50"`
}

// WebSocketConfig holds broadcast channel configuration.
type WebSocketConfig struct {
	SendBuffer int `envconfig:"WS_SEND_BUFFER" default:"64"`
}

// Addr returns the host:port the server listens on.
func (c *Config) Addr() string {
	return c.Server.Host + ":" + c.Server.Port
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port: "3000",
			Host: "0.0.0.0",
		},
		Storage: StorageConfig{
			DataDir: "./data",
		},
		CORS: CORSConfig{
			Origins: []string{"http://localhost:5173", "http://localhost:8080"},
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
			SlowRequest: time.Second,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 100,
			Burst:             200,
			Enabled:           true,
		},
		Dashboard: DashboardConfig{
			ActivateDefaultOnStart: false,
			FeedDefaultLimit:       50,
		},
		WebSocket: WebSocketConfig{
			SendBuffer: 64,
		},
	}
}
