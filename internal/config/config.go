package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds server configuration loaded from environment variables.
type Config struct {
	Port           int           `envconfig:"PORT" default:"8080"`
	LogLevel       string        `envconfig:"LOG_LEVEL" default:"info"`
	Version        string        `envconfig:"VERSION" default:"dev"`
	BackendURL     string        `envconfig:"BACKEND_URL" required:"true"`
	BackendTimeout time.Duration `envconfig:"BACKEND_TIMEOUT" default:"15s"`

	// Service account used to sign chat custom tokens. Token exchange is
	// disabled when either is empty.
	ChatServiceAccountEmail string        `envconfig:"CHAT_SERVICE_ACCOUNT_EMAIL" default:""`
	ChatPrivateKeyPath      string        `envconfig:"CHAT_PRIVATE_KEY_PATH" default:""`
	ChatTokenTTL            time.Duration `envconfig:"CHAT_TOKEN_TTL" default:"1h"`
}

// ClientConfig holds configuration for the ysn client, read from YSN_*
// environment variables.
type ClientConfig struct {
	BackendURL        string        `envconfig:"BACKEND_URL" required:"true"`
	ServerURL         string        `envconfig:"SERVER_URL" default:"http://localhost:8080"`
	StatePath         string        `envconfig:"STATE_PATH" default:""`
	StateKey          string        `envconfig:"STATE_KEY" default:""`
	LogLevel          string        `envconfig:"LOG_LEVEL" default:"warn"`
	ChatAPIKey        string        `envconfig:"CHAT_API_KEY" default:""`
	ChatAuthURL       string        `envconfig:"CHAT_AUTH_URL" default:"https://identitytoolkit.googleapis.com"`
	ChatDatabaseURL   string        `envconfig:"CHAT_DATABASE_URL" default:""`
	ReconcileInterval time.Duration `envconfig:"RECONCILE_INTERVAL" default:"10s"`
	RequestTimeout    time.Duration `envconfig:"REQUEST_TIMEOUT" default:"15s"`
}

// Load reads server configuration from environment variables into a Config struct.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadClient reads client configuration from YSN_-prefixed environment variables.
func LoadClient() (*ClientConfig, error) {
	var cfg ClientConfig
	if err := envconfig.Process("ysn", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ChatEnabled reports whether the server has what it needs to mint chat tokens.
func (c *Config) ChatEnabled() bool {
	return c.ChatServiceAccountEmail != "" && c.ChatPrivateKeyPath != ""
}
