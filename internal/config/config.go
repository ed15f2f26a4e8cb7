// Package config loads server and client configuration from environment
// variables.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Backend names accepted by HLB_BACKEND.
const (
	BackendLocal  = "local"
	BackendRemote = "remote"
)

// ServerConfig configures cmd/server.
type ServerConfig struct {
	Addr        string        `env:"HLB_ADDR"         envDefault:":8080"`
	DBPath      string        `env:"HLB_DB_PATH"      envDefault:"./data/hlb.db"`
	JWTSecret   string        `env:"HLB_JWT_SECRET,required,notEmpty"`
	TokenTTL    time.Duration `env:"HLB_TOKEN_TTL"    envDefault:"24h"`
	CORSOrigins []string      `env:"HLB_CORS_ORIGINS" envDefault:"*" envSeparator:","`
	LogLevel    string        `env:"LOG_LEVEL"        envDefault:"info"`
	// AuthRate is the per-IP limit on signup and token requests per minute.
	// Zero disables it.
	AuthRate int `env:"HLB_AUTH_RATE" envDefault:"20"`
}

// ClientConfig configures the hlb CLI.
type ClientConfig struct {
	Server    string        `env:"HLB_SERVER"     envDefault:"http://localhost:8080"`
	Token     string        `env:"HLB_TOKEN"`
	Backend   string        `env:"HLB_BACKEND"    envDefault:"local"`
	LocalPath string        `env:"HLB_LOCAL_PATH" envDefault:"./data/hlb-local.db"`
	RedisURL  string        `env:"HLB_REDIS_URL"`
	UserID    string        `env:"HLB_USER_ID"    envDefault:"local-user"`
	Timeout   time.Duration `env:"HLB_TIMEOUT"    envDefault:"10s"`
	LogLevel  string        `env:"LOG_LEVEL"      envDefault:"warn"`
}

// LoadServer parses ServerConfig from the environment.
func LoadServer() (ServerConfig, error) {
	var cfg ServerConfig
	if err := env.Parse(&cfg); err != nil {
		return ServerConfig{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.AuthRate < 0 {
		return ServerConfig{}, fmt.Errorf("HLB_AUTH_RATE must not be negative, got %d", cfg.AuthRate)
	}
	return cfg, nil
}

// LoadClient parses ClientConfig from the environment.
func LoadClient() (ClientConfig, error) {
	var cfg ClientConfig
	if err := env.Parse(&cfg); err != nil {
		return ClientConfig{}, fmt.Errorf("parse env: %w", err)
	}
	switch cfg.Backend {
	case BackendLocal, BackendRemote:
	default:
		return ClientConfig{}, fmt.Errorf("HLB_BACKEND must be %q or %q, got %q", BackendLocal, BackendRemote, cfg.Backend)
	}
	return cfg, nil
}
