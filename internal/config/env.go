package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// ServerConfig is the runtime configuration of the compute server, loaded
// from environment variables.
type ServerConfig struct {
	ListenAddr  string `env:"PP_LISTEN_ADDR" envDefault:":8080"`
	DatabaseURL string `env:"PP_DATABASE_URL"`
	SQLitePath  string `env:"PP_SQLITE_PATH"`
}

// DispatchConfig configures the dual-execution dispatcher's remote path.
type DispatchConfig struct {
	RemoteURL     string        `env:"PP_REMOTE_URL"`
	RemoteTimeout time.Duration `env:"PP_REMOTE_TIMEOUT" envDefault:"3s"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}
