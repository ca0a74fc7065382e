package config

import (
	"context"
	"fmt"

	"github.com/sethvargo/go-envconfig"
)

type PostgresConfig struct {
	Host     string `env:"POSTGRES_HOST, required"`
	Port     string `env:"POSTGRES_PORT, default=5432"`
	Username string `env:"POSTGRES_USERNAME, required"`
	Password string `env:"POSTGRES_PASSWORD, required"`
	Database string `env:"POSTGRES_DATABASE, required"`
	SSLMode  string `env:"POSTGRES_SSLMODE, default=disable"`

	// Workers and the scheduler each hold a handful of catalog
	// connections at most, so the pool stays small by default.
	PoolMaxConns int `env:"POSTGRES_POOL_MAX_CONNS, default=4"`
}

func NewPostgresConfigFromEnv() (*PostgresConfig, error) {
	var cfg PostgresConfig
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		return nil, err
	}
	if cfg.PoolMaxConns < 1 {
		return nil, fmt.Errorf("POSTGRES_POOL_MAX_CONNS must be at least 1, got %d", cfg.PoolMaxConns)
	}

	return &cfg, nil
}

// DSN renders a pgx connection string. pgxpool reads pool_max_conns
// out of the query parameters.
func (c *PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s&pool_max_conns=%d",
		c.Username,
		c.Password,
		c.Host,
		c.Port,
		c.Database,
		c.SSLMode,
		c.PoolMaxConns,
	)
}
