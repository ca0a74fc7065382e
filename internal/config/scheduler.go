package config

import (
	"context"
	"fmt"

	"github.com/sethvargo/go-envconfig"

	"github.com/stillpine/needledrop/internal/schedule"
)

type SchedulerConfig struct {
	Cron         string `env:"SCHEDULER_CRON, default=*/1 * * * *"`
	IngestPrefix string `env:"SCHEDULER_INGEST_PREFIX, default=ingest/"`
}

func NewSchedulerConfigFromEnv() (*SchedulerConfig, error) {
	var cfg SchedulerConfig
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		return nil, err
	}
	if err := schedule.ValidateCron(cfg.Cron); err != nil {
		return nil, fmt.Errorf("SCHEDULER_CRON: %w", err)
	}

	return &cfg, nil
}
