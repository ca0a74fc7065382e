package config

import (
	"context"
	"fmt"

	"github.com/sethvargo/go-envconfig"
)

type DecoderConfig struct {
	Engine string `env:"DECODER_ENGINE, default=gopus"`
}

func NewDecoderConfigFromEnv() (*DecoderConfig, error) {
	var cfg DecoderConfig
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		return nil, err
	}
	if cfg.Engine != "gopus" && cfg.Engine != "native" {
		return nil, fmt.Errorf("DECODER_ENGINE must be gopus or native, got %q", cfg.Engine)
	}

	return &cfg, nil
}
