package config

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
)

// LoadEnv loads variables from a .env file when one exists. A missing
// file is fine; real deployments set the environment directly.
func LoadEnv() error {
	if err := godotenv.Load(); err != nil {
		if os.IsNotExist(err) {
			slog.Warn("no .env file found, relying on the environment")
			return nil
		}
		return err
	}
	return nil
}
