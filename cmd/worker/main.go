package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/redis/go-redis/v9"
	"github.com/stillpine/needledrop/internal/config"
	"github.com/stillpine/needledrop/internal/datalayer"
	"github.com/stillpine/needledrop/internal/opus"
	"github.com/stillpine/needledrop/internal/repository"
	"github.com/stillpine/needledrop/internal/worker"
)

var dryRun = flag.Bool("dry-run", false, "Do not decode, just print job info to terminal")

func runWorkerForever() error {
	slog.SetLogLoggerLevel(slog.LevelDebug)
	if err := config.LoadEnv(); err != nil {
		return fmt.Errorf("failed to load .env file: %w", err)
	}

	ctx := context.Background()

	redisConfig, err := config.NewRedisConfigFromEnv()
	if err != nil {
		return fmt.Errorf("failed to load redis config: %w", err)
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     redisConfig.Addr,
		Password: redisConfig.Password,
		DB:       redisConfig.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}

	decoderConfig, err := config.NewDecoderConfigFromEnv()
	if err != nil {
		return fmt.Errorf("failed to load decoder config: %w", err)
	}
	newDecoder, err := opus.FactoryFor(decoderConfig.Engine)
	if err != nil {
		return fmt.Errorf("failed to pick decoder engine: %w", err)
	}

	pool, err := datalayer.NewPostgresPoolFromEnv(ctx)
	if err != nil {
		return fmt.Errorf("failed to create postgres pool: %w", err)
	}
	defer pool.Close()

	if err := datalayer.MigratePostgres(pool); err != nil {
		return fmt.Errorf("failed to migrate postgres: %w", err)
	}

	minioStorage, err := datalayer.NewMinioStorageFromEnv()
	if err != nil {
		return fmt.Errorf("failed to create minio storage: %w", err)
	}
	if err := minioStorage.EnsureBucket(ctx); err != nil {
		return fmt.Errorf("failed to ensure minio bucket: %w", err)
	}

	consumer, err := os.Hostname()
	if err != nil {
		return fmt.Errorf("failed to get hostname: %w", err)
	}

	receiver, err := worker.NewRedisJobReceiver(rdb, consumer)
	if err != nil {
		return fmt.Errorf("failed to create job receiver: %w", err)
	}

	pipeline := &worker.Pipeline{
		Storage:    minioStorage,
		Recorder:   repository.NewPostgresClipRepository(pool),
		Quarantine: worker.NewRedisQuarantine(rdb),
		NewDecoder: newDecoder,
	}

	for {
		received, err := receiver.Receive(ctx)
		if err != nil {
			return fmt.Errorf("failed to receive jobs: %w", err)
		}

		for _, rj := range received {
			if *dryRun {
				slog.Info(
					"Dry run mode: job would be decoded",
					slog.String("clipID", rj.Job.ClipID),
					slog.String("objectKey", rj.Job.ObjectKey),
				)
				if err := receiver.Ack(ctx, rj.ID); err != nil {
					slog.Error("failed to ack job", slog.Any("error", err))
				}
				continue
			}

			if err := pipeline.Process(ctx, rj.Job); err != nil {
				slog.Error(
					"Decode job failed, leaving it pending",
					slog.String("clipID", rj.Job.ClipID),
					slog.Any("error", err),
				)
				continue
			}
			if err := receiver.Ack(ctx, rj.ID); err != nil {
				slog.Error("failed to ack job", slog.Any("error", err))
			}
		}
	}
}

func main() {
	flag.Parse()
	if err := runWorkerForever(); err != nil {
		slog.Error("Worker encountered an error", slog.Any("error", err))
		os.Exit(1)
	}
}
