package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"

	"github.com/redis/go-redis/v9"
	"github.com/stillpine/needledrop/internal/config"
	"github.com/stillpine/needledrop/internal/datalayer"
	"github.com/stillpine/needledrop/internal/generator"
	"github.com/stillpine/needledrop/internal/repository"
	"github.com/stillpine/needledrop/internal/schedule"
	"github.com/stillpine/needledrop/internal/worker"
)

var dryRun = flag.Bool("dry-run", false, "Catalog new clips but print decode jobs instead of queueing them")

func runSchedulerForever() error {
	if err := config.LoadEnv(); err != nil {
		return fmt.Errorf("failed to load .env file: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	pool, err := datalayer.NewPostgresPoolFromEnv(ctx)
	if err != nil {
		return fmt.Errorf("failed to create postgres pool: %w", err)
	}
	defer pool.Close()

	if err := datalayer.MigratePostgres(pool); err != nil {
		return fmt.Errorf("failed to migrate postgres: %w", err)
	}

	schedulerConfig, err := config.NewSchedulerConfigFromEnv()
	if err != nil {
		return fmt.Errorf("failed to load scheduler config: %w", err)
	}

	minioStorage, err := datalayer.NewMinioStorageFromEnv()
	if err != nil {
		return fmt.Errorf("failed to create minio storage: %w", err)
	}
	if err := minioStorage.EnsureBucket(ctx); err != nil {
		return fmt.Errorf("failed to ensure minio bucket: %w", err)
	}

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

	var jobHandler worker.JobHandler = &worker.PrintingJobHandler{}
	if !*dryRun {
		jobHandler, err = worker.NewRedisJobHandler(rdb)
		if err != nil {
			return fmt.Errorf("failed to create job handler: %w", err)
		}
	}

	sweeper := &worker.Sweeper{
		Storage:      minioStorage,
		Catalog:      repository.NewPostgresClipRepository(pool),
		Quarantine:   worker.NewRedisQuarantine(rdb),
		Jobs:         jobHandler,
		IDs:          &generator.UUIDV4Generator{},
		IngestPrefix: schedulerConfig.IngestPrefix,
	}

	for {
		next, err := schedule.NextRun(schedulerConfig.Cron)
		if err != nil {
			return fmt.Errorf("failed to compute next sweep time: %w", err)
		}
		slog.Info("Waiting for next sweep", slog.Time("runAt", next))

		if err := schedule.Wait(ctx, next); err != nil {
			slog.Info("Scheduler stopping", slog.Any("cause", err))
			return nil
		}
		if err := sweeper.Sweep(ctx); err != nil {
			slog.Error("Sweep failed", slog.Any("error", err))
		}
	}
}

func main() {
	flag.Parse()
	if err := runSchedulerForever(); err != nil {
		log.Fatalf("failed to run scheduler: %v", err)
	}
}
