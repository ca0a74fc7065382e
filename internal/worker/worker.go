// Package worker moves decode jobs between the scheduler and the
// workers and runs the decode pipeline for each job.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/stillpine/needledrop/internal/util"
)

// Names of the redis structures the pipeline shares.
const (
	JobStream     = "needledrop_jobs"
	DecodingGroup = "needledrop_decoding_group"
	quarantineSet = "needledrop_quarantine"
)

// DecodeJob tells a worker to fetch one ingest object and decode it.
type DecodeJob struct {
	ClipID    string
	ObjectKey string
}

type JobHandler interface {
	HandleJobs(ctx context.Context, jobs ...DecodeJob) error
}

// PrintingJobHandler logs jobs instead of queueing them. It backs the
// scheduler's dry run mode.
type PrintingJobHandler struct{}

func (h *PrintingJobHandler) HandleJobs(ctx context.Context, jobs ...DecodeJob) error {
	for _, job := range jobs {
		slog.InfoContext(
			ctx,
			"Handling decode job",
			slog.String("clipID", job.ClipID),
			slog.String("objectKey", job.ObjectKey),
		)
	}
	return nil
}

// ensureGroup creates the decoding group, tolerating one that already
// exists so every scheduler and worker can call it at startup.
func ensureGroup(client *redis.Client) error {
	err := client.XGroupCreateMkStream(context.Background(), JobStream, DecodingGroup, "$").Err()
	if err != nil && err != redis.Nil && err.Error() != "BUSYGROUP Consumer Group name already exists" {
		return err
	}
	return nil
}

type RedisJobHandler struct {
	client *redis.Client
}

func NewRedisJobHandler(client *redis.Client) (*RedisJobHandler, error) {
	if err := ensureGroup(client); err != nil {
		return nil, err
	}
	return &RedisJobHandler{client: client}, nil
}

var _ JobHandler = (*RedisJobHandler)(nil)

func (h *RedisJobHandler) HandleJobs(ctx context.Context, jobs ...DecodeJob) error {
	_, err := h.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, job := range jobs {
			pipe.XAdd(ctx, &redis.XAddArgs{
				Stream: JobStream,
				Values: map[string]any{
					"clipID":    job.ClipID,
					"objectKey": job.ObjectKey,
				},
			})
		}
		return nil
	})
	return err
}

// ReceivedJob pairs a decode job with the stream ID needed to ack it.
type ReceivedJob struct {
	ID  string
	Job DecodeJob
}

// RedisJobReceiver pulls decode jobs from the stream as one consumer
// of the decoding group.
type RedisJobReceiver struct {
	client   *redis.Client
	consumer string
}

func NewRedisJobReceiver(client *redis.Client, consumer string) (*RedisJobReceiver, error) {
	if err := ensureGroup(client); err != nil {
		return nil, err
	}
	return &RedisJobReceiver{client: client, consumer: consumer}, nil
}

// Receive blocks for up to a few seconds and returns any jobs that
// arrived. A nil slice with no error means the wait timed out.
func (r *RedisJobReceiver) Receive(ctx context.Context) ([]ReceivedJob, error) {
	streams, err := r.client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    DecodingGroup,
		Consumer: r.consumer,
		Streams:  []string{JobStream, ">"},
		Count:    8,
		Block:    5 * time.Second,
	}).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read job stream: %w", err)
	}

	var jobs []ReceivedJob
	for _, stream := range streams {
		for _, msg := range stream.Messages {
			clipID, cErr := util.GetString(msg.Values, "clipID")
			objectKey, oErr := util.GetString(msg.Values, "objectKey")
			if cErr != nil || oErr != nil {
				slog.WarnContext(
					ctx,
					"Dropping malformed job message",
					slog.String("messageID", msg.ID),
					slog.Any("error", errors.Join(cErr, oErr)),
				)
				if err := r.Ack(ctx, msg.ID); err != nil {
					return nil, err
				}
				continue
			}
			jobs = append(jobs, ReceivedJob{
				ID:  msg.ID,
				Job: DecodeJob{ClipID: clipID, ObjectKey: objectKey},
			})
		}
	}
	return jobs, nil
}

// Ack removes a delivered job from the group's pending list. Jobs that
// are not acked are redelivered to another consumer.
func (r *RedisJobReceiver) Ack(ctx context.Context, id string) error {
	return r.client.XAck(ctx, JobStream, DecodingGroup, id).Err()
}
