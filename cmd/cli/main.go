package main

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/redis/go-redis/v9"
	"github.com/stillpine/needledrop/internal/config"
	"github.com/stillpine/needledrop/internal/datalayer"
	"github.com/stillpine/needledrop/internal/generator"
	"github.com/stillpine/needledrop/internal/oggopus"
	"github.com/stillpine/needledrop/internal/opus"
	"github.com/stillpine/needledrop/internal/pcm"
	"github.com/stillpine/needledrop/internal/playback"
	"github.com/stillpine/needledrop/internal/presenters"
	"github.com/stillpine/needledrop/internal/repository"
	"github.com/stillpine/needledrop/internal/wav"
	"github.com/stillpine/needledrop/internal/worker"
	"github.com/urfave/cli/v2"
)

var uuidGenerator = generator.UUIDV4Generator{}

func openRepository(ctx context.Context) (*repository.PostgresClipRepository, func(), error) {
	pool, err := datalayer.NewPostgresPoolFromEnv(ctx)
	if err != nil {
		return nil, nil, err
	}
	if err := datalayer.MigratePostgres(pool); err != nil {
		pool.Close()
		return nil, nil, err
	}
	return repository.NewPostgresClipRepository(pool), pool.Close, nil
}

func openStorage(ctx context.Context) (*datalayer.MinioStorage, error) {
	storage, err := datalayer.NewMinioStorageFromEnv()
	if err != nil {
		return nil, err
	}
	if err := storage.EnsureBucket(ctx); err != nil {
		return nil, err
	}
	return storage, nil
}

func openRedis(ctx context.Context) (*redis.Client, error) {
	redisConfig, err := config.NewRedisConfigFromEnv()
	if err != nil {
		return nil, err
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     redisConfig.Addr,
		Password: redisConfig.Password,
		DB:       redisConfig.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return rdb, nil
}

// decoderFactory picks the Opus engine from the global --engine flag,
// falling back to DECODER_ENGINE.
func decoderFactory(c *cli.Context) (opus.Factory, error) {
	engine := c.String("engine")
	if engine == "" {
		decoderConfig, err := config.NewDecoderConfigFromEnv()
		if err != nil {
			return nil, err
		}
		engine = decoderConfig.Engine
	}
	return opus.FactoryFor(engine)
}

func decodeFile(path string, newDecoder opus.Factory) (string, []float32, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", nil, err
	}
	return worker.DecodeClip(data, newDecoder)
}

func main() {
	if err := config.LoadEnv(); err != nil {
		log.Fatalf("Failed to load .env file: %v", err)
	}

	app := &cli.App{
		Name:        "needledrop",
		Description: "A development CLI tool for exercising the pipeline without the services",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "engine",
				Usage: "Opus decoder engine, gopus or native (overrides DECODER_ENGINE)",
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "decode",
				Usage:     "Decode a local WebM or Ogg clip to a playable file",
				ArgsUsage: "<file>",
				Action: func(c *cli.Context) error {
					path := c.Args().First()
					if path == "" {
						return cli.Exit("Please provide a file to decode", 1)
					}

					newDecoder, err := decoderFactory(c)
					if err != nil {
						return cli.Exit("Failed to pick decoder engine: "+err.Error(), 1)
					}
					_, samples, err := decodeFile(path, newDecoder)
					if err != nil {
						return cli.Exit("Failed to decode: "+err.Error(), 1)
					}

					out := c.String("output")
					if out == "" {
						out = strings.TrimSuffix(path, filepath.Ext(path)) + ".wav"
					}
					if strings.HasSuffix(out, ".f32le") {
						if err := os.WriteFile(out, pcm.Bytes(samples), 0o644); err != nil {
							return cli.Exit("Failed to write output: "+err.Error(), 1)
						}
					} else {
						f, err := os.Create(out)
						if err != nil {
							return cli.Exit("Failed to create output: "+err.Error(), 1)
						}
						if err := wav.EncodeTo(f, samples, 48000); err != nil {
							f.Close()
							return cli.Exit("Failed to encode wav: "+err.Error(), 1)
						}
						if err := f.Close(); err != nil {
							return cli.Exit("Failed to write output: "+err.Error(), 1)
						}
					}

					log.Printf("Decoded %d samples (%.2fs) to %s", len(samples), float64(len(samples))/48000.0, out)
					return nil
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output path, .wav or .f32le",
					},
				},
			},
			{
				Name:      "probe",
				Usage:     "Decode a local clip and report its stats, or show a catalog entry",
				ArgsUsage: "<file|clip-id>",
				Action: func(c *cli.Context) error {
					arg := c.Args().First()
					if arg == "" {
						return cli.Exit("Please provide a file or clip ID", 1)
					}

					if _, statErr := os.Stat(arg); statErr == nil {
						newDecoder, err := decoderFactory(c)
						if err != nil {
							return cli.Exit("Failed to pick decoder engine: "+err.Error(), 1)
						}
						container, samples, err := decodeFile(arg, newDecoder)
						if err != nil {
							return cli.Exit("Failed to decode: "+err.Error(), 1)
						}
						wavData, err := wav.Encode(samples, 48000)
						if err != nil {
							return cli.Exit("Failed to encode wav: "+err.Error(), 1)
						}
						fmt.Println(presenters.FormatReport(container, len(samples), 4*len(samples), len(wavData)))
						return nil
					}

					repo, closeRepo, err := openRepository(c.Context)
					if err != nil {
						return cli.Exit("Failed to open catalog: "+err.Error(), 1)
					}
					defer closeRepo()

					clip, err := repo.Get(c.Context, arg)
					if err != nil {
						return cli.Exit("Failed to get clip: "+err.Error(), 1)
					}

					fmt.Println(presenters.FormatClip(clip))
					return nil
				},
			},
			{
				Name:      "play",
				Usage:     "Play a local clip file or a decoded clip from storage",
				ArgsUsage: "<file|clip-id>",
				Action: func(c *cli.Context) error {
					arg := c.Args().First()
					if arg == "" {
						return cli.Exit("Please provide a file or clip ID", 1)
					}

					var samples []float32
					if _, statErr := os.Stat(arg); statErr == nil {
						newDecoder, err := decoderFactory(c)
						if err != nil {
							return cli.Exit("Failed to pick decoder engine: "+err.Error(), 1)
						}
						_, samples, err = decodeFile(arg, newDecoder)
						if err != nil {
							return cli.Exit("Failed to decode: "+err.Error(), 1)
						}
					} else {
						repo, closeRepo, err := openRepository(c.Context)
						if err != nil {
							return cli.Exit("Failed to open catalog: "+err.Error(), 1)
						}
						defer closeRepo()

						clip, err := repo.Get(c.Context, arg)
						if err != nil {
							return cli.Exit("Failed to get clip: "+err.Error(), 1)
						}
						if clip.PCMKey == "" {
							return cli.Exit("Clip has no decoded audio yet", 1)
						}

						storage, err := openStorage(c.Context)
						if err != nil {
							return cli.Exit("Failed to open storage: "+err.Error(), 1)
						}
						raw, err := storage.Get(c.Context, clip.PCMKey)
						if err != nil {
							return cli.Exit("Failed to fetch pcm artifact: "+err.Error(), 1)
						}
						samples, err = pcm.Samples(raw)
						if err != nil {
							return cli.Exit("Failed to parse pcm artifact: "+err.Error(), 1)
						}
					}

					log.Printf("Playing %d samples (%.2fs)", len(samples), float64(len(samples))/48000.0)
					if err := playback.Play(c.Context, samples, 48000); err != nil {
						return cli.Exit("Failed to play: "+err.Error(), 1)
					}
					return nil
				},
			},
			{
				Name:      "import",
				Usage:     "Transcode a local audio file with ffmpeg and upload it for ingest",
				ArgsUsage: "<file>",
				Action: func(c *cli.Context) error {
					path := c.Args().First()
					if path == "" {
						return cli.Exit("Please provide a file to import", 1)
					}

					f, err := os.Open(path)
					if err != nil {
						return cli.Exit("Failed to open file: "+err.Error(), 1)
					}
					defer f.Close()

					oggData, err := oggopus.Transcode(c.Context, f)
					if err != nil {
						return cli.Exit("Failed to transcode: "+err.Error(), 1)
					}

					storage, err := openStorage(c.Context)
					if err != nil {
						return cli.Exit("Failed to open storage: "+err.Error(), 1)
					}

					id, _ := uuidGenerator.Next()
					key := "ingest/" + id + ".ogg"
					opts := datalayer.PutOptions{
						Size:        int64(len(oggData)),
						ContentType: "audio/ogg",
					}
					if err := storage.Put(c.Context, key, bytes.NewReader(oggData), opts); err != nil {
						return cli.Exit("Failed to upload: "+err.Error(), 1)
					}

					log.Printf("Imported %s as %s", path, key)
					return nil
				},
			},
			{
				Name:      "enqueue",
				Usage:     "Catalog an ingest object and queue a decode job for it",
				ArgsUsage: "<object-key>",
				Action: func(c *cli.Context) error {
					key := c.Args().First()
					if key == "" {
						return cli.Exit("Please provide an object key", 1)
					}

					repo, closeRepo, err := openRepository(c.Context)
					if err != nil {
						return cli.Exit("Failed to open catalog: "+err.Error(), 1)
					}
					defer closeRepo()

					rdb, err := openRedis(c.Context)
					if err != nil {
						return cli.Exit("Failed to connect to redis: "+err.Error(), 1)
					}
					jobs, err := worker.NewRedisJobHandler(rdb)
					if err != nil {
						return cli.Exit("Failed to create job handler: "+err.Error(), 1)
					}

					id, _ := uuidGenerator.Next()
					inserted, err := repo.SaveNew(c.Context, id, key)
					if err != nil {
						return cli.Exit("Failed to catalog object: "+err.Error(), 1)
					}
					if !inserted {
						clip, err := repo.GetByObjectKey(c.Context, key)
						if err != nil {
							return cli.Exit("Failed to look up cataloged clip: "+err.Error(), 1)
						}
						id = clip.ID
						log.Printf("Object already cataloged as clip %s, re-enqueueing", id)
					}

					job := worker.DecodeJob{ClipID: id, ObjectKey: key}
					if err := jobs.HandleJobs(c.Context, job); err != nil {
						return cli.Exit("Failed to queue job: "+err.Error(), 1)
					}

					log.Printf("Enqueued decode job for %s (clip %s)", key, id)
					return nil
				},
			},
			{
				Name:  "list",
				Usage: "List the most recent clips in the catalog",
				Action: func(c *cli.Context) error {
					repo, closeRepo, err := openRepository(c.Context)
					if err != nil {
						return cli.Exit("Failed to open catalog: "+err.Error(), 1)
					}
					defer closeRepo()

					clips, err := repo.List(c.Context, c.Int("limit"))
					if err != nil {
						return cli.Exit("Failed to list clips: "+err.Error(), 1)
					}

					fmt.Println(presenters.FormatClipList(clips))
					return nil
				},
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of clips to show",
						Value: 20,
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatalf("Error running CLI: %v", err)
	}
}
