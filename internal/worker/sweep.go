package worker

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/stillpine/needledrop/internal/datalayer"
	"github.com/stillpine/needledrop/internal/generator"
)

// ClipSaver is the slice of the catalog the sweeper writes to.
type ClipSaver interface {
	SaveNew(ctx context.Context, id, objectKey string) (bool, error)
}

// Sweeper catalogs new ingest objects and queues decode jobs for them.
type Sweeper struct {
	Storage      datalayer.BlobStorage
	Catalog      ClipSaver
	Quarantine   Quarantine
	Jobs         JobHandler
	IDs          generator.Generator[string]
	IngestPrefix string
}

// Sweep lists the ingest prefix once, catalogs anything new, and
// queues a decode job per cataloged object. Quarantined and already
// cataloged objects are skipped, so sweeps can overlap safely.
func (s *Sweeper) Sweep(ctx context.Context) error {
	objects, err := s.Storage.List(ctx, s.IngestPrefix)
	if err != nil {
		return fmt.Errorf("listing ingest objects: %w", err)
	}

	var jobs []DecodeJob
	for _, obj := range objects {
		quarantined, err := s.Quarantine.Contains(ctx, obj.Key)
		if err != nil {
			return fmt.Errorf("checking quarantine: %w", err)
		}
		if quarantined {
			continue
		}

		id, err := s.IDs.Next()
		if err != nil {
			return fmt.Errorf("generating clip ID: %w", err)
		}
		inserted, err := s.Catalog.SaveNew(ctx, id, obj.Key)
		if err != nil {
			return fmt.Errorf("cataloging %s: %w", obj.Key, err)
		}
		if !inserted {
			continue
		}
		jobs = append(jobs, DecodeJob{ClipID: id, ObjectKey: obj.Key})
	}

	if len(jobs) == 0 {
		return nil
	}
	if err := s.Jobs.HandleJobs(ctx, jobs...); err != nil {
		return fmt.Errorf("queueing decode jobs: %w", err)
	}

	slog.InfoContext(ctx, "Queued decode jobs", slog.Int("count", len(jobs)))
	return nil
}
