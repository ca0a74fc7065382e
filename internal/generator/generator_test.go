package generator_test

import (
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/stillpine/needledrop/internal/generator"
)

func TestUUIDV4GeneratorNextConcurrent(t *testing.T) {
	gen := generator.UUIDV4Generator{}

	var mu sync.Mutex
	seen := make(map[string]struct{})

	const workers = 8
	const perWorker = 2000

	var wg sync.WaitGroup
	wg.Add(workers)
	for range workers {
		go func() {
			defer wg.Done()
			for range perWorker {
				id, err := gen.Next()
				if err != nil {
					t.Error("expected no error, got:", err)
					return
				}
				parsed, err := uuid.Parse(id)
				if err != nil || parsed.Version() != 4 {
					t.Errorf("expected a v4 UUID, got %q", id)
					return
				}

				mu.Lock()
				_, dup := seen[id]
				seen[id] = struct{}{}
				mu.Unlock()
				if dup {
					t.Errorf("expected a unique ID, got duplicate: %s", id)
					return
				}
			}
		}()
	}
	wg.Wait()
}
