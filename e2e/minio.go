package e2e

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

var (
	minioOnce      sync.Once
	minioContainer testcontainers.Container
	minioEndpoint  string
	minioStartErr  error
	minioWG        sync.WaitGroup
)

// UseMinio provisions or reuses a MinIO container and returns its
// host:port endpoint. Credentials are minioadmin/minioadmin.
func UseMinio(t *testing.T) string {
	t.Helper()

	minioOnce.Do(func() {
		ctx := context.Background()
		req := testcontainers.ContainerRequest{
			Image:        "minio/minio",
			ExposedPorts: []string{"9000/tcp"},
			Cmd:          []string{"server", "/data"},
			Env: map[string]string{
				"MINIO_ROOT_USER":     "minioadmin",
				"MINIO_ROOT_PASSWORD": "minioadmin",
			},
			WaitingFor: wait.ForHTTP("/minio/health/live").WithPort("9000/tcp"),
		}
		minioContainer, minioStartErr = testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
			ContainerRequest: req,
			Started:          true,
		})
		if minioStartErr != nil {
			return
		}
		minioEndpoint, minioStartErr = minioContainer.PortEndpoint(ctx, "9000/tcp", "")
	})

	if minioStartErr != nil {
		t.Fatalf("failed to start minio container: %v", minioStartErr)
	}
	minioWG.Add(1)
	t.Cleanup(minioWG.Done)

	return minioEndpoint
}

func TerminateMinioForE2E() {
	minioWG.Wait()
	if minioContainer != nil {
		err := minioContainer.Terminate(context.Background())
		if err != nil {
			fmt.Printf("failed to terminate minio container: %v", err)
		}
	}
}
