// Package integration exercises the full stack: mock artworks API, HTTP
// client, page cache, and grid session. The Redis-backed tests start a
// container and are skipped when Docker is unavailable.
package integration

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/articgrid/articgrid/internal/testutil"
	"github.com/articgrid/articgrid/pkg/client"
	"github.com/articgrid/articgrid/pkg/grid"
	"github.com/articgrid/articgrid/pkg/pagecache"
)

// setupRedis creates a Redis container for integration testing.
func setupRedis(t *testing.T) *redis.Client {
	t.Helper()

	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForLog("Ready to accept connections"),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Skipf("Docker not available for integration testing: %v", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}
	port, err := container.MappedPort(ctx, "6379")
	if err != nil {
		t.Fatalf("Failed to get container port: %v", err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr: host + ":" + port.Port(),
	})

	t.Cleanup(func() {
		redisClient.Close()
		container.Terminate(ctx)
	})

	return redisClient
}

func newAPIClient(t *testing.T, baseURL string) *client.Client {
	t.Helper()

	c, err := client.New(client.Config{
		BaseURL:        baseURL,
		UserAgent:      "articgrid-integration/0.1.0 (dev@articgrid.local)",
		Timeout:        5 * time.Second,
		MaxRetries:     2,
		InitialBackoff: 10 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("client.New() error = %v", err)
	}
	return c
}

func TestSession_EndToEnd_MemoryStore(t *testing.T) {
	mock := testutil.NewMockArtic(100)
	defer mock.Close()

	session, err := grid.NewSession(grid.Config{
		Fetcher:  newAPIClient(t, mock.URL()),
		PageSize: 12,
	})
	if err != nil {
		t.Fatalf("NewSession() error = %v", err)
	}
	ctx := context.Background()

	// Navigate to page 1, then bulk select across three pages.
	page, err := session.SetPage(ctx, 1)
	if err != nil {
		t.Fatalf("SetPage() error = %v", err)
	}
	if page.Len() != 12 {
		t.Fatalf("page.Len() = %d, want 12", page.Len())
	}

	selected, err := session.BulkSelect(ctx, 25, 1)
	if err != nil {
		t.Fatalf("BulkSelect() error = %v", err)
	}
	if len(selected) != 25 {
		t.Fatalf("selected %d records, want 25", len(selected))
	}

	// Page 1 was cached by navigation; the bulk prefetch must not have
	// re-fetched it.
	if got := mock.PageRequestCount(1); got != 1 {
		t.Errorf("page 1 requests = %d, want 1", got)
	}
	if got := mock.PageRequestCount(2); got != 1 {
		t.Errorf("page 2 requests = %d, want 1", got)
	}
	if got := mock.PageRequestCount(3); got != 1 {
		t.Errorf("page 3 requests = %d, want 1", got)
	}

	// Selection is in dataset order.
	for i, rec := range selected {
		if want := testutil.IDAt(i); rec.ID != want {
			t.Errorf("selected[%d].ID = %q, want %q", i, rec.ID, want)
		}
	}
}

func TestSession_EndToEnd_PartialFailure(t *testing.T) {
	mock := testutil.NewMockArtic(100)
	defer mock.Close()
	mock.FailPage(2, http.StatusInternalServerError)

	session, err := grid.NewSession(grid.Config{
		Fetcher:  newAPIClient(t, mock.URL()),
		PageSize: 12,
	})
	if err != nil {
		t.Fatalf("NewSession() error = %v", err)
	}

	selected, err := session.BulkSelect(context.Background(), 30, 1)
	if !errors.Is(err, grid.ErrPartialSelection) {
		t.Fatalf("BulkSelect() error = %v, want ErrPartialSelection", err)
	}
	if len(selected) != 24 {
		t.Errorf("selected %d records, want 24 (pages 1 and 3)", len(selected))
	}
	if session.Busy() {
		t.Error("busy flag should clear after a partial selection")
	}
}

func TestSession_EndToEnd_RedisStore(t *testing.T) {
	redisClient := setupRedis(t)

	mock := testutil.NewMockArtic(100)
	defer mock.Close()

	store := pagecache.NewRedis(redisClient, 12, 0)
	session, err := grid.NewSession(grid.Config{
		Fetcher:  newAPIClient(t, mock.URL()),
		Store:    store,
		PageSize: 12,
	})
	if err != nil {
		t.Fatalf("NewSession() error = %v", err)
	}
	ctx := context.Background()

	if _, err := session.BulkSelect(ctx, 25, 1); err != nil {
		t.Fatalf("BulkSelect() error = %v", err)
	}
	if got := mock.RequestCount(); got != 3 {
		t.Fatalf("requests after first bulk = %d, want 3", got)
	}

	// A second session over the same Redis store shares the cached pages:
	// no further network access for the same plan.
	session2, err := grid.NewSession(grid.Config{
		Fetcher:  newAPIClient(t, mock.URL()),
		Store:    store,
		PageSize: 12,
	})
	if err != nil {
		t.Fatalf("second NewSession() error = %v", err)
	}

	selected, err := session2.BulkSelect(ctx, 25, 1)
	if err != nil {
		t.Fatalf("second BulkSelect() error = %v", err)
	}
	if len(selected) != 25 {
		t.Errorf("selected %d records, want 25", len(selected))
	}
	if got := mock.RequestCount(); got != 3 {
		t.Errorf("requests after shared-cache bulk = %d, want still 3", got)
	}
}
