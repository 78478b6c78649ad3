package pagecache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

// setupTestRedis creates a test Redis client, skipping when unavailable.
func setupTestRedis(t *testing.T) *redis.Client {
	t.Helper()

	client := redis.NewClient(&redis.Options{
		Addr: "localhost:6379",
		DB:   15, // Use a separate DB for tests
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("Redis not available for testing: %v", err)
	}

	if err := client.FlushDB(ctx).Err(); err != nil {
		t.Fatalf("Failed to flush test DB: %v", err)
	}

	t.Cleanup(func() {
		client.FlushDB(context.Background())
		client.Close()
	})

	return client
}

func TestRedis_GetSet(t *testing.T) {
	client := setupTestRedis(t)
	store := NewRedis(client, 12, 0)
	ctx := context.Background()

	if _, ok, err := store.Get(ctx, 1); err != nil || ok {
		t.Fatalf("Get() on empty store = ok %v, err %v; want miss", ok, err)
	}

	page := testPage(1, 4)
	if err := store.Set(ctx, 1, page); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	got, ok, err := store.Get(ctx, 1)
	if err != nil || !ok {
		t.Fatalf("Get() after Set = ok %v, err %v; want hit", ok, err)
	}
	if got.Number != 1 || got.Len() != 4 {
		t.Errorf("Get() = page %d with %d records, want page 1 with 4", got.Number, got.Len())
	}
}

func TestRedis_KeysScopedByPageSize(t *testing.T) {
	client := setupTestRedis(t)
	small := NewRedis(client, 12, 0)
	large := NewRedis(client, 100, 0)
	ctx := context.Background()

	if err := small.Set(ctx, 1, testPage(1, 12)); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	// The same page number at a different size is a distinct dataset view.
	if _, ok, err := large.Get(ctx, 1); err != nil || ok {
		t.Errorf("page stored at size 12 visible at size 100: ok %v, err %v", ok, err)
	}

	n, err := small.Len(ctx)
	if err != nil {
		t.Fatalf("Len() error = %v", err)
	}
	if n != 1 {
		t.Errorf("Len() = %d, want 1", n)
	}
}

func TestRedis_TTLExpiry(t *testing.T) {
	client := setupTestRedis(t)
	store := NewRedis(client, 12, 50*time.Millisecond)
	ctx := context.Background()

	if err := store.Set(ctx, 3, testPage(3, 2)); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	time.Sleep(100 * time.Millisecond)

	if _, ok, err := store.Get(ctx, 3); err != nil || ok {
		t.Errorf("expired page still present: ok %v, err %v", ok, err)
	}
}

func TestRedis_CorruptEntryIsError(t *testing.T) {
	client := setupTestRedis(t)
	store := NewRedis(client, 12, 0)
	ctx := context.Background()

	if err := client.Set(ctx, "artic:page:12:9", "not json", 0).Err(); err != nil {
		t.Fatalf("seed corrupt entry: %v", err)
	}

	if _, ok, err := store.Get(ctx, 9); err == nil || ok {
		t.Errorf("corrupt entry should surface an error, got ok %v, err %v", ok, err)
	}
}
