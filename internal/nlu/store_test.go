package nlu

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/atlasops/salesops-bot-go/internal/domain"
	"github.com/atlasops/salesops-bot-go/internal/service/cache"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func sampleContext() *domain.ConversationContext {
	return &domain.ConversationContext{
		LastIntent: domain.IntentOwnerPipeline,
		LastFilters: map[string]any{
			"owner":  "Himanshu Patel",
			"stages": []string{"Negotiation"},
		},
		Timestamp: time.Now(),
	}
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	store := NewMemoryContextStore(time.Minute)
	ctx := context.Background()

	if got, err := store.Get(ctx, "U1", "C1"); err != nil || got != nil {
		t.Fatalf("empty store Get = (%+v, %v), want (nil, nil)", got, err)
	}

	if err := store.Set(ctx, "U1", "C1", sampleContext()); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	got, err := store.Get(ctx, "U1", "C1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got == nil || got.LastIntent != domain.IntentOwnerPipeline {
		t.Errorf("got %+v", got)
	}

	// Different channel, different context.
	if other, _ := store.Get(ctx, "U1", "C2"); other != nil {
		t.Errorf("context leaked across channels: %+v", other)
	}
}

func TestMemoryStoreExpiry(t *testing.T) {
	store := NewMemoryContextStore(time.Millisecond)
	ctx := context.Background()

	if err := store.Set(ctx, "U1", "C1", sampleContext()); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	time.Sleep(5 * time.Millisecond)

	got, err := store.Get(ctx, "U1", "C1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got != nil {
		t.Errorf("stale context served: %+v", got)
	}
}

func TestMemoryStoreRejectsNil(t *testing.T) {
	store := NewMemoryContextStore(time.Minute)
	if err := store.Set(context.Background(), "U1", "C1", nil); err == nil {
		t.Error("nil context accepted")
	}
}

func TestMemoryStoreConcurrentAccess(t *testing.T) {
	store := NewMemoryContextStore(time.Minute)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_ = store.Set(ctx, "U1", "C1", sampleContext())
				_, _ = store.Get(ctx, "U1", "C1")
			}
		}()
	}
	wg.Wait()
}

func newRedisStore(t *testing.T) *RedisContextStore {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewRedisContextStore(cache.NewCacheServiceWithClient(client, zap.NewNop()), time.Minute)
}

func TestRedisStoreRoundTrip(t *testing.T) {
	store := newRedisStore(t)
	ctx := context.Background()

	if got, err := store.Get(ctx, "U1", "C1"); err != nil || got != nil {
		t.Fatalf("empty store Get = (%+v, %v), want (nil, nil)", got, err)
	}

	if err := store.Set(ctx, "U1", "C1", sampleContext()); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	got, err := store.Get(ctx, "U1", "C1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got == nil {
		t.Fatal("context not found after Set")
	}
	if got.LastIntent != domain.IntentOwnerPipeline {
		t.Errorf("last intent = %q", got.LastIntent)
	}
	if got.LastFilters["owner"] != "Himanshu Patel" {
		t.Errorf("filters did not survive the round trip: %+v", got.LastFilters)
	}
}

func TestRedisStoreFiltersDecodeAsAnySlices(t *testing.T) {
	// JSON round-trips turn []string into []any; the engine's filter rebuild
	// must cope with both shapes.
	store := newRedisStore(t)
	ctx := context.Background()

	if err := store.Set(ctx, "U1", "C1", sampleContext()); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	got, err := store.Get(ctx, "U1", "C1")
	if err != nil || got == nil {
		t.Fatalf("Get = (%+v, %v)", got, err)
	}

	entities := entitiesFromFilters(got.LastFilters)
	if entities.Stages == nil || len(entities.Stages.Stages) != 1 || entities.Stages.Stages[0] != "Negotiation" {
		t.Errorf("stages did not rebuild from stored filters: %+v", entities.Stages)
	}
	if entities.Owner == nil || entities.Owner.DisplayName != "Himanshu Patel" {
		t.Errorf("owner did not rebuild: %+v", entities.Owner)
	}
}
