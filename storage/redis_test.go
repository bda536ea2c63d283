package storage

import (
	"context"
	"reflect"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func setupRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestRedisRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewRedis(setupRedis(t), "board:test", 0)

	items, err := store.LoadAll(ctx)
	if err != nil {
		t.Fatalf("load empty: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("expected empty board, got %d items", len(items))
	}

	want := sampleItems()
	if err := store.SaveAll(ctx, want); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := store.LoadAll(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected items: %#v", got)
	}
}

func TestRedisSaveReplacesCollection(t *testing.T) {
	ctx := context.Background()
	store := NewRedis(setupRedis(t), "", 0)

	if err := store.SaveAll(ctx, sampleItems()); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := store.SaveAll(ctx, sampleItems()[:1]); err != nil {
		t.Fatalf("save shrunk: %v", err)
	}
	got, err := store.LoadAll(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected replacement save, got %d items", len(got))
	}
}

func TestRedisTTLApplied(t *testing.T) {
	ctx := context.Background()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store := NewRedis(client, "board:ttl", time.Minute)
	if err := store.SaveAll(ctx, sampleItems()); err != nil {
		t.Fatalf("save: %v", err)
	}
	if ttl := mr.TTL("board:ttl"); ttl <= 0 || ttl > time.Minute {
		t.Fatalf("unexpected TTL: %v", ttl)
	}
}
