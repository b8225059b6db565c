package tokenstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newRedisStoreTest(t *testing.T) (*RedisStore, *miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis start: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = rdb.Close()
		mr.Close()
	})
	return NewRedisStore(rdb, "da", "c1"), mr, rdb
}

func TestRedisStoreRoundTrip(t *testing.T) {
	store, mr, _ := newRedisStoreTest(t)
	ctx := context.Background()

	if _, err := store.Load(ctx); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on empty store, got %v", err)
	}

	if err := store.Save(ctx, Record{Token: "abc", OIDC: false}, 0); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !mr.Exists("da:tok:c1") {
		t.Fatal("expected key da:tok:c1")
	}

	rec, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if rec.Token != "abc" || rec.OIDC || rec.SavedAt.IsZero() {
		t.Fatalf("unexpected record: %+v", rec)
	}

	if ttl, err := store.TTL(ctx); err != nil || ttl != 0 {
		t.Fatalf("expected no expiry, got %v %v", ttl, err)
	}
}

func TestRedisStoreTTLExpires(t *testing.T) {
	store, mr, _ := newRedisStoreTest(t)
	ctx := context.Background()

	if err := store.Save(ctx, Record{OIDC: true}, time.Minute); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if ttl, err := store.TTL(ctx); err != nil || ttl <= 0 || ttl > time.Minute {
		t.Fatalf("unexpected ttl %v %v", ttl, err)
	}

	mr.FastForward(2 * time.Minute)
	if _, err := store.Load(ctx); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected expired record to be gone, got %v", err)
	}
	if _, err := store.TTL(ctx); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound from TTL, got %v", err)
	}
}

func TestRedisStoreDeleteIdempotent(t *testing.T) {
	store, _, _ := newRedisStoreTest(t)
	ctx := context.Background()

	if err := store.Save(ctx, Record{Token: "abc"}, 0); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := store.Delete(ctx); err != nil {
		t.Fatalf("first delete: %v", err)
	}
	if err := store.Delete(ctx); err != nil {
		t.Fatalf("second delete: %v", err)
	}
	if _, err := store.Load(ctx); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRedisStoreCorruptRecordIsDropped(t *testing.T) {
	store, mr, _ := newRedisStoreTest(t)
	ctx := context.Background()

	if err := mr.Set("da:tok:c1", "\x09garbage"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, err := store.Load(ctx); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for corrupt record, got %v", err)
	}
	if mr.Exists("da:tok:c1") {
		t.Fatal("corrupt record must be deleted")
	}
}

func TestRedisStoreClientsAreIsolated(t *testing.T) {
	store, _, rdb := newRedisStoreTest(t)
	other := NewRedisStore(rdb, "da", "c2")
	ctx := context.Background()

	if err := store.Save(ctx, Record{Token: "one"}, 0); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := other.Load(ctx); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected other client to see nothing, got %v", err)
	}
}

func TestRedisStoreUnavailable(t *testing.T) {
	store, mr, _ := newRedisStoreTest(t)
	mr.Close()
	ctx := context.Background()

	if err := store.Save(ctx, Record{Token: "x"}, 0); !errors.Is(err, ErrRedisUnavailable) {
		t.Fatalf("expected ErrRedisUnavailable from Save, got %v", err)
	}
	if _, err := store.Load(ctx); !errors.Is(err, ErrRedisUnavailable) {
		t.Fatalf("expected ErrRedisUnavailable from Load, got %v", err)
	}
	if _, err := store.Ping(ctx); !errors.Is(err, ErrRedisUnavailable) {
		t.Fatalf("expected ErrRedisUnavailable from Ping, got %v", err)
	}
}

func TestNewRedisStoreDefaults(t *testing.T) {
	s := NewRedisStore(nil, " ", "")
	if got := s.key(); got != "dashauth:tok:default" {
		t.Fatalf("unexpected default key %q", got)
	}
}
