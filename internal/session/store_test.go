package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestStore(t *testing.T, ttl time.Duration) (*Store, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis run failed: %v", err)
	}
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	return NewStore(rdb, ttl), mr
}

func TestCreateAndGet(t *testing.T) {
	store, _ := newTestStore(t, time.Hour)
	ctx := context.Background()

	token, err := store.Create(ctx, "user-1")
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if token == "" {
		t.Fatal("Create returned empty token")
	}

	userID, err := store.Get(ctx, token)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if userID != "user-1" {
		t.Fatalf("Get returned %q, want %q", userID, "user-1")
	}
}

func TestCreateGeneratesUniqueTokens(t *testing.T) {
	store, _ := newTestStore(t, time.Hour)
	ctx := context.Background()

	first, err := store.Create(ctx, "user-1")
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	second, err := store.Create(ctx, "user-1")
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if first == second {
		t.Fatal("expected distinct tokens for separate logins")
	}
}

func TestGetUnknownToken(t *testing.T) {
	store, _ := newTestStore(t, time.Hour)

	userID, err := store.Get(context.Background(), "no-such-token")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if userID != "" {
		t.Fatalf("Get returned %q for unknown token", userID)
	}
}

func TestGetAfterExpiry(t *testing.T) {
	store, mr := newTestStore(t, time.Minute)
	ctx := context.Background()

	token, err := store.Create(ctx, "user-1")
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	mr.FastForward(time.Minute + time.Second)

	userID, err := store.Get(ctx, token)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if userID != "" {
		t.Fatalf("expected expired token to be gone, got %q", userID)
	}
}

func TestDeleteIsIdempotent(t *testing.T) {
	store, _ := newTestStore(t, time.Hour)
	ctx := context.Background()

	token, err := store.Create(ctx, "user-1")
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if err := store.Delete(ctx, token); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	// 2回目の削除も成功する
	if err := store.Delete(ctx, token); err != nil {
		t.Fatalf("second Delete returned error: %v", err)
	}

	userID, err := store.Get(ctx, token)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if userID != "" {
		t.Fatalf("expected deleted token to be gone, got %q", userID)
	}
}

func TestCreateRequiresUserID(t *testing.T) {
	store, _ := newTestStore(t, time.Hour)

	if _, err := store.Create(context.Background(), ""); err == nil {
		t.Fatal("expected error for empty userID")
	}
}
