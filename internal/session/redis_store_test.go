package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func setupTestRedis(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	s := miniredis.RunT(t)
	store, err := NewRedisStore("redis://" + s.Addr())
	if err != nil {
		t.Fatalf("failed to create redis store: %v", err)
	}
	return store, s
}

func TestNewRedisStore(t *testing.T) {
	s := miniredis.RunT(t)
	defer s.Close()

	store, err := NewRedisStore("redis://" + s.Addr())
	if err != nil {
		t.Fatalf("NewRedisStore failed: %v", err)
	}
	defer store.Close()

	if err := store.Ping(context.Background()); err != nil {
		t.Errorf("Ping failed: %v", err)
	}
}

func TestSaveAndLookupRefreshSession(t *testing.T) {
	store, s := setupTestRedis(t)
	defer store.Close()
	defer s.Close()

	ctx := context.Background()
	tokenHash := "refresh-hash-abc"
	userID := "u_1234"

	if err := store.SaveRefreshSession(ctx, tokenHash, userID, time.Now().Add(24*time.Hour)); err != nil {
		t.Fatalf("SaveRefreshSession failed: %v", err)
	}

	user, err := store.LookupRefreshSession(ctx, tokenHash)
	if err != nil {
		t.Fatalf("LookupRefreshSession failed: %v", err)
	}
	if user.ID != userID {
		t.Errorf("expected user ID %s, got %s", userID, user.ID)
	}
	if user.Role != "member" {
		t.Errorf("expected default role member, got %q", user.Role)
	}
}

func TestLookupExpiredSession(t *testing.T) {
	store, s := setupTestRedis(t)
	defer store.Close()
	defer s.Close()

	ctx := context.Background()
	tokenHash := "expiring-hash"

	if err := store.SaveRefreshSession(ctx, tokenHash, "u_5678", time.Now().Add(time.Minute)); err != nil {
		t.Fatalf("SaveRefreshSession failed: %v", err)
	}

	// miniredis does not tick on its own
	s.FastForward(2 * time.Minute)

	if _, err := store.LookupRefreshSession(ctx, tokenHash); err == nil {
		t.Error("expected error for expired session")
	}
}

func TestLookupMissingSession(t *testing.T) {
	store, s := setupTestRedis(t)
	defer store.Close()
	defer s.Close()

	if _, err := store.LookupRefreshSession(context.Background(), "never-stored"); err == nil {
		t.Error("expected error for unknown token")
	}
}

func TestRevokeRefreshSession(t *testing.T) {
	store, s := setupTestRedis(t)
	defer store.Close()
	defer s.Close()

	ctx := context.Background()
	tokenHash := "revoked-hash"

	if err := store.SaveRefreshSession(ctx, tokenHash, "u_9999", time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("SaveRefreshSession failed: %v", err)
	}
	if err := store.RevokeRefreshSession(ctx, tokenHash); err != nil {
		t.Fatalf("RevokeRefreshSession failed: %v", err)
	}
	if _, err := store.LookupRefreshSession(ctx, tokenHash); err == nil {
		t.Error("expected error after revocation")
	}
}

func TestRevokeMissingSession(t *testing.T) {
	store, s := setupTestRedis(t)
	defer store.Close()
	defer s.Close()

	// deleting a key that never existed is not an error
	if err := store.RevokeRefreshSession(context.Background(), "no-such-hash"); err != nil {
		t.Errorf("RevokeRefreshSession on missing key failed: %v", err)
	}
}
