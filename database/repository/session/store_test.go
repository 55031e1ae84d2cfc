package sessionRepo

import (
	"context"
	"testing"
	"time"

	"calbook/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
)

func sampleSession(id string) *models.BookingSession {
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	return &models.BookingSession{
		ID:    id,
		Phase: models.PhaseCollecting,
		Step:  3,
		Collected: map[models.BookingField]string{
			models.FieldMeetingTitle: "Sync",
			models.FieldDate:         "tomorrow",
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func exerciseStore(t *testing.T, store SessionStore) {
	t.Helper()
	ctx := context.Background()

	got, err := store.Get(ctx, "missing")
	if err != nil || got != nil {
		t.Fatalf("expected no session, got %+v, %v", got, err)
	}

	if err := store.Save(ctx, sampleSession("c1")); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err = store.Get(ctx, "c1")
	if err != nil || got == nil {
		t.Fatalf("get: %+v, %v", got, err)
	}
	if got.Step != 3 || got.Collected[models.FieldDate] != "tomorrow" {
		t.Fatalf("unexpected session %+v", got)
	}

	if err := store.Delete(ctx, "c1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if got, _ := store.Get(ctx, "c1"); got != nil {
		t.Fatalf("expected session to be gone, got %+v", got)
	}
	if err := store.Ping(ctx); err != nil {
		t.Fatalf("ping: %v", err)
	}
}

func TestRedisSessionStore(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store := NewRedisSessionStore(client, 30*time.Minute)
	exerciseStore(t, store)

	if err := store.Save(context.Background(), sampleSession("c2")); err != nil {
		t.Fatalf("save: %v", err)
	}
	if ttl := mr.TTL(sessionKeyPrefix + "c2"); ttl != 30*time.Minute {
		t.Fatalf("expected ttl to be set, got %v", ttl)
	}
	mr.FastForward(31 * time.Minute)
	if got, _ := store.Get(context.Background(), "c2"); got != nil {
		t.Fatalf("expected session to expire, got %+v", got)
	}
}

func TestMemorySessionStore(t *testing.T) {
	exerciseStore(t, NewMemorySessionStore(time.Minute))
}

func TestMemorySessionStoreExpires(t *testing.T) {
	store := NewMemorySessionStore(time.Minute)
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	if err := store.Save(context.Background(), sampleSession("c1")); err != nil {
		t.Fatalf("save: %v", err)
	}
	now = now.Add(2 * time.Minute)
	if got, _ := store.Get(context.Background(), "c1"); got != nil {
		t.Fatalf("expected expired session, got %+v", got)
	}
}

func TestMemorySessionStoreReturnsCopies(t *testing.T) {
	store := NewMemorySessionStore(time.Minute)
	ctx := context.Background()
	_ = store.Save(ctx, sampleSession("c1"))
	got, _ := store.Get(ctx, "c1")
	got.Collected[models.FieldDate] = "changed"
	again, _ := store.Get(ctx, "c1")
	if again.Collected[models.FieldDate] != "tomorrow" {
		t.Fatalf("stored session was mutated through a returned copy")
	}
}
