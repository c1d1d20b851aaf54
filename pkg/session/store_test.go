package session

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/artfit/artfit/pkg/bounds"
	"github.com/artfit/artfit/pkg/errors"
	"github.com/artfit/artfit/pkg/tracker"
)

func storeContract(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()

	rec := &Record{ID: "abc", View: "front", ExpiresAt: time.Now().Add(time.Hour)}
	if err := store.Set(ctx, rec); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, err := store.Get(ctx, "abc")
	if err != nil || got == nil || got.View != "front" {
		t.Fatalf("Get = %+v, %v", got, err)
	}

	if err := store.Delete(ctx, "abc"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if got, _ := store.Get(ctx, "abc"); got != nil {
		t.Error("record survived Delete")
	}
	if got, err := store.Get(ctx, "missing"); got != nil || err != nil {
		t.Errorf("Get(missing) = %+v, %v; want nil, nil", got, err)
	}
}

func TestMemoryStore(t *testing.T) {
	storeContract(t, NewMemoryStore())
}

func TestFileStore(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	storeContract(t, s)
}

func TestStoresDropExpired(t *testing.T) {
	fs, _ := NewFileStore(t.TempDir())
	for name, store := range map[string]Store{"memory": NewMemoryStore(), "file": fs} {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			store.Set(ctx, &Record{ID: "old", ExpiresAt: time.Now().Add(-time.Minute)})
			if got, _ := store.Get(ctx, "old"); got != nil {
				t.Error("expired record returned")
			}
			store.Set(ctx, &Record{ID: "old2", ExpiresAt: time.Now().Add(-time.Minute)})
			if err := store.Cleanup(ctx); err != nil {
				t.Fatal(err)
			}
		})
	}
}

func TestRedisStore(t *testing.T) {
	addr := os.Getenv("ARTFIT_TEST_REDIS")
	if addr == "" {
		t.Skip("ARTFIT_TEST_REDIS not set")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { client.Close() })
	storeContract(t, NewRedisStore(client, nil))
}

func TestManagerRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	m := NewManager(store, ManagerOptions{TTL: time.Hour})
	s, err := m.Create(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(s.ID()) != 36 {
		t.Errorf("ID %q is not a UUID", s.ID())
	}
	s.SetRegion(testRegion(), "front")
	if err := s.PlaceArtwork(200, 100, "https://cdn/a.png"); err != nil {
		t.Fatal(err)
	}
	if err := m.Save(ctx, s); err != nil {
		t.Fatal(err)
	}

	// A second instance sharing the store sees the same placement.
	other := NewManager(store, ManagerOptions{TTL: time.Hour, Mode: bounds.ModeRotated})
	got, err := other.Get(ctx, s.ID())
	if err != nil {
		t.Fatal(err)
	}
	want, have := s.Snapshot(), got.Snapshot()
	if have.Transform == nil || *have.Transform != *want.Transform {
		t.Errorf("restored transform = %+v, want %+v", have.Transform, want.Transform)
	}
	if got.View() != "front" {
		t.Errorf("View() = %q", got.View())
	}
	if cfg, _ := got.Config(); cfg.ArtworkURL != "https://cdn/a.png" {
		t.Errorf("ArtworkURL = %q", cfg.ArtworkURL)
	}

	if same, _ := other.Get(ctx, s.ID()); same != got {
		t.Error("Get should return the live session")
	}

	if err := other.Delete(ctx, s.ID()); err != nil {
		t.Fatal(err)
	}
	if _, err := other.Get(ctx, s.ID()); !errors.Is(err, errors.ErrCodeSessionNotFound) {
		t.Errorf("Get after Delete = %v, want SESSION_NOT_FOUND", err)
	}
}

func TestManagerGetUnknown(t *testing.T) {
	m := NewManager(nil, ManagerOptions{})
	if _, err := m.Get(context.Background(), "nope"); !errors.Is(err, errors.ErrCodeSessionNotFound) {
		t.Errorf("error = %v, want SESSION_NOT_FOUND", err)
	}
}

func TestManagerSharedStoreRefresh(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	a := NewManager(store, ManagerOptions{TTL: time.Hour})
	b := NewManager(store, ManagerOptions{TTL: time.Hour})

	sa, err := a.Create(ctx)
	if err != nil {
		t.Fatal(err)
	}
	sa.SetRegion(testRegion(), "front")
	if err := sa.PlaceArtwork(200, 100, "https://cdn/a.png"); err != nil {
		t.Fatal(err)
	}
	if err := a.Save(ctx, sa); err != nil {
		t.Fatal(err)
	}

	sb, err := b.Get(ctx, sa.ID())
	if err != nil {
		t.Fatal(err)
	}
	centered := sb.Snapshot().Transform.Left

	if _, err := sa.Manipulate(tracker.Move, tracker.Geometry{Left: 10, Top: 20}); err != nil {
		t.Fatal(err)
	}
	if err := a.Save(ctx, sa); err != nil {
		t.Fatal(err)
	}

	got, err := b.Get(ctx, sa.ID())
	if err != nil {
		t.Fatal(err)
	}
	if got != sb {
		t.Error("Get should refresh the live session in place")
	}
	if tf := got.Snapshot().Transform; tf == nil || tf.Left != 10 || tf.Top != 20 {
		t.Fatalf("instance b transform = %+v, want left 10 top 20 (was %g)", tf, centered)
	}

	// b edits on top of a's move, and a sees it after b saves.
	if _, err := got.Manipulate(tracker.Move, tracker.Geometry{Left: 30, Top: 20}); err != nil {
		t.Fatal(err)
	}
	if err := b.Save(ctx, got); err != nil {
		t.Fatal(err)
	}
	back, err := a.Get(ctx, sa.ID())
	if err != nil {
		t.Fatal(err)
	}
	if tf := back.Snapshot().Transform; tf.Left != 30 {
		t.Errorf("instance a left = %g, want 30", tf.Left)
	}

	// Unsaved local edits are not clobbered by an equal stored version.
	back.Manipulate(tracker.Move, tracker.Geometry{Left: 40, Top: 20})
	again, _ := a.Get(ctx, sa.ID())
	if tf := again.Snapshot().Transform; tf.Left != 40 {
		t.Errorf("left after Get = %g, want unsaved 40", tf.Left)
	}

	if err := b.Delete(ctx, sa.ID()); err != nil {
		t.Fatal(err)
	}
	if _, err := a.Get(ctx, sa.ID()); !errors.Is(err, errors.ErrCodeSessionNotFound) {
		t.Errorf("Get after remote Delete = %v, want SESSION_NOT_FOUND", err)
	}
	if a.Len() != 0 {
		t.Errorf("a still holds %d live sessions", a.Len())
	}
}
