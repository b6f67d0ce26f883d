package tilecache

import (
	"bytes"
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
)

func newMini(t *testing.T) (*Redis, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	t.Cleanup(cancel)

	rc, err := NewRedis(ctx, mr.Addr())
	if err != nil {
		t.Fatalf("NewRedis: %v", err)
	}
	t.Cleanup(func() { _ = rc.Close() })
	return rc, mr
}

func TestRedis_SetGet(t *testing.T) {
	rc, _ := newMini(t)
	ctx := context.Background()

	key := Key("osm", 10, 279, 427)
	if _, ok, err := rc.Get(ctx, key); err != nil || ok {
		t.Fatalf("Get(missing) = ok=%v err=%v", ok, err)
	}

	want := []byte("tile-bytes")
	if err := rc.Set(ctx, key, want, 5*time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, ok, err := rc.Get(ctx, key)
	if err != nil || !ok {
		t.Fatalf("Get = ok=%v err=%v", ok, err)
	}
	if !bytes.Equal(got, want) {
		t.Fatalf("Get = %q, want %q", got, want)
	}
}

func TestRedis_TTLExpiry(t *testing.T) {
	rc, mr := newMini(t)
	ctx := context.Background()

	key := Key("osm", 3, 1, 2)
	if err := rc.Set(ctx, key, []byte("v"), time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	mr.FastForward(2 * time.Minute)

	if _, ok, err := rc.Get(ctx, key); err != nil || ok {
		t.Fatalf("Get after expiry = ok=%v err=%v, want miss", ok, err)
	}
}

func TestNewRedis_NoAddr(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if _, err := NewRedis(ctx, ""); err == nil {
		t.Fatalf("expected error for empty address")
	}
}
