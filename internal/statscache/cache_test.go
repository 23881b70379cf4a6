package statscache

import (
	"context"
	"fmt"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
)

func newTestCache(t *testing.T) *Cache {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	t.Cleanup(func() { mr.Close() })
	url := fmt.Sprintf("redis://%s/0", mr.Addr())
	c, err := NewFromURL(url, time.Minute)
	if err != nil {
		t.Fatalf("statscache.NewFromURL: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestTextRoundTrip(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	if _, ok, err := c.GetText(ctx, "leaderboard"); err != nil || ok {
		t.Fatalf("expected clean miss, got ok=%v err=%v", ok, err)
	}
	if err := c.SetText(ctx, "leaderboard", "1. alice - 3 wins"); err != nil {
		t.Fatalf("SetText: %v", err)
	}
	got, ok, err := c.GetText(ctx, "leaderboard")
	if err != nil || !ok {
		t.Fatalf("GetText after set: ok=%v err=%v", ok, err)
	}
	if got != "1. alice - 3 wins" {
		t.Fatalf("GetText = %q", got)
	}
}

func TestImageRoundTrip(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	png := []byte{0x89, 'P', 'N', 'G', 0x00, 0x01}
	if err := c.SetImage(ctx, "chart:average", png); err != nil {
		t.Fatalf("SetImage: %v", err)
	}
	got, ok, err := c.GetImage(ctx, "chart:average")
	if err != nil || !ok {
		t.Fatalf("GetImage: ok=%v err=%v", ok, err)
	}
	if string(got) != string(png) {
		t.Fatalf("GetImage mismatch: %v", got)
	}
}

func TestInvalidateDropsEverything(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	if err := c.SetText(ctx, "streak:alice", "3 days"); err != nil {
		t.Fatalf("SetText: %v", err)
	}
	if err := c.SetImage(ctx, "chart:luck", []byte("img")); err != nil {
		t.Fatalf("SetImage: %v", err)
	}
	if err := c.Invalidate(ctx); err != nil {
		t.Fatalf("Invalidate: %v", err)
	}
	if _, ok, _ := c.GetText(ctx, "streak:alice"); ok {
		t.Fatalf("text entry survived invalidation")
	}
	if _, ok, _ := c.GetImage(ctx, "chart:luck"); ok {
		t.Fatalf("image entry survived invalidation")
	}
	// Invalidating an empty cache is a no-op, not an error.
	if err := c.Invalidate(ctx); err != nil {
		t.Fatalf("Invalidate empty: %v", err)
	}
}
