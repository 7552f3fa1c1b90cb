package cache

import (
	"testing"
	"time"

	"go.uber.org/zap"
)

func newTestCache(t *testing.T) *RistrettoCache {
	t.Helper()

	cacheInterface, err := NewRistrettoCache(&RistrettoConfig{
		NumCounters: 1000,
		MaxCost:     100,
		BufferItems: 64,
		Logger:      zap.NewNop(),
	})
	if err != nil {
		t.Fatalf("failed to create cache: %v", err)
	}
	t.Cleanup(cacheInterface.Close)

	return cacheInterface.(*RistrettoCache)
}

func TestRistrettoCache_SetAndGet(t *testing.T) {
	cache := newTestCache(t)

	if !cache.Set("outputs:fx-1", "payload", time.Hour) {
		t.Error("expected Set to succeed")
	}
	cache.Wait()

	value, found := cache.Get("outputs:fx-1")
	if !found {
		t.Fatal("expected cache hit")
	}
	if value != "payload" {
		t.Errorf("value = %v, want payload", value)
	}
}

func TestRistrettoCache_Miss(t *testing.T) {
	cache := newTestCache(t)

	if _, found := cache.Get("missing"); found {
		t.Error("expected cache miss")
	}
}

func TestRistrettoCache_Delete(t *testing.T) {
	cache := newTestCache(t)

	cache.Set("key", "value", time.Hour)
	cache.Wait()
	cache.Delete("key")

	if _, found := cache.Get("key"); found {
		t.Error("expected entry to be deleted")
	}
}

func TestRistrettoCache_TTLExpiry(t *testing.T) {
	cache := newTestCache(t)

	cache.Set("short", "value", 50*time.Millisecond)
	cache.Wait()

	time.Sleep(100 * time.Millisecond)

	if _, found := cache.Get("short"); found {
		t.Error("expected entry to expire")
	}
}

func TestRistrettoCache_Clear(t *testing.T) {
	cache := newTestCache(t)

	cache.Set("a", 1, time.Hour)
	cache.Set("b", 2, time.Hour)
	cache.Wait()
	cache.Clear()

	if _, found := cache.Get("a"); found {
		t.Error("expected cache to be empty after Clear")
	}
}
