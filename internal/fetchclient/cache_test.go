package fetchclient

import (
	"testing"
	"time"
)

func TestDiskCacheRoundTrip(t *testing.T) {
	cache, err := NewDiskCache(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create cache: %v", err)
	}

	meta := Meta{URL: "https://example.com/doc", FetchedAt: time.Now(), Status: 200, ContentType: "text/html"}
	if err := cache.Put("https://example.com/doc", []byte("<html>hi</html>"), meta); err != nil {
		t.Fatalf("put failed: %v", err)
	}

	body, got, ok := cache.Get("https://example.com/doc", time.Hour)
	if !ok {
		t.Fatal("expected cache hit")
	}
	if string(body) != "<html>hi</html>" {
		t.Errorf("wrong body: %q", body)
	}
	if got.Status != 200 || got.ContentType != "text/html" {
		t.Errorf("wrong meta: %+v", got)
	}
}

func TestDiskCacheMissAndExpiry(t *testing.T) {
	cache, err := NewDiskCache(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create cache: %v", err)
	}

	if _, _, ok := cache.Get("https://example.com/absent", time.Hour); ok {
		t.Error("expected miss for absent entry")
	}

	meta := Meta{URL: "u", FetchedAt: time.Now().Add(-2 * time.Hour), Status: 200}
	if err := cache.Put("https://example.com/old", []byte("stale"), meta); err != nil {
		t.Fatalf("put failed: %v", err)
	}
	if _, _, ok := cache.Get("https://example.com/old", time.Hour); ok {
		t.Error("expected expired entry to miss")
	}
}

func TestDiskCacheKeysDoNotCollide(t *testing.T) {
	cache, err := NewDiskCache(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create cache: %v", err)
	}

	now := time.Now()
	cache.Put("https://example.com/a", []byte("A"), Meta{URL: "a", FetchedAt: now})
	cache.Put("https://example.com/b", []byte("B"), Meta{URL: "b", FetchedAt: now})

	bodyA, _, _ := cache.Get("https://example.com/a", time.Hour)
	bodyB, _, _ := cache.Get("https://example.com/b", time.Hour)
	if string(bodyA) != "A" || string(bodyB) != "B" {
		t.Errorf("entries collided: a=%q b=%q", bodyA, bodyB)
	}
}
