package fetchclient

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestHostLimiterSpacesRequestsPerHost(t *testing.T) {
	limiter := NewHostLimiter(20 * time.Millisecond)
	ctx := context.Background()

	start := time.Now()
	for i := 0; i < 3; i++ {
		if err := limiter.Wait(ctx, "https://example.com/a"); err != nil {
			t.Fatalf("wait failed: %v", err)
		}
	}
	elapsed := time.Since(start)

	// Three requests pay at least two full spacings.
	if elapsed < 40*time.Millisecond {
		t.Errorf("expected at least 40ms of spacing, got %v", elapsed)
	}
}

func TestHostLimiterIndependentHosts(t *testing.T) {
	limiter := NewHostLimiter(200 * time.Millisecond)
	ctx := context.Background()

	if err := limiter.Wait(ctx, "https://one.example.com/x"); err != nil {
		t.Fatalf("wait failed: %v", err)
	}

	start := time.Now()
	if err := limiter.Wait(ctx, "https://two.example.com/y"); err != nil {
		t.Fatalf("wait failed: %v", err)
	}
	if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
		t.Errorf("different host should not wait, waited %v", elapsed)
	}
}

func TestHostLimiterConcurrentCallersSerialize(t *testing.T) {
	limiter := NewHostLimiter(10 * time.Millisecond)
	ctx := context.Background()

	var mu sync.Mutex
	var stamps []time.Time
	var wg sync.WaitGroup

	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := limiter.Wait(ctx, "https://shared.example.com"); err != nil {
				t.Errorf("wait failed: %v", err)
				return
			}
			mu.Lock()
			stamps = append(stamps, time.Now())
			mu.Unlock()
		}()
	}
	wg.Wait()

	if len(stamps) != 4 {
		t.Fatalf("expected 4 completions, got %d", len(stamps))
	}
}
