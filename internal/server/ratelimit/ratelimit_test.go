package ratelimit

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestTokenBucket_Allow(t *testing.T) {
	bucket := newTokenBucket(10, 1.0) // 10 tokens, 1 token per second

	for i := 0; i < 10; i++ {
		if !bucket.allow() {
			t.Errorf("Expected request %d to be allowed", i+1)
		}
	}

	if bucket.allow() {
		t.Error("Expected 11th request to be denied")
	}
}

func TestTokenBucket_Refill(t *testing.T) {
	bucket := newTokenBucket(10, 1.0)

	for i := 0; i < 10; i++ {
		bucket.allow()
	}

	time.Sleep(1100 * time.Millisecond)

	if !bucket.allow() {
		t.Error("Expected request to be allowed after refill")
	}
	if bucket.allow() {
		t.Error("Expected request to be denied after consuming refilled token")
	}
}

func TestLimiter_Allow(t *testing.T) {
	config := &Config{
		Enabled:       true,
		DefaultLimit:  10,
		DefaultWindow: time.Minute,
	}
	limiter := NewLimiter(config)
	defer limiter.Stop()

	for i := 0; i < 10; i++ {
		allowed, rateInfo := limiter.Allow("127.0.0.1", "/api/jobs", "GET")
		if !allowed {
			t.Errorf("Expected request %d to be allowed", i+1)
		}
		if rateInfo.Limit != 10 {
			t.Errorf("Expected limit 10, got %d", rateInfo.Limit)
		}
	}

	allowed, rateInfo := limiter.Allow("127.0.0.1", "/api/jobs", "GET")
	if allowed {
		t.Error("Expected 11th request to be denied")
	}
	if rateInfo.RetryAfter <= 0 {
		t.Error("Expected retry after to be positive")
	}
}

func TestLimiter_PerClientIsolation(t *testing.T) {
	config := &Config{
		Enabled:       true,
		DefaultLimit:  1,
		DefaultWindow: time.Minute,
	}
	limiter := NewLimiter(config)
	defer limiter.Stop()

	if allowed, _ := limiter.Allow("10.0.0.1", "/api/jobs", "GET"); !allowed {
		t.Error("First client's first request should be allowed")
	}
	if allowed, _ := limiter.Allow("10.0.0.1", "/api/jobs", "GET"); allowed {
		t.Error("First client's second request should be denied")
	}
	// A different client has its own bucket
	if allowed, _ := limiter.Allow("10.0.0.2", "/api/jobs", "GET"); !allowed {
		t.Error("Second client's first request should be allowed")
	}
}

func TestLimiter_WhitelistAndBlacklist(t *testing.T) {
	config := &Config{
		Enabled:       true,
		DefaultLimit:  1,
		DefaultWindow: time.Minute,
		Whitelist:     map[string]bool{"127.0.0.1": true},
		Blacklist:     map[string]bool{"192.0.2.1": true},
	}
	limiter := NewLimiter(config)
	defer limiter.Stop()

	for i := 0; i < 100; i++ {
		if allowed, _ := limiter.Allow("127.0.0.1", "/api/jobs", "GET"); !allowed {
			t.Fatalf("Whitelisted client denied on request %d", i+1)
		}
	}

	if allowed, _ := limiter.Allow("192.0.2.1", "/api/jobs", "GET"); allowed {
		t.Error("Blacklisted client should always be denied")
	}
}

func TestLimiter_Disabled(t *testing.T) {
	limiter := NewLimiter(&Config{Enabled: false})
	defer limiter.Stop()

	for i := 0; i < 100; i++ {
		if allowed, _ := limiter.Allow("127.0.0.1", "/api/addJob", "POST"); !allowed {
			t.Fatal("Disabled limiter should allow everything")
		}
	}
}

func TestLimiter_Concurrent(t *testing.T) {
	config := &Config{
		Enabled:       true,
		DefaultLimit:  1000,
		DefaultWindow: time.Minute,
	}
	limiter := NewLimiter(config)
	defer limiter.Stop()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			clientID := fmt.Sprintf("10.0.0.%d", n%5)
			for j := 0; j < 20; j++ {
				limiter.Allow(clientID, "/api/jobs", "GET")
			}
		}(i)
	}
	wg.Wait()
}

func TestMatchEndpoint(t *testing.T) {
	configs := DefaultEndpointConfigs()

	tests := []struct {
		name      string
		path      string
		method    string
		wantLimit int
		wantNil   bool
	}{
		{"health is unlimited", "/api/health", "GET", 0, false},
		{"addJob strict tier", "/api/addJob", "POST", 60, false},
		{"titles strict tier", "/api/getUrlTitles", "POST", 30, false},
		{"bulk update moderate tier", "/api/bulkUpdate", "POST", 100, false},
		{"job patch prefix match", "/api/jobs/abc-123", "PATCH", 100, false},
		{"job read falls through", "/api/jobs", "GET", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MatchEndpoint(tt.path, tt.method, configs)
			if tt.wantNil {
				if got != nil {
					t.Errorf("Expected no match, got %+v", got)
				}
				return
			}
			if got == nil {
				t.Fatal("Expected a match, got nil")
			}
			if got.Limit != tt.wantLimit {
				t.Errorf("Expected limit %d, got %d", tt.wantLimit, got.Limit)
			}
		})
	}
}
