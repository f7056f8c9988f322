package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

func TestRedisWrap(t *testing.T) {
	c := NewRedisCacheFromClient(redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"}))
	defer c.Close()

	tests := []struct {
		name      string
		err       error
		retryable bool
	}{
		{"nil", nil, false},
		{"miss", redis.Nil, false},
		{"canceled", context.Canceled, false},
		{"deadline", context.DeadlineExceeded, false},
		{"network", errors.New("dial tcp: connection refused"), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := c.wrap(tt.err)
			if IsRetryable(err) != tt.retryable {
				t.Errorf("IsRetryable(wrap(%v)) = %v", tt.err, !tt.retryable)
			}
			if tt.retryable && !errors.Is(err, ErrNetwork) {
				t.Errorf("wrap(%v) should be ErrNetwork", tt.err)
			}
		})
	}
}

func TestRedisCanceledContext(t *testing.T) {
	c := NewRedisCacheFromClient(redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"}))
	defer c.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, hit, err := c.Get(ctx, "k"); err == nil || hit {
		t.Errorf("Get with canceled context = hit %v, err %v", hit, err)
	}
}

func TestMongoEntryExpiry(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	forever := newMongoEntry("k", []byte("v"), 0, now)
	if forever.ExpiresAt != nil {
		t.Error("zero ttl should not set expires_at")
	}
	if forever.expired(now.Add(24 * 365 * time.Hour)) {
		t.Error("entry without ttl should never expire")
	}

	short := newMongoEntry("k", []byte("v"), time.Minute, now)
	if short.expired(now.Add(30 * time.Second)) {
		t.Error("entry expired too early")
	}
	if !short.expired(now.Add(2 * time.Minute)) {
		t.Error("entry should have expired")
	}
}
