package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

func TestNewRedisTokenBucketValidation(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"})
	t.Cleanup(func() { _ = client.Close() })

	if _, err := NewRedisTokenBucket(nil, 10, time.Minute, ""); err == nil {
		t.Fatal("expected error for nil client")
	}
	if _, err := NewRedisTokenBucket(client, 0, time.Minute, ""); err == nil {
		t.Fatal("expected error for zero capacity")
	}
	if _, err := NewRedisTokenBucket(client, 10, 0, ""); err == nil {
		t.Fatal("expected error for zero window")
	}

	limiter, err := NewRedisTokenBucket(client, 10, time.Minute, " ")
	if err != nil {
		t.Fatalf("new limiter: %v", err)
	}
	if limiter.keyPrefix != DefaultKeyPrefix {
		t.Fatalf("expected default key prefix, got %q", limiter.keyPrefix)
	}
	if limiter.Capacity() != 10 {
		t.Fatalf("expected capacity 10, got %d", limiter.Capacity())
	}
}

func TestAllowNRejectsInvalidCost(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"})
	t.Cleanup(func() { _ = client.Close() })

	limiter, err := NewRedisTokenBucket(client, 5, time.Second, "")
	if err != nil {
		t.Fatalf("new limiter: %v", err)
	}

	for _, cost := range []int{0, -1, 6} {
		if _, err := limiter.AllowN(context.Background(), "user", cost); !errors.Is(err, ErrInvalidCost) {
			t.Fatalf("cost %d: expected ErrInvalidCost, got %v", cost, err)
		}
	}
}

func TestParseDecision(t *testing.T) {
	d, err := parseDecision([]any{int64(1), int64(4), int64(0)})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !d.Allowed || d.Remaining != 4 || d.RetryAfter != 0 {
		t.Fatalf("unexpected decision %+v", d)
	}

	d, err = parseDecision([]any{int64(0), "0", int64(1500)})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if d.Allowed || d.RetryAfter != 1500*time.Millisecond {
		t.Fatalf("unexpected decision %+v", d)
	}

	if _, err := parseDecision([]any{int64(1)}); err == nil {
		t.Fatal("expected error for short response")
	}
	if _, err := parseDecision("nope"); err == nil {
		t.Fatal("expected error for non-slice response")
	}
	if _, err := parseDecision([]any{int64(1), []int{1}, int64(0)}); err == nil {
		t.Fatal("expected error for unparseable remaining value")
	}
}
