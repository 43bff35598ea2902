// Package testutil provides shared helpers for integration tests.
// Helpers in this package skip automatically when required environment
// variables are not set, so unit tests can run without a running Redis.
package testutil

import (
	"context"
	"os"
	"testing"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient opens a *redis.Client connected to the server named by the
// TEST_REDIS_ADDR environment variable.
//
// The test is skipped automatically if TEST_REDIS_ADDR is not set, so
// integration tests are opt-in and never break CI environments that lack Redis.
// The client is closed automatically when the test (and all its subtests) finish.
func NewRedisClient(t *testing.T) *redis.Client {
	t.Helper()

	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set; skipping integration test")
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(context.Background()).Err(); err != nil {
		client.Close()
		t.Fatalf("testutil.NewRedisClient: ping: %v", err)
	}

	t.Cleanup(func() { client.Close() })
	return client
}

// RedisPrefix reserves prefix for the duration of the test and deletes every
// key under it when the test finishes. It returns prefix unchanged.
func RedisPrefix(t *testing.T, client *redis.Client, prefix string) string {
	t.Helper()

	t.Cleanup(func() {
		ctx := context.Background()
		iter := client.Scan(ctx, 0, prefix+":*", 100).Iterator()
		for iter.Next(ctx) {
			client.Del(ctx, iter.Val())
		}
		if err := iter.Err(); err != nil {
			t.Logf("testutil.RedisPrefix: cleanup %s: %v", prefix, err)
		}
	})
	return prefix
}
