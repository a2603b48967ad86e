package support

import (
	"errors"
	"testing"
)

func TestGetRedisClientRequiresURL(t *testing.T) {
	t.Setenv("REDIS_URL", "")
	if err := CloseRedisClient(); err != nil {
		t.Fatalf("CloseRedisClient: %v", err)
	}

	if _, err := GetRedisClient(); !errors.Is(err, ErrRedisNotConfigured) {
		t.Fatalf("GetRedisClient error = %v, want ErrRedisNotConfigured", err)
	}
}

func TestGetRedisClientRejectsBadURL(t *testing.T) {
	t.Setenv("REDIS_URL", "://not-a-url")
	if _, err := GetRedisClient(); err == nil {
		t.Fatal("expected error for malformed Redis URL, got nil")
	}
}
