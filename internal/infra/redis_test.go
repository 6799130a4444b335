package infra

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
)

func TestNewRedisClient(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	defer mr.Close()

	client, err := NewRedisClient(context.Background(), "redis://"+mr.Addr(), time.Second)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer client.Close()

	if client.Options().ReadTimeout != time.Second {
		t.Fatalf("expected read timeout to be applied, got %s", client.Options().ReadTimeout)
	}
}

func TestNewRedisClientRequiresURL(t *testing.T) {
	if _, err := NewRedisClient(context.Background(), "", time.Second); err == nil {
		t.Fatal("expected error for empty url")
	}
}
