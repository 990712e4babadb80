// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package cache

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"
)

type fakeSettings struct {
	value string
	err   error
	reads int
}

func (f *fakeSettings) Get(key, fallback string) (string, error) {
	f.reads++
	if f.err != nil {
		return fallback, f.err
	}
	if f.value == "" {
		return fallback, nil
	}
	return f.value, nil
}

// Without a Valkey client, every resolution falls through to the store.
func TestProviderCacheNoClient(t *testing.T) {
	settings := &fakeSettings{value: "openai"}
	pc := NewProviderCache(nil, settings, "ai_provider", time.Minute)

	if got := pc.ActiveProvider(context.Background()); got != "openai" {
		t.Errorf("got %q, want openai", got)
	}
	if got := pc.ActiveProvider(context.Background()); got != "openai" {
		t.Errorf("got %q, want openai", got)
	}
	if settings.reads != 2 {
		t.Errorf("expected 2 store reads without a cache, got %d", settings.reads)
	}
}

func TestProviderCacheStoreFailureResolvesEmpty(t *testing.T) {
	settings := &fakeSettings{err: errors.New("db down")}
	pc := NewProviderCache(nil, settings, "ai_provider", time.Minute)

	if got := pc.ActiveProvider(context.Background()); got != "" {
		t.Errorf("store failure must resolve to empty, got %q", got)
	}
}

// Integration path: requires a reachable Valkey.
func TestProviderCacheReadThrough(t *testing.T) {
	host := os.Getenv("VALKEY_HOST")
	if host == "" {
		host = "localhost"
	}
	client, err := ConnectValkey(host, "6379", os.Getenv("VALKEY_PASSWORD"))
	if err != nil {
		t.Skipf("skipping integration test: valkey not reachable: %v", err)
	}
	t.Cleanup(func() {
		client.Del(context.Background(), providerKey)
		client.Close()
	})

	settings := &fakeSettings{value: "anthropic"}
	pc := NewProviderCache(client, settings, "ai_provider", time.Minute)
	ctx := context.Background()

	if got := pc.ActiveProvider(ctx); got != "anthropic" {
		t.Fatalf("got %q, want anthropic", got)
	}
	if got := pc.ActiveProvider(ctx); got != "anthropic" {
		t.Fatalf("cached read: got %q", got)
	}
	if settings.reads != 1 {
		t.Errorf("expected 1 store read with a warm cache, got %d", settings.reads)
	}

	// Invalidate forces the next read back to the store.
	pc.Invalidate(ctx)
	settings.value = "openai"
	if got := pc.ActiveProvider(ctx); got != "openai" {
		t.Errorf("after invalidate: got %q, want openai", got)
	}
}
