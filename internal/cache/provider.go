// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// provider.go caches the persisted AI provider selection in Valkey so the
// gateway does not hit PostgreSQL on every completion request. The cache is
// best-effort: any failure resolves to "", which the gateway treats as
// "use the default vendor".
package cache

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// providerKey is the Valkey key holding the active provider name.
	providerKey = "setting:ai_provider"

	// DefaultProviderTTL bounds staleness after out-of-band settings edits.
	DefaultProviderTTL = 30 * time.Second
)

// SettingGetter reads a single setting from the database. The settings
// store implements it.
type SettingGetter interface {
	Get(key, fallback string) (string, error)
}

// ProviderCache resolves the active AI provider, reading through Valkey.
// It satisfies the gateway's ProviderSource interface.
type ProviderCache struct {
	client   *redis.Client
	settings SettingGetter
	key      string
	ttl      time.Duration
}

// NewProviderCache creates a provider cache over the given Valkey client
// and settings store. settingKey is the database settings key to resolve.
func NewProviderCache(client *redis.Client, settings SettingGetter, settingKey string, ttl time.Duration) *ProviderCache {
	if ttl <= 0 {
		ttl = DefaultProviderTTL
	}
	return &ProviderCache{client: client, settings: settings, key: settingKey, ttl: ttl}
}

// ActiveProvider returns the persisted provider name, or "" when neither
// the cache nor the database can answer. Never errors: provider resolution
// must not take a completion request down.
func (pc *ProviderCache) ActiveProvider(ctx context.Context) string {
	if pc.client != nil {
		val, err := pc.client.Get(ctx, providerKey).Result()
		if err == nil && val != "" {
			return val
		}
		if err != nil && err != redis.Nil {
			slog.Warn("provider cache get error", "error", err)
		}
	}

	val, err := pc.settings.Get(pc.key, "")
	if err != nil {
		slog.Warn("provider setting read error", "error", err)
		return ""
	}

	if val != "" && pc.client != nil {
		if err := pc.client.Set(ctx, providerKey, val, pc.ttl).Err(); err != nil {
			slog.Warn("provider cache set error", "error", err)
		}
	}
	return val
}

// Invalidate drops the cached value. Called when the setting is updated so
// the change takes effect on the next request instead of after the TTL.
func (pc *ProviderCache) Invalidate(ctx context.Context) {
	if pc.client == nil {
		return
	}
	if err := pc.client.Del(ctx, providerKey).Err(); err != nil {
		slog.Warn("provider cache invalidate error", "error", err)
	}
}
