// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// template.go caches individual templates by ID so repeated reads skip the
// backing store. Entries are JSON documents with a TTL; every write through
// the repository invalidates the affected ID. Cache failures are logged and
// treated as misses.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"pagestore/internal/models"
)

const (
	// templateKeyPrefix is the Valkey key prefix for cached templates.
	templateKeyPrefix = "tpl:"

	// DefaultTemplateTTL is how long a template stays cached.
	DefaultTemplateTTL = 5 * time.Minute
)

// TemplateCache manages template caching in Valkey.
type TemplateCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewTemplateCache creates a new template cache backed by the given Valkey client.
func NewTemplateCache(client *redis.Client, ttl time.Duration) *TemplateCache {
	if ttl == 0 {
		ttl = DefaultTemplateTTL
	}
	return &TemplateCache{client: client, ttl: ttl}
}

// Get returns the cached template for id, or false on a miss.
func (tc *TemplateCache) Get(ctx context.Context, id string) (*models.PageTemplate, bool) {
	val, err := tc.client.Get(ctx, templateKeyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		slog.Warn("template cache get error", "id", id, "error", err)
		return nil, false
	}

	var t models.PageTemplate
	if err := json.Unmarshal(val, &t); err != nil {
		slog.Warn("template cache decode error", "id", id, "error", err)
		tc.Invalidate(ctx, id)
		return nil, false
	}
	slog.Debug("template cache hit", "id", id)
	return &t, true
}

// Set stores a template with the configured TTL.
func (tc *TemplateCache) Set(ctx context.Context, t *models.PageTemplate) {
	val, err := json.Marshal(t)
	if err != nil {
		slog.Warn("template cache encode error", "id", t.ID, "error", err)
		return
	}
	if err := tc.client.Set(ctx, templateKeyPrefix+t.ID, val, tc.ttl).Err(); err != nil {
		slog.Warn("template cache set error", "id", t.ID, "error", err)
	}
}

// Invalidate removes a single template from the cache.
func (tc *TemplateCache) Invalidate(ctx context.Context, id string) {
	if err := tc.client.Del(ctx, templateKeyPrefix+id).Err(); err != nil {
		slog.Warn("template cache invalidate error", "id", id, "error", err)
		return
	}
	slog.Debug("template cache invalidated", "id", id)
}

// InvalidateAll removes all cached templates by scanning for the prefix.
// Used at startup, since the store may have been changed by another process
// while entries were cached.
func (tc *TemplateCache) InvalidateAll(ctx context.Context) {
	var cursor uint64
	var deleted int
	for {
		keys, nextCursor, err := tc.client.Scan(ctx, cursor, templateKeyPrefix+"*", 100).Result()
		if err != nil {
			slog.Warn("template cache scan error", "error", err)
			return
		}
		if len(keys) > 0 {
			if err := tc.client.Del(ctx, keys...).Err(); err != nil {
				slog.Warn("template cache bulk delete error", "error", err)
			}
			deleted += len(keys)
		}
		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}
	if deleted > 0 {
		slog.Info("template cache cleared", "deleted", deleted)
	}
}
