// Package cache provides a Redis-backed render-plan cache. Plans are keyed
// by a normalized digest of the view state plus the snapshot version, so a
// new snapshot naturally invalidates every cached plan. Concurrent misses
// for the same key are collapsed with singleflight.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync/atomic"

	"github.com/papershelf/papershelf/internal/pipeline"
	"github.com/papershelf/papershelf/pkg/config"
	pkgredis "github.com/papershelf/papershelf/pkg/redis"
	"golang.org/x/sync/singleflight"
)

const keyPrefix = "plan:"

type PlanCache struct {
	client  *pkgredis.Client
	cfg     config.RedisConfig
	version string
	group   singleflight.Group
	logger  *slog.Logger
	hits    atomic.Int64
	misses  atomic.Int64
}

// New creates a PlanCache bound to one snapshot version.
func New(client *pkgredis.Client, cfg config.RedisConfig, snapshotVersion string) *PlanCache {
	return &PlanCache{
		client:  client,
		cfg:     cfg,
		version: snapshotVersion,
		logger:  slog.Default().With("component", "plan-cache"),
	}
}

func (c *PlanCache) Get(ctx context.Context, view pipeline.ViewState) (*pipeline.RenderPlan, bool) {
	key := c.buildKey(view)
	data, err := c.client.Get(ctx, key)
	if err != nil {
		if !pkgredis.IsNilError(err) {
			c.logger.Error("cache get failed", "key", key, "error", err)
		}
		c.misses.Add(1)
		return nil, false
	}
	var plan pipeline.RenderPlan
	if err := json.Unmarshal([]byte(data), &plan); err != nil {
		c.logger.Error("cache unmarshal failed", "key", key, "error", err)
		c.misses.Add(1)
		return nil, false
	}
	c.hits.Add(1)
	return &plan, true
}

func (c *PlanCache) Set(ctx context.Context, view pipeline.ViewState, plan *pipeline.RenderPlan) {
	key := c.buildKey(view)
	data, err := json.Marshal(plan)
	if err != nil {
		c.logger.Error("cache marshal failed", "key", key, "error", err)
		return
	}
	if err := c.client.Set(ctx, key, data, c.cfg.CacheTTL); err != nil {
		c.logger.Error("cache set failed", "key", key, "error", err)
	}
}

// GetOrCompute returns the cached plan for the view state, computing and
// storing it on a miss. The bool result reports whether it was a cache hit.
func (c *PlanCache) GetOrCompute(
	ctx context.Context,
	view pipeline.ViewState,
	computeFn func() *pipeline.RenderPlan,
) (*pipeline.RenderPlan, bool) {
	if plan, ok := c.Get(ctx, view); ok {
		return plan, true
	}
	key := c.buildKey(view)
	val, _, _ := c.group.Do(key, func() (interface{}, error) {
		if plan, ok := c.Get(ctx, view); ok {
			return plan, nil
		}
		plan := computeFn()
		c.Set(ctx, view, plan)
		return plan, nil
	})
	return val.(*pipeline.RenderPlan), false
}

// Invalidate drops every cached plan.
func (c *PlanCache) Invalidate(ctx context.Context) error {
	deleted, err := c.client.FlushByPattern(ctx, keyPrefix+"*")
	if err != nil {
		return fmt.Errorf("invalidating plan cache: %w", err)
	}
	c.logger.Info("plan cache invalidated", "keys_deleted", deleted)
	return nil
}

func (c *PlanCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

// buildKey digests the normalized view state. Topic and tag order must not
// matter, so both are sorted before hashing.
func (c *PlanCache) buildKey(view pipeline.ViewState) string {
	topics := append([]string(nil), view.Topics...)
	tags := append([]string(nil), view.Tags...)
	sort.Strings(topics)
	sort.Strings(tags)

	raw := strings.Join([]string{
		c.version,
		strings.ToLower(strings.TrimSpace(view.Query)),
		strings.Join(topics, ","),
		strings.Join(tags, ","),
		view.Collection,
		string(view.Sort.Key),
		fmt.Sprintf("%d", view.Sort.Dir),
		string(view.Group),
		fmt.Sprintf("%d:%d", view.Page, view.PageSize),
		string(view.Density),
	}, "|")

	hash := sha256.Sum256([]byte(raw))
	return fmt.Sprintf("%s%x", keyPrefix, hash[:16])
}
