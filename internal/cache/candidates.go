package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/guard-duty-service/internal/events"
	"github.com/spec-kit/guard-duty-service/internal/service"
)

const dutiesVersionKey = "duties:version"

// CandidatePages caches ranked candidate pages in Redis. Entries are keyed by
// a duties version counter bumped on every duty mutation, so invalidation is
// a single INCR: stale pages simply become unreachable and expire via TTL.
type CandidatePages struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewCandidatePages builds the cache. Returns nil when no client is
// available, which callers treat as caching disabled.
func NewCandidatePages(client *redis.Client, ttl time.Duration, logger *zap.Logger) *CandidatePages {
	if client == nil || ttl <= 0 {
		return nil
	}
	return &CandidatePages{client: client, ttl: ttl, logger: logger}
}

// Get returns a cached page for the query, if present.
func (c *CandidatePages) Get(ctx context.Context, q service.CandidateQuery) (*service.CandidatePage, bool) {
	key, err := c.key(ctx, q)
	if err != nil {
		return nil, false
	}
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}
	var page service.CandidatePage
	if err := json.Unmarshal(raw, &page); err != nil {
		c.logger.Warn("discarding malformed candidate cache entry", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return &page, true
}

// Set stores a page under the current duties version. Failures are logged
// and ignored; the cache is advisory.
func (c *CandidatePages) Set(ctx context.Context, q service.CandidateQuery, page *service.CandidatePage) {
	key, err := c.key(ctx, q)
	if err != nil {
		return
	}
	raw, err := json.Marshal(page)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		c.logger.Debug("candidate cache write failed", zap.Error(err))
	}
}

// RegisterInvalidation bumps the duties version whenever a duty mutation or
// recount lands, so no reader can observe a pre-mutation page.
func (c *CandidatePages) RegisterInvalidation(dispatcher events.Dispatcher) {
	if c == nil || dispatcher == nil {
		return
	}
	handler := func(ctx context.Context, _ events.Event) error {
		if err := c.client.Incr(ctx, dutiesVersionKey).Err(); err != nil {
			c.logger.Debug("candidate cache invalidation failed", zap.Error(err))
		}
		return nil
	}
	dispatcher.Subscribe(events.EventDutyCreated, handler)
	dispatcher.Subscribe(events.EventDutyUpdated, handler)
	dispatcher.Subscribe(events.EventDutyDeleted, handler)
	dispatcher.Subscribe(events.EventRecountCompleted, handler)
}

func (c *CandidatePages) key(ctx context.Context, q service.CandidateQuery) (string, error) {
	version, err := c.client.Get(ctx, dutiesVersionKey).Int64()
	if err != nil && err != redis.Nil {
		return "", err
	}
	return fmt.Sprintf("candidates:%d:%s:%s:%d:%d:%t",
		version, q.Date.Format("2006-01-02"), q.Search, q.Page, q.PageSize, q.Prioritize), nil
}
