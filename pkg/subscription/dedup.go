package subscription

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// Deduper recognizes webhook events that were already processed. Providers
// deliver at least once, so duplicates are expected; the handlers are
// idempotent regardless, dedup just saves the redundant work.
type Deduper interface {
	// Seen marks the event as processed and reports whether it had been
	// marked before.
	Seen(ctx context.Context, source, eventID string) bool
}

// RedisDeduper implements Deduper with SETNX keys carrying a TTL. It is best
// effort: any Redis failure reports the event as unseen, falling back on
// handler idempotence.
type RedisDeduper struct {
	client *redis.Client
	ttl    time.Duration
	log    *slog.Logger
}

func NewRedisDeduper(client *redis.Client, ttl time.Duration, log *slog.Logger) *RedisDeduper {
	if client == nil {
		panic("subscription: redis client is required")
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &RedisDeduper{client: client, ttl: ttl, log: log}
}

func (d *RedisDeduper) Seen(ctx context.Context, source, eventID string) bool {
	if eventID == "" {
		return false
	}

	fresh, err := d.client.SetNX(ctx, "webhook:seen:"+source+":"+eventID, 1, d.ttl).Result()
	if err != nil {
		d.log.WarnContext(ctx, "webhook dedup check failed", "source", source, "event_id", eventID, "error", err)
		return false
	}
	return !fresh
}

// NopDeduper treats every event as unseen. Used when Redis is not configured.
type NopDeduper struct{}

func (NopDeduper) Seen(context.Context, string, string) bool { return false }
