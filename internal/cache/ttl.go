package cache

import (
	"context"
	"log/slog"
	"time"

	"github.com/jellydator/ttlcache/v3"
)

type entry struct {
	value    any
	deadline time.Time // Absolute expiry; zero when only sliding applies
}

// TTLStore is a Store backed by ttlcache. Sliding expiry uses ttlcache's
// touch-on-hit; absolute deadlines are checked on read.
type TTLStore struct {
	items  *ttlcache.Cache[string, entry]
	logger *slog.Logger
	now    func() time.Time
}

// NewTTLStore creates a store and starts its expiry janitor. Call Close to stop it.
func NewTTLStore(logger *slog.Logger) *TTLStore {
	items := ttlcache.New[string, entry]()
	items.OnEviction(func(_ context.Context, reason ttlcache.EvictionReason, item *ttlcache.Item[string, entry]) {
		evictionMetric.WithLabelValues(evictionReason(reason)).Inc()
	})
	go items.Start()

	return &TTLStore{
		items:  items,
		logger: logger,
		now:    time.Now,
	}
}

func evictionReason(reason ttlcache.EvictionReason) string {
	switch reason {
	case ttlcache.EvictionReasonDeleted:
		return "deleted"
	case ttlcache.EvictionReasonExpired:
		return "expired"
	case ttlcache.EvictionReasonCapacityReached:
		return "capacity"
	default:
		return "other"
	}
}

func (s *TTLStore) Get(key string) (any, bool) {
	item := s.items.Get(key)
	if item == nil {
		missMetric.Inc()
		s.logger.Debug("cache miss", "key", key)
		return nil, false
	}
	e := item.Value()
	if !e.deadline.IsZero() && !s.now().Before(e.deadline) {
		s.items.Delete(key)
		missMetric.Inc()
		s.logger.Debug("cache miss", "key", key, "reason", "absolute expiry")
		return nil, false
	}
	hitMetric.Inc()
	s.logger.Debug("cache hit", "key", key)
	return e.value, true
}

func (s *TTLStore) Set(key string, value any, exp Expiration) {
	e := entry{value: value}
	ttl := exp.Sliding
	if exp.Absolute > 0 {
		e.deadline = s.now().Add(exp.Absolute)
		if ttl <= 0 || exp.Absolute < ttl {
			ttl = exp.Absolute
		}
	}
	if ttl <= 0 {
		ttl = ttlcache.NoTTL
	}
	s.items.Set(key, e, ttl)
}

func (s *TTLStore) Remove(keys ...string) {
	for _, key := range keys {
		s.items.Delete(key)
	}
}

// Close stops the expiry janitor.
func (s *TTLStore) Close() {
	s.items.Stop()
}
