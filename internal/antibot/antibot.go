// Package antibot raises heuristic flags on incoming submissions. Flags are
// recorded on the stored submission; nothing is rejected here.
package antibot

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/shubham-ralli/form-b/internal/log"
	"github.com/shubham-ralli/form-b/internal/models"
)

const HoneypotField = models.HoneypotField

const (
	defaultWindow = time.Minute
	defaultBurst  = 5
)

// Counter counts events per key within a fixed window.
type Counter interface {
	Incr(ctx context.Context, key string, window time.Duration) (int64, error)
}

type Checker struct {
	counter Counter
	window  time.Duration
	burst   int64
}

func New(counter Counter) *Checker {
	return &Checker{counter: counter, window: defaultWindow, burst: defaultBurst}
}

// Inspect returns the flags raised for a submission and the payload with
// the honeypot field removed.
func (c *Checker) Inspect(ctx context.Context, formID, ip, userAgent string, data map[string]any) ([]string, map[string]any) {
	var flags []string
	clean := make(map[string]any, len(data))
	for k, v := range data {
		if k == HoneypotField {
			if s, _ := v.(string); strings.TrimSpace(s) != "" {
				flags = append(flags, models.FlagHoneypot)
			}
			continue
		}
		clean[k] = v
	}
	if strings.TrimSpace(userAgent) == "" {
		flags = append(flags, models.FlagNoUserAgent)
	}
	if empty(clean) {
		flags = append(flags, models.FlagEmptyData)
	}
	if c.counter != nil && ip != "" {
		n, err := c.counter.Incr(ctx, fmt.Sprintf("formcraft:rate:%s:%s", formID, ip), c.window)
		if err != nil {
			log.Warnf("antibot: counter: %v", err)
		} else if n > c.burst {
			flags = append(flags, models.FlagRapidRepeat)
		}
	}
	return flags, clean
}

func empty(data map[string]any) bool {
	for _, v := range data {
		switch x := v.(type) {
		case nil:
		case string:
			if strings.TrimSpace(x) != "" {
				return false
			}
		case []any:
			if len(x) > 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// RedisCounter keeps counters in Redis so limits hold across instances.
type RedisCounter struct {
	client *redis.Client
}

func NewRedisCounter(addr string) *RedisCounter {
	return &RedisCounter{client: redis.NewClient(&redis.Options{Addr: addr})}
}

func (r *RedisCounter) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Incr creates the key with its TTL and increments it in one MULTI, so a key
// never outlives its window.
func (r *RedisCounter) Incr(ctx context.Context, key string, window time.Duration) (int64, error) {
	var incr *redis.IntCmd
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.SetNX(ctx, key, 0, window)
		incr = pipe.Incr(ctx, key)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return incr.Val(), nil
}

func (r *RedisCounter) Close() error {
	return r.client.Close()
}

// MemoryCounter is the single-process fallback when no Redis is configured.
type MemoryCounter struct {
	mu      sync.Mutex
	now     func() time.Time
	buckets map[string]bucket
}

type bucket struct {
	n       int64
	expires time.Time
}

func NewMemoryCounter() *MemoryCounter {
	return &MemoryCounter{now: time.Now, buckets: map[string]bucket{}}
}

func (m *MemoryCounter) Incr(_ context.Context, key string, window time.Duration) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	b := m.buckets[key]
	if !now.Before(b.expires) {
		b = bucket{expires: now.Add(window)}
	}
	b.n++
	m.buckets[key] = b
	if len(m.buckets) > 10000 {
		for k, v := range m.buckets {
			if !now.Before(v.expires) {
				delete(m.buckets, k)
			}
		}
	}
	return b.n, nil
}
