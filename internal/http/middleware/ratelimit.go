package middleware

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	redis "github.com/redis/go-redis/v9"
)

// Policy is a named fixed-window rate limit. SkipSuccessful refunds the
// slot when the handler answers below 400, so only failures accumulate
// (used by the auth policy against credential stuffing).
type Policy struct {
	Name           string
	Window         time.Duration
	Max            int64
	SkipSuccessful bool
	Message        string
}

var policies = map[string]Policy{
	"general": {
		Name:    "general",
		Window:  15 * time.Minute,
		Max:     1000,
		Message: "too many requests, slow down",
	},
	"auth": {
		Name:           "auth",
		Window:         15 * time.Minute,
		Max:            10,
		SkipSuccessful: true,
		Message:        "too many login attempts, try again later",
	},
	"expensive": {
		Name:    "expensive",
		Window:  5 * time.Minute,
		Max:     20,
		Message: "too many case openings, slow down",
	},
	"api": {
		Name:    "api",
		Window:  time.Minute,
		Max:     100,
		Message: "API rate limit exceeded",
	},
}

// PolicyByName exposes the policy table (read-only) for tests and docs
func PolicyByName(name string) (Policy, bool) {
	p, ok := policies[name]
	return p, ok
}

// CounterStore is the shared counter behind the limiter: atomic
// increment with a TTL set on first touch, plus a decrement for the
// auth refund path.
type CounterStore interface {
	Incr(ctx context.Context, key string, window time.Duration) (int64, error)
	Decr(ctx context.Context, key string) error
}

// RedisCounterStore keeps counters in Redis so instances share windows
type RedisCounterStore struct {
	client *redis.Client
}

func NewRedisCounterStore(client *redis.Client) *RedisCounterStore {
	return &RedisCounterStore{client: client}
}

func (s *RedisCounterStore) Incr(ctx context.Context, key string, window time.Duration) (int64, error) {
	val, err := s.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if val == 1 {
		s.client.Expire(ctx, key, window)
	}
	return val, nil
}

func (s *RedisCounterStore) Decr(ctx context.Context, key string) error {
	return s.client.Decr(ctx, key).Err()
}

// MemoryCounterStore is the single-instance fallback and test double
type MemoryCounterStore struct {
	mu      sync.Mutex
	entries map[string]*memoryEntry
}

type memoryEntry struct {
	count   int64
	resetAt time.Time
}

func NewMemoryCounterStore() *MemoryCounterStore {
	return &MemoryCounterStore{entries: make(map[string]*memoryEntry)}
}

func (s *MemoryCounterStore) Incr(_ context.Context, key string, window time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	e, ok := s.entries[key]
	if !ok || now.After(e.resetAt) {
		// lazy eviction: expired windows are overwritten in place
		s.entries[key] = &memoryEntry{count: 1, resetAt: now.Add(window)}
		return 1, nil
	}
	e.count++
	return e.count, nil
}

func (s *MemoryCounterStore) Decr(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.entries[key]; ok && e.count > 0 {
		e.count--
	}
	return nil
}

var counterStore CounterStore

// InitRateLimiter wires the shared counter store. A nil client selects
// the in-memory store (single instance, still enforced).
func InitRateLimiter(client *redis.Client) {
	if client != nil {
		counterStore = NewRedisCounterStore(client)
		return
	}
	counterStore = NewMemoryCounterStore()
}

// UseCounterStore overrides the store (tests)
func UseCounterStore(s CounterStore) {
	counterStore = s
}

// RateLimit enforces the named policy per client IP. Unknown policy
// names and store errors fail open, matching the availability-first
// behavior of the Redis limiter this grew out of.
func RateLimit(policyName string) gin.HandlerFunc {
	policy, known := PolicyByName(policyName)

	return func(c *gin.Context) {
		if !known || counterStore == nil {
			c.Next()
			return
		}

		key := "rl:" + policy.Name + ":" + c.ClientIP()
		ctx := c.Request.Context()

		val, err := counterStore.Incr(ctx, key, policy.Window)
		if err != nil {
			c.Header("X-RateLimit-Error", "store-error")
			c.Next()
			return
		}

		retryAfter := int(policy.Window.Seconds())
		c.Header("X-RateLimit-Limit", strconv.FormatInt(policy.Max, 10))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(maxInt64(0, policy.Max-val), 10))

		if val > policy.Max {
			RLBlocked.WithLabelValues(policy.Name, c.FullPath()).Inc()
			c.Header("Retry-After", strconv.Itoa(retryAfter))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "rate_limited",
				"message":     policy.Message,
				"retry_after": retryAfter,
			})
			return
		}

		RLRequests.WithLabelValues(policy.Name, c.FullPath()).Inc()

		if !policy.SkipSuccessful {
			c.Next()
			return
		}

		c.Next()

		// refund the slot for successful requests so only failed
		// attempts count against the window
		if c.Writer.Status() < 400 {
			_ = counterStore.Decr(ctx, key)
		}
	}
}

func maxInt64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}
