package middleware

import (
	"bytes"
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	redis "github.com/redis/go-redis/v9"
)

const (
	csrfHeader    = "X-CSRF-Token"
	csrfBodyField = "_csrf"
	csrfTokenTTL  = 24 * time.Hour
)

// TokenStore holds one CSRF token per session. GetOrCreate must be
// atomic (first writer wins) so concurrent requests agree on the token.
type TokenStore interface {
	GetOrCreate(ctx context.Context, key, candidate string, ttl time.Duration) (string, error)
	Get(ctx context.Context, key string) (string, error)
}

// RedisTokenStore shares session tokens across instances
type RedisTokenStore struct {
	client *redis.Client
}

func NewRedisTokenStore(client *redis.Client) *RedisTokenStore {
	return &RedisTokenStore{client: client}
}

func (s *RedisTokenStore) GetOrCreate(ctx context.Context, key, candidate string, ttl time.Duration) (string, error) {
	// SETNX keeps the first token; losers read the winner's value
	ok, err := s.client.SetNX(ctx, key, candidate, ttl).Result()
	if err != nil {
		return "", err
	}
	if ok {
		return candidate, nil
	}
	return s.client.Get(ctx, key).Result()
}

func (s *RedisTokenStore) Get(ctx context.Context, key string) (string, error) {
	val, err := s.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", nil
	}
	return val, err
}

// MemoryTokenStore is the single-instance fallback and test double
type MemoryTokenStore struct {
	mu     sync.Mutex
	tokens map[string]string
}

func NewMemoryTokenStore() *MemoryTokenStore {
	return &MemoryTokenStore{tokens: make(map[string]string)}
}

func (s *MemoryTokenStore) GetOrCreate(_ context.Context, key, candidate string, _ time.Duration) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if tok, ok := s.tokens[key]; ok {
		return tok, nil
	}
	s.tokens[key] = candidate
	return candidate, nil
}

func (s *MemoryTokenStore) Get(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tokens[key], nil
}

var tokenStore TokenStore

// InitCSRF wires the token store. A nil client selects the in-memory
// store; the guard itself is never disabled.
func InitCSRF(client *redis.Client) {
	if client != nil {
		tokenStore = NewRedisTokenStore(client)
		return
	}
	tokenStore = NewMemoryTokenStore()
}

// UseTokenStore overrides the store (tests)
func UseTokenStore(s TokenStore) {
	tokenStore = s
}

func csrfKey(userID int64) string {
	return "csrf:" + strconv.FormatInt(userID, 10)
}

func newToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// IssueCSRFToken returns the session token for the authenticated user,
// generating it on first use. Requires JWT() to have run.
func IssueCSRFToken(c *gin.Context) (string, error) {
	userID, ok := UserID(c)
	if !ok {
		return "", errNoSession
	}
	candidate, err := newToken()
	if err != nil {
		return "", err
	}
	return tokenStore.GetOrCreate(c.Request.Context(), csrfKey(userID), candidate, csrfTokenTTL)
}

// CSRFProtect rejects mutating requests whose token does not match the
// session token. The token may arrive in the X-CSRF-Token header or a
// _csrf body field.
func CSRFProtect() gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		default:
			c.Next()
			return
		}

		userID, ok := UserID(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "unauthenticated",
				"message": "authentication required",
			})
			return
		}

		supplied := c.GetHeader(csrfHeader)
		if supplied == "" {
			supplied = csrfFromBody(c)
		}

		stored, err := tokenStore.Get(c.Request.Context(), csrfKey(userID))
		if err != nil || stored == "" || supplied == "" ||
			subtle.ConstantTimeCompare([]byte(stored), []byte(supplied)) != 1 {
			CSRFFailures.Inc()
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error":   "csrf_failed",
				"message": "missing or invalid CSRF token, fetch a fresh one from /api/v1/csrf",
			})
			return
		}

		c.Next()
	}
}

// csrfFromBody peeks at a JSON body for the _csrf field and restores
// the body for downstream handlers.
func csrfFromBody(c *gin.Context) string {
	if c.Request.Body == nil || c.Request.Body == http.NoBody {
		return ""
	}
	raw, err := io.ReadAll(c.Request.Body)
	c.Request.Body = io.NopCloser(bytes.NewReader(raw))
	if err != nil {
		return ""
	}
	var body map[string]any
	if err := json.Unmarshal(raw, &body); err != nil {
		return ""
	}
	tok, _ := body[csrfBodyField].(string)
	return tok
}
