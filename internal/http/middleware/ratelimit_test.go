package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func limitedRouter(policy string, status int) *gin.Engine {
	r := gin.New()
	r.POST("/x", RateLimit(policy), func(c *gin.Context) {
		c.JSON(status, gin.H{})
	})
	return r
}

func hit(r *gin.Engine) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/x", nil)
	req.RemoteAddr = "10.1.2.3:1234"
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthPolicyBlocksAfterTenFailures(t *testing.T) {
	UseCounterStore(NewMemoryCounterStore())
	r := limitedRouter("auth", http.StatusUnauthorized)

	for i := 0; i < 10; i++ {
		w := hit(r)
		require.Equal(t, http.StatusUnauthorized, w.Code, "attempt %d should reach the handler", i+1)
	}

	w := hit(r)
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), `"rate_limited"`)
	assert.Contains(t, w.Body.String(), `"retry_after":900`)
	assert.Equal(t, "900", w.Header().Get("Retry-After"))
}

func TestAuthPolicyRefundsSuccesses(t *testing.T) {
	UseCounterStore(NewMemoryCounterStore())
	r := limitedRouter("auth", http.StatusOK)

	// successful logins are refunded, so far more than Max pass
	for i := 0; i < 50; i++ {
		w := hit(r)
		require.Equal(t, http.StatusOK, w.Code, "successful attempt %d blocked", i+1)
	}
}

func TestRateLimitHeaders(t *testing.T) {
	UseCounterStore(NewMemoryCounterStore())
	r := limitedRouter("expensive", http.StatusOK)

	w := hit(r)
	assert.Equal(t, "20", w.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "19", w.Header().Get("X-RateLimit-Remaining"))
}

func TestUnknownPolicyFailsOpen(t *testing.T) {
	UseCounterStore(NewMemoryCounterStore())
	r := limitedRouter("no-such-policy", http.StatusOK)

	for i := 0; i < 30; i++ {
		w := hit(r)
		require.Equal(t, http.StatusOK, w.Code)
	}
}

type erroringStore struct{}

func (erroringStore) Incr(_ context.Context, _ string, _ time.Duration) (int64, error) {
	return 0, assert.AnError
}
func (erroringStore) Decr(_ context.Context, _ string) error { return nil }

func TestStoreErrorFailsOpen(t *testing.T) {
	UseCounterStore(erroringStore{})
	defer UseCounterStore(NewMemoryCounterStore())

	r := limitedRouter("api", http.StatusOK)
	w := hit(r)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "store-error", w.Header().Get("X-RateLimit-Error"))
}

func TestSeparateIPsSeparateWindows(t *testing.T) {
	UseCounterStore(NewMemoryCounterStore())
	r := limitedRouter("auth", http.StatusUnauthorized)

	for i := 0; i < 10; i++ {
		hit(r)
	}
	// first IP is now exhausted
	require.Equal(t, http.StatusTooManyRequests, hit(r).Code)

	// a different client is unaffected
	req := httptest.NewRequest(http.MethodPost, "/x", nil)
	req.RemoteAddr = "10.9.9.9:1234"
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}
