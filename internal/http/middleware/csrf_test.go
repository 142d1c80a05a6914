package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAuth stands in for JWT() in tests
func fakeAuth(userID int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id", userID)
		c.Next()
	}
}

func csrfRouter(userID int64) *gin.Engine {
	r := gin.New()
	r.Use(fakeAuth(userID))
	r.GET("/csrf", func(c *gin.Context) {
		tok, err := IssueCSRFToken(c)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"csrf_token": tok})
	})
	r.POST("/act", CSRFProtect(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return r
}

func fetchToken(t *testing.T, r *gin.Engine) string {
	t.Helper()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/csrf", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.NotEmpty(t, body["csrf_token"])
	return body["csrf_token"]
}

func TestCSRFMissingTokenRejected(t *testing.T) {
	UseTokenStore(NewMemoryTokenStore())
	r := csrfRouter(1)
	fetchToken(t, r)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/act", nil))
	require.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "csrf_failed")
}

func TestCSRFHeaderTokenAccepted(t *testing.T) {
	UseTokenStore(NewMemoryTokenStore())
	r := csrfRouter(1)
	tok := fetchToken(t, r)

	req := httptest.NewRequest(http.MethodPost, "/act", nil)
	req.Header.Set("X-CSRF-Token", tok)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestCSRFBodyTokenAccepted(t *testing.T) {
	UseTokenStore(NewMemoryTokenStore())
	r := csrfRouter(1)
	tok := fetchToken(t, r)

	body, _ := json.Marshal(map[string]string{"_csrf": tok, "other": "field"})
	req := httptest.NewRequest(http.MethodPost, "/act", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestCSRFWrongTokenRejected(t *testing.T) {
	UseTokenStore(NewMemoryTokenStore())
	r := csrfRouter(1)
	fetchToken(t, r)

	req := httptest.NewRequest(http.MethodPost, "/act", nil)
	req.Header.Set("X-CSRF-Token", "deadbeef")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestCSRFTokenStablePerSession(t *testing.T) {
	UseTokenStore(NewMemoryTokenStore())
	r := csrfRouter(1)

	first := fetchToken(t, r)
	second := fetchToken(t, r)
	assert.Equal(t, first, second, "repeated fetches must return the session token")
}

func TestCSRFTokensDifferPerUser(t *testing.T) {
	UseTokenStore(NewMemoryTokenStore())
	r1 := csrfRouter(1)
	r2 := csrfRouter(2)

	assert.NotEqual(t, fetchToken(t, r1), fetchToken(t, r2))
}

func TestCSRFSafeMethodsPass(t *testing.T) {
	UseTokenStore(NewMemoryTokenStore())
	r := gin.New()
	r.Use(fakeAuth(1), CSRFProtect())
	r.GET("/read", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{}) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/read", nil))
	require.Equal(t, http.StatusOK, w.Code)
}
