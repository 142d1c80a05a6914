package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticLoader struct {
	principals map[int64]*Principal
}

func (l *staticLoader) LoadPrincipal(_ context.Context, userID int64) (*Principal, error) {
	p, ok := l.principals[userID]
	if !ok {
		return nil, errors.New("not found")
	}
	return p, nil
}

func gatedRouter(loader PrincipalLoader, userID int64, perms ...string) *gin.Engine {
	r := gin.New()
	handlers := []gin.HandlerFunc{}
	if userID != 0 {
		handlers = append(handlers, fakeAuth(userID))
	}
	handlers = append(handlers, RequirePermissions(loader, perms...), func(c *gin.Context) {
		p, _ := GetPrincipal(c)
		c.JSON(http.StatusOK, gin.H{"username": p.Username})
	})
	r.GET("/gated", handlers...)
	return r
}

func get(r *gin.Engine) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/gated", nil))
	return w
}

func TestGateRequiresSession(t *testing.T) {
	loader := &staticLoader{principals: map[int64]*Principal{}}
	w := get(gatedRouter(loader, 0))
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGateUnknownUser(t *testing.T) {
	loader := &staticLoader{principals: map[int64]*Principal{}}
	w := get(gatedRouter(loader, 7))
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGateBannedUser(t *testing.T) {
	expires := time.Now().Add(time.Hour)
	loader := &staticLoader{principals: map[int64]*Principal{
		7: {UserID: 7, Username: "cheater", IsBanned: true, BanReason: "rmt", BanExpires: &expires},
	}}

	w := get(gatedRouter(loader, 7))
	require.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), `"banned"`)
	assert.Contains(t, w.Body.String(), "rmt")
	assert.Contains(t, w.Body.String(), "ban_expires")
}

func TestGatePermanentBanHasNoExpiry(t *testing.T) {
	loader := &staticLoader{principals: map[int64]*Principal{
		7: {UserID: 7, IsBanned: true, BanReason: "bot"},
	}}

	w := get(gatedRouter(loader, 7))
	require.Equal(t, http.StatusForbidden, w.Code)
	assert.NotContains(t, w.Body.String(), "ban_expires")
}

func TestGateExpiredBanPasses(t *testing.T) {
	expired := time.Now().Add(-time.Hour)
	loader := &staticLoader{principals: map[int64]*Principal{
		7: {UserID: 7, Username: "reformed", IsBanned: true, BanExpires: &expired},
	}}

	w := get(gatedRouter(loader, 7))
	require.Equal(t, http.StatusOK, w.Code)
}

func TestGateMissingPermission(t *testing.T) {
	loader := &staticLoader{principals: map[int64]*Principal{
		7: {UserID: 7, Permissions: []string{"users.read"}},
	}}

	w := get(gatedRouter(loader, 7, "users.moderate"))
	require.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "forbidden")
}

func TestGateAnyPermissionSuffices(t *testing.T) {
	loader := &staticLoader{principals: map[int64]*Principal{
		7: {UserID: 7, Username: "mod", Permissions: []string{"users.moderate"}},
	}}

	w := get(gatedRouter(loader, 7, "users.moderate", "content.manage"))
	require.Equal(t, http.StatusOK, w.Code)
}

func TestGateAdminBypassesPermissions(t *testing.T) {
	loader := &staticLoader{principals: map[int64]*Principal{
		7: {UserID: 7, Username: "root", IsAdmin: true},
	}}

	w := get(gatedRouter(loader, 7, "content.manage"))
	require.Equal(t, http.StatusOK, w.Code)
}

func TestGateEmptyPermissionListOnlyChecksBan(t *testing.T) {
	loader := &staticLoader{principals: map[int64]*Principal{
		7: {UserID: 7, Username: "plain"},
	}}

	w := get(gatedRouter(loader, 7))
	require.Equal(t, http.StatusOK, w.Code)
}
