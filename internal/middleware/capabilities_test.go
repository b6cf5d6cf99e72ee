package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/jhstephenson/callingtrack/internal/constants"
	"github.com/jhstephenson/callingtrack/internal/permissions"
	"github.com/stretchr/testify/require"
)

func TestRequireAuth_RejectsMissingSession(t *testing.T) {
	r := gin.New()
	store := cookie.NewStore([]byte("secret"))
	r.Use(sessions.Sessions(constants.SessionCookieName, store))
	r.GET("/protected", RequireAuth(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireCapability(t *testing.T) {
	guard := RequireCapability(func(caps permissions.Capabilities) bool {
		return caps.CanEditCallings
	})

	r := gin.New()
	r.GET("/allowed", func(c *gin.Context) {
		c.Set(constants.ContextKeyCapabilities, permissions.Capabilities{CanEditCallings: true})
	}, guard, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	r.GET("/denied", func(c *gin.Context) {
		c.Set(constants.ContextKeyCapabilities, permissions.Capabilities{})
	}, guard, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	r.GET("/unresolved", guard, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	for path, expected := range map[string]int{
		"/allowed":    http.StatusOK,
		"/denied":     http.StatusForbidden,
		"/unresolved": http.StatusForbidden,
	} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		require.Equal(t, expected, w.Code, path)
	}
}

func TestGetUserID(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	_, ok := GetUserID(c)
	require.False(t, ok)

	c.Set(constants.ContextKeyUserID, uint64(42))
	id, ok := GetUserID(c)
	require.True(t, ok)
	require.Equal(t, uint64(42), id)
}
