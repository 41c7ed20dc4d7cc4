package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mem "pka/pkg/memcache"
	"pka/pkg/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubSessions struct {
	valid map[string]bool
	err   error
}

func (s stubSessions) ValidateSession(_ context.Context, sessionID string) (bool, error) {
	return s.valid[sessionID], s.err
}

func accessToken(t *testing.T, jwt *utils.JWTManager, sessionID string) string {
	t.Helper()
	token, err := jwt.CreateToken(utils.Claims{
		UserID:    "6f1c2b1e-3f0a-4c53-9d59-0d8f2f3b9a11",
		Username:  "alice",
		SessionID: sessionID,
		Type:      utils.TokenTypeAccess,
		Role:      utils.RoleUser,
	}, time.Minute)
	require.NoError(t, err)
	return token
}

func protectedRouter(jwt *utils.JWTManager, sessions SessionValidator) *gin.Engine {
	r := gin.New()
	r.GET("/me", JWTAuthMiddleware(jwt, sessions), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"user_id":    c.GetString("user_id"),
			"session_id": c.GetString("session_id"),
			"role":       c.GetString("Role"),
		})
	})
	return r
}

func TestJWTAuthMiddleware(t *testing.T) {
	jwt := utils.NewJWTManager("test-secret")
	sessions := stubSessions{valid: map[string]bool{"sess-1": true}}
	r := protectedRouter(jwt, sessions)

	t.Run("bearer header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer "+accessToken(t, jwt, "sess-1"))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		var body map[string]string
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "sess-1", body["session_id"])
		assert.Equal(t, utils.RoleUser, body["role"])
	})

	t.Run("session cookie", func(t *testing.T) {
		raw, _ := json.Marshal(SessionCookie{SessionID: "sess-1", AccessToken: accessToken(t, jwt, "sess-1")})
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: string(raw)})
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("missing token", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("revoked session", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer "+accessToken(t, jwt, "sess-2"))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("refresh token is not an access token", func(t *testing.T) {
		token, err := jwt.CreateToken(utils.Claims{SessionID: "sess-1", Type: utils.TokenTypeRefresh}, time.Minute)
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("session store failure", func(t *testing.T) {
		broken := protectedRouter(jwt, stubSessions{err: errors.New("db down")})
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer "+accessToken(t, jwt, "sess-1"))
		w := httptest.NewRecorder()
		broken.ServeHTTP(w, req)
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestAdminAuthMiddleware(t *testing.T) {
	jwt := utils.NewJWTManager("test-secret")
	r := gin.New()
	r.GET("/admin", AdminAuthMiddleware(jwt), RoleMiddleware(utils.RoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	adminToken, err := jwt.CreateToken(utils.Claims{Type: utils.TokenTypeAdmin, Role: utils.RoleAdmin}, time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.AddCookie(&http.Cookie{Name: AdminCookieName, Value: adminToken})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+accessToken(t, jwt, "sess-1"))
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRateLimit(t *testing.T) {
	store := mem.NewAttempts()
	r := gin.New()
	r.POST("/login", RateLimit(store, "login", 2, time.Minute), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	hit := func(ip string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.Header.Set("CF-Connecting-IP", ip)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusOK, hit("1.1.1.1").Code)
	assert.Equal(t, http.StatusOK, hit("1.1.1.1").Code)

	w := hit("1.1.1.1")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))

	assert.Equal(t, http.StatusOK, hit("2.2.2.2").Code)
}

type failingStore struct{}

func (failingStore) Hit(context.Context, string, time.Duration) (int, time.Time, error) {
	return 0, time.Time{}, errors.New("redis unavailable")
}

func (failingStore) Reset(context.Context, string) error { return nil }

func TestRateLimitFailsOpen(t *testing.T) {
	r := gin.New()
	r.POST("/login", RateLimit(failingStore{}, "login", 0, time.Minute), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/login", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		want    string
	}{
		{"cloudflare wins", map[string]string{"CF-Connecting-IP": "9.9.9.9", "X-Forwarded-For": "8.8.8.8"}, "9.9.9.9"},
		{"first forwarded hop", map[string]string{"X-Forwarded-For": "8.8.8.8, 10.0.0.1"}, "8.8.8.8"},
		{"real ip", map[string]string{"X-Real-IP": "7.7.7.7"}, "7.7.7.7"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
			for k, v := range tt.headers {
				c.Request.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, ClientIP(c))
		})
	}
}

func TestTraceIDMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(TraceIDMiddleware())
	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString("trace_id"))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, w.Header().Get("X-Trace-ID"))
	assert.Equal(t, w.Header().Get("X-Trace-ID"), w.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Trace-ID", "not-a-uuid")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.NotEqual(t, "not-a-uuid", w.Header().Get("X-Trace-ID"))
}
