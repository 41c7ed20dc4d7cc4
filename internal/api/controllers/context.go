package controllers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"pka/internal/services"
	"pka/pkg/middleware"
)

// CookieConfig controls the auth cookies set by the auth and admin controllers.
type CookieConfig struct {
	Secure     bool
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	AdminTTL   time.Duration
}

func currentUserID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.GetString("user_id"))
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

func clientMeta(c *gin.Context) services.ClientMeta {
	return services.ClientMeta{
		IP:        middleware.ClientIP(c),
		UserAgent: c.Request.UserAgent(),
	}
}

func (cfg CookieConfig) set(c *gin.Context, name, value string, ttl time.Duration) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(name, value, int(ttl.Seconds()), "/", "", cfg.Secure, true)
}

func (cfg CookieConfig) clear(c *gin.Context, name string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(name, "", -1, "/", "", cfg.Secure, true)
}

func (cfg CookieConfig) setSession(c *gin.Context, sessionID, accessToken, refreshToken string) {
	raw, _ := json.Marshal(middleware.SessionCookie{SessionID: sessionID, AccessToken: accessToken})
	cfg.set(c, middleware.SessionCookieName, string(raw), cfg.AccessTTL)
	if refreshToken != "" {
		cfg.set(c, middleware.RefreshCookieName, refreshToken, cfg.RefreshTTL)
	}
}
