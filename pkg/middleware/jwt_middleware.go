package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"pka/pkg/utils"
)

const (
	SessionCookieName = "pka_session"
	RefreshCookieName = "pka_refresh"
	AdminCookieName   = "adminToken"
)

// SessionValidator reports whether a server-side session may still back tokens.
type SessionValidator interface {
	ValidateSession(ctx context.Context, sessionID string) (bool, error)
}

// SessionCookie is the JSON payload stored in the pka_session cookie.
type SessionCookie struct {
	SessionID   string `json:"sessionId"`
	AccessToken string `json:"accessToken"`
}

// ExtractToken prefers the Authorization header (API clients) and falls back to
// the session cookie (browsers).
func ExtractToken(c *gin.Context) (string, bool) {
	if token, ok := BearerToken(c.GetHeader("Authorization")); ok {
		return token, true
	}

	raw, err := c.Cookie(SessionCookieName)
	if err != nil || raw == "" {
		return "", false
	}
	var cookie SessionCookie
	if err := json.Unmarshal([]byte(raw), &cookie); err != nil || cookie.AccessToken == "" {
		return "", false
	}
	return cookie.AccessToken, true
}

func BearerToken(header string) (string, bool) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", false
	}
	return token, true
}

func JWTAuthMiddleware(jwtManager *utils.JWTManager, sessions SessionValidator) gin.HandlerFunc {

	return func(c *gin.Context) {
		tokenString, ok := ExtractToken(c)
		if !ok {
			utils.RespondError(c, http.StatusUnauthorized, "No token provided")
			c.Abort()
			return
		}

		claims, err := jwtManager.ValidateTokenOfType(tokenString, utils.TokenTypeAccess)
		if err != nil {
			utils.RespondError(c, http.StatusUnauthorized, "Invalid or expired token")
			c.Abort()
			return
		}

		valid, err := sessions.ValidateSession(c.Request.Context(), claims.SessionID)
		if err != nil {
			utils.HandleServiceError(c, err)
			c.Abort()
			return
		}
		if !valid {
			utils.RespondError(c, http.StatusUnauthorized, "Session expired or invalid")
			c.Abort()
			return
		}

		// Pass user information to the next handler
		c.Set("user_id", claims.UserID)
		c.Set("username", claims.Username)
		c.Set("session_id", claims.SessionID)
		c.Set("Role", claims.Role)
		c.Next()
	}
}

// AdminAuthMiddleware accepts signed admin tokens from the Authorization header
// or the adminToken cookie.
func AdminAuthMiddleware(jwtManager *utils.JWTManager) gin.HandlerFunc {

	return func(c *gin.Context) {
		tokenString, ok := BearerToken(c.GetHeader("Authorization"))
		if !ok {
			tokenString, _ = c.Cookie(AdminCookieName)
		}
		if tokenString == "" {
			utils.RespondError(c, http.StatusUnauthorized, "Unauthorized")
			c.Abort()
			return
		}

		claims, err := jwtManager.ValidateTokenOfType(tokenString, utils.TokenTypeAdmin)
		if err != nil {
			utils.RespondError(c, http.StatusForbidden, "Forbidden")
			c.Abort()
			return
		}

		c.Set("Role", claims.Role)
		c.Next()
	}
}

func RoleMiddleware(requiredRole string) gin.HandlerFunc {

	return func(c *gin.Context) {
		role := c.GetString("Role")

		if role != requiredRole {
			utils.RespondError(c, http.StatusForbidden, "Forbidden: insufficient permissions")
			c.Abort()
			return
		}

		c.Next()
	}
}
