package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/axioniz/axioniz-api/pkg/jwt"
	"github.com/gin-gonic/gin"
)

const (
	// AdminSessionCookieName is the cookie used for admin web sessions.
	AdminSessionCookieName = "admin_session"

	// AdminClaimsContextKey stores the validated admin claims in request context.
	AdminClaimsContextKey = "admin_claims"

	adminRole = "admin"
)

var ErrAdminSessionNotFound = errors.New("admin session not found in context")

// AdminSessionMiddleware accepts the admin_session cookie or an
// "Authorization: Bearer" header and rejects anything else with 401.
func AdminSessionMiddleware(tokenManager *jwt.TokenManager, cookieDomain string, cookieSecure bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, fromCookie := sessionToken(c)
		if token == "" {
			_ = c.Error(fmt.Errorf("missing admin session")) //nolint:errcheck
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Unauthorized"})
			return
		}

		claims, err := tokenManager.ValidateToken(token)
		if err == nil && claims.Role != adminRole {
			err = fmt.Errorf("unexpected role %q", claims.Role)
		}
		if err != nil {
			_ = c.Error(fmt.Errorf("invalid admin session token: %w", err)) //nolint:errcheck
			if fromCookie {
				ClearAdminSessionCookie(c, cookieDomain, cookieSecure)
			}
			message := "Unauthorized"
			if errors.Is(err, jwt.ErrExpiredToken) {
				message = "Session expired"
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": message})
			return
		}

		c.Set(AdminClaimsContextKey, claims)
		c.Next()
	}
}

func sessionToken(c *gin.Context) (string, bool) {
	if cookie, err := c.Cookie(AdminSessionCookieName); err == nil && cookie != "" {
		return cookie, true
	}
	if token, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer "); ok {
		return strings.TrimSpace(token), false
	}
	return "", false
}

func GetAdminClaims(c *gin.Context) (*jwt.AdminClaims, error) {
	val, exists := c.Get(AdminClaimsContextKey)
	if !exists {
		return nil, ErrAdminSessionNotFound
	}
	claims, ok := val.(*jwt.AdminClaims)
	if !ok {
		return nil, ErrAdminSessionNotFound
	}
	return claims, nil
}

func SetAdminSessionCookie(c *gin.Context, token string, ttlSeconds int, domain string, secure bool) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(
		AdminSessionCookieName,
		token,
		ttlSeconds,
		"/",
		domain,
		secure,
		true,
	)
}

func ClearAdminSessionCookie(c *gin.Context, domain string, secure bool) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(
		AdminSessionCookieName,
		"",
		-1,
		"/",
		domain,
		secure,
		true,
	)
}
