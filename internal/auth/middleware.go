package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nekogravitycat/case-admin-backend/internal/logger"
	"github.com/nekogravitycat/case-admin-backend/internal/pkg/response"
)

// SessionCookieName is the cookie carrying the access token for browser clients.
const SessionCookieName = "access_token"

// UnauthenticatedMessage is the only body a rejected request ever gets.
const UnauthenticatedMessage = "unauthenticated"

var errNoCredential = errors.New("no credential presented")

// PrincipalResolver confirms that the identity named by a token still exists.
type PrincipalResolver interface {
	ResolvePrincipal(ctx context.Context, id string) (Principal, error)
}

// AuthRequired is the session guard. It accepts a JWT from
// "Authorization: Bearer <token>" or the session cookie, resolves the
// principal and stores it in both the gin context and the request context.
// Every failure produces the same 401 body.
func AuthRequired(jwtManager *JWTManager, resolver PrincipalResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		p, err := authenticate(ctx, c.Request, jwtManager, resolver)
		if err != nil {
			logger.FromContext(ctx).Debug().Err(err).Msg("session rejected")
			response.Abort(c, http.StatusUnauthorized, UnauthenticatedMessage)
			return
		}

		c.Set(principalKey, p)
		c.Request = c.Request.WithContext(WithPrincipal(ctx, p))

		c.Next()
	}
}

func authenticate(ctx context.Context, r *http.Request, jwtManager *JWTManager, resolver PrincipalResolver) (Principal, error) {
	tokenStr, err := extractToken(r)
	if err != nil {
		return Principal{}, err
	}

	claims, err := jwtManager.ParseAndValidate(tokenStr)
	if err != nil {
		return Principal{}, err
	}

	if resolver == nil {
		return claims.Principal(), nil
	}
	return resolver.ResolvePrincipal(ctx, claims.Subject)
}

func extractToken(r *http.Request) (string, error) {
	if header := r.Header.Get("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" || strings.TrimSpace(parts[1]) == "" {
			return "", errors.New("invalid Authorization header format")
		}
		return strings.TrimSpace(parts[1]), nil
	}

	if cookie, err := r.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
		return cookie.Value, nil
	}

	return "", errNoCredential
}

// SetSessionCookie stores the access token in an HttpOnly cookie.
func SetSessionCookie(c *gin.Context, token string, ttl time.Duration, secure bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookieName, token, int(ttl.Seconds()), "/", "", secure, true)
}

// ClearSessionCookie expires the session cookie.
func ClearSessionCookie(c *gin.Context, secure bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookieName, "", -1, "/", "", secure, true)
}
