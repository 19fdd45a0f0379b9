package auth

import (
	"context"

	"github.com/gin-gonic/gin"
)

const principalKey = "principal"

type principalCtxKey struct{}

// Principal is the authenticated identity attached to a request.
type Principal struct {
	ID       string
	Username string
}

// WithPrincipal returns a copy of ctx carrying p.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalCtxKey{}, p)
}

// PrincipalFromContext returns the principal stored by the session guard.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalCtxKey{}).(Principal)
	return p, ok
}

// GetPrincipal returns the authenticated principal from the gin context.
func GetPrincipal(c *gin.Context) (Principal, bool) {
	if v, ok := c.Get(principalKey); ok {
		if p, ok := v.(Principal); ok {
			return p, true
		}
	}
	return Principal{}, false
}

// GetUserID returns the authenticated user's ID or empty string.
func GetUserID(c *gin.Context) string {
	p, _ := GetPrincipal(c)
	return p.ID
}
