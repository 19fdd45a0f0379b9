package auth

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

type stubResolver struct {
	known map[string]Principal
}

func (s stubResolver) ResolvePrincipal(_ context.Context, id string) (Principal, error) {
	if p, ok := s.known[id]; ok {
		return p, nil
	}
	return Principal{}, errors.New("gone")
}

func newGuardedRouter(m *JWTManager, r PrincipalResolver) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/protected", AuthRequired(m, r), func(c *gin.Context) {
		p, ok := GetPrincipal(c)
		ctxP, ctxOK := PrincipalFromContext(c.Request.Context())
		if !ok || !ctxOK || p != ctxP {
			c.Status(http.StatusTeapot)
			return
		}
		c.String(http.StatusOK, p.Username)
	})
	return router
}

func TestAuthRequired(t *testing.T) {
	m := NewJWTManager("secret", time.Minute)
	alice := Principal{ID: "u-1", Username: "alice"}
	resolver := stubResolver{known: map[string]Principal{"u-1": alice}}
	router := newGuardedRouter(m, resolver)

	valid, err := m.GenerateAccessToken(alice)
	require.NoError(t, err)
	ghost, err := m.GenerateAccessToken(Principal{ID: "u-2", Username: "ghost"})
	require.NoError(t, err)
	expiredManager := NewJWTManager("secret", time.Minute)
	expiredManager.now = func() time.Time { return time.Now().Add(-time.Hour) }
	expired, err := expiredManager.GenerateAccessToken(alice)
	require.NoError(t, err)

	tests := []struct {
		name     string
		prepare  func(r *http.Request)
		wantCode int
	}{
		{"bearer header", func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+valid) }, http.StatusOK},
		{"session cookie", func(r *http.Request) { r.AddCookie(&http.Cookie{Name: SessionCookieName, Value: valid}) }, http.StatusOK},
		{"no credential", func(r *http.Request) {}, http.StatusUnauthorized},
		{"malformed header", func(r *http.Request) { r.Header.Set("Authorization", "Token "+valid) }, http.StatusUnauthorized},
		{"garbage token", func(r *http.Request) { r.Header.Set("Authorization", "Bearer nope") }, http.StatusUnauthorized},
		{"expired token", func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+expired) }, http.StatusUnauthorized},
		{"deleted principal", func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+ghost) }, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			tt.prepare(req)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantCode, w.Code)
			if tt.wantCode == http.StatusUnauthorized {
				assert.JSONEq(t, `{"message":"unauthenticated"}`, w.Body.String())
			} else {
				assert.Equal(t, "alice", w.Body.String())
			}
		})
	}
}

func TestAuthRequired_NilResolverTrustsClaims(t *testing.T) {
	m := NewJWTManager("secret", time.Minute)
	router := newGuardedRouter(m, nil)

	token, err := m.GenerateAccessToken(Principal{ID: "u-9", Username: "zed"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "zed", w.Body.String())
}

func TestSessionCookieHelpers(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	SetSessionCookie(c, "tok", time.Minute, true)
	ClearSessionCookie(c, true)

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 2)
	assert.Equal(t, "tok", cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)
	assert.True(t, cookies[0].Secure)
	assert.Equal(t, "", cookies[1].Value)
	assert.True(t, cookies[1].MaxAge < 0)
}
