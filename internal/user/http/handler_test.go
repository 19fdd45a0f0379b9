package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nekogravitycat/case-admin-backend/internal/auth"
	"github.com/nekogravitycat/case-admin-backend/internal/file"
	filehttp "github.com/nekogravitycat/case-admin-backend/internal/file/http"
	"github.com/nekogravitycat/case-admin-backend/internal/pkg/storage"
	"github.com/nekogravitycat/case-admin-backend/internal/user"
)

type testServer struct {
	router  *gin.Engine
	users   user.Service
	token   string
	adminID string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	users := user.NewService(user.NewMemoryRepository(), auth.NewBcryptPasswordHasherWithCost(4))
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	files := filehttp.NewHandler(file.NewService(file.NewMemoryRepository(), store))
	jwtManager := auth.NewJWTManager("test-secret", time.Hour)

	r := gin.New()
	v1 := r.Group("/v1")
	RegisterRoutes(v1, NewHandler(users, jwtManager, files, Options{MaxUploadBytes: 1 << 20}), auth.AuthRequired(jwtManager, users))

	_, err = users.EnsureUser(context.Background(), "admin", "admin-password")
	require.NoError(t, err)

	s := &testServer{router: r, users: users}
	w := s.do(t, http.MethodPost, "/v1/auth/login", map[string]string{"username": "admin", "password": "admin-password"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var login LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &login))
	s.token = login.AccessToken
	s.adminID = login.User.ID
	return s
}

func (s *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

type pageResponse struct {
	Data       []UserResponse `json:"data"`
	Page       int            `json:"page"`
	TotalCount int            `json:"totalCount"`
}

func createBody(username string) map[string]any {
	return map[string]any{
		"name":      "Jane",
		"surname":   "Doe",
		"username":  username,
		"email":     username + "@example.com",
		"password":  "password123",
		"latitude":  41.39,
		"longitude": 2.17,
		"city":      "Barcelona",
		"country":   "Spain",
	}
}

func TestLogin(t *testing.T) {
	s := newTestServer(t)
	s.token = ""

	w := s.do(t, http.MethodPost, "/v1/auth/login", map[string]string{"username": "ADMIN", "password": "admin-password"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Set-Cookie"), auth.SessionCookieName+"=")
	assert.NotContains(t, w.Body.String(), "password")

	wrongPassword := s.do(t, http.MethodPost, "/v1/auth/login", map[string]string{"username": "admin", "password": "nope-nope"})
	unknownUser := s.do(t, http.MethodPost, "/v1/auth/login", map[string]string{"username": "ghost", "password": "admin-password"})

	assert.Equal(t, http.StatusUnauthorized, wrongPassword.Code)
	assert.Equal(t, http.StatusUnauthorized, unknownUser.Code)
	assert.Equal(t, wrongPassword.Body.String(), unknownUser.Body.String())
	assert.JSONEq(t, `{"message":"invalid credentials"}`, unknownUser.Body.String())

	w = s.do(t, http.MethodPost, "/v1/auth/login", map[string]string{"username": "admin"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLogout(t *testing.T) {
	s := newTestServer(t)
	s.token = ""

	w := s.do(t, http.MethodPost, "/v1/auth/logout", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Contains(t, w.Header().Get("Set-Cookie"), "Max-Age=0")
}

func TestProtectedRoutesRequireSession(t *testing.T) {
	s := newTestServer(t)
	s.token = ""

	for _, route := range []struct{ method, path string }{
		{http.MethodGet, "/v1/users"},
		{http.MethodPost, "/v1/users"},
		{http.MethodDelete, "/v1/users/0b6c8f7e-8a7c-4d8e-9c59-2b0c3f4f6a11"},
		{http.MethodGet, "/v1/me"},
	} {
		w := s.do(t, route.method, route.path, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, route.path)
		assert.JSONEq(t, `{"message":"unauthenticated"}`, w.Body.String())
	}
}

func TestDeletedUserSessionIsRejected(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodDelete, "/v1/users/"+s.adminID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodGet, "/v1/users", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCreateUser(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/v1/users", createBody("jane"))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	resp := decode[MutationResponse](t, w)
	assert.Equal(t, "User Jane Doe created", resp.Message)
	assert.NotEmpty(t, resp.User.ID)
	assert.Equal(t, "Barcelona", resp.User.City)
	assert.NotContains(t, w.Body.String(), "password123")

	w = s.do(t, http.MethodPost, "/v1/users", createBody("JANE"))
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.JSONEq(t, `{"message":"username already exists"}`, w.Body.String())

	missing := createBody("nolat")
	delete(missing, "latitude")
	w = s.do(t, http.MethodPost, "/v1/users", missing)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPasswordOverBcryptLimit(t *testing.T) {
	s := newTestServer(t)
	long := strings.Repeat("p", 80)

	body := createBody("longpw")
	body["password"] = long
	w := s.do(t, http.MethodPost, "/v1/users", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"message":"password is too long"}`, w.Body.String())

	w = s.do(t, http.MethodPatch, "/v1/me", map[string]string{"password": long})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"message":"password is too long"}`, w.Body.String())
}

func TestListUsers(t *testing.T) {
	s := newTestServer(t)
	// The admin is user "admin"; add 25 more.
	for i := 0; i < 25; i++ {
		body := createBody(fmt.Sprintf("user%02d", i))
		body["name"] = fmt.Sprintf("user%02d", i)
		require.Equal(t, http.StatusCreated, s.do(t, http.MethodPost, "/v1/users", body).Code)
	}

	w := s.do(t, http.MethodGet, "/v1/users?page_size=10&page=2&sort_field=name&sort_direction=asc&search=user", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	page := decode[pageResponse](t, w)

	assert.Equal(t, 2, page.Page)
	assert.Equal(t, 25, page.TotalCount)
	require.Len(t, page.Data, 5)
	assert.Equal(t, "user20", page.Data[0].Name)
	assert.Equal(t, "user24", page.Data[4].Name)

	w = s.do(t, http.MethodGet, "/v1/users?page=99", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"data":[],"page":99,"totalCount":26}`, w.Body.String())

	w = s.do(t, http.MethodGet, "/v1/users?page_size=10&page=300000000", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"data":[],"page":300000000,"totalCount":26}`, w.Body.String())

	for _, bad := range []string{"page_size=-1", "page_size=1000", "page=-3", "sort_field=password_hash", "sort_direction=sideways", "page_size=ten"} {
		w = s.do(t, http.MethodGet, "/v1/users?"+bad, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, bad)
	}
}

func TestEditUser(t *testing.T) {
	s := newTestServer(t)
	created := decode[MutationResponse](t, s.do(t, http.MethodPost, "/v1/users", createBody("jane")))
	path := "/v1/users/" + created.User.ID

	w := s.do(t, http.MethodPatch, path, map[string]any{"surname": "Smith"})
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[MutationResponse](t, w)
	assert.Equal(t, "User Jane Smith updated", resp.Message)
	assert.Equal(t, "jane@example.com", resp.User.Email)

	w = s.do(t, http.MethodPatch, path, map[string]any{"username": "admin"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.JSONEq(t, `{"message":"username already taken by another user"}`, w.Body.String())

	w = s.do(t, http.MethodPatch, path, map[string]any{"city": "Madrid"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.JSONEq(t, `{"message":"location fields cannot be changed after creation"}`, w.Body.String())

	w = s.do(t, http.MethodPatch, "/v1/users/0b6c8f7e-8a7c-4d8e-9c59-2b0c3f4f6a11", map[string]any{"name": "x"})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"message":"user not found"}`, w.Body.String())

	w = s.do(t, http.MethodPatch, "/v1/users/not-a-uuid", map[string]any{"name": "x"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeleteAndActivation(t *testing.T) {
	s := newTestServer(t)
	created := decode[MutationResponse](t, s.do(t, http.MethodPost, "/v1/users", createBody("jane")))
	path := "/v1/users/" + created.User.ID

	assert.Equal(t, http.StatusNoContent, s.do(t, http.MethodPost, path+"/activate", nil).Code)
	assert.Equal(t, http.StatusNoContent, s.do(t, http.MethodPost, path+"/activate", nil).Code)
	got := decode[MeResponse](t, s.do(t, http.MethodGet, path, nil))
	assert.True(t, got.User.Active)

	assert.Equal(t, http.StatusNoContent, s.do(t, http.MethodPost, path+"/deactivate", nil).Code)
	got = decode[MeResponse](t, s.do(t, http.MethodGet, path, nil))
	assert.False(t, got.User.Active)

	w := s.do(t, http.MethodDelete, path, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "User Jane Doe deleted", decode[MutationResponse](t, w).Message)

	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodDelete, path, nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodPost, path+"/activate", nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, path, nil).Code)
}

func TestMeAndTheme(t *testing.T) {
	s := newTestServer(t)

	me := decode[MeResponse](t, s.do(t, http.MethodGet, "/v1/me", nil))
	assert.Equal(t, "admin", me.User.Username)

	theme := decode[ThemeResponse](t, s.do(t, http.MethodGet, "/v1/me/theme", nil))
	assert.Equal(t, "light", theme.Theme)

	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodPut, "/v1/me/theme", map[string]string{"theme": "neon"}).Code)
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodPut, "/v1/me/theme", map[string]string{"theme": "dark"}).Code)
	theme = decode[ThemeResponse](t, s.do(t, http.MethodGet, "/v1/me/theme", nil))
	assert.Equal(t, "dark", theme.Theme)

	w := s.do(t, http.MethodPatch, "/v1/me", map[string]string{"email": "root@example.com"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "root@example.com", decode[MutationResponse](t, w).User.Email)
}

func TestUploadMyImage(t *testing.T) {
	s := newTestServer(t)

	img := new(bytes.Buffer)
	require.NoError(t, png.Encode(img, image.NewGray(image.Rect(0, 0, 30, 30))))
	body := new(bytes.Buffer)
	mw := multipart.NewWriter(body)
	fw, err := mw.CreateFormFile("image", "me.png")
	require.NoError(t, err)
	_, err = fw.Write(img.Bytes())
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/v1/me/image", body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+s.token)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	uploaded := decode[filehttp.FileUploadResponse](t, w)

	me := decode[MeResponse](t, s.do(t, http.MethodGet, "/v1/me", nil))
	require.NotNil(t, me.User.Image)
	assert.Equal(t, uploaded.URL, *me.User.Image)
}
