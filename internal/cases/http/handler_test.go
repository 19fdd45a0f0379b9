package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nekogravitycat/case-admin-backend/internal/cases"
)

func newRouter(t *testing.T) (*gin.Engine, cases.Repository) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	repo := cases.NewMemoryRepository()
	r := gin.New()
	RegisterRoutes(r.Group("/v1"), NewHandler(cases.NewService(repo)), func(c *gin.Context) { c.Next() })
	return r, repo
}

func get(r *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestCaseHandler_Get(t *testing.T) {
	r, repo := newRouter(t)
	owner := "6f1d2c3b-4a5e-4f60-8a7b-9c0d1e2f3a4b"
	c := &cases.Case{UserID: &owner, Status: cases.StatusMonitoring, City: "Porto", Country: "Portugal"}
	require.NoError(t, repo.Create(context.Background(), c))

	w := get(r, "/v1/cases/"+c.ID)
	require.Equal(t, http.StatusOK, w.Code)

	var resp CaseDetailResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "monitoring", resp.Case.Status)
	assert.Equal(t, owner, *resp.Case.UserID)

	w = get(r, "/v1/cases/0b6c8f7e-8a7c-4d8e-9c59-2b0c3f4f6a11")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"message":"case not found"}`, w.Body.String())
}

func TestCaseHandler_List(t *testing.T) {
	r, repo := newRouter(t)
	owner := "6f1d2c3b-4a5e-4f60-8a7b-9c0d1e2f3a4b"
	for i := 0; i < 3; i++ {
		require.NoError(t, repo.Create(context.Background(), &cases.Case{UserID: &owner, Status: cases.StatusOpen}))
	}

	w := get(r, "/v1/cases?user_id="+owner+"&page_size=2")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data       []CaseResponse `json:"data"`
		TotalCount int            `json:"totalCount"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Data, 2)
	assert.Equal(t, 3, resp.TotalCount)

	assert.Equal(t, http.StatusBadRequest, get(r, "/v1/cases?user_id=nope").Code)
	assert.Equal(t, http.StatusBadRequest, get(r, "/v1/cases?page_size=500").Code)
}
