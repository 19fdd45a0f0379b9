package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nekogravitycat/case-admin-backend/internal/cases"
	"github.com/nekogravitycat/case-admin-backend/internal/pkg/request"
	"github.com/nekogravitycat/case-admin-backend/internal/pkg/response"
)

const defaultPageSize = 20

type CaseHandler struct {
	service cases.Service
}

func NewHandler(service cases.Service) *CaseHandler {
	return &CaseHandler{service: service}
}

// Get returns one case by ID.
func (h *CaseHandler) Get(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.Message(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}

	found, err := h.service.GetByID(c.Request.Context(), uri.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, CaseDetailResponse{Case: NewCaseResponse(found)})
}

// List returns a page of cases, optionally limited to one user.
func (h *CaseHandler) List(c *gin.Context) {
	var req ListCasesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.Message(c, http.StatusBadRequest, "invalid query: "+err.Error())
		return
	}

	pageSize, page := req.Values(defaultPageSize)
	found, total, err := h.service.List(c.Request.Context(), cases.CaseFilter{
		UserID:    req.UserID,
		PageSize:  pageSize,
		PageIndex: page,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]CaseResponse, len(found))
	for i, cs := range found {
		items[i] = NewCaseResponse(cs)
	}

	c.JSON(http.StatusOK, response.NewPageEnvelope(items, page, total))
}
