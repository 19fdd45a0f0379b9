package http

import (
	"time"

	"github.com/nekogravitycat/case-admin-backend/internal/cases"
	"github.com/nekogravitycat/case-admin-backend/internal/pkg/request"
)

// ListCasesRequest defines query parameters for listing cases.
type ListCasesRequest struct {
	request.ListParams
	UserID string `form:"user_id" binding:"omitempty,uuid"`
}

// CaseResponse is the case detail the console shows on row click.
type CaseResponse struct {
	ID        string    `json:"id"`
	UserID    *string   `json:"user_id"`
	Status    string    `json:"status"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	City      string    `json:"city"`
	Country   string    `json:"country"`
	Notes     string    `json:"notes"`
	CreatedAt time.Time `json:"created_at"`
}

func NewCaseResponse(c *cases.Case) CaseResponse {
	return CaseResponse{
		ID:        c.ID,
		UserID:    c.UserID,
		Status:    string(c.Status),
		Latitude:  c.Latitude,
		Longitude: c.Longitude,
		City:      c.City,
		Country:   c.Country,
		Notes:     c.Notes,
		CreatedAt: c.CreatedAt,
	}
}

// CaseDetailResponse wraps a single case.
type CaseDetailResponse struct {
	Case CaseResponse `json:"case"`
}
