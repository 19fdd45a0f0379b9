package cases

import (
	"net/http"
	"time"

	"github.com/nekogravitycat/case-admin-backend/internal/pkg/apperror"
)

var (
	ErrNotFound      = apperror.New(http.StatusNotFound, "case not found")
	ErrInvalidFilter = apperror.New(http.StatusBadRequest, "invalid case filter")
)

// Status is the tracking state of a case.
type Status string

const (
	StatusOpen       Status = "open"
	StatusMonitoring Status = "monitoring"
	StatusClosed     Status = "closed"
)

// Case is a tracked case owned by the external case-tracking application.
// The console only reads it, to show where a user's case stands.
type Case struct {
	ID        string
	UserID    *string // nil once the owning user is gone
	Status    Status
	Latitude  float64
	Longitude float64
	City      string
	Country   string
	Notes     string
	CreatedAt time.Time
}

// CaseFilter defines parameters for listing cases.
type CaseFilter struct {
	UserID    string
	PageSize  int
	PageIndex int // zero-based
}
