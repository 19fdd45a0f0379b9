package cases

import (
	"context"
	"fmt"
	"net/http"

	"github.com/nekogravitycat/case-admin-backend/internal/pkg/apperror"
)

// MaxPageSize bounds case listings like the user grid.
const MaxPageSize = 100

type Service interface {
	GetByID(ctx context.Context, id string) (*Case, error)
	List(ctx context.Context, filter CaseFilter) ([]*Case, int, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) GetByID(ctx context.Context, id string) (*Case, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context, filter CaseFilter) ([]*Case, int, error) {
	if filter.PageSize < 0 || filter.PageSize > MaxPageSize || filter.PageIndex < 0 {
		return nil, 0, &apperror.AppError{
			Code:    http.StatusBadRequest,
			Message: fmt.Sprintf("invalid case filter: page_size must be within 0..%d and page non-negative", MaxPageSize),
			Err:     ErrInvalidFilter,
		}
	}
	return s.repo.List(ctx, filter)
}
