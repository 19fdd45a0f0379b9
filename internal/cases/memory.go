package cases

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

type memoryRepository struct {
	mu    sync.RWMutex
	cases map[string]Case
	now   func() time.Time
}

// NewMemoryRepository creates an in-process Repository.
func NewMemoryRepository() Repository {
	return &memoryRepository{cases: make(map[string]Case), now: time.Now}
}

func (r *memoryRepository) Create(_ context.Context, c *Case) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c.ID = uuid.NewString()
	c.CreatedAt = r.now().UTC()
	r.cases[c.ID] = *c
	return nil
}

func (r *memoryRepository) GetByID(_ context.Context, id string) (*Case, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.cases[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &c, nil
}

func (r *memoryRepository) List(_ context.Context, filter CaseFilter) ([]*Case, int, error) {
	r.mu.RLock()
	var matches []*Case
	for _, c := range r.cases {
		if filter.UserID == "" || (c.UserID != nil && *c.UserID == filter.UserID) {
			matches = append(matches, &c)
		}
	}
	r.mu.RUnlock()

	slices.SortFunc(matches, func(a, b *Case) int {
		if n := b.CreatedAt.Compare(a.CreatedAt); n != 0 {
			return n
		}
		if a.ID < b.ID {
			return -1
		}
		if a.ID > b.ID {
			return 1
		}
		return 0
	})

	total := len(matches)
	start := filter.PageSize * filter.PageIndex
	if filter.PageSize == 0 || start >= total {
		return nil, total, nil
	}
	return matches[start:min(start+filter.PageSize, total)], total, nil
}
