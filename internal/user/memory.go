package user

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// memoryRepository keeps users in process memory. It backs STORE_DRIVER=memory
// and the package tests. A single mutex makes every read-modify-write atomic.
type memoryRepository struct {
	mu         sync.RWMutex
	byID       map[string]*User
	byUsername map[string]string // username -> id
	now        func() time.Time
}

// NewMemoryRepository creates an empty in-memory Repository.
func NewMemoryRepository() Repository {
	return &memoryRepository{
		byID:       make(map[string]*User),
		byUsername: make(map[string]string),
		now:        time.Now,
	}
}

func (r *memoryRepository) GetByID(_ context.Context, id string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return u.Clone(), nil
}

func (r *memoryRepository) GetByUsername(_ context.Context, username string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byUsername[normalizeUsername(username)]
	if !ok {
		return nil, ErrNotFound
	}
	return r.byID[id].Clone(), nil
}

func (r *memoryRepository) List(_ context.Context, q GridQuery) ([]*User, int, error) {
	r.mu.RLock()
	matches := make([]*User, 0, len(r.byID))
	for _, u := range r.byID {
		if q.Matches(u) {
			matches = append(matches, u.Clone())
		}
	}
	r.mu.RUnlock()

	slices.SortFunc(matches, q.Compare)

	total := len(matches)
	start := q.Offset()
	if q.PageSize == 0 || start >= total {
		return nil, total, nil
	}
	end := min(start+q.PageSize, total)

	return matches[start:end], total, nil
}

func (r *memoryRepository) Create(_ context.Context, u *User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.byUsername[u.Username]; taken {
		return ErrDuplicateUsername
	}

	u.ID = uuid.NewString()
	u.CreatedAt = r.now().UTC()

	r.byID[u.ID] = u.Clone()
	r.byUsername[u.Username] = u.ID
	return nil
}

func (r *memoryRepository) Update(_ context.Context, id string, fn func(u *User) error) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.byID[id]
	if !ok {
		return nil, ErrNotFound
	}

	next := current.Clone()
	if err := fn(next); err != nil {
		return nil, err
	}

	if next.Username != current.Username {
		if owner, taken := r.byUsername[next.Username]; taken && owner != id {
			return nil, ErrUsernameConflict
		}
		delete(r.byUsername, current.Username)
		r.byUsername[next.Username] = id
	}

	// Location, active flag and case are not writable through Update.
	next.Location = current.Location
	next.Active = current.Active
	next.CaseID = current.CaseID
	next.ID = current.ID
	next.CreatedAt = current.CreatedAt

	r.byID[id] = next
	return next.Clone(), nil
}

func (r *memoryRepository) SetActive(_ context.Context, id string, active bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[id]
	if !ok {
		return ErrNotFound
	}
	u.Active = active
	return nil
}

func (r *memoryRepository) Delete(_ context.Context, id string) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	delete(r.byID, id)
	delete(r.byUsername, u.Username)
	return u, nil
}

func (r *memoryRepository) Ping(context.Context) error {
	return nil
}
