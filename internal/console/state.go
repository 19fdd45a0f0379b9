package console

import "sync"

const (
	ViewUsers = "users"
	ViewApp   = "app"
)

// AppState is the console's application state: who is logged in, the grid
// query in effect and the view currently shown. It is shared by the grid
// controller and the navigation glue.
type AppState struct {
	mu sync.RWMutex

	principal *User
	query     Query
	view      string
	payload   any
}

func NewAppState(q Query) *AppState {
	return &AppState{query: q, view: ViewUsers}
}

func (s *AppState) Principal() (User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.principal == nil {
		return User{}, false
	}
	return *s.principal, true
}

func (s *AppState) SetPrincipal(u User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.principal = &u
}

func (s *AppState) Query() Query {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.query
}

func (s *AppState) SetQuery(q Query) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.query = q
}

// View returns the current view and the payload it was opened with.
func (s *AppState) View() (string, any) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.view, s.payload
}

func (s *AppState) SetView(view string, payload any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view = view
	s.payload = payload
}
