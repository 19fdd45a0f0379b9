package console

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/nekogravitycat/case-admin-backend/internal/logger"
)

var (
	ErrRowNotFound       = errors.New("row not found")
	ErrInvalidTransition = errors.New("invalid row transition")
	ErrNoCase            = errors.New("user has no associated case")
)

// RowState is where a row is in its edit lifecycle.
type RowState int

const (
	Viewing RowState = iota
	Editing
	Committing
	RolledBack
)

func (s RowState) String() string {
	switch s {
	case Viewing:
		return "viewing"
	case Editing:
		return "editing"
	case Committing:
		return "committing"
	case RolledBack:
		return "rolled back"
	default:
		return fmt.Sprintf("RowState(%d)", int(s))
	}
}

// Row is one grid row as last confirmed by the server.
type Row struct {
	User  User
	State RowState

	draft *Draft
}

// GridController owns the rows of the user grid. Mutations are
// confirmed-then-apply: rows change only after the server accepts, and a
// rejected mutation leaves the rows as they were.
type GridController struct {
	backend   Backend
	state     *AppState
	columns   Columns
	notifier  Notifier
	navigator Navigator
	logger    *logger.Logger

	mu      sync.Mutex
	issued  uint64
	applied uint64
	rows    []Row
	page    int
	total   int
}

func NewGridController(backend Backend, state *AppState, columns Columns, notifier Notifier, navigator Navigator, log *logger.Logger) *GridController {
	return &GridController{
		backend:   backend,
		state:     state,
		columns:   columns,
		notifier:  notifier,
		navigator: navigator,
		logger:    log,
	}
}

// Login authenticates the console and records the principal.
func (g *GridController) Login(ctx context.Context, username, password string) error {
	u, err := g.backend.Login(ctx, username, password)
	if err != nil {
		g.notifier.Error(UserMessage(err))
		return err
	}
	g.state.SetPrincipal(u)
	return nil
}

// Rows returns a snapshot of the current rows.
func (g *GridController) Rows() []Row {
	g.mu.Lock()
	defer g.mu.Unlock()

	out := make([]Row, len(g.rows))
	for i, r := range g.rows {
		out[i] = Row{User: r.User, State: r.State}
	}
	return out
}

// Page returns the index of the page on display and the collection total.
func (g *GridController) Page() (page, total int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.page, g.total
}

// Refresh fetches the page for the current query. Responses are applied in
// issue order; one that comes back after a newer response was applied or
// reported as failed is dropped.
func (g *GridController) Refresh(ctx context.Context) error {
	q := g.state.Query()

	g.mu.Lock()
	g.issued++
	seq := g.issued
	g.mu.Unlock()

	page, err := g.backend.FetchPage(ctx, q)

	g.mu.Lock()
	defer g.mu.Unlock()

	if seq < g.applied {
		g.logger.Debug().Uint64("seq", seq).Uint64("applied", g.applied).Msg("discarding stale page")
		return nil
	}
	g.applied = seq
	if err != nil {
		g.notifier.Error(UserMessage(err))
		return err
	}

	g.page = page.Page
	g.total = page.TotalCount
	g.rows = g.mergeRows(page.Data)
	return nil
}

// mergeRows keeps in-progress edits for rows that are still on the page.
func (g *GridController) mergeRows(users []User) []Row {
	rows := make([]Row, len(users))
	for i, u := range users {
		rows[i] = Row{User: u, State: Viewing}
		if old := g.find(u.ID); old != nil && (old.State == Editing || old.State == Committing) {
			rows[i].State = old.State
			rows[i].draft = old.draft
		}
	}
	return rows
}

// SetQuery replaces the grid query and refreshes.
func (g *GridController) SetQuery(ctx context.Context, q Query) error {
	g.state.SetQuery(q)
	return g.Refresh(ctx)
}

// Search filters by term and goes back to the first page.
func (g *GridController) Search(ctx context.Context, term string) error {
	q := g.state.Query()
	q.Search = term
	q.Page = 0
	return g.SetQuery(ctx, q)
}

// SortBy changes the sort and goes back to the first page.
func (g *GridController) SortBy(ctx context.Context, field, direction string) error {
	q := g.state.Query()
	q.SortField = field
	q.SortDirection = direction
	q.Page = 0
	return g.SetQuery(ctx, q)
}

// GoToPage moves to a zero-based page.
func (g *GridController) GoToPage(ctx context.Context, page int) error {
	q := g.state.Query()
	q.Page = page
	return g.SetQuery(ctx, q)
}

func (g *GridController) find(id string) *Row {
	i := slices.IndexFunc(g.rows, func(r Row) bool { return r.User.ID == id })
	if i < 0 {
		return nil
	}
	return &g.rows[i]
}

// BeginEdit opens the row editor.
func (g *GridController) BeginEdit(id string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	row := g.find(id)
	if row == nil {
		return ErrRowNotFound
	}
	if row.State != Viewing && row.State != RolledBack {
		return fmt.Errorf("%w: cannot edit a row that is %s", ErrInvalidTransition, row.State)
	}

	row.State = Editing
	row.draft = &Draft{}
	return nil
}

// SetField writes one value into the row's draft, subject to the column's
// edit policy.
func (g *GridController) SetField(id, field, value string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	row := g.find(id)
	if row == nil {
		return ErrRowNotFound
	}
	if row.State != Editing {
		return fmt.Errorf("%w: row is %s", ErrInvalidTransition, row.State)
	}
	return g.columns.Apply(row.draft, field, value, false)
}

// CancelEdit drops the draft.
func (g *GridController) CancelEdit(id string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	row := g.find(id)
	if row == nil {
		return ErrRowNotFound
	}
	if row.State != Editing {
		return fmt.Errorf("%w: row is %s", ErrInvalidTransition, row.State)
	}
	row.State = Viewing
	row.draft = nil
	return nil
}

// Dismiss acknowledges a rolled back row.
func (g *GridController) Dismiss(id string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	row := g.find(id)
	if row == nil {
		return ErrRowNotFound
	}
	if row.State != RolledBack {
		return fmt.Errorf("%w: row is %s", ErrInvalidTransition, row.State)
	}
	row.State = Viewing
	return nil
}

// CommitEdit sends the row's draft. On success the row takes the server's
// record; on failure it keeps its previous values and is marked RolledBack.
func (g *GridController) CommitEdit(ctx context.Context, id string) error {
	g.mu.Lock()
	row := g.find(id)
	if row == nil {
		g.mu.Unlock()
		return ErrRowNotFound
	}
	if row.State != Editing {
		g.mu.Unlock()
		return fmt.Errorf("%w: row is %s", ErrInvalidTransition, row.State)
	}
	edit := row.draft.Edit()
	if edit.Empty() {
		row.State = Viewing
		row.draft = nil
		g.mu.Unlock()
		return nil
	}
	row.State = Committing
	g.mu.Unlock()

	out, err := g.backend.Edit(ctx, id, edit)

	g.mu.Lock()
	if row = g.find(id); row != nil {
		row.draft = nil
		if err != nil {
			row.State = RolledBack
		} else {
			row.State = Viewing
			row.User = out.User
		}
	}
	g.mu.Unlock()

	if err != nil {
		g.logger.Warn().Err(err).Str("user_id", id).Msg("edit rejected")
		g.notifier.Error(UserMessage(err))
		return err
	}
	g.notifier.Success(out.Message)
	return nil
}

// Create builds a new record from field values and sends it. The grid is
// refreshed after the server confirms so the record lands where the server's
// ordering puts it.
func (g *GridController) Create(ctx context.Context, fields map[string]string) error {
	d := &Draft{}
	for field, value := range fields {
		if err := g.columns.Apply(d, field, value, true); err != nil {
			g.notifier.Error(err.Error())
			return err
		}
	}
	nu, err := d.NewUser()
	if err != nil {
		g.notifier.Error(err.Error())
		return err
	}

	out, err := g.backend.Create(ctx, nu)
	if err != nil {
		g.logger.Warn().Err(err).Str("username", nu.Username).Msg("create rejected")
		g.notifier.Error(UserMessage(err))
		return err
	}
	g.notifier.Success(out.Message)

	return g.Refresh(ctx)
}

// Delete removes a record. The row leaves the grid only once the server has
// confirmed; a row that is not on the current page triggers a refresh instead.
func (g *GridController) Delete(ctx context.Context, id string) error {
	g.mu.Lock()
	row := g.find(id)
	if row != nil {
		if row.State != Viewing && row.State != RolledBack {
			g.mu.Unlock()
			return fmt.Errorf("%w: cannot delete a row that is %s", ErrInvalidTransition, row.State)
		}
		row.State = Committing
	}
	onPage := row != nil
	g.mu.Unlock()

	out, err := g.backend.Delete(ctx, id)

	g.mu.Lock()
	if i := slices.IndexFunc(g.rows, func(r Row) bool { return r.User.ID == id }); i >= 0 {
		if err != nil {
			g.rows[i].State = RolledBack
		} else {
			g.rows = slices.Delete(g.rows, i, i+1)
			g.total--
		}
	}
	g.mu.Unlock()

	if err != nil {
		g.logger.Warn().Err(err).Str("user_id", id).Msg("delete rejected")
		g.notifier.Error(UserMessage(err))
		return err
	}
	g.notifier.Success(out.Message)

	if !onPage {
		return g.Refresh(ctx)
	}
	return nil
}

// SetActive flips the activation flag, then refetches the page.
func (g *GridController) SetActive(ctx context.Context, id string, active bool) error {
	name := id
	g.mu.Lock()
	if row := g.find(id); row != nil {
		name = row.User.Username
	}
	g.mu.Unlock()

	if err := g.backend.SetActive(ctx, id, active); err != nil {
		g.logger.Warn().Err(err).Str("user_id", id).Bool("active", active).Msg("activation rejected")
		g.notifier.Error(UserMessage(err))
		return err
	}

	if active {
		g.notifier.Success(fmt.Sprintf("User %s activated", name))
	} else {
		g.notifier.Success(fmt.Sprintf("User %s deactivated", name))
	}
	return g.Refresh(ctx)
}

// Open handles a click on a row. An active row with a case navigates to the
// case; an inactive row does nothing.
func (g *GridController) Open(ctx context.Context, id string) error {
	g.mu.Lock()
	row := g.find(id)
	var u User
	if row != nil {
		u = row.User
	}
	g.mu.Unlock()

	if row == nil {
		return ErrRowNotFound
	}
	if !u.Active {
		return nil
	}
	if u.CaseID == nil {
		g.notifier.Error(fmt.Sprintf("User %s has no case", u.Username))
		return ErrNoCase
	}

	c, err := g.backend.FindCase(ctx, *u.CaseID)
	if err != nil {
		g.notifier.Error(UserMessage(err))
		return err
	}
	g.navigator.Navigate(ViewApp, c)
	return nil
}
