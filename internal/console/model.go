// Package console is the client side of the admin console: a resty transport
// for the /v1 API, a declarative column table and the grid controller that
// drives paging, row edits and activation from it.
package console

import "time"

// User mirrors the server's user representation.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Surname   string    `json:"surname"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	City      string    `json:"city"`
	Country   string    `json:"country"`
	Image     *string   `json:"image"`
	Active    bool      `json:"active"`
	CaseID    *string   `json:"case_id"`
	CreatedAt time.Time `json:"created_at"`
	Theme     string    `json:"theme"`
}

// Case is the case detail handed to the "app" view on row click.
type Case struct {
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

// Query is the grid's requested slice of the user collection.
type Query struct {
	PageSize      int
	Page          int // zero-based
	Search        string
	SortField     string
	SortDirection string
}

// Page is one page envelope as returned by GET /v1/users.
type Page struct {
	Data       []User `json:"data"`
	Page       int    `json:"page"`
	TotalCount int    `json:"totalCount"`
}

// NewUser is the create payload.
type NewUser struct {
	Name      string   `json:"name"`
	Surname   string   `json:"surname,omitempty"`
	Username  string   `json:"username"`
	Email     string   `json:"email,omitempty"`
	Password  string   `json:"password"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	City      string   `json:"city,omitempty"`
	Country   string   `json:"country,omitempty"`
	Active    bool     `json:"active"`
	CaseID    *string  `json:"case_id,omitempty"`
}

// UserEdit is the partial edit payload. Nil fields are not sent.
type UserEdit struct {
	Name     *string `json:"name,omitempty"`
	Surname  *string `json:"surname,omitempty"`
	Username *string `json:"username,omitempty"`
	Email    *string `json:"email,omitempty"`
	Password *string `json:"password,omitempty"`
}

// Empty reports whether the edit changes nothing.
func (e UserEdit) Empty() bool {
	return e.Name == nil && e.Surname == nil && e.Username == nil && e.Email == nil && e.Password == nil
}

// Outcome is a confirmed mutation: the record as the server has it and the
// message to surface.
type Outcome struct {
	User    User   `json:"user"`
	Message string `json:"message"`
}
