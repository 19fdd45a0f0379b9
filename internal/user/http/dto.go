package http

import (
	"time"

	"github.com/nekogravitycat/case-admin-backend/internal/pkg/request"
	"github.com/nekogravitycat/case-admin-backend/internal/user"
)

// ListUsersRequest defines query parameters for the user grid.
type ListUsersRequest struct {
	request.ListParams
	Search        string `form:"search"`
	SortField     string `form:"sort_field"`
	SortDirection string `form:"sort_direction"`
}

// GridQuery converts the request into a user.GridQuery. Validation happens in
// the service so every caller gets the same rules.
func (r *ListUsersRequest) GridQuery() user.GridQuery {
	pageSize, page := r.Values(user.DefaultPageSize)
	return user.GridQuery{
		PageSize:      pageSize,
		PageIndex:     page,
		Search:        r.Search,
		SortField:     user.SortField(r.SortField),
		SortDirection: user.SortDirection(r.SortDirection),
	}
}

// UserResponse is the shape of user data returned in API responses.
// The password hash never leaves the server.
type UserResponse struct {
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

// NewUserResponse converts domain user.User to UserResponse used by the API.
func NewUserResponse(u *user.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Surname:   u.Surname,
		Username:  u.Username,
		Email:     u.Email,
		Latitude:  u.Location.Latitude,
		Longitude: u.Location.Longitude,
		City:      u.Location.City,
		Country:   u.Location.Country,
		Image:     u.Image,
		Active:    u.Active,
		CaseID:    u.CaseID,
		CreatedAt: u.CreatedAt,
		Theme:     string(u.Theme),
	}
}

func newUserResponses(users []*user.User) []UserResponse {
	items := make([]UserResponse, len(users))
	for i, u := range users {
		items[i] = NewUserResponse(u)
	}
	return items
}

// LoginRequest defines the payload for user login.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse returns the token and user info.
type LoginResponse struct {
	AccessToken string       `json:"access_token"`
	User        UserResponse `json:"user"`
}

// CreateUserRequest defines the payload for POST /users.
type CreateUserRequest struct {
	Name      string   `json:"name" binding:"required"`
	Surname   string   `json:"surname"`
	Username  string   `json:"username" binding:"required"`
	Email     string   `json:"email" binding:"omitempty,email"`
	Password  string   `json:"password" binding:"required"`
	Latitude  *float64 `json:"latitude" binding:"required,gte=-90,lte=90"`
	Longitude *float64 `json:"longitude" binding:"required,gte=-180,lte=180"`
	City      string   `json:"city"`
	Country   string   `json:"country"`
	Image     *string  `json:"image"`
	Active    bool     `json:"active"`
	CaseID    *string  `json:"case_id" binding:"omitempty,uuid"`
}

func (r *CreateUserRequest) toServiceRequest() user.CreateUserRequest {
	return user.CreateUserRequest{
		Name:     r.Name,
		Surname:  r.Surname,
		Username: r.Username,
		Email:    r.Email,
		Password: r.Password,
		Location: user.Location{
			Latitude:  *r.Latitude,
			Longitude: *r.Longitude,
			City:      r.City,
			Country:   r.Country,
		},
		Image:  r.Image,
		Active: r.Active,
		CaseID: r.CaseID,
	}
}

// UpdateUserRequest defines fields accepted by PATCH /users/:id and PATCH /me.
// Use pointers to distinguish between "field not sent" and "field sent as empty".
// Location fields are accepted only to be compared with the stored values.
type UpdateUserRequest struct {
	Name      *string  `json:"name"`
	Surname   *string  `json:"surname"`
	Email     *string  `json:"email" binding:"omitempty,email"`
	Username  *string  `json:"username"`
	Password  *string  `json:"password"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	City      *string  `json:"city"`
	Country   *string  `json:"country"`
}

func (r *UpdateUserRequest) toServiceRequest() user.EditUserRequest {
	return user.EditUserRequest{
		Name:      r.Name,
		Surname:   r.Surname,
		Email:     r.Email,
		Username:  r.Username,
		Password:  r.Password,
		Latitude:  r.Latitude,
		Longitude: r.Longitude,
		City:      r.City,
		Country:   r.Country,
	}
}

// MeResponse wraps a single user.
type MeResponse struct {
	User UserResponse `json:"user"`
}

// MutationResponse is returned by create, edit and delete.
type MutationResponse struct {
	User    UserResponse `json:"user"`
	Message string       `json:"message"`
}

// ThemeRequest defines the payload for PUT /me/theme.
type ThemeRequest struct {
	Theme string `json:"theme" binding:"required,oneof=light dark"`
}

// ThemeResponse returns the caller's theme.
type ThemeResponse struct {
	Theme string `json:"theme"`
}
