package user

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/nekogravitycat/case-admin-backend/internal/pkg/apperror"
)

// Credential failures. Both collapse to one message at the HTTP boundary.
var (
	ErrInvalidUsername = errors.New("invalid username")
	ErrInvalidPassword = errors.New("invalid password")
)

var (
	ErrNotFound          = apperror.New(http.StatusNotFound, "user not found")
	ErrDuplicateUsername = apperror.New(http.StatusConflict, "username already exists")
	ErrUsernameConflict  = apperror.New(http.StatusConflict, "username already taken by another user")
	ErrImmutableField    = apperror.New(http.StatusConflict, "location fields cannot be changed after creation")
	ErrInvalidQuery      = apperror.New(http.StatusBadRequest, "invalid query")
	ErrInvalidLocation   = apperror.New(http.StatusBadRequest, "invalid location coordinates")
	ErrInvalidTheme      = apperror.New(http.StatusBadRequest, "invalid theme")
	ErrUsernameRequired  = apperror.New(http.StatusBadRequest, "username is required")
	ErrPasswordTooShort  = apperror.New(http.StatusBadRequest, "password is too short")
	ErrPasswordTooLong   = apperror.New(http.StatusBadRequest, "password is too long")
	ErrPersistence       = apperror.New(http.StatusInternalServerError, "failed to persist user")
)

// Theme is the UI theme preference stored with a user.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// Valid reports whether t is a known theme.
func (t Theme) Valid() bool {
	return t == ThemeLight || t == ThemeDark
}

// Location is where a user was registered. Set at creation, never edited.
type Location struct {
	Latitude  float64
	Longitude float64
	City      string
	Country   string
}

// User represents a user record managed by the console.
type User struct {
	ID           string // UUID
	Name         string
	Surname      string
	Username     string // always lowercase
	Email        string
	PasswordHash string
	Location     Location
	Image        *string // profile image reference
	Active       bool
	CaseID       *string
	CreatedAt    time.Time
	Theme        Theme
}

// DisplayName returns "Name Surname", falling back to the username.
func (u *User) DisplayName() string {
	full := strings.TrimSpace(u.Name + " " + u.Surname)
	if full == "" {
		return u.Username
	}
	return full
}

// Clone returns a deep copy so stores never hand out shared pointers.
func (u *User) Clone() *User {
	c := *u
	if u.Image != nil {
		img := *u.Image
		c.Image = &img
	}
	if u.CaseID != nil {
		id := *u.CaseID
		c.CaseID = &id
	}
	return &c
}

// normalizeUsername trims spaces and lowercases the username.
func normalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

func validateLocation(loc Location) error {
	// Latitude: -90 to 90, Longitude: -180 to 180
	if loc.Latitude < -90 || loc.Latitude > 90 || loc.Longitude < -180 || loc.Longitude > 180 {
		return ErrInvalidLocation
	}
	return nil
}
