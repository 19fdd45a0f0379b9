package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/nekogravitycat/case-admin-backend/internal/auth"
	"github.com/nekogravitycat/case-admin-backend/internal/logger"
)

// CreateUserRequest carries the fields of a new user record.
type CreateUserRequest struct {
	Name     string
	Surname  string
	Username string
	Email    string
	Password string
	Location Location
	Image    *string
	Active   bool
	CaseID   *string
}

// EditUserRequest carries a partial profile update. Nil means "not sent".
// The location fields exist only so a client that sends them can be told
// they are immutable.
type EditUserRequest struct {
	Name     *string
	Surname  *string
	Email    *string
	Username *string
	Password *string

	Latitude  *float64
	Longitude *float64
	City      *string
	Country   *string
}

// Service defines business logic related to users.
type Service interface {
	// Login verifies a username/password pair. It fails with
	// ErrInvalidUsername or ErrInvalidPassword and never writes.
	Login(ctx context.Context, username, password string) (*User, error)
	ResolvePrincipal(ctx context.Context, id string) (auth.Principal, error)
	GetByID(ctx context.Context, id string) (*User, error)
	List(ctx context.Context, q GridQuery) (*Page, error)
	Create(ctx context.Context, req CreateUserRequest) (*User, error)
	Edit(ctx context.Context, id string, req EditUserRequest) (*User, error)
	Delete(ctx context.Context, id string) (*User, error)
	// SetActive is idempotent: setting the current state again succeeds.
	SetActive(ctx context.Context, id string, active bool) error
	SetTheme(ctx context.Context, id string, theme Theme) error
	SetImage(ctx context.Context, id string, image string) error
	// EnsureUser creates an active user with the given credentials unless the
	// username already exists. It reports whether a user was created.
	EnsureUser(ctx context.Context, username, password string) (bool, error)
	Ping(ctx context.Context) error
}

type service struct {
	repo   Repository
	hasher auth.PasswordHasher

	minPasswordLength int
}

// NewService creates a new user Service.
func NewService(repo Repository, hasher auth.PasswordHasher) Service {
	return &service{
		repo:              repo,
		hasher:            hasher,
		minPasswordLength: 8,
	}
}

// bcrypt refuses to hash anything longer.
const maxPasswordBytes = 72

func (s *service) checkPassword(pw string) error {
	switch {
	case len(pw) < s.minPasswordLength:
		return ErrPasswordTooShort
	case len(pw) > maxPasswordBytes:
		return ErrPasswordTooLong
	}
	return nil
}

func (s *service) Login(ctx context.Context, username, password string) (*User, error) {
	u, err := s.repo.GetByUsername(ctx, normalizeUsername(username))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			// Spend the same hashing work as a real comparison.
			s.hasher.CompareDummy(password)
			return nil, ErrInvalidUsername
		}
		return nil, fmt.Errorf("failed to fetch user by username: %w", err)
	}

	if err := s.hasher.Compare(u.PasswordHash, password); err != nil {
		if !errors.Is(err, auth.ErrPasswordMismatch) {
			logger.FromContext(ctx).Warn().Err(err).Str("user_id", u.ID).Msg("stored password hash is unreadable")
		}
		return nil, ErrInvalidPassword
	}

	return u, nil
}

func (s *service) ResolvePrincipal(ctx context.Context, id string) (auth.Principal, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return auth.Principal{}, err
	}
	return auth.Principal{ID: u.ID, Username: u.Username}, nil
}

func (s *service) GetByID(ctx context.Context, id string) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context, q GridQuery) (*Page, error) {
	q, err := q.Normalize()
	if err != nil {
		return nil, err
	}

	users, total, err := s.repo.List(ctx, q)
	if err != nil {
		return nil, err
	}

	return &Page{Users: users, PageIndex: q.PageIndex, TotalCount: total}, nil
}

func (s *service) Create(ctx context.Context, req CreateUserRequest) (*User, error) {
	username := normalizeUsername(req.Username)
	if username == "" {
		return nil, ErrUsernameRequired
	}

	if err := s.checkPassword(req.Password); err != nil {
		return nil, err
	}

	if err := validateLocation(req.Location); err != nil {
		return nil, err
	}

	// Check if username is already used.
	_, err := s.repo.GetByUsername(ctx, username)
	if err == nil {
		return nil, ErrDuplicateUsername
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("failed to check existing username: %w", err)
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	u := &User{
		Name:         strings.TrimSpace(req.Name),
		Surname:      strings.TrimSpace(req.Surname),
		Username:     username,
		Email:        strings.TrimSpace(req.Email),
		PasswordHash: hash,
		Location: Location{
			Latitude:  req.Location.Latitude,
			Longitude: req.Location.Longitude,
			City:      strings.TrimSpace(req.Location.City),
			Country:   strings.TrimSpace(req.Location.Country),
		},
		Image:  req.Image,
		Active: req.Active,
		CaseID: req.CaseID,
		Theme:  ThemeLight,
	}

	// A concurrent create can still win the race; the store reports it as
	// ErrDuplicateUsername.
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Info().Str("user_id", u.ID).Str("username", u.Username).Msg("user created")
	return u, nil
}

// checkImmutable rejects edits that try to change the creation-time location.
// Re-sending the stored value is accepted.
func checkImmutable(loc Location, req EditUserRequest) error {
	switch {
	case req.City != nil && strings.TrimSpace(*req.City) != loc.City,
		req.Country != nil && strings.TrimSpace(*req.Country) != loc.Country,
		req.Latitude != nil && *req.Latitude != loc.Latitude,
		req.Longitude != nil && *req.Longitude != loc.Longitude:
		return ErrImmutableField
	}
	return nil
}

func (s *service) Edit(ctx context.Context, id string, req EditUserRequest) (*User, error) {
	var username string
	if req.Username != nil {
		username = normalizeUsername(*req.Username)
		if username == "" {
			return nil, ErrUsernameRequired
		}

		existing, err := s.repo.GetByUsername(ctx, username)
		switch {
		case err == nil && existing.ID != id:
			return nil, ErrUsernameConflict
		case err != nil && !errors.Is(err, ErrNotFound):
			return nil, fmt.Errorf("failed to check existing username: %w", err)
		}
	}

	var hash string
	if req.Password != nil {
		if err := s.checkPassword(*req.Password); err != nil {
			return nil, err
		}
		h, err := s.hasher.Hash(*req.Password)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		hash = h
	}

	updated, err := s.repo.Update(ctx, id, func(u *User) error {
		if err := checkImmutable(u.Location, req); err != nil {
			return err
		}

		// Apply non-nil fields
		if req.Name != nil {
			u.Name = strings.TrimSpace(*req.Name)
		}
		if req.Surname != nil {
			u.Surname = strings.TrimSpace(*req.Surname)
		}
		if req.Email != nil {
			u.Email = strings.TrimSpace(*req.Email)
		}
		if req.Username != nil {
			u.Username = username
		}
		if req.Password != nil {
			u.PasswordHash = hash
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Info().Str("user_id", id).Msg("user edited")
	return updated, nil
}

func (s *service) Delete(ctx context.Context, id string) (*User, error) {
	u, err := s.repo.Delete(ctx, id)
	if err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Info().Str("user_id", id).Msg("user deleted")
	return u, nil
}

func (s *service) SetActive(ctx context.Context, id string, active bool) error {
	if err := s.repo.SetActive(ctx, id, active); err != nil {
		return err
	}

	logger.FromContext(ctx).Info().Str("user_id", id).Bool("active", active).Msg("user activation changed")
	return nil
}

func (s *service) SetTheme(ctx context.Context, id string, theme Theme) error {
	if !theme.Valid() {
		return ErrInvalidTheme
	}
	_, err := s.repo.Update(ctx, id, func(u *User) error {
		u.Theme = theme
		return nil
	})
	return err
}

func (s *service) SetImage(ctx context.Context, id string, image string) error {
	_, err := s.repo.Update(ctx, id, func(u *User) error {
		u.Image = &image
		return nil
	})
	return err
}

func (s *service) EnsureUser(ctx context.Context, username, password string) (bool, error) {
	_, err := s.repo.GetByUsername(ctx, username)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return false, err
	}

	_, err = s.Create(ctx, CreateUserRequest{
		Name:     username,
		Username: username,
		Password: password,
		Active:   true,
	})
	if errors.Is(err, ErrDuplicateUsername) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *service) Ping(ctx context.Context) error {
	return s.repo.Ping(ctx)
}
