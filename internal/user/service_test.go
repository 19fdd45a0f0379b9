package user_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/nekogravitycat/case-admin-backend/internal/auth"
	"github.com/nekogravitycat/case-admin-backend/internal/mock"
	"github.com/nekogravitycat/case-admin-backend/internal/pkg/apperror"
	"github.com/nekogravitycat/case-admin-backend/internal/user"
)

func ptr[T any](v T) *T { return &v }

func newTestService(t *testing.T) (user.Service, user.Repository) {
	t.Helper()
	repo := user.NewMemoryRepository()
	return user.NewService(repo, auth.NewBcryptPasswordHasherWithCost(4)), repo
}

func createUser(t *testing.T, svc user.Service, username string) *user.User {
	t.Helper()
	u, err := svc.Create(context.Background(), user.CreateUserRequest{
		Name:     "Test",
		Surname:  "User",
		Username: username,
		Email:    username + "@example.com",
		Password: "password123",
		Location: user.Location{Latitude: 40.4, Longitude: -3.7, City: "Madrid", Country: "Spain"},
	})
	require.NoError(t, err)
	return u
}

func TestService_Login(t *testing.T) {
	svc, _ := newTestService(t)
	created := createUser(t, svc, "alice")
	ctx := context.Background()

	u, err := svc.Login(ctx, "  ALICE ", "password123")
	require.NoError(t, err)
	assert.Equal(t, created.ID, u.ID)

	_, err = svc.Login(ctx, "alice", "wrong-password")
	assert.ErrorIs(t, err, user.ErrInvalidPassword)

	_, err = svc.Login(ctx, "nobody", "password123")
	assert.ErrorIs(t, err, user.ErrInvalidUsername)

	_, err = svc.Login(ctx, "alice", strings.Repeat("p", 80))
	assert.ErrorIs(t, err, user.ErrInvalidPassword)
}

func TestService_LoginDoesNotWrite(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mock.NewMockRepository(ctrl)
	svc := user.NewService(repo, auth.NewBcryptPasswordHasherWithCost(4))

	// Only the lookup is expected; any write would fail the controller.
	repo.EXPECT().GetByUsername(gomock.Any(), "ghost").Return(nil, user.ErrNotFound)

	_, err := svc.Login(context.Background(), "Ghost", "whatever")
	assert.ErrorIs(t, err, user.ErrInvalidUsername)
}

func TestService_CreateValidation(t *testing.T) {
	svc, _ := newTestService(t)
	createUser(t, svc, "alice")
	ctx := context.Background()

	tests := []struct {
		name string
		req  user.CreateUserRequest
		want error
	}{
		{"blank username", user.CreateUserRequest{Username: "  ", Password: "password123"}, user.ErrUsernameRequired},
		{"short password", user.CreateUserRequest{Username: "bob", Password: "short"}, user.ErrPasswordTooShort},
		{"password over 72 bytes", user.CreateUserRequest{Username: "bob", Password: strings.Repeat("p", 80)}, user.ErrPasswordTooLong},
		{"bad latitude", user.CreateUserRequest{Username: "bob", Password: "password123", Location: user.Location{Latitude: 91}}, user.ErrInvalidLocation},
		{"duplicate differs only in case", user.CreateUserRequest{Username: "ALICE", Password: "password123"}, user.ErrDuplicateUsername},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tt.req)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestService_CreateStoresHashNotPassword(t *testing.T) {
	svc, repo := newTestService(t)
	u := createUser(t, svc, "Alice")

	stored, err := repo.GetByID(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", stored.Username)
	assert.NotEqual(t, "password123", stored.PasswordHash)
	assert.Equal(t, user.ThemeLight, stored.Theme)
}

func TestService_Edit(t *testing.T) {
	svc, _ := newTestService(t)
	alice := createUser(t, svc, "alice")
	createUser(t, svc, "bob")
	ctx := context.Background()

	t.Run("partial update leaves other fields", func(t *testing.T) {
		u, err := svc.Edit(ctx, alice.ID, user.EditUserRequest{Name: ptr("Alicia")})
		require.NoError(t, err)
		assert.Equal(t, "Alicia", u.Name)
		assert.Equal(t, "User", u.Surname)
		assert.Equal(t, alice.Email, u.Email)
	})

	t.Run("password over 72 bytes", func(t *testing.T) {
		_, err := svc.Edit(ctx, alice.ID, user.EditUserRequest{Password: ptr(strings.Repeat("p", 80))})
		assert.ErrorIs(t, err, user.ErrPasswordTooLong)
	})

	t.Run("username taken by another user", func(t *testing.T) {
		_, err := svc.Edit(ctx, alice.ID, user.EditUserRequest{Username: ptr("BOB")})
		assert.ErrorIs(t, err, user.ErrUsernameConflict)
	})

	t.Run("own username is not a conflict", func(t *testing.T) {
		_, err := svc.Edit(ctx, alice.ID, user.EditUserRequest{Username: ptr("Alice")})
		assert.NoError(t, err)
	})

	t.Run("changing location is rejected", func(t *testing.T) {
		_, err := svc.Edit(ctx, alice.ID, user.EditUserRequest{City: ptr("Paris")})
		assert.ErrorIs(t, err, user.ErrImmutableField)

		got, err := svc.GetByID(ctx, alice.ID)
		require.NoError(t, err)
		assert.Equal(t, "Madrid", got.Location.City)
	})

	t.Run("resending the stored location is accepted", func(t *testing.T) {
		_, err := svc.Edit(ctx, alice.ID, user.EditUserRequest{City: ptr("Madrid"), Latitude: ptr(40.4)})
		assert.NoError(t, err)
	})

	t.Run("password change", func(t *testing.T) {
		_, err := svc.Edit(ctx, alice.ID, user.EditUserRequest{Password: ptr("another-secret")})
		require.NoError(t, err)

		_, err = svc.Login(ctx, "alice", "password123")
		assert.ErrorIs(t, err, user.ErrInvalidPassword)
		_, err = svc.Login(ctx, "alice", "another-secret")
		assert.NoError(t, err)
	})

	t.Run("missing user", func(t *testing.T) {
		_, err := svc.Edit(ctx, "00000000-0000-0000-0000-000000000000", user.EditUserRequest{Name: ptr("x")})
		assert.ErrorIs(t, err, user.ErrNotFound)
	})
}

func TestService_DeleteAndActivation(t *testing.T) {
	svc, _ := newTestService(t)
	u := createUser(t, svc, "alice")
	ctx := context.Background()

	require.NoError(t, svc.SetActive(ctx, u.ID, true))
	require.NoError(t, svc.SetActive(ctx, u.ID, true))

	deleted, err := svc.Delete(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", deleted.Username)

	_, err = svc.Delete(ctx, u.ID)
	assert.ErrorIs(t, err, user.ErrNotFound)
	assert.ErrorIs(t, svc.SetActive(ctx, u.ID, false), user.ErrNotFound)

	_, err = svc.ResolvePrincipal(ctx, u.ID)
	assert.ErrorIs(t, err, user.ErrNotFound)
}

func TestService_List(t *testing.T) {
	svc, _ := newTestService(t)
	for _, name := range []string{"carol", "alice", "bob"} {
		createUser(t, svc, name)
	}
	ctx := context.Background()

	page, err := svc.List(ctx, user.GridQuery{PageSize: 2, SortField: user.SortByUsername, SortDirection: user.SortAsc})
	require.NoError(t, err)
	assert.Equal(t, 3, page.TotalCount)
	require.Len(t, page.Users, 2)
	assert.Equal(t, "alice", page.Users[0].Username)
	assert.Equal(t, "bob", page.Users[1].Username)

	_, err = svc.List(ctx, user.GridQuery{PageSize: 500})
	assert.ErrorIs(t, err, user.ErrInvalidQuery)
	assert.Equal(t, 400, apperror.StatusOf(err))
}

func TestService_ListPropagatesStoreFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mock.NewMockRepository(ctrl)
	svc := user.NewService(repo, auth.NewBcryptPasswordHasherWithCost(4))

	boom := errors.New("connection reset")
	repo.EXPECT().List(gomock.Any(), gomock.Any()).Return(nil, 0, boom)

	_, err := svc.List(context.Background(), user.GridQuery{PageSize: 10})
	assert.ErrorIs(t, err, boom)
}

func TestService_EditPersistenceFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mock.NewMockRepository(ctrl)
	svc := user.NewService(repo, auth.NewBcryptPasswordHasherWithCost(4))

	repo.EXPECT().Update(gomock.Any(), "id-1", gomock.Any()).Return(nil, user.ErrPersistence)

	_, err := svc.Edit(context.Background(), "id-1", user.EditUserRequest{Name: ptr("x")})
	assert.ErrorIs(t, err, user.ErrPersistence)
	assert.Equal(t, 500, apperror.StatusOf(err))
}

func TestService_ThemeAndImage(t *testing.T) {
	svc, _ := newTestService(t)
	u := createUser(t, svc, "alice")
	ctx := context.Background()

	assert.ErrorIs(t, svc.SetTheme(ctx, u.ID, user.Theme("neon")), user.ErrInvalidTheme)
	require.NoError(t, svc.SetTheme(ctx, u.ID, user.ThemeDark))
	require.NoError(t, svc.SetImage(ctx, u.ID, "/v1/files/abc"))

	got, err := svc.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, user.ThemeDark, got.Theme)
	require.NotNil(t, got.Image)
	assert.Equal(t, "/v1/files/abc", *got.Image)
}

func TestService_EnsureUser(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.EnsureUser(ctx, "admin", "admin-password")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = svc.EnsureUser(ctx, "admin", "other-password")
	require.NoError(t, err)
	assert.False(t, created)

	u, err := svc.Login(ctx, "admin", "admin-password")
	require.NoError(t, err)
	assert.True(t, u.Active)
}
