package console

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestColumns_ApplyPolicies(t *testing.T) {
	tests := []struct {
		field    string
		value    string
		creating bool
		wantErr  error
	}{
		{field: "name", value: "Ada", creating: false},
		{field: "Name", value: "Ada", creating: true},
		{field: "password", value: "secret", creating: false},
		{field: "city", value: "Oslo", creating: true},
		{field: "city", value: "Oslo", creating: false, wantErr: ErrFieldNotEditable},
		{field: "latitude", value: "45.5", creating: true},
		{field: "latitude", value: "45.5", creating: false, wantErr: ErrFieldNotEditable},
		{field: "longitude", value: "181", creating: true, wantErr: ErrInvalidValue},
		{field: "latitude", value: "north", creating: true, wantErr: ErrInvalidValue},
		{field: "active", value: "true", creating: true},
		{field: "active", value: "maybe", creating: true, wantErr: ErrInvalidValue},
		{field: "active", value: "true", creating: false, wantErr: ErrFieldNotEditable},
		{field: "id", value: "x", creating: true, wantErr: ErrFieldNotEditable},
		{field: "created_at", value: "x", creating: false, wantErr: ErrFieldNotEditable},
		{field: "shoe_size", value: "44", creating: true, wantErr: ErrUnknownField},
	}
	for _, tt := range tests {
		t.Run(tt.field+"/"+tt.value, func(t *testing.T) {
			err := DefaultColumns.Apply(&Draft{}, tt.field, tt.value, tt.creating)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestDraft_EditCarriesOnlyTouchedFields(t *testing.T) {
	d := &Draft{}
	require.NoError(t, DefaultColumns.Apply(d, "email", "  ada@example.com ", false))

	e := d.Edit()
	require.NotNil(t, e.Email)
	assert.Equal(t, "ada@example.com", *e.Email)
	assert.Nil(t, e.Name)
	assert.False(t, e.Empty())
	assert.True(t, (&Draft{}).Edit().Empty())
}

func TestDraft_NewUser(t *testing.T) {
	d := &Draft{}
	for field, value := range map[string]string{
		"name": "Ada", "username": "ada", "password": "pw", "latitude": "51.5", "longitude": "-0.12",
	} {
		require.NoError(t, DefaultColumns.Apply(d, field, value, true))
	}

	nu, err := d.NewUser()
	require.NoError(t, err)
	assert.Equal(t, "Ada", nu.Name)
	assert.InDelta(t, 51.5, *nu.Latitude, 1e-9)
	assert.False(t, nu.Active)

	_, err = (&Draft{Name: ptr("x"), Username: ptr("x"), Password: ptr("x")}).NewUser()
	assert.ErrorIs(t, err, ErrInvalidValue)
}

func TestColumns_VisibleHidesPassword(t *testing.T) {
	_, ok := DefaultColumns.Visible().Lookup("password")
	assert.False(t, ok)
	_, ok = DefaultColumns.Lookup("password")
	assert.True(t, ok)
}

func TestRender(t *testing.T) {
	rows := []Row{
		{User: User{ID: "u1", Name: "Ada", Username: "ada", Latitude: 51.5, Active: true, CaseID: ptr("c1"), CreatedAt: time.Now()}},
		{User: User{ID: "u2", Name: "Bob", Username: "bob"}, State: RolledBack},
	}

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, DefaultColumns, rows, 1, 2, 5))

	out := buf.String()
	assert.Contains(t, out, "Username")
	assert.NotContains(t, out, "Password")
	assert.Contains(t, out, "51.50000")
	assert.Contains(t, out, "(rolled back)")
	assert.Contains(t, out, "page 2/3, 5 users")
}
