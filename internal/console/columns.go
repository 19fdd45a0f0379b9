package console

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var (
	ErrUnknownField     = errors.New("unknown field")
	ErrFieldNotEditable = errors.New("field is not editable")
	ErrInvalidValue     = errors.New("invalid value")
)

// EditPolicy says when a column may be written from the console.
type EditPolicy int

const (
	// ReadOnly columns are never written by the console.
	ReadOnly EditPolicy = iota
	// CreateOnly columns are set when a record is created and fixed afterwards.
	CreateOnly
	// Editable columns may be changed through a row edit.
	Editable
	// Toggle columns are set at creation and then only flipped through
	// activation, never through a row edit.
	Toggle
)

func (p EditPolicy) allows(creating bool) bool {
	switch p {
	case Editable:
		return true
	case CreateOnly, Toggle:
		return creating
	default:
		return false
	}
}

// Draft collects pending field values for a create or a row edit.
type Draft struct {
	Name      *string
	Surname   *string
	Username  *string
	Email     *string
	Password  *string
	Latitude  *float64
	Longitude *float64
	City      *string
	Country   *string
	Active    *bool
}

// Edit returns the partial update carrying the draft's editable fields.
func (d *Draft) Edit() UserEdit {
	return UserEdit{
		Name:     d.Name,
		Surname:  d.Surname,
		Username: d.Username,
		Email:    d.Email,
		Password: d.Password,
	}
}

// NewUser returns the create payload for the draft.
func (d *Draft) NewUser() (NewUser, error) {
	if d.Name == nil || d.Username == nil || d.Password == nil {
		return NewUser{}, fmt.Errorf("%w: name, username and password are required", ErrInvalidValue)
	}
	if d.Latitude == nil || d.Longitude == nil {
		return NewUser{}, fmt.Errorf("%w: latitude and longitude are required", ErrInvalidValue)
	}

	return NewUser{
		Name:      *d.Name,
		Surname:   deref(d.Surname),
		Username:  *d.Username,
		Email:     deref(d.Email),
		Password:  *d.Password,
		Latitude:  d.Latitude,
		Longitude: d.Longitude,
		City:      deref(d.City),
		Country:   deref(d.Country),
		Active:    d.Active != nil && *d.Active,
	}, nil
}

// Column describes one grid column: how it is shown, how text typed into its
// editor lands in a Draft and when it may be edited at all. Display is nil for
// columns that are never shown.
type Column struct {
	Field   string
	Title   string
	Policy  EditPolicy
	Display func(User) string
	Edit    func(d *Draft, value string) error
}

// Columns is an ordered column table.
type Columns []Column

// DefaultColumns is the user grid.
var DefaultColumns = Columns{
	{Field: "id", Title: "ID", Policy: ReadOnly, Display: func(u User) string { return u.ID }},
	{Field: "name", Title: "Name", Policy: Editable, Display: func(u User) string { return u.Name }, Edit: editString(func(d *Draft) **string { return &d.Name })},
	{Field: "surname", Title: "Surname", Policy: Editable, Display: func(u User) string { return u.Surname }, Edit: editString(func(d *Draft) **string { return &d.Surname })},
	{Field: "username", Title: "Username", Policy: Editable, Display: func(u User) string { return u.Username }, Edit: editString(func(d *Draft) **string { return &d.Username })},
	{Field: "email", Title: "Email", Policy: Editable, Display: func(u User) string { return u.Email }, Edit: editString(func(d *Draft) **string { return &d.Email })},
	{Field: "password", Title: "Password", Policy: Editable, Edit: editString(func(d *Draft) **string { return &d.Password })},
	{Field: "latitude", Title: "Lat", Policy: CreateOnly, Display: func(u User) string { return formatCoord(u.Latitude) }, Edit: editCoord(90, func(d *Draft) **float64 { return &d.Latitude })},
	{Field: "longitude", Title: "Lng", Policy: CreateOnly, Display: func(u User) string { return formatCoord(u.Longitude) }, Edit: editCoord(180, func(d *Draft) **float64 { return &d.Longitude })},
	{Field: "city", Title: "City", Policy: CreateOnly, Display: func(u User) string { return u.City }, Edit: editString(func(d *Draft) **string { return &d.City })},
	{Field: "country", Title: "Country", Policy: CreateOnly, Display: func(u User) string { return u.Country }, Edit: editString(func(d *Draft) **string { return &d.Country })},
	{Field: "active", Title: "Active", Policy: Toggle, Display: func(u User) string { return formatBool(u.Active) }, Edit: editBool(func(d *Draft) **bool { return &d.Active })},
	{Field: "case_id", Title: "Case", Policy: ReadOnly, Display: func(u User) string { return deref(u.CaseID) }},
	{Field: "created_at", Title: "Created", Policy: ReadOnly, Display: func(u User) string { return u.CreatedAt.Local().Format(time.DateTime) }},
}

// Lookup finds the column for field.
func (cs Columns) Lookup(field string) (Column, bool) {
	field = strings.ToLower(strings.TrimSpace(field))
	for _, c := range cs {
		if c.Field == field {
			return c, true
		}
	}
	return Column{}, false
}

// Visible returns the columns that have a display renderer.
func (cs Columns) Visible() Columns {
	out := make(Columns, 0, len(cs))
	for _, c := range cs {
		if c.Display != nil {
			out = append(out, c)
		}
	}
	return out
}

// Apply writes value for field into d if the column's policy allows it.
// creating selects between the create form and a row edit.
func (cs Columns) Apply(d *Draft, field, value string, creating bool) error {
	c, ok := cs.Lookup(field)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	if c.Edit == nil || !c.Policy.allows(creating) {
		return fmt.Errorf("%w: %s", ErrFieldNotEditable, c.Field)
	}
	if err := c.Edit(d, value); err != nil {
		return fmt.Errorf("%s: %w", c.Field, err)
	}
	return nil
}

// Render returns the row's display values in column order.
func (cs Columns) Render(u User) []string {
	out := make([]string, 0, len(cs))
	for _, c := range cs {
		if c.Display != nil {
			out = append(out, c.Display(u))
		}
	}
	return out
}

func editString(target func(*Draft) **string) func(*Draft, string) error {
	return func(d *Draft, value string) error {
		v := strings.TrimSpace(value)
		*target(d) = &v
		return nil
	}
}

func editCoord(limit float64, target func(*Draft) **float64) func(*Draft, string) error {
	return func(d *Draft, value string) error {
		v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil || v < -limit || v > limit {
			return fmt.Errorf("%w: %q is not a coordinate within ±%g", ErrInvalidValue, value, limit)
		}
		*target(d) = &v
		return nil
	}
}

func editBool(target func(*Draft) **bool) func(*Draft, string) error {
	return func(d *Draft, value string) error {
		v, err := strconv.ParseBool(strings.TrimSpace(value))
		if err != nil {
			return fmt.Errorf("%w: %q is not a boolean", ErrInvalidValue, value)
		}
		*target(d) = &v
		return nil
	}
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', 5, 64)
}

func formatBool(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
