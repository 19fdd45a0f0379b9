package user

import (
	"cmp"
	"fmt"
	"math"
	"net/http"
	"strings"

	"github.com/Masterminds/squirrel"

	"github.com/nekogravitycat/case-admin-backend/internal/pkg/apperror"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// SortField names a column the grid may sort by.
type SortField string

const (
	SortByName      SortField = "name"
	SortBySurname   SortField = "surname"
	SortByUsername  SortField = "username"
	SortByEmail     SortField = "email"
	SortByCity      SortField = "city"
	SortByCountry   SortField = "country"
	SortByCreatedAt SortField = "created_at"
	SortByActive    SortField = "active"
)

// SortDirection is either ascending or descending.
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// DefaultSort matches the grid's initial column ordering.
const (
	DefaultSortField     = SortByCreatedAt
	DefaultSortDirection = SortDesc
)

// SearchableFields are matched case-insensitively by the free-text search.
var SearchableFields = []SortField{SortByName, SortBySurname, SortByUsername, SortByCity, SortByCountry}

type column struct {
	sql     string // ORDER BY expression
	filter  string // column used for ILIKE search
	compare func(a, b *User) int
}

func foldCompare(a, b string) int {
	return strings.Compare(strings.ToLower(a), strings.ToLower(b))
}

func boolCompare(a, b bool) int {
	switch {
	case a == b:
		return 0
	case !a:
		return -1
	default:
		return 1
	}
}

var columns = map[SortField]column{
	SortByName:      {"lower(u.name)", "u.name", func(a, b *User) int { return foldCompare(a.Name, b.Name) }},
	SortBySurname:   {"lower(u.surname)", "u.surname", func(a, b *User) int { return foldCompare(a.Surname, b.Surname) }},
	SortByUsername:  {"u.username", "u.username", func(a, b *User) int { return strings.Compare(a.Username, b.Username) }},
	SortByEmail:     {"lower(u.email)", "u.email", func(a, b *User) int { return foldCompare(a.Email, b.Email) }},
	SortByCity:      {"lower(u.city)", "u.city", func(a, b *User) int { return foldCompare(a.Location.City, b.Location.City) }},
	SortByCountry:   {"lower(u.country)", "u.country", func(a, b *User) int { return foldCompare(a.Location.Country, b.Location.Country) }},
	SortByCreatedAt: {"u.created_at", "", func(a, b *User) int { return a.CreatedAt.Compare(b.CreatedAt) }},
	SortByActive:    {"u.active", "", func(a, b *User) int { return boolCompare(a.Active, b.Active) }},
}

// GridQuery is the slice of the user collection a grid asks for.
type GridQuery struct {
	PageSize      int
	PageIndex     int // zero-based
	Search        string
	SortField     SortField
	SortDirection SortDirection
}

// Page is one page of matching users plus the total match count.
type Page struct {
	Users      []*User
	PageIndex  int
	TotalCount int
}

func invalidQuery(format string, args ...any) error {
	return &apperror.AppError{
		Code:    http.StatusBadRequest,
		Message: "invalid query: " + fmt.Sprintf(format, args...),
		Err:     ErrInvalidQuery,
	}
}

// Normalize validates q and fills in the default sort. It never guesses:
// anything it does not recognise is rejected with ErrInvalidQuery.
func (q GridQuery) Normalize() (GridQuery, error) {
	if q.PageSize < 0 {
		return q, invalidQuery("page_size must not be negative")
	}
	if q.PageSize > MaxPageSize {
		return q, invalidQuery("page_size must not exceed %d", MaxPageSize)
	}
	if q.PageIndex < 0 {
		return q, invalidQuery("page must not be negative")
	}
	if q.PageSize > 0 && q.PageIndex > math.MaxInt/q.PageSize {
		return q, invalidQuery("page is out of range")
	}

	q.Search = strings.TrimSpace(q.Search)
	q.SortField = SortField(strings.ToLower(strings.TrimSpace(string(q.SortField))))
	q.SortDirection = SortDirection(strings.ToLower(strings.TrimSpace(string(q.SortDirection))))

	if q.SortField == "" {
		q.SortField = DefaultSortField
		if q.SortDirection == "" {
			q.SortDirection = DefaultSortDirection
		}
	}
	if _, ok := columns[q.SortField]; !ok {
		return q, invalidQuery("unknown sort field %q", q.SortField)
	}

	switch q.SortDirection {
	case "":
		q.SortDirection = SortAsc
	case SortAsc, SortDesc:
	default:
		return q, invalidQuery("unknown sort direction %q", q.SortDirection)
	}

	return q, nil
}

// Offset is the number of matching records skipped before this page.
func (q GridQuery) Offset() int {
	return q.PageSize * q.PageIndex
}

// Matches reports whether u satisfies the search term.
func (q GridQuery) Matches(u *User) bool {
	if q.Search == "" {
		return true
	}
	term := strings.ToLower(q.Search)
	for _, f := range []string{u.Name, u.Surname, u.Username, u.Location.City, u.Location.Country} {
		if strings.Contains(strings.ToLower(f), term) {
			return true
		}
	}
	return false
}

// Compare orders a before b for this query: the sort field in the requested
// direction, then id ascending so page boundaries are deterministic.
func (q GridQuery) Compare(a, b *User) int {
	c := columns[q.SortField].compare(a, b)
	if q.SortDirection == SortDesc {
		c = -c
	}
	if c != 0 {
		return c
	}
	return cmp.Compare(a.ID, b.ID)
}

// escapeLike escapes LIKE metacharacters so the term matches literally.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// whereClause builds the search predicate, or nil when there is no term.
func (q GridQuery) whereClause() squirrel.Sqlizer {
	if q.Search == "" {
		return nil
	}
	pattern := "%" + escapeLike(q.Search) + "%"
	or := squirrel.Or{}
	for _, f := range SearchableFields {
		or = append(or, squirrel.ILike{columns[f].filter: pattern})
	}
	return or
}

// orderBy returns the ORDER BY terms including the id tie-break.
func (q GridQuery) orderBy() []string {
	dir := "ASC"
	if q.SortDirection == SortDesc {
		dir = "DESC"
	}
	return []string{columns[q.SortField].sql + " " + dir, "u.id ASC"}
}
