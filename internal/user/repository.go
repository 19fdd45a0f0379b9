package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

//go:generate mockgen -source=repository.go -destination=../mock/user_repository_mock.go -package=mock

// Repository defines methods for accessing user data from storage.
type Repository interface {
	GetByID(ctx context.Context, id string) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	// List returns one page of users matching q and the total match count.
	// q must already be normalized.
	List(ctx context.Context, q GridQuery) ([]*User, int, error)
	Create(ctx context.Context, u *User) error
	// Update loads the user, applies fn and saves the result atomically with
	// respect to other writers of the same id. Location is never written.
	Update(ctx context.Context, id string, fn func(u *User) error) (*User, error)
	SetActive(ctx context.Context, id string, active bool) error
	// Delete removes the user and returns the removed record.
	Delete(ctx context.Context, id string) (*User, error)
	Ping(ctx context.Context) error
}

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

var userColumns = []string{
	"u.id", "u.name", "u.surname", "u.username", "u.email", "u.password_hash",
	"u.latitude", "u.longitude", "u.city", "u.country",
	"u.image", "u.active", "u.case_id", "u.created_at", "u.theme",
}

type pgxUserRepository struct {
	pool *pgxpool.Pool
}

// NewPgxRepository creates a new Repository implementation using pgxpool.
func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxUserRepository{
		pool: pool,
	}
}

func scanUser(row pgx.Row) (*User, error) {
	var u User
	var theme string
	if err := row.Scan(
		&u.ID,
		&u.Name,
		&u.Surname,
		&u.Username,
		&u.Email,
		&u.PasswordHash,
		&u.Location.Latitude,
		&u.Location.Longitude,
		&u.Location.City,
		&u.Location.Country,
		&u.Image,
		&u.Active,
		&u.CaseID,
		&u.CreatedAt,
		&theme,
	); err != nil {
		return nil, err
	}
	u.Theme = Theme(theme)
	return &u, nil
}

// persistenceError maps driver errors onto the domain taxonomy.
func persistenceError(op string, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	var e *pgconn.PgError
	if errors.As(err, &e) && e.Code == pgerrcode.InvalidTextRepresentation {
		// Malformed UUID: nothing can match it.
		return ErrNotFound
	}
	return fmt.Errorf("%s: %w: %w", op, ErrPersistence, err)
}

func isUniqueViolation(err error) bool {
	var e *pgconn.PgError
	return errors.As(err, &e) && e.Code == pgerrcode.UniqueViolation
}

func selectUsers() squirrel.SelectBuilder {
	return psql.Select(userColumns...).From("public.users u")
}

func (r *pgxUserRepository) getOne(ctx context.Context, tx pgx.Tx, where squirrel.Sqlizer, suffix string) (*User, error) {
	b := selectUsers().Where(where)
	if suffix != "" {
		b = b.Suffix(suffix)
	}
	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get user query failed: %w", err)
	}

	var row pgx.Row
	if tx != nil {
		row = tx.QueryRow(ctx, query, args...)
	} else {
		row = r.pool.QueryRow(ctx, query, args...)
	}

	u, err := scanUser(row)
	if err != nil {
		return nil, persistenceError("get user", err)
	}
	return u, nil
}

func (r *pgxUserRepository) GetByID(ctx context.Context, id string) (*User, error) {
	return r.getOne(ctx, nil, squirrel.Eq{"u.id": id}, "")
}

func (r *pgxUserRepository) GetByUsername(ctx context.Context, username string) (*User, error) {
	return r.getOne(ctx, nil, squirrel.Eq{"u.username": normalizeUsername(username)}, "")
}

// buildCountQuery and buildPageQuery share the same filter so the two numbers
// always describe the same set of rows.
func buildCountQuery(q GridQuery) (string, []any, error) {
	b := psql.Select("count(*)").From("public.users u")
	if where := q.whereClause(); where != nil {
		b = b.Where(where)
	}
	return b.ToSql()
}

func buildPageQuery(q GridQuery) (string, []any, error) {
	b := selectUsers()
	if where := q.whereClause(); where != nil {
		b = b.Where(where)
	}
	b = b.OrderBy(q.orderBy()...).
		Limit(uint64(q.PageSize)).
		Offset(uint64(q.Offset()))
	return b.ToSql()
}

func (r *pgxUserRepository) List(ctx context.Context, q GridQuery) ([]*User, int, error) {
	countSQL, countArgs, err := buildCountQuery(q)
	if err != nil {
		return nil, 0, fmt.Errorf("build count users query failed: %w", err)
	}
	pageSQL, pageArgs, err := buildPageQuery(q)
	if err != nil {
		return nil, 0, fmt.Errorf("build list users query failed: %w", err)
	}

	var users []*User
	var total int

	// Count and page run in one read-only snapshot.
	txOpts := pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly}
	err = pgx.BeginTxFunc(ctx, r.pool, txOpts, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
			return fmt.Errorf("count users failed: %w", err)
		}
		if q.PageSize == 0 || q.Offset() >= total {
			return nil
		}

		rows, err := tx.Query(ctx, pageSQL, pageArgs...)
		if err != nil {
			return fmt.Errorf("list users failed: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			u, err := scanUser(rows)
			if err != nil {
				return fmt.Errorf("scan user failed: %w", err)
			}
			users = append(users, u)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %w", ErrPersistence, err)
	}

	return users, total, nil
}

func (r *pgxUserRepository) Create(ctx context.Context, u *User) error {
	query, args, err := psql.Insert("public.users").
		Columns(
			"name", "surname", "username", "email", "password_hash",
			"latitude", "longitude", "city", "country",
			"image", "active", "case_id", "theme",
		).
		Values(
			u.Name, u.Surname, u.Username, u.Email, u.PasswordHash,
			u.Location.Latitude, u.Location.Longitude, u.Location.City, u.Location.Country,
			u.Image, u.Active, u.CaseID, string(u.Theme),
		).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create user query failed: %w", err)
	}

	if err := r.pool.QueryRow(ctx, query, args...).Scan(&u.ID, &u.CreatedAt); err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateUsername
		}
		return fmt.Errorf("create user: %w: %w", ErrPersistence, err)
	}

	return nil
}

func (r *pgxUserRepository) Update(ctx context.Context, id string, fn func(u *User) error) (*User, error) {
	var updated *User

	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		// Row lock serialises concurrent edits of the same user.
		u, err := r.getOne(ctx, tx, squirrel.Eq{"u.id": id}, "FOR UPDATE")
		if err != nil {
			return err
		}

		if err := fn(u); err != nil {
			return err
		}

		query, args, err := psql.Update("public.users").
			Set("name", u.Name).
			Set("surname", u.Surname).
			Set("username", u.Username).
			Set("email", u.Email).
			Set("password_hash", u.PasswordHash).
			Set("image", u.Image).
			Set("theme", string(u.Theme)).
			Where(squirrel.Eq{"id": id}).
			ToSql()
		if err != nil {
			return fmt.Errorf("build update user query failed: %w", err)
		}

		if _, err := tx.Exec(ctx, query, args...); err != nil {
			if isUniqueViolation(err) {
				return ErrUsernameConflict
			}
			return fmt.Errorf("update user: %w: %w", ErrPersistence, err)
		}

		updated = u
		return nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

func (r *pgxUserRepository) SetActive(ctx context.Context, id string, active bool) error {
	query, args, err := psql.Update("public.users").
		Set("active", active).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build set active query failed: %w", err)
	}

	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return persistenceError("set active", err)
	}

	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

func (r *pgxUserRepository) Delete(ctx context.Context, id string) (*User, error) {
	query, args, err := psql.Delete("public.users u").
		Where(squirrel.Eq{"u.id": id}).
		Suffix("RETURNING " + strings.Join(userColumns, ", ")).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build delete user query failed: %w", err)
	}

	u, err := scanUser(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, persistenceError("delete user", err)
	}

	return u, nil
}

func (r *pgxUserRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}
