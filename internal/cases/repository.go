package cases

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository defines data access methods for cases.
type Repository interface {
	Create(ctx context.Context, c *Case) error
	GetByID(ctx context.Context, id string) (*Case, error)
	List(ctx context.Context, filter CaseFilter) ([]*Case, int, error)
}

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

var caseColumns = []string{
	"c.id", "c.user_id", "c.status", "c.latitude", "c.longitude", "c.city", "c.country", "c.notes", "c.created_at",
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

func scanCase(row pgx.Row) (*Case, error) {
	var c Case
	err := row.Scan(
		&c.ID, &c.UserID, &c.Status, &c.Latitude, &c.Longitude, &c.City, &c.Country, &c.Notes, &c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *pgxRepository) Create(ctx context.Context, c *Case) error {
	query, args, err := psql.Insert("public.cases").
		Columns("user_id", "status", "latitude", "longitude", "city", "country", "notes").
		Values(c.UserID, c.Status, c.Latitude, c.Longitude, c.City, c.Country, c.Notes).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create case query failed: %w", err)
	}

	if err := r.pool.QueryRow(ctx, query, args...).Scan(&c.ID, &c.CreatedAt); err != nil {
		return fmt.Errorf("create case failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) GetByID(ctx context.Context, id string) (*Case, error) {
	query, args, err := psql.Select(caseColumns...).
		From("public.cases c").
		Where(squirrel.Eq{"c.id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get case query failed: %w", err)
	}

	c, err := scanCase(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.Is(err, pgx.ErrNoRows) || (errors.As(err, &pgErr) && pgErr.Code == pgerrcode.InvalidTextRepresentation) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get case failed: %w", err)
	}
	return c, nil
}

func buildListQuery(filter CaseFilter) squirrel.SelectBuilder {
	query := psql.Select(append(caseColumns, "count(*) OVER() AS total_count")...).
		From("public.cases c")
	if filter.UserID != "" {
		query = query.Where(squirrel.Eq{"c.user_id": filter.UserID})
	}
	return query.
		OrderBy("c.created_at DESC", "c.id ASC").
		Limit(uint64(filter.PageSize)).
		Offset(uint64(filter.PageSize * filter.PageIndex))
}

func (r *pgxRepository) List(ctx context.Context, filter CaseFilter) ([]*Case, int, error) {
	sql, args, err := buildListQuery(filter).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list cases query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list cases failed: %w", err)
	}
	defer rows.Close()

	var (
		result []*Case
		total  int
	)
	for rows.Next() {
		var c Case
		if err := rows.Scan(
			&c.ID, &c.UserID, &c.Status, &c.Latitude, &c.Longitude, &c.City, &c.Country, &c.Notes, &c.CreatedAt,
			&total,
		); err != nil {
			return nil, 0, fmt.Errorf("scan case failed: %w", err)
		}
		result = append(result, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list cases failed: %w", err)
	}

	return result, total, nil
}
