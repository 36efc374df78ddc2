package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/guard-duty-service/internal/domain"
)

// LocationFilter defines query params for location listing.
type LocationFilter struct {
	SearchTerm *string
	Limit      int
	Offset     int
}

// LocationRepository handles persistence for guarded locations. As with
// staff, aggregate columns are off limits to profile writes.
type LocationRepository interface {
	Create(ctx context.Context, location *domain.Location) error
	Update(ctx context.Context, location *domain.Location) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*domain.Location, error)
	List(ctx context.Context, filter LocationFilter) ([]domain.Location, int, error)
}

type locationRepository struct {
	pool *pgxpool.Pool
}

// NewLocationRepository instantiates the repository.
func NewLocationRepository(pool *pgxpool.Pool) LocationRepository {
	return &locationRepository{pool: pool}
}

func (r *locationRepository) Create(ctx context.Context, location *domain.Location) error {
	const query = `
        INSERT INTO locations (name, image)
        VALUES ($1,$2)
        RETURNING id, total_assignments, last_guard, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		location.Name,
		location.Image,
	).Scan(&location.ID, &location.TotalAssignments, &location.LastGuard, &location.CreatedAt, &location.UpdatedAt)
}

func (r *locationRepository) Update(ctx context.Context, location *domain.Location) error {
	const query = `UPDATE locations SET name=$1, image=$2, updated_at=NOW() WHERE id=$3`
	cmd, err := r.pool.Exec(ctx, query, location.Name, location.Image, location.ID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *locationRepository) Delete(ctx context.Context, id int64) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM locations WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

const locationSelect = `
        SELECT id, name, image, total_assignments, last_guard, created_at, updated_at
        FROM locations`

func (r *locationRepository) GetByID(ctx context.Context, id int64) (*domain.Location, error) {
	var location domain.Location
	if err := r.pool.QueryRow(ctx, locationSelect+` WHERE id=$1`, id).Scan(
		&location.ID,
		&location.Name,
		&location.Image,
		&location.TotalAssignments,
		&location.LastGuard,
		&location.CreatedAt,
		&location.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &location, nil
}

func (r *locationRepository) List(ctx context.Context, filter LocationFilter) ([]domain.Location, int, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.SearchTerm != nil && strings.TrimSpace(*filter.SearchTerm) != "" {
		search := "%" + strings.ToLower(strings.TrimSpace(*filter.SearchTerm)) + "%"
		args = append(args, search)
		clauses = append(clauses, fmt.Sprintf("LOWER(name) LIKE $%d", len(args)))
	}

	where := strings.Join(clauses, " AND ")

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM locations WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY name ASC LIMIT %d OFFSET %d`, locationSelect, where, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var result []domain.Location
	for rows.Next() {
		var location domain.Location
		if err := rows.Scan(
			&location.ID,
			&location.Name,
			&location.Image,
			&location.TotalAssignments,
			&location.LastGuard,
			&location.CreatedAt,
			&location.UpdatedAt,
		); err != nil {
			return nil, 0, err
		}
		result = append(result, location)
	}
	return result, total, rows.Err()
}
