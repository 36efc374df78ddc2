package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// AggregateRepository rebuilds the denormalized staff/location aggregates
// from a full scan of the duty set. Recounts never apply incremental logic;
// they are the ground-truth reset for drifted counters.
type AggregateRepository interface {
	RecountStaff(ctx context.Context) (int64, error)
	RecountLocations(ctx context.Context) (int64, error)
	RecountOneStaff(ctx context.Context, staffID int64) error
	RecountOneLocation(ctx context.Context, locationID int64) error
}

type aggregateRepository struct {
	pool *pgxpool.Pool
}

// NewAggregateRepository instantiates the repository.
func NewAggregateRepository(pool *pgxpool.Pool) AggregateRepository {
	return &aggregateRepository{pool: pool}
}

// The LEFT JOIN keeps entities with no duties in the update set so their
// aggregates reset to 0/NULL instead of retaining stale values.
const recountStaffQuery = `
        UPDATE staff s
        SET total_assignments = agg.cnt,
            last_guard = agg.last_date,
            updated_at = NOW()
        FROM (
            SELECT s2.id, COUNT(d.id) AS cnt, MAX(d.assigned_date) AS last_date
            FROM staff s2
            LEFT JOIN guard_duties d ON d.assigned_staff_id = s2.id
            GROUP BY s2.id
        ) agg
        WHERE agg.id = s.id`

const recountLocationsQuery = `
        UPDATE locations l
        SET total_assignments = agg.cnt,
            last_guard = agg.last_date,
            updated_at = NOW()
        FROM (
            SELECT l2.id, COUNT(d.id) AS cnt, MAX(d.assigned_date) AS last_date
            FROM locations l2
            LEFT JOIN guard_duties d ON d.location_id = l2.id
            GROUP BY l2.id
        ) agg
        WHERE agg.id = l.id`

func (r *aggregateRepository) RecountStaff(ctx context.Context) (int64, error) {
	cmd, err := r.pool.Exec(ctx, recountStaffQuery)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

func (r *aggregateRepository) RecountLocations(ctx context.Context) (int64, error) {
	cmd, err := r.pool.Exec(ctx, recountLocationsQuery)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

func (r *aggregateRepository) RecountOneStaff(ctx context.Context, staffID int64) error {
	const query = `
        UPDATE staff
        SET total_assignments = (SELECT COUNT(*) FROM guard_duties WHERE assigned_staff_id = $1),
            last_guard = (SELECT MAX(assigned_date) FROM guard_duties WHERE assigned_staff_id = $1),
            updated_at = NOW()
        WHERE id = $1`
	cmd, err := r.pool.Exec(ctx, query, staffID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *aggregateRepository) RecountOneLocation(ctx context.Context, locationID int64) error {
	const query = `
        UPDATE locations
        SET total_assignments = (SELECT COUNT(*) FROM guard_duties WHERE location_id = $1),
            last_guard = (SELECT MAX(assigned_date) FROM guard_duties WHERE location_id = $1),
            updated_at = NOW()
        WHERE id = $1`
	cmd, err := r.pool.Exec(ctx, query, locationID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
