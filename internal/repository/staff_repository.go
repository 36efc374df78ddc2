package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/guard-duty-service/internal/domain"
)

// StaffFilter defines query params for staff listing.
type StaffFilter struct {
	RoleID     *int64
	SearchTerm *string
	Limit      int
	Offset     int
}

// StaffRepository handles persistence for staff members. Profile writes never
// touch total_assignments or last_guard; those columns belong to the duty
// transaction and the recount engine.
type StaffRepository interface {
	Create(ctx context.Context, staff *domain.Staff) error
	Update(ctx context.Context, staff *domain.Staff) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*domain.Staff, error)
	GetByDNI(ctx context.Context, dni string) (*domain.Staff, error)
	List(ctx context.Context, filter StaffFilter) ([]domain.Staff, int, error)
}

type staffRepository struct {
	pool *pgxpool.Pool
}

// NewStaffRepository instantiates the repository.
func NewStaffRepository(pool *pgxpool.Pool) StaffRepository {
	return &staffRepository{pool: pool}
}

func (r *staffRepository) Create(ctx context.Context, staff *domain.Staff) error {
	const query = `
        INSERT INTO staff (dni, name, phone, image, rol_id)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, total_assignments, last_guard, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		staff.DNI,
		staff.Name,
		staff.Phone,
		staff.Image,
		staff.RoleID,
	).Scan(&staff.ID, &staff.TotalAssignments, &staff.LastGuard, &staff.CreatedAt, &staff.UpdatedAt)
}

func (r *staffRepository) Update(ctx context.Context, staff *domain.Staff) error {
	const query = `
        UPDATE staff SET dni=$1, name=$2, phone=$3, image=$4, rol_id=$5, updated_at=NOW()
        WHERE id=$6`
	cmd, err := r.pool.Exec(ctx, query,
		staff.DNI,
		staff.Name,
		staff.Phone,
		staff.Image,
		staff.RoleID,
		staff.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *staffRepository) Delete(ctx context.Context, id int64) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM staff WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

const staffSelect = `
        SELECT s.id, s.dni, s.name, s.phone, s.image, s.rol_id, r.name,
               s.total_assignments, s.last_guard, s.created_at, s.updated_at
        FROM staff s
        JOIN roles r ON r.id = s.rol_id`

func (r *staffRepository) GetByID(ctx context.Context, id int64) (*domain.Staff, error) {
	return r.fetchSingle(ctx, staffSelect+` WHERE s.id=$1`, id)
}

func (r *staffRepository) GetByDNI(ctx context.Context, dni string) (*domain.Staff, error) {
	return r.fetchSingle(ctx, staffSelect+` WHERE s.dni=$1`, dni)
}

func (r *staffRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Staff, error) {
	var staff domain.Staff
	if err := r.pool.QueryRow(ctx, query, arg).Scan(
		&staff.ID,
		&staff.DNI,
		&staff.Name,
		&staff.Phone,
		&staff.Image,
		&staff.RoleID,
		&staff.RoleName,
		&staff.TotalAssignments,
		&staff.LastGuard,
		&staff.CreatedAt,
		&staff.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &staff, nil
}

func (r *staffRepository) List(ctx context.Context, filter StaffFilter) ([]domain.Staff, int, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.RoleID != nil {
		args = append(args, *filter.RoleID)
		clauses = append(clauses, fmt.Sprintf("s.rol_id=$%d", len(args)))
	}
	if filter.SearchTerm != nil && strings.TrimSpace(*filter.SearchTerm) != "" {
		search := "%" + strings.ToLower(strings.TrimSpace(*filter.SearchTerm)) + "%"
		args = append(args, search)
		placeholder := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf("(LOWER(s.name) LIKE %s OR LOWER(s.dni) LIKE %s)", placeholder, placeholder))
	}

	where := strings.Join(clauses, " AND ")

	var total int
	countQuery := `SELECT COUNT(*) FROM staff s JOIN roles r ON r.id = s.rol_id WHERE ` + where
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
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

	query := fmt.Sprintf(`%s WHERE %s ORDER BY s.name ASC LIMIT %d OFFSET %d`, staffSelect, where, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var result []domain.Staff
	for rows.Next() {
		var staff domain.Staff
		if err := rows.Scan(
			&staff.ID,
			&staff.DNI,
			&staff.Name,
			&staff.Phone,
			&staff.Image,
			&staff.RoleID,
			&staff.RoleName,
			&staff.TotalAssignments,
			&staff.LastGuard,
			&staff.CreatedAt,
			&staff.UpdatedAt,
		); err != nil {
			return nil, 0, err
		}
		result = append(result, staff)
	}
	return result, total, rows.Err()
}
