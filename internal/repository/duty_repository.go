package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/guard-duty-service/internal/domain"
)

// HistoryParams captures pagination and ordering for duty history listings.
type HistoryParams struct {
	Limit   int
	Offset  int
	SortBy  string
	SortDir string
}

// DutyStore owns guard duty persistence, including the transaction boundary
// every duty mutation runs inside. All writes to the denormalized staff and
// location aggregates happen through DutyTx primitives so no mutation path
// can bypass them.
type DutyStore interface {
	WithinTx(ctx context.Context, fn func(tx DutyTx) error) error
	GetByID(ctx context.Context, id int64) (*domain.DutyWithRelations, error)
	ListForStaff(ctx context.Context, staffID int64, params HistoryParams) ([]domain.DutyWithRelations, int, error)
	ListForLocation(ctx context.Context, locationID int64, params HistoryParams) ([]domain.DutyWithRelations, int, error)
	ListForRange(ctx context.Context, from, to time.Time, locationID *int64) ([]domain.DutyWithRelations, error)
}

// DutyTx exposes the primitives a duty mutation composes inside one
// transaction. Counter adjustments are relative updates so concurrent
// transactions on distinct duties cannot lose increments; last_guard has two
// strategies on purpose: ExtendIfLater is only sound on insert paths, every
// decrement or move path must use the full recompute.
type DutyTx interface {
	InsertDuty(ctx context.Context, duty *domain.GuardDuty) error
	UpdateDuty(ctx context.Context, duty *domain.GuardDuty) error
	DeleteDuty(ctx context.Context, id int64) (bool, error)
	GetDutyForUpdate(ctx context.Context, id int64) (*domain.GuardDuty, error)
	DutyExistsOn(ctx context.Context, locationID int64, date time.Time, excludeID int64) (bool, error)

	AdjustStaffTotal(ctx context.Context, staffID int64, delta int) error
	AdjustLocationTotal(ctx context.Context, locationID int64, delta int) error
	ExtendStaffLastGuard(ctx context.Context, staffID int64, date time.Time) error
	ExtendLocationLastGuard(ctx context.Context, locationID int64, date time.Time) error
	RecomputeStaffLastGuard(ctx context.Context, staffID int64) error
	RecomputeLocationLastGuard(ctx context.Context, locationID int64) error
}

type dutyStore struct {
	pool *pgxpool.Pool
}

// NewDutyStore instantiates the store.
func NewDutyStore(pool *pgxpool.Pool) DutyStore {
	return &dutyStore{pool: pool}
}

func (s *dutyStore) WithinTx(ctx context.Context, fn func(tx DutyTx) error) error {
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		return fn(&dutyTx{tx: tx})
	})
}

const dutyRelationColumns = `
        d.id, d.assigned_date, d.assigned_staff_id, d.actual_staff_id, d.location_id, d.rol_id,
        d.notes, d.created_at, d.updated_at,
        s.name, s.dni, s.phone, a.name, l.name, r.name`

const dutyRelationJoins = `
        FROM guard_duties d
        JOIN staff s ON s.id = d.assigned_staff_id
        LEFT JOIN staff a ON a.id = d.actual_staff_id
        JOIN locations l ON l.id = d.location_id
        JOIN roles r ON r.id = d.rol_id`

func (s *dutyStore) GetByID(ctx context.Context, id int64) (*domain.DutyWithRelations, error) {
	query := `SELECT` + dutyRelationColumns + dutyRelationJoins + ` WHERE d.id = $1`
	var duty domain.DutyWithRelations
	if err := scanDutyWithRelations(s.pool.QueryRow(ctx, query, id), &duty); err != nil {
		return nil, err
	}
	return &duty, nil
}

func (s *dutyStore) ListForStaff(ctx context.Context, staffID int64, params HistoryParams) ([]domain.DutyWithRelations, int, error) {
	where := `WHERE d.assigned_staff_id = $1 OR d.actual_staff_id = $1`
	return s.listHistory(ctx, where, staffID, params)
}

func (s *dutyStore) ListForLocation(ctx context.Context, locationID int64, params HistoryParams) ([]domain.DutyWithRelations, int, error) {
	where := `WHERE d.location_id = $1`
	return s.listHistory(ctx, where, locationID, params)
}

func (s *dutyStore) listHistory(ctx context.Context, where string, arg int64, params HistoryParams) ([]domain.DutyWithRelations, int, error) {
	var total int
	countQuery := `SELECT COUNT(*) FROM guard_duties d ` + where
	if err := s.pool.QueryRow(ctx, countQuery, arg).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := params.Limit
	if limit <= 0 {
		limit = 10
	}
	offset := params.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`SELECT%s%s %s ORDER BY %s LIMIT %d OFFSET %d`,
		dutyRelationColumns, dutyRelationJoins, where, HistoryOrderClause(params.SortBy, params.SortDir), limit, offset)

	rows, err := s.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	duties, err := collectDutiesWithRelations(rows)
	if err != nil {
		return nil, 0, err
	}
	return duties, total, nil
}

func (s *dutyStore) ListForRange(ctx context.Context, from, to time.Time, locationID *int64) ([]domain.DutyWithRelations, error) {
	clauses := []string{"d.assigned_date >= $1", "d.assigned_date <= $2"}
	args := []any{domain.NormalizeDate(from), domain.NormalizeDate(to)}
	if locationID != nil {
		args = append(args, *locationID)
		clauses = append(clauses, fmt.Sprintf("d.location_id = $%d", len(args)))
	}

	query := fmt.Sprintf(`SELECT%s%s WHERE %s ORDER BY d.assigned_date ASC, d.id ASC`,
		dutyRelationColumns, dutyRelationJoins, strings.Join(clauses, " AND "))

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectDutiesWithRelations(rows)
}

// HistoryOrderClause whitelists sortable columns so caller-supplied sort
// parameters never reach the query raw.
func HistoryOrderClause(sortBy, sortDir string) string {
	column := "d.assigned_date"
	if sortBy == "created_at" {
		column = "d.created_at"
	}
	dir := "DESC"
	if strings.EqualFold(sortDir, "asc") {
		dir = "ASC"
	}
	return column + " " + dir
}

func scanDutyWithRelations(row pgx.Row, duty *domain.DutyWithRelations) error {
	return row.Scan(
		&duty.ID,
		&duty.AssignedDate,
		&duty.AssignedStaffID,
		&duty.ActualStaffID,
		&duty.LocationID,
		&duty.RoleID,
		&duty.Notes,
		&duty.CreatedAt,
		&duty.UpdatedAt,
		&duty.AssignedStaffName,
		&duty.AssignedStaffDNI,
		&duty.AssignedStaffPhone,
		&duty.ActualStaffName,
		&duty.LocationName,
		&duty.RoleName,
	)
}

func collectDutiesWithRelations(rows pgx.Rows) ([]domain.DutyWithRelations, error) {
	var result []domain.DutyWithRelations
	for rows.Next() {
		var duty domain.DutyWithRelations
		if err := scanDutyWithRelations(rows, &duty); err != nil {
			return nil, err
		}
		result = append(result, duty)
	}
	return result, rows.Err()
}

type dutyTx struct {
	tx pgx.Tx
}

func (t *dutyTx) InsertDuty(ctx context.Context, duty *domain.GuardDuty) error {
	const query = `
        INSERT INTO guard_duties (assigned_date, assigned_staff_id, actual_staff_id, location_id, rol_id, notes)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at, updated_at`
	return t.tx.QueryRow(ctx, query,
		domain.NormalizeDate(duty.AssignedDate),
		duty.AssignedStaffID,
		duty.ActualStaffID,
		duty.LocationID,
		duty.RoleID,
		duty.Notes,
	).Scan(&duty.ID, &duty.CreatedAt, &duty.UpdatedAt)
}

func (t *dutyTx) UpdateDuty(ctx context.Context, duty *domain.GuardDuty) error {
	const query = `
        UPDATE guard_duties
        SET assigned_date=$1, assigned_staff_id=$2, actual_staff_id=$3, location_id=$4, rol_id=$5,
            notes=$6, updated_at=NOW()
        WHERE id=$7
        RETURNING updated_at`
	return t.tx.QueryRow(ctx, query,
		domain.NormalizeDate(duty.AssignedDate),
		duty.AssignedStaffID,
		duty.ActualStaffID,
		duty.LocationID,
		duty.RoleID,
		duty.Notes,
		duty.ID,
	).Scan(&duty.UpdatedAt)
}

func (t *dutyTx) DeleteDuty(ctx context.Context, id int64) (bool, error) {
	cmd, err := t.tx.Exec(ctx, `DELETE FROM guard_duties WHERE id=$1`, id)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

func (t *dutyTx) GetDutyForUpdate(ctx context.Context, id int64) (*domain.GuardDuty, error) {
	const query = `
        SELECT id, assigned_date, assigned_staff_id, actual_staff_id, location_id, rol_id, notes, created_at, updated_at
        FROM guard_duties WHERE id=$1
        FOR UPDATE`
	var duty domain.GuardDuty
	if err := t.tx.QueryRow(ctx, query, id).Scan(
		&duty.ID,
		&duty.AssignedDate,
		&duty.AssignedStaffID,
		&duty.ActualStaffID,
		&duty.LocationID,
		&duty.RoleID,
		&duty.Notes,
		&duty.CreatedAt,
		&duty.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &duty, nil
}

func (t *dutyTx) DutyExistsOn(ctx context.Context, locationID int64, date time.Time, excludeID int64) (bool, error) {
	const query = `
        SELECT EXISTS (
            SELECT 1 FROM guard_duties
            WHERE location_id=$1 AND assigned_date=$2 AND id <> $3
        )`
	var exists bool
	err := t.tx.QueryRow(ctx, query, locationID, domain.NormalizeDate(date), excludeID).Scan(&exists)
	return exists, err
}

func (t *dutyTx) AdjustStaffTotal(ctx context.Context, staffID int64, delta int) error {
	return t.adjustTotal(ctx, "staff", staffID, delta)
}

func (t *dutyTx) AdjustLocationTotal(ctx context.Context, locationID int64, delta int) error {
	return t.adjustTotal(ctx, "locations", locationID, delta)
}

func (t *dutyTx) adjustTotal(ctx context.Context, table string, id int64, delta int) error {
	query := fmt.Sprintf(`
        UPDATE %s
        SET total_assignments = GREATEST(total_assignments + $1, 0), updated_at = NOW()
        WHERE id = $2`, table)
	cmd, err := t.tx.Exec(ctx, query, delta, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (t *dutyTx) ExtendStaffLastGuard(ctx context.Context, staffID int64, date time.Time) error {
	return t.extendLastGuard(ctx, "staff", staffID, date)
}

func (t *dutyTx) ExtendLocationLastGuard(ctx context.Context, locationID int64, date time.Time) error {
	return t.extendLastGuard(ctx, "locations", locationID, date)
}

// extendLastGuard advances last_guard only when the new date is strictly
// later, so out-of-order backfills never regress the stored maximum.
func (t *dutyTx) extendLastGuard(ctx context.Context, table string, id int64, date time.Time) error {
	query := fmt.Sprintf(`
        UPDATE %s
        SET last_guard = $1, updated_at = NOW()
        WHERE id = $2 AND (last_guard IS NULL OR last_guard < $1)`, table)
	_, err := t.tx.Exec(ctx, query, domain.NormalizeDate(date), id)
	return err
}

func (t *dutyTx) RecomputeStaffLastGuard(ctx context.Context, staffID int64) error {
	const query = `
        UPDATE staff
        SET last_guard = (SELECT MAX(assigned_date) FROM guard_duties WHERE assigned_staff_id = $1),
            updated_at = NOW()
        WHERE id = $1`
	_, err := t.tx.Exec(ctx, query, staffID)
	return err
}

func (t *dutyTx) RecomputeLocationLastGuard(ctx context.Context, locationID int64) error {
	const query = `
        UPDATE locations
        SET last_guard = (SELECT MAX(assigned_date) FROM guard_duties WHERE location_id = $1),
            updated_at = NOW()
        WHERE id = $1`
	_, err := t.tx.Exec(ctx, query, locationID)
	return err
}
