package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/guard-duty-service/internal/domain"
)

// EligibleQuery captures the candidate listing parameters after the service
// applied defaults.
type EligibleQuery struct {
	Date       time.Time
	Search     string
	Limit      int
	Offset     int
	Prioritize bool
}

// CandidateRepository serves the candidate ranking reads: the eligible-staff
// page and the per-staff duty counts for one calendar month.
type CandidateRepository interface {
	ListEligible(ctx context.Context, q EligibleQuery) ([]domain.Candidate, int, error)
	MonthCounts(ctx context.Context, staffIDs []int64, monthStart, monthEnd time.Time) (map[int64]int, error)
}

type candidateRepository struct {
	pool *pgxpool.Pool
}

// NewCandidateRepository instantiates the repository.
func NewCandidateRepository(pool *pgxpool.Pool) CandidateRepository {
	return &candidateRepository{pool: pool}
}

func (r *candidateRepository) ListEligible(ctx context.Context, q EligibleQuery) ([]domain.Candidate, int, error) {
	date := domain.NormalizeDate(q.Date)

	// A staff member already on duty that day, as assigned or actual staff,
	// is never proposed again for the same day.
	clauses := []string{`
        NOT EXISTS (
            SELECT 1 FROM guard_duties d
            WHERE d.assigned_date = $1
              AND (d.assigned_staff_id = s.id OR d.actual_staff_id = s.id)
        )`}
	args := []any{date}

	if search := strings.TrimSpace(q.Search); search != "" {
		args = append(args, "%"+strings.ToLower(search)+"%")
		placeholder := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf(
			"(LOWER(s.name) LIKE %s OR LOWER(s.dni) LIKE %s OR LOWER(r.name) LIKE %s)",
			placeholder, placeholder, placeholder))
	}

	where := strings.Join(clauses, " AND ")

	var total int
	countQuery := `SELECT COUNT(*) FROM staff s JOIN roles r ON r.id = s.rol_id WHERE ` + where
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`
        SELECT s.id, s.dni, s.name, s.total_assignments, s.last_guard, r.id, r.name
        FROM staff s
        JOIN roles r ON r.id = s.rol_id
        WHERE %s
        ORDER BY %s
        LIMIT %d OFFSET %d`, where, CandidateOrderClause(q.Prioritize), q.Limit, q.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var candidates []domain.Candidate
	for rows.Next() {
		var c domain.Candidate
		if err := rows.Scan(&c.ID, &c.DNI, &c.Name, &c.TotalAssignments, &c.LastGuard, &c.RoleID, &c.RoleName); err != nil {
			return nil, 0, err
		}
		candidates = append(candidates, c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return candidates, total, nil
}

// CandidateOrderClause builds the ranking order. Under fairness, staff never
// assigned must sort first, which requires NULLS FIRST since Postgres puts
// nulls last on ascending order.
func CandidateOrderClause(prioritize bool) string {
	if prioritize {
		return "s.last_guard ASC NULLS FIRST, s.total_assignments ASC, s.name ASC"
	}
	return "s.name ASC"
}

// MonthCounts returns, per staff id, the number of duty rows in
// [monthStart, monthEnd) where the member appears as assigned or actual
// staff. The DISTINCT over (duty id, staff id) makes a row where the same
// member holds both roles count once.
func (r *candidateRepository) MonthCounts(ctx context.Context, staffIDs []int64, monthStart, monthEnd time.Time) (map[int64]int, error) {
	counts := make(map[int64]int, len(staffIDs))
	if len(staffIDs) == 0 {
		return counts, nil
	}

	const query = `
        SELECT t.staff_id, COUNT(*)
        FROM (
            SELECT DISTINCT d.id, u.staff_id
            FROM guard_duties d
            JOIN LATERAL (VALUES (d.assigned_staff_id), (d.actual_staff_id)) AS u(staff_id) ON TRUE
            WHERE d.assigned_date >= $1 AND d.assigned_date < $2
              AND u.staff_id = ANY($3)
        ) t
        GROUP BY t.staff_id`

	rows, err := r.pool.Query(ctx, query, monthStart, monthEnd, staffIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var staffID int64
		var count int
		if err := rows.Scan(&staffID, &count); err != nil {
			return nil, err
		}
		counts[staffID] = count
	}
	return counts, rows.Err()
}
