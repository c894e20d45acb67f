package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"clubsite/internal/domain"
)

const uniqueViolation = "23505"

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// mapError translates driver errors into domain errors.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		if pqErr.Constraint != "" {
			return fmt.Errorf("%s: %w", pqErr.Constraint, domain.ErrConflict)
		}
		return domain.ErrConflict
	}
	return err
}

// whereClause accumulates AND-ed conditions with positional arguments.
type whereClause struct {
	conds []string
	args  []any
}

// add appends cond, in which %d is replaced by the argument's position.
func (w *whereClause) add(cond string, arg any) {
	w.args = append(w.args, arg)
	w.conds = append(w.conds, fmt.Sprintf(cond, len(w.args)))
}

func (w *whereClause) String() string {
	if len(w.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conds, " AND ")
}

// filterWhere builds the WHERE clause for a resource listing. dateColumn is
// compared against filter.Now for upcoming listings and may be empty for
// kinds without a date.
func filterWhere(filter domain.ListFilter, dateColumn string) *whereClause {
	w := &whereClause{}
	if filter.Status != nil {
		w.add("status = $%d", string(*filter.Status))
	}
	if filter.Upcoming && dateColumn != "" {
		w.add(dateColumn+" >= $%d", filter.Now)
	}
	return w
}

// paginate appends LIMIT and OFFSET when p has a page size.
func paginate(query string, args []any, p domain.PaginationParams) (string, []any) {
	if !p.Limited() {
		return query, args
	}
	n := len(args)
	query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", n+1, n+2)
	return query, append(args, p.PageSize, p.Offset())
}

func slugExists(ctx context.Context, db *sql.DB, table, slug, excludeID string) (bool, error) {
	query := fmt.Sprintf(`SELECT EXISTS(SELECT 1 FROM %s WHERE slug = $1 AND ($2 = '' OR id::text <> $2))`, table)
	var exists bool
	if err := db.QueryRowContext(ctx, query, slug, excludeID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func deleteByID(ctx context.Context, db *sql.DB, table, id string) error {
	result, err := db.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, table), id)
	if err != nil {
		return mapError(err)
	}
	return requireAffected(result)
}

func countWhere(ctx context.Context, db *sql.DB, table string, w *whereClause) (int, error) {
	var n int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM `+table+w.String(), w.args...).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func requireAffected(result sql.Result) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	return &ns.String
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func timePtr(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	return &nt.Time
}
