package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// selectByFK runs query with fk bound to $1 and scans every row.
// The query is expected to order its rows.
func selectByFK[T any](ctx context.Context, q querier, query string, fk any, scan func(pgx.Rows) (T, error)) ([]T, error) {
	rows, err := q.Query(ctx, query, fk)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []T
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// insertReturningID inserts one row and returns the stored id.
func insertReturningID(ctx context.Context, q querier, table string, columns []string, values ...any) (uuid.UUID, error) {
	sql := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING id",
		pgx.Identifier{table}.Sanitize(), joinColumns(columns), placeholders(len(columns), 1))

	var id uuid.UUID
	if err := q.QueryRow(ctx, sql, values...).Scan(&id); err != nil {
		return uuid.Nil, fmt.Errorf("failed to insert into %s: %w", table, err)
	}
	return id, nil
}

// copyBatch bulk-inserts rows with COPY. An empty batch is a no-op.
func copyBatch(ctx context.Context, q querier, table string, columns []string, rows [][]any) error {
	if len(rows) == 0 {
		return nil
	}
	n, err := q.CopyFrom(ctx, pgx.Identifier{table}, columns, pgx.CopyFromRows(rows))
	if err != nil {
		return fmt.Errorf("failed to copy into %s: %w", table, err)
	}
	if int(n) != len(rows) {
		return fmt.Errorf("failed to copy into %s: wrote %d of %d rows", table, n, len(rows))
	}
	return nil
}

// deleteByFK removes every row of table whose fk column equals id.
func deleteByFK(ctx context.Context, q querier, table, fkColumn string, id any) (int64, error) {
	sql := fmt.Sprintf("DELETE FROM %s WHERE %s = $1",
		pgx.Identifier{table}.Sanitize(), pgx.Identifier{fkColumn}.Sanitize())
	tag, err := q.Exec(ctx, sql, id)
	if err != nil {
		return 0, fmt.Errorf("failed to delete from %s: %w", table, err)
	}
	return tag.RowsAffected(), nil
}

// upsert inserts one row or, on a conflictColumns clash, overwrites every
// other column. It returns the row id.
func upsert(ctx context.Context, q querier, table string, conflictColumns, columns []string, values ...any) (uuid.UUID, error) {
	conflict := make(map[string]bool, len(conflictColumns))
	for _, c := range conflictColumns {
		conflict[c] = true
	}
	sets := make([]string, 0, len(columns))
	for _, c := range columns {
		if conflict[c] {
			continue
		}
		ident := pgx.Identifier{c}.Sanitize()
		sets = append(sets, fmt.Sprintf("%s = EXCLUDED.%s", ident, ident))
	}

	sql := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) ON CONFLICT (%s) DO UPDATE SET %s RETURNING id",
		pgx.Identifier{table}.Sanitize(),
		joinColumns(columns),
		placeholders(len(columns), 1),
		joinColumns(conflictColumns),
		strings.Join(sets, ", "))

	var id uuid.UUID
	if err := q.QueryRow(ctx, sql, values...).Scan(&id); err != nil {
		return uuid.Nil, fmt.Errorf("failed to upsert %s: %w", table, err)
	}
	return id, nil
}

func joinColumns(columns []string) string {
	quoted := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = pgx.Identifier{c}.Sanitize()
	}
	return strings.Join(quoted, ", ")
}

func placeholders(n, start int) string {
	p := make([]string, n)
	for i := range p {
		p[i] = fmt.Sprintf("$%d", start+i)
	}
	return strings.Join(p, ", ")
}
