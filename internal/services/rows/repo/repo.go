// Package repo provides sql access to table_row for postgres and sqlite
//
// Statements use $n placeholders, each referenced once and in ascending order,
// which both pgx and go-sqlite3 bind by position.
package repo

import (
	"context"
	"slices"
	"strconv"
	"strings"

	"rowkeeper/internal/modkit/repokit"
	"rowkeeper/internal/platform/store"
	"rowkeeper/internal/services/rows/domain"
)

type (
	// SQL binds the repo to a Queryer or an open transaction
	SQL struct{}
	// queries implements domain.StorageRepo
	queries struct{ q repokit.Queryer }
)

// New returns the binder, statements are shared by both dialects
func New() repokit.Binder[domain.StorageRepo] { return SQL{} }

// Bind wires a Queryer to the repo
func (SQL) Bind(q repokit.Queryer) domain.StorageRepo { return &queries{q: q} }

const columns = "type_number, type_selector, type_free_text, created_at"

func (r *queries) Insert(ctx context.Context, row domain.Row) (int64, error) {
	const sql = `INSERT INTO table_row (` + columns + `) VALUES ($1, $2, $3, $4) RETURNING id`
	return store.Scalar[int64](ctx, r.q, sql, row.TypeNumber, row.TypeSelector, row.TypeFreeText, row.CreatedAt)
}

func (r *queries) InsertMany(ctx context.Context, rows []domain.Row) ([]int64, error) {
	if len(rows) == 0 {
		return nil, nil
	}
	var b strings.Builder
	b.WriteString(`INSERT INTO table_row (` + columns + `) VALUES `)
	args := make([]any, 0, len(rows)*4)
	for i, row := range rows {
		if i > 0 {
			b.WriteString(", ")
		}
		n := i * 4
		b.WriteString("($" + strconv.Itoa(n+1) + ", $" + strconv.Itoa(n+2) + ", $" + strconv.Itoa(n+3) + ", $" + strconv.Itoa(n+4) + ")")
		args = append(args, row.TypeNumber, row.TypeSelector, row.TypeFreeText, row.CreatedAt)
	}
	b.WriteString(" RETURNING id")

	ids, err := store.Many(ctx, r.q, scanID, b.String(), args...)
	if err != nil {
		return nil, err
	}
	// ids are assigned in VALUES order but RETURNING order is unspecified
	slices.Sort(ids)
	return ids, nil
}

func (r *queries) Count(ctx context.Context) (int64, error) {
	return store.Scalar[int64](ctx, r.q, `SELECT COUNT(*) FROM table_row`)
}

func (r *queries) Delete(ctx context.Context, id int64) (bool, error) {
	tag, err := r.q.Exec(ctx, `DELETE FROM table_row WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *queries) Page(ctx context.Context, offset, limit int) ([]domain.Row, error) {
	const sql = `SELECT id, ` + columns + ` FROM table_row ORDER BY id LIMIT $1 OFFSET $2`
	return store.Many(ctx, r.q, scanRow, sql, limit, offset)
}

func (r *queries) All(ctx context.Context) ([]domain.Row, error) {
	return store.Many(ctx, r.q, scanRow, `SELECT id, `+columns+` FROM table_row ORDER BY id`)
}

func scanID(s store.Row) (int64, error) {
	var id int64
	err := s.Scan(&id)
	return id, err
}

func scanRow(s store.Row) (domain.Row, error) {
	var row domain.Row
	if err := s.Scan(&row.ID, &row.TypeNumber, &row.TypeSelector, &row.TypeFreeText, &row.CreatedAt); err != nil {
		return row, err
	}
	row.CreatedAt = row.CreatedAt.UTC()
	return row, nil
}
