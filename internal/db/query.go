package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strings"
	"time"
)

// ErrNotFound is returned by Single when no row matches.
var ErrNotFound = errors.New("record not found")

// Row is one record keyed by column name.
type Row map[string]any

var identifier = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

type predicate struct {
	column string
	value  any
}

type ordering struct {
	column string
	asc    bool
}

// Query is a fluent select/update/delete against one table. Predicates are
// equality checks joined with AND.
type Query struct {
	db    *DB
	table string
	where []predicate
	order []ordering
	limit int
	err   error
}

func (d *DB) From(table string) *Query {
	q := &Query{db: d, table: table}
	if !identifier.MatchString(table) {
		q.err = fmt.Errorf("invalid table name %q", table)
	}
	return q
}

// Eq adds column = value. A nil value matches NULL.
func (q *Query) Eq(column string, value any) *Query {
	if !identifier.MatchString(column) {
		q.err = fmt.Errorf("invalid column name %q", column)
		return q
	}
	q.where = append(q.where, predicate{column: column, value: value})
	return q
}

func (q *Query) Order(column string, asc bool) *Query {
	if !identifier.MatchString(column) {
		q.err = fmt.Errorf("invalid column name %q", column)
		return q
	}
	q.order = append(q.order, ordering{column: column, asc: asc})
	return q
}

func (q *Query) Limit(n int) *Query {
	q.limit = n
	return q
}

func (q *Query) Select(ctx context.Context) ([]Row, error) {
	if q.err != nil {
		return nil, q.err
	}
	args := []any{}
	var b strings.Builder
	fmt.Fprintf(&b, "SELECT * FROM %s", q.table)
	q.writeWhere(&b, &args)
	q.writeOrder(&b)
	if q.limit > 0 {
		fmt.Fprintf(&b, " LIMIT %d", q.limit)
	}
	return q.db.queryRows(ctx, b.String(), args)
}

// Single returns the only matching row or ErrNotFound.
func (q *Query) Single(ctx context.Context) (Row, error) {
	rows, err := q.Limit(1).Select(ctx)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%s: %w", q.table, ErrNotFound)
	}
	return rows[0], nil
}

// Update applies patch to the matching rows and returns them as written. A
// predicate that matches nothing returns no rows and no error.
func (q *Query) Update(ctx context.Context, patch Row) ([]Row, error) {
	if q.err != nil {
		return nil, q.err
	}
	if len(patch) == 0 {
		return nil, fmt.Errorf("update %s: empty patch", q.table)
	}
	columns, err := sortedColumns(patch)
	if err != nil {
		return nil, err
	}

	args := []any{}
	var b strings.Builder
	fmt.Fprintf(&b, "UPDATE %s SET ", q.table)
	for i, column := range columns {
		if i > 0 {
			b.WriteString(", ")
		}
		args = append(args, q.db.dialect.encode(patch[column]))
		fmt.Fprintf(&b, "%s = %s", column, q.db.dialect.placeholder(len(args)))
	}
	q.writeWhere(&b, &args)
	b.WriteString(" RETURNING *")
	return q.db.queryRows(ctx, b.String(), args)
}

// Delete removes the matching rows and reports how many went away.
func (q *Query) Delete(ctx context.Context) (int64, error) {
	if q.err != nil {
		return 0, q.err
	}
	args := []any{}
	var b strings.Builder
	fmt.Fprintf(&b, "DELETE FROM %s", q.table)
	q.writeWhere(&b, &args)

	query := b.String()
	started := time.Now()
	result, err := q.db.sql.ExecContext(ctx, query, args...)
	q.db.logQuery(query, args, err, started)
	if err != nil {
		return 0, fmt.Errorf("delete %s: %w", q.table, err)
	}
	return result.RowsAffected()
}

// Exec runs a raw statement outside the fluent builder, for maintenance such
// as schema repair. It reports how many rows were affected.
func (d *DB) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	started := time.Now()
	result, err := d.sql.ExecContext(ctx, query, args...)
	d.logQuery(query, args, err, started)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// Insert writes rows into table and returns them with store-assigned
// columns filled in. All rows must share the same columns.
func (d *DB) Insert(ctx context.Context, table string, rows ...Row) ([]Row, error) {
	if !identifier.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	columns, err := sortedColumns(rows[0])
	if err != nil {
		return nil, err
	}

	args := make([]any, 0, len(rows)*len(columns))
	var b strings.Builder
	fmt.Fprintf(&b, "INSERT INTO %s (%s) VALUES ", table, strings.Join(columns, ", "))
	for i, row := range rows {
		if len(row) != len(columns) {
			return nil, fmt.Errorf("insert %s: row %d has different columns", table, i)
		}
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString("(")
		for j, column := range columns {
			value, ok := row[column]
			if !ok {
				return nil, fmt.Errorf("insert %s: row %d is missing column %s", table, i, column)
			}
			if j > 0 {
				b.WriteString(", ")
			}
			args = append(args, d.dialect.encode(value))
			b.WriteString(d.dialect.placeholder(len(args)))
		}
		b.WriteString(")")
	}
	b.WriteString(" RETURNING *")
	return d.queryRows(ctx, b.String(), args)
}

func (q *Query) writeWhere(b *strings.Builder, args *[]any) {
	for i, p := range q.where {
		if i == 0 {
			b.WriteString(" WHERE ")
		} else {
			b.WriteString(" AND ")
		}
		if p.value == nil {
			fmt.Fprintf(b, "%s IS NULL", p.column)
			continue
		}
		*args = append(*args, q.db.dialect.encode(p.value))
		fmt.Fprintf(b, "%s = %s", p.column, q.db.dialect.placeholder(len(*args)))
	}
}

func (q *Query) writeOrder(b *strings.Builder) {
	for i, o := range q.order {
		if i == 0 {
			b.WriteString(" ORDER BY ")
		} else {
			b.WriteString(", ")
		}
		direction := "DESC"
		if o.asc {
			direction = "ASC"
		}
		fmt.Fprintf(b, "%s %s", o.column, direction)
	}
}

func (d *DB) queryRows(ctx context.Context, query string, args []any) ([]Row, error) {
	started := time.Now()
	rows, err := d.sql.QueryContext(ctx, query, args...)
	d.logQuery(query, args, err, started)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRows(rows)
}

func scanRows(rows *sql.Rows) ([]Row, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var result []Row
	for rows.Next() {
		values := make([]any, len(columns))
		targets := make([]any, len(columns))
		for i := range values {
			targets[i] = &values[i]
		}
		if err := rows.Scan(targets...); err != nil {
			return nil, err
		}
		row := make(Row, len(columns))
		for i, column := range columns {
			if raw, ok := values[i].([]byte); ok {
				row[column] = string(raw)
				continue
			}
			row[column] = values[i]
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

func sortedColumns(row Row) ([]string, error) {
	columns := make([]string, 0, len(row))
	for column := range row {
		if !identifier.MatchString(column) {
			return nil, fmt.Errorf("invalid column name %q", column)
		}
		columns = append(columns, column)
	}
	slices.Sort(columns)
	return columns, nil
}
