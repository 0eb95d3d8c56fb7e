// Package table implements the generic table accessor: uniform fetch, insert
// and update operations over named tables with equality-filter predicates and
// optional column projection. It is the only place that builds SQL; every
// store is a typed veneer on top of it.
package table

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/lib/pq"
)

// ErrUniqueViolation marks an insert rejected by a uniqueness constraint.
// Stores surface it so callers can map it to a conflict instead of a fault.
var ErrUniqueViolation = errors.New("unique constraint violation")

// Row is one database row keyed by column name. []byte values are normalized
// to string on scan.
type Row map[string]any

// Filter is a column -> exact-match value predicate. A nil or empty filter
// matches every row.
type Filter map[string]any

// InsertResult reports the outcome of an Insert. Data carries the persisted
// rows including generated ids and defaulted columns.
type InsertResult struct {
	Inserted bool
	Data     []Row
}

// UpdateResult reports the outcome of an Update. A filter matching zero rows
// yields Updated=false, not an error.
type UpdateResult struct {
	Updated bool
}

// Accessor executes single-statement operations against the database. It
// never opens transactions; multi-step workflows composed from it are not
// atomic.
type Accessor struct {
	db *sql.DB
}

// New creates an accessor over the given database handle.
func New(db *sql.DB) *Accessor {
	return &Accessor{db: db}
}

var identPattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

func checkIdent(name string) error {
	if !identPattern.MatchString(name) {
		return fmt.Errorf("invalid identifier %q", name)
	}
	return nil
}

// sortedKeys gives filters and patches a deterministic column order so
// statement text is stable.
func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Fetch returns all rows of table matching filter, projected to columns.
// An empty projection selects all columns. Zero matches return an empty
// slice and no error.
func (a *Accessor) Fetch(ctx context.Context, table string, filter Filter, columns ...string) ([]Row, error) {
	if err := checkIdent(table); err != nil {
		return nil, err
	}

	projection := "*"
	if len(columns) > 0 {
		for _, c := range columns {
			if err := checkIdent(c); err != nil {
				return nil, err
			}
		}
		projection = strings.Join(columns, ", ")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "SELECT %s FROM %s", projection, table)

	args, err := appendWhere(&b, filter, 1)
	if err != nil {
		return nil, err
	}
	b.WriteString(" ORDER BY id")

	rows, err := a.db.QueryContext(ctx, b.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", table, err)
	}
	defer rows.Close()

	return scanRows(rows)
}

// Insert persists one record and returns the stored row. It fails only on a
// constraint violation or a storage fault; unique clashes are wrapped in
// ErrUniqueViolation.
func (a *Accessor) Insert(ctx context.Context, table string, record Row) (InsertResult, error) {
	if err := checkIdent(table); err != nil {
		return InsertResult{}, err
	}
	if len(record) == 0 {
		return InsertResult{}, fmt.Errorf("insert %s: empty record", table)
	}

	cols := sortedKeys(record)
	placeholders := make([]string, len(cols))
	args := make([]any, len(cols))
	for i, c := range cols {
		if err := checkIdent(c); err != nil {
			return InsertResult{}, err
		}
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = record[c]
	}

	query := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s) RETURNING *",
		table, strings.Join(cols, ", "), strings.Join(placeholders, ", "),
	)

	rows, err := a.db.QueryContext(ctx, query, args...)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return InsertResult{}, fmt.Errorf("insert %s: %w: %v", table, ErrUniqueViolation, pqErr.Detail)
		}
		return InsertResult{}, fmt.Errorf("insert %s: %w", table, err)
	}
	defer rows.Close()

	data, err := scanRows(rows)
	if err != nil {
		return InsertResult{}, err
	}
	return InsertResult{Inserted: len(data) > 0, Data: data}, nil
}

// Update applies patch to every row matching filter.
func (a *Accessor) Update(ctx context.Context, table string, patch Row, filter Filter) (UpdateResult, error) {
	if err := checkIdent(table); err != nil {
		return UpdateResult{}, err
	}
	if len(patch) == 0 {
		return UpdateResult{}, fmt.Errorf("update %s: empty patch", table)
	}

	cols := sortedKeys(patch)
	assignments := make([]string, len(cols))
	args := make([]any, 0, len(cols)+len(filter))
	for i, c := range cols {
		if err := checkIdent(c); err != nil {
			return UpdateResult{}, err
		}
		assignments[i] = fmt.Sprintf("%s = $%d", c, i+1)
		args = append(args, patch[c])
	}

	var b strings.Builder
	fmt.Fprintf(&b, "UPDATE %s SET %s", table, strings.Join(assignments, ", "))

	whereArgs, err := appendWhere(&b, filter, len(cols)+1)
	if err != nil {
		return UpdateResult{}, err
	}
	args = append(args, whereArgs...)

	result, err := a.db.ExecContext(ctx, b.String(), args...)
	if err != nil {
		return UpdateResult{}, fmt.Errorf("update %s: %w", table, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return UpdateResult{}, fmt.Errorf("update %s: %w", table, err)
	}
	return UpdateResult{Updated: affected > 0}, nil
}

// Truncate empties the given tables. Test support only.
func (a *Accessor) Truncate(ctx context.Context, tables ...string) error {
	for _, t := range tables {
		if err := checkIdent(t); err != nil {
			return err
		}
		if _, err := a.db.ExecContext(ctx, fmt.Sprintf("TRUNCATE %s RESTART IDENTITY CASCADE", t)); err != nil {
			return fmt.Errorf("truncate %s: %w", t, err)
		}
	}
	return nil
}

func appendWhere(b *strings.Builder, filter Filter, firstPlaceholder int) ([]any, error) {
	if len(filter) == 0 {
		return nil, nil
	}
	keys := sortedKeys(filter)
	args := make([]any, 0, len(keys))
	clauses := make([]string, 0, len(keys))
	for i, k := range keys {
		if err := checkIdent(k); err != nil {
			return nil, err
		}
		clauses = append(clauses, fmt.Sprintf("%s = $%d", k, firstPlaceholder+i))
		args = append(args, filter[k])
	}
	b.WriteString(" WHERE ")
	b.WriteString(strings.Join(clauses, " AND "))
	return args, nil
}

func scanRows(rows *sql.Rows) ([]Row, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	result := []Row{}
	values := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for i := range values {
		ptrs[i] = &values[i]
	}

	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		row := make(Row, len(cols))
		for i, c := range cols {
			if b, ok := values[i].([]byte); ok {
				row[c] = string(b)
			} else {
				row[c] = values[i]
			}
		}
		result = append(result, row)
	}
	return result, rows.Err()
}
