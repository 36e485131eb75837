// Package table implements the in-memory tabular model the report pipeline
// runs on: ordered rows of typed cells under unique column names, with the
// relational operations (select, concat, group, pivot, join) the
// reconciliation stages are built from.
//
// Every operation returns a new table; callers' references are never mutated.
package table

import (
	"fmt"
	"sort"
	"strings"
)

// Table is an ordered sequence of rows, each row an aligned mapping from
// column name to Value. Column names are unique: a duplicate logical name is
// rejected at construction, never resolved positionally at use time.
type Table struct {
	cols  []string
	index map[string]int
	rows  [][]Value
}

// New creates an empty table with the given column set.
// Duplicate column names are an error.
func New(cols ...string) (*Table, error) {
	index := make(map[string]int, len(cols))
	for i, c := range cols {
		if _, dup := index[c]; dup {
			return nil, fmt.Errorf("duplicate column %q", c)
		}
		index[c] = i
	}
	return &Table{cols: append([]string(nil), cols...), index: index, rows: nil}, nil
}

// Columns returns a copy of the column names in order.
func (t *Table) Columns() []string {
	return append([]string(nil), t.cols...)
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.rows) }

// HasColumn reports whether the named column exists.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.index[name]
	return ok
}

// AppendRow adds a row. The number of values must match the column count.
func (t *Table) AppendRow(vals ...Value) error {
	if len(vals) != len(t.cols) {
		return fmt.Errorf("row has %d values, table has %d columns", len(vals), len(t.cols))
	}
	t.rows = append(t.rows, append([]Value(nil), vals...))
	return nil
}

// At returns the cell at the given row for the named column.
// The second return is false when the column does not exist.
func (t *Table) At(row int, col string) (Value, bool) {
	i, ok := t.index[col]
	if !ok {
		return Missing(), false
	}
	return t.rows[row][i], true
}

// Row is a read-only view of one table row, used by row-wise callbacks.
type Row struct {
	t *Table
	i int
}

// Value returns the cell under the named column, or Missing when the column
// does not exist.
func (r Row) Value(col string) Value {
	v, _ := r.t.At(r.i, col)
	return v
}

// ── Column-set operations ─────────────────────────────────────────────────────

// Select returns a table restricted to exactly the named columns, in the
// given order. An absent column is an error.
func (t *Table) Select(cols ...string) (*Table, error) {
	idxs := make([]int, len(cols))
	var missing []string
	for i, c := range cols {
		j, ok := t.index[c]
		if !ok {
			missing = append(missing, c)
			continue
		}
		idxs[i] = j
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("columns not present: %s", strings.Join(missing, ", "))
	}
	out, err := New(cols...)
	if err != nil {
		return nil, err
	}
	for _, row := range t.rows {
		vals := make([]Value, len(idxs))
		for i, j := range idxs {
			vals[i] = row[j]
		}
		out.rows = append(out.rows, vals)
	}
	return out, nil
}

// Drop returns a table without the named columns. Columns that do not exist
// are ignored.
func (t *Table) Drop(cols ...string) *Table {
	dropped := make(map[string]bool, len(cols))
	for _, c := range cols {
		dropped[c] = true
	}
	var keep []string
	for _, c := range t.cols {
		if !dropped[c] {
			keep = append(keep, c)
		}
	}
	out, _ := t.Select(keep...)
	return out
}

// Rename returns a table with source column names replaced per the mapping.
// Renaming a column that does not exist is ignored; renaming onto a name
// already taken by another column is an error.
func (t *Table) Rename(names map[string]string) (*Table, error) {
	cols := make([]string, len(t.cols))
	for i, c := range t.cols {
		if n, ok := names[c]; ok {
			cols[i] = n
		} else {
			cols[i] = c
		}
	}
	out, err := New(cols...)
	if err != nil {
		return nil, fmt.Errorf("rename: %w", err)
	}
	for _, row := range t.rows {
		out.rows = append(out.rows, append([]Value(nil), row...))
	}
	return out, nil
}

// Reorder returns a table with columns in the given order, which must be a
// permutation of the existing column set.
func (t *Table) Reorder(cols ...string) (*Table, error) {
	if len(cols) != len(t.cols) {
		return nil, fmt.Errorf("reorder lists %d columns, table has %d", len(cols), len(t.cols))
	}
	return t.Select(cols...)
}

// Concat concatenates tables that share one column set. Later tables may list
// their columns in a different order; rows are realigned to the first table's
// order. A differing column set is an error.
func Concat(tables ...*Table) (*Table, error) {
	if len(tables) == 0 {
		return nil, fmt.Errorf("nothing to concatenate")
	}
	first := tables[0]
	out, err := New(first.cols...)
	if err != nil {
		return nil, err
	}
	for _, row := range first.rows {
		out.rows = append(out.rows, append([]Value(nil), row...))
	}
	for _, t := range tables[1:] {
		if len(t.cols) != len(first.cols) {
			return nil, fmt.Errorf("column set mismatch: %v vs %v", t.cols, first.cols)
		}
		aligned, err := t.Select(first.cols...)
		if err != nil {
			return nil, fmt.Errorf("column set mismatch: %w", err)
		}
		out.rows = append(out.rows, aligned.rows...)
	}
	return out, nil
}

// ── Row-wise operations ───────────────────────────────────────────────────────

// SortBy returns a stably sorted copy. less receives row views of this table.
func (t *Table) SortBy(less func(a, b Row) bool) *Table {
	order := make([]int, len(t.rows))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return less(Row{t, order[i]}, Row{t, order[j]})
	})
	out, _ := New(t.cols...)
	for _, i := range order {
		out.rows = append(out.rows, append([]Value(nil), t.rows[i]...))
	}
	return out
}

// DropDuplicates removes rows that are exact duplicates across all columns,
// keeping the first occurrence. Applying it twice yields the same table.
func (t *Table) DropDuplicates() *Table {
	out, _ := New(t.cols...)
	seen := make(map[string]bool, len(t.rows))
	for _, row := range t.rows {
		var b strings.Builder
		for _, v := range row {
			b.WriteString(v.key())
			b.WriteByte(0x1f)
		}
		k := b.String()
		if seen[k] {
			continue
		}
		seen[k] = true
		out.rows = append(out.rows, append([]Value(nil), row...))
	}
	return out
}

// MapColumn returns a table with fn applied to every cell of the named
// column. An absent column is an error.
func (t *Table) MapColumn(col string, fn func(Value) Value) (*Table, error) {
	j, ok := t.index[col]
	if !ok {
		return nil, fmt.Errorf("column %q not present", col)
	}
	out, _ := New(t.cols...)
	for _, row := range t.rows {
		vals := append([]Value(nil), row...)
		vals[j] = fn(vals[j])
		out.rows = append(out.rows, vals)
	}
	return out, nil
}

// ZeroToMissing replaces the literal numeric 0 with Missing in the named
// columns. Only exact numeric zero is replaced; empty strings and other falsy
// renderings are left alone. Absent columns are ignored.
func (t *Table) ZeroToMissing(cols ...string) *Table {
	out := t
	for _, c := range cols {
		if !out.HasColumn(c) {
			continue
		}
		out, _ = out.MapColumn(c, func(v Value) Value {
			if n, ok := v.Num(); ok && n.IsZero() {
				return Missing()
			}
			return v
		})
	}
	if out == t {
		out, _ = t.Select(t.cols...)
	}
	return out
}

// FillMissing replaces Missing cells in the named columns with the given
// value. An absent column is an error.
func (t *Table) FillMissing(fill Value, cols ...string) (*Table, error) {
	out := t
	for _, c := range cols {
		var err error
		out, err = out.MapColumn(c, func(v Value) Value {
			if v.IsMissing() {
				return fill
			}
			return v
		})
		if err != nil {
			return nil, err
		}
	}
	if out == t {
		out, _ = t.Select(t.cols...)
	}
	return out, nil
}

// WithColumn returns a table extended with a derived column computed row-wise.
// The new name must not collide with an existing column.
func (t *Table) WithColumn(name string, fn func(Row) Value) (*Table, error) {
	out, err := New(append(t.Columns(), name)...)
	if err != nil {
		return nil, err
	}
	for i, row := range t.rows {
		vals := append(append([]Value(nil), row...), fn(Row{t, i}))
		out.rows = append(out.rows, vals)
	}
	return out, nil
}
