package table

import "fmt"

// JoinKind selects join semantics.
type JoinKind int

const (
	// LeftJoin keeps every left row; unmatched right cells become Missing.
	LeftJoin JoinKind = iota
	// InnerJoin keeps only left rows with a match on the right.
	InnerJoin
)

// Join joins t (left) with right on the named key column. The right table is
// expected to be unique on the key (reconciled tables carry one row per
// product); when it is not, the first occurrence wins, deterministically.
// A Missing key never matches. Output columns are the left columns followed
// by the right table's non-key columns; left row order is preserved.
func (t *Table) Join(right *Table, on string, kind JoinKind) (*Table, error) {
	if !t.HasColumn(on) {
		return nil, fmt.Errorf("join key %q not present in left table", on)
	}
	if !right.HasColumn(on) {
		return nil, fmt.Errorf("join key %q not present in right table", on)
	}

	var rightCols []string
	var rightIdx []int
	for i, c := range right.cols {
		if c == on {
			continue
		}
		rightCols = append(rightCols, c)
		rightIdx = append(rightIdx, i)
	}

	byKey := make(map[string][]Value, right.Len())
	for _, row := range right.rows {
		kv := row[right.index[on]]
		if kv.IsMissing() {
			continue
		}
		k := kv.key()
		if _, dup := byKey[k]; dup {
			continue
		}
		vals := make([]Value, len(rightIdx))
		for i, j := range rightIdx {
			vals[i] = row[j]
		}
		byKey[k] = vals
	}

	out, err := New(append(t.Columns(), rightCols...)...)
	if err != nil {
		return nil, fmt.Errorf("join: %w", err)
	}
	leftKey := t.index[on]
	for _, row := range t.rows {
		kv := row[leftKey]
		var match []Value
		if !kv.IsMissing() {
			match = byKey[kv.key()]
		}
		if match == nil {
			if kind == InnerJoin {
				continue
			}
			match = make([]Value, len(rightCols))
			for i := range match {
				match[i] = Missing()
			}
		}
		out.rows = append(out.rows, append(append([]Value(nil), row...), match...))
	}
	return out, nil
}
