package table

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// AggFunc identifies a group aggregation.
type AggFunc int

const (
	// AggSum adds the numeric values of a group, skipping Missing and
	// non-numeric cells. A group with nothing to add sums to 0.
	AggSum AggFunc = iota
	// AggFirst takes the first non-missing value of a group, Missing when the
	// whole group is missing.
	AggFirst
	// AggMean takes the arithmetic mean of the numeric values of a group,
	// ignoring Missing; Missing when no numeric value exists.
	AggMean
)

// Agg names one aggregated output column: source column, aggregation, and an
// optional output name (defaults to the source name).
type Agg struct {
	Col string
	Fn  AggFunc
	As  string
}

type accumulator struct {
	sum   decimal.Decimal
	count int64
	first Value
	any   bool
}

func (a *accumulator) add(v Value, fn AggFunc) {
	switch fn {
	case AggFirst:
		if !a.any && !v.IsMissing() {
			a.first = v
			a.any = true
		}
	default:
		if n, ok := v.Num(); ok {
			a.sum = a.sum.Add(n)
			a.count++
			a.any = true
		}
	}
}

func (a *accumulator) result(fn AggFunc) Value {
	switch fn {
	case AggSum:
		return Number(a.sum)
	case AggFirst:
		if !a.any {
			return Missing()
		}
		return a.first
	default: // AggMean
		if a.count == 0 {
			return Missing()
		}
		return Number(a.sum.Div(decimal.NewFromInt(a.count)))
	}
}

// GroupBy groups rows by the key columns and aggregates the listed columns.
// Output columns are the keys followed by the aggregates; groups appear in
// first-appearance order.
func (t *Table) GroupBy(keys []string, aggs ...Agg) (*Table, error) {
	keyIdx := make([]int, len(keys))
	for i, k := range keys {
		j, ok := t.index[k]
		if !ok {
			return nil, fmt.Errorf("group key %q not present", k)
		}
		keyIdx[i] = j
	}
	aggIdx := make([]int, len(aggs))
	outCols := append([]string(nil), keys...)
	for i, a := range aggs {
		j, ok := t.index[a.Col]
		if !ok {
			return nil, fmt.Errorf("aggregate column %q not present", a.Col)
		}
		aggIdx[i] = j
		name := a.As
		if name == "" {
			name = a.Col
		}
		outCols = append(outCols, name)
	}

	type group struct {
		keyVals []Value
		accs    []accumulator
	}
	var order []string
	groups := make(map[string]*group)
	for _, row := range t.rows {
		var b strings.Builder
		for _, j := range keyIdx {
			b.WriteString(row[j].key())
			b.WriteByte(0x1f)
		}
		gk := b.String()
		g, ok := groups[gk]
		if !ok {
			keyVals := make([]Value, len(keyIdx))
			for i, j := range keyIdx {
				keyVals[i] = row[j]
			}
			g = &group{keyVals: keyVals, accs: make([]accumulator, len(aggs))}
			groups[gk] = g
			order = append(order, gk)
		}
		for i, j := range aggIdx {
			g.accs[i].add(row[j], aggs[i].Fn)
		}
	}

	out, err := New(outCols...)
	if err != nil {
		return nil, err
	}
	for _, gk := range order {
		g := groups[gk]
		vals := append([]Value(nil), g.keyVals...)
		for i := range aggs {
			vals = append(vals, g.accs[i].result(aggs[i].Fn))
		}
		out.rows = append(out.rows, vals)
	}
	return out, nil
}

// Pivot turns repeated (index, category, value) rows into one row per index
// key with one summed column per distinct category, named by nameFor applied
// to the category's rendering. Duplicate (index, category) pairs are summed;
// an (index, category) pair with no numeric observation stays Missing, a
// genuinely absent cell rather than a zero. Pivot columns appear in sorted
// category order; index keys keep first-appearance order.
func (t *Table) Pivot(indexCol, catCol, valCol string, nameFor func(string) string) (*Table, error) {
	for _, c := range []string{indexCol, catCol, valCol} {
		if !t.HasColumn(c) {
			return nil, fmt.Errorf("pivot column %q not present", c)
		}
	}

	type cell struct {
		sum decimal.Decimal
		any bool
	}
	var keyOrder []string
	keyVals := make(map[string]Value)
	cats := make(map[string]bool)
	cells := make(map[string]map[string]*cell)

	for i := range t.rows {
		r := Row{t, i}
		kv := r.Value(indexCol)
		k := kv.key()
		if _, ok := cells[k]; !ok {
			cells[k] = make(map[string]*cell)
			keyVals[k] = kv
			keyOrder = append(keyOrder, k)
		}
		cat := r.Value(catCol).Text()
		cats[cat] = true
		c, ok := cells[k][cat]
		if !ok {
			c = &cell{}
			cells[k][cat] = c
		}
		if n, ok := r.Value(valCol).Num(); ok {
			c.sum = c.sum.Add(n)
			c.any = true
		}
	}

	catOrder := make([]string, 0, len(cats))
	for cat := range cats {
		catOrder = append(catOrder, cat)
	}
	sort.Strings(catOrder)

	cols := []string{indexCol}
	for _, cat := range catOrder {
		cols = append(cols, nameFor(cat))
	}
	out, err := New(cols...)
	if err != nil {
		return nil, err
	}
	for _, k := range keyOrder {
		vals := []Value{keyVals[k]}
		for _, cat := range catOrder {
			if c, ok := cells[k][cat]; ok && c.any {
				vals = append(vals, Number(c.sum))
			} else {
				vals = append(vals, Missing())
			}
		}
		out.rows = append(out.rows, vals)
	}
	return out, nil
}
