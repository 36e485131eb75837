package core_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"bi-reports/internal/table"
)

func mustTable(t *testing.T, cols []string, rows ...[]table.Value) *table.Table {
	t.Helper()
	tbl, err := table.New(cols...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	for _, r := range rows {
		if err := tbl.AppendRow(r...); err != nil {
			t.Fatalf("AppendRow: %v", err)
		}
	}
	return tbl
}

func num(s string) table.Value {
	return table.Number(decimal.RequireFromString(s))
}

func day(s string) table.Value {
	ts, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return table.Date(ts)
}

func cell(t *testing.T, tbl *table.Table, row int, col string) table.Value {
	t.Helper()
	v, ok := tbl.At(row, col)
	if !ok {
		t.Fatalf("column %q not present in %v", col, tbl.Columns())
	}
	return v
}

// rowByKey finds the row index whose key column renders as want.
func rowByKey(t *testing.T, tbl *table.Table, keyCol, want string) int {
	t.Helper()
	for i := 0; i < tbl.Len(); i++ {
		if v, _ := tbl.At(i, keyCol); v.Text() == want {
			return i
		}
	}
	t.Fatalf("no row with %s = %q", keyCol, want)
	return -1
}
