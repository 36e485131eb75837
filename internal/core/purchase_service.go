package core

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"bi-reports/internal/table"
)

var one = decimal.NewFromInt(1)
var hundred = decimal.NewFromInt(100)

// excelEpoch is day zero of the 1900 date system used by .xlsx serials.
var excelEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// ReconcilePurchases joins the most recent purchase per product onto the
// reconciled stock table and derives the tax-inclusive cost and gross margin.
//
// Most-recent selection is deterministic: purchase dates are truncated to the
// calendar day, rows are stably sorted by (product ascending, date
// descending), and the first row per product wins. Among purchases sharing
// the latest day that is the one earliest in merged file order.
//
// Cost values that fail numeric coercion become Missing with a warning; if
// coercion leaves no numeric cost at all, the derived columns are skipped for
// the run and the degraded layout is emitted.
func ReconcilePurchases(log *zap.Logger, stock, compras *table.Table, vatRate decimal.Decimal) (*table.Table, error) {
	adj := compras.Drop(ColAlmacen)

	adj, err := adj.MapColumn(ColFecha, coerceDate)
	if err != nil {
		return nil, fmt.Errorf("purchase dates: %w", err)
	}

	sorted := adj.SortBy(func(a, b table.Row) bool {
		if c := table.Compare(a.Value(ColProducto), b.Value(ColProducto)); c != 0 {
			return c < 0
		}
		da, db := a.Value(ColFecha), b.Value(ColFecha)
		if da.IsMissing() != db.IsMissing() {
			return db.IsMissing() // undated rows last
		}
		return table.Compare(da, db) > 0
	})

	latest, err := firstPerKey(sorted, ColProducto)
	if err != nil {
		return nil, fmt.Errorf("latest purchase per product: %w", err)
	}
	latest, err = latest.Rename(map[string]string{ColProducto: ColProdConcat})
	if err != nil {
		return nil, fmt.Errorf("latest purchase rename: %w", err)
	}

	joined, err := stock.Join(latest, ColProdConcat, table.LeftJoin)
	if err != nil {
		return nil, fmt.Errorf("stock+purchase join: %w", err)
	}
	joined, err = joined.Rename(map[string]string{
		ColExistencia: ColExistenciaGlobal,
		ColFecha:      ColUltimaFechaCompra,
		ColCosto:      ColPrecioCompra,
		ColCantidad:   ColCantidadComprada,
	})
	if err != nil {
		return nil, fmt.Errorf("stock+purchase rename: %w", err)
	}

	var numeric, failed int
	joined, err = joined.MapColumn(ColPrecioCompra, func(v table.Value) table.Value {
		switch v.Kind() {
		case table.KindNumber:
			numeric++
			return v
		case table.KindMissing:
			return v
		case table.KindString:
			s, _ := v.Str()
			if d, perr := decimal.NewFromString(s); perr == nil {
				numeric++
				return table.Number(d)
			}
		}
		failed++
		return table.Missing()
	})
	if err != nil {
		return nil, fmt.Errorf("purchase cost coercion: %w", err)
	}
	if failed > 0 {
		log.Warn("non-numeric purchase costs coerced to missing", zap.Int("cells", failed))
	}

	withDerived := !(failed > 0 && numeric == 0)
	if withDerived {
		joined, err = joined.FillMissing(table.Int(0), ColPrecioCompra, ColPublico)
		if err != nil {
			return nil, fmt.Errorf("fill purchase figures: %w", err)
		}
		joined, err = joined.WithColumn(ColCosto, func(r table.Row) table.Value {
			price, _ := r.Value(ColPrecioCompra).Num()
			return table.Number(price.Mul(one.Add(vatRate)))
		})
		if err != nil {
			return nil, fmt.Errorf("derive cost: %w", err)
		}
		joined, err = joined.WithColumn(ColUtilidad, func(r table.Row) table.Value {
			listPrice, _ := r.Value(ColPublico).Num()
			cost, _ := r.Value(ColCosto).Num()
			if listPrice.IsZero() {
				return table.Missing()
			}
			return table.Number(listPrice.Sub(cost).Div(listPrice).Mul(hundred))
		})
		if err != nil {
			return nil, fmt.Errorf("derive margin: %w", err)
		}
	} else {
		log.Warn("purchase costs unusable, skipping cost and margin columns for this run")
	}

	layout := StockReportColumns(WarehouseStockColumns(stock), withDerived)
	final, err := joined.Reorder(layout...)
	if err != nil {
		return nil, fmt.Errorf("stock report layout: %w", err)
	}
	return final, nil
}

// coerceDate normalizes a purchase date cell to calendar-day granularity.
// Dates pass through, date-looking strings are parsed, numeric cells are read
// as .xlsx day serials, and anything else becomes Missing.
func coerceDate(v table.Value) table.Value {
	switch v.Kind() {
	case table.KindDate:
		return v
	case table.KindString:
		s, _ := v.Str()
		for _, layout := range []string{"2006-01-02", "2006-01-02T15:04:05", time.RFC3339, "02/01/2006"} {
			if ts, err := time.Parse(layout, s); err == nil {
				return table.Date(ts)
			}
		}
		return table.Missing()
	case table.KindNumber:
		n, _ := v.Num()
		return table.Date(excelEpoch.AddDate(0, 0, int(n.IntPart())))
	default:
		return table.Missing()
	}
}

// firstPerKey keeps the first row per distinct key value, preserving order.
func firstPerKey(t *table.Table, key string) (*table.Table, error) {
	if !t.HasColumn(key) {
		return nil, fmt.Errorf("column %q not present", key)
	}
	cols := t.Columns()
	out, err := table.New(cols...)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool, t.Len())
	for i := 0; i < t.Len(); i++ {
		kv, _ := t.At(i, key)
		k := fmt.Sprintf("%d|%s", kv.Kind(), kv.Text())
		if seen[k] {
			continue
		}
		seen[k] = true
		vals := make([]table.Value, len(cols))
		for j, c := range cols {
			vals[j], _ = t.At(i, c)
		}
		if err := out.AppendRow(vals...); err != nil {
			return nil, err
		}
	}
	return out, nil
}
