package core

import (
	"fmt"

	"bi-reports/internal/table"
)

// ReconcileSales unions the normalized sales and consumed-parts tables (the
// two are the same shape after normalization and a consumed repair part
// counts as a sale), then aggregates quantity per warehouse and product,
// pivots per-warehouse sales into columns, and inner-joins the per-product
// totals on.
func ReconcileSales(ventas, piezas *table.Table) (*table.Table, error) {
	union, err := table.Concat(ventas, piezas)
	if err != nil {
		return nil, fmt.Errorf("sales union: %w", err)
	}
	union, err = union.FillMissing(table.Int(0), ColCantidad)
	if err != nil {
		return nil, fmt.Errorf("sales fill: %w", err)
	}

	grouped, err := union.GroupBy(
		[]string{ColAlmacen, ColProdConcat},
		table.Agg{Col: ColCantidad, Fn: table.AggSum},
	)
	if err != nil {
		return nil, fmt.Errorf("sales grouping: %w", err)
	}

	pivot, err := grouped.Pivot(ColProdConcat, ColAlmacen, ColCantidad, SalesColumnName)
	if err != nil {
		return nil, fmt.Errorf("sales pivot: %w", err)
	}

	totals, err := grouped.GroupBy(
		[]string{ColProdConcat},
		table.Agg{Col: ColCantidad, Fn: table.AggSum, As: ColVentasTotales},
	)
	if err != nil {
		return nil, fmt.Errorf("sales totals: %w", err)
	}

	final, err := pivot.Join(totals, ColProdConcat, table.InnerJoin)
	if err != nil {
		return nil, fmt.Errorf("sales totals join: %w", err)
	}
	return final, nil
}
