package core

import (
	"fmt"
	"strings"

	"bi-reports/internal/table"
)

// ReconcileStock collapses the normalized existencias table into one row per
// product: first-observed metadata, mean list price, one summed stock column
// per warehouse, and the global stock total.
//
// The global total is grouped independently of the pivot, then inner-joined
// on: metadata LEFT JOIN pivot, result INNER JOIN global. Both groupings run
// over the same rows, so their key sets are identical and the inner side
// cannot drop a product. The join direction is kept as-is rather than
// papered over.
func ReconcileStock(existencias *table.Table) (*table.Table, error) {
	global, err := existencias.GroupBy(
		[]string{ColProdConcat},
		table.Agg{Col: ColExistencia, Fn: table.AggSum},
	)
	if err != nil {
		return nil, fmt.Errorf("stock global sum: %w", err)
	}

	pivot, err := existencias.Pivot(ColProdConcat, ColAlmacen, ColExistencia, StockColumnName)
	if err != nil {
		return nil, fmt.Errorf("stock pivot: %w", err)
	}

	metadata, err := existencias.GroupBy(
		[]string{ColProdConcat},
		table.Agg{Col: ColNombre, Fn: table.AggFirst},
		table.Agg{Col: ColTipoProducto, Fn: table.AggFirst},
		table.Agg{Col: ColModelo, Fn: table.AggFirst},
		table.Agg{Col: ColMarca, Fn: table.AggFirst},
		table.Agg{Col: ColPublico, Fn: table.AggMean},
	)
	if err != nil {
		return nil, fmt.Errorf("stock metadata: %w", err)
	}

	joined, err := metadata.Join(pivot, ColProdConcat, table.LeftJoin)
	if err != nil {
		return nil, fmt.Errorf("stock metadata+pivot join: %w", err)
	}
	final, err := joined.Join(global, ColProdConcat, table.InnerJoin)
	if err != nil {
		return nil, fmt.Errorf("stock global join: %w", err)
	}
	return final, nil
}

// WarehouseStockColumns returns the pivoted per-warehouse column names of a
// reconciled stock table, in table order.
func WarehouseStockColumns(t *table.Table) []string {
	var cols []string
	for _, c := range t.Columns() {
		if strings.HasPrefix(c, stockColumnPrefix) {
			cols = append(cols, c)
		}
	}
	return cols
}
