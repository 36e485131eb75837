package core

import (
	"fmt"

	"bi-reports/internal/table"
)

// BuildFinalReport left-joins the reconciled stock+purchase table with the
// reconciled sales table. Every stocked product appears even with no sales
// history; its sales cells stay empty.
func BuildFinalReport(purchases, sales *table.Table) (*table.Table, error) {
	final, err := purchases.Join(sales, ColProdConcat, table.LeftJoin)
	if err != nil {
		return nil, fmt.Errorf("final report join: %w", err)
	}
	return final, nil
}

// BuildBrandModelSummary rolls the reconciled stock table up by
// (brand, model, name), summing every per-warehouse stock column and the
// global total. Missing brand/model/name cells are labeled before grouping so
// unbranded products collapse into one visible bucket instead of vanishing.
func BuildBrandModelSummary(stock *table.Table) (*table.Table, error) {
	t := stock.Drop(ColProdConcat, ColTipoProducto)

	t, err := t.FillMissing(table.String(UnknownLabel), ColMarca, ColModelo, ColNombre)
	if err != nil {
		return nil, fmt.Errorf("summary fill: %w", err)
	}

	aggs := make([]table.Agg, 0)
	for _, c := range WarehouseStockColumns(stock) {
		aggs = append(aggs, table.Agg{Col: c, Fn: table.AggSum})
	}
	aggs = append(aggs, table.Agg{Col: ColExistencia, Fn: table.AggSum})

	summary, err := t.GroupBy([]string{ColMarca, ColModelo, ColNombre}, aggs...)
	if err != nil {
		return nil, fmt.Errorf("summary grouping: %w", err)
	}
	return summary, nil
}
