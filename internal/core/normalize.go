package core

import (
	"fmt"
	"strings"

	"bi-reports/internal/table"
)

// upperValue uppercases string cells; anything else passes through.
func upperValue(v table.Value) table.Value {
	if s, ok := v.Str(); ok {
		return table.String(strings.ToUpper(s))
	}
	return v
}

// NormalizeExistencias uppercases the product key and turns sentinel zero
// stock quantities into Missing. A zero Existencia in the export means "no
// observation", not an actual empty shelf.
func NormalizeExistencias(t *table.Table) (*table.Table, error) {
	out, err := t.MapColumn(ColProdConcat, upperValue)
	if err != nil {
		return nil, fmt.Errorf("normalize existencias: %w", err)
	}
	return out.ZeroToMissing(ColExistencia), nil
}

// NormalizeCompras uppercases the purchase product key.
func NormalizeCompras(t *table.Table) (*table.Table, error) {
	out, err := t.MapColumn(ColProducto, upperValue)
	if err != nil {
		return nil, fmt.Errorf("normalize compras: %w", err)
	}
	return out, nil
}

// NormalizeVentas uppercases the sales product key.
func NormalizeVentas(t *table.Table) (*table.Table, error) {
	out, err := t.MapColumn(ColProdConcat, upperValue)
	if err != nil {
		return nil, fmt.Errorf("normalize ventas: %w", err)
	}
	return out, nil
}

// NormalizePiezas renames the consumed-parts columns to the canonical sales
// shape, uppercases the product key, and drops exact duplicate rows. The
// repair export repeats rows per work order, so only the dedupe here keeps
// consumed parts from double-counting in the sales union.
func NormalizePiezas(t *table.Table) (*table.Table, error) {
	out, err := t.Rename(map[string]string{
		ColAlmacenSalida: ColAlmacen,
		ColProducto:      ColProdConcat,
	})
	if err != nil {
		return nil, fmt.Errorf("normalize piezas: %w", err)
	}
	out, err = out.MapColumn(ColProdConcat, upperValue)
	if err != nil {
		return nil, fmt.Errorf("normalize piezas: %w", err)
	}
	return out.DropDuplicates(), nil
}
