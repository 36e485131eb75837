// Package core implements the reconciliation logic of the report pipeline:
// merging family workbooks, normalizing them onto the product key, and the
// stock, purchase, and sales reconciliations feeding the final reports.
package core

import "fmt"

// Canonical column names as they appear in the source exports and reports.
const (
	ColAlmacen       = "Almacen"
	ColProdConcat    = "ProdConcat"
	ColExistencia    = "Existencia"
	ColNombre        = "Nombre"
	ColTipoProducto  = "TipoProducto"
	ColMarca         = "Marca"
	ColModelo        = "Modelo"
	ColPublico       = "Publico En General"
	ColFecha         = "Fecha"
	ColProducto      = "Producto"
	ColCosto         = "Costo"
	ColCantidad      = "Cantidad"
	ColAlmacenSalida = "Almacén Salida Reparación"

	ColExistenciaGlobal  = "Existencia Global"
	ColUltimaFechaCompra = "Última Fecha Compra"
	ColPrecioCompra      = "Precio Compra"
	ColCantidadComprada  = "Cantidad Comprada Ultimo Mov"
	ColUtilidad          = "Utilidad"
	ColVentasTotales     = "Ventas Totales"
)

// UnknownLabel fills missing brand/model/name cells before the summary
// grouping.
const UnknownLabel = "Desconocido"

const (
	stockColumnPrefix = "Existencias en "
	salesColumnPrefix = "Ventas de "
)

// StockColumnName names the pivoted per-warehouse stock column.
func StockColumnName(warehouse string) string {
	return stockColumnPrefix + warehouse
}

// SalesColumnName names the pivoted per-warehouse sales column.
func SalesColumnName(warehouse string) string {
	return salesColumnPrefix + warehouse
}

// Report artifact base names. The writer appends the run timestamp.
const (
	ArtifactSummaryReport  = "BI-CONCENTRADO-EXISTENCIAS-BY-MODELO-MARCA"
	ArtifactStockReport    = "BI-EXISTENCIA-CC"
	ArtifactSalesReport    = "BI-VENTAS-CC"
	ArtifactCombinedReport = "BI-EXISTENCIAS-COMPRAS-VENTAS-CC"
)

// FamilySchema declares one input family: how its files are discovered, which
// sheet is read, and the columns a source file must provide.
type FamilySchema struct {
	// Name identifies the family in logs and errors.
	Name string
	// Token is the case-sensitive filename substring the family's exports
	// carry (*<Token>*.xlsx).
	Token string
	// Sheet selects the sheet to read; empty means the first sheet.
	Sheet string
	// Columns is the required column set; a file missing any is skipped.
	Columns []string
	// Artifact is the base name of the merged intermediate workbook.
	Artifact string
}

// The four input families.
var (
	FamilyExistencias = FamilySchema{
		Name:     "existencias",
		Token:    "Existencia",
		Columns:  []string{ColAlmacen, ColProdConcat, ColExistencia, ColNombre, ColTipoProducto, ColMarca, ColModelo, ColPublico},
		Artifact: "ExistenciasCC",
	}
	FamilyCompras = FamilySchema{
		Name:     "compras",
		Token:    "Excel_Movimientos",
		Sheet:    "Detalle de movimientos",
		Columns:  []string{ColAlmacen, ColFecha, ColProducto, ColCosto, ColCantidad},
		Artifact: "ComprasCC",
	}
	FamilyVentas = FamilySchema{
		Name:     "ventas",
		Token:    "Analisis de Ventas por Tickets",
		Columns:  []string{ColAlmacen, ColProdConcat, ColCantidad},
		Artifact: "VentasCC",
	}
	FamilyPiezas = FamilySchema{
		Name:     "piezas",
		Token:    "Excel_Reparaciones_Refacciones_Consumidas",
		Columns:  []string{ColAlmacenSalida, ColProducto, ColCantidad},
		Artifact: "PiezasConsumidasCC",
	}
)

// Families returns the input families in pipeline order.
func Families() []FamilySchema {
	return []FamilySchema{FamilyExistencias, FamilyCompras, FamilyVentas, FamilyPiezas}
}

// ErrMissingInput marks the fatal precondition failure: a family merged to
// zero usable rows, so the whole run must abort before reconciliation.
var ErrMissingInput = fmt.Errorf("required input missing")

// StockReportColumns is the declared column layout of the stock+purchase
// report (BI-EXISTENCIA-CC). The derived cost and margin columns sit by the
// figures they derive from: Costo directly after Precio Compra, Publico En
// General after Costo, Utilidad last. withDerived=false is the degraded
// layout emitted when cost coercion left nothing to compute with.
func StockReportColumns(warehouseCols []string, withDerived bool) []string {
	cols := []string{ColProdConcat, ColNombre, ColTipoProducto, ColModelo, ColMarca}
	cols = append(cols, warehouseCols...)
	cols = append(cols, ColExistenciaGlobal, ColUltimaFechaCompra, ColCantidadComprada, ColPrecioCompra)
	if withDerived {
		cols = append(cols, ColCosto)
	}
	cols = append(cols, ColPublico)
	if withDerived {
		cols = append(cols, ColUtilidad)
	}
	return cols
}
