package app_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"bi-reports/internal/app"
	"bi-reports/internal/config"
	"bi-reports/internal/core"
	"bi-reports/internal/table"
	"bi-reports/internal/xlsx"
)

func writeWorkbook(t *testing.T, path, sheet string, rows [][]interface{}) {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	if sheet != "Sheet1" {
		if _, err := f.NewSheet(sheet); err != nil {
			t.Fatalf("NewSheet: %v", err)
		}
	}
	for i, row := range rows {
		ref, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("CoordinatesToCellName: %v", err)
		}
		if err := f.SetSheetRow(sheet, ref, &row); err != nil {
			t.Fatalf("SetSheetRow: %v", err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("SaveAs: %v", err)
	}
}

func testConfig(dir string) *config.Config {
	return &config.Config{
		AppEnv:        "test",
		WorkDir:       dir,
		OutDir:        dir,
		VATRate:       decimal.RequireFromString("0.16"),
		ArchivePrefix: "BI-DATA-CC",
	}
}

// seedInputs writes one workbook per input family. The product key is
// lowercased on purpose so the run exercises key normalization too.
func seedInputs(t *testing.T, dir string) {
	t.Helper()
	writeWorkbook(t, filepath.Join(dir, "Existencia.xlsx"), "Sheet1", [][]interface{}{
		{"Almacen", "ProdConcat", "Existencia", "Nombre", "TipoProducto", "Marca", "Modelo", "Publico En General"},
		{"Centro", "p1", 5.0, "Widget", "Accesorio", "Acme", "X", 100.0},
	})
	writeWorkbook(t, filepath.Join(dir, "Excel_Movimientos.xlsx"), "Detalle de movimientos", [][]interface{}{
		{"Almacen", "Fecha", "Producto", "Costo", "Cantidad"},
		{"Centro", "2024-03-01", "p1", 50.0, 2.0},
	})
	writeWorkbook(t, filepath.Join(dir, "Analisis de Ventas por Tickets.xlsx"), "Sheet1", [][]interface{}{
		{"Almacen", "ProdConcat", "Cantidad"},
		{"Centro", "p1", 3.0},
	})
	writeWorkbook(t, filepath.Join(dir, "Excel_Reparaciones_Refacciones_Consumidas.xlsx"), "Sheet1", [][]interface{}{
		{"Almacén Salida Reparación", "Producto", "Cantidad"},
		{"Centro", "p1", 1.0},
	})
}

func TestRun_EndToEnd(t *testing.T) {
	dir := t.TempDir()
	seedInputs(t, dir)

	p := app.New(testConfig(dir), zap.NewNop(), xlsx.NewReader(), xlsx.NewWriter())
	if err := p.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}

	// every input and artifact moved into the single archive folder
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || !entries[0].IsDir() {
		t.Fatalf("work dir after run = %v, want only the archive folder", entries)
	}
	archive := filepath.Join(dir, entries[0].Name())

	for _, base := range []string{
		"Existencia.xlsx",
		"Excel_Movimientos.xlsx",
		"Analisis de Ventas por Tickets.xlsx",
		"Excel_Reparaciones_Refacciones_Consumidas.xlsx",
	} {
		if _, err := os.Stat(filepath.Join(archive, base)); err != nil {
			t.Errorf("input %s not archived: %v", base, err)
		}
	}
	for _, prefix := range []string{
		"ExistenciasCC", "ComprasCC", "VentasCC", "PiezasConsumidasCC",
		core.ArtifactSummaryReport, core.ArtifactStockReport,
		core.ArtifactSalesReport, core.ArtifactCombinedReport,
	} {
		matches, err := filepath.Glob(filepath.Join(archive, prefix+"_*.xlsx"))
		if err != nil || len(matches) != 1 {
			t.Errorf("artifact %s: matches=%v err=%v", prefix, matches, err)
		}
	}

	// the combined report carries the reconciled figures under the
	// uppercased product key
	matches, err := filepath.Glob(filepath.Join(archive, core.ArtifactCombinedReport+"_*.xlsx"))
	if err != nil || len(matches) != 1 {
		t.Fatalf("combined report: matches=%v err=%v", matches, err)
	}
	report, err := xlsx.NewReader().Load(matches[0], "", []string{
		core.ColProdConcat, "Existencias en Centro", core.ColExistenciaGlobal,
		core.ColPrecioCompra, core.ColCosto, core.ColUtilidad,
		"Ventas de Centro", core.ColVentasTotales,
	})
	if err != nil {
		t.Fatalf("load combined report: %v", err)
	}
	if report.Len() != 1 {
		t.Fatalf("combined report rows = %d, want 1", report.Len())
	}
	checks := []struct {
		col  string
		want table.Value
	}{
		{core.ColProdConcat, table.String("P1")},
		{"Existencias en Centro", table.Int(5)},
		{core.ColExistenciaGlobal, table.Int(5)},
		{core.ColPrecioCompra, table.Int(50)},
		{core.ColCosto, table.Int(58)},
		{core.ColUtilidad, table.Int(42)},
		{"Ventas de Centro", table.Int(4)},
		{core.ColVentasTotales, table.Int(4)},
	}
	for _, c := range checks {
		v, ok := report.At(0, c.col)
		if !ok {
			t.Errorf("column %q absent", c.col)
			continue
		}
		if !v.Equal(c.want) {
			t.Errorf("%s = %s, want %s", c.col, v.Text(), c.want.Text())
		}
	}
}

func TestRun_MissingFamilyAborts(t *testing.T) {
	dir := t.TempDir()
	// only the stock family is present
	writeWorkbook(t, filepath.Join(dir, "Existencia.xlsx"), "Sheet1", [][]interface{}{
		{"Almacen", "ProdConcat", "Existencia", "Nombre", "TipoProducto", "Marca", "Modelo", "Publico En General"},
		{"Centro", "p1", 5.0, "Widget", "Accesorio", "Acme", "X", 100.0},
	})

	p := app.New(testConfig(dir), zap.NewNop(), xlsx.NewReader(), xlsx.NewWriter())
	err := p.Run()
	if !errors.Is(err, core.ErrMissingInput) {
		t.Fatalf("Run error = %v, want core.ErrMissingInput", err)
	}

	// the run aborts before reconciliation: no reports, no archive folder
	for _, prefix := range []string{core.ArtifactStockReport, core.ArtifactCombinedReport, "BI-DATA-CC"} {
		matches, _ := filepath.Glob(filepath.Join(dir, prefix+"*"))
		if len(matches) != 0 {
			t.Errorf("found %v after aborted run", matches)
		}
	}
}

func TestRun_SkipsMalformedFile(t *testing.T) {
	dir := t.TempDir()
	seedInputs(t, dir)
	// a second stock export missing required columns merges to nothing but
	// must not sink the run
	writeWorkbook(t, filepath.Join(dir, "Existencia (2).xlsx"), "Sheet1", [][]interface{}{
		{"Almacen", "ProdConcat"},
		{"Centro", "p9"},
	})

	p := app.New(testConfig(dir), zap.NewNop(), xlsx.NewReader(), xlsx.NewWriter())
	if err := p.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("work dir after run = %v, want only the archive folder", entries)
	}
	archive := filepath.Join(dir, entries[0].Name())
	matches, err := filepath.Glob(filepath.Join(archive, core.ArtifactCombinedReport+"_*.xlsx"))
	if err != nil || len(matches) != 1 {
		t.Fatalf("combined report: matches=%v err=%v", matches, err)
	}
	report, err := xlsx.NewReader().Load(matches[0], "", []string{core.ColProdConcat})
	if err != nil {
		t.Fatalf("load combined report: %v", err)
	}
	if report.Len() != 1 {
		t.Errorf("rows = %d, want 1 (malformed file contributed nothing)", report.Len())
	}
}
