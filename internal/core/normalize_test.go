package core_test

import (
	"testing"

	"bi-reports/internal/core"
	"bi-reports/internal/table"
)

func TestNormalizeExistencias(t *testing.T) {
	in := mustTable(t, core.FamilyExistencias.Columns,
		[]table.Value{table.String("Centro"), table.String("abc-123"), table.Int(0), table.String("Widget"), table.String("Accesorio"), table.String("Acme"), table.String("X"), num("100")},
		[]table.Value{table.String("Centro"), table.String("abc-123"), table.Int(4), table.String("Widget"), table.String("Accesorio"), table.String("Acme"), table.String("X"), num("100")},
	)

	got, err := core.NormalizeExistencias(in)
	if err != nil {
		t.Fatalf("NormalizeExistencias: %v", err)
	}
	if v := cell(t, got, 0, core.ColProdConcat); !v.Equal(table.String("ABC-123")) {
		t.Errorf("key = %q, want uppercased ABC-123", v.Text())
	}
	if v := cell(t, got, 0, core.ColExistencia); !v.IsMissing() {
		t.Error("zero stock is a sentinel and must become missing")
	}
	if v := cell(t, got, 1, core.ColExistencia); !v.Equal(table.Int(4)) {
		t.Error("real quantities must pass through")
	}
	// input untouched
	if v := cell(t, in, 0, core.ColProdConcat); !v.Equal(table.String("abc-123")) {
		t.Error("normalization mutated its input")
	}
}

func TestNormalizePiezas(t *testing.T) {
	in := mustTable(t, core.FamilyPiezas.Columns,
		[]table.Value{table.String("Taller"), table.String("p-1"), table.Int(1)},
		[]table.Value{table.String("Taller"), table.String("p-1"), table.Int(1)}, // exact duplicate
		[]table.Value{table.String("Taller"), table.String("p-1"), table.Int(2)},
	)

	got, err := core.NormalizePiezas(in)
	if err != nil {
		t.Fatalf("NormalizePiezas: %v", err)
	}
	for _, c := range []string{core.ColAlmacen, core.ColProdConcat, core.ColCantidad} {
		if !got.HasColumn(c) {
			t.Errorf("missing canonical column %q after rename", c)
		}
	}
	if got.HasColumn(core.ColAlmacenSalida) || got.HasColumn(core.ColProducto) {
		t.Error("source-specific column names should be gone")
	}
	if got.Len() != 2 {
		t.Errorf("rows = %d, want 2 (exact duplicates dropped)", got.Len())
	}
	if v := cell(t, got, 0, core.ColProdConcat); !v.Equal(table.String("P-1")) {
		t.Errorf("key = %q, want uppercased P-1", v.Text())
	}
}

func TestNormalizeCompras_UppercasesProducto(t *testing.T) {
	in := mustTable(t, core.FamilyCompras.Columns,
		[]table.Value{table.String("Centro"), day("2024-03-01"), table.String("p-9"), num("50"), table.Int(1)},
	)
	got, err := core.NormalizeCompras(in)
	if err != nil {
		t.Fatalf("NormalizeCompras: %v", err)
	}
	if v := cell(t, got, 0, core.ColProducto); !v.Equal(table.String("P-9")) {
		t.Errorf("Producto = %q, want P-9", v.Text())
	}
}
