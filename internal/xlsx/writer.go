package xlsx

import (
	"fmt"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"bi-reports/internal/table"
)

// Writer emits tables as .xlsx artifacts.
type Writer struct{}

// NewWriter constructs a Writer.
func NewWriter() Writer { return Writer{} }

const sheetName = "Sheet1"

// Write saves the table under dir as "<baseName>_<stamp>.xlsx" with a header
// row followed by the data rows. Missing cells stay empty, numbers are
// written as numeric cells, dates as YYYY-MM-DD. Returns the written path.
func (Writer) Write(t *table.Table, dir, baseName, stamp string) (string, error) {
	path := filepath.Join(dir, fmt.Sprintf("%s_%s.xlsx", baseName, stamp))

	f := excelize.NewFile()
	defer f.Close()

	header := make([]interface{}, 0, len(t.Columns()))
	for _, c := range t.Columns() {
		header = append(header, c)
	}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return "", fmt.Errorf("write header: %w", err)
	}

	cols := t.Columns()
	for i := 0; i < t.Len(); i++ {
		vals := make([]interface{}, len(cols))
		for j, c := range cols {
			v, _ := t.At(i, c)
			vals[j] = cellValue(v)
		}
		ref, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return "", fmt.Errorf("write row %d: %w", i+2, err)
		}
		if err := f.SetSheetRow(sheetName, ref, &vals); err != nil {
			return "", fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("save %s: %w", path, err)
	}
	return path, nil
}

func cellValue(v table.Value) interface{} {
	switch v.Kind() {
	case table.KindNumber:
		n, _ := v.Num()
		f, _ := n.Float64()
		return f
	case table.KindDate:
		return v.Text()
	case table.KindString:
		s, _ := v.Str()
		return s
	default:
		return nil
	}
}
