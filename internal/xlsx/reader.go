// Package xlsx reads source workbooks into tables and writes report tables
// back out as timestamped .xlsx artifacts.
package xlsx

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/thedatashed/xlsxreader"

	"bi-reports/internal/table"
)

// SchemaError reports a workbook whose shape does not satisfy the request:
// a named sheet that does not exist, required columns absent from the header
// row, or a duplicated header. Callers skip the offending file and continue.
type SchemaError struct {
	Path    string
	Sheet   string
	Reason  string
	Missing []string
}

func (e *SchemaError) Error() string {
	if len(e.Missing) > 0 {
		return fmt.Sprintf("%s: %s: missing columns %s", e.Path, e.Reason, strings.Join(e.Missing, ", "))
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Reason)
}

// Reader loads sheets into tables.
type Reader struct{}

// NewReader constructs a Reader.
func NewReader() Reader { return Reader{} }

// Load reads one sheet of the workbook at path into a table restricted to
// exactly the requested columns, in file row order. sheet selects a sheet by
// name; empty means the first sheet. A path that does not resolve wraps
// fs.ErrNotExist; shape problems return *SchemaError.
func (Reader) Load(path, sheet string, columns []string) (*table.Table, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	xl, err := xlsxreader.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer xl.Close()

	if sheet == "" {
		if len(xl.Sheets) == 0 {
			return nil, &SchemaError{Path: path, Reason: "workbook has no sheets"}
		}
		sheet = xl.Sheets[0]
	} else if !containsSheet(xl.Sheets, sheet) {
		return nil, &SchemaError{Path: path, Sheet: sheet, Reason: fmt.Sprintf("sheet %q not found", sheet)}
	}

	var (
		header  map[string]int // column name -> cell index
		width   int
		colIdx  []int
		out     *table.Table
		started bool
	)
	for row := range xl.ReadRows(sheet) {
		if row.Error != nil {
			return nil, fmt.Errorf("read %s: %w", path, row.Error)
		}
		if !started {
			header = make(map[string]int)
			for _, cell := range row.Cells {
				name := strings.TrimSpace(cell.Value)
				if name == "" {
					continue
				}
				if _, dup := header[name]; dup {
					return nil, &SchemaError{Path: path, Sheet: sheet, Reason: fmt.Sprintf("duplicate header %q", name)}
				}
				j := cell.ColumnIndex()
				header[name] = j
				if j+1 > width {
					width = j + 1
				}
			}
			var missing []string
			colIdx = make([]int, len(columns))
			for i, c := range columns {
				j, ok := header[c]
				if !ok {
					missing = append(missing, c)
					continue
				}
				colIdx[i] = j
			}
			if len(missing) > 0 {
				return nil, &SchemaError{Path: path, Sheet: sheet, Reason: "schema mismatch", Missing: missing}
			}
			out, err = table.New(columns...)
			if err != nil {
				return nil, &SchemaError{Path: path, Sheet: sheet, Reason: err.Error()}
			}
			started = true
			continue
		}

		cells := make([]table.Value, width)
		for i := range cells {
			cells[i] = table.Missing()
		}
		for _, cell := range row.Cells {
			if j := cell.ColumnIndex(); j < width {
				cells[j] = parseCell(cell)
			}
		}
		vals := make([]table.Value, len(colIdx))
		for i, j := range colIdx {
			vals[i] = cells[j]
		}
		if err := out.AppendRow(vals...); err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
	}
	if !started {
		return nil, &SchemaError{Path: path, Sheet: sheet, Reason: "schema mismatch", Missing: columns}
	}
	return out, nil
}

func containsSheet(sheets []string, name string) bool {
	for _, s := range sheets {
		if s == name {
			return true
		}
	}
	return false
}

// parseCell maps a raw cell onto the table value model: numeric cells become
// numbers, date cells become day-granular dates, blanks become Missing, and
// everything else stays a string.
func parseCell(cell xlsxreader.Cell) table.Value {
	raw := strings.TrimSpace(cell.Value)
	if raw == "" {
		return table.Missing()
	}
	switch cell.Type {
	case xlsxreader.TypeNumerical:
		if d, err := decimal.NewFromString(raw); err == nil {
			return table.Number(d)
		}
	case xlsxreader.TypeDateTime:
		for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
			if ts, err := time.Parse(layout, raw); err == nil {
				return table.Date(ts)
			}
		}
	}
	return table.String(raw)
}
