package core

import (
	"go.uber.org/zap"

	"bi-reports/internal/table"
)

// Loader reads one sheet of a workbook into a table restricted to the given
// columns. Implemented by the xlsx reader; faked in tests.
type Loader interface {
	Load(path, sheet string, columns []string) (*table.Table, error)
}

// Merger builds one unified table per input family by loading every
// discovered file and concatenating the results.
type Merger struct {
	loader Loader
	log    *zap.Logger
}

// NewMerger constructs a Merger.
func NewMerger(loader Loader, log *zap.Logger) *Merger {
	return &Merger{loader: loader, log: log}
}

// MergeFamily loads each path with the family's schema and concatenates the
// usable tables in path order. A file that fails to load (absent, wrong
// sheet, missing columns) is skipped with a warning, not fatal. When no file
// produced a usable table the result is empty, never nil; callers treat an
// empty family as the run's hard precondition failure.
func (m *Merger) MergeFamily(fam FamilySchema, paths []string) *table.Table {
	var parts []*table.Table
	for _, path := range paths {
		t, err := m.loader.Load(path, fam.Sheet, fam.Columns)
		if err != nil {
			m.log.Warn("skipping source file",
				zap.String("family", fam.Name),
				zap.String("file", path),
				zap.Error(err))
			continue
		}
		parts = append(parts, t)
	}
	if len(parts) == 0 {
		empty, _ := table.New(fam.Columns...)
		return empty
	}
	merged, err := table.Concat(parts...)
	if err != nil {
		// Cannot happen: every part was loaded with the same column set.
		m.log.Error("merge failed", zap.String("family", fam.Name), zap.Error(err))
		empty, _ := table.New(fam.Columns...)
		return empty
	}
	m.log.Info("merged family",
		zap.String("family", fam.Name),
		zap.Int("files", len(parts)),
		zap.Int("rows", merged.Len()))
	return merged
}
