// Package app wires discovery, merging, reconciliation, report emission, and
// archiving into the single linear run the binary executes.
package app

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"bi-reports/internal/config"
	"bi-reports/internal/core"
	"bi-reports/internal/files"
	"bi-reports/internal/table"
)

// timestampLayout stamps artifact names and the archive folder. One stamp is
// taken per run so every file of a run carries the same suffix.
const timestampLayout = "2006-01-02T15-04-05"

// ReportWriter persists a table as a timestamped workbook and returns the
// written path. Implemented by the xlsx writer; faked in tests.
type ReportWriter interface {
	Write(t *table.Table, dir, baseName, stamp string) (string, error)
}

// Pipeline is the whole batch run. Each stage consumes in-memory tables from
// the previous one; workbook files only appear at the serialization edges
// (source inputs, intermediate artifacts, reports).
type Pipeline struct {
	cfg    *config.Config
	log    *zap.Logger
	merger *core.Merger
	writer ReportWriter
	now    func() time.Time
}

// New constructs a Pipeline.
func New(cfg *config.Config, log *zap.Logger, loader core.Loader, writer ReportWriter) *Pipeline {
	return &Pipeline{
		cfg:    cfg,
		log:    log,
		merger: core.NewMerger(loader, log),
		writer: writer,
		now:    time.Now,
	}
}

// Run executes one report generation pass. It returns an error wrapping
// core.ErrMissingInput when any input family merged empty; reconciliation
// never starts in that case. Write and archive failures are logged and do not
// abort sibling operations.
func (p *Pipeline) Run() error {
	stamp := p.now().Format(timestampLayout)
	p.log.Info("starting report run",
		zap.String("work_dir", p.cfg.WorkDir),
		zap.String("stamp", stamp))

	merged := make(map[string]*table.Table)
	var worked []string
	for _, fam := range core.Families() {
		paths, err := files.Discover(p.cfg.WorkDir, fam.Token)
		if err != nil {
			return err
		}
		worked = append(worked, paths...)
		t := p.merger.MergeFamily(fam, paths)
		merged[fam.Name] = t
		if t.Len() > 0 {
			p.emit(t, fam.Artifact, stamp)
		}
	}
	for _, fam := range core.Families() {
		if merged[fam.Name].Len() == 0 {
			return fmt.Errorf("%w: no usable %s files (*%s*.xlsx)", core.ErrMissingInput, fam.Name, fam.Token)
		}
	}

	existencias, err := core.NormalizeExistencias(merged[core.FamilyExistencias.Name])
	if err != nil {
		return err
	}
	compras, err := core.NormalizeCompras(merged[core.FamilyCompras.Name])
	if err != nil {
		return err
	}
	ventas, err := core.NormalizeVentas(merged[core.FamilyVentas.Name])
	if err != nil {
		return err
	}
	piezas, err := core.NormalizePiezas(merged[core.FamilyPiezas.Name])
	if err != nil {
		return err
	}

	stock, err := core.ReconcileStock(existencias)
	if err != nil {
		return err
	}
	p.log.Info("stock reconciled", zap.Int("products", stock.Len()))

	summary, err := core.BuildBrandModelSummary(stock)
	if err != nil {
		return err
	}
	p.emit(summary, core.ArtifactSummaryReport, stamp)

	purchases, err := core.ReconcilePurchases(p.log, stock, compras, p.cfg.VATRate)
	if err != nil {
		return err
	}
	p.emit(purchases, core.ArtifactStockReport, stamp)

	sales, err := core.ReconcileSales(ventas, piezas)
	if err != nil {
		return err
	}
	p.emit(sales, core.ArtifactSalesReport, stamp)

	final, err := core.BuildFinalReport(purchases, sales)
	if err != nil {
		return err
	}
	p.emit(final, core.ArtifactCombinedReport, stamp)

	p.archive(worked, stamp)
	p.log.Info("report run complete")
	return nil
}

// emit writes one artifact. A write failure is an IO problem local to that
// artifact; siblings still get written.
func (p *Pipeline) emit(t *table.Table, baseName, stamp string) {
	path, err := p.writer.Write(t, p.cfg.OutDir, baseName, stamp)
	if err != nil {
		p.log.Error("failed to write artifact", zap.String("artifact", baseName), zap.Error(err))
		return
	}
	p.log.Info("wrote artifact", zap.String("file", path), zap.Int("rows", t.Len()))
}

// archive moves every worked input plus all intermediate and report files
// into a fresh timestamped folder.
func (p *Pipeline) archive(worked []string, stamp string) {
	seen := make(map[string]bool)
	var paths []string
	add := func(list []string) {
		for _, f := range list {
			if !seen[f] {
				seen[f] = true
				paths = append(paths, f)
			}
		}
	}
	add(worked)
	dirs := []string{p.cfg.WorkDir}
	if p.cfg.OutDir != p.cfg.WorkDir {
		dirs = append(dirs, p.cfg.OutDir)
	}
	for _, dir := range dirs {
		for _, token := range []string{"CC", "BI-"} {
			found, err := files.Discover(dir, token)
			if err != nil {
				p.log.Warn("archive discovery failed", zap.String("token", token), zap.Error(err))
				continue
			}
			add(found)
		}
	}

	folder := p.cfg.ArchivePrefix + "_" + stamp
	dest, err := files.Archive(p.log, p.cfg.WorkDir, folder, paths)
	if err != nil {
		p.log.Error("archive failed", zap.Error(err))
		return
	}
	p.log.Info("archived run files", zap.String("folder", dest), zap.Int("files", len(paths)))
}
