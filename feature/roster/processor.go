package roster

import (
	"context"

	"attendance-reconciler/core/reconcile"
	"attendance-reconciler/core/workbook"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
)

// Processor reconciles the sheets of one workbook. It implements
// reconcile.Processor.
type Processor struct {
	logger *zap.Logger
}

// NewProcessor creates a workbook-backed processor.
func NewProcessor(logger *zap.Logger) *Processor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Processor{logger: logger}
}

// ProcessFile opens input as an xlsx workbook and reconciles every sheet for the
// given pass. A workbook that cannot be opened fails the file; a sheet that cannot
// be read is recorded and skipped.
func (p *Processor) ProcessFile(ctx context.Context, input reconcile.Input, pass reconcile.Pass, state *reconcile.State) (reconcile.FileStats, error) {
	var stats reconcile.FileStats

	rc, err := input.Open(ctx)
	if err != nil {
		return stats, errors.Wrapf(err, "open %s", input.Name())
	}
	defer rc.Close()

	wb, err := workbook.OpenReader(rc)
	if err != nil {
		return stats, errors.Wrapf(err, "read %s", input.Name())
	}
	defer wb.Close()

	names := wb.SheetNames()
	stats.TotalSheets = len(names)
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return stats, errors.Wrapf(err, "%s interrupted at sheet %q", input.Name(), name)
		}

		sheet, err := wb.Sheet(name)
		if err != nil {
			stats.SheetErrors = append(stats.SheetErrors, err.Error())
			p.logger.Warn("Skipping unreadable sheet",
				zap.String("file", input.Name()),
				zap.String("sheet", name),
				zap.Error(err),
			)
			continue
		}

		rows := ReconcileSheet(ctx, sheet, pass, state)
		if rows > 0 {
			stats.SheetsProcessed++
			stats.RowsProcessed += rows
		}
	}

	if err := ctx.Err(); err != nil {
		return stats, errors.Wrapf(err, "%s interrupted", input.Name())
	}
	return stats, nil
}
