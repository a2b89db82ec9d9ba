package reconcile

import (
	"context"
	"io"
	"time"
)

// Pass selects which sheets a sweep over the input files handles.
type Pass int

const (
	// PassEmailRequired handles sheets that expose an email column. It runs first
	// and populates the name index as a side effect.
	PassEmailRequired Pass = iota + 1
	// PassNameOnly handles sheets with a name column and no email column,
	// resolving identity through the name index or a synthetic email.
	PassNameOnly
)

// String returns the pass name used in logs and reports.
func (p Pass) String() string {
	switch p {
	case PassEmailRequired:
		return "email"
	case PassNameOnly:
		return "name-only"
	default:
		return "unknown"
	}
}

// Identity is the aggregated record of one resolved person.
type Identity struct {
	// Name is the display name, replaced by later qualifying observations.
	Name string `json:"name"`

	// Email is the immutable identity key, lowercase.
	Email string `json:"email"`

	// Count is the number of accepted observations across the run.
	Count int `json:"count"`
}

// Input is one spreadsheet file to reconcile. Open may be called once per pass.
type Input interface {
	// Name identifies the input in results and logs.
	Name() string

	// Open returns a fresh reader over the file contents.
	Open(ctx context.Context) (io.ReadCloser, error)
}

// Processor reconciles a single input for one pass against the shared state.
// File-level failures are returned as errors; anything below file level must be
// absorbed by the processor.
type Processor interface {
	ProcessFile(ctx context.Context, input Input, pass Pass, state *State) (FileStats, error)
}

// FileStats counts what a processor did with one input.
type FileStats struct {
	// TotalSheets is the number of sheets in the workbook.
	TotalSheets int `json:"total_sheets"`

	// SheetsProcessed is the number of sheets that contributed at least one row.
	SheetsProcessed int `json:"sheets_processed"`

	// RowsProcessed is the number of rows that resulted in an upsert.
	RowsProcessed int `json:"rows_processed"`

	// SheetErrors holds messages for sheets that could not be read.
	SheetErrors []string `json:"sheet_errors,omitempty"`
}

// FileResult is the outcome of processing one input in one pass.
type FileResult struct {
	FileStats

	// File is the input name.
	File string `json:"file"`

	// Pass is the pass this result belongs to.
	Pass Pass `json:"-"`

	// Success is false when the file failed to open or parse.
	Success bool `json:"success"`

	// Error holds the failure message when Success is false.
	Error string `json:"error,omitempty"`
}

// PhaseReport collects the file results of one pass.
type PhaseReport struct {
	Pass     Pass          `json:"-"`
	Results  []FileResult  `json:"results"`
	TimedOut bool          `json:"timed_out"`
	Duration time.Duration `json:"duration"`
}

// Run is the outcome of a full two-pass reconciliation.
type Run struct {
	// ID uniquely identifies the run.
	ID string `json:"id"`

	// StartedAt is when the run began.
	StartedAt time.Time `json:"started_at"`

	// Duration is the wall time of both passes.
	Duration time.Duration `json:"duration"`

	// Records maps email to the aggregated identity. No ordering contract.
	Records map[string]Identity `json:"-"`

	// Bindings is the number of name to email bindings created.
	Bindings int `json:"bindings"`

	// Phases holds the email pass followed by the name-only pass.
	Phases []PhaseReport `json:"phases"`
}

// Summary aggregates a run for progress reporting.
type Summary struct {
	Files          int           `json:"files"`
	FilesProcessed int           `json:"files_processed"`
	RowsProcessed  int           `json:"rows_processed"`
	Failures       int           `json:"failures"`
	Identities     int           `json:"identities"`
	Bindings       int           `json:"bindings"`
	Elapsed        time.Duration `json:"elapsed"`
	Throughput     float64       `json:"throughput"`
}

// Summary counts each file that contributed rows in any phase once, and derives
// throughput in files per second over at least one second.
func (r *Run) Summary() Summary {
	s := Summary{
		Identities: len(r.Records),
		Bindings:   r.Bindings,
		Elapsed:    r.Duration,
	}

	failed := make(map[string]struct{})
	contributed := make(map[string]struct{})
	for _, phase := range r.Phases {
		if len(phase.Results) > s.Files {
			s.Files = len(phase.Results)
		}
		for _, res := range phase.Results {
			if !res.Success {
				failed[res.File] = struct{}{}
				continue
			}
			if res.RowsProcessed > 0 {
				contributed[res.File] = struct{}{}
				s.RowsProcessed += res.RowsProcessed
			}
		}
	}
	s.FilesProcessed = len(contributed)
	s.Failures = len(failed)

	seconds := r.Duration.Seconds()
	if seconds < 1 {
		seconds = 1
	}
	s.Throughput = float64(s.FilesProcessed) / seconds
	return s
}

// Failures returns the failed file results of every phase.
func (r *Run) Failures() []FileResult {
	var out []FileResult
	for _, phase := range r.Phases {
		for _, res := range phase.Results {
			if !res.Success {
				out = append(out, res)
			}
		}
	}
	return out
}
