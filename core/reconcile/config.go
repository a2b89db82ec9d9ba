package reconcile

import (
	"runtime"
	"time"

	"github.com/cockroachdb/errors"
)

// Config holds configuration for a reconciliation run.
type Config struct {
	// InputDir is the folder scanned for .xlsx files when none is given.
	InputDir string `mapstructure:"input_dir" default:"input_files"`
	// Output is the path of the generated report workbook.
	Output string `mapstructure:"output" default:"Attendance_Report.xlsx"`
	// Workers bounds the number of files processed concurrently. Zero means
	// twice the number of CPUs.
	Workers int `mapstructure:"workers" default:"0"`
	// PhaseTimeout bounds how long a pass may run once all of its files are
	// submitted. Zero disables the bound.
	PhaseTimeout time.Duration `mapstructure:"phase_timeout" default:"60s"`
	// Top is the number of rows shown in the console report.
	Top int `mapstructure:"top" default:"10"`
}

// WorkerCount returns the effective pool size.
func (c Config) WorkerCount() int {
	if c.Workers > 0 {
		return c.Workers
	}
	return runtime.NumCPU() * 2
}

// Validate rejects negative bounds.
func (c Config) Validate() error {
	switch {
	case c.Workers < 0:
		return errors.Newf("workers must not be negative, got %d", c.Workers)
	case c.PhaseTimeout < 0:
		return errors.Newf("phase timeout must not be negative, got %s", c.PhaseTimeout)
	case c.Top < 0:
		return errors.Newf("top must not be negative, got %d", c.Top)
	case c.Output == "":
		return errors.New("output path must not be empty")
	}
	return nil
}
