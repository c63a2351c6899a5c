// Package batch runs many export files through the extraction pipeline
// with per-file failure isolation.
package batch

import (
	"log/slog"
	"runtime"
	"time"
)

// MaxDefaultWorkers caps the automatic worker count.
const MaxDefaultWorkers = 8

// SummaryFileName is the name of the summary written to the output directory.
const SummaryFileName = "analysis_summary.txt"

// Options configures a Scheduler.
type Options struct {
	// Parallel enables the worker pool when more than one file validates.
	Parallel bool
	// MaxWorkers bounds the pool; 0 selects DefaultWorkers.
	MaxWorkers int
	// Timeout is a monitoring threshold for the whole run. Exceeding it
	// logs a warning and is reported, but nothing is cancelled.
	Timeout time.Duration
	// ExportTables writes each extracted table as CSV under <output>/tables.
	ExportTables bool
	// Logger is the parent of every per-task logger; nil discards logs.
	Logger *slog.Logger
	// Metrics receives batch metrics; nil keeps unregistered collectors.
	Metrics *Metrics
}

// DefaultWorkers returns min(available cores, MaxDefaultWorkers).
func DefaultWorkers() int {
	return min(runtime.NumCPU(), MaxDefaultWorkers)
}

func (o Options) workers() int {
	if o.MaxWorkers == 0 {
		return DefaultWorkers()
	}
	return o.MaxWorkers
}
