package models

import "time"

// TaskStatus is the lifecycle state of a FileTask.
type TaskStatus string

const (
	StatusPending   TaskStatus = "pending"
	StatusValidated TaskStatus = "validated"
	StatusSucceeded TaskStatus = "succeeded"
	StatusFailed    TaskStatus = "failed"
)

// Stage names the batch phase an outcome was decided in.
type Stage string

const (
	StageValidate Stage = "validate"
	StageExtract  Stage = "extract"
)

// FileTask tracks one input file through a batch. A task is owned by the
// scheduler and handed to at most one worker.
type FileTask struct {
	// ID identifies the task in logs and traces.
	ID string
	// Index is the position of Path in the batch input.
	Index int
	// Path is the input file.
	Path string
	// Protocol is set once validation succeeds.
	Protocol *ProtocolInfo
	// Grid is the grid read during validation.
	Grid *RawGrid
	// Status is the current lifecycle state.
	Status TaskStatus
	// Stage is the phase in which the task last changed state.
	Stage Stage
	// Err is the failure cause when Status is StatusFailed.
	Err error
}

// FileOutcome is the reported result for one input file.
type FileOutcome struct {
	// Index is the position of the file in the batch input.
	Index int `json:"index"`
	// Path is the input file.
	Path string `json:"path"`
	// Status is StatusSucceeded or StatusFailed.
	Status TaskStatus `json:"status"`
	// Stage is the phase that decided the outcome.
	Stage Stage `json:"stage"`
	// Category names the error taxonomy class of a failure.
	Category string `json:"category,omitempty"`
	// Message is the failure message.
	Message string `json:"message,omitempty"`
	// Table is the extracted payload of a successful file.
	Table *ParsedTable `json:"-"`
	// Degraded mirrors Table.Protocol.Degraded for reporting.
	Degraded bool `json:"degraded,omitempty"`
	// Duration is the time spent extracting the file.
	Duration time.Duration `json:"duration"`
}

// Succeeded reports whether the file was extracted.
func (o FileOutcome) Succeeded() bool {
	return o.Status == StatusSucceeded
}

// BatchResult aggregates a batch run. It is not modified after Run returns.
type BatchResult struct {
	// RunID identifies the batch run.
	RunID string `json:"run_id"`
	// Outcomes holds one entry per input path, in input order.
	Outcomes []FileOutcome `json:"outcomes"`
	// ValidatedCount is the number of files that passed validation.
	ValidatedCount int `json:"validated_count"`
	// ExcludedCount is the number of files rejected during validation.
	ExcludedCount int `json:"excluded_count"`
	// SuccessCount is the number of validated files extracted successfully.
	SuccessCount int `json:"success_count"`
	// FailureCount is the number of validated files whose extraction failed.
	FailureCount int `json:"failure_count"`
	// Parallel reports whether extraction ran on the worker pool.
	Parallel bool `json:"parallel"`
	// Elapsed is the wall time of the whole run.
	Elapsed time.Duration `json:"elapsed"`
	// TimeoutExceeded is set when Elapsed passed the configured monitoring timeout.
	TimeoutExceeded bool `json:"timeout_exceeded,omitempty"`
	// SummaryPath is the written summary file.
	SummaryPath string `json:"summary_path"`
}
