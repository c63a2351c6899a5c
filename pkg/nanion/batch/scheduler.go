package batch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/Chinrp0/NANION-EXPORT-ANALYSIS/pkg/nanion"
	"github.com/Chinrp0/NANION-EXPORT-ANALYSIS/pkg/nanion/models"
)

const tracerName = "github.com/Chinrp0/NANION-EXPORT-ANALYSIS/pkg/nanion/batch"

// Scheduler drives files through validation and extraction and
// aggregates their outcomes.
type Scheduler struct {
	pipeline *nanion.Pipeline
	opts     Options
	logger   *slog.Logger
	metrics  *Metrics
	tracer   trace.Tracer
	now      func() time.Time

	// beforeValidate and beforeExtract run inside each task; tests use
	// them to reorder completion and inject panics.
	beforeValidate func(index int)
	beforeExtract  func(index int)
}

// New returns a Scheduler running p with opts.
func New(p *nanion.Pipeline, opts Options) *Scheduler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	metrics := opts.Metrics
	if metrics == nil {
		metrics = NewMetrics(nil)
	}
	return &Scheduler{
		pipeline: p,
		opts:     opts,
		logger:   logger,
		metrics:  metrics,
		tracer:   otel.Tracer(tracerName),
		now:      time.Now,
	}
}

// Run validates every path, extracts the validated files and writes the
// summary to outputDir. Per-file failures are recorded in the result and
// never returned. A *BatchSetupError is returned, before any extraction
// starts, when parallel execution was requested but no pool can be made.
func (s *Scheduler) Run(ctx context.Context, paths []string, outputDir string) (*models.BatchResult, error) {
	start := s.now()
	runID := uuid.NewString()
	log := s.logger.With(slog.String("run_id", runID))

	ctx, span := s.tracer.Start(ctx, "batch.run", trace.WithAttributes(
		attribute.String("run_id", runID),
		attribute.Int("files", len(paths)),
	))
	defer span.End()

	if s.opts.Timeout > 0 {
		timer := time.AfterFunc(s.opts.Timeout, func() {
			log.Warn("Batch running past monitoring timeout", slog.Duration("timeout", s.opts.Timeout))
		})
		defer timer.Stop()
	}

	log.Info("Starting batch", slog.Int("files", len(paths)), slog.String("output_dir", outputDir))

	tasks := make([]*models.FileTask, len(paths))
	for i, path := range paths {
		tasks[i] = &models.FileTask{
			ID:     uuid.NewString(),
			Index:  i,
			Path:   path,
			Status: models.StatusPending,
		}
	}

	// Phase 1: validate. Failures only exclude the file. Workbook reads run
	// on the pool when one can be made.
	workers := s.opts.workers()
	var validatePool *errgroup.Group
	if s.opts.Parallel && len(tasks) > 1 && workers >= 1 {
		validatePool, _ = newPool(ctx, workers)
	}
	ready := make([]bool, len(tasks))
	runTasks(validatePool, tasks, func(task *models.FileTask) {
		ready[task.Index] = s.validate(ctx, log, task)
	})

	outcomes := make([]models.FileOutcome, len(tasks))
	var validated []*models.FileTask
	for _, task := range tasks {
		if ready[task.Index] {
			validated = append(validated, task)
			continue
		}
		outcomes[task.Index] = failedOutcome(task)
	}
	log.Info("Validation finished",
		slog.Int("validated", len(validated)),
		slog.Int("excluded", len(tasks)-len(validated)),
		slog.Bool("pooled", validatePool != nil))

	// Phase 2: extract into index-addressed slots.
	parallel := s.opts.Parallel && len(validated) > 1
	var extractPool *errgroup.Group
	if parallel {
		pool, err := newPool(ctx, workers)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "pool setup")
			log.Error("Worker pool unavailable", slog.String("error", err.Error()))
			return nil, err
		}
		extractPool = pool
		s.metrics.workers.Set(float64(min(workers, len(validated))))
		log.Info("Extracting in parallel", slog.Int("workers", workers), slog.Int("files", len(validated)))
	} else {
		s.metrics.workers.Set(1)
		log.Info("Extracting sequentially", slog.Int("files", len(validated)))
	}
	runTasks(extractPool, validated, func(task *models.FileTask) {
		outcomes[task.Index] = s.extract(ctx, log, task)
	})

	// Phase 3: aggregate. Always runs, even when nothing succeeded.
	result := aggregate(runID, outcomes, len(validated))
	result.Parallel = parallel
	result.Elapsed = s.now().Sub(start)
	if s.opts.Timeout > 0 && result.Elapsed > s.opts.Timeout {
		result.TimeoutExceeded = true
		s.metrics.timeouts.Inc()
		log.Warn("Batch exceeded monitoring timeout",
			slog.Duration("elapsed", result.Elapsed),
			slog.Duration("timeout", s.opts.Timeout))
	}

	summaryPath, err := s.writeOutputs(log, result, outputDir)
	if err != nil {
		span.RecordError(err)
		return result, fmt.Errorf("write outputs: %w", err)
	}
	result.SummaryPath = summaryPath

	span.SetAttributes(
		attribute.Int("succeeded", result.SuccessCount),
		attribute.Int("failed", result.FailureCount),
		attribute.Int("excluded", result.ExcludedCount),
	)
	log.Info("Batch finished",
		slog.Int("validated", result.ValidatedCount),
		slog.Int("excluded", result.ExcludedCount),
		slog.Int("succeeded", result.SuccessCount),
		slog.Int("failed", result.FailureCount),
		slog.Duration("elapsed", result.Elapsed),
		slog.String("summary", summaryPath))
	return result, nil
}

// runTasks calls fn for every task, on pool when it is non-nil and
// in order otherwise. fn records its own result.
func runTasks(pool *errgroup.Group, tasks []*models.FileTask, fn func(*models.FileTask)) {
	if pool == nil {
		for _, task := range tasks {
			fn(task)
		}
		return
	}
	for _, task := range tasks {
		pool.Go(func() error {
			fn(task)
			return nil
		})
	}
	_ = pool.Wait() // failures are recorded per task
}

// taskLogger gives each task its own logging context.
func taskLogger(log *slog.Logger, task *models.FileTask) *slog.Logger {
	return log.With(
		slog.String("task_id", task.ID),
		slog.String("file", filepath.Base(task.Path)),
	)
}

// validate reads and detects one file. It reports whether the task is
// ready for extraction. A panic excludes the file like any other error.
func (s *Scheduler) validate(ctx context.Context, log *slog.Logger, task *models.FileTask) (ok bool) {
	_, span := s.tracer.Start(ctx, "batch.validate", trace.WithAttributes(attribute.String("file", task.Path)))
	defer span.End()

	log = taskLogger(log, task)
	task.Stage = models.StageValidate

	defer func() {
		if r := recover(); r != nil {
			task.Status = models.StatusFailed
			task.Err = fmt.Errorf("%w: %v", ErrTaskPanic, r)
			span.RecordError(task.Err)
			span.SetStatus(codes.Error, "panic")
			s.metrics.files.WithLabelValues(string(models.StageValidate), string(models.StatusFailed)).Inc()
			log.Error("Validation panicked", slog.Any("panic", r))
			ok = false
		}
	}()

	if s.beforeValidate != nil {
		s.beforeValidate(task.Index)
	}

	v, err := s.pipeline.WithLogger(log).Validate(task.Path)
	if err != nil {
		task.Status = models.StatusFailed
		task.Err = err
		span.RecordError(err)
		span.SetStatus(codes.Error, nanion.Classify(err))
		s.metrics.files.WithLabelValues(string(models.StageValidate), string(models.StatusFailed)).Inc()
		log.Warn("File excluded", slog.String("category", nanion.Classify(err)), slog.String("error", err.Error()))
		return false
	}

	task.Status = models.StatusValidated
	task.Grid = v.Grid
	task.Protocol = v.Protocol
	s.metrics.files.WithLabelValues(string(models.StageValidate), string(models.StatusValidated)).Inc()
	log.Debug("File validated",
		slog.String("protocol", string(v.Protocol.Type)),
		slog.Int("iv_groups", v.Protocol.IVGroupCount),
		slog.Bool("degraded", v.Protocol.Degraded))
	return true
}

// extract parses one validated task. Errors and panics stop at this
// boundary and become the task's failure outcome.
func (s *Scheduler) extract(ctx context.Context, log *slog.Logger, task *models.FileTask) (out models.FileOutcome) {
	_, span := s.tracer.Start(ctx, "batch.extract", trace.WithAttributes(attribute.String("file", task.Path)))
	defer span.End()

	log = taskLogger(log, task)
	task.Stage = models.StageExtract
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			task.Status = models.StatusFailed
			task.Err = fmt.Errorf("%w: %v", ErrTaskPanic, r)
			log.Error("Extraction panicked", slog.Any("panic", r))
			out = failedOutcome(task)
		}
		out.Duration = time.Since(start)
		s.metrics.duration.Observe(out.Duration.Seconds())
		s.metrics.files.WithLabelValues(string(models.StageExtract), string(out.Status)).Inc()
		if task.Err != nil {
			span.RecordError(task.Err)
			span.SetStatus(codes.Error, out.Category)
		}
	}()

	if s.beforeExtract != nil {
		s.beforeExtract(task.Index)
	}

	table, err := s.pipeline.WithLogger(log).Parse(&nanion.Validated{
		Path:     task.Path,
		Grid:     task.Grid,
		Protocol: task.Protocol,
	})
	if err != nil {
		task.Status = models.StatusFailed
		task.Err = err
		log.Warn("Extraction failed", slog.String("category", nanion.Classify(err)), slog.String("error", err.Error()))
		return failedOutcome(task)
	}

	task.Status = models.StatusSucceeded
	log.Info("Extraction succeeded",
		slog.Int("rows", len(table.Rows)),
		slog.Int("columns", table.Width()),
		slog.Int("dropped_columns", table.DroppedColumns))
	return models.FileOutcome{
		Index:    task.Index,
		Path:     task.Path,
		Status:   models.StatusSucceeded,
		Stage:    models.StageExtract,
		Table:    table,
		Degraded: table.Protocol.Degraded,
	}
}

func failedOutcome(task *models.FileTask) models.FileOutcome {
	out := models.FileOutcome{
		Index:  task.Index,
		Path:   task.Path,
		Status: models.StatusFailed,
		Stage:  task.Stage,
	}
	if task.Err != nil {
		out.Category = nanion.Classify(task.Err)
		out.Message = task.Err.Error()
	}
	return out
}

// aggregate counts outcomes. Validation exclusions are counted apart from
// extraction failures.
func aggregate(runID string, outcomes []models.FileOutcome, validated int) *models.BatchResult {
	result := &models.BatchResult{
		RunID:          runID,
		Outcomes:       outcomes,
		ValidatedCount: validated,
		ExcludedCount:  len(outcomes) - validated,
	}
	for _, o := range outcomes {
		if o.Stage != models.StageExtract {
			continue
		}
		if o.Succeeded() {
			result.SuccessCount++
		} else {
			result.FailureCount++
		}
	}
	return result
}
