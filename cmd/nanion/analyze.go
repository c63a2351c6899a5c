package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/Chinrp0/NANION-EXPORT-ANALYSIS/internal/config"
	"github.com/Chinrp0/NANION-EXPORT-ANALYSIS/internal/logging"
	"github.com/Chinrp0/NANION-EXPORT-ANALYSIS/pkg/nanion"
	"github.com/Chinrp0/NANION-EXPORT-ANALYSIS/pkg/nanion/batch"
	"github.com/Chinrp0/NANION-EXPORT-ANALYSIS/pkg/nanion/parser"
)

func newAnalyzeCmd() *cobra.Command {
	var (
		outputDir    string
		parallel     bool
		workers      int
		exportTables bool
		metricsFile  string
		strict       bool
	)

	cmd := &cobra.Command{
		Use:   "analyze [files or directories...]",
		Short: "Extract tables from a batch of exports",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if flags.Changed("parallel") {
				cfg.Batch.Parallel = parallel
			}
			if flags.Changed("workers") {
				cfg.Batch.MaxWorkers = workers
			}
			if flags.Changed("export-tables") {
				cfg.Batch.ExportTables = exportTables
			}

			closer, err := logging.Init(cfg.Logging)
			if err != nil {
				return fmt.Errorf("init logging: %w", err)
			}
			defer closer.Close()
			logger := logging.New("analyze")

			paths, err := expandInputs(args)
			if err != nil {
				return err
			}
			if len(paths) == 0 {
				return fmt.Errorf("no supported export files in %s", strings.Join(args, ", "))
			}

			pipeline, err := nanion.NewPipeline(cfg.Options())
			if err != nil {
				return fmt.Errorf("invalid analysis options: %w", err)
			}

			reg := prometheus.NewRegistry()
			opts := cfg.BatchOptions()
			opts.Logger = logger
			opts.Metrics = batch.NewMetrics(reg)

			result, err := batch.New(pipeline, opts).Run(cmd.Context(), paths, outputDir)
			if err != nil {
				return err
			}

			if metricsFile != "" {
				if err := prometheus.WriteToTextfile(metricsFile, reg); err != nil {
					logger.Error("Failed to write metrics", slog.String("error", err.Error()))
				}
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Processed %d files: %d succeeded, %d failed, %d excluded\n",
				len(result.Outcomes), result.SuccessCount, result.FailureCount, result.ExcludedCount)
			fmt.Fprintf(out, "Summary written to %s\n", result.SummaryPath)

			if strict && result.SuccessCount < len(result.Outcomes) {
				return fmt.Errorf("%d of %d files did not extract", len(result.Outcomes)-result.SuccessCount, len(result.Outcomes))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputDir, "output", "o", "results", "Output directory for the summary")
	cmd.Flags().BoolVar(&parallel, "parallel", true, "Extract on a worker pool when more than one file validates")
	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "Maximum workers (0: min(cores, 8))")
	cmd.Flags().BoolVar(&exportTables, "export-tables", false, "Write each extracted table as CSV under <output>/tables")
	cmd.Flags().StringVar(&metricsFile, "metrics-file", "", "Write Prometheus metrics in text format to this file")
	cmd.Flags().BoolVar(&strict, "strict", false, "Exit non-zero unless every file extracted")
	return cmd
}

// loadConfig loads the configuration and applies the persistent log flags.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if logFormat != "" {
		cfg.Logging.Format = logFormat
	}
	return cfg, cfg.Validate()
}

// expandInputs replaces directories by the supported files they contain.
// Explicit file arguments are kept as given so that bad inputs are still
// reported in the summary.
func expandInputs(args []string) ([]string, error) {
	var paths []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil || !info.IsDir() {
			paths = append(paths, arg)
			continue
		}
		var found []string
		err = filepath.WalkDir(arg, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return nil
			}
			// Skip office lock files.
			if strings.HasPrefix(d.Name(), "~$") || !parser.SupportedExtension(path) {
				return nil
			}
			found = append(found, path)
			return nil
		})
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("scan %s: %w", arg, err)
		}
		sort.Strings(found)
		paths = append(paths, found...)
	}
	return paths, nil
}
