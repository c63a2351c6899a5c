package batch

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Chinrp0/NANION-EXPORT-ANALYSIS/pkg/nanion/models"
)

// writeOutputs is the single writer of the output directory.
func (s *Scheduler) writeOutputs(log *slog.Logger, result *models.BatchResult, outputDir string) (string, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", err
	}

	if s.opts.ExportTables {
		n, err := exportTables(filepath.Join(outputDir, "tables"), result.Outcomes)
		if err != nil {
			// Exports are secondary; the summary is still written.
			log.Error("Table export failed", slog.String("error", err.Error()))
		} else {
			log.Info("Tables exported", slog.Int("count", n))
		}
	}

	path := filepath.Join(outputDir, SummaryFileName)
	if err := writeFileAtomic(path, func(w io.Writer) error {
		return WriteSummary(w, result, s.now())
	}); err != nil {
		return "", err
	}
	return path, nil
}

// WriteSummary renders the plain-text summary: a header line, one
// PASS/FAIL line per input file in input order, and the counts.
func WriteSummary(w io.Writer, result *models.BatchResult, generated time.Time) error {
	var b strings.Builder
	fmt.Fprintf(&b, "Nanion export analysis summary (run %s, %s, %d files)\n",
		result.RunID, generated.Format(time.RFC3339), len(result.Outcomes))

	for _, o := range result.Outcomes {
		if o.Succeeded() {
			fmt.Fprintf(&b, "PASS %s%s\n", o.Path, passDetail(o))
			continue
		}
		fmt.Fprintf(&b, "FAIL %s [%s", o.Path, o.Stage)
		if o.Category != "" {
			fmt.Fprintf(&b, "/%s", o.Category)
		}
		fmt.Fprintf(&b, "]: %s\n", o.Message)
	}

	fmt.Fprintf(&b, "Validated: %d, Excluded: %d\n", result.ValidatedCount, result.ExcludedCount)
	fmt.Fprintf(&b, "Succeeded: %d, Failed: %d\n", result.SuccessCount, result.FailureCount)
	if result.TimeoutExceeded {
		fmt.Fprintf(&b, "Warning: run took %s, longer than the monitoring timeout\n", result.Elapsed.Round(time.Millisecond))
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func passDetail(o models.FileOutcome) string {
	if o.Table == nil {
		return ""
	}
	p := o.Table.Protocol
	detail := fmt.Sprintf(" (%s, %d IV groups", p.Type, p.IVGroupCount)
	if p.Degraded {
		detail += " approximate"
	}
	detail += fmt.Sprintf(", %d rows x %d columns", len(o.Table.Rows), o.Table.Width())
	if o.Table.SevereMismatch {
		detail += fmt.Sprintf(", %d columns dropped", o.Table.DroppedColumns)
	}
	return detail + ")"
}

// outputFileMode matches os.WriteFile(path, data, 0644) for output files.
const outputFileMode = 0644

// writeFileAtomic writes through a temporary file renamed into place.
func writeFileAtomic(path string, write func(io.Writer) error) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := tmp.Chmod(outputFileMode); err != nil {
		tmp.Close()
		return err
	}

	if err := write(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
