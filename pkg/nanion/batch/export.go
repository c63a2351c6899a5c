package batch

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/Chinrp0/NANION-EXPORT-ANALYSIS/pkg/nanion/models"
)

// exportTables writes each successful table to dir as
// <index>_<basename>.csv and returns the number written.
func exportTables(dir string, outcomes []models.FileOutcome) (int, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return 0, err
	}
	n := 0
	for _, o := range outcomes {
		if !o.Succeeded() || o.Table == nil {
			continue
		}
		path := filepath.Join(dir, exportName(o))
		if err := writeFileAtomic(path, func(w io.Writer) error {
			return WriteTableCSV(w, o.Table)
		}); err != nil {
			return n, fmt.Errorf("export %s: %w", o.Path, err)
		}
		n++
	}
	return n, nil
}

func exportName(o models.FileOutcome) string {
	base := filepath.Base(o.Path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return fmt.Sprintf("%03d_%s.csv", o.Index+1, base)
}

// WriteTableCSV writes the labels and the verbatim cell values of t.
func WriteTableCSV(w io.Writer, t *models.ParsedTable) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.ColumnLabels); err != nil {
		return err
	}
	record := make([]string, t.Width())
	for _, row := range t.Rows {
		for i, cell := range row {
			record[i] = cell.Raw
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
