// Package testutil builds synthetic instrument exports for tests.
package testutil

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"
)

// Export describes a synthetic patch-clamp export sheet.
//
// Layout (1-based rows):
//
//	1  title
//	2  "Total sweeps" | Sweeps
//	3  "Protocol"     | Protocol
//	4  "Cell"         | "A01"
//	6  "Results"
//	7  "Parameter"    | "Value"
//	8  labels F1..F<Labels>
//	9+ DataRows rows of DataCols numbers
type Export struct {
	Protocol      string
	Sweeps        any
	Labels        int
	DataCols      int
	DataRows      int
	OmitResults   bool
	OmitParameter bool
}

// Activation returns an activation export with 2 IV groups of sweeps.
func Activation() Export {
	return Export{Protocol: "Peak current IV", Sweeps: 46, Labels: 24, DataCols: 24, DataRows: 5}
}

// Inactivation returns an inactivation export with 1 IV group of sweeps.
func Inactivation() Export {
	return Export{Protocol: "Inactivation / Activation", Sweeps: 23, Labels: 21, DataCols: 21, DataRows: 5}
}

// Rows returns the sheet contents row by row.
func (e Export) Rows() [][]any {
	rows := [][]any{
		{"Nanion DataControl Export"},
		{"Total sweeps", e.Sweeps},
		{"Protocol", e.Protocol},
		{"Cell", "A01"},
		{},
		{"Results"},
		{"Parameter", "Value"},
	}
	if e.OmitResults {
		rows[5] = []any{}
	}
	if e.OmitParameter {
		rows[6] = []any{}
	}
	labels := make([]any, e.Labels)
	for i := range labels {
		labels[i] = fmt.Sprintf("F%d", i+1)
	}
	rows = append(rows, labels)
	for r := 0; r < e.DataRows; r++ {
		row := make([]any, e.DataCols)
		for c := range row {
			row[c] = float64((r+1)*100+c) + 0.5
		}
		rows = append(rows, row)
	}
	return rows
}

// WriteExport saves e as an xlsx workbook in dir and returns its path.
func WriteExport(tb testing.TB, dir, name string, e Export) string {
	tb.Helper()
	return WriteRows(tb, dir, name, e.Rows())
}

// WriteRows saves rows into the first sheet of a new workbook.
func WriteRows(tb testing.TB, dir, name string, rows [][]any) string {
	tb.Helper()
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			tb.Fatalf("cell name: %v", err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			tb.Fatalf("set row %d: %v", i+1, err)
		}
	}

	path := filepath.Join(dir, name)
	if err := f.SaveAs(path); err != nil {
		tb.Fatalf("save %s: %v", path, err)
	}
	return path
}

// WriteCSV saves e as a comma-separated export and returns its path.
func WriteCSV(tb testing.TB, dir, name string, e Export) string {
	tb.Helper()
	path := filepath.Join(dir, name)
	file, err := os.Create(path)
	if err != nil {
		tb.Fatalf("create %s: %v", path, err)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	for _, row := range e.Rows() {
		record := make([]string, len(row))
		for i, v := range row {
			if v != nil {
				record[i] = fmt.Sprint(v)
			}
		}
		if err := w.Write(record); err != nil {
			tb.Fatalf("write csv: %v", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		tb.Fatalf("flush csv: %v", err)
	}
	return path
}
