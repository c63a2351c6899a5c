package parser

import (
	"testing"

	"github.com/Chinrp0/NANION-EXPORT-ANALYSIS/pkg/nanion/models"
)

// gridOf builds a RawGrid from string rows, classifying each cell.
func gridOf(rows ...[]string) *models.RawGrid {
	return buildGrid(rows)
}

func TestClassifyCell(t *testing.T) {
	tests := []struct {
		input    string
		kind     models.CellKind
		expected float64
	}{
		{"123", models.CellNumber, 123},
		{"123.45", models.CellNumber, 123.45},
		{"-100", models.CellNumber, -100},
		{" 2.5e-9 ", models.CellNumber, 2.5e-9},
		{"hello", models.CellText, 0},
		{"NaN", models.CellText, 0},
		{"Inf", models.CellText, 0},
		{"", models.CellEmpty, 0},
		{"   ", models.CellEmpty, 0},
	}

	for _, tt := range tests {
		got := classifyCell(tt.input)
		if got.Kind != tt.kind {
			t.Errorf("classifyCell(%q).Kind = %v, expected %v", tt.input, got.Kind, tt.kind)
		}
		if got.Number != tt.expected {
			t.Errorf("classifyCell(%q).Number = %v, expected %v", tt.input, got.Number, tt.expected)
		}
		if got.Raw != tt.input {
			t.Errorf("classifyCell(%q).Raw = %q, expected verbatim input", tt.input, got.Raw)
		}
	}
}

func TestRowTextSkipsNumbersAndEmpties(t *testing.T) {
	row := buildGrid([][]string{{"Peak", "12", "", " current ", "3.5"}}).Row(0)
	if got := rowText(row); got != "Peakcurrent" {
		t.Errorf("rowText = %q, expected %q", got, "Peakcurrent")
	}
}

func TestTrimmedWidth(t *testing.T) {
	row := buildGrid([][]string{{"a", "", "b", "", " "}}).Row(0)
	if got := trimmedWidth(row); got != 3 {
		t.Errorf("trimmedWidth = %d, expected 3", got)
	}
	if got := trimmedWidth(nil); got != 0 {
		t.Errorf("trimmedWidth(nil) = %d, expected 0", got)
	}
}

func TestRawGridWindowKeepsWidth(t *testing.T) {
	g := gridOf([]string{"a"}, []string{"b", "c", "d"}, []string{"e"})
	w := g.Window(0, 1)
	if w.Rows() != 1 {
		t.Errorf("Expected 1 row, got %d", w.Rows())
	}
	if w.Cols() != 3 {
		t.Errorf("Expected window width 3, got %d", w.Cols())
	}
	if !g.Cell(10, 10).IsEmpty() {
		t.Errorf("Expected out-of-range cell to be empty")
	}
}
