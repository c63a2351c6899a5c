package parser

import (
	"errors"
	"fmt"
	"testing"

	"github.com/Chinrp0/NANION-EXPORT-ANALYSIS/pkg/nanion/models"
)

// payloadGrid builds a grid with a results marker on row 2, a parameter
// marker on row 4, labels on row 5 and data from row 6.
func payloadGrid(labels int, widths ...int) *models.RawGrid {
	rows := [][]string{
		{"Peak current"},
		{"Results"},
		{},
		{"Parameter", "Value"},
	}
	label := make([]string, labels)
	for i := range label {
		label[i] = fmt.Sprintf("L%d", i+1)
	}
	rows = append(rows, label)
	for r, w := range widths {
		row := make([]string, w)
		for c := range row {
			row[c] = fmt.Sprintf("%d.%d", r, c)
		}
		rows = append(rows, row)
	}
	return buildGrid(rows)
}

func TestLocateHeader(t *testing.T) {
	layout, err := NewExtractor().LocateHeader(payloadGrid(3, 3, 3))
	if err != nil {
		t.Fatalf("LocateHeader failed: %v", err)
	}
	want := models.HeaderLayout{ResultsRowIndex: 2, KeywordRowIndex: 4, DataStartRowIndex: 6}
	if layout != want {
		t.Errorf("Expected %+v, got %+v", want, layout)
	}
}

func TestLocateHeaderRequiresOrder(t *testing.T) {
	// Parameter above results does not count.
	g := buildGrid([][]string{
		{"Parameter"},
		{"Results"},
		{"a"},
		{"1"},
	})
	_, err := NewExtractor().LocateHeader(g)
	if !errors.Is(err, ErrHeaderNotFound) {
		t.Fatalf("Expected ErrHeaderNotFound, got %v", err)
	}
	var ee *ExtractionError
	if !errors.As(err, &ee) || ee.Marker != DefaultParameterMarker {
		t.Errorf("Expected missing parameter marker, got %v", err)
	}
}

func TestParseMissingMarkers(t *testing.T) {
	tests := []struct {
		name   string
		rows   [][]string
		marker string
	}{
		{"no results", [][]string{{"Parameter"}, {"a"}, {"1"}}, DefaultResultsMarker},
		{"no parameter", [][]string{{"Results"}, {"a"}, {"1"}}, DefaultParameterMarker},
		{"no data rows", [][]string{{"Results"}, {"Parameter"}, {"a"}}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewExtractor().Parse(buildGrid(tt.rows), nil)
			if !errors.Is(err, ErrHeaderNotFound) {
				t.Fatalf("Expected ErrHeaderNotFound, got %v", err)
			}
			var ee *ExtractionError
			if !errors.As(err, &ee) {
				t.Fatalf("Expected *ExtractionError, got %T", err)
			}
			if ee.Marker != tt.marker {
				t.Errorf("Expected marker %q, got %q", tt.marker, ee.Marker)
			}
			if Category(err) != "extraction" {
				t.Errorf("Expected extraction category, got %q", Category(err))
			}
		})
	}
}

func TestParseTruncatesToHeaderLabels(t *testing.T) {
	table, err := NewExtractor().Parse(payloadGrid(45, 50, 50, 50), nil)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if table.Width() != 45 {
		t.Errorf("Expected 45 columns, got %d", table.Width())
	}
	if table.HeaderLabelCount != 45 || table.DataWidth != 50 || table.DroppedColumns != 5 {
		t.Errorf("Unexpected reconciliation %d/%d/%d", table.HeaderLabelCount, table.DataWidth, table.DroppedColumns)
	}
	if table.SevereMismatch {
		t.Errorf("5 of 50 dropped columns must not be flagged as severe")
	}
	for i, row := range table.Rows {
		if len(row) != 45 {
			t.Errorf("Row %d: expected width 45, got %d", i, len(row))
		}
	}
	if table.ColumnLabels[0] != "Column_1" || table.ColumnLabels[44] != "Column_45" {
		t.Errorf("Unexpected labels %q..%q", table.ColumnLabels[0], table.ColumnLabels[44])
	}
}

func TestParseTruncatesToDataWidth(t *testing.T) {
	table, err := NewExtractor().Parse(payloadGrid(30, 10, 12), nil)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if table.Width() != 12 {
		t.Errorf("Expected 12 columns, got %d", table.Width())
	}
	if !table.SevereMismatch {
		t.Errorf("Expected 18 of 30 dropped columns to be flagged")
	}
	// The short row is padded with empty cells.
	if !table.Rows[0][11].IsEmpty() {
		t.Errorf("Expected padding cell, got %+v", table.Rows[0][11])
	}
}

func TestParsePreservesValues(t *testing.T) {
	protocol := &models.ProtocolInfo{Type: models.ProtocolActivation, IVGroupCount: 1, ColumnStride: 6}
	g := buildGrid([][]string{
		{"Results"},
		{"Parameter"},
		{"A", "B", "C"},
		{"1.50", "text", ""},
		{"", "", ""},
		{"2e-3", "7"},
	})

	table, err := NewExtractor().Parse(g, protocol)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(table.Rows) != 3 {
		t.Fatalf("Expected every row from the data start on, got %d", len(table.Rows))
	}
	if table.Width() != 2 {
		t.Errorf("Expected width 2 (widest data row), got %d", table.Width())
	}
	if got := table.Rows[0][0].Raw; got != "1.50" {
		t.Errorf("Expected verbatim %q, got %q", "1.50", got)
	}
	if table.Rows[0][1].Kind != models.CellText {
		t.Errorf("Expected text cell, got %v", table.Rows[0][1].Kind)
	}
	if table.Protocol.Type != models.ProtocolActivation {
		t.Errorf("Expected protocol to be carried, got %q", table.Protocol.Type)
	}
	if table.Layout.DataStartRowIndex != 4 {
		t.Errorf("Expected data start row 4, got %d", table.Layout.DataStartRowIndex)
	}
}

func TestParseLabelRowFallback(t *testing.T) {
	g := buildGrid([][]string{
		{"Results"},
		{"Parameter", "x", "y"},
		{},
		{"1", "2", "3", "4"},
	})
	table, err := NewExtractor().Parse(g, nil)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if table.HeaderLabelCount != 3 || table.Width() != 3 {
		t.Errorf("Expected labels from the marker row, got %d/%d", table.HeaderLabelCount, table.Width())
	}
}

func TestParseEmptyPayload(t *testing.T) {
	g := buildGrid([][]string{
		{"Results"},
		{"Parameter"},
		{"A", "B"},
		{},
	})
	_, err := NewExtractor().Parse(g, nil)
	if !errors.Is(err, ErrEmptyPayload) {
		t.Fatalf("Expected ErrEmptyPayload, got %v", err)
	}
}
