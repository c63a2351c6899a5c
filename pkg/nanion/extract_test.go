package nanion

import (
	"errors"
	"testing"

	"github.com/Chinrp0/NANION-EXPORT-ANALYSIS/internal/testutil"
	"github.com/Chinrp0/NANION-EXPORT-ANALYSIS/pkg/nanion/models"
)

func TestExtractActivation(t *testing.T) {
	path := testutil.WriteExport(t, t.TempDir(), "act.xlsx", testutil.Activation())

	table, err := Extract(path, DefaultOptions())
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if table.Source != path {
		t.Errorf("Expected source %q, got %q", path, table.Source)
	}
	if table.Protocol.Type != models.ProtocolActivation {
		t.Errorf("Expected activation, got %s", table.Protocol.Type)
	}
	if table.Protocol.IVGroupCount != 2 {
		t.Errorf("Expected 2 IV groups, got %d", table.Protocol.IVGroupCount)
	}
	if table.Width() != 24 {
		t.Errorf("Expected 24 columns, got %d", table.Width())
	}
	if len(table.Rows) != 5 {
		t.Errorf("Expected 5 data rows, got %d", len(table.Rows))
	}
	if table.Layout.DataStartRowIndex != 9 {
		t.Errorf("Expected data start row 9, got %d", table.Layout.DataStartRowIndex)
	}
}

func TestExtractInactivation(t *testing.T) {
	path := testutil.WriteExport(t, t.TempDir(), "inact.xlsx", testutil.Inactivation())

	table, err := Extract(path, DefaultOptions())
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if table.Protocol.Type != models.ProtocolInactivation {
		t.Errorf("Expected inactivation, got %s", table.Protocol.Type)
	}
	if table.Protocol.ColumnStride != 7 {
		t.Errorf("Expected stride 7, got %d", table.Protocol.ColumnStride)
	}
}

func TestExtractFailures(t *testing.T) {
	dir := t.TempDir()

	noMarkers := testutil.Activation()
	noMarkers.Protocol = "Ramp"
	noHeader := testutil.Activation()
	noHeader.OmitResults = true

	tests := []struct {
		name     string
		path     string
		want     error
		category string
	}{
		{"missing", dir + "/missing.xlsx", ErrFileNotFound, "structural"},
		{"no markers", testutil.WriteExport(t, dir, "ramp.xlsx", noMarkers), ErrNoProtocolMarkersFound, "protocol"},
		{"no header", testutil.WriteExport(t, dir, "nohdr.xlsx", noHeader), ErrHeaderNotFound, "extraction"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Extract(tt.path, DefaultOptions())
			if !errors.Is(err, tt.want) {
				t.Fatalf("Expected %v, got %v", tt.want, err)
			}
			if got := Classify(err); got != tt.category {
				t.Errorf("Expected category %q, got %q", tt.category, got)
			}
		})
	}
}

func TestOptionsValidate(t *testing.T) {
	opts := DefaultOptions()
	if err := opts.Validate(); err != nil {
		t.Fatalf("default options invalid: %v", err)
	}

	opts.HeaderScanRows = 0
	if err := opts.Validate(); err == nil {
		t.Errorf("Expected error for zero header scan rows")
	}

	opts = DefaultOptions()
	bad := models.ColumnMap{Stride: 5, Fields: map[string][]int{}}
	opts.ColumnMaps = map[models.ProtocolType]models.ColumnMap{models.ProtocolActivation: bad}
	if _, err := NewPipeline(opts); err == nil {
		t.Errorf("Expected NewPipeline to reject an invalid column map")
	}
}
