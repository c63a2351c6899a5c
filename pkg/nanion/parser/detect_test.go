package parser

import (
	"errors"
	"testing"

	"github.com/Chinrp0/NANION-EXPORT-ANALYSIS/pkg/nanion/models"
)

// headerGrid returns a window with sweeps in B2 and the given text rows
// from row 3 on, padded to width columns.
func headerGrid(sweeps string, width int, rows ...[]string) *models.RawGrid {
	all := [][]string{{"Export"}, {"Total sweeps", sweeps}}
	all = append(all, rows...)
	pad := make([]string, width)
	pad[width-1] = "1"
	all = append(all, pad)
	return buildGrid(all)
}

func TestDetectActivation(t *testing.T) {
	g := headerGrid("200", 24, []string{"Protocol", "Peak current"})

	info, err := NewDetector().Detect(g)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if info.Type != models.ProtocolActivation {
		t.Errorf("Expected activation, got %s", info.Type)
	}
	if info.ColumnStride != 6 {
		t.Errorf("Expected stride 6, got %d", info.ColumnStride)
	}
	if info.IVGroupCount != 9 {
		t.Errorf("Expected 9 IV groups for 200 sweeps, got %d", info.IVGroupCount)
	}
	if info.Degraded {
		t.Errorf("Expected authoritative group count")
	}
	if info.DetectedRow != 3 {
		t.Errorf("Expected marker on row 3, got %d", info.DetectedRow)
	}
}

func TestDetectInactivation(t *testing.T) {
	g := headerGrid("23", 24,
		[]string{"Protocol", "steady state"},
		[]string{"Inact", "Act"},
	)

	info, err := NewDetector().Detect(g)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if info.Type != models.ProtocolInactivation {
		t.Errorf("Expected inactivation, got %s", info.Type)
	}
	if info.ColumnStride != 7 {
		t.Errorf("Expected stride 7, got %d", info.ColumnStride)
	}
	if info.IVGroupCount != 1 {
		t.Errorf("Expected 1 IV group for 23 sweeps, got %d", info.IVGroupCount)
	}
	if _, ok := info.FieldColumnOffsets[models.FieldInactivationCurrent]; !ok {
		t.Errorf("Expected inactivation current field in column map")
	}
}

func TestDetectPriority(t *testing.T) {
	tests := []struct {
		name string
		rows [][]string
		want models.ProtocolType
		row  int
	}{
		{
			name: "peak wins within the same row",
			rows: [][]string{{"Inactivation", "Activation", "Peak"}},
			want: models.ProtocolActivation,
			row:  3,
		},
		{
			name: "earlier inactivation row wins over later peak row",
			rows: [][]string{{"Inact", "Act"}, {"Peak"}},
			want: models.ProtocolInactivation,
			row:  3,
		},
		{
			name: "earlier peak row wins over later inactivation row",
			rows: [][]string{{"peak I"}, {"INACT", "ACT"}},
			want: models.ProtocolActivation,
			row:  3,
		},
		{
			name: "a lone inact marker also contains act",
			rows: [][]string{{"Inact only here"}, {"Activation"}, {"PEAK"}},
			want: models.ProtocolInactivation,
			row:  3,
		},
		{
			name: "marker split across adjacent cells",
			rows: [][]string{{"Activation"}, {"Pe", "ak current"}},
			want: models.ProtocolActivation,
			row:  4,
		},
		{
			name: "activation alone does not qualify",
			rows: [][]string{{"Activation"}, {"Peak"}},
			want: models.ProtocolActivation,
			row:  4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info, err := NewDetector().Detect(headerGrid("46", 24, tt.rows...))
			if err != nil {
				t.Fatalf("Detect failed: %v", err)
			}
			if info.Type != tt.want {
				t.Errorf("Expected %s, got %s", tt.want, info.Type)
			}
			if info.DetectedRow != tt.row {
				t.Errorf("Expected row %d, got %d", tt.row, info.DetectedRow)
			}
		})
	}
}

func TestDetectIgnoresNumericCells(t *testing.T) {
	// Numbers never contribute to the search text, so a numeric-only row
	// cannot match and detection must fail.
	g := buildGrid([][]string{{"1", "2"}, {"3.5"}})
	_, err := NewDetector().Detect(g)
	if !errors.Is(err, ErrNoProtocolMarkersFound) {
		t.Fatalf("Expected ErrNoProtocolMarkersFound, got %v", err)
	}
}

func TestDetectNoMarkers(t *testing.T) {
	g := headerGrid("46", 24, []string{"Protocol", "Ramp"}, []string{"Results"})

	_, err := NewDetector().Detect(g)
	if !errors.Is(err, ErrNoProtocolMarkersFound) {
		t.Fatalf("Expected ErrNoProtocolMarkersFound, got %v", err)
	}
	var pe *ProtocolDetectionError
	if !errors.As(err, &pe) {
		t.Fatalf("Expected *ProtocolDetectionError, got %T", err)
	}
	if pe.ScannedRows != g.Rows() {
		t.Errorf("Expected %d scanned rows, got %d", g.Rows(), pe.ScannedRows)
	}
	if Category(err) != "protocol" {
		t.Errorf("Expected protocol category, got %q", Category(err))
	}
}

func TestDetectIVGroupCount(t *testing.T) {
	tests := []struct {
		sweeps   string
		width    int
		groups   int
		degraded bool
	}{
		{"200", 24, 9, false},
		{"23", 24, 1, false},
		{"24", 24, 2, false},
		{"46.0", 24, 2, false},
		{"", 24, 4, true},
		{"n/a", 24, 4, true},
		{"0", 24, 4, true},
		{"-5", 24, 4, true},
		{"", 5, 1, true},
		{"46.5", 24, 4, true},
		{"1e30", 24, 4, true},
		{"2147483648", 24, 4, true},
		{"2147483647", 24, 93368855, false},
	}

	for _, tt := range tests {
		g := headerGrid(tt.sweeps, tt.width, []string{"Peak"})
		info, err := NewDetector().Detect(g)
		if err != nil {
			t.Fatalf("Detect(sweeps=%q) failed: %v", tt.sweeps, err)
		}
		if info.IVGroupCount != tt.groups {
			t.Errorf("sweeps=%q width=%d: expected %d groups, got %d", tt.sweeps, tt.width, tt.groups, info.IVGroupCount)
		}
		if info.Degraded != tt.degraded {
			t.Errorf("sweeps=%q: expected degraded=%v, got %v", tt.sweeps, tt.degraded, info.Degraded)
		}
		if info.IVGroupCount < 1 || info.TotalSweeps < 0 {
			t.Errorf("sweeps=%q: expected positive counts, got groups=%d total=%d", tt.sweeps, info.IVGroupCount, info.TotalSweeps)
		}
	}
}

func TestDetectCustomDataPointsPerGroup(t *testing.T) {
	d := NewDetector()
	d.DataPointsPerGroup = 10
	info, err := d.Detect(headerGrid("25", 24, []string{"Peak"}))
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if info.IVGroupCount != 3 {
		t.Errorf("Expected 3 groups, got %d", info.IVGroupCount)
	}
}

func TestDetectSweepCellOutsideWindow(t *testing.T) {
	d := NewDetector()
	d.SweepCountCell = "B50"
	info, err := d.Detect(headerGrid("46", 24, []string{"Peak"}))
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if !info.Degraded {
		t.Errorf("Expected degraded result when the sweep cell is outside the window")
	}
}

func TestDetectReturnsIndependentColumnMaps(t *testing.T) {
	d := NewDetector()
	g := headerGrid("46", 24, []string{"Peak"})
	first, err := d.Detect(g)
	if err != nil {
		t.Fatal(err)
	}
	first.FieldColumnOffsets[models.FieldCapacitance][0] = 99

	second, err := d.Detect(g)
	if err != nil {
		t.Fatal(err)
	}
	if second.FieldColumnOffsets[models.FieldCapacitance][0] == 99 {
		t.Errorf("Detect results must not share column map storage")
	}
}

func TestColumnsFor(t *testing.T) {
	info, err := NewDetector().Detect(headerGrid("46", 24, []string{"Peak"}))
	if err != nil {
		t.Fatal(err)
	}
	got := info.ColumnsFor(models.FieldSealResistance, 1)
	if len(got) != 1 || got[0] != 9 {
		t.Errorf("Expected seal resistance of group 2 in column 9, got %v", got)
	}
	if info.ColumnsFor(models.FieldSealResistance, 2) != nil {
		t.Errorf("Expected nil for a group past IVGroupCount")
	}
	if info.ColumnsFor("unknown", 0) != nil {
		t.Errorf("Expected nil for an unknown field")
	}
}

func TestValidateColumnMap(t *testing.T) {
	for protocol, cm := range DefaultColumnMaps() {
		if err := ValidateColumnMap(protocol, cm); err != nil {
			t.Errorf("default %s map invalid: %v", protocol, err)
		}
	}

	bad := DefaultColumnMaps()[models.ProtocolActivation].Clone()
	bad.Stride = 7
	if err := ValidateColumnMap(models.ProtocolActivation, bad); err == nil {
		t.Errorf("Expected stride mismatch error")
	}

	bad = DefaultColumnMaps()[models.ProtocolActivation].Clone()
	bad.Fields[models.FieldVoltage] = []int{6}
	if err := ValidateColumnMap(models.ProtocolActivation, bad); err == nil {
		t.Errorf("Expected out-of-block offset error")
	}

	bad = DefaultColumnMaps()[models.ProtocolInactivation].Clone()
	delete(bad.Fields, models.FieldCapacitance)
	if err := ValidateColumnMap(models.ProtocolInactivation, bad); err == nil {
		t.Errorf("Expected missing QC field error")
	}

	if err := ValidateColumnMap("ramp", bad); !errors.Is(err, ErrUnknownProtocol) {
		t.Errorf("Expected ErrUnknownProtocol, got %v", err)
	}
}
