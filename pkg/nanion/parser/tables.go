package parser

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Chinrp0/NANION-EXPORT-ANALYSIS/pkg/nanion/models"
)

// Extraction defaults.
const (
	DefaultResultsMarker     = "results"
	DefaultParameterMarker   = "parameter"
	DefaultMismatchWarnRatio = 0.25

	// dataOffset is the distance from the parameter marker row to the first data row.
	dataOffset = 2
)

// Extractor locates the header block of a grid and slices out its payload.
// An Extractor holds only configuration and may be copied per worker.
type Extractor struct {
	// ResultsMarker and ParameterMarker are matched case-insensitively
	// against the joined text of each row.
	ResultsMarker   string
	ParameterMarker string
	// MismatchWarnRatio is the dropped-column share above which a table
	// is flagged as severely mismatched.
	MismatchWarnRatio float64
	// Logger receives warnings; nil discards them.
	Logger *slog.Logger
}

// NewExtractor returns an Extractor with the default markers.
func NewExtractor() *Extractor {
	return &Extractor{
		ResultsMarker:     DefaultResultsMarker,
		ParameterMarker:   DefaultParameterMarker,
		MismatchWarnRatio: DefaultMismatchWarnRatio,
	}
}

// WithLogger returns a copy of e logging to l.
func (e *Extractor) WithLogger(l *slog.Logger) *Extractor {
	cp := *e
	cp.Logger = l
	return &cp
}

// LocateHeader finds the results marker row, then the first parameter
// marker row below it. Data starts two rows after the parameter marker.
func (e *Extractor) LocateHeader(grid *models.RawGrid) (models.HeaderLayout, error) {
	results := findMarkerRow(grid, e.ResultsMarker, 0)
	if results < 0 {
		return models.HeaderLayout{}, &ExtractionError{Marker: e.ResultsMarker, Err: ErrHeaderNotFound}
	}
	keyword := findMarkerRow(grid, e.ParameterMarker, results+1)
	if keyword < 0 {
		return models.HeaderLayout{}, &ExtractionError{Marker: e.ParameterMarker, Err: ErrHeaderNotFound}
	}
	dataStart := keyword + dataOffset
	if dataStart >= grid.Rows() {
		return models.HeaderLayout{}, &ExtractionError{
			Err: fmt.Errorf("%w: data would start at row %d of %d", ErrHeaderNotFound, dataStart+1, grid.Rows()),
		}
	}
	return models.HeaderLayout{
		ResultsRowIndex:   results + 1,
		KeywordRowIndex:   keyword + 1,
		DataStartRowIndex: dataStart + 1,
	}, nil
}

// Parse extracts the payload of grid. The header label count and the data
// width are measured independently and both truncated to their minimum.
// Cell values are copied verbatim.
func (e *Extractor) Parse(grid *models.RawGrid, protocol *models.ProtocolInfo) (*models.ParsedTable, error) {
	layout, err := e.LocateHeader(grid)
	if err != nil {
		return nil, err
	}

	// Labels come from the row between the marker and the data, falling
	// back to the marker row itself when that row is blank.
	labelCount := trimmedWidth(grid.Row(layout.KeywordRowIndex))
	if labelCount == 0 {
		labelCount = trimmedWidth(grid.Row(layout.KeywordRowIndex - 1))
	}

	dataWidth := 0
	for r := layout.DataStartRowIndex - 1; r < grid.Rows(); r++ {
		dataWidth = max(dataWidth, trimmedWidth(grid.Row(r)))
	}

	width := min(labelCount, dataWidth)
	if width == 0 {
		return nil, &ExtractionError{
			Err: fmt.Errorf("%w: %d header labels, data width %d", ErrEmptyPayload, labelCount, dataWidth),
		}
	}

	table := &models.ParsedTable{
		ColumnLabels:     columnLabels(width),
		Layout:           layout,
		HeaderLabelCount: labelCount,
		DataWidth:        dataWidth,
		DroppedColumns:   max(labelCount, dataWidth) - width,
	}
	if protocol != nil {
		table.Protocol = *protocol
	}

	if table.DroppedColumns > 0 {
		ratio := float64(table.DroppedColumns) / float64(max(labelCount, dataWidth))
		table.SevereMismatch = e.MismatchWarnRatio > 0 && ratio > e.MismatchWarnRatio
		level := slog.LevelInfo
		if table.SevereMismatch {
			level = slog.LevelWarn
		}
		loggerOrDiscard(e.Logger).Log(context.Background(), level, "Column count mismatch truncated",
			slog.Int("header_labels", labelCount),
			slog.Int("data_width", dataWidth),
			slog.Int("kept", width),
			slog.Float64("dropped_ratio", ratio))
	}

	rows := make([][]models.Cell, 0, grid.Rows()-layout.DataStartRowIndex+1)
	for r := layout.DataStartRowIndex - 1; r < grid.Rows(); r++ {
		row := make([]models.Cell, width)
		copy(row, grid.Row(r))
		rows = append(rows, row)
	}
	table.Rows = rows
	return table, nil
}

// findMarkerRow returns the first 0-based row at or after from whose text
// contains marker, or -1.
func findMarkerRow(grid *models.RawGrid, marker string, from int) int {
	marker = strings.ToLower(marker)
	if marker == "" {
		return -1
	}
	for r := from; r < grid.Rows(); r++ {
		if strings.Contains(strings.ToLower(rowText(grid.Row(r))), marker) {
			return r
		}
	}
	return -1
}

// columnLabels returns positional labels Column_1..Column_n.
func columnLabels(n int) []string {
	labels := make([]string, n)
	for i := range labels {
		labels[i] = fmt.Sprintf("Column_%d", i+1)
	}
	return labels
}
