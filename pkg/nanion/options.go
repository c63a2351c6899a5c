// Package nanion extracts per-sweep measurement tables from patch-clamp
// spreadsheet exports.
package nanion

import (
	"fmt"

	"github.com/Chinrp0/NANION-EXPORT-ANALYSIS/pkg/nanion/models"
	"github.com/Chinrp0/NANION-EXPORT-ANALYSIS/pkg/nanion/parser"
)

// Options configures single-file extraction.
type Options struct {
	// SheetName selects the worksheet; empty means the first sheet.
	SheetName string
	// HeaderScanRows is the number of leading rows searched for protocol markers.
	HeaderScanRows int
	// DataPointsPerGroup is the number of sweeps in one IV group.
	DataPointsPerGroup int
	// SweepCountCell is the A1 reference holding the total sweep count.
	SweepCountCell string
	// ColumnMaps overrides the built-in per-protocol column layouts.
	// If nil, parser.DefaultColumnMaps is used.
	ColumnMaps map[models.ProtocolType]models.ColumnMap
	// ResultsMarker and ParameterMarker locate the header block.
	ResultsMarker   string
	ParameterMarker string
	// MismatchWarnRatio flags tables losing more than this share of columns.
	MismatchWarnRatio float64
	// MinRows and MinCols bound the accepted grid shape.
	MinRows int
	MinCols int
	// SizeWarnBytes logs a warning for larger files; 0 disables it.
	SizeWarnBytes int64
	// MaxFileBytes rejects larger files; 0 disables it.
	MaxFileBytes int64
}

// DefaultOptions returns default extraction options.
func DefaultOptions() Options {
	return Options{
		HeaderScanRows:     parser.DefaultHeaderScanRows,
		DataPointsPerGroup: parser.DefaultDataPointsPerGroup,
		SweepCountCell:     parser.DefaultSweepCountCell,
		ResultsMarker:      parser.DefaultResultsMarker,
		ParameterMarker:    parser.DefaultParameterMarker,
		MismatchWarnRatio:  parser.DefaultMismatchWarnRatio,
		MinRows:            parser.DefaultMinRows,
		MinCols:            parser.DefaultMinCols,
	}
}

// columnMaps returns the effective column maps, filling in defaults for
// protocols without an override.
func (o Options) columnMaps() map[models.ProtocolType]models.ColumnMap {
	maps := parser.DefaultColumnMaps()
	for t, m := range o.ColumnMaps {
		maps[t] = m.Clone()
	}
	return maps
}

// Validate checks the options for values extraction cannot run with.
func (o Options) Validate() error {
	if o.HeaderScanRows < 1 {
		return fmt.Errorf("header scan rows must be positive, got %d", o.HeaderScanRows)
	}
	if o.DataPointsPerGroup < 1 {
		return fmt.Errorf("data points per group must be positive, got %d", o.DataPointsPerGroup)
	}
	if o.ResultsMarker == "" || o.ParameterMarker == "" {
		return fmt.Errorf("header markers must not be empty")
	}
	for t, m := range o.columnMaps() {
		if err := parser.ValidateColumnMap(t, m); err != nil {
			return err
		}
	}
	return nil
}
