package parser

import (
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/Chinrp0/NANION-EXPORT-ANALYSIS/pkg/nanion/models"
	"github.com/xuri/excelize/v2"
)

// Detection defaults.
const (
	DefaultDataPointsPerGroup = 23
	DefaultSweepCountCell     = "B2"
	DefaultHeaderScanRows     = 30

	// maxSweepCount bounds the sweep cell so group counts stay in int range.
	maxSweepCount = math.MaxInt32
)

// Protocol markers, compared case-insensitively.
const (
	markerPeak  = "peak"
	markerInact = "inact"
	markerAct   = "act"
)

// Detector infers protocol type and column layout from a header window.
// A Detector holds only configuration and may be copied per worker.
type Detector struct {
	// DataPointsPerGroup is the number of sweeps in one IV group.
	DataPointsPerGroup int
	// SweepCountCell is the A1 reference of the total sweep count.
	SweepCountCell string
	// ColumnMaps holds the static per-protocol block layouts.
	ColumnMaps map[models.ProtocolType]models.ColumnMap
	// Logger receives warnings; nil discards them.
	Logger *slog.Logger
}

// NewDetector returns a Detector with the default layout and constants.
func NewDetector() *Detector {
	return &Detector{
		DataPointsPerGroup: DefaultDataPointsPerGroup,
		SweepCountCell:     DefaultSweepCountCell,
		ColumnMaps:         DefaultColumnMaps(),
	}
}

// WithLogger returns a copy of d logging to l.
func (d *Detector) WithLogger(l *slog.Logger) *Detector {
	cp := *d
	cp.Logger = l
	return &cp
}

// Detect scans window top to bottom. On each row the activation marker is
// tested before the inactivation markers, and the first qualifying row wins.
func (d *Detector) Detect(window *models.RawGrid) (*models.ProtocolInfo, error) {
	protocol, row, ok := scanMarkers(window)
	if !ok {
		return nil, &ProtocolDetectionError{ScannedRows: window.Rows(), Err: ErrNoProtocolMarkersFound}
	}

	cm, ok := d.ColumnMaps[protocol]
	if !ok {
		return nil, &ProtocolDetectionError{
			ScannedRows: row + 1,
			Err:         fmt.Errorf("%w: no column map for %q", ErrUnknownProtocol, protocol),
		}
	}
	cm = cm.Clone()

	info := &models.ProtocolInfo{
		Type:               protocol,
		ColumnStride:       cm.Stride,
		FieldColumnOffsets: cm.Fields,
		DetectedRow:        row + 1,
	}

	total, ok := d.sweepCount(window)
	if ok {
		info.TotalSweeps = int(total)
		info.IVGroupCount = int(math.Ceil(total / float64(d.dataPointsPerGroup())))
	} else {
		info.IVGroupCount = max(1, window.Cols()/cm.Stride)
		info.Degraded = true
		loggerOrDiscard(d.Logger).Warn("Sweep count unavailable, IV group count approximated from columns",
			slog.String("cell", d.SweepCountCell),
			slog.Int("columns", window.Cols()),
			slog.Int("stride", cm.Stride),
			slog.Int("iv_groups", info.IVGroupCount))
	}
	return info, nil
}

// scanMarkers returns the protocol and 0-based row of the first qualifying row.
func scanMarkers(window *models.RawGrid) (models.ProtocolType, int, bool) {
	for r := 0; r < window.Rows(); r++ {
		text := strings.ToLower(rowText(window.Row(r)))
		if text == "" {
			continue
		}
		if strings.Contains(text, markerPeak) {
			return models.ProtocolActivation, r, true
		}
		if strings.Contains(text, markerInact) && strings.Contains(text, markerAct) {
			return models.ProtocolInactivation, r, true
		}
	}
	return "", 0, false
}

// sweepCount reads the total sweep count. It reports false when the cell
// is outside the window or does not hold a whole number in [1, maxSweepCount].
func (d *Detector) sweepCount(window *models.RawGrid) (float64, bool) {
	if d.SweepCountCell == "" {
		return 0, false
	}
	col, row, err := excelize.CellNameToCoordinates(d.SweepCountCell)
	if err != nil {
		return 0, false
	}
	cell := window.Cell(row-1, col-1)
	if cell.Kind != models.CellNumber || cell.Number < 1 || cell.Number > maxSweepCount {
		return 0, false
	}
	if cell.Number != math.Trunc(cell.Number) {
		return 0, false
	}
	return cell.Number, true
}

func (d *Detector) dataPointsPerGroup() int {
	if d.DataPointsPerGroup <= 0 {
		return DefaultDataPointsPerGroup
	}
	return d.DataPointsPerGroup
}
