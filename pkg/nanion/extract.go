package nanion

import (
	"log/slog"

	"github.com/Chinrp0/NANION-EXPORT-ANALYSIS/pkg/nanion/models"
	"github.com/Chinrp0/NANION-EXPORT-ANALYSIS/pkg/nanion/parser"
)

// Validated is a file that was read and whose protocol was detected.
type Validated struct {
	Path     string
	Grid     *models.RawGrid
	Protocol *models.ProtocolInfo
}

// Pipeline runs read, detect and parse for single files. Its components
// hold only configuration; WithLogger gives each task its own copy.
type Pipeline struct {
	reader         *parser.Reader
	detector       *parser.Detector
	extractor      *parser.Extractor
	headerScanRows int
}

// NewPipeline builds a pipeline from validated options.
func NewPipeline(opts Options) (*Pipeline, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	reader := parser.NewReader()
	reader.SheetName = opts.SheetName
	reader.MinRows = opts.MinRows
	reader.MinCols = opts.MinCols
	reader.SizeWarnBytes = opts.SizeWarnBytes
	reader.MaxFileBytes = opts.MaxFileBytes

	detector := parser.NewDetector()
	detector.DataPointsPerGroup = opts.DataPointsPerGroup
	detector.SweepCountCell = opts.SweepCountCell
	detector.ColumnMaps = opts.columnMaps()

	extractor := parser.NewExtractor()
	extractor.ResultsMarker = opts.ResultsMarker
	extractor.ParameterMarker = opts.ParameterMarker
	extractor.MismatchWarnRatio = opts.MismatchWarnRatio

	return &Pipeline{
		reader:         reader,
		detector:       detector,
		extractor:      extractor,
		headerScanRows: opts.HeaderScanRows,
	}, nil
}

// WithLogger returns a copy of p whose components log to l.
func (p *Pipeline) WithLogger(l *slog.Logger) *Pipeline {
	return &Pipeline{
		reader:         p.reader.WithLogger(l),
		detector:       p.detector.WithLogger(l),
		extractor:      p.extractor.WithLogger(l),
		headerScanRows: p.headerScanRows,
	}
}

// Validate reads path and detects its protocol from the header window.
func (p *Pipeline) Validate(path string) (*Validated, error) {
	grid, err := p.reader.Read(path)
	if err != nil {
		return nil, err
	}
	protocol, err := p.detector.Detect(grid.Window(0, p.headerScanRows))
	if err != nil {
		return nil, err
	}
	return &Validated{Path: path, Grid: grid, Protocol: protocol}, nil
}

// Parse extracts the payload of a validated file.
func (p *Pipeline) Parse(v *Validated) (*models.ParsedTable, error) {
	table, err := p.extractor.Parse(v.Grid, v.Protocol)
	if err != nil {
		return nil, err
	}
	table.Source = v.Path
	return table, nil
}

// Extract reads, detects and parses a single export file.
func Extract(path string, opts Options) (*models.ParsedTable, error) {
	p, err := NewPipeline(opts)
	if err != nil {
		return nil, err
	}
	v, err := p.Validate(path)
	if err != nil {
		return nil, err
	}
	return p.Parse(v)
}
