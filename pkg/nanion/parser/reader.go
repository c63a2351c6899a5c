// Package parser reads patch-clamp exports and extracts their measurement tables.
package parser

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/Chinrp0/NANION-EXPORT-ANALYSIS/pkg/nanion/models"
	"github.com/xuri/excelize/v2"
)

// Minimum shape of an export grid.
const (
	DefaultMinRows = 10
	DefaultMinCols = 20
)

// workbookExtensions are opened with excelize.
var workbookExtensions = map[string]bool{
	".xlsx": true,
	".xlsm": true,
	".xltx": true,
	".xltm": true,
}

// SupportedExtension reports whether path has a readable spreadsheet extension.
func SupportedExtension(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return workbookExtensions[ext] || ext == ".csv"
}

// Reader opens one export file and returns its raw cell grid.
// A Reader holds only configuration and may be copied per worker.
type Reader struct {
	// SheetName selects the worksheet; empty means the first sheet.
	SheetName string
	// MinRows and MinCols bound the accepted grid shape.
	MinRows int
	MinCols int
	// SizeWarnBytes logs a warning for larger files; 0 disables it.
	SizeWarnBytes int64
	// MaxFileBytes rejects larger files; 0 disables it.
	MaxFileBytes int64
	// Logger receives warnings; nil discards them.
	Logger *slog.Logger
}

// NewReader returns a Reader with default shape limits.
func NewReader() *Reader {
	return &Reader{MinRows: DefaultMinRows, MinCols: DefaultMinCols}
}

// WithLogger returns a copy of r logging to l.
func (r *Reader) WithLogger(l *slog.Logger) *Reader {
	cp := *r
	cp.Logger = l
	return &cp
}

// Read loads path into a RawGrid. Any failure is returned as a
// *StructuralFileError; no alternate decoder is tried.
func (r *Reader) Read(path string) (*models.RawGrid, error) {
	grid, err := r.read(path)
	if err != nil {
		return nil, &StructuralFileError{Path: path, Err: err}
	}
	return grid, nil
}

func (r *Reader) read(path string) (*models.RawGrid, error) {
	log := loggerOrDiscard(r.Logger)

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrFileNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}
	if info.IsDir() || !SupportedExtension(path) {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}
	if info.Size() == 0 {
		return nil, ErrEmptyFile
	}
	if r.MaxFileBytes > 0 && info.Size() > r.MaxFileBytes {
		return nil, fmt.Errorf("%w: %d bytes exceeds limit of %d", ErrFileTooLarge, info.Size(), r.MaxFileBytes)
	}
	if r.SizeWarnBytes > 0 && info.Size() > r.SizeWarnBytes {
		log.Warn("Large input file",
			slog.String("file", path),
			slog.Int64("size_bytes", info.Size()),
			slog.Int64("warn_bytes", r.SizeWarnBytes))
	}

	var rows [][]string
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		rows, err = readCSV(path)
	} else {
		rows, err = r.readWorkbook(path)
	}
	if err != nil {
		return nil, err
	}

	grid := buildGrid(rows)
	if isBlank(grid) {
		return nil, ErrEmptyFile
	}
	cols := occupiedCols(grid)
	if grid.Rows() < r.MinRows || cols < r.MinCols {
		return nil, fmt.Errorf("%w: %d rows x %d columns, need at least %d x %d",
			ErrInsufficientShape, grid.Rows(), cols, r.MinRows, r.MinCols)
	}

	log.Debug("Read grid",
		slog.String("file", path),
		slog.Int("rows", grid.Rows()),
		slog.Int("cols", cols))
	return grid, nil
}

// occupiedCols is the widest row once trailing empty cells are ignored.
func occupiedCols(grid *models.RawGrid) int {
	n := 0
	for r := 0; r < grid.Rows(); r++ {
		n = max(n, trimmedWidth(grid.Row(r)))
	}
	return n
}

// readWorkbook returns the unformatted cell values of the selected sheet.
func (r *Reader) readWorkbook(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}
	defer f.Close()

	sheetName := r.SheetName
	if sheetName == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, ErrEmptyFile
		}
		sheetName = sheets[0]
	}

	rows, err := f.GetRows(sheetName, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("%w: sheet %q: %v", ErrUnreadable, sheetName, err)
	}
	return rows, nil
}

// readCSV reads a ragged delimited export. The delimiter is sniffed from
// the first non-empty line.
func readCSV(path string) ([][]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	cr := csv.NewReader(bytes.NewReader(data))
	cr.Comma = sniffDelimiter(data)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	var rows [][]string
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnreadable, err)
		}
		rows = append(rows, record)
	}
	return rows, nil
}

func sniffDelimiter(data []byte) rune {
	for _, line := range bytes.Split(data, []byte("\n")) {
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		best, bestCount := ',', bytes.Count(line, []byte(","))
		for _, d := range []rune{';', '\t'} {
			if n := bytes.Count(line, []byte(string(d))); n > bestCount {
				best, bestCount = d, n
			}
		}
		return best
	}
	return ','
}

func isBlank(grid *models.RawGrid) bool {
	for r := 0; r < grid.Rows(); r++ {
		if trimmedWidth(grid.Row(r)) > 0 {
			return false
		}
	}
	return true
}

func loggerOrDiscard(l *slog.Logger) *slog.Logger {
	if l == nil {
		return slog.New(slog.DiscardHandler)
	}
	return l
}
