package parser

import (
	"math"
	"strconv"
	"strings"

	"github.com/Chinrp0/NANION-EXPORT-ANALYSIS/pkg/nanion/models"
)

// buildGrid converts rows of raw strings into a RawGrid.
func buildGrid(rows [][]string) *models.RawGrid {
	cells := make([][]models.Cell, len(rows))
	for r, row := range rows {
		out := make([]models.Cell, len(row))
		for c, value := range row {
			out[c] = classifyCell(value)
		}
		cells[r] = out
	}
	return models.NewRawGrid(cells)
}

// classifyCell attempts to parse a string value as a number.
// Raw always keeps the original text.
func classifyCell(s string) models.Cell {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return models.Cell{Kind: models.CellEmpty, Raw: s}
	}
	if n, ok := parseNumber(trimmed); ok {
		return models.Cell{Kind: models.CellNumber, Raw: s, Number: n}
	}
	return models.Cell{Kind: models.CellText, Raw: s}
}

// parseNumber parses integers and finite decimals. NaN and infinities
// are treated as text.
func parseNumber(s string) (float64, bool) {
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return float64(i), true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// rowText concatenates the trimmed text cells of a row with no separator,
// so a marker split across adjacent cells still matches.
// Numeric and empty cells contribute nothing.
func rowText(row []models.Cell) string {
	var b strings.Builder
	for _, cell := range row {
		if cell.IsText() {
			b.WriteString(strings.TrimSpace(cell.Raw))
		}
	}
	return b.String()
}

// trimmedWidth returns the row width without trailing empty cells.
func trimmedWidth(row []models.Cell) int {
	n := len(row)
	for n > 0 && row[n-1].IsEmpty() {
		n--
	}
	return n
}
