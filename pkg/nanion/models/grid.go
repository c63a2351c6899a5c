package models

// RawGrid is an immutable row-major grid of cells read from one file.
// Rows may be ragged; Cols reports the widest row.
type RawGrid struct {
	rows [][]Cell
	cols int
}

// NewRawGrid builds a grid from row-major cells. The slices are owned by
// the grid afterwards and must not be modified by the caller.
func NewRawGrid(rows [][]Cell) *RawGrid {
	cols := 0
	for _, row := range rows {
		if len(row) > cols {
			cols = len(row)
		}
	}
	return &RawGrid{rows: rows, cols: cols}
}

// Rows returns the number of rows.
func (g *RawGrid) Rows() int {
	return len(g.rows)
}

// Cols returns the width of the widest row.
func (g *RawGrid) Cols() int {
	return g.cols
}

// Cell returns the cell at 0-based (row, col). Out-of-range positions are empty.
func (g *RawGrid) Cell(row, col int) Cell {
	if row < 0 || row >= len(g.rows) || col < 0 || col >= len(g.rows[row]) {
		return Cell{}
	}
	return g.rows[row][col]
}

// Row returns the cells of a 0-based row, or nil when out of range.
// The returned slice must be treated as read-only.
func (g *RawGrid) Row(row int) []Cell {
	if row < 0 || row >= len(g.rows) {
		return nil
	}
	return g.rows[row]
}

// Window returns rows [from, to) as a grid sharing the same cells.
// The window keeps the full grid width so column-based heuristics see
// the whole sheet.
func (g *RawGrid) Window(from, to int) *RawGrid {
	if from < 0 {
		from = 0
	}
	if to > len(g.rows) {
		to = len(g.rows)
	}
	if from > to {
		from = to
	}
	return &RawGrid{rows: g.rows[from:to], cols: g.cols}
}
