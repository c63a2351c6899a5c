// Package models defines data structures for patch-clamp export ingestion.
package models

// CellKind classifies a raw spreadsheet cell.
type CellKind int

const (
	// CellEmpty is a missing or whitespace-only cell.
	CellEmpty CellKind = iota
	// CellText is a cell holding non-numeric text.
	CellText
	// CellNumber is a cell whose text parses as a number.
	CellNumber
)

// String returns the kind name.
func (k CellKind) String() string {
	switch k {
	case CellText:
		return "text"
	case CellNumber:
		return "number"
	default:
		return "empty"
	}
}

// Cell is a single heterogeneous grid value.
type Cell struct {
	// Kind is the classified cell type.
	Kind CellKind `json:"kind"`
	// Raw is the cell text exactly as read from the file.
	Raw string `json:"raw,omitempty"`
	// Number holds the parsed value when Kind is CellNumber.
	Number float64 `json:"number,omitempty"`
}

// IsEmpty reports whether the cell carries no value.
func (c Cell) IsEmpty() bool {
	return c.Kind == CellEmpty
}

// IsText reports whether the cell carries non-numeric text.
func (c Cell) IsText() bool {
	return c.Kind == CellText
}
