package models

// HeaderLayout locates the header block of a grid. Indices are 1-based.
type HeaderLayout struct {
	// ResultsRowIndex is the row holding the results marker.
	ResultsRowIndex int `json:"results_row_index"`
	// KeywordRowIndex is the row holding the parameter marker.
	KeywordRowIndex int `json:"keyword_row_index"`
	// DataStartRowIndex is the first payload row, always after KeywordRowIndex.
	DataStartRowIndex int `json:"data_start_row_index"`
}

// ParsedTable is the tabular payload extracted from one file.
type ParsedTable struct {
	// Source is the path of the file the table was read from.
	Source string `json:"source"`
	// ColumnLabels are positional labels, one per column.
	ColumnLabels []string `json:"column_labels"`
	// Rows holds the payload; every row has len(ColumnLabels) cells.
	Rows [][]Cell `json:"rows"`
	// Protocol is the protocol the table was extracted under.
	Protocol ProtocolInfo `json:"protocol"`
	// Layout is the header block the payload was located from.
	Layout HeaderLayout `json:"layout"`
	// HeaderLabelCount is the label count before reconciliation.
	HeaderLabelCount int `json:"header_label_count"`
	// DataWidth is the widest data row before reconciliation.
	DataWidth int `json:"data_width"`
	// DroppedColumns is how many columns reconciliation removed.
	DroppedColumns int `json:"dropped_columns,omitempty"`
	// SevereMismatch flags a label/data disagreement above the warning ratio.
	SevereMismatch bool `json:"severe_mismatch,omitempty"`
}

// Width returns the number of columns in the table.
func (t *ParsedTable) Width() int {
	return len(t.ColumnLabels)
}
