package models

import "sort"

// ProtocolType is the voltage-clamp protocol family of an export.
type ProtocolType string

const (
	// ProtocolActivation records peak current, stride-6 column blocks.
	ProtocolActivation ProtocolType = "activation"
	// ProtocolInactivation records inactivation/activation current, stride-7 column blocks.
	ProtocolInactivation ProtocolType = "inactivation"
)

// Field names used in column maps.
const (
	FieldPeakCurrent         = "peak_current"
	FieldInactivationCurrent = "inactivation_current"
	FieldActivationCurrent   = "activation_current"
	FieldVoltage             = "voltage"
	FieldSeriesResistance    = "series_resistance"
	FieldSealResistance      = "seal_resistance"
	FieldCapacitance         = "capacitance"
	FieldSweepTime           = "sweep_time"
)

// ColumnMap is the static per-protocol layout of one IV-group block.
type ColumnMap struct {
	// Stride is the number of columns occupied by one IV group.
	Stride int `json:"stride" yaml:"stride"`
	// Fields maps a field name to its offsets inside a block.
	Fields map[string][]int `json:"fields" yaml:"fields"`
}

// Clone returns a deep copy of the map.
func (m ColumnMap) Clone() ColumnMap {
	fields := make(map[string][]int, len(m.Fields))
	for name, offsets := range m.Fields {
		fields[name] = append([]int(nil), offsets...)
	}
	return ColumnMap{Stride: m.Stride, Fields: fields}
}

// ProtocolInfo describes the protocol and column layout of one file.
// It is produced once per file and never modified afterwards.
type ProtocolInfo struct {
	// Type is the detected protocol family.
	Type ProtocolType `json:"type"`
	// IVGroupCount is the number of IV groups, always at least 1.
	IVGroupCount int `json:"iv_group_count"`
	// ColumnStride is the number of columns per IV group.
	ColumnStride int `json:"column_stride"`
	// FieldColumnOffsets maps field names to in-block column offsets.
	FieldColumnOffsets map[string][]int `json:"field_column_offsets"`
	// TotalSweeps is the sweep count read from the header, 0 when unavailable.
	TotalSweeps int `json:"total_sweeps,omitempty"`
	// Degraded is set when IVGroupCount was approximated from the column count.
	Degraded bool `json:"degraded,omitempty"`
	// DetectedRow is the 1-based row in which the protocol marker was found.
	DetectedRow int `json:"detected_row"`
}

// FieldNames returns the mapped field names in sorted order.
func (p *ProtocolInfo) FieldNames() []string {
	names := make([]string, 0, len(p.FieldColumnOffsets))
	for name := range p.FieldColumnOffsets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ColumnsFor returns the absolute 0-based grid columns of a field within
// the given 0-based IV group. It returns nil for unknown fields or groups.
func (p *ProtocolInfo) ColumnsFor(field string, group int) []int {
	offsets, ok := p.FieldColumnOffsets[field]
	if !ok || group < 0 || group >= p.IVGroupCount {
		return nil
	}
	cols := make([]int, len(offsets))
	for i, off := range offsets {
		cols[i] = group*p.ColumnStride + off
	}
	return cols
}
