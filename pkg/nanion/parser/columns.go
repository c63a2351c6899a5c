package parser

import (
	"fmt"

	"github.com/Chinrp0/NANION-EXPORT-ANALYSIS/pkg/nanion/models"
)

// Column strides of the two protocol families.
const (
	ActivationStride   = 6
	InactivationStride = 7
)

// qcFields must be present in every column map.
var qcFields = []string{
	models.FieldSeriesResistance,
	models.FieldSealResistance,
	models.FieldCapacitance,
}

// DefaultColumnMaps returns the built-in per-protocol block layouts.
// The layouts are static and never derived from file contents.
func DefaultColumnMaps() map[models.ProtocolType]models.ColumnMap {
	return map[models.ProtocolType]models.ColumnMap{
		models.ProtocolActivation: {
			Stride: ActivationStride,
			Fields: map[string][]int{
				models.FieldPeakCurrent:      {0},
				models.FieldVoltage:          {1},
				models.FieldSeriesResistance: {2},
				models.FieldSealResistance:   {3},
				models.FieldCapacitance:      {4},
				models.FieldSweepTime:        {5},
			},
		},
		models.ProtocolInactivation: {
			Stride: InactivationStride,
			Fields: map[string][]int{
				models.FieldInactivationCurrent: {0},
				models.FieldActivationCurrent:   {1},
				models.FieldVoltage:             {2},
				models.FieldSeriesResistance:    {3},
				models.FieldSealResistance:      {4},
				models.FieldCapacitance:         {5},
				models.FieldSweepTime:           {6},
			},
		},
	}
}

// ExpectedStride returns the column stride of a protocol family.
func ExpectedStride(t models.ProtocolType) (int, bool) {
	switch t {
	case models.ProtocolActivation:
		return ActivationStride, true
	case models.ProtocolInactivation:
		return InactivationStride, true
	}
	return 0, false
}

// ValidateColumnMap checks that m fits protocol t: the stride matches the
// family, every offset lies inside the block, and the QC fields are mapped.
func ValidateColumnMap(t models.ProtocolType, m models.ColumnMap) error {
	want, ok := ExpectedStride(t)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownProtocol, t)
	}
	if m.Stride != want {
		return fmt.Errorf("%s column map: stride %d, want %d", t, m.Stride, want)
	}
	for name, offsets := range m.Fields {
		if len(offsets) == 0 {
			return fmt.Errorf("%s column map: field %q has no offsets", t, name)
		}
		for _, off := range offsets {
			if off < 0 || off >= m.Stride {
				return fmt.Errorf("%s column map: field %q offset %d outside [0,%d)", t, name, off, m.Stride)
			}
		}
	}
	for _, name := range qcFields {
		if _, ok := m.Fields[name]; !ok {
			return fmt.Errorf("%s column map: missing field %q", t, name)
		}
	}
	return nil
}
