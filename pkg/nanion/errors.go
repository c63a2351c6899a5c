package nanion

import "github.com/Chinrp0/NANION-EXPORT-ANALYSIS/pkg/nanion/parser"

// Per-file failure causes, re-exported from the parser package.
var (
	ErrFileNotFound           = parser.ErrFileNotFound
	ErrUnsupportedFormat      = parser.ErrUnsupportedFormat
	ErrEmptyFile              = parser.ErrEmptyFile
	ErrInsufficientShape      = parser.ErrInsufficientShape
	ErrFileTooLarge           = parser.ErrFileTooLarge
	ErrNoProtocolMarkersFound = parser.ErrNoProtocolMarkersFound
	ErrHeaderNotFound         = parser.ErrHeaderNotFound
)

// Error categories, see parser.Category.
type (
	StructuralFileError    = parser.StructuralFileError
	ProtocolDetectionError = parser.ProtocolDetectionError
	ExtractionError        = parser.ExtractionError
)

// Classify names the taxonomy category of a per-file error.
func Classify(err error) string {
	return parser.Category(err)
}
