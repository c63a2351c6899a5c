package parser

import (
	"errors"
	"fmt"
)

// Per-file failure causes. Each is wrapped in one of the category error
// types below, so callers can test both with errors.Is and errors.As.
var (
	// ErrFileNotFound indicates the input file does not exist.
	ErrFileNotFound = errors.New("file not found")
	// ErrUnsupportedFormat indicates an extension outside the supported spreadsheet set.
	ErrUnsupportedFormat = errors.New("unsupported format")
	// ErrUnreadable indicates the file could not be decoded.
	ErrUnreadable = errors.New("unreadable file")
	// ErrEmptyFile indicates a zero-byte file or a sheet without rows.
	ErrEmptyFile = errors.New("empty file")
	// ErrFileTooLarge indicates the file exceeds the configured hard size limit.
	ErrFileTooLarge = errors.New("file too large")
	// ErrInsufficientShape indicates fewer rows or columns than an export can have.
	ErrInsufficientShape = errors.New("insufficient shape")
	// ErrNoProtocolMarkersFound indicates the header window holds no protocol marker.
	ErrNoProtocolMarkersFound = errors.New("no protocol markers found")
	// ErrUnknownProtocol indicates a protocol without a column map.
	ErrUnknownProtocol = errors.New("unknown protocol")
	// ErrHeaderNotFound indicates the header marker rows could not be located.
	ErrHeaderNotFound = errors.New("header not found")
	// ErrEmptyPayload indicates a header block with no columns after it.
	ErrEmptyPayload = errors.New("empty payload")
)

// StructuralFileError reports an unreadable, oversized or malformed file.
type StructuralFileError struct {
	Path string
	Err  error
}

func (e *StructuralFileError) Error() string {
	return fmt.Sprintf("structural error in %q: %v", e.Path, e.Err)
}

func (e *StructuralFileError) Unwrap() error {
	return e.Err
}

// ProtocolDetectionError reports a header window without protocol markers.
type ProtocolDetectionError struct {
	// ScannedRows is the number of header rows searched.
	ScannedRows int
	Err         error
}

func (e *ProtocolDetectionError) Error() string {
	return fmt.Sprintf("protocol detection failed after %d rows: %v", e.ScannedRows, e.Err)
}

func (e *ProtocolDetectionError) Unwrap() error {
	return e.Err
}

// ExtractionError reports a grid whose payload could not be located.
type ExtractionError struct {
	// Marker is the header marker that was missing, if any.
	Marker string
	Err    error
}

func (e *ExtractionError) Error() string {
	if e.Marker != "" {
		return fmt.Sprintf("extraction failed: %v (marker %q)", e.Err, e.Marker)
	}
	return fmt.Sprintf("extraction failed: %v", e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// Category names the taxonomy class of err: "structural", "protocol",
// "extraction", or "internal" for anything else.
func Category(err error) string {
	var se *StructuralFileError
	var pe *ProtocolDetectionError
	var ee *ExtractionError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &se):
		return "structural"
	case errors.As(err, &pe):
		return "protocol"
	case errors.As(err, &ee):
		return "extraction"
	default:
		return "internal"
	}
}
