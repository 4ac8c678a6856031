package exporter

import "io"

// RowEncoder is the common contract for the selectable output formats.
// An encoder receives the header once, then every record in file order,
// and finishes with Flush.
type RowEncoder interface {
	// WriteHeader writes the column names to the output.
	// This should be called exactly once before any rows are written.
	WriteHeader(columns []string) error

	// WriteRow writes a single record's values.
	// The values slice length must match the headers length.
	WriteRow(values []string) error

	// Flush ensures all buffered data is written to the underlying writer.
	Flush() error

	// Error returns the first error that occurred during encoding, if any.
	Error() error

	// Close flushes the encoder and releases any resources.
	io.Closer
}

// guardCell neutralizes spreadsheet formula injection: cell values
// starting with '=', '+', '-' or '@' are prefixed with a single quote.
func guardCell(s string) string {
	if len(s) == 0 {
		return s
	}
	switch s[0] {
	case '=', '+', '-', '@':
		return "'" + s
	}
	return s
}
