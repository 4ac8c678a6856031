package exporter

import (
	"fmt"
	"io"
)

// Supported output formats.
const (
	FormatExcel = "excel"
	FormatCSV   = "csv"
	FormatJSON  = "json"
	FormatPDF   = "pdf"
)

// DefaultFormat is used when a request names no format.
const DefaultFormat = FormatExcel

// ValidFormat reports whether name is a supported output format.
func ValidFormat(name string) bool {
	switch name {
	case FormatExcel, FormatCSV, FormatJSON, FormatPDF:
		return true
	}
	return false
}

// NewEncoder returns an encoder for the named format writing to w.
func NewEncoder(format string, w io.Writer) (RowEncoder, error) {
	switch format {
	case FormatExcel:
		return NewExcelEncoder(w), nil
	case FormatCSV:
		return NewCSVEncoder(w), nil
	case FormatJSON:
		return NewJSONEncoder(w), nil
	case FormatPDF:
		return NewPDFEncoder(w), nil
	}
	return nil, fmt.Errorf("unsupported format %q", format)
}

// Ext returns the output file extension for the format, without the dot.
func Ext(format string) string {
	switch format {
	case FormatExcel:
		return "xlsx"
	case FormatCSV:
		return "csv"
	case FormatJSON:
		return "json"
	case FormatPDF:
		return "pdf"
	}
	return "dat"
}

// Label returns the name used for the format in report text.
func Label(format string) string {
	switch format {
	case FormatExcel:
		return "Excel"
	case FormatCSV:
		return "CSV"
	case FormatJSON:
		return "JSON"
	case FormatPDF:
		return "PDF"
	}
	return format
}
