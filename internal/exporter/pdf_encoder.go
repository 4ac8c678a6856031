package exporter

import (
	"io"

	"github.com/go-pdf/fpdf"
)

// PDFEncoder implements RowEncoder as a landscape A4 grid.
// PDF output is heavier than the other formats and suits small reports.
type PDFEncoder struct {
	pdf  *fpdf.Fpdf
	tr   func(string) string
	w    io.Writer
	done bool
	err  error
}

// NewPDFEncoder creates a new PDF encoder.
func NewPDFEncoder(w io.Writer) *PDFEncoder {
	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetFont("Arial", "", 10)
	pdf.AddPage()
	return &PDFEncoder{
		pdf: pdf,
		// Core fonts are cp1252; characters outside it degrade.
		tr: pdf.UnicodeTranslatorFromDescriptor(""),
		w:  w,
	}
}

// WriteHeader writes the column names as a bold grid row.
func (e *PDFEncoder) WriteHeader(columns []string) error {
	if e.err != nil {
		return e.err
	}
	e.pdf.SetFont("Arial", "B", 10)
	colWidth := e.colWidth(len(columns))
	for _, col := range columns {
		e.pdf.CellFormat(colWidth, 7, e.tr(col), "1", 0, "C", false, 0, "")
	}
	e.pdf.Ln(-1)
	e.pdf.SetFont("Arial", "", 10)
	return nil
}

// WriteRow writes a single record as a grid row.
func (e *PDFEncoder) WriteRow(values []string) error {
	if e.err != nil {
		return e.err
	}
	colWidth := e.colWidth(len(values))
	for _, v := range values {
		e.pdf.CellFormat(colWidth, 7, e.tr(v), "1", 0, "L", false, 0, "")
	}
	e.pdf.Ln(-1)
	return nil
}

// Column widths share the usable page width equally.
func (e *PDFEncoder) colWidth(n int) float64 {
	pageWidth, _ := e.pdf.GetPageSize()
	left, _, right, _ := e.pdf.GetMargins()
	return (pageWidth - left - right) / float64(n)
}

// Flush renders the document to the underlying writer. Later calls are
// no-ops; fpdf cannot reopen a written document.
func (e *PDFEncoder) Flush() error {
	if e.err != nil {
		return e.err
	}
	if e.done {
		return nil
	}
	e.done = true
	return e.pdf.Output(e.w)
}

// Error returns any stored error.
func (e *PDFEncoder) Error() error {
	return e.err
}

// Close flushes and satisfies io.Closer.
func (e *PDFEncoder) Close() error {
	return e.Flush()
}
