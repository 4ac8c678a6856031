package exporter

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// Hard row cap of the xlsx format.
const excelRowLimit = 1048576

// ExcelEncoder implements RowEncoder for Excel (.xlsx) workbooks.
// It uses excelize.StreamWriter so large record sets are not pinned
// in memory as a full workbook model.
type ExcelEncoder struct {
	f      *excelize.File
	sw     *excelize.StreamWriter
	w      io.Writer
	rowIdx int
	err    error
}

// NewExcelEncoder creates an encoder producing a single-sheet workbook.
func NewExcelEncoder(w io.Writer) *ExcelEncoder {
	f := excelize.NewFile()
	sw, err := f.NewStreamWriter("Sheet1")
	if err != nil {
		return &ExcelEncoder{err: err}
	}
	return &ExcelEncoder{f: f, sw: sw, w: w, rowIdx: 1}
}

// WriteHeader writes the column names as the first sheet row.
func (e *ExcelEncoder) WriteHeader(columns []string) error {
	if e.err != nil {
		return e.err
	}
	row := make([]interface{}, len(columns))
	for i, col := range columns {
		row[i] = col
	}
	return e.setRow(row)
}

// WriteRow writes one record. Values pass through the formula guard.
func (e *ExcelEncoder) WriteRow(values []string) error {
	if e.err != nil {
		return e.err
	}
	row := make([]interface{}, len(values))
	for i, v := range values {
		row[i] = guardCell(v)
	}
	if err := e.setRow(row); err != nil {
		return err
	}
	if e.rowIdx > excelRowLimit {
		e.err = fmt.Errorf("excel row limit exceeded (1,048,576 rows)")
		return e.err
	}
	return nil
}

func (e *ExcelEncoder) setRow(row []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, e.rowIdx)
	if err != nil {
		e.err = err
		return err
	}
	if err := e.sw.SetRow(cell, row); err != nil {
		e.err = err
		return err
	}
	e.rowIdx++
	return nil
}

// Flush finalizes the sheet stream and writes the workbook to the
// underlying writer. Call it once.
func (e *ExcelEncoder) Flush() error {
	if e.err != nil {
		return e.err
	}
	if err := e.sw.Flush(); err != nil {
		e.err = err
		return err
	}
	return e.f.Write(e.w)
}

// Error returns any stored error.
func (e *ExcelEncoder) Error() error {
	return e.err
}

// Close releases the workbook. It does not flush.
func (e *ExcelEncoder) Close() error {
	if e.f != nil {
		_ = e.f.Close()
	}
	return nil
}
