package exporter

import (
	"bufio"
	"encoding/csv"
	"io"
)

// CSVEncoder wraps encoding/csv behind a bufio.Writer to minimize IO
// syscalls on large record sets.
type CSVEncoder struct {
	w   *csv.Writer
	buf *bufio.Writer
}

// NewCSVEncoder creates a new CSV encoder that writes to the provided
// io.Writer through a 64KB buffer.
func NewCSVEncoder(w io.Writer) *CSVEncoder {
	buf := bufio.NewWriterSize(w, 64*1024)
	return &CSVEncoder{
		w:   csv.NewWriter(buf),
		buf: buf,
	}
}

// WriteHeader writes the CSV header row.
func (e *CSVEncoder) WriteHeader(columns []string) error {
	return e.w.Write(columns)
}

// WriteRow writes a single record. Values pass through the formula
// guard before they reach the file.
func (e *CSVEncoder) WriteRow(values []string) error {
	record := make([]string, len(values))
	for i, v := range values {
		record[i] = guardCell(v)
	}
	return e.w.Write(record)
}

// Flush drains the CSV writer and then the byte buffer.
func (e *CSVEncoder) Flush() error {
	e.w.Flush()
	if err := e.w.Error(); err != nil {
		return err
	}
	return e.buf.Flush()
}

// Error returns any error stored in the CSV writer.
func (e *CSVEncoder) Error() error {
	return e.w.Error()
}

// Close flushes and satisfies io.Closer.
func (e *CSVEncoder) Close() error {
	return e.Flush()
}
