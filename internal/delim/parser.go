// Package delim parses percent-delimited research text files into ordered
// records.
//
// The expected input is line oriented: the first non-discarded line names
// the columns, every following line is one data row with fields separated
// by a single delimiter character (default '%'). There is no quoting or
// escaping and a record never spans lines. Lines are whitespace-trimmed
// before any interpretation and blank lines are skipped silently.
//
// Parsing never fails with an error value. Every anomaly is collected in a
// Report, and a run without usable data yields a nil RecordSet alongside
// the report that explains why.
package delim

import (
	"bufio"
	"errors"
	"io"
	"io/fs"
	"os"
	"slices"
	"strings"
)

// DefaultDelimiter separates fields when Options.Delimiter is empty.
const DefaultDelimiter = "%"

// Options control a single parse run.
type Options struct {
	// Delimiter is the field separator. Empty selects DefaultDelimiter.
	Delimiter string

	// Columns is the expected number of columns. The header line must
	// split into exactly this many names.
	Columns int

	// TolerateExtraDelimiters folds surplus delimiters on a data line
	// into the final column instead of rejecting the line.
	TolerateExtraDelimiters bool
}

func (o Options) delimiter() string {
	if o.Delimiter == "" {
		return DefaultDelimiter
	}
	return o.Delimiter
}

// ParseFile opens path and parses its contents. A missing file is
// terminal: the result is nil and the report holds a single error entry.
func ParseFile(path string, opts Options) (*RecordSet, *Report) {
	rep := &Report{}
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			rep.Errorf(0, "Error: Input file '%s' not found.", path)
		} else {
			rep.Errorf(0, "Error: Cannot open input file '%s': %v.", path, err)
		}
		return nil, rep
	}
	defer f.Close()
	return parse(f, opts, rep)
}

// Parse runs the same algorithm as ParseFile over an arbitrary reader.
func Parse(r io.Reader, opts Options) (*RecordSet, *Report) {
	return parse(r, opts, &Report{})
}

func parse(r io.Reader, opts Options, rep *Report) (*RecordSet, *Report) {
	delim := opts.delimiter()

	br := bufio.NewReader(r)
	skipBOM(br)
	sc := bufio.NewScanner(br)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	// Header: first line, trimmed, split without a limit. EOF reads as an
	// empty header line, which still carries one (empty) column name.
	headerLine := ""
	if sc.Scan() {
		headerLine = sanitizeLine(sc.Text())
	} else if err := sc.Err(); err != nil {
		rep.Errorf(0, "Error: Failed reading input: %v.", err)
		return nil, rep
	}
	headers := strings.Split(strings.TrimSpace(headerLine), delim)
	if len(headers) != opts.Columns {
		rep.Errorf(1, "Error: Mismatch between expected columns (%d) and headers in file (%d).", opts.Columns, len(headers))
		return nil, rep
	}

	var records []Record
	lineNum := 1
	for sc.Scan() {
		lineNum++
		line := strings.TrimSpace(sanitizeLine(sc.Text()))
		if line == "" {
			continue
		}

		// The repeated-header check always splits without a limit, even
		// when tolerance is on.
		if slices.Equal(strings.Split(line, delim), headers) {
			rep.Warnf(lineNum, "Warning: Skipping repeated header row on line %d.", lineNum)
			continue
		}

		var parts []string
		if opts.TolerateExtraDelimiters {
			parts = strings.SplitN(line, delim, opts.Columns)
			if strings.Count(line, delim) > opts.Columns-1 {
				rep.Warnf(lineNum, "Warning on line %d: Extra delimiters found. Extra content was added to the last column.", lineNum)
			}
		} else {
			parts = strings.Split(line, delim)
		}

		if len(parts) != opts.Columns {
			rep.Errorf(lineNum, "Error on line %d: Mismatch in column count. Expected %d, found %d. Row: '%s'", lineNum, opts.Columns, len(parts), line)
			continue
		}
		rec, err := NewRecord(headers, parts)
		if err != nil {
			rep.Errorf(lineNum, "Error creating record for line %d: %v", lineNum, err)
			continue
		}
		records = append(records, rec)
	}
	if err := sc.Err(); err != nil {
		rep.Errorf(lineNum, "Error: Failed reading input after line %d: %v.", lineNum, err)
		return nil, rep
	}

	if len(records) == 0 {
		rep.Errorf(0, "No valid data found to process.")
		return nil, rep
	}
	return &RecordSet{Headers: headers, Records: records}, rep
}
