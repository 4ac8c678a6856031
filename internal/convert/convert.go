// Package convert runs the full conversion pipeline: parse a delimited
// input file, then export the surviving records to an output file.
package convert

import (
	"context"
	"os"

	"rowforge/internal/delim"
	"rowforge/internal/exporter"
)

// Request describes one synchronous conversion.
type Request struct {
	InputPath  string
	OutputPath string
	Columns    int

	// TolerateExtraDelimiters folds surplus delimiters on a data line
	// into the final column.
	TolerateExtraDelimiters bool

	// Format selects the output encoder. Empty means exporter.DefaultFormat.
	Format string

	// Delimiter overrides the field separator. Empty means delim.DefaultDelimiter.
	Delimiter string
}

// Run parses the input and writes the output file. The returned record
// set is nil when no usable data was produced, including the case where
// parsing succeeded but the export failed; the report always explains
// the outcome.
func Run(ctx context.Context, req Request) (*delim.RecordSet, *delim.Report) {
	format := req.Format
	if format == "" {
		format = exporter.DefaultFormat
	}

	rs, rep := delim.ParseFile(req.InputPath, delim.Options{
		Delimiter:               req.Delimiter,
		Columns:                 req.Columns,
		TolerateExtraDelimiters: req.TolerateExtraDelimiters,
	})
	if rs == nil {
		return nil, rep
	}

	if err := exportFile(ctx, req.OutputPath, format, rs); err != nil {
		rep.Errorf(0, "Error saving to %s file: %v", exporter.Label(format), err)
		return nil, rep
	}
	rep.Infof("Data successfully saved to '%s'.", req.OutputPath)
	return rs, rep
}

func exportFile(ctx context.Context, path, format string, rs *delim.RecordSet) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	enc, err := exporter.NewEncoder(format, f)
	if err != nil {
		f.Close()
		return err
	}

	_, streamErr := exporter.StreamRecords(ctx, rs, enc)
	closeErr := enc.Close()
	fileErr := f.Close()

	if streamErr != nil {
		return streamErr
	}
	if closeErr != nil {
		return closeErr
	}
	return fileErr
}
