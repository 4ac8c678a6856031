package exporter

import (
	"context"
	"fmt"
	"time"

	"rowforge/internal/delim"
)

// ExportResult contains stats about one export run.
type ExportResult struct {
	RowsProcessed int64
	Duration      time.Duration
}

// StreamRecords writes the header and then every record of rs to the
// encoder in file order. The row count in the result always equals
// rs.Len().
func StreamRecords(ctx context.Context, rs *delim.RecordSet, encoder RowEncoder) (*ExportResult, error) {
	start := time.Now()

	if err := encoder.WriteHeader(rs.Headers); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}

	var rowCount int64
	for _, rec := range rs.Records {
		// Stop if context cancelled
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if err := encoder.WriteRow(rec.Values()); err != nil {
			return nil, fmt.Errorf("row write failed: %w", err)
		}
		rowCount++
	}

	if err := encoder.Flush(); err != nil {
		return nil, fmt.Errorf("flush failed: %w", err)
	}
	if err := encoder.Error(); err != nil {
		return nil, fmt.Errorf("encoder error: %w", err)
	}

	return &ExportResult{
		RowsProcessed: rowCount,
		Duration:      time.Since(start),
	}, nil
}
