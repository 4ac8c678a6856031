package worker

import (
	"context"
	"time"

	"rowforge/internal/exporter"
	"rowforge/internal/i18n"

	"github.com/google/uuid"
)

type JobStatus string

const (
	StatusPending    JobStatus = "PENDING"
	StatusProcessing JobStatus = "PROCESSING"
	StatusCompleted  JobStatus = "COMPLETED"
	StatusFailed     JobStatus = "FAILED"
)

// ConversionJob represents a single unit of work for the conversion service.
type ConversionJob struct {
	// ID is the unique UUID v4 for the job.
	ID string
	// InputPath is the spooled input file. The pool removes it once the
	// job has been processed.
	InputPath string
	// SourceName is the original filename as submitted by the client.
	SourceName string
	// Columns is the expected column count for every data row.
	Columns int
	// TolerateExtraDelimiters folds surplus delimiters into the last column.
	TolerateExtraDelimiters bool
	// Delimiter overrides the default field separator when non-empty.
	Delimiter string
	// Format is the requested output format (excel, csv, json, pdf).
	Format string
	// Email is the recipient address for notifications. Empty skips email.
	Email string
	// Lang selects the notification language.
	Lang string
	// Timestamps for job lifecycle tracking.
	Submitted time.Time
	Started   time.Time
	Finished  time.Time
	// Status tracks the current state (PENDING, PROCESSING, COMPLETED, FAILED).
	Status JobStatus
	// Error holds any error encountered during processing.
	Error error
	// Report holds the rendered processing report, one message per line.
	Report []string
	// Stats contains metrics like records processed and duration.
	Stats *exporter.ExportResult
	// StorageKey is the path where the file is stored in S3/Local storage.
	StorageKey string

	// Context manages the lifecycle/cancellation of the job.
	Ctx    context.Context
	Cancel context.CancelFunc
}

func NewConversionJob(inputPath, sourceName string, columns int, tolerate bool, delimiter, format, emailAddr, lang string, timeout time.Duration) *ConversionJob {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	if format == "" {
		format = exporter.DefaultFormat
	}
	if lang == "" {
		lang = i18n.DefaultLang
	}
	return &ConversionJob{
		ID:                      uuid.New().String(),
		InputPath:               inputPath,
		SourceName:              sourceName,
		Columns:                 columns,
		TolerateExtraDelimiters: tolerate,
		Delimiter:               delimiter,
		Format:                  format,
		Email:                   emailAddr,
		Lang:                    lang,
		Submitted:               time.Now(),
		Status:                  StatusPending,
		Ctx:                     ctx,
		Cancel:                  cancel,
	}
}
