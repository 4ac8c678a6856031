package worker

import (
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"sync"
	"time"

	"rowforge/internal/delim"
	"rowforge/internal/email"
	"rowforge/internal/exporter"
	"rowforge/internal/storage"

	"github.com/pierrec/lz4/v4"
	"golang.org/x/sync/semaphore"
)

// Compression codecs for stored output files.
const (
	CompressionNone = "none"
	CompressionGzip = "gzip"
	CompressionLZ4  = "lz4"
)

// Pool manages concurrent conversion jobs and limits memory pressure.
// It implements a worker pool pattern with a separate semaphore for parse
// pipelines, since each one holds a full record set in memory.
type Pool struct {
	// jobQueue allows for buffering incoming requests before workers pick them up.
	jobQueue chan *ConversionJob
	workers  int
	// parseSem restricts the number of record sets materialized at once.
	parseSem *semaphore.Weighted
	wg       sync.WaitGroup
	quit     chan struct{}

	storage     storage.Provider
	emailer     email.Sender
	compression string
	attachFile  bool

	// OnStatus, when set, is invoked after every job status change.
	// The server uses it to persist job rows and feed the dashboard.
	OnStatus func(*ConversionJob)
}

// NewPool initializes a worker pool with the specified configuration.
// It does not start the workers; call Start() to begin processing.
func NewPool(workers int, maxParseConcurrency int64, store storage.Provider, emailer email.Sender, compression string, attachFile bool) *Pool {
	switch compression {
	case CompressionNone, CompressionGzip, CompressionLZ4:
	default:
		if compression != "" {
			slog.Warn("Unknown compression codec, storing uncompressed", "codec", compression)
		}
		compression = CompressionNone
	}
	return &Pool{
		jobQueue:    make(chan *ConversionJob, 100), // Bounded buffer to prevent infinite memory growth
		workers:     workers,
		parseSem:    semaphore.NewWeighted(maxParseConcurrency),
		quit:        make(chan struct{}),
		storage:     store,
		emailer:     emailer,
		compression: compression,
		attachFile:  attachFile,
	}
}

func (p *Pool) Start() {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.workerLoop(i)
	}
	slog.Info("Worker pool started", "workers", p.workers)
}

func (p *Pool) Submit(job *ConversionJob) bool {
	select {
	case p.jobQueue <- job:
		return true
	case <-p.quit:
		return false
	default:
		// Queue full
		return false
	}
}

// Stop initiates graceful shutdown
func (p *Pool) Stop() {
	close(p.quit)
	p.wg.Wait()
	slog.Info("Worker pool stopped")
}

func (p *Pool) notify(job *ConversionJob) {
	if p.OnStatus != nil {
		p.OnStatus(job)
	}
}

func (p *Pool) workerLoop(id int) {
	defer p.wg.Done()
	slog.Debug("Worker started", "worker_id", id)

	for {
		select {
		case job, ok := <-p.jobQueue:
			if !ok {
				return
			}
			p.processJob(id, job)
		case <-p.quit:
			return
		}
	}
}

func (p *Pool) processJob(workerID int, job *ConversionJob) {
	slog.Info("Processing job", "worker_id", workerID, "job_id", job.ID, "source", job.SourceName)

	defer func() {
		job.Cancel()
		if job.InputPath != "" {
			if err := os.Remove(job.InputPath); err != nil && !errors.Is(err, os.ErrNotExist) {
				slog.Warn("Failed to remove spooled input", "path", job.InputPath, "error", err)
			}
		}
	}()

	job.Started = time.Now()
	job.Status = StatusProcessing
	p.notify(job)
	waitTime := job.Started.Sub(job.Submitted)

	// 1. Acquire parse semaphore
	if err := p.parseSem.Acquire(job.Ctx, 1); err != nil {
		p.failJob(job, fmt.Errorf("failed to acquire parse slot: %w", err))
		return
	}

	err := p.runConversion(job)
	p.parseSem.Release(1)

	if err != nil {
		p.failJob(job, err)
		return
	}

	job.Status = StatusCompleted
	job.Finished = time.Now()
	totalDuration := job.Finished.Sub(job.Started)
	p.notify(job)

	slog.Info("Job completed", "job_id", job.ID, "records", job.Stats.RowsProcessed, "warnings", len(job.Report))

	// Build detailed report
	statsMsg := fmt.Sprintf(
		"Job Summary:\n"+
			"----------------\n"+
			"Job ID: %s\n"+
			"Source File: %s\n"+
			"Records Processed: %d\n"+
			"Submitted: %s\n"+
			"Started: %s (Wait: %v)\n"+
			"Finished: %s\n"+
			"Total Duration: %v\n"+
			"Export Time: %v\n",
		job.ID,
		job.SourceName,
		job.Stats.RowsProcessed,
		job.Submitted.Format("2006-01-02 03:04:05 PM"),
		job.Started.Format("2006-01-02 03:04:05 PM"), waitTime,
		job.Finished.Format("2006-01-02 03:04:05 PM"),
		totalDuration,
		job.Stats.Duration,
	)

	if job.Email == "" {
		return
	}

	const MaxAttachmentSize = 25 * 1024 * 1024 // 25MB

	if p.attachFile {
		fileContent, err := func() ([]byte, error) {
			reader, err := p.storage.OpenFile(job.Ctx, job.StorageKey)
			if err != nil {
				return nil, err
			}
			defer reader.Close()

			limitedReader := io.LimitReader(reader, MaxAttachmentSize+1)
			content, err := io.ReadAll(limitedReader)
			if err != nil {
				return nil, err
			}

			if len(content) > MaxAttachmentSize {
				return nil, fmt.Errorf("file exceeds max attachment size (%d bytes)", MaxAttachmentSize)
			}
			return content, nil
		}()

		if err != nil {
			slog.Warn("Skipping attachment (too large or error)", "key", job.StorageKey, "error", err)
			downloadURL := p.storage.GetDownloadURL(job.StorageKey)
			statsMsg += fmt.Sprintf("\nAttachment skipped: %v", err)
			p.emailer.SendDownloadLink(job.Email, job.Lang, downloadURL, job.Report, statsMsg)
		} else {
			p.emailer.SendWithAttachment(job.Email, job.Lang, path.Base(job.StorageKey), fileContent, job.Report, statsMsg)
		}

	} else {
		downloadURL := p.storage.GetDownloadURL(job.StorageKey)
		p.emailer.SendDownloadLink(job.Email, job.Lang, downloadURL, job.Report, statsMsg)
	}
}

func (p *Pool) runConversion(job *ConversionJob) error {
	// Parse Stage (text file -> validated records + report)
	rs, rep := delim.ParseFile(job.InputPath, delim.Options{
		Delimiter:               job.Delimiter,
		Columns:                 job.Columns,
		TolerateExtraDelimiters: job.TolerateExtraDelimiters,
	})
	job.Report = rep.Messages()

	if rs == nil {
		msg := "no records produced"
		if msgs := rep.Messages(); len(msgs) > 0 {
			msg = msgs[len(msgs)-1]
		}
		return errors.New(msg)
	}

	ext := exporter.Ext(job.Format)
	switch p.compression {
	case CompressionGzip:
		job.StorageKey = fmt.Sprintf("converted/%s.%s.gz", job.ID, ext)
	case CompressionLZ4:
		job.StorageKey = fmt.Sprintf("converted/%s.%s.lz4", job.ID, ext)
	default:
		job.StorageKey = fmt.Sprintf("converted/%s.%s", job.ID, ext)
	}

	// Start Storage Upload in background (it reads from pipe)
	storageWriter, errChan := p.storage.StreamToFile(job.Ctx, job.StorageKey)

	// Prepare Output Writer (maybe wrapped in a compressor)
	var finalWriter io.Writer = storageWriter
	var closeCompressor func() error
	switch p.compression {
	case CompressionGzip:
		gw := gzip.NewWriter(storageWriter)
		finalWriter = gw
		closeCompressor = gw.Close
	case CompressionLZ4:
		zw := lz4.NewWriter(storageWriter)
		finalWriter = zw
		closeCompressor = zw.Close
	}

	encoder, err := exporter.NewEncoder(job.Format, finalWriter)
	if err != nil {
		if closeCompressor != nil {
			closeCompressor()
		}
		storageWriter.Close()
		<-errChan
		return err
	}

	// Run Export (Records -> Encoder -> [Compressor?] -> Pipe -> Storage)
	stats, exportErr := exporter.StreamRecords(job.Ctx, rs, encoder)

	// Close Encoder (some formats need to finish writing/flushing)
	encoderCloseErr := encoder.Close()

	// Close Writers
	// If compressed, close the compressor first to flush its footer
	var outputCloseErr error
	if closeCompressor != nil {
		outputCloseErr = closeCompressor()
	}

	// Then close the underlying storage writer (the pipe)
	storageCloseErr := storageWriter.Close()

	// Wait for upload result
	uploadErr := <-errChan

	if exportErr != nil {
		return fmt.Errorf("export failed: %w", exportErr)
	}
	if encoderCloseErr != nil {
		return fmt.Errorf("encoder close failed: %w", encoderCloseErr)
	}
	if outputCloseErr != nil {
		return fmt.Errorf("compressor close failed: %w", outputCloseErr)
	}
	if storageCloseErr != nil {
		return fmt.Errorf("storage close failed: %w", storageCloseErr)
	}
	if uploadErr != nil {
		return fmt.Errorf("upload failed: %w", uploadErr)
	}

	job.Report = append(job.Report, fmt.Sprintf("Data successfully saved to '%s'.", job.StorageKey))
	job.Stats = stats
	return nil
}

func (p *Pool) failJob(job *ConversionJob, err error) {
	job.Status = StatusFailed
	job.Error = err
	job.Finished = time.Now()
	slog.Error("Job failed", "job_id", job.ID, "error", err)
	p.notify(job)
}
