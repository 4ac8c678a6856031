package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path"
	"strconv"
	"strings"

	"rowforge/internal/exporter"
	"rowforge/internal/i18n"
	"rowforge/internal/security"
	"rowforge/internal/server/hub"
	"rowforge/internal/server/store"
	"rowforge/internal/worker"
)

// HandleConvert accepts a multipart upload and queues it for conversion.
// The HMAC signature is computed over the raw request body, so the body is
// buffered before the form is parsed.
func (h *Handler) HandleConvert(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.Cfg.MaxUploadSize)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Upload too large or unreadable", http.StatusRequestEntityTooLarge)
		return
	}

	if err := security.VerifyHMAC(h.Cfg.APISecret, r.Method, r.URL.Path, string(body),
		r.Header.Get("X-Timestamp"), r.Header.Get("X-Signature")); err != nil {
		slog.Warn("Rejected convert request", "remote", r.RemoteAddr, "error", err)
		http.Error(w, "Invalid signature", http.StatusUnauthorized)
		return
	}

	r.Body = io.NopCloser(bytes.NewReader(body))
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		http.Error(w, "Invalid multipart form", http.StatusBadRequest)
		return
	}

	columns, err := security.ValidateColumns(r.FormValue("columns"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	format := r.FormValue("format")
	if format == "" {
		format = exporter.DefaultFormat
	}
	if !exporter.ValidFormat(format) {
		http.Error(w, "Unknown format: "+format, http.StatusBadRequest)
		return
	}

	delimiter := r.FormValue("delimiter")
	if delimiter != "" {
		if err := security.ValidateDelimiter(delimiter); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	emailAddr := r.FormValue("email")
	if emailAddr != "" {
		if err := security.ValidateEmail(emailAddr); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	lang := r.FormValue("lang")
	if lang != "" && !i18n.Known(lang) {
		http.Error(w, "Unsupported language: "+lang, http.StatusBadRequest)
		return
	}

	var tolerate bool
	switch strings.ToLower(r.FormValue("tolerate_extra")) {
	case "1", "true", "yes":
		tolerate = true
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "Missing file field", http.StatusBadRequest)
		return
	}
	defer file.Close()

	spool, err := os.CreateTemp(h.Cfg.SpoolDir, "upload-*.txt")
	if err != nil {
		slog.Error("Spool create failed", "error", err)
		http.Error(w, "Server storage error", http.StatusInternalServerError)
		return
	}
	if _, err := io.Copy(spool, file); err != nil {
		spool.Close()
		os.Remove(spool.Name())
		slog.Error("Spool write failed", "error", err)
		http.Error(w, "Server storage error", http.StatusInternalServerError)
		return
	}
	if err := spool.Close(); err != nil {
		os.Remove(spool.Name())
		slog.Error("Spool close failed", "error", err)
		http.Error(w, "Server storage error", http.StatusInternalServerError)
		return
	}

	job := worker.NewConversionJob(spool.Name(), header.Filename, columns, tolerate,
		delimiter, format, emailAddr, lang, h.Cfg.DefaultTimeout)

	if err := h.Store.SaveJob(JobRow(job)); err != nil {
		slog.Error("Job persist failed", "job_id", job.ID, "error", err)
	}

	if !h.Pool.Submit(job) {
		job.Cancel()
		os.Remove(job.InputPath)
		http.Error(w, "Conversion queue is full, try again later", http.StatusServiceUnavailable)
		return
	}

	slog.Info("Job queued", "job_id", job.ID, "source", job.SourceName, "format", job.Format, "columns", columns)
	h.Hub.Broadcast(hub.JobUpdate(job.ID, job.SourceName, string(job.Status), 0, 0))

	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]string{"job_id": job.ID, "status": string(job.Status)})
}

// --- Job Query Handlers ---

func (h *Handler) HandleListJobs(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	jobs, err := h.Store.ListJobs(limit)
	if err != nil {
		slog.Error("List jobs failed", "error", err)
		http.Error(w, "Failed to list jobs", http.StatusInternalServerError)
		return
	}

	json.NewEncoder(w).Encode(jobs)
}

func (h *Handler) HandleGetJob(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/jobs/")
	if id == "" || strings.Contains(id, "/") {
		http.Error(w, "Invalid job id", http.StatusBadRequest)
		return
	}

	job, err := h.Store.GetJob(id)
	if err != nil {
		http.Error(w, "Job not found", http.StatusNotFound)
		return
	}

	json.NewEncoder(w).Encode(job)
}

// HandleDownload serves stored output files by key.
func (h *Handler) HandleDownload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	key := strings.TrimPrefix(r.URL.Path, "/files/")
	if key == "" || strings.Contains(key, "..") {
		http.Error(w, "Invalid file key", http.StatusBadRequest)
		return
	}

	reader, err := h.Storage.OpenFile(r.Context(), key)
	if err != nil {
		http.Error(w, "File not found", http.StatusNotFound)
		return
	}
	defer reader.Close()

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", path.Base(key)))
	if _, err := io.Copy(w, reader); err != nil {
		slog.Warn("Download aborted", "key", key, "error", err)
	}
}

// JobRow flattens a live job into its persisted form.
func JobRow(j *worker.ConversionJob) store.Job {
	row := store.Job{
		ID:          j.ID,
		SourceFile:  j.SourceName,
		Format:      j.Format,
		Status:      string(j.Status),
		Email:       j.Email,
		Lang:        j.Lang,
		StorageKey:  j.StorageKey,
		Report:      j.Report,
		SubmittedAt: j.Submitted,
	}
	if j.Stats != nil {
		row.Records = j.Stats.RowsProcessed
	}
	if j.Error != nil {
		row.Error = j.Error.Error()
	}
	if !j.Started.IsZero() {
		t := j.Started
		row.StartedAt = &t
	}
	if !j.Finished.IsZero() {
		t := j.Finished
		row.FinishedAt = &t
	}
	return row
}
