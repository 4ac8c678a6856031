package api

import (
	"encoding/gob"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"rowforge/internal/exporter"
	"rowforge/internal/server/hub"
	"rowforge/internal/server/store"
	"rowforge/internal/worker"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// ScanProfile is pushed to agents over the control plane. Agents parse
// matching files locally and stream the records back on the data plane.
type ScanProfile struct {
	Columns                 int    `json:"columns"`
	TolerateExtraDelimiters bool   `json:"tolerate_extra_delimiters"`
	Delimiter               string `json:"delimiter"`
	Format                  string `json:"format"`
	ScanInterval            string `json:"scan_interval"`
}

// Manifest opens a data stream: the parsed header row plus the rendered
// report for the source file. Record values follow as []string messages.
type Manifest struct {
	SourceFile string
	Format     string
	Columns    []string
	Report     []string
}

func (h *Handler) HandleControl(w http.ResponseWriter, r *http.Request) {
	agentKeyRaw := r.Header.Get("X-Agent-Key")
	if agentKeyRaw == "" {
		http.Error(w, "Missing Agent Key", http.StatusUnauthorized)
		return
	}

	apiKey, err := h.Store.VerifyAPIKey(agentKeyRaw)
	if err != nil {
		slog.Warn("Invalid Agent Key", "error", err)
		http.Error(w, "Invalid Agent Key", http.StatusUnauthorized)
		return
	}

	slog.Info("Agent Connected (Control)", "key_id", apiKey.ID, "type", apiKey.Type)
	h.Hub.UpdateAgentCount(1)
	defer h.Hub.UpdateAgentCount(-1)

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("Upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	// Push the scan profile once on connect. Files streamed by test keys
	// land under the sandbox storage prefix; the data plane applies that.
	profile := ScanProfile{
		Columns:                 h.Cfg.AgentColumns,
		TolerateExtraDelimiters: h.Cfg.AgentTolerateExtra,
		Delimiter:               h.Cfg.AgentDelimiter,
		Format:                  h.Cfg.AgentFormat,
		ScanInterval:            h.Cfg.AgentScanInterval.String(),
	}

	payload, _ := json.Marshal(profile)
	if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		slog.Error("Failed to send scan profile", "error", err)
		return
	}
	slog.Info("Dispatched Scan Profile", "columns", profile.Columns, "format", profile.Format)

	for {
		if _, _, err := conn.NextReader(); err != nil {
			slog.Info("Agent Disconnected (Control)")
			break
		}
	}
}

func (h *Handler) HandleData(w http.ResponseWriter, r *http.Request) {
	apiKey, err := h.Store.VerifyAPIKey(r.Header.Get("X-Agent-Key"))
	if err != nil {
		http.Error(w, "Invalid Agent Key", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("Upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	dec := gob.NewDecoder(&WSReader{Conn: conn})

	// 1. Read the stream manifest
	var manifest Manifest
	if err := dec.Decode(&manifest); err != nil {
		slog.Error("Failed to decode manifest", "error", err)
		return
	}

	jobID := uuid.New().String()
	slog.Info("Agent Connected (Data Stream)", "job_id", jobID, "source", manifest.SourceFile, "columns", len(manifest.Columns))

	format := manifest.Format
	if !exporter.ValidFormat(format) {
		format = exporter.DefaultFormat
	}

	key := fmt.Sprintf("agent/%s.%s", jobID, exporter.Ext(format))
	if apiKey.Type == "test" {
		key = "sandbox/" + key
	}

	submitted := time.Now()
	storageWriter, errChan := h.Storage.StreamToFile(r.Context(), key)
	encoder, err := exporter.NewEncoder(format, storageWriter)
	if err != nil {
		storageWriter.Close()
		<-errChan
		slog.Error("Encoder setup failed", "job_id", jobID, "error", err)
		return
	}

	streamErr := encoder.WriteHeader(manifest.Columns)

	// 2. Read Rows
	var rowCount int64
	for streamErr == nil {
		var values []string
		if err := dec.Decode(&values); err != nil {
			if !errors.Is(err, io.EOF) && !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				streamErr = fmt.Errorf("agent stream interrupted: %w", err)
			}
			break
		}
		if err := encoder.WriteRow(values); err != nil {
			streamErr = err
			break
		}
		rowCount++

		if rowCount%10 == 0 {
			h.Hub.Broadcast(hub.DashboardUpdate{
				Type:    "progress",
				JobID:   jobID,
				Source:  manifest.SourceFile,
				Records: rowCount,
			})
		}
	}

	if streamErr == nil {
		streamErr = encoder.Flush()
	}
	if streamErr == nil {
		streamErr = encoder.Error()
	}
	if err := encoder.Close(); streamErr == nil && err != nil {
		streamErr = err
	}
	if err := storageWriter.Close(); streamErr == nil && err != nil {
		streamErr = err
	}
	if err := <-errChan; streamErr == nil && err != nil {
		streamErr = err
	}

	finished := time.Now()
	row := store.Job{
		ID:          jobID,
		SourceFile:  manifest.SourceFile,
		Format:      format,
		Status:      string(worker.StatusCompleted),
		Records:     rowCount,
		StorageKey:  key,
		Report:      manifest.Report,
		SubmittedAt: submitted,
		StartedAt:   &submitted,
		FinishedAt:  &finished,
	}
	if streamErr != nil {
		row.Status = string(worker.StatusFailed)
		row.Error = streamErr.Error()
		slog.Error("Data Stream failed", "job_id", jobID, "error", streamErr)
	} else {
		row.Report = append(row.Report, fmt.Sprintf("Data successfully saved to '%s'.", key))
		slog.Info("Data Stream Complete", "job_id", jobID, "total_records", rowCount)
	}

	if err := h.Store.SaveJob(row); err != nil {
		slog.Error("Job persist failed", "job_id", jobID, "error", err)
	}
	h.Hub.Broadcast(hub.JobUpdate(jobID, manifest.SourceFile, row.Status, rowCount, len(row.Report)))
}

// WSReader adapts sequential websocket messages into one byte stream.
type WSReader struct {
	Conn   *websocket.Conn
	reader io.Reader
}

func (r *WSReader) Read(p []byte) (n int, err error) {
	if r.reader == nil {
		_, reader, err := r.Conn.NextReader() // messageType ignored
		if err != nil {
			return 0, err
		}
		r.reader = reader
	}

	n, err = r.reader.Read(p)
	if err == io.EOF {
		r.reader = nil
		return r.Read(p) // Try next message
	}
	return n, err
}
