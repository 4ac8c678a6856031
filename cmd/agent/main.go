package main

import (
	"encoding/gob"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"rowforge/internal/delim"

	"github.com/gorilla/websocket"
	"github.com/joho/godotenv"
)

var version = "dev"

type AgentConfig struct {
	ServerURL string
	AgentKey  string
	WatchDir  string
}

// ScanProfile mirrors the control-plane payload pushed by the server.
type ScanProfile struct {
	Columns                 int    `json:"columns"`
	TolerateExtraDelimiters bool   `json:"tolerate_extra_delimiters"`
	Delimiter               string `json:"delimiter"`
	Format                  string `json:"format"`
	ScanInterval            string `json:"scan_interval"`
}

// Manifest opens a data stream; records follow as []string messages.
type Manifest struct {
	SourceFile string
	Format     string
	Columns    []string
	Report     []string
}

// profileStore guards the active scan profile against concurrent updates.
type profileStore struct {
	mu      sync.Mutex
	profile ScanProfile
}

func (p *profileStore) Set(sp ScanProfile) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.profile = sp
}

func (p *profileStore) Get() ScanProfile {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.profile
}

func main() {
	// Custom Usage/Help Message
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "RowForge Agent %s\n\n", version)
		fmt.Fprintf(os.Stderr, "Usage:\n")
		fmt.Fprintf(os.Stderr, "  rowforge-agent [flags]\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables (Required):\n")
		fmt.Fprintf(os.Stderr, "  AGENT_KEY   Your unique agent key (sk_live_...)\n")
		fmt.Fprintf(os.Stderr, "  SERVER_URL  WebSocket URL (e.g., wss://convert.example.com)\n")
		fmt.Fprintf(os.Stderr, "  WATCH_DIR   Directory scanned for new .txt input files\n")
		fmt.Fprintf(os.Stderr, "\nExample:\n")
		fmt.Fprintf(os.Stderr, "  export AGENT_KEY=\"sk_live_123\"\n")
		fmt.Fprintf(os.Stderr, "  export SERVER_URL=\"wss://convert.example.com\"\n")
		fmt.Fprintf(os.Stderr, "  export WATCH_DIR=\"/var/lib/rowforge/inbox\"\n")
		fmt.Fprintf(os.Stderr, "  rowforge-agent\n")
	}

	showVersion := flag.Bool("version", false, "Show version")
	flag.Parse()

	if *showVersion {
		fmt.Printf("RowForge Agent %s\n", version)
		os.Exit(0)
	}

	_ = godotenv.Load()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	config := AgentConfig{
		ServerURL: os.Getenv("SERVER_URL"), // e.g., "ws://localhost:8080"
		AgentKey:  os.Getenv("AGENT_KEY"),
		WatchDir:  os.Getenv("WATCH_DIR"),
	}

	if config.ServerURL == "" || config.WatchDir == "" {
		slog.Error("Missing configuration (SERVER_URL, WATCH_DIR)")
		os.Exit(1)
	}

	slog.Info("Starting RowForge Agent", "server", config.ServerURL, "watch_dir", config.WatchDir)

	if err := os.MkdirAll(config.WatchDir, 0755); err != nil {
		slog.Error("Failed to access watch directory", "error", err)
		os.Exit(1)
	}

	// Connect to Control Plane
	controlURL := config.ServerURL + "/agent/control"
	headers := make(map[string][]string)
	headers["X-Agent-Key"] = []string{config.AgentKey}

	conn, _, err := websocket.DefaultDialer.Dial(controlURL, headers)
	if err != nil {
		slog.Error("Failed to connect to Control Plane", "error", err)
		os.Exit(1) // In prod, rely on restart policy or retry loop
	}
	defer conn.Close()
	slog.Info("Connected to Control Plane")

	profiles := &profileStore{}

	// Main Loop
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)

	go func() {
		for {
			_, message, err := conn.ReadMessage()
			if err != nil {
				slog.Error("Control read error", "error", err)
				return // Reconnect logic would go here
			}

			var prof ScanProfile
			if err := json.Unmarshal(message, &prof); err != nil {
				slog.Error("Invalid scan profile", "error", err)
				continue
			}

			slog.Info("Received Scan Profile", "columns", prof.Columns, "format", prof.Format, "interval", prof.ScanInterval)
			profiles.Set(prof)
		}
	}()

	go func() {
		for {
			prof := profiles.Get()
			scanDir(config, prof)

			interval := 30 * time.Second
			if d, err := time.ParseDuration(prof.ScanInterval); err == nil && d > 0 {
				interval = d
			}
			time.Sleep(interval)
		}
	}()

	<-interrupt
	slog.Info("Agent shutting down...")
}

// scanDir walks the watch directory once and streams every .txt file.
// Processed inputs move to processed/, unusable ones to failed/.
func scanDir(config AgentConfig, prof ScanProfile) {
	if prof.Columns <= 0 {
		return // No profile from the server yet
	}

	entries, err := os.ReadDir(config.WatchDir)
	if err != nil {
		slog.Error("Watch directory scan failed", "error", err)
		return
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".txt") {
			continue
		}
		processFile(config, prof, filepath.Join(config.WatchDir, entry.Name()), entry.Name())
	}
}

func processFile(config AgentConfig, prof ScanProfile, path, name string) {
	slog.Info("Processing file", "file", name)

	rs, rep := delim.ParseFile(path, delim.Options{
		Delimiter:               prof.Delimiter,
		Columns:                 prof.Columns,
		TolerateExtraDelimiters: prof.TolerateExtraDelimiters,
	})

	if rs == nil {
		slog.Warn("File produced no records", "file", name, "report", rep.Messages())
		moveTo(config.WatchDir, path, "failed", name)
		return
	}

	if err := streamRecords(config, prof, name, rs, rep); err != nil {
		slog.Error("Stream failed", "file", name, "error", err)
		moveTo(config.WatchDir, path, "failed", name)
		return
	}

	slog.Info("File streamed", "file", name, "records", rs.Len(), "warnings", rep.Len())
	moveTo(config.WatchDir, path, "processed", name)
}

// streamRecords ships one parsed file over the data plane (gob encoded).
func streamRecords(config AgentConfig, prof ScanProfile, name string, rs *delim.RecordSet, rep *delim.Report) error {
	dataURL := config.ServerURL + "/agent/data"
	headers := make(map[string][]string)
	headers["X-Agent-Key"] = []string{config.AgentKey}

	conn, _, err := websocket.DefaultDialer.Dial(dataURL, headers)
	if err != nil {
		return fmt.Errorf("data plane dial failed: %w", err)
	}
	defer conn.Close()

	enc := gob.NewEncoder(&WSWriter{Conn: conn})

	manifest := Manifest{
		SourceFile: name,
		Format:     prof.Format,
		Columns:    rs.Headers,
		Report:     rep.Messages(),
	}
	if err := enc.Encode(manifest); err != nil {
		return fmt.Errorf("manifest encode failed: %w", err)
	}

	for _, rec := range rs.Records {
		if err := enc.Encode(rec.Values()); err != nil {
			return fmt.Errorf("record encode failed: %w", err)
		}
	}

	// Clean close tells the server the stream is complete.
	deadline := time.Now().Add(5 * time.Second)
	return conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
}

func moveTo(watchDir, oldPath, subdir, name string) {
	destDir := filepath.Join(watchDir, subdir)
	if err := os.MkdirAll(destDir, 0755); err != nil {
		slog.Error("Failed to create directory", "dir", destDir, "error", err)
		return
	}

	// Timestamp prefix keeps re-dropped files from colliding.
	dest := filepath.Join(destDir, fmt.Sprintf("%d_%s", time.Now().Unix(), name))
	if err := os.Rename(oldPath, dest); err != nil {
		slog.Error("Failed to move file", "from", oldPath, "error", err)
	}
}

type WSWriter struct {
	Conn *websocket.Conn
}

func (w *WSWriter) Write(p []byte) (n int, err error) {
	err = w.Conn.WriteMessage(websocket.BinaryMessage, p)
	if err != nil {
		return 0, err
	}
	return len(p), nil
}
