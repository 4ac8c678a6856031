package config

import (
	"slices"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.AppEnv != "development" {
		t.Errorf("AppEnv = %q", cfg.AppEnv)
	}
	if cfg.ServerPort != "8080" {
		t.Errorf("ServerPort = %q", cfg.ServerPort)
	}
	if cfg.StorageType != "local" {
		t.Errorf("StorageType = %q", cfg.StorageType)
	}
	if cfg.Compression != "none" {
		t.Errorf("Compression = %q", cfg.Compression)
	}
	if cfg.WorkerCount != 5 {
		t.Errorf("WorkerCount = %d", cfg.WorkerCount)
	}
	if cfg.DefaultTimeout != 15*time.Minute {
		t.Errorf("DefaultTimeout = %v", cfg.DefaultTimeout)
	}
	if cfg.DefaultLang != "en" {
		t.Errorf("DefaultLang = %q", cfg.DefaultLang)
	}
	if cfg.MaxUploadSize != 50*1024*1024 {
		t.Errorf("MaxUploadSize = %d", cfg.MaxUploadSize)
	}
	if !slices.Equal(cfg.AllowedOrigins, []string{"*"}) {
		t.Errorf("AllowedOrigins = %v", cfg.AllowedOrigins)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("STORAGE_TYPE", "s3")
	t.Setenv("COMPRESSION", "lz4")
	t.Setenv("WORKER_COUNT", "12")
	t.Setenv("DEFAULT_TIMEOUT", "90s")
	t.Setenv("EMAIL_ATTACH_FILE", "true")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("AGENT_SCAN_INTERVAL", "5s")

	cfg := Load()

	if cfg.ServerPort != "9090" {
		t.Errorf("ServerPort = %q", cfg.ServerPort)
	}
	if cfg.StorageType != "s3" {
		t.Errorf("StorageType = %q", cfg.StorageType)
	}
	if cfg.Compression != "lz4" {
		t.Errorf("Compression = %q", cfg.Compression)
	}
	if cfg.WorkerCount != 12 {
		t.Errorf("WorkerCount = %d", cfg.WorkerCount)
	}
	if cfg.DefaultTimeout != 90*time.Second {
		t.Errorf("DefaultTimeout = %v", cfg.DefaultTimeout)
	}
	if !cfg.AttachFile {
		t.Error("AttachFile not set")
	}
	want := []string{"https://a.example", "https://b.example"}
	if !slices.Equal(cfg.AllowedOrigins, want) {
		t.Errorf("AllowedOrigins = %v, want %v", cfg.AllowedOrigins, want)
	}
	if cfg.AgentScanInterval != 5*time.Second {
		t.Errorf("AgentScanInterval = %v", cfg.AgentScanInterval)
	}
}

func TestLoadIgnoresMalformedValues(t *testing.T) {
	t.Setenv("WORKER_COUNT", "many")
	t.Setenv("DEFAULT_TIMEOUT", "soon")
	t.Setenv("EMAIL_ATTACH_FILE", "yep")

	cfg := Load()

	if cfg.WorkerCount != 5 {
		t.Errorf("WorkerCount = %d, want default", cfg.WorkerCount)
	}
	if cfg.DefaultTimeout != 15*time.Minute {
		t.Errorf("DefaultTimeout = %v, want default", cfg.DefaultTimeout)
	}
	if cfg.AttachFile {
		t.Error("AttachFile should fall back to false")
	}
}
