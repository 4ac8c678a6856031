package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLocalProviderStreamToFile(t *testing.T) {
	base := t.TempDir()
	p := NewLocalProvider(base, "")

	w, errChan := p.StreamToFile(context.Background(), "converted/job-1.csv")
	if w == nil {
		t.Fatalf("no writer returned: %v", <-errChan)
	}
	if _, err := io.WriteString(w, "a,b\n1,2\n"); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	if err := <-errChan; err != nil {
		t.Fatalf("storage error: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(base, "converted", "job-1.csv"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "a,b\n1,2\n" {
		t.Errorf("stored content = %q", data)
	}
}

func TestLocalProviderOpenFile(t *testing.T) {
	base := t.TempDir()
	p := NewLocalProvider(base, "")

	if err := os.WriteFile(filepath.Join(base, "x.txt"), []byte("payload"), 0o644); err != nil {
		t.Fatal(err)
	}
	rc, err := p.OpenFile(context.Background(), "x.txt")
	if err != nil {
		t.Fatal(err)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "payload" {
		t.Errorf("read back %q", data)
	}
}

func TestLocalProviderDownloadURL(t *testing.T) {
	p := NewLocalProvider(t.TempDir(), "http://localhost:8080/")
	if got := p.GetDownloadURL("converted/a.xlsx"); got != "http://localhost:8080/files/converted/a.xlsx" {
		t.Errorf("url = %q", got)
	}

	plain := NewLocalProvider(t.TempDir(), "")
	if got := plain.GetDownloadURL("a.xlsx"); !strings.HasPrefix(got, "file://") {
		t.Errorf("fallback url = %q", got)
	}
}

func TestLocalProviderCreateFailure(t *testing.T) {
	base := t.TempDir()
	p := NewLocalProvider(base, "")

	// A key that collides with an existing file used as a directory.
	if err := os.WriteFile(filepath.Join(base, "blocked"), nil, 0o644); err != nil {
		t.Fatal(err)
	}
	w, errChan := p.StreamToFile(context.Background(), "blocked/out.csv")
	if w != nil {
		t.Fatal("expected no writer")
	}
	if err := <-errChan; err == nil {
		t.Fatal("expected an error")
	}
}
