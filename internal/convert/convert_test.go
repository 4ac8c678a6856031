package convert

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
)

func writeInput(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "input.txt")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRunExcel(t *testing.T) {
	in := writeInput(t, "a%b%c\n1%2%3\n4%5%6\n")
	out := filepath.Join(t.TempDir(), "out.xlsx")

	rs, rep := Run(context.Background(), Request{
		InputPath:  in,
		OutputPath: out,
		Columns:    3,
	})
	if rs == nil {
		t.Fatalf("expected records; report: %v", rep.Messages())
	}
	if rs.Len() != 2 {
		t.Errorf("got %d records, want 2", rs.Len())
	}

	want := []string{"Data successfully saved to '" + out + "'."}
	if !slices.Equal(rep.Messages(), want) {
		t.Errorf("messages = %q, want %q", rep.Messages(), want)
	}

	info, err := os.Stat(out)
	if err != nil {
		t.Fatalf("output missing: %v", err)
	}
	if info.Size() == 0 {
		t.Error("output file is empty")
	}
}

func TestRunCSV(t *testing.T) {
	in := writeInput(t, "a%b\n1%2\n")
	out := filepath.Join(t.TempDir(), "out.csv")

	rs, rep := Run(context.Background(), Request{
		InputPath:  in,
		OutputPath: out,
		Columns:    2,
		Format:     "csv",
	})
	if rs == nil {
		t.Fatalf("expected records; report: %v", rep.Messages())
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if got := string(data); got != "a,b\n1,2\n" {
		t.Errorf("csv output = %q", got)
	}
}

func TestRunMissingInput(t *testing.T) {
	in := filepath.Join(t.TempDir(), "absent.txt")
	out := filepath.Join(t.TempDir(), "out.xlsx")

	rs, rep := Run(context.Background(), Request{InputPath: in, OutputPath: out, Columns: 3})
	if rs != nil {
		t.Fatal("expected no data for a missing input")
	}
	want := []string{"Error: Input file '" + in + "' not found."}
	if !slices.Equal(rep.Messages(), want) {
		t.Errorf("messages = %q, want %q", rep.Messages(), want)
	}
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Error("output file should not have been created")
	}
}

func TestRunExportFailureDropsRecords(t *testing.T) {
	in := writeInput(t, "a%b\n1%2\n")
	out := filepath.Join(t.TempDir(), "no-such-dir", "out.xlsx")

	rs, rep := Run(context.Background(), Request{InputPath: in, OutputPath: out, Columns: 2})
	if rs != nil {
		t.Fatal("records must be withheld when the export fails")
	}

	msgs := rep.Messages()
	if len(msgs) != 1 {
		t.Fatalf("got %d messages, want 1: %q", len(msgs), msgs)
	}
	if !strings.HasPrefix(msgs[0], "Error saving to Excel file: ") {
		t.Errorf("message = %q", msgs[0])
	}
}

func TestRunTolerateExtraDelimiters(t *testing.T) {
	in := writeInput(t, "a%b%c\n1%2%3%4\n")
	out := filepath.Join(t.TempDir(), "out.csv")

	rs, rep := Run(context.Background(), Request{
		InputPath:               in,
		OutputPath:              out,
		Columns:                 3,
		TolerateExtraDelimiters: true,
		Format:                  "csv",
	})
	if rs == nil {
		t.Fatalf("expected records; report: %v", rep.Messages())
	}
	rec := rs.Records[0]
	if v, _ := rec.Get("c"); v != "3%4" {
		t.Errorf(`c = %q, want "3%%4"`, v)
	}

	want := []string{
		"Warning on line 2: Extra delimiters found. Extra content was added to the last column.",
		"Data successfully saved to '" + out + "'.",
	}
	if !slices.Equal(rep.Messages(), want) {
		t.Errorf("messages = %q, want %q", rep.Messages(), want)
	}
}
