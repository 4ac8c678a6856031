package delim

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
)

func recordValues(rs *RecordSet) [][]string {
	if rs == nil {
		return nil
	}
	out := make([][]string, 0, len(rs.Records))
	for _, rec := range rs.Records {
		out = append(out, rec.Values())
	}
	return out
}

func TestParse(t *testing.T) {
	tests := []struct {
		name         string
		input        string
		opts         Options
		wantHeaders  []string
		wantRecords  [][]string
		wantMessages []string
	}{
		{
			name:        "clean input",
			input:       "a%b%c\n1%2%3\n4%5%6\n",
			opts:        Options{Columns: 3},
			wantHeaders: []string{"a", "b", "c"},
			wantRecords: [][]string{{"1", "2", "3"}, {"4", "5", "6"}},
		},
		{
			name:  "header count mismatch",
			input: "a%b\n1%2%3\n",
			opts:  Options{Columns: 3},
			wantMessages: []string{
				"Error: Mismatch between expected columns (3) and headers in file (2).",
			},
		},
		{
			name:        "short row rejected",
			input:       "a%b%c\n1%2\n4%5%6\n",
			opts:        Options{Columns: 3},
			wantHeaders: []string{"a", "b", "c"},
			wantRecords: [][]string{{"4", "5", "6"}},
			wantMessages: []string{
				"Error on line 2: Mismatch in column count. Expected 3, found 2. Row: '1%2'",
			},
		},
		{
			name:        "extra delimiters rejected without tolerance",
			input:       "a%b%c\n1%2%3\n1%2%3%4\n",
			opts:        Options{Columns: 3},
			wantHeaders: []string{"a", "b", "c"},
			wantRecords: [][]string{{"1", "2", "3"}},
			wantMessages: []string{
				"Error on line 3: Mismatch in column count. Expected 3, found 4. Row: '1%2%3%4'",
			},
		},
		{
			name:        "extra delimiters folded with tolerance",
			input:       "a%b%c\n1%2%3\n1%2%3%4\n",
			opts:        Options{Columns: 3, TolerateExtraDelimiters: true},
			wantHeaders: []string{"a", "b", "c"},
			wantRecords: [][]string{{"1", "2", "3"}, {"1", "2", "3%4"}},
			wantMessages: []string{
				"Warning on line 3: Extra delimiters found. Extra content was added to the last column.",
			},
		},
		{
			name:        "tolerance does not excuse short rows",
			input:       "a%b%c\n1%2\n4%5%6\n",
			opts:        Options{Columns: 3, TolerateExtraDelimiters: true},
			wantHeaders: []string{"a", "b", "c"},
			wantRecords: [][]string{{"4", "5", "6"}},
			wantMessages: []string{
				"Error on line 2: Mismatch in column count. Expected 3, found 2. Row: '1%2'",
			},
		},
		{
			name:        "repeated header skipped",
			input:       "a%b%c\n1%2%3\na%b%c\n4%5%6\n",
			opts:        Options{Columns: 3},
			wantHeaders: []string{"a", "b", "c"},
			wantRecords: [][]string{{"1", "2", "3"}, {"4", "5", "6"}},
			wantMessages: []string{
				"Warning: Skipping repeated header row on line 3.",
			},
		},
		{
			name:        "repeated header check uses full split even with tolerance",
			input:       "a%b%c\n1%2%3\na%b%c\n",
			opts:        Options{Columns: 3, TolerateExtraDelimiters: true},
			wantHeaders: []string{"a", "b", "c"},
			wantRecords: [][]string{{"1", "2", "3"}},
			wantMessages: []string{
				"Warning: Skipping repeated header row on line 3.",
			},
		},
		{
			name:        "blank lines skipped silently but still counted",
			input:       "a%b%c\n\n   \n1%2%3\nx%y\n",
			opts:        Options{Columns: 3},
			wantHeaders: []string{"a", "b", "c"},
			wantRecords: [][]string{{"1", "2", "3"}},
			wantMessages: []string{
				"Error on line 5: Mismatch in column count. Expected 3, found 2. Row: 'x%y'",
			},
		},
		{
			name:        "surrounding whitespace trimmed per line",
			input:       "  a%b%c  \r\n\t1%2%3\r\n",
			opts:        Options{Columns: 3},
			wantHeaders: []string{"a", "b", "c"},
			wantRecords: [][]string{{"1", "2", "3"}},
		},
		{
			name:  "no data rows",
			input: "a%b%c\n",
			opts:  Options{Columns: 3},
			wantMessages: []string{
				"No valid data found to process.",
			},
		},
		{
			name:  "every row invalid yields no data",
			input: "a%b%c\n1%2\n3%4\n",
			opts:  Options{Columns: 3},
			wantMessages: []string{
				"Error on line 2: Mismatch in column count. Expected 3, found 2. Row: '1%2'",
				"Error on line 3: Mismatch in column count. Expected 3, found 2. Row: '3%4'",
				"No valid data found to process.",
			},
		},
		{
			name:  "empty input with one expected column",
			input: "",
			opts:  Options{Columns: 1},
			wantMessages: []string{
				"No valid data found to process.",
			},
		},
		{
			name:  "empty input with several expected columns",
			input: "",
			opts:  Options{Columns: 3},
			wantMessages: []string{
				"Error: Mismatch between expected columns (3) and headers in file (1).",
			},
		},
		{
			name:        "single column file",
			input:       "name\nalice\nbob\n",
			opts:        Options{Columns: 1},
			wantHeaders: []string{"name"},
			wantRecords: [][]string{{"alice"}, {"bob"}},
		},
		{
			name:  "duplicate header names reject every row",
			input: "a%a%c\n1%2%3\n",
			opts:  Options{Columns: 3},
			wantMessages: []string{
				`Error creating record for line 2: duplicate field name "a"`,
				"No valid data found to process.",
			},
		},
		{
			name:        "custom delimiter",
			input:       "a;b;c\n1;2;3\n",
			opts:        Options{Delimiter: ";", Columns: 3},
			wantHeaders: []string{"a", "b", "c"},
			wantRecords: [][]string{{"1", "2", "3"}},
		},
		{
			name:        "empty fields kept",
			input:       "a%b%c\n1%%3\n%%\n",
			opts:        Options{Columns: 3},
			wantHeaders: []string{"a", "b", "c"},
			wantRecords: [][]string{{"1", "", "3"}, {"", "", ""}},
		},
		{
			name:        "bom before header",
			input:       "\xEF\xBB\xBFa%b%c\n1%2%3\n",
			opts:        Options{Columns: 3},
			wantHeaders: []string{"a", "b", "c"},
			wantRecords: [][]string{{"1", "2", "3"}},
		},
		{
			name:        "delimiter-heavy last column with tolerance",
			input:       "id%note\n7%x%y%z%%w\n",
			opts:        Options{Columns: 2, TolerateExtraDelimiters: true},
			wantHeaders: []string{"id", "note"},
			wantRecords: [][]string{{"7", "x%y%z%%w"}},
			wantMessages: []string{
				"Warning on line 2: Extra delimiters found. Extra content was added to the last column.",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rs, rep := Parse(strings.NewReader(tt.input), tt.opts)

			if tt.wantRecords == nil {
				if rs != nil {
					t.Fatalf("expected no data, got %d records", rs.Len())
				}
			} else {
				if rs == nil {
					t.Fatalf("expected records, got none; report: %v", rep.Messages())
				}
				if !slices.Equal(rs.Headers, tt.wantHeaders) {
					t.Errorf("headers = %v, want %v", rs.Headers, tt.wantHeaders)
				}
				got := recordValues(rs)
				if len(got) != len(tt.wantRecords) {
					t.Fatalf("got %d records, want %d; report: %v", len(got), len(tt.wantRecords), rep.Messages())
				}
				for i := range got {
					if !slices.Equal(got[i], tt.wantRecords[i]) {
						t.Errorf("record %d = %v, want %v", i, got[i], tt.wantRecords[i])
					}
				}
			}

			if !slices.Equal(rep.Messages(), tt.wantMessages) {
				t.Errorf("messages = %q, want %q", rep.Messages(), tt.wantMessages)
			}
		})
	}
}

func TestParseRecordFieldOrder(t *testing.T) {
	rs, _ := Parse(strings.NewReader("z%a%m\n1%2%3\n"), Options{Columns: 3})
	if rs == nil {
		t.Fatal("expected records")
	}
	rec := rs.Records[0]
	if got := rec.Keys(); !slices.Equal(got, []string{"z", "a", "m"}) {
		t.Errorf("keys = %v, want header order", got)
	}
	if v, ok := rec.Get("a"); !ok || v != "2" {
		t.Errorf(`Get("a") = %q, %v, want "2", true`, v, ok)
	}
	if _, ok := rec.Get("missing"); ok {
		t.Error(`Get("missing") should report absence`)
	}
}

func TestParseWarningMetadata(t *testing.T) {
	input := "a%b%c\n1%2\na%b%c\n1%2%3%4\n"
	_, rep := Parse(strings.NewReader(input), Options{Columns: 3, TolerateExtraDelimiters: true})

	warnings := rep.Warnings()
	if len(warnings) != 3 {
		t.Fatalf("got %d entries, want 3: %v", len(warnings), rep.Messages())
	}

	checks := []struct {
		line     int
		severity Severity
	}{
		{2, SeverityError},   // short row
		{3, SeverityWarning}, // repeated header
		{4, SeverityWarning}, // folded delimiters
	}
	for i, want := range checks {
		if warnings[i].Line != want.line {
			t.Errorf("entry %d line = %d, want %d", i, warnings[i].Line, want.line)
		}
		if warnings[i].Severity != want.severity {
			t.Errorf("entry %d severity = %q, want %q", i, warnings[i].Severity, want.severity)
		}
	}
	if !rep.HasErrors() {
		t.Error("report should carry an error entry")
	}
}

func TestParseFile(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "absent.txt")
		rs, rep := ParseFile(path, Options{Columns: 3})
		if rs != nil {
			t.Fatal("expected no data for a missing file")
		}
		want := []string{"Error: Input file '" + path + "' not found."}
		if !slices.Equal(rep.Messages(), want) {
			t.Errorf("messages = %q, want %q", rep.Messages(), want)
		}
	})

	t.Run("existing file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "input.txt")
		if err := os.WriteFile(path, []byte("a%b\n1%2\n"), 0o644); err != nil {
			t.Fatal(err)
		}
		rs, rep := ParseFile(path, Options{Columns: 2})
		if rs == nil {
			t.Fatalf("expected records; report: %v", rep.Messages())
		}
		if rs.Len() != 1 {
			t.Errorf("got %d records, want 1", rs.Len())
		}
		if rep.Len() != 0 {
			t.Errorf("unexpected report entries: %v", rep.Messages())
		}
	})
}
