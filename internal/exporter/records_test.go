package exporter

import (
	"bytes"
	"context"
	"encoding/csv"
	"slices"
	"testing"

	"rowforge/internal/delim"
)

func buildRecordSet(t *testing.T, headers []string, rows [][]string) *delim.RecordSet {
	t.Helper()
	rs := &delim.RecordSet{Headers: headers}
	for _, row := range rows {
		rec, err := delim.NewRecord(headers, row)
		if err != nil {
			t.Fatalf("building record: %v", err)
		}
		rs.Records = append(rs.Records, rec)
	}
	return rs
}

func TestStreamRecords(t *testing.T) {
	rs := buildRecordSet(t,
		[]string{"id", "name", "note"},
		[][]string{
			{"1", "alice", "first"},
			{"2", "bob", "second"},
			{"3", "carol", "third"},
		},
	)

	var buf bytes.Buffer
	enc := NewCSVEncoder(&buf)
	res, err := StreamRecords(context.Background(), rs, enc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.RowsProcessed != int64(rs.Len()) {
		t.Errorf("RowsProcessed = %d, want %d", res.RowsProcessed, rs.Len())
	}

	got, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	want := [][]string{
		{"id", "name", "note"},
		{"1", "alice", "first"},
		{"2", "bob", "second"},
		{"3", "carol", "third"},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d lines, want %d", len(got), len(want))
	}
	for i := range want {
		if !slices.Equal(got[i], want[i]) {
			t.Errorf("line %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestStreamRecordsCancelled(t *testing.T) {
	rs := buildRecordSet(t, []string{"a"}, [][]string{{"1"}})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var buf bytes.Buffer
	if _, err := StreamRecords(ctx, rs, NewCSVEncoder(&buf)); err == nil {
		t.Fatal("expected a cancellation error")
	}
}
