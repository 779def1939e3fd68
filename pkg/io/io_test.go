package io

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/epitools/tracetab/pkg/network"
	"github.com/epitools/tracetab/pkg/trace"
)

const bidirectionalFixture = `{
	"kind": "bidirectional",
	"trace": {
		"root": 5,
		"ingoing": {
			"window": {"begin": "2005-08-01", "end": "2005-10-31"},
			"edges": [{"source": 7, "dest": 5, "distance": 1}]
		},
		"outgoing": {
			"window": {"begin": "2005-08-01", "end": "2005-10-31"},
			"edges": []
		}
	}
}`

func TestReadJSONThenFlatten(t *testing.T) {
	in, err := ReadJSON(strings.NewReader(bidirectionalFixture))
	if err != nil {
		t.Fatalf("ReadJSON error: %v", err)
	}

	table, err := network.Flatten(in)
	if err != nil {
		t.Fatalf("Flatten error: %v", err)
	}
	if table.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", table.Len())
	}
	r := table[0]
	if r.Direction != trace.Ingoing || r.Source != 7 || r.Dest != 5 {
		t.Errorf("row = %+v, want ingoing 7->5", r)
	}
}

func TestImportJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "traces.json")
	if err := os.WriteFile(path, []byte(bidirectionalFixture), 0644); err != nil {
		t.Fatal(err)
	}

	in, err := ImportJSON(path)
	if err != nil {
		t.Fatalf("ImportJSON error: %v", err)
	}
	if _, ok := in.(trace.Bidirectional); !ok {
		t.Errorf("ImportJSON = %T, want Bidirectional", in)
	}

	if _, err := ImportJSON(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("ImportJSON of missing file should error")
	}
}

func sampleTable(t *testing.T) network.Table {
	t.Helper()
	begin := time.Date(2005, time.August, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2005, time.October, 31, 0, 0, 0, 0, time.UTC)
	return network.Table{
		{
			Root: 10, InBegin: &begin, InEnd: &end,
			Direction: trace.Ingoing, Source: 7, Dest: 10, Distance: 1,
		},
		{
			Root: 10, OutBegin: &begin, OutEnd: &end,
			Direction: trace.Outgoing, Source: 10, Dest: 20, Distance: 1,
		},
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(sampleTable(t), &buf); err != nil {
		t.Fatalf("WriteJSON error: %v", err)
	}

	var decoded struct {
		Rows []map[string]any `json:"rows"`
	}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if len(decoded.Rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(decoded.Rows))
	}

	// Ingoing row: in-columns set, out-columns null
	first := decoded.Rows[0]
	if first["inBegin"] != "2005-08-01" {
		t.Errorf("inBegin = %v, want 2005-08-01", first["inBegin"])
	}
	if first["outBegin"] != nil {
		t.Errorf("outBegin = %v, want null", first["outBegin"])
	}
}

func TestWriteJSON_EmptyTable(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(network.Table{}, &buf); err != nil {
		t.Fatalf("WriteJSON error: %v", err)
	}
	out := strings.TrimSpace(buf.String())
	if !strings.Contains(out, `"rows": []`) {
		t.Errorf("empty table should encode rows as [], got %s", out)
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(sampleTable(t), &buf); err != nil {
		t.Fatalf("WriteCSV error: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("output is not valid CSV: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("got %d records, want header + 2 rows", len(records))
	}
	if records[0][0] != "root" || records[0][8] != "distance" {
		t.Errorf("header = %v", records[0])
	}

	// Ingoing row: out-window fields empty
	in := records[1]
	if in[1] != "2005-08-01" || in[3] != "" || in[4] != "" {
		t.Errorf("ingoing row window fields = %v", in[1:5])
	}
	// Outgoing row: in-window fields empty
	out := records[2]
	if out[1] != "" || out[3] != "2005-08-01" {
		t.Errorf("outgoing row window fields = %v", out[1:5])
	}
}

func TestWriteCSV_HeaderAlways(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(network.Table{}, &buf); err != nil {
		t.Fatalf("WriteCSV error: %v", err)
	}
	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("output is not valid CSV: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("empty table should still write the header, got %d records", len(records))
	}
}

func TestExportRoundTrip(t *testing.T) {
	dir := t.TempDir()
	table := sampleTable(t)

	jsonPath := filepath.Join(dir, "out.json")
	if err := ExportJSON(table, jsonPath); err != nil {
		t.Fatalf("ExportJSON error: %v", err)
	}
	if _, err := os.Stat(jsonPath); err != nil {
		t.Errorf("ExportJSON did not create file: %v", err)
	}

	csvPath := filepath.Join(dir, "out.csv")
	if err := ExportCSV(table, csvPath); err != nil {
		t.Fatalf("ExportCSV error: %v", err)
	}
	data, err := os.ReadFile(csvPath)
	if err != nil {
		t.Fatalf("reading exported CSV: %v", err)
	}
	if !strings.HasPrefix(string(data), "root,") {
		t.Errorf("CSV should start with the header, got %q", string(data[:16]))
	}
}
