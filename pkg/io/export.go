package io

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/epitools/tracetab/pkg/network"
	"github.com/epitools/tracetab/pkg/trace"
)

// csvHeader is the fixed column order of the exported table.
var csvHeader = []string{
	"root", "inBegin", "inEnd", "outBegin", "outEnd",
	"direction", "source", "dest", "distance",
}

// wireRow is the JSON form of a network row. Window columns of the inactive
// direction are null.
type wireRow struct {
	Root      int64   `json:"root"`
	InBegin   *string `json:"inBegin"`
	InEnd     *string `json:"inEnd"`
	OutBegin  *string `json:"outBegin"`
	OutEnd    *string `json:"outEnd"`
	Direction string  `json:"direction"`
	Source    int64   `json:"source"`
	Dest      int64   `json:"dest"`
	Distance  int     `json:"distance"`
}

type wireTable struct {
	Rows []wireRow `json:"rows"`
}

func toWireRow(r network.Row) wireRow {
	return wireRow{
		Root:      int64(r.Root),
		InBegin:   dateString(r.InBegin),
		InEnd:     dateString(r.InEnd),
		OutBegin:  dateString(r.OutBegin),
		OutEnd:    dateString(r.OutEnd),
		Direction: string(r.Direction),
		Source:    int64(r.Source),
		Dest:      int64(r.Dest),
		Distance:  r.Distance,
	}
}

func dateString(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(trace.DateLayout)
	return &s
}

// WriteJSON encodes a flattened table as JSON and writes it to w.
// An empty table encodes as {"rows": []}, never as null.
func WriteJSON(t network.Table, w io.Writer) error {
	out := wireTable{Rows: make([]wireRow, len(t))}
	for i, r := range t {
		out.Rows[i] = toWireRow(r)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportJSON writes a flattened table to a JSON file at path.
// This is a convenience wrapper around [WriteJSON] for file-based output.
func ExportJSON(t network.Table, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteJSON(t, f)
}

// WriteCSV encodes a flattened table as CSV and writes it to w.
// The header row is always written, even for an empty table. Null window
// columns encode as empty fields.
func WriteCSV(t network.Table, w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, r := range t {
		record := []string{
			strconv.FormatInt(int64(r.Root), 10),
			emptyOr(dateString(r.InBegin)),
			emptyOr(dateString(r.InEnd)),
			emptyOr(dateString(r.OutBegin)),
			emptyOr(dateString(r.OutEnd)),
			string(r.Direction),
			strconv.FormatInt(int64(r.Source), 10),
			strconv.FormatInt(int64(r.Dest), 10),
			strconv.Itoa(r.Distance),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ExportCSV writes a flattened table to a CSV file at path.
// This is a convenience wrapper around [WriteCSV] for file-based output.
func ExportCSV(t network.Table, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteCSV(t, f)
}

func emptyOr(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
