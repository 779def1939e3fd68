package io

import (
	"fmt"
	"io"
	"os"

	"github.com/epitools/tracetab/pkg/trace"
)

// ReadJSON decodes a tagged trace envelope from r into one of the three
// input shapes. The returned value is independent of r and safe to flatten
// concurrently. ReadJSON does not close r.
//
// Errors are wrapped with decode context; an unknown kind tag, a missing
// trace body, a malformed window date, or an invalid direction all fail the
// whole read.
func ReadJSON(r io.Reader) (trace.Input, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	return trace.UnmarshalInput(data)
}

// ImportJSON reads a trace input from a JSON file at path.
// This is a convenience wrapper around [ReadJSON] for file-based input.
func ImportJSON(path string) (trace.Input, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadJSON(f)
}
