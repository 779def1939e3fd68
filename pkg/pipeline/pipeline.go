// Package pipeline provides the decode → flatten → export pipeline for
// tracetab.
//
// This package implements the orchestration used by both the CLI and the
// HTTP API: read a traced-contact file, flatten it into a network table,
// export the table in the requested formats, and optionally persist the
// result. Centralizing this logic keeps behavior consistent across entry
// points.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Decode: read a tagged trace envelope into one of the three input shapes
//  2. Flatten: run the contact-network flattening transform (with caching)
//  3. Export: encode the table in the requested formats (JSON, CSV)
//
// Each stage can be run independently or as part of the complete pipeline.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, nil, logger)
//	opts := pipeline.Options{
//	    Input:   "traces.json",
//	    Formats: []string{"csv"},
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	csvData := result.Artifacts["csv"]
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/epitools/tracetab/pkg/network"
	"github.com/epitools/tracetab/pkg/trace"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

// Format constants for output formats.
const (
	FormatJSON = "json"
	FormatCSV  = "csv"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatJSON: true,
	FormatCSV:  true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the flatten pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Input is a path to a trace envelope file. Ignored when Reader is set.
	Input string `json:"input,omitempty"`

	// Label is an optional name attached to the stored result.
	Label string `json:"label,omitempty"`

	// Formats selects the export encodings (default: json).
	Formats []string `json:"formats,omitempty"`

	// Refresh bypasses the table cache.
	Refresh bool `json:"refresh,omitempty"`

	// Save persists the flattened table to the result store.
	Save bool `json:"save,omitempty"`

	// Runtime options (not serialized)
	Reader io.Reader   `json:"-"` // direct input, takes precedence over Input
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Input is the decoded trace structure.
	Input trace.Input

	// InputHash is the content hash of the canonical input, used as the
	// cache identity of the flattened table.
	InputHash string

	// Table is the flattened contact-network table.
	Table network.Table

	// Artifacts contains exported encodings keyed by format.
	Artifacts map[string][]byte

	// ResultID is the store ID when Save was requested, empty otherwise.
	ResultID string

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	ElementCount int // traces in the input (1 unless a collection)
	EdgeCount    int // traced edges before deduplication
	RowCount     int // rows in the flattened table
	DecodeTime   time.Duration
	FlattenTime  time.Duration
	ExportTime   time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	TableHit bool // Whether the flattened table came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errInvalidFormat(format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults.
// This method is idempotent - calling it multiple times has the same effect
// as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Input == "" && o.Reader == nil {
		return errMissingInput()
	}
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatJSON}
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// Shape returns the wire kind tag of an input for logging and hooks.
func Shape(in trace.Input) string {
	switch in.(type) {
	case trace.Directional:
		return trace.KindDirectional
	case trace.Bidirectional:
		return trace.KindBidirectional
	case trace.Collection:
		return trace.KindCollection
	default:
		return "unknown"
	}
}

// countEdges returns the number of traced edges in an input, before
// deduplication. Used for stats only.
func countEdges(in trace.Input) int {
	switch v := in.(type) {
	case trace.Directional:
		return len(v.Edges)
	case trace.Bidirectional:
		return len(v.Ingoing.Edges) + len(v.Outgoing.Edges)
	case trace.Collection:
		var n int
		for _, el := range v {
			for _, t := range el.Traces {
				n += countEdges(t)
			}
		}
		return n
	default:
		return 0
	}
}

// countElements returns the number of trace units in an input.
func countElements(in trace.Input) int {
	if c, ok := in.(trace.Collection); ok {
		return len(c)
	}
	return 1
}
