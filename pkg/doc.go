// Package pkg provides the core libraries for tracetab contact network flattening.
//
// # Overview
//
// Tracetab turns contact tracing results (movements of animals between
// holdings, traced forwards and backwards from a root holding) into flat,
// ordered network tables ready for export and analysis. The pkg directory
// is organized into these areas:
//
//  1. [trace] - Input shapes (directional, bidirectional, collection) and wire decoding
//  2. [network] - The flattening transform and the resulting table
//  3. [io] - JSON and CSV import/export
//  4. [pipeline] - Orchestration (decode → flatten → export) used by CLI and API
//  5. [cache] / [store] - Table caching and persistent result storage
//
// # Architecture
//
// The typical data flow through tracetab:
//
//	Trace document (JSON envelope)
//	         ↓
//	    [trace] package (decode into input shapes)
//	         ↓
//	    [network] package (flatten into ordered rows)
//	         ↓
//	    [io] package (JSON/CSV export)
//
// # Quick Start
//
// Flatten a traced collection into a table:
//
//	import (
//	    "github.com/epitools/tracetab/pkg/network"
//	    "github.com/epitools/tracetab/pkg/trace"
//	)
//
//	in, _ := trace.UnmarshalInput(doc)
//	table, err := network.Flatten(in)
//
// # Main Packages
//
// [trace] - The three input shapes and their tagged JSON wire format. A
// collection holds labeled elements; each element must carry exactly one
// bidirectional trace to be flattenable.
//
// [network] - The pure flattening transform: adjacent duplicate edges
// collapse, window columns of the inactive direction are null, ingoing
// rows precede outgoing rows, and collection order is preserved.
//
// [pipeline] - Complete flatten pipeline with caching and optional result
// persistence. Ensures consistent behavior between CLI and API.
//
// [cache] - Table cache keyed by a hash of the canonical input document.
// File-based for the CLI, Redis for the API, null to disable.
//
// [store] - Persistent result store backed by MongoDB, with an in-memory
// implementation for tests.
//
// [errors] - Structured errors with stable codes, shared by CLI and API.
//
// [observability] - Hook points for instrumenting decode, flatten, cache,
// and store operations.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...          # All tests
//	go test ./pkg/network/...  # Specific package
//	go test -run Example       # Examples only
//
// [trace]: https://pkg.go.dev/github.com/epitools/tracetab/pkg/trace
// [network]: https://pkg.go.dev/github.com/epitools/tracetab/pkg/network
// [io]: https://pkg.go.dev/github.com/epitools/tracetab/pkg/io
// [pipeline]: https://pkg.go.dev/github.com/epitools/tracetab/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/epitools/tracetab/pkg/cache
// [store]: https://pkg.go.dev/github.com/epitools/tracetab/pkg/store
// [errors]: https://pkg.go.dev/github.com/epitools/tracetab/pkg/errors
// [observability]: https://pkg.go.dev/github.com/epitools/tracetab/pkg/observability
package pkg
