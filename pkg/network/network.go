// Package network flattens traced-contact structures into a tabular
// contact-network representation.
//
// The input is one of the three shapes defined by package trace: a single
// directional trace, a bidirectional trace, or a collection of bidirectional
// traces. [Flatten] dispatches on the shape and denormalizes it into ordered
// [Row] values of (root, time window, direction, source, dest, distance).
//
// Two rules shape the output:
//
//  1. Adjacent duplicate edges are collapsed. The depth-first search groups
//     all edges discovered from a common parent contiguously, so duplicate
//     contacts (two animals moved on the same source→dest pair) arrive
//     adjacent. A non-adjacent repeat of the same triple is the same physical
//     link rediscovered via a different path and is kept as a separate row.
//  2. Each row carries exactly one window: the ingoing columns for ingoing
//     traces, the outgoing columns for outgoing traces. The other pair is nil.
//
// Flattening is a pure function: it reads immutable input, never mutates it,
// and always returns a freshly built table. Identical input yields an
// identical table.
package network

import (
	"errors"
	"time"

	"github.com/epitools/tracetab/pkg/trace"
)

var (
	// ErrUnknownDirection is returned when a trace carries a direction
	// outside {in, out}. This indicates a bug at the tracer boundary, not
	// bad user input; flattening fails rather than defaulting a window.
	ErrUnknownDirection = errors.New("unknown trace direction")

	// ErrElementNotSingular is returned by [Flatten] when a collection
	// element bundles zero or several traces instead of exactly one.
	ErrElementNotSingular = errors.New("collection element must hold exactly one trace")

	// ErrElementNotBidirectional is returned by [Flatten] when a collection
	// element holds a trace that is not bidirectional.
	ErrElementNotBidirectional = errors.New("collection element is not a bidirectional trace")
)

// Row is one flattened contact. Exactly one of the {InBegin, InEnd} and
// {OutBegin, OutEnd} pairs is non-nil, matching Direction.
type Row struct {
	Root      trace.HoldingID
	InBegin   *time.Time
	InEnd     *time.Time
	OutBegin  *time.Time
	OutEnd    *time.Time
	Direction trace.Direction
	Source    trace.HoldingID
	Dest      trace.HoldingID
	Distance  int
}

// Table is an ordered sequence of flattened contact rows. Row order is the
// traversal order of the input (after adjacent-duplicate removal); flattening
// never sorts. The zero value is a valid empty table.
type Table []Row

// Len returns the number of rows in the table.
func (t Table) Len() int { return len(t) }
