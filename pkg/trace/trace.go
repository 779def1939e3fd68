// Package trace defines the traced-contact structures produced by a
// contact-tracing search over a livestock movement log.
//
// A search starts at a root holding and walks movements depth-first within a
// time window, either backwards (ingoing, possible sources of introduction)
// or forwards (outgoing, possible spread). The search itself lives upstream;
// this package only models its output so that it can be flattened into a
// network table by package network.
//
// The three input shapes form a closed set: a single [Directional] trace, a
// [Bidirectional] pair of traces sharing one root, and a [Collection] of
// bidirectional traces. All three implement the sealed [Input] interface,
// which is what [network.Flatten] dispatches on.
package trace

import (
	"fmt"
	"time"
)

// DateLayout is the wire format for trace window dates.
const DateLayout = "2006-01-02"

// HoldingID identifies a livestock-keeping premises (a node in the
// contact network).
type HoldingID int64

// Direction is the search direction of a trace.
type Direction string

const (
	// Ingoing traces backwards in time: movements into the root holding,
	// then into their sources, and so on.
	Ingoing Direction = "in"

	// Outgoing traces forwards in time: movements out of the root holding,
	// then out of their destinations, and so on.
	Outgoing Direction = "out"
)

// Valid reports whether d is one of the two recognized directions.
func (d Direction) Valid() bool {
	return d == Ingoing || d == Outgoing
}

// ParseDirection converts a wire string into a Direction.
// Both the short ("in"/"out") and long ("ingoing"/"outgoing") spellings
// are accepted.
func ParseDirection(s string) (Direction, error) {
	switch s {
	case "in", "ingoing":
		return Ingoing, nil
	case "out", "outgoing":
		return Outgoing, nil
	default:
		return "", fmt.Errorf("invalid direction %q (must be \"in\" or \"out\")", s)
	}
}

// Edge is one traversed contact: a movement from Source to Dest discovered
// at Distance hops from the root along the path that found it.
//
// Edges appear in depth-first visitation order. The same (Source, Dest) pair
// may recur at different distances when rediscovered via different paths;
// such repeats are distinct contacts and are never merged.
type Edge struct {
	Source   HoldingID
	Dest     HoldingID
	Distance int // hops from the root, >= 1
}

// Directional is the result of one search direction from one root.
//
// The tracer guarantees Direction is valid, WindowBegin <= WindowEnd, and
// Distance >= 1 for every edge. Edges may be empty when no contacts were
// found inside the window.
type Directional struct {
	Root        HoldingID
	Direction   Direction
	WindowBegin time.Time
	WindowEnd   time.Time
	Edges       []Edge
}

// Bidirectional pairs the ingoing and outgoing traces of one root.
// Both directions share the root but generally have independent windows.
type Bidirectional struct {
	Root     HoldingID
	Ingoing  Directional
	Outgoing Directional
}

// Element is one entry of a [Collection]. A well-formed element holds
// exactly one [Bidirectional] trace; Traces is a slice of Input so that
// malformed aggregation input (several traces bundled into one element, or
// an element of the wrong kind) stays representable and can be rejected
// with a precise error by package network.
type Element struct {
	Label  string // optional caller-supplied name for the element
	Traces []Input
}

// Collection is an ordered sequence of elements, each expected to hold
// exactly one bidirectional trace.
type Collection []Element

// Input is the closed set of shapes accepted by network.Flatten:
// [Directional], [Bidirectional] and [Collection]. The unexported method
// seals the interface; no other implementations exist.
type Input interface {
	input()
}

func (Directional) input()   {}
func (Bidirectional) input() {}
func (Collection) input()    {}
