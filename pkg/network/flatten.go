package network

import (
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/epitools/tracetab/pkg/trace"
)

// Flatten converts a traced-contact structure into a contact-network table.
//
// The behavior per input shape:
//
//   - [trace.Directional]: one row per retained edge, all rows sharing the
//     trace's root, direction and window. An empty trace yields an empty
//     table, never an error.
//   - [trace.Bidirectional]: the ingoing rows followed by the outgoing rows.
//     Both halves always contribute, an empty half simply adds zero rows.
//   - [trace.Collection]: the per-element bidirectional tables concatenated
//     in collection order. Every element is validated first; a malformed
//     element aborts the whole call with [ErrElementNotSingular] or
//     [ErrElementNotBidirectional] and no rows are returned.
//
// A trace with a direction outside {in, out} fails with [ErrUnknownDirection].
func Flatten(in trace.Input) (Table, error) {
	switch v := in.(type) {
	case trace.Directional:
		return flattenDirectional(v)
	case trace.Bidirectional:
		return flattenBidirectional(v)
	case trace.Collection:
		return flattenCollection(v)
	default:
		// Input is sealed; this is unreachable without a new variant.
		return nil, fmt.Errorf("network: unsupported input shape %T", in)
	}
}

// flattenDirectional emits one row per retained edge of a single-direction
// trace. Root, direction and window are invariant across the trace, so the
// window columns are resolved once and shared by every row.
func flattenDirectional(d trace.Directional) (Table, error) {
	if len(d.Edges) == 0 {
		return Table{}, nil
	}

	inBegin, inEnd, outBegin, outEnd, err := windowColumns(d)
	if err != nil {
		return nil, err
	}

	edges := dedupeAdjacent(d.Edges)
	rows := make(Table, len(edges))
	for i, e := range edges {
		rows[i] = Row{
			Root:      d.Root,
			InBegin:   inBegin,
			InEnd:     inEnd,
			OutBegin:  outBegin,
			OutEnd:    outEnd,
			Direction: d.Direction,
			Source:    e.Source,
			Dest:      e.Dest,
			Distance:  e.Distance,
		}
	}
	return rows, nil
}

// flattenBidirectional concatenates the ingoing table followed by the
// outgoing table, preserving each half's internal order.
func flattenBidirectional(b trace.Bidirectional) (Table, error) {
	in, err := flattenDirectional(b.Ingoing)
	if err != nil {
		return nil, err
	}
	out, err := flattenDirectional(b.Outgoing)
	if err != nil {
		return nil, err
	}
	rows := make(Table, 0, len(in)+len(out))
	rows = append(rows, in...)
	rows = append(rows, out...)
	return rows, nil
}

// flattenCollection validates every element, flattens them independently,
// and concatenates the results in collection order.
//
// Elements have no cross-dependency, so they are flattened concurrently.
// The per-element tables land in an index-addressed slice (the synthetic
// grouping key of the aggregation), which keeps the final concatenation in
// collection order regardless of goroutine completion order. The key never
// reaches the output schema; root already identifies each row's origin.
func flattenCollection(c trace.Collection) (Table, error) {
	traces := make([]trace.Bidirectional, len(c))
	for i, el := range c {
		if len(el.Traces) != 1 {
			return nil, fmt.Errorf("%s holds %d traces: %w", elementName(el, i), len(el.Traces), ErrElementNotSingular)
		}
		b, ok := el.Traces[0].(trace.Bidirectional)
		if !ok {
			return nil, fmt.Errorf("%s holds %T: %w", elementName(el, i), el.Traces[0], ErrElementNotBidirectional)
		}
		traces[i] = b
	}

	tables := make([]Table, len(traces))
	var g errgroup.Group
	for i, b := range traces {
		i, b := i, b
		g.Go(func() error {
			t, err := flattenBidirectional(b)
			if err != nil {
				return err
			}
			tables[i] = t
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var total int
	for _, t := range tables {
		total += len(t)
	}
	rows := make(Table, 0, total)
	for _, t := range tables {
		rows = append(rows, t...)
	}
	return rows, nil
}

func elementName(el trace.Element, i int) string {
	if el.Label != "" {
		return fmt.Sprintf("element %q", el.Label)
	}
	return fmt.Sprintf("element %d", i)
}

// windowColumns maps a trace's window and direction onto the four nullable
// window columns of the output schema. The pointers are freshly allocated
// per call, so rows never alias caller-owned memory.
func windowColumns(d trace.Directional) (inBegin, inEnd, outBegin, outEnd *time.Time, err error) {
	begin, end := d.WindowBegin, d.WindowEnd
	switch d.Direction {
	case trace.Ingoing:
		return &begin, &end, nil, nil, nil
	case trace.Outgoing:
		return nil, nil, &begin, &end, nil
	default:
		return nil, nil, nil, nil, fmt.Errorf("direction %q: %w", d.Direction, ErrUnknownDirection)
	}
}

// dedupeAdjacent returns the ordered sub-sequence of edges obtained by
// dropping every edge identical in all three fields to its immediate
// predecessor. The first edge is always kept. Only adjacent duplicates are
// removed; a later non-adjacent repeat of the same triple is retained.
func dedupeAdjacent(edges []trace.Edge) []trace.Edge {
	if len(edges) == 0 {
		return nil
	}
	kept := make([]trace.Edge, 0, len(edges))
	kept = append(kept, edges[0])
	for _, e := range edges[1:] {
		if e != kept[len(kept)-1] {
			kept = append(kept, e)
		}
	}
	return kept
}
