package network

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/epitools/tracetab/pkg/trace"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func outgoingTrace(root trace.HoldingID, edges ...trace.Edge) trace.Directional {
	return trace.Directional{
		Root:        root,
		Direction:   trace.Outgoing,
		WindowBegin: date(2005, time.August, 1),
		WindowEnd:   date(2005, time.October, 31),
		Edges:       edges,
	}
}

func ingoingTrace(root trace.HoldingID, edges ...trace.Edge) trace.Directional {
	return trace.Directional{
		Root:        root,
		Direction:   trace.Ingoing,
		WindowBegin: date(2005, time.August, 1),
		WindowEnd:   date(2005, time.October, 31),
		Edges:       edges,
	}
}

func triples(t Table) [][3]int64 {
	out := make([][3]int64, len(t))
	for i, r := range t {
		out[i] = [3]int64{int64(r.Source), int64(r.Dest), int64(r.Distance)}
	}
	return out
}

func TestFlattenDirectional_Empty(t *testing.T) {
	got, err := Flatten(outgoingTrace(10))
	if err != nil {
		t.Fatalf("Flatten() error: %v", err)
	}
	if got == nil {
		t.Fatal("Flatten() returned nil table, want empty table")
	}
	if got.Len() != 0 {
		t.Errorf("Len() = %d, want 0", got.Len())
	}
}

func TestFlattenDirectional_AdjacentDuplicateDropped(t *testing.T) {
	got, err := Flatten(outgoingTrace(10,
		trace.Edge{Source: 10, Dest: 20, Distance: 1},
		trace.Edge{Source: 10, Dest: 20, Distance: 1},
		trace.Edge{Source: 20, Dest: 30, Distance: 2},
	))
	if err != nil {
		t.Fatalf("Flatten() error: %v", err)
	}
	want := [][3]int64{{10, 20, 1}, {20, 30, 2}}
	if g := triples(got); len(g) != len(want) {
		t.Fatalf("got %d rows, want %d", len(g), len(want))
	}
	for i, w := range want {
		if triples(got)[i] != w {
			t.Errorf("row %d = %v, want %v", i, triples(got)[i], w)
		}
	}
}

func TestFlattenDirectional_NonAdjacentRepeatKept(t *testing.T) {
	got, err := Flatten(outgoingTrace(10,
		trace.Edge{Source: 10, Dest: 20, Distance: 1},
		trace.Edge{Source: 20, Dest: 30, Distance: 2},
		trace.Edge{Source: 10, Dest: 20, Distance: 1},
	))
	if err != nil {
		t.Fatalf("Flatten() error: %v", err)
	}
	if got.Len() != 3 {
		t.Errorf("Len() = %d, want 3 (non-adjacent repeat must stay)", got.Len())
	}
}

func TestFlattenDirectional_OrderPreserved(t *testing.T) {
	edges := []trace.Edge{
		{Source: 10, Dest: 20, Distance: 1},
		{Source: 20, Dest: 40, Distance: 2},
		{Source: 10, Dest: 30, Distance: 1},
		{Source: 30, Dest: 40, Distance: 2},
	}
	got, err := Flatten(outgoingTrace(10, edges...))
	if err != nil {
		t.Fatalf("Flatten() error: %v", err)
	}
	for i, e := range edges {
		r := got[i]
		if r.Source != e.Source || r.Dest != e.Dest || r.Distance != e.Distance {
			t.Errorf("row %d = (%d,%d,%d), want (%d,%d,%d)",
				i, r.Source, r.Dest, r.Distance, e.Source, e.Dest, e.Distance)
		}
	}
}

func TestFlattenDirectional_UniformRowFields(t *testing.T) {
	d := ingoingTrace(7,
		trace.Edge{Source: 5, Dest: 7, Distance: 1},
		trace.Edge{Source: 3, Dest: 5, Distance: 2},
	)
	got, err := Flatten(d)
	if err != nil {
		t.Fatalf("Flatten() error: %v", err)
	}
	for i, r := range got {
		if r.Root != 7 {
			t.Errorf("row %d Root = %d, want 7", i, r.Root)
		}
		if r.Direction != trace.Ingoing {
			t.Errorf("row %d Direction = %q, want %q", i, r.Direction, trace.Ingoing)
		}
		if r.InBegin == nil || !r.InBegin.Equal(d.WindowBegin) {
			t.Errorf("row %d InBegin = %v, want %v", i, r.InBegin, d.WindowBegin)
		}
		if r.InEnd == nil || !r.InEnd.Equal(d.WindowEnd) {
			t.Errorf("row %d InEnd = %v, want %v", i, r.InEnd, d.WindowEnd)
		}
	}
}

func TestFlatten_WindowExclusivity(t *testing.T) {
	tests := []struct {
		name   string
		in     trace.Directional
		wantIn bool
	}{
		{"ingoing", ingoingTrace(10, trace.Edge{Source: 5, Dest: 10, Distance: 1}), true},
		{"outgoing", outgoingTrace(10, trace.Edge{Source: 10, Dest: 5, Distance: 1}), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Flatten(tt.in)
			if err != nil {
				t.Fatalf("Flatten() error: %v", err)
			}
			for i, r := range got {
				inSet := r.InBegin != nil && r.InEnd != nil
				outSet := r.OutBegin != nil && r.OutEnd != nil
				if inSet == outSet {
					t.Fatalf("row %d: exactly one window pair must be set (in=%v out=%v)", i, inSet, outSet)
				}
				if inSet != tt.wantIn {
					t.Errorf("row %d: ingoing window set = %v, want %v", i, inSet, tt.wantIn)
				}
			}
		})
	}
}

func TestFlattenDirectional_UnknownDirection(t *testing.T) {
	d := trace.Directional{
		Root:      10,
		Direction: "sideways",
		Edges:     []trace.Edge{{Source: 10, Dest: 20, Distance: 1}},
	}
	_, err := Flatten(d)
	if !errors.Is(err, ErrUnknownDirection) {
		t.Fatalf("Flatten() error = %v, want ErrUnknownDirection", err)
	}
}

func TestFlattenBidirectional_IngoingBeforeOutgoing(t *testing.T) {
	b := trace.Bidirectional{
		Root:     5,
		Ingoing:  ingoingTrace(5, trace.Edge{Source: 7, Dest: 5, Distance: 1}),
		Outgoing: outgoingTrace(5, trace.Edge{Source: 5, Dest: 9, Distance: 1}),
	}
	got, err := Flatten(b)
	if err != nil {
		t.Fatalf("Flatten() error: %v", err)
	}
	if got.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", got.Len())
	}
	if got[0].Direction != trace.Ingoing || got[1].Direction != trace.Outgoing {
		t.Errorf("directions = %q,%q, want in,out", got[0].Direction, got[1].Direction)
	}
}

func TestFlattenBidirectional_EmptySide(t *testing.T) {
	b := trace.Bidirectional{
		Root:     5,
		Ingoing:  ingoingTrace(5, trace.Edge{Source: 7, Dest: 5, Distance: 1}),
		Outgoing: outgoingTrace(5),
	}
	got, err := Flatten(b)
	if err != nil {
		t.Fatalf("Flatten() error: %v", err)
	}
	if got.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", got.Len())
	}
	r := got[0]
	if r.Direction != trace.Ingoing || r.Source != 7 || r.Dest != 5 || r.Distance != 1 {
		t.Errorf("row = %+v, want ingoing (7,5,1)", r)
	}
	if r.OutBegin != nil || r.OutEnd != nil {
		t.Errorf("outgoing window must be nil for ingoing row")
	}
}

func TestFlattenBidirectional_BothEmpty(t *testing.T) {
	b := trace.Bidirectional{Root: 5, Ingoing: ingoingTrace(5), Outgoing: outgoingTrace(5)}
	got, err := Flatten(b)
	if err != nil {
		t.Fatalf("Flatten() error: %v", err)
	}
	if got.Len() != 0 {
		t.Errorf("Len() = %d, want 0", got.Len())
	}
}

func single(b trace.Bidirectional) trace.Element {
	return trace.Element{Traces: []trace.Input{b}}
}

func TestFlattenCollection_OrderAcrossElements(t *testing.T) {
	coll := trace.Collection{
		single(trace.Bidirectional{
			Root:     1,
			Ingoing:  ingoingTrace(1, trace.Edge{Source: 2, Dest: 1, Distance: 1}),
			Outgoing: outgoingTrace(1),
		}),
		single(trace.Bidirectional{
			Root:     9,
			Ingoing:  ingoingTrace(9, trace.Edge{Source: 4, Dest: 9, Distance: 1}),
			Outgoing: outgoingTrace(9),
		}),
	}
	got, err := Flatten(coll)
	if err != nil {
		t.Fatalf("Flatten() error: %v", err)
	}
	if got.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", got.Len())
	}
	if got[0].Root != 1 || got[1].Root != 9 {
		t.Errorf("roots = %d,%d, want 1,9 (collection order)", got[0].Root, got[1].Root)
	}
}

func TestFlattenCollection_ManyElementsStayOrdered(t *testing.T) {
	// Large enough that concurrent flattening would scramble the output
	// if the concatenation did not enforce collection order.
	const n = 64
	coll := make(trace.Collection, n)
	for i := range coll {
		root := trace.HoldingID(i + 1)
		coll[i] = single(trace.Bidirectional{
			Root:     root,
			Ingoing:  ingoingTrace(root, trace.Edge{Source: 1000, Dest: root, Distance: 1}),
			Outgoing: outgoingTrace(root, trace.Edge{Source: root, Dest: 2000, Distance: 1}),
		})
	}
	got, err := Flatten(coll)
	if err != nil {
		t.Fatalf("Flatten() error: %v", err)
	}
	if got.Len() != 2*n {
		t.Fatalf("Len() = %d, want %d", got.Len(), 2*n)
	}
	for i := 0; i < n; i++ {
		want := trace.HoldingID(i + 1)
		if got[2*i].Root != want || got[2*i+1].Root != want {
			t.Fatalf("rows %d,%d have roots %d,%d, want %d", 2*i, 2*i+1, got[2*i].Root, got[2*i+1].Root, want)
		}
		if got[2*i].Direction != trace.Ingoing || got[2*i+1].Direction != trace.Outgoing {
			t.Fatalf("element %d: directions out of order", i)
		}
	}
}

func TestFlattenCollection_Empty(t *testing.T) {
	got, err := Flatten(trace.Collection{})
	if err != nil {
		t.Fatalf("Flatten() error: %v", err)
	}
	if got.Len() != 0 {
		t.Errorf("Len() = %d, want 0", got.Len())
	}
}

func TestFlattenCollection_ShapeViolation(t *testing.T) {
	b := trace.Bidirectional{Root: 1, Ingoing: ingoingTrace(1), Outgoing: outgoingTrace(1)}
	tests := []struct {
		name string
		elem trace.Element
		want error
	}{
		{"bundled traces", trace.Element{Traces: []trace.Input{b, b}}, ErrElementNotSingular},
		{"empty element", trace.Element{}, ErrElementNotSingular},
		{"directional element", trace.Element{Traces: []trace.Input{ingoingTrace(1)}}, ErrElementNotBidirectional},
		{"nested collection", trace.Element{Traces: []trace.Input{trace.Collection{}}}, ErrElementNotBidirectional},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			coll := trace.Collection{single(b), tt.elem}
			got, err := Flatten(coll)
			if !errors.Is(err, tt.want) {
				t.Fatalf("Flatten() error = %v, want %v", err, tt.want)
			}
			if got.Len() != 0 {
				t.Errorf("Len() = %d, want 0 (no partial results)", got.Len())
			}
			// The two violation classes must stay distinguishable.
			other := ErrElementNotBidirectional
			if tt.want == ErrElementNotBidirectional {
				other = ErrElementNotSingular
			}
			if errors.Is(err, other) {
				t.Errorf("error matches both violation classes")
			}
		})
	}
}

func TestFlattenCollection_LabeledElementInError(t *testing.T) {
	coll := trace.Collection{{Label: "herd-42", Traces: nil}}
	_, err := Flatten(coll)
	if err == nil {
		t.Fatal("Flatten() expected error")
	}
	if want := `element "herd-42"`; !strings.Contains(err.Error(), want) {
		t.Errorf("error %q does not mention %s", err, want)
	}
}

func TestFlatten_Deterministic(t *testing.T) {
	b := trace.Bidirectional{
		Root: 10,
		Ingoing: ingoingTrace(10,
			trace.Edge{Source: 5, Dest: 10, Distance: 1},
			trace.Edge{Source: 5, Dest: 10, Distance: 1},
			trace.Edge{Source: 2, Dest: 5, Distance: 2},
		),
		Outgoing: outgoingTrace(10, trace.Edge{Source: 10, Dest: 20, Distance: 1}),
	}
	first, err := Flatten(b)
	if err != nil {
		t.Fatalf("Flatten() error: %v", err)
	}
	for i := 0; i < 10; i++ {
		again, err := Flatten(b)
		if err != nil {
			t.Fatalf("Flatten() error: %v", err)
		}
		if again.Len() != first.Len() {
			t.Fatalf("run %d: Len() = %d, want %d", i, again.Len(), first.Len())
		}
		for j := range again {
			if again[j].Source != first[j].Source || again[j].Dest != first[j].Dest ||
				again[j].Distance != first[j].Distance || again[j].Direction != first[j].Direction {
				t.Fatalf("run %d row %d differs", i, j)
			}
		}
	}
}

func TestFlatten_InputNotMutated(t *testing.T) {
	edges := []trace.Edge{
		{Source: 10, Dest: 20, Distance: 1},
		{Source: 10, Dest: 20, Distance: 1},
		{Source: 20, Dest: 30, Distance: 2},
	}
	orig := make([]trace.Edge, len(edges))
	copy(orig, edges)

	if _, err := Flatten(outgoingTrace(10, edges...)); err != nil {
		t.Fatalf("Flatten() error: %v", err)
	}
	for i := range edges {
		if edges[i] != orig[i] {
			t.Errorf("input edge %d mutated: %+v, want %+v", i, edges[i], orig[i])
		}
	}
}

func TestDedupeAdjacent(t *testing.T) {
	e := func(s, d int64, dist int) trace.Edge {
		return trace.Edge{Source: trace.HoldingID(s), Dest: trace.HoldingID(d), Distance: dist}
	}

	tests := []struct {
		name string
		in   []trace.Edge
		want []trace.Edge
	}{
		{"empty", nil, nil},
		{"single", []trace.Edge{e(1, 2, 1)}, []trace.Edge{e(1, 2, 1)}},
		{"run collapses", []trace.Edge{e(1, 2, 1), e(1, 2, 1), e(1, 2, 1)}, []trace.Edge{e(1, 2, 1)}},
		{"distinct distance kept", []trace.Edge{e(1, 2, 1), e(1, 2, 2)}, []trace.Edge{e(1, 2, 1), e(1, 2, 2)}},
		{"non-adjacent kept", []trace.Edge{e(1, 2, 1), e(2, 3, 2), e(1, 2, 1)}, []trace.Edge{e(1, 2, 1), e(2, 3, 2), e(1, 2, 1)}},
		{"mixed", []trace.Edge{e(1, 2, 1), e(1, 2, 1), e(2, 3, 2), e(2, 3, 2), e(1, 2, 1)}, []trace.Edge{e(1, 2, 1), e(2, 3, 2), e(1, 2, 1)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := dedupeAdjacent(tt.in)
			if len(got) != len(tt.want) {
				t.Fatalf("dedupeAdjacent() kept %d edges, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("edge %d = %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestDedupeAdjacent_Idempotent(t *testing.T) {
	in := []trace.Edge{
		{Source: 1, Dest: 2, Distance: 1},
		{Source: 1, Dest: 2, Distance: 1},
		{Source: 2, Dest: 3, Distance: 2},
		{Source: 1, Dest: 2, Distance: 1},
	}
	once := dedupeAdjacent(in)
	twice := dedupeAdjacent(once)
	if len(once) != len(twice) {
		t.Fatalf("second pass changed length: %d -> %d", len(once), len(twice))
	}
	for i := range once {
		if once[i] != twice[i] {
			t.Errorf("edge %d changed on second pass", i)
		}
	}
}
