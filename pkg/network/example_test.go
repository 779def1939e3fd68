package network_test

import (
	"fmt"
	"time"

	"github.com/epitools/tracetab/pkg/network"
	"github.com/epitools/tracetab/pkg/trace"
)

func ExampleFlatten() {
	// An outgoing trace from holding 10 with a duplicate contact: two animals
	// moved 10 → 20 produce two identical traced edges, adjacent by construction.
	d := trace.Directional{
		Root:        10,
		Direction:   trace.Outgoing,
		WindowBegin: time.Date(2005, time.August, 1, 0, 0, 0, 0, time.UTC),
		WindowEnd:   time.Date(2005, time.October, 31, 0, 0, 0, 0, time.UTC),
		Edges: []trace.Edge{
			{Source: 10, Dest: 20, Distance: 1},
			{Source: 10, Dest: 20, Distance: 1}, // adjacent duplicate - dropped
			{Source: 20, Dest: 30, Distance: 2},
		},
	}

	table, err := network.Flatten(d)
	if err != nil {
		panic(err)
	}

	for _, r := range table {
		fmt.Printf("%d -> %d (distance %d)\n", r.Source, r.Dest, r.Distance)
	}
	// Output:
	// 10 -> 20 (distance 1)
	// 20 -> 30 (distance 2)
}

func ExampleFlatten_collection() {
	window := func(root trace.HoldingID, dir trace.Direction, edges ...trace.Edge) trace.Directional {
		return trace.Directional{
			Root:        root,
			Direction:   dir,
			WindowBegin: time.Date(2005, time.August, 1, 0, 0, 0, 0, time.UTC),
			WindowEnd:   time.Date(2005, time.October, 31, 0, 0, 0, 0, time.UTC),
			Edges:       edges,
		}
	}

	coll := trace.Collection{
		{Label: "herd-1", Traces: []trace.Input{trace.Bidirectional{
			Root:     1,
			Ingoing:  window(1, trace.Ingoing, trace.Edge{Source: 2, Dest: 1, Distance: 1}),
			Outgoing: window(1, trace.Outgoing),
		}}},
		{Label: "herd-9", Traces: []trace.Input{trace.Bidirectional{
			Root:     9,
			Ingoing:  window(9, trace.Ingoing, trace.Edge{Source: 4, Dest: 9, Distance: 1}),
			Outgoing: window(9, trace.Outgoing),
		}}},
	}

	table, err := network.Flatten(coll)
	if err != nil {
		panic(err)
	}

	fmt.Println("rows:", table.Len())
	for _, r := range table {
		fmt.Printf("root %d: %d -> %d\n", r.Root, r.Source, r.Dest)
	}
	// Output:
	// rows: 2
	// root 1: 2 -> 1
	// root 9: 4 -> 9
}
