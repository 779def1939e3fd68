// Package io provides import of traced-contact files and export of flattened
// network tables.
//
// # Import
//
// Trace input files use a tagged JSON envelope so one file format covers all
// three input shapes:
//
//	{
//	  "kind": "directional",
//	  "trace": {
//	    "root": 10,
//	    "direction": "out",
//	    "window": {"begin": "2005-08-01", "end": "2005-10-31"},
//	    "edges": [{"source": 10, "dest": 20, "distance": 1}]
//	  }
//	}
//
// Bidirectional traces carry "ingoing" and "outgoing" halves instead of a
// direction; collections carry an "elements" array of labeled trace bundles.
// Use [ImportJSON] to read from a file path or [ReadJSON] for any io.Reader.
//
// # Export
//
// Flattened tables export as JSON ([WriteJSON], [ExportJSON]) or CSV
// ([WriteCSV], [ExportCSV]). Both formats use the fixed column order
// root, inBegin, inEnd, outBegin, outEnd, direction, source, dest, distance.
// The window columns of the inactive direction encode as null (JSON) or an
// empty field (CSV), matching how the downstream reporting layer renders
// the table.
//
// # Concurrency
//
// All functions are safe to call concurrently on distinct inputs. Tables are
// read-only during export.
package io
