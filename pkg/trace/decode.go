package trace

import (
	"encoding/json"
	"fmt"
	"time"
)

// Wire kind tags for the input envelope.
const (
	KindDirectional   = "directional"
	KindBidirectional = "bidirectional"
	KindCollection    = "collection"
)

// envelope is the tagged wire form of an Input. The kind tag selects which
// of the remaining fields is populated.
type envelope struct {
	Kind     string        `json:"kind"`
	Trace    *wireTrace    `json:"trace,omitempty"`
	Elements []wireElement `json:"elements,omitempty"`
}

// wireTrace covers both directional and bidirectional payloads. For a
// directional trace the Direction/Window/Edges fields are set; for a
// bidirectional trace the Ingoing/Outgoing halves are set instead and
// their directions are implied.
type wireTrace struct {
	Root      int64     `json:"root"`
	Direction string    `json:"direction,omitempty"`
	Window    *wireSpan `json:"window,omitempty"`
	Edges     []Edge    `json:"edges,omitempty"`
	Ingoing   *wireHalf `json:"ingoing,omitempty"`
	Outgoing  *wireHalf `json:"outgoing,omitempty"`
}

type wireHalf struct {
	Window wireSpan `json:"window"`
	Edges  []Edge   `json:"edges"`
}

type wireSpan struct {
	Begin string `json:"begin"`
	End   string `json:"end"`
}

type wireElement struct {
	Label  string     `json:"label,omitempty"`
	Traces []envelope `json:"traces"`
}

// UnmarshalInput decodes a tagged JSON envelope into one of the three
// input shapes. Window dates use the [DateLayout] format.
func UnmarshalInput(data []byte) (Input, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return env.toInput()
}

func (env envelope) toInput() (Input, error) {
	switch env.Kind {
	case KindDirectional:
		if env.Trace == nil {
			return nil, fmt.Errorf("decode: missing trace for kind %q", env.Kind)
		}
		return env.Trace.toDirectional()
	case KindBidirectional:
		if env.Trace == nil {
			return nil, fmt.Errorf("decode: missing trace for kind %q", env.Kind)
		}
		return env.Trace.toBidirectional()
	case KindCollection:
		coll := make(Collection, len(env.Elements))
		for i, we := range env.Elements {
			el := Element{Label: we.Label, Traces: make([]Input, len(we.Traces))}
			for j, te := range we.Traces {
				in, err := te.toInput()
				if err != nil {
					return nil, fmt.Errorf("element %d: %w", i, err)
				}
				el.Traces[j] = in
			}
			coll[i] = el
		}
		return coll, nil
	case "":
		return nil, fmt.Errorf("decode: missing kind tag")
	default:
		return nil, fmt.Errorf("decode: unknown kind %q", env.Kind)
	}
}

func (w *wireTrace) toDirectional() (Directional, error) {
	dir, err := ParseDirection(w.Direction)
	if err != nil {
		return Directional{}, fmt.Errorf("decode: %w", err)
	}
	if w.Window == nil {
		return Directional{}, fmt.Errorf("decode: missing window")
	}
	begin, end, err := w.Window.parse()
	if err != nil {
		return Directional{}, err
	}
	return Directional{
		Root:        HoldingID(w.Root),
		Direction:   dir,
		WindowBegin: begin,
		WindowEnd:   end,
		Edges:       w.Edges,
	}, nil
}

func (w *wireTrace) toBidirectional() (Bidirectional, error) {
	if w.Ingoing == nil || w.Outgoing == nil {
		return Bidirectional{}, fmt.Errorf("decode: bidirectional trace needs both ingoing and outgoing halves")
	}
	in, err := w.Ingoing.toDirectional(HoldingID(w.Root), Ingoing)
	if err != nil {
		return Bidirectional{}, err
	}
	out, err := w.Outgoing.toDirectional(HoldingID(w.Root), Outgoing)
	if err != nil {
		return Bidirectional{}, err
	}
	return Bidirectional{Root: HoldingID(w.Root), Ingoing: in, Outgoing: out}, nil
}

func (h *wireHalf) toDirectional(root HoldingID, dir Direction) (Directional, error) {
	begin, end, err := h.Window.parse()
	if err != nil {
		return Directional{}, err
	}
	return Directional{
		Root:        root,
		Direction:   dir,
		WindowBegin: begin,
		WindowEnd:   end,
		Edges:       h.Edges,
	}, nil
}

func (s wireSpan) parse() (begin, end time.Time, err error) {
	begin, err = time.Parse(DateLayout, s.Begin)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("decode: window begin: %w", err)
	}
	end, err = time.Parse(DateLayout, s.End)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("decode: window end: %w", err)
	}
	return begin, end, nil
}
