package io

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/matzehuels/burrow/pkg/burrow"
)

type resultDoc struct {
	Solved     bool      `json:"solved"`
	Cost       *int      `json:"cost,omitempty"`
	Explored   int       `json:"explored"`
	Pruned     int       `json:"pruned"`
	DurationMS int64     `json:"duration_ms"`
	Moves      []moveDoc `json:"moves,omitempty"`
}

type moveDoc struct {
	Kind   burrow.MoveKind `json:"kind"`
	Symbol string          `json:"symbol"`
	Cell   int             `json:"cell"`
	Room   int             `json:"room"`
	Slot   int             `json:"slot"`
	Steps  int             `json:"steps"`
	Cost   int             `json:"cost"`
}

// WriteResultJSON encodes a search result with each move's class written as
// its catalog symbol. The cost is omitted for an unsolved result.
func WriteResultJSON(res burrow.Result, c burrow.Catalog, w io.Writer) error {
	doc := resultDoc{
		Solved:     res.Solved,
		Explored:   res.Explored,
		Pruned:     res.Pruned,
		DurationMS: res.Duration.Milliseconds(),
	}
	if res.Solved {
		cost := res.Cost
		doc.Cost = &cost
	}
	for _, m := range res.Moves {
		doc.Moves = append(doc.Moves, moveDoc{
			Kind:   m.Kind,
			Symbol: string(c.Symbol(m.Class)),
			Cell:   m.Cell,
			Room:   m.Room,
			Slot:   m.Slot,
			Steps:  m.Steps,
			Cost:   m.Cost,
		})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}
