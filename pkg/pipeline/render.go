package pipeline

import (
	"bytes"
	"context"
	"fmt"

	"github.com/matzehuels/burrow/pkg/burrow"
	"github.com/matzehuels/burrow/pkg/cache"
	burrowio "github.com/matzehuels/burrow/pkg/io"
	"github.com/matzehuels/burrow/pkg/render"
)

// Render generates output artifacts in the requested formats from a solved
// (or unsolvable) result.
func Render(ctx context.Context, res *Result, opts Options) (map[string][]byte, error) {
	artifacts := make(map[string][]byte, len(opts.Formats))
	var dot string

	for _, format := range opts.Formats {
		var data []byte
		var err error

		switch format {
		case FormatText:
			data = []byte(render.Table(res.Search.Moves, res.Catalog) + "\n")
		case FormatJSON:
			var buf bytes.Buffer
			err = burrowio.WriteResultJSON(res.Search, res.Catalog, &buf)
			data = buf.Bytes()
		case FormatDOT, FormatSVG:
			if dot == "" {
				dot, err = render.ToDOT(res.Initial, res.Search.Moves, res.Catalog, render.Options{Compact: opts.Compact})
				if err != nil {
					break
				}
			}
			if format == FormatDOT {
				data = []byte(dot)
			} else {
				data, err = render.RenderSVG(ctx, dot)
			}
		default:
			return nil, fmt.Errorf("unsupported format: %s", format)
		}

		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}

	return artifacts, nil
}

// solutionHash identifies a result for artifact caching. Artifacts print
// symbols, costs and search counters, so all of them are part of the hash
// along with the layout and the moves.
func solutionHash(layoutHash, catalogHash string, res burrow.Result, compact bool) string {
	var buf bytes.Buffer
	buf.WriteString(layoutHash)
	buf.WriteString("|" + catalogHash)
	fmt.Fprintf(&buf, "|%t:%d:%d:%d", res.Solved, res.Cost, res.Explored, res.Pruned)
	for _, m := range res.Moves {
		fmt.Fprintf(&buf, "|%d:%d:%d:%d:%d:%d:%d", m.Kind, m.Class, m.Cell, m.Room, m.Slot, m.Steps, m.Cost)
	}
	if compact {
		buf.WriteString("|compact")
	}
	return cache.Hash(buf.Bytes())
}
