package render

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/burrow/pkg/burrow"
	"github.com/matzehuels/burrow/pkg/diagram"
)

// Options configures solution graph rendering.
type Options struct {
	// Compact drops the diagrams from node labels and shows only the step
	// number and accumulated energy.
	Compact bool
}

// ToDOT converts the states visited by replaying moves from initial into
// Graphviz DOT source. The first node is drawn bold, the final one filled.
// An error is returned if a move cannot be applied.
func ToDOT(initial burrow.State, moves []burrow.Move, c burrow.Catalog, opts Options) (string, error) {
	frames, err := burrow.Replay(initial, moves)
	if err != nil {
		return "", fmt.Errorf("replay: %w", err)
	}

	var buf bytes.Buffer
	buf.WriteString("digraph solution {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontname=\"Courier\", fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  edge [fontname=\"Helvetica\", fontsize=12];\n")
	buf.WriteString("  ranksep=0.4;\n")
	buf.WriteString("\n")

	last := len(frames) - 1
	for i, st := range frames {
		attrs := []string{"label=" + nodeLabel(i, st, c, opts.Compact)}
		switch {
		case i == last && st.IsTerminal():
			attrs = append(attrs, "fillcolor=honeydew")
		case i == 0:
			attrs = append(attrs, "penwidth=2")
		}
		fmt.Fprintf(&buf, "  s%d [%s];\n", i, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for i, m := range moves {
		label := fmt.Sprintf("%s\n%d energy", m.Describe(c), m.Cost)
		fmt.Fprintf(&buf, "  s%d -> s%d [label=%q];\n", i, i+1, label)
	}

	buf.WriteString("}\n")
	return buf.String(), nil
}

// nodeLabel returns a quoted DOT label. Diagram lines end in \l so the
// monospace rows stay left-aligned.
func nodeLabel(step int, st burrow.State, c burrow.Catalog, compact bool) string {
	title := "start"
	if step > 0 {
		title = fmt.Sprintf("step %d", step)
	}
	title = fmt.Sprintf("%s · %d energy", title, st.Cost)
	if compact {
		return strconv.Quote(title)
	}

	var b strings.Builder
	b.WriteByte('"')
	b.WriteString(escape(title))
	b.WriteString(`\l\l`)
	for _, line := range strings.Split(strings.TrimRight(diagram.FormatState(st, c), "\n"), "\n") {
		b.WriteString(escape(line))
		b.WriteString(`\l`)
	}
	b.WriteByte('"')
	return b.String()
}

func escape(s string) string {
	return strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(s)
}

// RenderSVG lays out DOT source with Graphviz and returns SVG bytes.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's point-based svg header with one whose
// width and height match the viewBox, so the image scales in browsers.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	header := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(header))
}
