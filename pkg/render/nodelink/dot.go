package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/dialogtree/pkg/dialogue"
	"github.com/matzehuels/dialogtree/pkg/render"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Highlight is a node ID whose path back to the root is emphasised.
	Highlight string

	// Detailed labels nodes with full text and notes.
	// When false, only the short text is shown.
	Detailed bool
}

const highlightColor = "#e67e22"

// ToDOT converts one character's dialogue to Graphviz DOT format.
// The resulting DOT string can be rendered using [RenderSVG], [RenderPDF], or [RenderPNG].
//
// Connections and interruptions whose references no longer resolve are
// left out.
func ToDOT(c *dialogue.Character, opts Options) string {
	var buf bytes.Buffer
	writeHeader(&buf)
	if c != nil {
		writeDialogue(&buf, "  ", c.ID, c.Dialogue, opts)
	}
	buf.WriteString("}\n")
	return buf.String()
}

// StateToDOT draws every character in s as its own cluster, labelled with
// the character's icon and name. Highlight applies to whichever character
// owns the node.
func StateToDOT(s dialogue.State, opts Options) string {
	var buf bytes.Buffer
	writeHeader(&buf)
	for _, id := range s.IDs() {
		c := s[id]
		fmt.Fprintf(&buf, "  subgraph %q {\n", "cluster_"+id)
		fmt.Fprintf(&buf, "    label=%q;\n", strings.TrimSpace(c.Icon+" "+c.Name))
		fmt.Fprintf(&buf, "    style=\"rounded,filled\";\n    fillcolor=%q;\n    fontcolor=%q;\n",
			c.Color, ContrastColor(c.Color))
		writeDialogue(&buf, "    ", id, c.Dialogue, opts)
		buf.WriteString("  }\n")
	}
	buf.WriteString("}\n")
	return buf.String()
}

func writeHeader(buf *bytes.Buffer) {
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  edge [fontsize=11];\n")
	buf.WriteString("  ranksep=0.6;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")
}

func writeDialogue(buf *bytes.Buffer, indent, owner string, d *dialogue.Dialogue, opts Options) {
	if d == nil {
		return
	}

	onPath := map[string]bool{}
	pathEdge := map[[2]string]bool{}
	if d.Node(opts.Highlight) != nil {
		path := dialogue.ReconstructPath(d, opts.Highlight)
		for i, id := range path {
			onPath[id] = true
			if i+1 < len(path) {
				pathEdge[[2]string{path[i+1], id}] = true
			}
		}
	}

	for _, id := range d.NodeIDs() {
		n := d.Nodes[id]
		attrs := []string{
			fmt.Sprintf("label=%q", nodeLabel(n, opts.Detailed)),
			fmt.Sprintf("fillcolor=%q", n.Color),
			fmt.Sprintf("fontcolor=%q", ContrastColor(n.Color)),
		}
		if onPath[id] {
			attrs = append(attrs, fmt.Sprintf("color=%q", highlightColor), "penwidth=3")
		}
		fmt.Fprintf(buf, "%s%q [%s];\n", indent, id, strings.Join(attrs, ", "))
	}

	// Connections that carry an interruption are split at a junction point.
	junction := map[int]string{}
	for _, in := range d.Interruptions {
		i := d.AnchorIndex(in)
		if i < 0 || !d.Live(d.Connections[i]) || d.Node(in.To) == nil {
			continue
		}
		if _, ok := junction[i]; !ok {
			junction[i] = fmt.Sprintf("%s_mid_%d", owner, i)
		}
	}

	buf.WriteString("\n")
	for i, c := range d.Connections {
		if !d.Live(c) {
			continue
		}
		attrs := []string{fmt.Sprintf("label=%q", c.Text)}
		if pathEdge[[2]string{c.From, c.To}] {
			attrs = append(attrs, fmt.Sprintf("color=%q", highlightColor), "penwidth=3")
		}
		mid, split := junction[i]
		if !split {
			fmt.Fprintf(buf, "%s%q -> %q [%s];\n", indent, c.From, c.To, strings.Join(attrs, ", "))
			continue
		}
		fmt.Fprintf(buf, "%s%q [shape=point, width=0.08, label=\"\"];\n", indent, mid)
		fmt.Fprintf(buf, "%s%q -> %q [%s, arrowhead=none];\n", indent, c.From, mid, strings.Join(attrs, ", "))
		attrs[0] = `label=""`
		fmt.Fprintf(buf, "%s%q -> %q [%s];\n", indent, mid, c.To, strings.Join(attrs, ", "))
	}

	for _, in := range d.Interruptions {
		i := d.AnchorIndex(in)
		mid, ok := junction[i]
		if i < 0 || !ok || d.Node(in.To) == nil {
			continue
		}
		fmt.Fprintf(buf, "%s%q -> %q [style=dashed, constraint=false];\n", indent, mid, in.To)
	}
}

func nodeLabel(n *dialogue.Node, detailed bool) string {
	if !detailed {
		return n.Text
	}
	if n.Notes == "" {
		return n.FullText
	}
	return n.FullText + "\n\n" + n.Notes
}

// ContrastColor returns "#000000" or "#ffffff", whichever reads better on
// the background hex color. Colors that do not parse get black text.
func ContrastColor(hex string) string {
	r, g, b, ok := parseHex(hex)
	if !ok {
		return "#000000"
	}
	// ITU-R BT.601 luma.
	if 0.299*float64(r)+0.587*float64(g)+0.114*float64(b) >= 128 {
		return "#000000"
	}
	return "#ffffff"
}

func parseHex(hex string) (r, g, b uint8, ok bool) {
	s := strings.TrimPrefix(strings.TrimSpace(hex), "#")
	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	if len(s) != 6 {
		return 0, 0, 0, false
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, 0, 0, false
	}
	return uint8(v >> 16), uint8(v >> 8), uint8(v), true
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
// Returns the SVG bytes ready for display or further conversion with [render.ToPDF] or [render.ToPNG].
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

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}

// RenderPDF renders a DOT graph as PDF via SVG conversion.
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPDF(ctx context.Context, dot string) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPDF(svg)
}

// RenderPNG renders a DOT graph as PNG via SVG conversion.
// A scale of 2.0 produces a 2x resolution image suitable for high-DPI displays.
func RenderPNG(ctx context.Context, dot string, scale float64) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPNG(svg, scale)
}
