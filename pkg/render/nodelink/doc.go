// Package nodelink renders dialogues as node-link diagrams.
//
// # Overview
//
// Each dialogue node becomes a filled box in the node's own color, with a
// black or white label picked for contrast. Connections become labelled
// arrows. A connection that has been interrupted is drawn through a small
// junction point, and each interruption leaves that point as a dashed arrow
// toward its target node. Layout runs left to right, the way options are
// placed on the editing canvas.
//
// # Usage
//
// Convert one character's dialogue to DOT, then render to SVG:
//
//	dot := nodelink.ToDOT(bo, nodelink.Options{Highlight: nodeID})
//	svg, err := nodelink.RenderSVG(dot)
//
// [StateToDOT] draws every character at once, one cluster per character.
//
// # Options
//
//   - Highlight: a node ID; the predecessor path back to its root is drawn
//     with heavy outlines and edges
//   - Detailed: label nodes with their full text and notes instead of the
//     short text
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering. PDF and PNG conversion requires librsvg (rsvg-convert).
package nodelink
