// Package render provides output format conversion for dialogue diagrams.
//
// The [nodelink] subpackage turns dialogues into Graphviz DOT and SVG. The
// [ToPDF] and [ToPNG] functions here convert any SVG to other formats using
// the external rsvg-convert tool (from librsvg).
//
//	svg, err := nodelink.RenderSVG(ctx, nodelink.ToDOT(bo, nodelink.Options{}))
//	pdf, err := render.ToPDF(svg)
//	png, err := render.ToPNG(svg, 2.0)  // 2x scale
//
// [nodelink]: github.com/matzehuels/dialogtree/pkg/render/nodelink
package render
