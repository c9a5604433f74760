// Package nodelink renders drawio pages as Graphviz node-link diagrams.
//
// # Overview
//
// This package turns a page's cell graph into DOT source and lays it out
// with Graphviz. Shapes become nodes, groups become clusters and edges
// become arrows. It is used for previews and for checking connectivity at
// a glance; it does not try to reproduce drawio's own rendering.
//
// # Usage
//
// Convert a page to DOT format, then render to SVG:
//
//	dot := nodelink.ToDOT(page, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot, graph.EngineDot)
//
// For PDF or PNG output, use the render functions:
//
//	pdf, err := nodelink.RenderPDF(ctx, dot, "")
//	png, err := nodelink.RenderPNG(ctx, dot, "", 2.0)  // 2x scale
//
// # Options
//
// The [Options] struct controls diagram generation:
//
//   - Detailed: node labels include the cell id, base style and tags
//   - Positioned: nodes are pinned to their drawio coordinates (neato only)
//   - Colors: fill and stroke colors are copied from cell styles
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering. PDF and PNG conversion requires librsvg (rsvg-convert).
package nodelink
