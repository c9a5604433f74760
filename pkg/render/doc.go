// Package render provides output format conversion for rendered pages.
//
// # Overview
//
// Rendering in drawkit is a preview aid: the [nodelink] subpackage lays out a
// page with Graphviz and produces SVG. This package converts that SVG to
// other formats using the external rsvg-convert tool (from librsvg).
//
//	svg, err := nodelink.RenderSVG(ctx, dot, "")
//	pdf, err := render.ToPDF(ctx, svg)
//	png, err := render.ToPNG(ctx, svg, 2.0)  // 2x scale
//
// [nodelink]: github.com/matzehuels/drawkit/pkg/render/nodelink
package render
