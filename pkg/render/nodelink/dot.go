package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/drawkit/pkg/errors"
	"github.com/matzehuels/drawkit/pkg/graph"
	"github.com/matzehuels/drawkit/pkg/model"
	"github.com/matzehuels/drawkit/pkg/render"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed adds the cell id and base style under each label.
	Detailed bool

	// Positioned pins nodes to their drawio coordinates. Use it with the
	// neato engine; dot ignores fixed positions.
	Positioned bool

	// Colors copies fillColor and strokeColor from cell styles.
	Colors bool
}

// pointsPerInch converts drawio pixels to Graphviz inches.
const pointsPerInch = 72.0

// ToDOT converts a page to Graphviz DOT format.
// The resulting DOT string can be rendered using [RenderSVG], [RenderPDF], or [RenderPNG].
//
// Groups become clusters, shapes become nodes and edges become arrows.
// Unattached edge ends are drawn as small points. Opaque cells are skipped.
func ToDOT(p *model.Page, opts Options) string {
	g := p.Model
	children := make(map[string][]*model.Cell)
	for _, c := range g.Cells() {
		children[c.Parent] = append(children[c.Parent], c)
	}

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	fmt.Fprintf(&buf, "  label=%q;\n", p.Name)
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	for _, layer := range g.Layers() {
		writeVertices(&buf, children, layer.ID, opts, "  ", model.Point{})
	}

	buf.WriteString("\n")
	for _, c := range g.Filter(func(c *model.Cell) bool { return c.IsEdge() }) {
		writeEdge(&buf, c)
	}

	buf.WriteString("}\n")
	return buf.String()
}

// writeVertices emits the vertices under parent. origin is the absolute
// position of parent, since drawio stores child coordinates relative to
// their group.
func writeVertices(buf *bytes.Buffer, children map[string][]*model.Cell, parent string, opts Options, indent string, origin model.Point) {
	for _, c := range children[parent] {
		switch c.Kind {
		case model.KindGroup:
			fmt.Fprintf(buf, "%ssubgraph %q {\n", indent, "cluster_"+c.ID)
			fmt.Fprintf(buf, "%s  label=%q;\n", indent, plainLabel(c.Value))
			fmt.Fprintf(buf, "%s  style=\"rounded,dashed\";\n", indent)
			writeVertices(buf, children, c.ID, opts, indent+"  ", offset(origin, c.Geometry))
			fmt.Fprintf(buf, "%s}\n", indent)
		case model.KindShape:
			fmt.Fprintf(buf, "%s%q [%s];\n", indent, c.ID, strings.Join(fmtAttrs(c, opts, origin), ", "))
			// Cells nested in a shape keep its position as their origin.
			writeVertices(buf, children, c.ID, opts, indent, offset(origin, c.Geometry))
		}
	}
}

func writeEdge(buf *bytes.Buffer, c *model.Cell) {
	src, tgt := c.Source, c.Target
	if src == "" {
		src = "__src_" + c.ID
		fmt.Fprintf(buf, "  %q [shape=point, label=\"\"];\n", src)
	}
	if tgt == "" {
		tgt = "__tgt_" + c.ID
		fmt.Fprintf(buf, "  %q [shape=point, label=\"\"];\n", tgt)
	}
	if label := plainLabel(c.Value); label != "" {
		fmt.Fprintf(buf, "  %q -> %q [label=%q];\n", src, tgt, label)
		return
	}
	fmt.Fprintf(buf, "  %q -> %q;\n", src, tgt)
}

func fmtLabel(c *model.Cell, detailed bool) string {
	label := plainLabel(c.Value)
	if label == "" {
		label = c.ID
	}
	if !detailed {
		return label
	}
	parts := []string{"id: " + c.ID}
	if base := c.Style.BaseName(); base != "" {
		parts = append(parts, "style: "+base)
	}
	if len(c.Tags) > 0 {
		parts = append(parts, "tags: "+strings.Join(c.Tags, " "))
	}
	return label + "\n" + strings.Join(parts, "\n")
}

func fmtAttrs(c *model.Cell, opts Options, origin model.Point) []string {
	attrs := []string{fmt.Sprintf("label=%q", fmtLabel(c, opts.Detailed))}
	base := c.Style.BaseName()
	if base == "" {
		base = c.Style.Value("shape")
	}
	if shape := dotShape(base); shape != "" {
		attrs = append(attrs, "shape="+shape)
	}
	if opts.Colors {
		if fill := c.Style.Value("fillColor"); isColor(fill) {
			attrs = append(attrs, fmt.Sprintf("fillcolor=%q", fill))
		}
		if stroke := c.Style.Value("strokeColor"); isColor(stroke) {
			attrs = append(attrs, fmt.Sprintf("color=%q", stroke))
		}
	}
	if opts.Positioned && c.Geometry != nil {
		geo := c.Geometry
		cx := (origin.X + geo.X + geo.Width/2) / pointsPerInch
		cy := -(origin.Y + geo.Y + geo.Height/2) / pointsPerInch // Graphviz y grows upwards
		attrs = append(attrs,
			fmt.Sprintf("pos=\"%s,%s!\"", fmtFloat(cx), fmtFloat(cy)),
			"width="+fmtFloat(geo.Width/pointsPerInch),
			"height="+fmtFloat(geo.Height/pointsPerInch),
			"fixedsize=true",
		)
	}
	return attrs
}

// dotShape maps drawio base style or shape names to Graphviz shapes.
func dotShape(base string) string {
	switch base {
	case "ellipse":
		return "ellipse"
	case "rhombus":
		return "diamond"
	case "triangle":
		return "triangle"
	case "hexagon":
		return "hexagon"
	case "text":
		return "plaintext"
	case "cylinder", "cylinder3":
		return "cylinder"
	}
	return ""
}

var (
	tagRe   = regexp.MustCompile(`<[^>]*>`)
	breakRe = regexp.MustCompile(`(?i)<br\s*/?>|</div>|</p>`)
	colorRe = regexp.MustCompile(`^#[0-9a-fA-F]{3}([0-9a-fA-F]{3})?$`)
)

// plainLabel strips the HTML markup drawio stores in html=1 labels.
func plainLabel(v string) string {
	v = breakRe.ReplaceAllString(v, "\n")
	v = tagRe.ReplaceAllString(v, "")
	return strings.TrimSpace(html.UnescapeString(v))
}

func isColor(v string) bool { return colorRe.MatchString(v) }

func offset(p model.Point, g *model.Geometry) model.Point {
	if g == nil || g.Relative {
		return p
	}
	return model.Point{X: p.X + g.X, Y: p.Y + g.Y}
}

func fmtFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', 3, 64)
}

// Layout builds the serialized node-link layout of a page, including its
// DOT source. SVG is left empty; see [RenderLayout].
func Layout(p *model.Page, opts Options, engine string) graph.Layout {
	summary := graph.FromPage(p)
	l := graph.Layout{
		VizType: graph.VizTypeNodelink,
		PageID:  p.ID,
		Nodes:   summary.Nodes,
		Edges:   summary.Edges,
		DOT:     ToDOT(p, opts),
		Engine:  engine,
	}
	if summary.Bounds != nil {
		l.Width, l.Height = summary.Bounds.Width, summary.Bounds.Height
	}
	return l
}

// RenderLayout lays out l.DOT with l.Engine and stores the SVG in l.
func RenderLayout(ctx context.Context, l *graph.Layout) error {
	svg, err := RenderSVG(ctx, l.DOT, l.Engine)
	if err != nil {
		return err
	}
	l.SVG = svg
	return nil
}

// RenderSVG renders a DOT graph to SVG using Graphviz. An empty engine
// means "dot".
// Returns the SVG bytes ready for display or further conversion with [render.ToPDF] or [render.ToPNG].
func RenderSVG(ctx context.Context, dot, engine string) ([]byte, error) {
	layout, err := layoutEngine(engine)
	if err != nil {
		return nil, err
	}

	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "init graphviz")
	}
	defer gv.Close()
	gv.SetLayout(layout)

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse DOT")
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "render")
	}
	return normalizeViewBox(buf.Bytes()), nil
}

func layoutEngine(engine string) (graphviz.Layout, error) {
	switch engine {
	case "", graph.EngineDot:
		return graphviz.DOT, nil
	case graph.EngineNeato:
		return graphviz.NEATO, nil
	}
	return "", errors.New(errors.ErrCodeUnsupported, "unsupported layout engine %q", engine)
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="(-?[0-9.]+)\s+(-?[0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
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
// This is a convenience wrapper around [RenderSVG] and [render.ToPDF].
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPDF(ctx context.Context, dot, engine string) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot, engine)
	if err != nil {
		return nil, err
	}
	return render.ToPDF(ctx, svg)
}

// RenderPNG renders a DOT graph as PNG via SVG conversion.
// This is a convenience wrapper around [RenderSVG] and [render.ToPNG].
//
// A scale of 2.0 produces a 2x resolution image suitable for high-DPI displays.
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPNG(ctx context.Context, dot, engine string, scale float64) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot, engine)
	if err != nil {
		return nil, err
	}
	return render.ToPNG(ctx, svg, scale)
}
