package graph

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/matzehuels/drawkit/pkg/model"
	"github.com/matzehuels/drawkit/pkg/style"
)

// =============================================================================
// Constants
// =============================================================================

// Visualization types.
const (
	VizTypeNodelink = "nodelink"
)

// Layout engines understood by the node-link renderer.
const (
	EngineDot   = "dot"
	EngineNeato = "neato"
)

// Node kinds, matching model.Kind names.
const (
	KindShape  = "shape"
	KindGroup  = "group"
	KindLayer  = "layer"
	KindOpaque = "opaque"
)

// =============================================================================
// Graph - Document Summary
// =============================================================================

// Graph is the node-link summary of a drawio document.
// Used for API responses, caching, and tooling that does not need the
// full lossless model.
type Graph struct {
	Meta  map[string]string `json:"meta,omitempty" bson:"meta,omitempty"` // mxfile attributes
	Pages []Page            `json:"pages" bson:"pages"`
}

// Page summarizes one diagram page.
type Page struct {
	ID         string         `json:"id" bson:"id"`
	Name       string         `json:"name,omitempty" bson:"name,omitempty"`
	Compressed bool           `json:"compressed,omitempty" bson:"compressed,omitempty"`
	Counts     map[string]int `json:"counts" bson:"counts"` // cells per kind
	Layers     []Layer        `json:"layers,omitempty" bson:"layers,omitempty"`
	Nodes      []Node         `json:"nodes" bson:"nodes"`
	Edges      []Edge         `json:"edges" bson:"edges"`
	Bounds     *Rect          `json:"bounds,omitempty" bson:"bounds,omitempty"`
}

// Layer is a named z-order band of a page.
type Layer struct {
	ID   string `json:"id" bson:"id"`
	Name string `json:"name,omitempty" bson:"name,omitempty"`
}

// Rect is an axis-aligned box in page coordinates.
type Rect struct {
	X      float64 `json:"x" bson:"x"`
	Y      float64 `json:"y" bson:"y"`
	Width  float64 `json:"width" bson:"width"`
	Height float64 `json:"height" bson:"height"`
}

// =============================================================================
// Node - Vertex
// =============================================================================

// Node is a shape, group or opaque element of a page.
type Node struct {
	ID     string   `json:"id" bson:"id"`
	Label  string   `json:"label,omitempty" bson:"label,omitempty"`
	Kind   string   `json:"kind" bson:"kind"`
	Parent string   `json:"parent,omitempty" bson:"parent,omitempty"`
	Layer  string   `json:"layer,omitempty" bson:"layer,omitempty"` // enclosing layer id
	Style  string   `json:"style,omitempty" bson:"style,omitempty"`
	Tags   []string `json:"tags,omitempty" bson:"tags,omitempty"`
	Bounds *Rect    `json:"bounds,omitempty" bson:"bounds,omitempty"`
	Tag    string   `json:"tag,omitempty" bson:"tag,omitempty"` // element name of opaque nodes
}

// IsGroup returns true if this node is a container.
func (n *Node) IsGroup() bool { return n.Kind == KindGroup }

// IsOpaque returns true if this node was carried through undecoded.
func (n *Node) IsOpaque() bool { return n.Kind == KindOpaque }

// DisplayLabel returns the label if set, otherwise the ID.
func (n *Node) DisplayLabel() string {
	if n.Label != "" {
		return n.Label
	}
	return n.ID
}

// =============================================================================
// Edge - Connector
// =============================================================================

// Edge is a connector. From and To are empty for unattached ends.
type Edge struct {
	ID     string `json:"id" bson:"id"`
	From   string `json:"from,omitempty" bson:"from,omitempty"`
	To     string `json:"to,omitempty" bson:"to,omitempty"`
	Label  string `json:"label,omitempty" bson:"label,omitempty"`
	Parent string `json:"parent,omitempty" bson:"parent,omitempty"`
	Style  string `json:"style,omitempty" bson:"style,omitempty"`
}

// Dangling reports whether either end is unattached.
func (e *Edge) Dangling() bool { return e.From == "" || e.To == "" }

// =============================================================================
// Document ↔ Graph Conversion
// =============================================================================

// FromDocument summarizes doc. Pages, nodes and edges keep document order,
// which is also drawing order.
func FromDocument(doc *model.Document) Graph {
	out := Graph{Pages: make([]Page, len(doc.Pages))}
	if len(doc.Attrs) > 0 {
		out.Meta = make(map[string]string, len(doc.Attrs))
		for _, a := range doc.Attrs {
			out.Meta[a.Name] = a.Value
		}
	}
	for i, p := range doc.Pages {
		out.Pages[i] = FromPage(p)
	}
	return out
}

// FromPage summarizes a single page.
func FromPage(p *model.Page) Page {
	g := p.Model
	out := Page{
		ID:         p.ID,
		Name:       p.Name,
		Compressed: p.Compressed,
		Counts:     make(map[string]int),
		Nodes:      []Node{},
		Edges:      []Edge{},
	}
	for kind, n := range g.CountByKind() {
		out.Counts[kind.String()] = n
	}
	for _, l := range g.Layers() {
		out.Layers = append(out.Layers, Layer{ID: l.ID, Name: l.Value})
	}

	layerOf := layerIndex(g)
	var bounds *Rect
	for _, c := range g.Cells() {
		switch c.Kind {
		case model.KindRoot, model.KindLayer:
			continue
		case model.KindEdge:
			out.Edges = append(out.Edges, Edge{
				ID:     c.ID,
				From:   c.Source,
				To:     c.Target,
				Label:  c.Value,
				Parent: c.Parent,
				Style:  c.Style.String(),
			})
			continue
		}

		n := Node{
			ID:     c.ID,
			Label:  c.Value,
			Kind:   c.Kind.String(),
			Parent: c.Parent,
			Layer:  layerOf[c.ID],
			Style:  c.Style.String(),
			Tags:   c.Tags,
		}
		if c.Opaque != nil {
			n.Tag = c.Opaque.Tag
		}
		if c.Geometry != nil && !c.Geometry.Relative {
			r := Rect{X: c.Geometry.X, Y: c.Geometry.Y, Width: c.Geometry.Width, Height: c.Geometry.Height}
			n.Bounds = &r
			// Children of groups are positioned relative to the group, so
			// only top-level vertices contribute to the page bounds.
			if n.Parent == n.Layer {
				bounds = union(bounds, r)
			}
		}
		out.Nodes = append(out.Nodes, n)
	}
	out.Bounds = bounds
	return out
}

// ToDocument builds a document from a summary. Cells get the ids, kinds,
// styles and bounds recorded in g; everything the summary does not carry
// (wrapper attributes, opaque content, waypoints) is lost. Opaque nodes
// cannot be rebuilt and are skipped.
func ToDocument(g Graph) (*model.Document, error) {
	doc := model.NewDocument()
	for _, pj := range g.Pages {
		p := &model.Page{ID: pj.ID, Name: pj.Name, Compressed: pj.Compressed, Config: model.DefaultPageConfig()}
		gm := &model.GraphModel{}
		if err := gm.AddCell(&model.Cell{ID: model.RootID, Kind: model.KindRoot}); err != nil {
			return nil, fmt.Errorf("page %s: %w", pj.ID, err)
		}

		layers := pj.Layers
		if len(layers) == 0 {
			layers = []Layer{{ID: model.DefaultLayerID}}
		}
		for _, l := range layers {
			if err := gm.AddCell(&model.Cell{ID: l.ID, Parent: model.RootID, Kind: model.KindLayer, Value: l.Name}); err != nil {
				return nil, fmt.Errorf("page %s layer %s: %w", pj.ID, l.ID, err)
			}
		}

		cells := make([]*model.Cell, 0, len(pj.Nodes)+len(pj.Edges))
		for _, nj := range pj.Nodes {
			if nj.IsOpaque() {
				continue
			}
			c := &model.Cell{
				ID:     nj.ID,
				Parent: nj.Parent,
				Kind:   model.KindShape,
				Value:  nj.Label,
				Style:  style.Decode(nj.Style),
				Tags:   nj.Tags,
			}
			if nj.IsGroup() {
				c.Kind = model.KindGroup
			}
			c.Geometry = &model.Geometry{}
			if nj.Bounds != nil {
				c.Geometry = &model.Geometry{X: nj.Bounds.X, Y: nj.Bounds.Y, Width: nj.Bounds.Width, Height: nj.Bounds.Height}
			}
			cells = append(cells, c)
		}
		for _, ej := range pj.Edges {
			cells = append(cells, &model.Cell{
				ID:       ej.ID,
				Parent:   ej.Parent,
				Kind:     model.KindEdge,
				Value:    ej.Label,
				Style:    style.Decode(ej.Style),
				Source:   ej.From,
				Target:   ej.To,
				Geometry: &model.Geometry{Relative: true},
			})
		}
		// Parents may follow their children in the summary, so insert first
		// and validate the finished page.
		for _, c := range cells {
			if err := gm.Insert(c); err != nil {
				return nil, fmt.Errorf("page %s: %w", pj.ID, err)
			}
		}
		p.Model = gm
		if err := p.Validate(); err != nil {
			return nil, err
		}
		if err := doc.AddPage(p); err != nil {
			return nil, err
		}
	}
	return doc, nil
}

// UnmarshalGraph deserializes JSON bytes to a Graph.
func UnmarshalGraph(data []byte) (Graph, error) {
	var g Graph
	if err := json.Unmarshal(data, &g); err != nil {
		return Graph{}, err
	}
	return g, nil
}

// =============================================================================
// Internal Helpers
// =============================================================================

// layerIndex maps every cell id to the id of the layer above it. Cells that
// are not under any layer map to "".
func layerIndex(g *model.GraphModel) map[string]string {
	byID := make(map[string]*model.Cell, g.Len())
	for _, c := range g.Cells() {
		byID[c.ID] = c
	}
	out := make(map[string]string, len(byID))
	for id, c := range byID {
		cur := c
		for steps := 0; cur != nil && steps <= len(byID); steps++ {
			if cur.Kind == model.KindLayer {
				if cur.ID != id {
					out[id] = cur.ID
				}
				break
			}
			cur = byID[cur.Parent]
		}
	}
	return out
}

func union(acc *Rect, r Rect) *Rect {
	if acc == nil {
		return &r
	}
	x0 := math.Min(acc.X, r.X)
	y0 := math.Min(acc.Y, r.Y)
	x1 := math.Max(acc.X+acc.Width, r.X+r.Width)
	y1 := math.Max(acc.Y+acc.Height, r.Y+r.Height)
	return &Rect{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}
}
