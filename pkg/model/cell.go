package model

import (
	"slices"

	"github.com/matzehuels/drawkit/pkg/style"
)

// Kind is the variant of a cell. The set is closed: every decoded element
// maps to exactly one kind, and elements drawkit does not understand become
// [KindOpaque] rather than being guessed at.
type Kind int

const (
	// KindOpaque is an element preserved verbatim without interpretation.
	KindOpaque Kind = iota
	// KindRoot is the sentinel root cell. It has no parent and is never drawn.
	KindRoot
	// KindLayer is a container whose parent is the root.
	KindLayer
	// KindShape is a vertex.
	KindShape
	// KindGroup is a vertex styled as a group of other vertices.
	KindGroup
	// KindEdge is a connector between two vertices or two points.
	KindEdge
)

var kindNames = [...]string{
	KindOpaque: "opaque",
	KindRoot:   "root",
	KindLayer:  "layer",
	KindShape:  "shape",
	KindGroup:  "group",
	KindEdge:   "edge",
}

// String returns the lower-case name of the kind.
func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// IsVertex reports whether cells of this kind are written with vertex="1".
func (k Kind) IsVertex() bool { return k == KindShape || k == KindGroup }

// RequiresGeometry reports whether cells of this kind must carry geometry.
func (k Kind) RequiresGeometry() bool { return k.IsVertex() }

// GroupStyle is the bare style token drawio uses to mark a group vertex.
const GroupStyle = "group"

// IsGroupStyle reports whether st marks a vertex as a group.
func IsGroupStyle(st *style.Style) bool {
	v, ok := st.Get(GroupStyle)
	return ok && v.Flag
}

// Point is an absolute coordinate.
type Point struct {
	X, Y float64
}

// Geometry positions a cell.
//
// Vertices use X, Y, Width and Height. Edge geometry is relative and may
// instead carry explicit endpoints and waypoints, used when an end is not
// attached to a cell or to override automatic routing.
type Geometry struct {
	X, Y          float64
	Width, Height float64
	Relative      bool

	SourcePoint *Point
	TargetPoint *Point
	Offset      *Point
	// Points are intermediate waypoints. A non-nil empty slice is written as
	// an empty points array; nil writes nothing.
	Points []Point

	Attrs Attrs  // unrecognized mxGeometry attributes
	Extra string // unrecognized child elements as raw XML
}

// Clone returns a deep copy of g.
func (g *Geometry) Clone() *Geometry {
	if g == nil {
		return nil
	}
	c := *g
	c.SourcePoint = clonePoint(g.SourcePoint)
	c.TargetPoint = clonePoint(g.TargetPoint)
	c.Offset = clonePoint(g.Offset)
	c.Points = slices.Clone(g.Points)
	c.Attrs = g.Attrs.Clone()
	return &c
}

func clonePoint(p *Point) *Point {
	if p == nil {
		return nil
	}
	c := *p
	return &c
}

// Wrapper describes the UserObject (or legacy object) element drawio wraps
// around a cell that carries tags or custom properties. The wrapper's label
// is held in [Cell.Value] and its tags in [Cell.Tags].
type Wrapper struct {
	Tag   string // "UserObject" or "object"
	Attrs Attrs  // custom properties such as tooltip, link or placeholders
	// Order lists attribute names as they appeared, including label, tags
	// and id, so an unmodified wrapper is written back identically.
	Order []string
	Extra string // children other than the wrapped mxCell, as raw XML
}

// DefaultWrapperTag is used when a cell gains tags but has no wrapper yet.
const DefaultWrapperTag = "UserObject"

// Opaque holds an element that is not interpreted.
type Opaque struct {
	Tag   string
	Attrs Attrs  // every attribute, including id and parent
	Inner string // raw inner XML
	// Anonymous is set when the element had no id. The cell's ID is then a
	// placeholder that is never written.
	Anonymous bool
}

// Cell is a node in a [GraphModel].
//
// Parent, Source and Target are ids of other cells in the same model. An
// empty Source or Target means the edge end is floating, which is legal;
// a non-empty one that does not resolve is an integrity violation.
type Cell struct {
	ID     string
	Parent string // empty only for the root
	Kind   Kind

	Value    string       // label text, possibly HTML
	Style    *style.Style // never nil for cells built by this package
	Geometry *Geometry

	Source string
	Target string

	// Tags come from the wrapping UserObject element.
	Tags    []string
	Wrapper *Wrapper

	Attrs Attrs  // unrecognized mxCell attributes, in document order
	Extra string // unrecognized child elements as raw XML
	// Order lists the mxCell attribute names as they appeared in the source.
	// Writers follow it so unmodified cells keep their layout. It is empty
	// for cells created in code.
	Order []string

	Opaque *Opaque // set only for KindOpaque
}

// IsVertex reports whether c is a shape or group.
func (c *Cell) IsVertex() bool { return c.Kind.IsVertex() }

// IsEdge reports whether c is a connector.
func (c *Cell) IsEdge() bool { return c.Kind == KindEdge }

// Wrapped reports whether c is written inside a UserObject element.
func (c *Cell) Wrapped() bool { return c.Wrapper != nil || len(c.Tags) > 0 }

// Clone returns a deep copy of c.
func (c *Cell) Clone() *Cell {
	if c == nil {
		return nil
	}
	out := *c
	out.Style = c.Style.Clone()
	out.Geometry = c.Geometry.Clone()
	out.Tags = slices.Clone(c.Tags)
	out.Attrs = c.Attrs.Clone()
	out.Order = slices.Clone(c.Order)
	if c.Wrapper != nil {
		w := *c.Wrapper
		w.Attrs = c.Wrapper.Attrs.Clone()
		w.Order = slices.Clone(c.Wrapper.Order)
		out.Wrapper = &w
	}
	if c.Opaque != nil {
		o := *c.Opaque
		o.Attrs = c.Opaque.Attrs.Clone()
		out.Opaque = &o
	}
	return &out
}

// Default size of shapes created by the constructors below.
const (
	DefaultWidth  = 120
	DefaultHeight = 60
)

func presetOrNew(preset *style.Style) *style.Style {
	if preset == nil {
		return style.New()
	}
	return preset.Clone()
}

// NewShape returns a shape with a fresh id under parent. The preset style,
// if any, is copied. Geometry defaults to a 120x60 box at the origin.
func NewShape(parent, value string, preset *style.Style) *Cell {
	return &Cell{
		ID:       NewCellID(),
		Parent:   parent,
		Kind:     KindShape,
		Value:    value,
		Style:    presetOrNew(preset),
		Geometry: &Geometry{Width: DefaultWidth, Height: DefaultHeight},
	}
}

// NewGroup returns an empty group vertex under parent.
func NewGroup(parent string) *Cell {
	st := style.New()
	st.SetFlag(GroupStyle)
	return &Cell{
		ID:       NewCellID(),
		Parent:   parent,
		Kind:     KindGroup,
		Style:    st,
		Geometry: &Geometry{Width: DefaultWidth, Height: DefaultHeight},
	}
}

// NewEdge returns an edge from source to target under parent. Either end may
// be empty for a floating connector.
func NewEdge(parent, source, target string, preset *style.Style) *Cell {
	return &Cell{
		ID:       NewCellID(),
		Parent:   parent,
		Kind:     KindEdge,
		Style:    presetOrNew(preset),
		Geometry: &Geometry{Relative: true},
		Source:   source,
		Target:   target,
	}
}

// NewLayer returns a layer named name under the root cell rootID.
func NewLayer(rootID, name string) *Cell {
	return &Cell{
		ID:     NewCellID(),
		Parent: rootID,
		Kind:   KindLayer,
		Value:  name,
		Style:  &style.Style{},
	}
}
