package model

import (
	"slices"

	"github.com/matzehuels/drawkit/pkg/errors"
	"github.com/matzehuels/drawkit/pkg/style"
)

// Ids of the sentinel cells created by [NewGraphModel]. Parsed models may use
// other ids; look sentinels up with [GraphModel.Root] and
// [GraphModel.DefaultLayer] rather than by these constants.
const (
	RootID         = "0"
	DefaultLayerID = "1"
)

// RemovePolicy decides what happens to the descendants of a removed cell.
// The zero value is invalid so callers always choose explicitly.
type RemovePolicy int

const (
	// PromoteChildren re-parents the removed cell's children to its parent.
	PromoteChildren RemovePolicy = iota + 1
	// RemoveSubtree removes the cell and all of its descendants.
	RemoveSubtree
)

// GraphModel is the cell tree of one page.
//
// Cells are stored in insertion order with an id-to-slot index, so lookups
// are O(1) and iteration follows document (z) order. The zero value is an
// empty model without sentinels, which is what decoders start from; use
// [NewGraphModel] for authoring.
//
// GraphModel is not safe for concurrent use without external synchronization.
type GraphModel struct {
	cells []*Cell
	index map[string]int
}

// NewGraphModel returns a model holding the root cell "0" and the default
// layer "1".
func NewGraphModel() *GraphModel {
	g := &GraphModel{}
	g.insert(&Cell{ID: RootID, Kind: KindRoot, Style: &style.Style{}})
	g.insert(&Cell{ID: DefaultLayerID, Parent: RootID, Kind: KindLayer, Style: &style.Style{}})
	return g
}

// Len returns the number of cells, sentinels included.
func (g *GraphModel) Len() int {
	if g == nil {
		return 0
	}
	return len(g.cells)
}

// Cells returns the cells in write order: the root first, then every other
// cell in insertion order. The slice is a copy; the cells are not.
func (g *GraphModel) Cells() []*Cell {
	if g.Len() == 0 {
		return nil
	}
	out := make([]*Cell, 0, len(g.cells))
	root := g.Root()
	if root != nil {
		out = append(out, root)
	}
	for _, c := range g.cells {
		if c != root {
			out = append(out, c)
		}
	}
	return out
}

// Root returns the first root cell, or nil for an empty model.
func (g *GraphModel) Root() *Cell {
	if g == nil {
		return nil
	}
	for _, c := range g.cells {
		if c.Kind == KindRoot {
			return c
		}
	}
	return nil
}

// Layers returns the layer cells in order.
func (g *GraphModel) Layers() []*Cell {
	return g.Filter(func(c *Cell) bool { return c.Kind == KindLayer })
}

// DefaultLayer returns the first layer, or nil when there is none.
func (g *GraphModel) DefaultLayer() *Cell {
	if g == nil {
		return nil
	}
	for _, c := range g.cells {
		if c.Kind == KindLayer {
			return c
		}
	}
	return nil
}

// Filter returns the cells for which keep returns true, in insertion order.
func (g *GraphModel) Filter(keep func(*Cell) bool) []*Cell {
	if g == nil {
		return nil
	}
	var out []*Cell
	for _, c := range g.cells {
		if keep(c) {
			out = append(out, c)
		}
	}
	return out
}

// CountByKind returns how many cells of each kind the model holds.
func (g *GraphModel) CountByKind() map[Kind]int {
	counts := make(map[Kind]int)
	if g == nil {
		return counts
	}
	for _, c := range g.cells {
		counts[c.Kind]++
	}
	return counts
}

// FindByID returns the cell with the given id.
func (g *GraphModel) FindByID(id string) (*Cell, bool) {
	if g == nil || g.index == nil {
		return nil, false
	}
	i, ok := g.index[id]
	if !ok {
		return nil, false
	}
	return g.cells[i], true
}

// Children returns the direct children of id in insertion order.
func (g *GraphModel) Children(id string) []*Cell {
	return g.Filter(func(c *Cell) bool { return c.Parent == id && c.ID != id })
}

func (g *GraphModel) insert(c *Cell) {
	if g.index == nil {
		g.index = make(map[string]int)
	}
	g.index[c.ID] = len(g.cells)
	g.cells = append(g.cells, c)
}

func checkNewCell(g *GraphModel, c *Cell) error {
	if c == nil {
		return errors.New(errors.ErrCodeInvalidCell, "cell is nil")
	}
	if err := errors.ValidateCellID(c.ID); err != nil {
		return err
	}
	if _, exists := g.FindByID(c.ID); exists {
		return errors.New(errors.ErrCodeDuplicateID, "cell %q already exists", c.ID).WithCell(c.ID)
	}
	return nil
}

// Insert appends c without resolving its parent or endpoints.
//
// Decoders use Insert because drawio does not guarantee that a parent is
// written before its children. Only the id is checked; call [Validate] once
// all cells are in place.
func (g *GraphModel) Insert(c *Cell) error {
	if err := checkNewCell(g, c); err != nil {
		return err
	}
	g.insert(c)
	return nil
}

// AddCell appends c after checking that its id is new and its parent exists.
//
// It fails with DUPLICATE_ID when the id is taken and UNKNOWN_PARENT when the
// parent does not resolve. A root cell must have no parent and only one root
// is accepted. A layer must sit directly under a root. Anonymous opaque cells
// may omit the parent.
func (g *GraphModel) AddCell(c *Cell) error {
	if err := checkNewCell(g, c); err != nil {
		return err
	}

	switch {
	case c.Kind == KindRoot:
		if c.Parent != "" {
			return errors.New(errors.ErrCodeInvalidCell, "root cell cannot have a parent").WithCell(c.ID)
		}
		if g.Root() != nil {
			return errors.New(errors.ErrCodeInvalidCell, "model already has a root cell").WithCell(c.ID)
		}
	case c.Parent == "" && c.Kind == KindOpaque:
	case c.Parent == "":
		return errors.New(errors.ErrCodeUnknownParent, "cell has no parent").WithCell(c.ID).WithAttr("parent")
	default:
		parent, ok := g.FindByID(c.Parent)
		if !ok {
			return errors.New(errors.ErrCodeUnknownParent, "parent %q does not exist", c.Parent).
				WithCell(c.ID).WithAttr("parent")
		}
		if c.Kind == KindLayer && parent.Kind != KindRoot {
			return errors.New(errors.ErrCodeInvalidCell, "layer parent %q is not a root cell", c.Parent).
				WithCell(c.ID).WithAttr("parent")
		}
	}

	if c.Style == nil {
		c.Style = &style.Style{}
	}
	g.insert(c)
	return nil
}

// SetParent moves cell id under parent.
//
// The move is rejected with CYCLE_DETECTED when parent is id itself or one of
// its descendants. On any error the model is unchanged.
func (g *GraphModel) SetParent(id, parent string) error {
	c, ok := g.FindByID(id)
	if !ok {
		return errors.New(errors.ErrCodeUnknownCell, "cell %q does not exist", id).WithCell(id)
	}
	if c.Kind == KindRoot {
		return errors.New(errors.ErrCodeInvalidCell, "root cell cannot be moved").WithCell(id)
	}
	if _, ok := g.FindByID(parent); !ok {
		return errors.New(errors.ErrCodeUnknownParent, "parent %q does not exist", parent).
			WithCell(id).WithAttr("parent")
	}
	if g.isAncestorOrSelf(id, parent) {
		return errors.New(errors.ErrCodeCycleDetected, "moving %q under %q would create a cycle", id, parent).
			WithCell(id).WithAttr("parent")
	}
	c.Parent = parent
	return nil
}

// isAncestorOrSelf walks up from start and reports whether id is reached.
// The walk is bounded by the number of cells so a corrupted model cannot
// loop forever.
func (g *GraphModel) isAncestorOrSelf(id, start string) bool {
	cur := start
	for steps := 0; steps <= len(g.cells); steps++ {
		if cur == id {
			return true
		}
		c, ok := g.FindByID(cur)
		if !ok || c.Parent == "" {
			return false
		}
		cur = c.Parent
	}
	return true
}

// RemoveCell removes cell id according to policy.
//
// With [PromoteChildren] the children of id move to its parent. With
// [RemoveSubtree] every descendant is removed too. Edges that referenced a
// removed cell keep the reference, so [Check] reports them as dangling until
// the caller reconnects or removes them. The root cannot be removed.
func (g *GraphModel) RemoveCell(id string, policy RemovePolicy) error {
	if policy != PromoteChildren && policy != RemoveSubtree {
		return errors.New(errors.ErrCodeInvalidInput, "unknown remove policy %d", policy).WithCell(id)
	}
	c, ok := g.FindByID(id)
	if !ok {
		return errors.New(errors.ErrCodeUnknownCell, "cell %q does not exist", id).WithCell(id)
	}
	if c.Kind == KindRoot {
		return errors.New(errors.ErrCodeInvalidCell, "root cell cannot be removed").WithCell(id)
	}

	removed := map[string]bool{id: true}
	switch policy {
	case PromoteChildren:
		for _, child := range g.Children(id) {
			child.Parent = c.Parent
		}
	case RemoveSubtree:
		children := g.childIndex()
		queue := []string{id}
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			for _, child := range children[cur] {
				if !removed[child] {
					removed[child] = true
					queue = append(queue, child)
				}
			}
		}
	}

	g.cells = slices.DeleteFunc(g.cells, func(c *Cell) bool { return removed[c.ID] })
	g.reindex()
	return nil
}

// RenameCell changes a cell's id and rewrites every parent, source and
// target reference to it.
func (g *GraphModel) RenameCell(oldID, newID string) error {
	c, ok := g.FindByID(oldID)
	if !ok {
		return errors.New(errors.ErrCodeUnknownCell, "cell %q does not exist", oldID).WithCell(oldID)
	}
	if err := errors.ValidateCellID(newID); err != nil {
		return err
	}
	if _, taken := g.FindByID(newID); taken {
		return errors.New(errors.ErrCodeDuplicateID, "cell %q already exists", newID).WithCell(newID)
	}

	c.ID = newID
	for _, other := range g.cells {
		if other.Parent == oldID {
			other.Parent = newID
		}
		if other.Source == oldID {
			other.Source = newID
		}
		if other.Target == oldID {
			other.Target = newID
		}
	}
	g.reindex()
	return nil
}

// ResolveEdgeEndpoints returns the cells an edge is attached to. A floating
// end yields nil. A reference that does not resolve fails with UNKNOWN_CELL
// naming the edge and the offending attribute.
func (g *GraphModel) ResolveEdgeEndpoints(id string) (source, target *Cell, err error) {
	edge, ok := g.FindByID(id)
	if !ok {
		return nil, nil, errors.New(errors.ErrCodeUnknownCell, "cell %q does not exist", id).WithCell(id)
	}
	if edge.Kind != KindEdge {
		return nil, nil, errors.New(errors.ErrCodeInvalidCell, "cell %q is a %s, not an edge", id, edge.Kind).WithCell(id)
	}

	resolve := func(ref, attr string) (*Cell, error) {
		if ref == "" {
			return nil, nil
		}
		c, ok := g.FindByID(ref)
		if !ok {
			return nil, errors.New(errors.ErrCodeUnknownCell, "%s %q does not exist", attr, ref).
				WithCell(id).WithAttr(attr)
		}
		return c, nil
	}

	if source, err = resolve(edge.Source, "source"); err != nil {
		return nil, nil, err
	}
	if target, err = resolve(edge.Target, "target"); err != nil {
		return nil, nil, err
	}
	return source, target, nil
}

// Clone returns a deep copy of g.
func (g *GraphModel) Clone() *GraphModel {
	out := &GraphModel{}
	if g == nil {
		return out
	}
	for _, c := range g.cells {
		out.insert(c.Clone())
	}
	return out
}

func (g *GraphModel) childIndex() map[string][]string {
	children := make(map[string][]string)
	for _, c := range g.cells {
		if c.Parent != "" {
			children[c.Parent] = append(children[c.Parent], c.ID)
		}
	}
	return children
}

func (g *GraphModel) reindex() {
	g.index = make(map[string]int, len(g.cells))
	for i, c := range g.cells {
		if _, dup := g.index[c.ID]; !dup {
			g.index[c.ID] = i
		}
	}
}
