// Package model holds the in-memory representation of a drawio document.
//
// A [Document] owns an ordered list of [Page] values. Each page owns one
// [GraphModel], a forest of [Cell] values rooted at a sentinel root cell
// (id "0") with one or more layers beneath it. Shapes, groups and edges live
// under layers or groups.
//
// # Arena Storage
//
// Cells never point at each other. Parent, source and target are cell ids,
// resolved through the model's id index. The model keeps cells in insertion
// order, which is also the z-order drawio uses when rendering:
//
//	g := model.NewGraphModel()
//	a := model.NewShape(g.DefaultLayer().ID, "A", nil)
//	b := model.NewShape(g.DefaultLayer().ID, "B", nil)
//	e := model.NewEdge(g.DefaultLayer().ID, a.ID, b.ID, nil)
//	for _, c := range []*model.Cell{a, b, e} {
//	    if err := g.AddCell(c); err != nil {
//	        return err
//	    }
//	}
//
// # Integrity
//
// Mutating operations on [GraphModel] check their own preconditions:
// [GraphModel.AddCell] rejects duplicate ids and unknown parents, and
// [GraphModel.SetParent] rejects moves that would create a cycle, leaving the
// model unchanged. Fields of a [Cell] may also be edited directly, so
// [Validate] re-checks every invariant before a model is written out.
//
// # Passthrough
//
// Attributes and elements that drawkit does not interpret are preserved:
// extra mxCell attributes in [Cell.Attrs], unknown child elements in
// [Cell.Extra], and whole unknown elements as [KindOpaque] cells.
package model
