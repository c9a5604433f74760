package io

import (
	"slices"
	"strings"

	"github.com/beevik/etree"

	"github.com/matzehuels/drawkit/pkg/errors"
	"github.com/matzehuels/drawkit/pkg/model"
	"github.com/matzehuels/drawkit/pkg/style"
)

type encoder struct {
	opts Options
}

func (e *encoder) page(p *model.Page) (*etree.Element, error) {
	el := etree.NewElement(tagDiagram)
	attrs := model.Attrs{{Name: "id", Value: p.ID}}
	if p.Name != "" || slices.Contains(p.Order, "name") {
		attrs = append(attrs, model.Attr{Name: "name", Value: p.Name})
	}
	writeOrdered(el, p.Order, append(attrs, p.Attrs...))

	cfg := p.Config.ToAttrs()
	if p.Model.Len() == 0 && len(cfg) == 0 && p.Extra == "" {
		return el, nil
	}

	modelEl, err := e.graphModel(p, cfg)
	if err != nil {
		return nil, err
	}
	if !e.opts.compressPage(p.Compressed) {
		el.AddChild(modelEl)
		return el, nil
	}

	tmp := newDocument()
	tmp.SetRoot(modelEl)
	xml, err := tmp.WriteToString()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeSerializeFailure, err, "render page content")
	}
	// Percent-encoding is kept only for pages that were read that way.
	if p.URIEncoded {
		xml = encodeURIComponent(xml)
	}
	payload, err := e.opts.codec().Compress([]byte(xml))
	if err != nil {
		return nil, err
	}
	el.SetText(payload)
	return el, nil
}

func (e *encoder) graphModel(p *model.Page, cfg model.Attrs) (*etree.Element, error) {
	el := etree.NewElement(tagModel)
	setAttrs(el, cfg)
	root := el.CreateElement(tagRoot)
	for _, c := range p.Model.Cells() {
		if err := encodeCell(root, c); err != nil {
			return nil, withCell(err, c.ID)
		}
	}
	if err := appendRaw(el, p.Extra); err != nil {
		return nil, err
	}
	return el, nil
}

func encodeCell(parent *etree.Element, c *model.Cell) error {
	if c.Kind == model.KindOpaque {
		return encodeOpaque(parent, c)
	}

	target := parent
	var wrapper *etree.Element
	if c.Wrapped() {
		wrapper = encodeWrapper(parent, c)
		target = wrapper
	}

	attrs, err := cellAttrs(c, wrapper != nil)
	if err != nil {
		return err
	}
	el := target.CreateElement(tagCell)
	writeOrdered(el, c.Order, attrs)

	if c.Geometry != nil {
		if err := encodeGeometry(el, c.Geometry); err != nil {
			return err
		}
	}
	if err := appendRaw(el, c.Extra); err != nil {
		return err
	}
	if wrapper != nil && c.Wrapper != nil {
		return appendRaw(wrapper, c.Wrapper.Extra)
	}
	return nil
}

// cellAttrs lists the mxCell attributes of c in drawio's default order.
// Inside a wrapper the id and label live on the wrapper instead.
func cellAttrs(c *model.Cell, wrapped bool) (model.Attrs, error) {
	had := func(name string) bool { return slices.Contains(c.Order, name) }
	fresh := len(c.Order) == 0
	var attrs model.Attrs

	if !wrapped {
		attrs = append(attrs, model.Attr{Name: "id", Value: c.ID})
		if c.Value != "" || had("value") || (fresh && (c.IsVertex() || c.IsEdge())) {
			attrs = append(attrs, model.Attr{Name: "value", Value: c.Value})
		}
	}

	st, err := style.Encode(c.Style)
	if err != nil {
		return nil, err
	}
	if st != "" || had("style") {
		attrs = append(attrs, model.Attr{Name: "style", Value: st})
	}

	switch {
	case c.IsVertex():
		attrs = append(attrs, model.Attr{Name: "vertex", Value: "1"})
	case c.IsEdge():
		attrs = append(attrs, model.Attr{Name: "edge", Value: "1"})
	}
	if c.Parent != "" {
		attrs = append(attrs, model.Attr{Name: "parent", Value: c.Parent})
	}
	if c.Source != "" {
		attrs = append(attrs, model.Attr{Name: "source", Value: c.Source})
	}
	if c.Target != "" {
		attrs = append(attrs, model.Attr{Name: "target", Value: c.Target})
	}
	return append(attrs, c.Attrs...), nil
}

func encodeWrapper(parent *etree.Element, c *model.Cell) *etree.Element {
	tag := model.DefaultWrapperTag
	var order []string
	var custom model.Attrs
	if c.Wrapper != nil {
		tag = c.Wrapper.Tag
		order = c.Wrapper.Order
		custom = c.Wrapper.Attrs
	}

	attrs := model.Attrs{{Name: "label", Value: c.Value}}
	if len(c.Tags) > 0 || slices.Contains(order, "tags") {
		attrs = append(attrs, model.Attr{Name: "tags", Value: strings.Join(c.Tags, " ")})
	}
	attrs = append(attrs, custom...)
	attrs = append(attrs, model.Attr{Name: "id", Value: c.ID})

	el := parent.CreateElement(tag)
	writeOrdered(el, order, attrs)
	return el
}

// encodeOpaque writes an opaque element back as it was read. The id and
// parent attributes follow the cell so renames and moves are kept.
func encodeOpaque(parent *etree.Element, c *model.Cell) error {
	if c.Opaque == nil {
		return errors.New(errors.ErrCodeSerializeFailure, "opaque cell has no element data").WithCell(c.ID)
	}
	attrs := c.Opaque.Attrs.Clone()
	if !c.Opaque.Anonymous {
		attrs.Set("id", c.ID)
	}
	if c.Parent != "" {
		attrs.Set("parent", c.Parent)
	}

	el := parent.CreateElement(c.Opaque.Tag)
	setAttrs(el, attrs)
	return appendRaw(el, c.Opaque.Inner)
}

func encodeGeometry(parent *etree.Element, g *model.Geometry) error {
	el := parent.CreateElement(tagGeometry)
	setNumber(el, "x", g.X)
	setNumber(el, "y", g.Y)
	setNumber(el, "width", g.Width)
	setNumber(el, "height", g.Height)
	if g.Relative {
		el.CreateAttr("relative", "1")
	}
	setAttrs(el, g.Attrs)
	el.CreateAttr("as", asGeometry)

	encodePoint(el, g.SourcePoint, asSourcePoint)
	encodePoint(el, g.TargetPoint, asTargetPoint)
	if g.Points != nil {
		arr := el.CreateElement(tagArray)
		arr.CreateAttr("as", asPoints)
		for i := range g.Points {
			encodePoint(arr, &g.Points[i], "")
		}
	}
	encodePoint(el, g.Offset, asOffset)
	return appendRaw(el, g.Extra)
}

func encodePoint(parent *etree.Element, pt *model.Point, as string) {
	if pt == nil {
		return
	}
	el := parent.CreateElement(tagPoint)
	setNumber(el, "x", pt.X)
	setNumber(el, "y", pt.Y)
	if as != "" {
		el.CreateAttr("as", as)
	}
}

// setNumber writes a coordinate unless it is zero, which drawio treats as
// the default.
func setNumber(el *etree.Element, name string, v float64) {
	if v != 0 {
		el.CreateAttr(name, model.FormatNumber(v))
	}
}
