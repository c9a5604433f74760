package io

import (
	"strconv"
	"strings"

	"github.com/beevik/etree"

	"github.com/matzehuels/drawkit/pkg/compress"
	"github.com/matzehuels/drawkit/pkg/errors"
	"github.com/matzehuels/drawkit/pkg/model"
	"github.com/matzehuels/drawkit/pkg/style"
)

type decoder struct {
	codec *compress.Codec
}

// page decodes one diagram element, including its content and validation.
func (d *decoder) page(el *etree.Element) (*model.Page, error) {
	idAttr := el.SelectAttr("id")
	if idAttr == nil || idAttr.Value == "" {
		name := el.SelectAttrValue("name", "")
		return nil, errors.New(errors.ErrCodeMissingAttribute, "diagram %q has no id", name).WithAttr("id")
	}

	p := &model.Page{ID: idAttr.Value, Order: attrNames(el)}
	for _, a := range el.Attr {
		switch a.FullKey() {
		case "id":
		case "name":
			p.Name = a.Value
		default:
			p.Attrs = append(p.Attrs, model.Attr{Name: a.FullKey(), Value: a.Value})
		}
	}

	content, err := d.content(el, p)
	if err != nil {
		return nil, withPage(err, p.ID)
	}
	if content == nil {
		p.Model = &model.GraphModel{}
		return p, nil
	}
	if err := d.graphModel(content, p); err != nil {
		return nil, withPage(err, p.ID)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// content locates the mxGraphModel element of a page. Inline elements are
// used directly. Text content is parsed as XML first and decompressed only
// when that fails. A nil element means the page is empty.
func (d *decoder) content(el *etree.Element, p *model.Page) (*etree.Element, error) {
	children := el.ChildElements()
	switch len(children) {
	case 0:
	case 1:
		if children[0].FullTag() != tagModel {
			return nil, errors.New(errors.ErrCodeUnrecognizedElement,
				"diagram content is <%s>, want <%s>", children[0].FullTag(), tagModel)
		}
		return children[0], nil
	default:
		return nil, errors.New(errors.ErrCodeUnrecognizedElement,
			"diagram has %d content elements, want one <%s>", len(children), tagModel)
	}

	text := strings.TrimSpace(el.Text())
	if text == "" {
		return nil, nil
	}

	modelEl, xmlErr := parseModel(text)
	if xmlErr == nil {
		return modelEl, nil
	}

	raw, err := d.codec.Decompress(text)
	if err != nil {
		if strings.HasPrefix(text, "<") {
			return nil, xmlErr
		}
		return nil, err
	}
	p.Compressed = true

	inflated := strings.TrimSpace(string(raw))
	if inflated != "" && !strings.HasPrefix(inflated, "<") {
		if unescaped, err := decodeURIComponent(inflated); err == nil {
			inflated = strings.TrimSpace(unescaped)
			p.URIEncoded = true
		}
	}
	if inflated == "" {
		return nil, nil
	}
	return parseModel(inflated)
}

func parseModel(text string) (*etree.Element, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromString(text); err != nil {
		return nil, errors.Wrap(errors.ErrCodeUnparseableXML, err, "parse page content")
	}
	root := doc.Root()
	if root == nil {
		return nil, errors.New(errors.ErrCodeUnparseableXML, "page content has no root element")
	}
	if root.FullTag() != tagModel {
		return nil, errors.New(errors.ErrCodeUnrecognizedElement,
			"page content is <%s>, want <%s>", root.FullTag(), tagModel)
	}
	return root, nil
}

func (d *decoder) graphModel(el *etree.Element, p *model.Page) error {
	cfg, err := model.ParsePageConfig(attrsOf(el))
	if err != nil {
		return err
	}
	p.Config = cfg

	var rootEl *etree.Element
	var extra []*etree.Element
	for _, child := range el.ChildElements() {
		if child.FullTag() == tagRoot && rootEl == nil {
			rootEl = child
			continue
		}
		extra = append(extra, child)
	}
	if rootEl == nil {
		return errors.New(errors.ErrCodeUnrecognizedElement, "<%s> has no <%s> element", tagModel, tagRoot)
	}
	if p.Extra, err = rawXML(extra); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "capture %s children", tagModel)
	}

	cells, err := d.cells(rootEl)
	if err != nil {
		return err
	}
	g := &model.GraphModel{}
	for _, c := range cells {
		if err := g.Insert(c); err != nil {
			return err
		}
	}
	p.Model = g
	return nil
}

// decoded is a cell before its kind is known. Layers can only be told apart
// once every root cell has been seen.
type decoded struct {
	cell      *model.Cell
	el        *etree.Element // element the cell came from, wrapper included
	opaque    bool
	vertex    bool
	edge      bool
	hasParent bool
}

func (d *decoder) cells(rootEl *etree.Element) ([]*model.Cell, error) {
	var list []decoded
	for _, el := range rootEl.ChildElements() {
		var (
			dc  decoded
			err error
		)
		switch el.FullTag() {
		case tagCell:
			dc, err = decodeCell(el)
			if err == nil && dc.cell.ID == "" {
				err = errors.New(errors.ErrCodeMissingAttribute, "<%s> has no id", tagCell).WithAttr("id")
			}
		case tagUserObject, tagObject:
			dc, err = decodeWrapped(el)
		default:
			dc, err = decodeOpaque(el)
		}
		if err != nil {
			return nil, err
		}
		list = append(list, dc)
	}

	roots := make(map[string]bool)
	for _, dc := range list {
		if !dc.hasParent && !dc.opaque {
			roots[dc.cell.ID] = true
		}
	}

	used := make(map[string]bool, len(list))
	for _, dc := range list {
		used[dc.cell.ID] = true
	}
	anon := 0

	out := make([]*model.Cell, 0, len(list))
	for _, dc := range list {
		c := dc.cell
		switch {
		case dc.opaque:
		case dc.edge:
			c.Kind = model.KindEdge
		case dc.vertex && model.IsGroupStyle(c.Style):
			c.Kind = model.KindGroup
		case dc.vertex:
			c.Kind = model.KindShape
		case !dc.hasParent:
			c.Kind = model.KindRoot
		case roots[c.Parent] && c.Geometry == nil:
			c.Kind = model.KindLayer
		default:
			// An unmarked cell that is not a layer has no kind of its own.
			opaque, err := decodeOpaque(dc.el)
			if err != nil {
				return nil, err
			}
			c = opaque.cell
		}

		if c.Opaque != nil && c.Opaque.Anonymous {
			for {
				anon++
				id := "opaque-" + strconv.Itoa(anon)
				if !used[id] {
					c.ID = id
					used[id] = true
					break
				}
			}
		}
		out = append(out, c)
	}
	return out, nil
}

func decodeCell(el *etree.Element) (decoded, error) {
	c := &model.Cell{Order: attrNames(el)}
	dc := decoded{cell: c, el: el}

	for _, a := range el.Attr {
		name := a.FullKey()
		switch name {
		case "id":
			c.ID = a.Value
		case "parent":
			c.Parent = a.Value
			dc.hasParent = a.Value != ""
		case "value":
			c.Value = a.Value
		case "style":
			c.Style = style.Decode(a.Value)
		case "vertex", "edge":
			on, ok := model.ParseFlag(a.Value)
			if !ok {
				return dc, errors.New(errors.ErrCodeInvalidAttribute, "%s=%q is not a flag", name, a.Value).
					WithCell(c.ID).WithAttr(name)
			}
			if name == "vertex" {
				dc.vertex = on
			} else {
				dc.edge = on
			}
		case "source":
			c.Source = a.Value
		case "target":
			c.Target = a.Value
		default:
			c.Attrs = append(c.Attrs, model.Attr{Name: name, Value: a.Value})
		}
	}
	if c.Style == nil {
		c.Style = &style.Style{}
	}

	var extra []*etree.Element
	for _, child := range el.ChildElements() {
		if child.FullTag() == tagGeometry && c.Geometry == nil && isAs(child, asGeometry) {
			g, err := decodeGeometry(child)
			if err != nil {
				return dc, withCell(err, c.ID)
			}
			c.Geometry = g
			continue
		}
		extra = append(extra, child)
	}

	var err error
	if c.Extra, err = rawXML(extra); err != nil {
		return dc, errors.Wrap(errors.ErrCodeInternal, err, "capture cell children").WithCell(c.ID)
	}
	return dc, nil
}

// decodeWrapped reads a UserObject or object element. The label and tags
// move onto the wrapped cell, and the wrapper id becomes the cell id.
func decodeWrapped(el *etree.Element) (decoded, error) {
	var inner *etree.Element
	var extra []*etree.Element
	for _, child := range el.ChildElements() {
		if child.FullTag() == tagCell && inner == nil {
			inner = child
			continue
		}
		extra = append(extra, child)
	}
	if inner == nil {
		return decodeOpaque(el)
	}

	dc, err := decodeCell(inner)
	if err != nil {
		return dc, withCell(err, el.SelectAttrValue("id", ""))
	}
	dc.el = el
	c := dc.cell

	w := &model.Wrapper{Tag: el.FullTag(), Order: attrNames(el)}
	for _, a := range el.Attr {
		switch a.FullKey() {
		case "id":
			c.ID = a.Value
		case "label":
			c.Value = a.Value
		case "tags":
			c.Tags = strings.Fields(a.Value)
		default:
			w.Attrs = append(w.Attrs, model.Attr{Name: a.FullKey(), Value: a.Value})
		}
	}
	if c.ID == "" {
		return dc, errors.New(errors.ErrCodeMissingAttribute, "<%s> has no id", el.FullTag()).WithAttr("id")
	}
	if w.Extra, err = rawXML(extra); err != nil {
		return dc, errors.Wrap(errors.ErrCodeInternal, err, "capture wrapper children").WithCell(c.ID)
	}
	c.Wrapper = w
	return dc, nil
}

// decodeOpaque keeps an element verbatim. Its id and parent, when present,
// still take part in the cell graph.
func decodeOpaque(el *etree.Element) (decoded, error) {
	inner, err := innerXML(el)
	if err != nil {
		return decoded{}, errors.Wrap(errors.ErrCodeInternal, err, "capture <%s>", el.FullTag())
	}
	o := &model.Opaque{Tag: el.FullTag(), Attrs: attrsOf(el), Inner: inner}
	c := &model.Cell{
		Kind:   model.KindOpaque,
		ID:     o.Attrs.Value("id"),
		Parent: o.Attrs.Value("parent"),
		Opaque: o,
		Style:  &style.Style{},
	}
	o.Anonymous = c.ID == ""
	return decoded{cell: c, el: el, opaque: true, hasParent: c.Parent != ""}, nil
}

func isAs(el *etree.Element, want string) bool {
	as := el.SelectAttrValue("as", want)
	return as == want
}

func decodeGeometry(el *etree.Element) (*model.Geometry, error) {
	g := &model.Geometry{}
	for _, a := range el.Attr {
		name := a.FullKey()
		var err error
		switch name {
		case "x":
			g.X, err = parseNumber(name, a.Value)
		case "y":
			g.Y, err = parseNumber(name, a.Value)
		case "width":
			g.Width, err = parseNumber(name, a.Value)
		case "height":
			g.Height, err = parseNumber(name, a.Value)
		case "relative":
			var ok bool
			if g.Relative, ok = model.ParseFlag(a.Value); !ok {
				err = errors.New(errors.ErrCodeInvalidAttribute, "relative=%q is not a flag", a.Value).WithAttr(name)
			}
		case "as":
		default:
			g.Attrs = append(g.Attrs, model.Attr{Name: name, Value: a.Value})
		}
		if err != nil {
			return nil, err
		}
	}

	var extra []*etree.Element
	for _, child := range el.ChildElements() {
		switch child.FullTag() {
		case tagPoint:
			pt, ok, err := decodePoint(child)
			if err != nil {
				return nil, err
			}
			slot := pointSlot(g, child.SelectAttrValue("as", ""))
			if !ok || slot == nil || *slot != nil {
				extra = append(extra, child)
				continue
			}
			*slot = pt
		case tagArray:
			points, ok, err := decodePoints(child)
			if err != nil {
				return nil, err
			}
			if !ok || g.Points != nil {
				extra = append(extra, child)
				continue
			}
			g.Points = points
		default:
			extra = append(extra, child)
		}
	}

	var err error
	if g.Extra, err = rawXML(extra); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "capture geometry children")
	}
	return g, nil
}

func pointSlot(g *model.Geometry, as string) **model.Point {
	switch as {
	case asSourcePoint:
		return &g.SourcePoint
	case asTargetPoint:
		return &g.TargetPoint
	case asOffset:
		return &g.Offset
	}
	return nil
}

// decodePoint reads an mxPoint. ok is false when the point carries
// attributes beyond x, y and as, in which case it is kept verbatim.
func decodePoint(el *etree.Element) (pt *model.Point, ok bool, err error) {
	pt = &model.Point{}
	for _, a := range el.Attr {
		switch a.FullKey() {
		case "x":
			pt.X, err = parseNumber("x", a.Value)
		case "y":
			pt.Y, err = parseNumber("y", a.Value)
		case "as":
		default:
			return nil, false, nil
		}
		if err != nil {
			return nil, false, err
		}
	}
	if len(el.ChildElements()) > 0 {
		return nil, false, nil
	}
	return pt, true, nil
}

// decodePoints reads an Array as="points" element. ok is false for any
// other array, or one holding something other than plain points.
func decodePoints(el *etree.Element) ([]model.Point, bool, error) {
	if el.SelectAttrValue("as", "") != asPoints || len(el.Attr) != 1 {
		return nil, false, nil
	}
	points := []model.Point{}
	for _, child := range el.ChildElements() {
		if child.FullTag() != tagPoint || child.SelectAttr("as") != nil {
			return nil, false, nil
		}
		pt, ok, err := decodePoint(child)
		if err != nil || !ok {
			return nil, false, err
		}
		points = append(points, *pt)
	}
	return points, true, nil
}

func parseNumber(name, raw string) (float64, error) {
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeInvalidAttribute, err, "%s=%q is not a number", name, raw).WithAttr(name)
	}
	return f, nil
}
