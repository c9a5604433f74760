package io

import (
	stderrors "errors"
	"net/url"
	"slices"
	"strings"

	"github.com/beevik/etree"

	"github.com/matzehuels/drawkit/pkg/errors"
	"github.com/matzehuels/drawkit/pkg/model"
)

// Element and attribute names of the drawio format.
const (
	tagFile       = "mxfile"
	tagDiagram    = "diagram"
	tagModel      = "mxGraphModel"
	tagRoot       = "root"
	tagCell       = "mxCell"
	tagGeometry   = "mxGeometry"
	tagPoint      = "mxPoint"
	tagArray      = "Array"
	tagUserObject = "UserObject"
	tagObject     = "object"

	asGeometry    = "geometry"
	asSourcePoint = "sourcePoint"
	asTargetPoint = "targetPoint"
	asOffset      = "offset"
	asPoints      = "points"
)

// passthroughTag wraps raw fragments so they can be parsed as one element.
const passthroughTag = "drawkit-passthrough"

// newDocument returns an etree document that escapes newlines and tabs in
// attribute values, so multi-line labels survive a round trip.
func newDocument() *etree.Document {
	doc := etree.NewDocument()
	doc.WriteSettings.CanonicalAttrVal = true
	return doc
}

func attrsOf(e *etree.Element) model.Attrs {
	if len(e.Attr) == 0 {
		return nil
	}
	out := make(model.Attrs, len(e.Attr))
	for i, a := range e.Attr {
		out[i] = model.Attr{Name: a.FullKey(), Value: a.Value}
	}
	return out
}

func setAttrs(e *etree.Element, attrs model.Attrs) {
	for _, a := range attrs {
		e.CreateAttr(a.Name, a.Value)
	}
}

// rawXML serializes elements as one string.
func rawXML(elems []*etree.Element) (string, error) {
	if len(elems) == 0 {
		return "", nil
	}
	doc := newDocument()
	for _, el := range elems {
		cp := el.Copy()
		stripIndent(cp)
		doc.AddChild(cp)
	}
	return doc.WriteToString()
}

// innerXML serializes every child token of e, text included.
func innerXML(e *etree.Element) (string, error) {
	if len(e.Child) == 0 {
		return "", nil
	}
	holder := e.Copy()
	stripIndent(holder)
	if len(holder.Child) == 0 {
		return "", nil
	}
	doc := newDocument()
	for _, tok := range slices.Clone(holder.Child) {
		doc.AddChild(tok)
	}
	return doc.WriteToString()
}

// stripIndent removes whitespace-only text below e. Indentation is not
// content in drawio files, and dropping it lets pretty-printed input decode
// to the same model as compact input.
func stripIndent(e *etree.Element) {
	for i := len(e.Child) - 1; i >= 0; i-- {
		switch t := e.Child[i].(type) {
		case *etree.CharData:
			if t.IsWhitespace() {
				e.RemoveChildAt(i)
			}
		case *etree.Element:
			stripIndent(t)
		}
	}
}

// appendRaw parses a fragment produced by rawXML or innerXML and appends
// its tokens to dst.
func appendRaw(dst *etree.Element, raw string) error {
	if raw == "" {
		return nil
	}
	doc := etree.NewDocument()
	if err := doc.ReadFromString("<" + passthroughTag + ">" + raw + "</" + passthroughTag + ">"); err != nil {
		return errors.Wrap(errors.ErrCodeSerializeFailure, err, "passthrough content under %s is not well-formed", dst.FullTag())
	}
	for _, tok := range slices.Clone(doc.Root().Child) {
		dst.AddChild(tok)
	}
	return nil
}

// writeOrdered emits attributes following order first. Names in order that
// are no longer present are skipped; present names missing from order are
// appended in the order given by attrs.
func writeOrdered(e *etree.Element, order []string, attrs model.Attrs) {
	written := make(map[string]bool, len(attrs))
	for _, name := range order {
		if written[name] {
			continue
		}
		if v, ok := attrs.Get(name); ok {
			e.CreateAttr(name, v)
			written[name] = true
		}
	}
	for _, a := range attrs {
		if !written[a.Name] {
			e.CreateAttr(a.Name, a.Value)
			written[a.Name] = true
		}
	}
}

func attrNames(e *etree.Element) []string {
	names := make([]string, len(e.Attr))
	for i, a := range e.Attr {
		names[i] = a.FullKey()
	}
	return names
}

// withPage attaches a page id to a structured error.
func withPage(err error, pageID string) error {
	var e *errors.Error
	if stderrors.As(err, &e) && e.PageID == "" {
		e.PageID = pageID
	}
	return err
}

// withCell attaches a cell id to a structured error.
func withCell(err error, cellID string) error {
	var e *errors.Error
	if stderrors.As(err, &e) && e.CellID == "" {
		e.CellID = cellID
	}
	return err
}

// encodeURIComponent percent-encodes s the way JavaScript's function of the
// same name does; drawio applies it before deflating page content.
func encodeURIComponent(s string) string {
	const hex = "0123456789ABCDEF"
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z' || '0' <= c && c <= '9' ||
			strings.IndexByte("-_.!~*'()", c) >= 0 {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(hex[c>>4])
		b.WriteByte(hex[c&0x0f])
	}
	return b.String()
}

// decodeURIComponent reverses encodeURIComponent. '+' is left as is.
func decodeURIComponent(s string) (string, error) {
	return url.PathUnescape(s)
}
