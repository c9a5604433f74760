package model

import (
	"slices"
	"time"

	nanoid "github.com/matoous/go-nanoid/v2"

	"github.com/matzehuels/drawkit/pkg/buildinfo"
	"github.com/matzehuels/drawkit/pkg/errors"
)

// FormatVersion is the drawio file version written into new documents.
const FormatVersion = "21.6.5"

// Document is a drawio file: an ordered list of pages plus the attributes
// of the mxfile element.
type Document struct {
	// Attrs are the mxfile attributes (host, modified, agent, etag, version,
	// type and anything else), kept verbatim and in order.
	Attrs Attrs
	Pages []*Page
	// Extra holds unrecognized mxfile children as raw XML, written after
	// the pages.
	Extra string
}

// NewDocument returns an empty document with the metadata drawio expects
// on a freshly created file.
func NewDocument() *Document {
	return &Document{
		Attrs: Attrs{
			{Name: "host", Value: buildinfo.Name},
			{Name: "modified", Value: time.Now().UTC().Format("2006-01-02T15:04:05.000Z")},
			{Name: "agent", Value: buildinfo.Agent()},
			{Name: "etag", Value: nanoid.MustGenerate(cellIDAlphabet, cellIDLength)},
			{Name: "version", Value: FormatVersion},
			{Name: "type", Value: "device"},
		},
	}
}

// Page is one diagram canvas.
type Page struct {
	ID     string
	Name   string
	Config PageConfig
	Model  *GraphModel

	// Compressed records that the page content was, or should be, stored as
	// base64 raw DEFLATE rather than inline XML.
	Compressed bool
	// URIEncoded records that compressed content was percent-encoded before
	// deflating, as drawio itself does.
	URIEncoded bool

	Attrs Attrs  // unrecognized diagram attributes
	Extra string // unrecognized mxGraphModel children as raw XML
	// Order lists the diagram attribute names as they appeared, so id and
	// name are written back in their original positions.
	Order []string
}

// NewPage returns a page with a fresh id, default display settings and a
// model holding the root and default layer.
func NewPage(name string) *Page {
	return &Page{
		ID:     NewPageID(),
		Name:   name,
		Config: DefaultPageConfig(),
		Model:  NewGraphModel(),
	}
}

// Validate checks the page's model. Errors carry the page id.
func (p *Page) Validate() error {
	return validate(p.Model, p.ID)
}

// Page returns the page with the given id.
func (d *Document) Page(id string) (*Page, bool) {
	for _, p := range d.Pages {
		if p.ID == id {
			return p, true
		}
	}
	return nil, false
}

// PageByName returns the first page with the given display name.
func (d *Document) PageByName(name string) (*Page, bool) {
	for _, p := range d.Pages {
		if p.Name == name {
			return p, true
		}
	}
	return nil, false
}

// AddPage appends p. Page ids must be unique within the document.
func (d *Document) AddPage(p *Page) error {
	if p == nil {
		return errors.New(errors.ErrCodeInvalidInput, "page is nil")
	}
	if err := errors.ValidateCellID(p.ID); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid page id").WithPage(p.ID)
	}
	if _, exists := d.Page(p.ID); exists {
		return errors.New(errors.ErrCodeDuplicateID, "page %q already exists", p.ID).WithPage(p.ID)
	}
	if p.Model == nil {
		p.Model = &GraphModel{}
	}
	d.Pages = append(d.Pages, p)
	return nil
}

// NewPage creates a page named name and appends it.
func (d *Document) NewPage(name string) *Page {
	p := NewPage(name)
	d.Pages = append(d.Pages, p)
	return p
}

// RemovePage removes the page with the given id and reports whether it
// existed.
func (d *Document) RemovePage(id string) bool {
	n := len(d.Pages)
	d.Pages = slices.DeleteFunc(d.Pages, func(p *Page) bool { return p.ID == id })
	return len(d.Pages) != n
}

// Validate checks page id uniqueness and every page's model, returning the
// first failure.
func (d *Document) Validate() error {
	seen := make(map[string]bool, len(d.Pages))
	for _, p := range d.Pages {
		if seen[p.ID] {
			return errors.New(errors.ErrCodeDuplicateID, "page %q appears more than once", p.ID).WithPage(p.ID)
		}
		seen[p.ID] = true
		if err := p.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Touch sets the modified attribute to now.
func (d *Document) Touch(now time.Time) {
	d.Attrs.Set("modified", now.UTC().Format("2006-01-02T15:04:05.000Z"))
}
