package io

import (
	"bytes"
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/beevik/etree"

	"github.com/matzehuels/drawkit/pkg/compress"
	"github.com/matzehuels/drawkit/pkg/errors"
	"github.com/matzehuels/drawkit/pkg/model"
)

// compact is a single-page document in drawio's own compact layout. Every
// construct in it is expected to come back byte for byte.
const compact = `<mxfile host="drawio" modified="2024-01-01T00:00:00.000Z" agent="test" version="21.6.5" type="device">` +
	`<diagram name="Flow" id="p1">` +
	`<mxGraphModel dx="800" dy="600" grid="1" gridSize="10" guides="1" tooltips="1" connect="1" arrows="1" fold="1" page="1" pageScale="1" pageWidth="850" pageHeight="1100" math="0" shadow="0" adaptiveColors="auto">` +
	`<root>` +
	`<mxCell id="0"/>` +
	`<mxCell id="1" parent="0"/>` +
	`<mxCell id="a" value="Start" style="ellipse;whiteSpace=wrap;html=1;" vertex="1" parent="1"><mxGeometry x="40" y="40" width="120" height="60" as="geometry"/></mxCell>` +
	`<UserObject label="Tagged" tags="alpha beta" link="https://example.com" id="u1"><mxCell style="rounded=1;" vertex="1" parent="1"><mxGeometry x="240" y="40" width="80" height="40" as="geometry"/></mxCell></UserObject>` +
	`<mxCell id="g" style="group" vertex="1" parent="1" connectable="0"><mxGeometry x="40" y="200" width="200" height="100" as="geometry"/></mxCell>` +
	`<mxCell id="m" value="line one&#xA;line two" vertex="1" parent="g"><mxGeometry x="10" y="10" width="80" height="40" as="geometry"/></mxCell>` +
	`<mxCell id="e1" value="" style="endArrow=classic;" edge="1" parent="1" source="a" target="u1" connectable="0"><mxGeometry relative="1" as="geometry"><mxPoint x="100" y="70" as="sourcePoint"/><Array as="points"><mxPoint x="200" y="70"/></Array></mxGeometry></mxCell>` +
	`<mxCell id="x" parent="1"><mxGeometry width="5" as="geometry"/></mxCell>` +
	`<mxFutureThing id="f1" parent="1" flavor="x"><payload>keep</payload></mxFutureThing>` +
	`<mxFutureThing flavor="y"/>` +
	`</root>` +
	`</mxGraphModel>` +
	`</diagram>` +
	`<diagram id="p2" name="Empty"/>` +
	`</mxfile>`

const plainPage = `<diagram id="plain" name="Plain"><mxGraphModel><root>` +
	`<mxCell id="0"/><mxCell id="1" parent="0"/>` +
	`<mxCell id="a" value="A" vertex="1" parent="1"><mxGeometry x="10" y="10" width="40" height="40" as="geometry"/></mxCell>` +
	`<mxCell id="b" value="B" vertex="1" parent="1"><mxGeometry x="100" y="10" width="40" height="40" as="geometry"/></mxCell>` +
	`<mxCell id="c" value="C" vertex="1" parent="1"><mxGeometry x="200" y="10" width="40" height="40" as="geometry"/></mxCell>` +
	`<mxCell id="ab" edge="1" parent="1" source="a" target="b"><mxGeometry relative="1" as="geometry"/></mxCell>` +
	`</root></mxGraphModel></diagram>`

const packedModel = `<mxGraphModel><root><mxCell id="0"/><mxCell id="1" parent="0"/>` +
	`<mxCell id="s" value="Box" style="rounded=0;" vertex="1" parent="1"><mxGeometry x="10" y="10" width="50" height="50" as="geometry"/></mxCell>` +
	`</root></mxGraphModel>`

func mustCompress(t *testing.T, s string) string {
	t.Helper()
	out, err := compress.Compress([]byte(s))
	if err != nil {
		t.Fatalf("Compress: %v", err)
	}
	return out
}

func twoPageDoc(t *testing.T) string {
	t.Helper()
	return `<mxfile host="test">` + plainPage +
		`<diagram id="packed" name="Packed">` + mustCompress(t, packedModel) + `</diagram></mxfile>`
}

func mustRead(t *testing.T, data string, opts Options) *model.Document {
	t.Helper()
	doc, err := UnmarshalDrawio([]byte(data), opts)
	if err != nil {
		t.Fatalf("UnmarshalDrawio: %v", err)
	}
	return doc
}

func mustWrite(t *testing.T, doc *model.Document, opts Options) string {
	t.Helper()
	data, err := MarshalDrawio(doc, opts)
	if err != nil {
		t.Fatalf("MarshalDrawio: %v", err)
	}
	return string(data)
}

func assertSameModels(t *testing.T, a, b *model.Document) {
	t.Helper()
	if len(a.Pages) != len(b.Pages) {
		t.Fatalf("pages = %d, want %d", len(b.Pages), len(a.Pages))
	}
	for i := range a.Pages {
		if a.Pages[i].ID != b.Pages[i].ID || a.Pages[i].Name != b.Pages[i].Name {
			t.Errorf("page %d = %s/%s, want %s/%s", i, b.Pages[i].ID, b.Pages[i].Name, a.Pages[i].ID, a.Pages[i].Name)
		}
		if !model.Equal(a.Pages[i].Model, b.Pages[i].Model) {
			t.Errorf("page %s: models differ after round trip", a.Pages[i].ID)
		}
	}
}

func TestTwoPageDocument(t *testing.T) {
	doc := mustRead(t, twoPageDoc(t), Options{})

	if len(doc.Pages) != 2 {
		t.Fatalf("pages = %d, want 2", len(doc.Pages))
	}

	plain := doc.Pages[0]
	if plain.Compressed {
		t.Error("plain page reported as compressed")
	}
	if plain.Model.Len() != 6 {
		t.Errorf("plain cells = %d, want 6", plain.Model.Len())
	}
	counts := plain.Model.CountByKind()
	if counts[model.KindShape] != 3 || counts[model.KindEdge] != 1 || counts[model.KindLayer] != 1 {
		t.Errorf("counts = %v", counts)
	}
	src, tgt, err := plain.Model.ResolveEdgeEndpoints("ab")
	if err != nil {
		t.Fatalf("ResolveEdgeEndpoints: %v", err)
	}
	if src.ID != "a" || tgt.ID != "b" {
		t.Errorf("endpoints = %s -> %s, want a -> b", src.ID, tgt.ID)
	}

	packed := doc.Pages[1]
	if !packed.Compressed || packed.URIEncoded {
		t.Errorf("packed Compressed=%v URIEncoded=%v, want true/false", packed.Compressed, packed.URIEncoded)
	}
	if packed.Model.Len() != 3 {
		t.Errorf("packed cells = %d, want 3", packed.Model.Len())
	}

	again := mustRead(t, mustWrite(t, doc, Options{}), Options{})
	assertSameModels(t, doc, again)
	if !again.Pages[1].Compressed || again.Pages[0].Compressed {
		t.Error("storage form not preserved")
	}
}

func TestDecodeMinimalKinds(t *testing.T) {
	data := `<mxfile><diagram id="p"><mxGraphModel><root>` +
		`<mxCell id="0"/><mxCell id="1" parent="0"/>` +
		`<mxCell id="v" value="V" vertex="1" parent="1"><mxGeometry x="10" y="10" width="40" height="40" as="geometry"/></mxCell>` +
		`<mxCell id="e" edge="1" parent="1" source="v"><mxGeometry relative="1" as="geometry"/></mxCell>` +
		`</root></mxGraphModel></diagram></mxfile>`
	doc := mustRead(t, data, Options{})

	want := map[string]model.Kind{
		"0": model.KindRoot,
		"1": model.KindLayer,
		"v": model.KindShape,
		"e": model.KindEdge,
	}
	m := doc.Pages[0].Model
	if m.Len() != len(want) {
		t.Errorf("cells = %d, want %d", m.Len(), len(want))
	}
	for id, kind := range want {
		c, ok := m.FindByID(id)
		if !ok {
			t.Errorf("cell %s missing", id)
			continue
		}
		if c.Kind != kind || c.Opaque != nil {
			t.Errorf("cell %s kind = %v opaque = %v, want %v", id, c.Kind, c.Opaque != nil, kind)
		}
	}
}

// Each page of the two-page document must come back structurally equal
// whether it is stored plain or compressed.
func TestTwoPageDocumentPerPageForms(t *testing.T) {
	src := mustRead(t, twoPageDoc(t), Options{})

	for _, mode := range []Compression{CompressionNever, CompressionAlways} {
		t.Run(mode.String(), func(t *testing.T) {
			doc := mustRead(t, mustWrite(t, src, Options{Compression: mode}), Options{})
			if len(doc.Pages) != 2 {
				t.Fatalf("pages = %d, want 2", len(doc.Pages))
			}
			for i, want := range src.Pages {
				got := doc.Pages[i]
				if got.Compressed != (mode == CompressionAlways) {
					t.Errorf("page %s compressed = %v", got.ID, got.Compressed)
				}
				if !model.Equal(want.Model, got.Model) {
					t.Errorf("page %s: models differ", want.ID)
				}
				if got.Model.Len() != want.Model.Len() {
					t.Errorf("page %s cells = %d, want %d", want.ID, got.Model.Len(), want.Model.Len())
				}
			}
			s, ok := doc.Pages[1].Model.FindByID("s")
			if !ok || s.Style.Value("rounded") != "0" {
				t.Errorf("packed shape style lost: %+v", s)
			}
		})
	}
}

func TestContentFallbackErrors(t *testing.T) {
	tests := []struct {
		name string
		text string
		code errors.Code
	}{
		{"corrupt base64", "@@@not base64@@@", errors.ErrCodeInvalidBase64},
		{"corrupt deflate", "////", errors.ErrCodeInflateFailure},
		{"broken markup", "&lt;mxGraphModel&gt;&lt;root&gt;", errors.ErrCodeUnparseableXML},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := `<mxfile><diagram id="p1">` + tt.text + `</diagram></mxfile>`
			_, err := UnmarshalDrawio([]byte(data), Options{})
			if !errors.Is(err, tt.code) {
				t.Errorf("error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestRoundTripByteIdentical(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"compact", compact},
		{"two pages", twoPageDoc(t)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := mustRead(t, tt.data, Options{})
			if got := mustWrite(t, doc, Options{}); got != tt.data {
				t.Errorf("round trip changed the document\n got: %s\nwant: %s", got, tt.data)
			}
		})
	}
}

func TestDecodeCompact(t *testing.T) {
	doc := mustRead(t, compact, Options{})
	p, ok := doc.Page("p1")
	if !ok {
		t.Fatal("page p1 missing")
	}
	if p.Name != "Flow" {
		t.Errorf("name = %q", p.Name)
	}
	if p.Config.PageWidth.Or(0) != 850 || !p.Config.Grid.Or(false) {
		t.Errorf("config = %+v", p.Config)
	}
	if p.Config.Attrs.Value("adaptiveColors") != "auto" {
		t.Errorf("unknown model attribute lost: %v", p.Config.Attrs)
	}

	kinds := map[string]model.Kind{
		"0":        model.KindRoot,
		"1":        model.KindLayer,
		"a":        model.KindShape,
		"u1":       model.KindShape,
		"g":        model.KindGroup,
		"m":        model.KindShape,
		"e1":       model.KindEdge,
		"x":        model.KindOpaque,
		"f1":       model.KindOpaque,
		"opaque-1": model.KindOpaque,
	}
	for id, want := range kinds {
		c, ok := p.Model.FindByID(id)
		if !ok {
			t.Errorf("cell %s missing", id)
			continue
		}
		if c.Kind != want {
			t.Errorf("cell %s kind = %v, want %v", id, c.Kind, want)
		}
	}

	u, _ := p.Model.FindByID("u1")
	if u.Value != "Tagged" || strings.Join(u.Tags, ",") != "alpha,beta" {
		t.Errorf("wrapped cell value=%q tags=%v", u.Value, u.Tags)
	}
	if u.Wrapper == nil || u.Wrapper.Attrs.Value("link") != "https://example.com" {
		t.Errorf("wrapper = %+v", u.Wrapper)
	}

	m, _ := p.Model.FindByID("m")
	if m.Value != "line one\nline two" {
		t.Errorf("multi-line value = %q", m.Value)
	}
	if m.Parent != "g" {
		t.Errorf("grouped parent = %q", m.Parent)
	}

	e, _ := p.Model.FindByID("e1")
	if e.Attrs.Value("connectable") != "0" {
		t.Errorf("unknown cell attribute lost: %v", e.Attrs)
	}
	if e.Geometry == nil || e.Geometry.SourcePoint == nil || len(e.Geometry.Points) != 1 {
		t.Fatalf("edge geometry = %+v", e.Geometry)
	}
	if pt := e.Geometry.Points[0]; pt.X != 200 || pt.Y != 70 {
		t.Errorf("waypoint = %+v", pt)
	}

	anon, _ := p.Model.FindByID("opaque-1")
	if !anon.Opaque.Anonymous || anon.Opaque.Attrs.Value("flavor") != "y" {
		t.Errorf("anonymous element = %+v", anon.Opaque)
	}

	empty, ok := doc.Page("p2")
	if !ok || empty.Model.Len() != 0 {
		t.Error("empty page should decode to an empty model")
	}
}

func TestContentForms(t *testing.T) {
	uriPayload := mustCompress(t, encodeURIComponent(packedModel))
	escaped := strings.NewReplacer("<", "&lt;", ">", "&gt;", `"`, "&quot;").Replace(packedModel)

	tests := []struct {
		name       string
		diagram    string
		compressed bool
		uri        bool
		cells      int
	}{
		{"inline", `<diagram id="p">` + packedModel + `</diagram>`, false, false, 3},
		{"compressed", `<diagram id="p">` + mustCompress(t, packedModel) + `</diagram>`, true, false, 3},
		{"uri encoded", `<diagram id="p">` + uriPayload + `</diagram>`, true, true, 3},
		{"escaped text", `<diagram id="p">` + escaped + `</diagram>`, false, false, 3},
		{"padded payload", "<diagram id=\"p\">\n  " + uriPayload + "\n</diagram>", true, true, 3},
		{"empty", `<diagram id="p"></diagram>`, false, false, 0},
		{"blank", "<diagram id=\"p\">  \n </diagram>", false, false, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := mustRead(t, `<mxfile>`+tt.diagram+`</mxfile>`, Options{})
			p := doc.Pages[0]
			if p.Compressed != tt.compressed || p.URIEncoded != tt.uri {
				t.Errorf("Compressed=%v URIEncoded=%v, want %v/%v", p.Compressed, p.URIEncoded, tt.compressed, tt.uri)
			}
			if p.Model.Len() != tt.cells {
				t.Errorf("cells = %d, want %d", p.Model.Len(), tt.cells)
			}
		})
	}
}

func TestURIEncodedPageStaysEncoded(t *testing.T) {
	data := `<mxfile><diagram id="p">` + mustCompress(t, encodeURIComponent(packedModel)) + `</diagram></mxfile>`
	doc := mustRead(t, data, Options{})
	if got := mustWrite(t, doc, Options{}); got != data {
		t.Errorf("got %s\nwant %s", got, data)
	}
}

func TestReadErrors(t *testing.T) {
	wrap := func(cells string) string {
		return `<mxfile><diagram id="p1"><mxGraphModel><root><mxCell id="0"/><mxCell id="1" parent="0"/>` +
			cells + `</root></mxGraphModel></diagram></mxfile>`
	}

	tests := []struct {
		name string
		data string
		opts Options
		code errors.Code
		page string
		cell string
		attr string
	}{
		{
			name: "not xml",
			data: `<mxfile><diagram`,
			code: errors.ErrCodeUnparseableXML,
		},
		{
			name: "empty input",
			data: "",
			code: errors.ErrCodeUnparseableXML,
		},
		{
			name: "wrong root",
			data: `<svg/>`,
			code: errors.ErrCodeUnrecognizedElement,
		},
		{
			name: "diagram without id",
			data: `<mxfile><diagram name="x"/></mxfile>`,
			code: errors.ErrCodeMissingAttribute,
			attr: "id",
		},
		{
			name: "cell without id",
			data: wrap(`<mxCell vertex="1" parent="1"/>`),
			code: errors.ErrCodeMissingAttribute,
			page: "p1",
			attr: "id",
		},
		{
			name: "duplicate page",
			data: `<mxfile><diagram id="p1"/><diagram id="p1"/></mxfile>`,
			code: errors.ErrCodeDuplicateID,
			page: "p1",
		},
		{
			name: "duplicate cell",
			data: wrap(`<mxCell id="1" parent="0"/>`),
			code: errors.ErrCodeDuplicateID,
			page: "p1",
			cell: "1",
		},
		{
			name: "bad base64",
			data: `<mxfile><diagram id="p1">!!not-base64!!</diagram></mxfile>`,
			code: errors.ErrCodeInvalidBase64,
			page: "p1",
		},
		{
			name: "broken inline xml",
			data: `<mxfile><diagram id="p1">&lt;mxGraphModel&gt;&lt;root&gt;</diagram></mxfile>`,
			code: errors.ErrCodeUnparseableXML,
			page: "p1",
		},
		{
			name: "expansion limit",
			data: `<mxfile><diagram id="p1">` + mustCompress(t, packedModel) + `</diagram></mxfile>`,
			opts: Options{MaxDecompressedSize: 16},
			code: errors.ErrCodeExpansionLimitExceeded,
			page: "p1",
		},
		{
			name: "wrong content element",
			data: `<mxfile><diagram id="p1"><svg/></diagram></mxfile>`,
			code: errors.ErrCodeUnrecognizedElement,
			page: "p1",
		},
		{
			name: "model without root",
			data: `<mxfile><diagram id="p1"><mxGraphModel/></diagram></mxfile>`,
			code: errors.ErrCodeUnrecognizedElement,
			page: "p1",
		},
		{
			name: "bad model attribute",
			data: `<mxfile><diagram id="p1"><mxGraphModel gridSize="big"><root/></mxGraphModel></diagram></mxfile>`,
			code: errors.ErrCodeInvalidAttribute,
			page: "p1",
			attr: "gridSize",
		},
		{
			name: "bad geometry number",
			data: wrap(`<mxCell id="a" vertex="1" parent="1"><mxGeometry x="abc" as="geometry"/></mxCell>`),
			code: errors.ErrCodeInvalidAttribute,
			page: "p1",
			cell: "a",
			attr: "x",
		},
		{
			name: "bad geometry inside wrapper",
			data: wrap(`<UserObject label="l" id="w"><mxCell vertex="1" parent="1"><mxGeometry width="wide" as="geometry"/></mxCell></UserObject>`),
			code: errors.ErrCodeInvalidAttribute,
			page: "p1",
			cell: "w",
			attr: "width",
		},
		{
			name: "bad vertex flag",
			data: wrap(`<mxCell id="a" vertex="yes" parent="1"/>`),
			code: errors.ErrCodeInvalidAttribute,
			page: "p1",
			cell: "a",
			attr: "vertex",
		},
		{
			name: "dangling source",
			data: wrap(`<mxCell id="e" edge="1" parent="1" source="ghost"><mxGeometry relative="1" as="geometry"/></mxCell>`),
			code: errors.ErrCodeValidationFailed,
			page: "p1",
			cell: "e",
			attr: "source",
		},
		{
			name: "unknown parent",
			data: wrap(`<mxCell id="a" vertex="1" parent="nowhere"><mxGeometry as="geometry"/></mxCell>`),
			code: errors.ErrCodeValidationFailed,
			page: "p1",
			cell: "a",
			attr: "parent",
		},
		{
			name: "vertex without geometry",
			data: wrap(`<mxCell id="a" vertex="1" parent="1"/>`),
			code: errors.ErrCodeValidationFailed,
			page: "p1",
			cell: "a",
			attr: "geometry",
		},
		{
			name: "negative limit",
			data: compact,
			opts: Options{MaxDecompressedSize: -1},
			code: errors.ErrCodeInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := UnmarshalDrawio([]byte(tt.data), tt.opts)
			if err == nil {
				t.Fatal("expected error")
			}
			if doc != nil {
				t.Error("partial document returned")
			}
			if !errors.Is(err, tt.code) {
				t.Fatalf("error = %v, want %s", err, tt.code)
			}
			var e *errors.Error
			if !stderrors.As(err, &e) {
				t.Fatalf("error %T is not *errors.Error", err)
			}
			if e.PageID != tt.page {
				t.Errorf("PageID = %q, want %q", e.PageID, tt.page)
			}
			if e.CellID != tt.cell {
				t.Errorf("CellID = %q, want %q", e.CellID, tt.cell)
			}
			if tt.attr != "" && e.Attr != tt.attr {
				t.Errorf("Attr = %q, want %q", e.Attr, tt.attr)
			}
		})
	}
}

func TestValidationErrorDetail(t *testing.T) {
	data := `<mxfile><diagram id="p1"><mxGraphModel><root><mxCell id="0"/>` +
		`<mxCell id="1" parent="0"/><mxCell id="a" vertex="1" parent="1"/>` +
		`<mxCell id="e" edge="1" parent="1" target="ghost"/></root></mxGraphModel></diagram></mxfile>`
	_, err := UnmarshalDrawio([]byte(data), Options{})

	var verr *model.ValidationError
	if !stderrors.As(err, &verr) {
		t.Fatalf("error %v does not carry a ValidationError", err)
	}
	if len(verr.Violations) != 2 {
		t.Fatalf("violations = %v, want 2", verr.Violations)
	}
	if verr.PageID != "p1" {
		t.Errorf("PageID = %q", verr.PageID)
	}
}

func TestWriteValidationFailure(t *testing.T) {
	doc := mustRead(t, compact, Options{})
	p, _ := doc.Page("p1")
	e, _ := p.Model.FindByID("e1")
	e.Target = "ghost"

	var buf bytes.Buffer
	err := WriteDrawio(doc, &buf, Options{})
	if !errors.Is(err, errors.ErrCodeSerializeValidationFailed) {
		t.Fatalf("error = %v, want SERIALIZE_VALIDATION_FAILED", err)
	}
	if !errors.Is(err, errors.ErrCodeValidationFailed) {
		t.Error("violation detail not wrapped")
	}
	if errors.CellOf(err) != "e1" {
		t.Errorf("CellOf = %q, want e1", errors.CellOf(err))
	}
	if buf.Len() != 0 {
		t.Errorf("wrote %d bytes after failure", buf.Len())
	}
}

func TestWriteStyleFailure(t *testing.T) {
	doc := mustRead(t, compact, Options{})
	p, _ := doc.Page("p1")
	a, _ := p.Model.FindByID("a")
	a.Style.Set("label", "semi;colon")

	_, err := MarshalDrawio(doc, Options{})
	if !errors.Is(err, errors.ErrCodeInvalidStyleValue) {
		t.Fatalf("error = %v, want INVALID_STYLE_VALUE", err)
	}
	var e *errors.Error
	stderrors.As(err, &e)
	if e.CellID != "a" || e.PageID != "p1" || e.Attr != "label" {
		t.Errorf("context = page %q cell %q attr %q", e.PageID, e.CellID, e.Attr)
	}
}

func TestCompressionModes(t *testing.T) {
	src := mustRead(t, twoPageDoc(t), Options{})

	tests := []struct {
		name       string
		mode       Compression
		compressed [2]bool
	}{
		{"preserve", CompressionPreserve, [2]bool{false, true}},
		{"always", CompressionAlways, [2]bool{true, true}},
		{"never", CompressionNever, [2]bool{false, false}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := mustWrite(t, src, Options{Compression: tt.mode})
			doc := mustRead(t, out, Options{})
			assertSameModels(t, src, doc)
			for i, want := range tt.compressed {
				if doc.Pages[i].Compressed != want {
					t.Errorf("page %d compressed = %v, want %v", i, doc.Pages[i].Compressed, want)
				}
			}
		})
	}
}

func TestNewlyCompressedPageIsPlainXML(t *testing.T) {
	src := mustRead(t, `<mxfile>`+plainPage+`</mxfile>`, Options{})
	out := mustWrite(t, src, Options{Compression: CompressionAlways})

	tree := etree.NewDocument()
	if err := tree.ReadFromString(out); err != nil {
		t.Fatalf("ReadFromString: %v", err)
	}
	diagram := tree.FindElement("//diagram")
	if diagram == nil {
		t.Fatal("no diagram element")
	}
	raw, err := compress.Decompress(diagram.Text())
	if err != nil {
		t.Fatalf("Decompress: %v", err)
	}
	if !strings.HasPrefix(string(raw), "<mxGraphModel") {
		t.Errorf("inflated payload = %.40q, want plain XML", raw)
	}

	doc := mustRead(t, out, Options{})
	if !doc.Pages[0].Compressed || doc.Pages[0].URIEncoded {
		t.Errorf("Compressed=%v URIEncoded=%v, want true/false", doc.Pages[0].Compressed, doc.Pages[0].URIEncoded)
	}
	assertSameModels(t, src, doc)
}

func TestIndent(t *testing.T) {
	src := mustRead(t, compact, Options{})
	out := mustWrite(t, src, Options{Indent: 2})
	if !strings.Contains(out, "\n  <diagram") {
		t.Errorf("output not indented:\n%s", out)
	}
	assertSameModels(t, src, mustRead(t, out, Options{}))
}

func TestBuildAndWrite(t *testing.T) {
	doc := model.NewDocument()
	p := doc.NewPage("Generated")
	layer := p.Model.DefaultLayer()
	a := model.NewShape(layer.ID, "A", nil)
	b := model.NewShape(layer.ID, "B", nil)
	e := model.NewEdge(layer.ID, a.ID, b.ID, nil)
	for _, c := range []*model.Cell{a, b, e} {
		if err := p.Model.AddCell(c); err != nil {
			t.Fatalf("AddCell: %v", err)
		}
	}

	out := mustWrite(t, doc, Options{Compression: CompressionNever})
	if !strings.Contains(out, `pageWidth="850"`) {
		t.Error("default page config not written")
	}
	if !strings.Contains(out, `value="" edge="1"`) {
		t.Errorf("fresh edge should carry an empty value attribute:\n%s", out)
	}
	again := mustRead(t, out, Options{})
	assertSameModels(t, doc, again)
}

func TestMarshalNilDocument(t *testing.T) {
	if _, err := MarshalDrawio(nil, Options{}); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("error = %v, want INVALID_INPUT", err)
	}
}

func TestMutationsSurviveRoundTrip(t *testing.T) {
	doc := mustRead(t, compact, Options{})
	p, _ := doc.Page("p1")
	g := p.Model

	if err := g.RenameCell("f1", "future"); err != nil {
		t.Fatalf("RenameCell: %v", err)
	}
	if err := g.SetParent("future", "g"); err != nil {
		t.Fatalf("SetParent: %v", err)
	}
	if err := g.RemoveCell("g", model.PromoteChildren); err != nil {
		t.Fatalf("RemoveCell: %v", err)
	}

	out := mustWrite(t, doc, Options{})
	if !strings.Contains(out, `<mxFutureThing id="future" parent="1" flavor="x">`) {
		t.Errorf("opaque element not updated:\n%s", out)
	}
	again := mustRead(t, out, Options{})
	assertSameModels(t, doc, again)
}

func TestImportExport(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "diagram.drawio")

	src := mustRead(t, compact, Options{})
	if err := ExportDrawio(src, path, Options{}); err != nil {
		t.Fatalf("ExportDrawio: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != compact {
		t.Errorf("exported file differs from source")
	}

	doc, err := ImportDrawio(path, Options{})
	if err != nil {
		t.Fatalf("ImportDrawio: %v", err)
	}
	assertSameModels(t, src, doc)

	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("temporary files left behind: %d entries", len(entries))
	}
}

func TestExportFailureKeepsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "diagram.drawio")
	if err := os.WriteFile(path, []byte(compact), 0o644); err != nil {
		t.Fatal(err)
	}

	doc := mustRead(t, compact, Options{})
	p, _ := doc.Page("p1")
	a, _ := p.Model.FindByID("a")
	a.Geometry = nil

	if err := ExportDrawio(doc, path, Options{}); !errors.Is(err, errors.ErrCodeSerializeValidationFailed) {
		t.Fatalf("error = %v, want SERIALIZE_VALIDATION_FAILED", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != compact {
		t.Error("existing file modified by failed export")
	}
}

func TestImportErrors(t *testing.T) {
	if _, err := ImportDrawio(filepath.Join(t.TempDir(), "missing.drawio"), Options{}); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("missing file error = %v, want NOT_FOUND", err)
	}
	if _, err := ImportDrawio("", Options{}); !errors.Is(err, errors.ErrCodeInvalidPath) {
		t.Errorf("empty path error = %v, want INVALID_PATH", err)
	}
}

func TestReadDrawio(t *testing.T) {
	doc, err := ReadDrawio(strings.NewReader(compact), Options{})
	if err != nil {
		t.Fatalf("ReadDrawio: %v", err)
	}
	if len(doc.Pages) != 2 {
		t.Errorf("pages = %d", len(doc.Pages))
	}
}

func TestParseCompression(t *testing.T) {
	for _, c := range []Compression{CompressionPreserve, CompressionAlways, CompressionNever} {
		got, err := ParseCompression(c.String())
		if err != nil || got != c {
			t.Errorf("ParseCompression(%q) = %v, %v", c.String(), got, err)
		}
	}
	if _, err := ParseCompression("sometimes"); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("error = %v, want INVALID_INPUT", err)
	}
	if Compression(9).String() != "unknown" {
		t.Error("out-of-range mode should print as unknown")
	}
}

func TestEncodeURIComponent(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"abc-_.!~*'()", "abc-_.!~*'()"},
		{`<a b="c">`, "%3Ca%20b%3D%22c%22%3E"},
		{"ü", "%C3%BC"},
		{"a+b/c", "a%2Bb%2Fc"},
	}
	for _, tt := range tests {
		got := encodeURIComponent(tt.in)
		if got != tt.want {
			t.Errorf("encodeURIComponent(%q) = %q, want %q", tt.in, got, tt.want)
		}
		back, err := decodeURIComponent(got)
		if err != nil || back != tt.in {
			t.Errorf("decodeURIComponent(%q) = %q, %v", got, back, err)
		}
	}
}
