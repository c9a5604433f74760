package style

import (
	"slices"
	"testing"

	"github.com/matzehuels/drawkit/pkg/errors"
)

func TestDecode(t *testing.T) {
	s := Decode("ellipse;whiteSpace=wrap;html=1;fillColor=#dae8fc;")

	want := []string{"ellipse", "whiteSpace", "html", "fillColor"}
	if got := s.Keys(); !slices.Equal(got, want) {
		t.Fatalf("Keys() = %v, want %v", got, want)
	}

	v, ok := s.Get("ellipse")
	if !ok || !v.Flag {
		t.Errorf("ellipse = %+v, want flag", v)
	}
	if got := s.Value("fillColor"); got != "#dae8fc" {
		t.Errorf("fillColor = %q", got)
	}
	if got := s.BaseName(); got != "ellipse" {
		t.Errorf("BaseName() = %q, want ellipse", got)
	}
}

func TestDecodeIgnoresEmptyTokens(t *testing.T) {
	s := Decode(";;a=1;;b;=orphan;")
	if got := s.Keys(); !slices.Equal(got, []string{"a", "b"}) {
		t.Errorf("Keys() = %v", got)
	}
}

func TestDecodeEmpty(t *testing.T) {
	s := Decode("")
	if s.Len() != 0 {
		t.Errorf("Len() = %d, want 0", s.Len())
	}
	out, err := Encode(s)
	if err != nil || out != "" {
		t.Errorf("Encode(empty) = %q, %v", out, err)
	}
}

func TestDecodeDuplicateKeysLastWins(t *testing.T) {
	tests := []struct {
		name  string
		input string
		keys  []string
		key   string
		want  Value
	}{
		{"value then value", "a=1;b=2;a=3", []string{"a", "b"}, "a", Value{Raw: "3"}},
		{"flag then value", "dashed;b=2;dashed=0", []string{"dashed", "b"}, "dashed", Value{Raw: "0"}},
		{"value then flag", "dashed=0;b=2;dashed", []string{"dashed", "b"}, "dashed", Value{Flag: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Decode(tt.input)
			if got := s.Keys(); !slices.Equal(got, tt.keys) {
				t.Errorf("Keys() = %v, want %v", got, tt.keys)
			}
			if got, _ := s.Get(tt.key); got != tt.want {
				t.Errorf("Get(%q) = %+v, want %+v", tt.key, got, tt.want)
			}
		})
	}
}

func TestEncodeIdempotence(t *testing.T) {
	inputs := []string{
		"rounded=0;whiteSpace=wrap;html=1;",
		"edgeStyle=orthogonalEdgeStyle;rounded=0;orthogonalLoop=1;jettySize=auto;html=1;exitX=0.5;exitY=0;",
		"text;html=1;align=center;verticalAlign=middle",
		"swimlane",
		";leading=1",
		"shape=image;image=data:image/png,iVBORw0KGgo=;",
		"group",
		"a=",
	}

	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			out, err := Encode(Decode(in))
			if err != nil {
				t.Fatalf("Encode error: %v", err)
			}
			if out != in {
				t.Errorf("Encode(Decode(%q)) = %q", in, out)
			}
		})
	}
}

func TestEncodeRejectsDelimiters(t *testing.T) {
	tests := []struct {
		name  string
		build func() *Style
	}{
		{"semicolon in value", func() *Style { s := New(); s.Set("label", "a;b"); return s }},
		{"equals in key", func() *Style { s := New(); s.Set("a=b", "1"); return s }},
		{"semicolon in key", func() *Style { s := New(); s.SetFlag("a;b"); return s }},
		{"empty key", func() *Style { s := New(); s.Set("", "1"); return s }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Encode(tt.build())
			if !errors.Is(err, errors.ErrCodeInvalidStyleValue) {
				t.Errorf("Encode error = %v, want %s", err, errors.ErrCodeInvalidStyleValue)
			}
		})
	}
}

func TestEncodeAllowsEqualsInValue(t *testing.T) {
	s := New()
	s.Set("image", "data:image/png,iVBORw0KGgo=")
	out, err := Encode(s)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if out != "image=data:image/png,iVBORw0KGgo=;" {
		t.Errorf("Encode = %q", out)
	}
	if got := Decode(out).Value("image"); got != "data:image/png,iVBORw0KGgo=" {
		t.Errorf("decoded value = %q", got)
	}
}

func TestSetKeepsPosition(t *testing.T) {
	s := Decode("a=1;b=2;c=3")
	s.Set("b", "20")
	s.Set("d", "4")

	out, err := Encode(s)
	if err != nil {
		t.Fatal(err)
	}
	if out != "a=1;b=20;c=3;d=4" {
		t.Errorf("Encode() = %q", out)
	}
}

func TestDelete(t *testing.T) {
	s := Decode("a=1;b=2;c=3;")
	if !s.Delete("b") {
		t.Fatal("Delete(b) = false")
	}
	if s.Delete("missing") {
		t.Error("Delete(missing) = true")
	}
	if got := s.Value("c"); got != "3" {
		t.Errorf("c = %q after delete", got)
	}
	if out := s.String(); out != "a=1;c=3;" {
		t.Errorf("String() = %q", out)
	}

	s.Set("b", "9")
	if out := s.String(); out != "a=1;c=3;b=9;" {
		t.Errorf("String() after re-add = %q", out)
	}
}

func TestTypedAccessors(t *testing.T) {
	s := Decode("rounded=1;dashed=0;html;opacity=50.5;arcSize=12;fontStyle=bold;shadow=true")

	boolTests := []struct {
		key    string
		want   bool
		wantOK bool
	}{
		{"rounded", true, true},
		{"dashed", false, true},
		{"html", true, true},
		{"shadow", true, true},
		{"fontStyle", false, false},
		{"missing", false, false},
	}
	for _, tt := range boolTests {
		got, ok := s.Bool(tt.key)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("Bool(%q) = %v, %v; want %v, %v", tt.key, got, ok, tt.want, tt.wantOK)
		}
	}

	if f, ok := s.Float("opacity"); !ok || f != 50.5 {
		t.Errorf("Float(opacity) = %v, %v", f, ok)
	}
	if _, ok := s.Float("html"); ok {
		t.Error("Float(flag) should not be ok")
	}
	if n, ok := s.Int("arcSize"); !ok || n != 12 {
		t.Errorf("Int(arcSize) = %v, %v", n, ok)
	}
	if _, ok := s.Int("opacity"); ok {
		t.Error("Int(50.5) should not be ok")
	}
}

func TestNewStyleTerminated(t *testing.T) {
	s := New()
	s.SetFlag("ellipse")
	s.SetBool("html", true)
	s.SetNumber("opacity", 75)

	if out := s.String(); out != "ellipse;html=1;opacity=75;" {
		t.Errorf("String() = %q", out)
	}
}

func TestMerge(t *testing.T) {
	preset := Decode("shape=rhombus;fillColor=#fff2cc;strokeColor=#d6b656;")
	cell := Decode("fillColor=#ffffff;html=1")

	merged := Merge(preset, cell)
	if out := merged.String(); out != "shape=rhombus;fillColor=#ffffff;strokeColor=#d6b656;html=1;" {
		t.Errorf("Merge() = %q", out)
	}
	if preset.Value("fillColor") != "#fff2cc" {
		t.Error("Merge mutated base")
	}

	if got := Merge(nil, cell); !Equal(got, cell) {
		t.Errorf("Merge(nil, cell) = %q", got.String())
	}
}

func TestCloneAndEqual(t *testing.T) {
	a := Decode("a=1;b")
	b := a.Clone()
	if !Equal(a, b) {
		t.Fatal("clone not equal")
	}
	b.Set("a", "2")
	if Equal(a, b) {
		t.Error("mutating clone changed original")
	}
	if !Equal(Decode("a=1;"), Decode("a=1")) {
		t.Error("Equal should ignore delimiter placement")
	}
	if Equal(Decode("a=1;b=2"), Decode("b=2;a=1")) {
		t.Error("Equal should respect order")
	}
}

func TestNilStyle(t *testing.T) {
	var s *Style
	if s.Len() != 0 || s.Has("a") || s.Keys() != nil || s.Map() != nil {
		t.Error("nil style should behave as empty")
	}
	for range s.All() {
		t.Error("nil style yielded an entry")
	}
	if out, err := Encode(s); out != "" || err != nil {
		t.Errorf("Encode(nil) = %q, %v", out, err)
	}
}
