package model

import (
	"slices"
	"testing"

	"github.com/matzehuels/drawkit/pkg/errors"
)

func TestParsePageConfig(t *testing.T) {
	attrs := Attrs{
		{"dx", "1422"},
		{"dy", "794"},
		{"grid", "0"},
		{"gridSize", "10"},
		{"page", "1"},
		{"pageWidth", "827"},
		{"background", "#FFFFFF"},
		{"adaptiveColors", "auto"},
	}
	c, err := ParsePageConfig(attrs)
	if err != nil {
		t.Fatal(err)
	}

	if !c.DX.Set || c.DX.Value != 1422 {
		t.Errorf("DX = %+v", c.DX)
	}
	if !c.Grid.Set || c.Grid.Value {
		t.Errorf("Grid = %+v", c.Grid)
	}
	if c.PageWidth.Or(DefaultPageWidth) != 827 {
		t.Errorf("PageWidth = %+v", c.PageWidth)
	}
	if c.PageHeight.Set || c.PageHeight.Or(DefaultPageHeight) != DefaultPageHeight {
		t.Errorf("absent PageHeight = %+v", c.PageHeight)
	}
	if c.Background.Value != "#FFFFFF" {
		t.Errorf("Background = %+v", c.Background)
	}
	if !slices.Equal(c.Attrs, Attrs{{"adaptiveColors", "auto"}}) {
		t.Errorf("Attrs = %v", c.Attrs)
	}

	// Absent attributes stay absent, known ones come out in drawio order.
	want := Attrs{
		{"dx", "1422"},
		{"dy", "794"},
		{"grid", "0"},
		{"gridSize", "10"},
		{"page", "1"},
		{"pageWidth", "827"},
		{"background", "#FFFFFF"},
		{"adaptiveColors", "auto"},
	}
	if got := c.ToAttrs(); !slices.Equal(got, want) {
		t.Errorf("ToAttrs() = %v\nwant %v", got, want)
	}
}

func TestParsePageConfigErrors(t *testing.T) {
	tests := []struct {
		name  string
		attrs Attrs
	}{
		{"bad flag", Attrs{{"grid", "yes"}}},
		{"bad number", Attrs{{"gridSize", "ten"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParsePageConfig(tt.attrs)
			if !errors.Is(err, errors.ErrCodeInvalidAttribute) {
				t.Fatalf("error = %v, want INVALID_ATTRIBUTE", err)
			}
			if e, ok := err.(*errors.Error); !ok || e.Attr != tt.attrs[0].Name {
				t.Errorf("error %v does not name attribute %s", err, tt.attrs[0].Name)
			}
		})
	}
}

func TestDefaultPageConfig(t *testing.T) {
	c := DefaultPageConfig()
	want := Attrs{
		{"dx", "0"},
		{"dy", "0"},
		{"grid", "1"},
		{"gridSize", "10"},
		{"guides", "1"},
		{"tooltips", "1"},
		{"connect", "1"},
		{"arrows", "1"},
		{"fold", "1"},
		{"page", "1"},
		{"pageScale", "1"},
		{"pageWidth", "850"},
		{"pageHeight", "1100"},
		{"math", "0"},
		{"shadow", "0"},
	}
	if got := c.ToAttrs(); !slices.Equal(got, want) {
		t.Errorf("ToAttrs() = %v\nwant %v", got, want)
	}
}

func TestWithDefaultsKeepsExplicit(t *testing.T) {
	c := PageConfig{GridSize: Some(20.0), Grid: Some(false)}.WithDefaults()
	if c.GridSize.Value != 20 || c.Grid.Value {
		t.Errorf("explicit values overwritten: %+v %+v", c.GridSize, c.Grid)
	}
	if !c.Guides.Set || !c.Guides.Value {
		t.Errorf("Guides not defaulted: %+v", c.Guides)
	}
}

func TestFormatNumber(t *testing.T) {
	tests := map[float64]string{
		0:      "0",
		10:     "10",
		0.5:    "0.5",
		-12.25: "-12.25",
		1e6:    "1000000",
	}
	for in, want := range tests {
		if got := FormatNumber(in); got != want {
			t.Errorf("FormatNumber(%v) = %q, want %q", in, got, want)
		}
	}
}
