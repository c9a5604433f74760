package model

import (
	"strconv"

	"github.com/matzehuels/drawkit/pkg/errors"
)

// Opt is an optional configuration value. Set distinguishes an explicit
// value from an absent one, so absent attributes stay absent on write.
type Opt[T bool | float64 | string] struct {
	Value T
	Set   bool
}

// Some returns a set option holding v.
func Some[T bool | float64 | string](v T) Opt[T] {
	return Opt[T]{Value: v, Set: true}
}

// Or returns the value when set and def otherwise.
func (o Opt[T]) Or(def T) T {
	if o.Set {
		return o.Value
	}
	return def
}

func (o Opt[T]) format() (string, bool) {
	if !o.Set {
		return "", false
	}
	switch v := any(o.Value).(type) {
	case bool:
		if v {
			return "1", true
		}
		return "0", true
	case float64:
		return FormatNumber(v), true
	case string:
		return v, true
	}
	return "", false
}

func (o *Opt[T]) parse(raw string) bool {
	switch p := any(&o.Value).(type) {
	case *bool:
		b, ok := ParseFlag(raw)
		if !ok {
			return false
		}
		*p = b
	case *float64:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return false
		}
		*p = f
	case *string:
		*p = raw
	}
	o.Set = true
	return true
}

// FormatNumber renders f in its shortest decimal form ("10", "0.5").
func FormatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// ParseFlag reads a drawio boolean attribute ("1"/"0", "true"/"false").
func ParseFlag(raw string) (value, ok bool) {
	switch raw {
	case "1", "true":
		return true, true
	case "0", "false":
		return false, true
	}
	return false, false
}

// Defaults applied by [PageConfig.WithDefaults] and used by readers of
// absent fields.
const (
	DefaultGridSize   = 10
	DefaultPageScale  = 1
	DefaultPageWidth  = 850
	DefaultPageHeight = 1100
)

// PageConfig holds the display settings stored on the mxGraphModel element.
//
// Every field is optional. Parsed pages keep exactly the attributes that
// were present; pages created with [NewPage] get the full default set, the
// way drawio writes new files.
type PageConfig struct {
	DX, DY     Opt[float64]
	Grid       Opt[bool]
	GridSize   Opt[float64]
	Guides     Opt[bool]
	Tooltips   Opt[bool]
	Connect    Opt[bool]
	Arrows     Opt[bool]
	Fold       Opt[bool]
	Page       Opt[bool]
	PageScale  Opt[float64]
	PageWidth  Opt[float64]
	PageHeight Opt[float64]
	Background Opt[string]
	Math       Opt[bool]
	Shadow     Opt[bool]

	Attrs Attrs // unrecognized mxGraphModel attributes
}

type optField interface {
	format() (string, bool)
	parse(string) bool
}

// fields lists the known attributes in the order drawio writes them.
func (c *PageConfig) fields() []struct {
	name string
	opt  optField
} {
	return []struct {
		name string
		opt  optField
	}{
		{"dx", &c.DX},
		{"dy", &c.DY},
		{"grid", &c.Grid},
		{"gridSize", &c.GridSize},
		{"guides", &c.Guides},
		{"tooltips", &c.Tooltips},
		{"connect", &c.Connect},
		{"arrows", &c.Arrows},
		{"fold", &c.Fold},
		{"page", &c.Page},
		{"pageScale", &c.PageScale},
		{"pageWidth", &c.PageWidth},
		{"pageHeight", &c.PageHeight},
		{"background", &c.Background},
		{"math", &c.Math},
		{"shadow", &c.Shadow},
	}
}

// DefaultPageConfig returns a configuration with every field set to the
// value drawio uses for new pages. Background is left unset.
func DefaultPageConfig() PageConfig {
	return PageConfig{}.WithDefaults()
}

// WithDefaults returns a copy of c with unset fields filled in.
func (c PageConfig) WithDefaults() PageConfig {
	fill := func(o *Opt[bool], v bool) {
		if !o.Set {
			*o = Some(v)
		}
	}
	fillNum := func(o *Opt[float64], v float64) {
		if !o.Set {
			*o = Some(v)
		}
	}
	fillNum(&c.DX, 0)
	fillNum(&c.DY, 0)
	fill(&c.Grid, true)
	fillNum(&c.GridSize, DefaultGridSize)
	fill(&c.Guides, true)
	fill(&c.Tooltips, true)
	fill(&c.Connect, true)
	fill(&c.Arrows, true)
	fill(&c.Fold, true)
	fill(&c.Page, true)
	fillNum(&c.PageScale, DefaultPageScale)
	fillNum(&c.PageWidth, DefaultPageWidth)
	fillNum(&c.PageHeight, DefaultPageHeight)
	fill(&c.Math, false)
	fill(&c.Shadow, false)
	c.Attrs = c.Attrs.Clone()
	return c
}

// ParsePageConfig reads mxGraphModel attributes. Unknown attributes are kept
// in order in Attrs. A known attribute with a malformed value fails with
// INVALID_ATTRIBUTE.
func ParsePageConfig(attrs Attrs) (PageConfig, error) {
	var c PageConfig
	fields := c.fields()
	for _, a := range attrs {
		known := false
		for _, f := range fields {
			if f.name != a.Name {
				continue
			}
			known = true
			if !f.opt.parse(a.Value) {
				return PageConfig{}, errors.New(errors.ErrCodeInvalidAttribute,
					"mxGraphModel attribute %s=%q is malformed", a.Name, a.Value).WithAttr(a.Name)
			}
			break
		}
		if !known {
			c.Attrs = append(c.Attrs, a)
		}
	}
	return c, nil
}

// ToAttrs renders the set fields followed by the unrecognized attributes.
func (c PageConfig) ToAttrs() Attrs {
	var out Attrs
	for _, f := range c.fields() {
		if v, ok := f.opt.format(); ok {
			out = append(out, Attr{Name: f.name, Value: v})
		}
	}
	return append(out, c.Attrs...)
}
