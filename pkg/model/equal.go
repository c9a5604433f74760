package model

import (
	"slices"

	"github.com/matzehuels/drawkit/pkg/style"
)

// Equal reports whether a and b hold structurally equal cells in the same
// order: same ids, kinds, parents, endpoints, labels, tags, decoded styles,
// geometry and passthrough data. Delimiter placement inside style strings
// and recorded attribute order are ignored.
func Equal(a, b *GraphModel) bool {
	if a.Len() != b.Len() {
		return false
	}
	ac, bc := a.Cells(), b.Cells()
	for i := range ac {
		if !CellEqual(ac[i], bc[i]) {
			return false
		}
	}
	return true
}

// CellEqual reports whether two cells are structurally equal.
func CellEqual(a, b *Cell) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.ID == b.ID &&
		a.Parent == b.Parent &&
		a.Kind == b.Kind &&
		a.Value == b.Value &&
		a.Source == b.Source &&
		a.Target == b.Target &&
		style.Equal(a.Style, b.Style) &&
		slices.Equal(a.Tags, b.Tags) &&
		slices.Equal(a.Attrs, b.Attrs) &&
		a.Extra == b.Extra &&
		geometryEqual(a.Geometry, b.Geometry) &&
		wrapperEqual(a.Wrapper, b.Wrapper) &&
		opaqueEqual(a.Opaque, b.Opaque)
}

func geometryEqual(a, b *Geometry) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.X == b.X && a.Y == b.Y &&
		a.Width == b.Width && a.Height == b.Height &&
		a.Relative == b.Relative &&
		pointEqual(a.SourcePoint, b.SourcePoint) &&
		pointEqual(a.TargetPoint, b.TargetPoint) &&
		pointEqual(a.Offset, b.Offset) &&
		(a.Points == nil) == (b.Points == nil) &&
		slices.Equal(a.Points, b.Points) &&
		slices.Equal(a.Attrs, b.Attrs) &&
		a.Extra == b.Extra
}

func pointEqual(a, b *Point) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func wrapperEqual(a, b *Wrapper) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Tag == b.Tag && slices.Equal(a.Attrs, b.Attrs) && a.Extra == b.Extra
}

func opaqueEqual(a, b *Opaque) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Tag == b.Tag && a.Anonymous == b.Anonymous &&
		a.Inner == b.Inner && slices.Equal(a.Attrs, b.Attrs)
}
