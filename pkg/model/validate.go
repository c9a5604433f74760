package model

import (
	"fmt"
	"strings"

	"github.com/matzehuels/drawkit/pkg/errors"
)

// ViolationKind classifies an integrity problem.
type ViolationKind string

// Violation kinds reported by [Check].
const (
	ViolationOrphanParent      ViolationKind = "orphan_parent"
	ViolationCycle             ViolationKind = "cycle"
	ViolationDuplicateID       ViolationKind = "duplicate_id"
	ViolationDanglingReference ViolationKind = "dangling_reference"
	ViolationMissingGeometry   ViolationKind = "missing_geometry"
)

// Violation is one integrity problem found in a model.
type Violation struct {
	Kind   ViolationKind `json:"kind"`
	CellID string        `json:"cell_id"`
	Attr   string        `json:"attr,omitempty"` // parent, source, target, id or geometry
	Ref    string        `json:"ref,omitempty"`  // the reference that failed to resolve
}

func (v Violation) String() string {
	switch v.Kind {
	case ViolationOrphanParent:
		if v.Ref == "" {
			return fmt.Sprintf("cell %q has no parent", v.CellID)
		}
		return fmt.Sprintf("cell %q has unknown parent %q", v.CellID, v.Ref)
	case ViolationCycle:
		return fmt.Sprintf("cell %q is part of a parent cycle", v.CellID)
	case ViolationDuplicateID:
		return fmt.Sprintf("cell id %q is used more than once", v.CellID)
	case ViolationDanglingReference:
		return fmt.Sprintf("cell %q has unknown %s %q", v.CellID, v.Attr, v.Ref)
	case ViolationMissingGeometry:
		return fmt.Sprintf("cell %q has no geometry", v.CellID)
	}
	return fmt.Sprintf("cell %q: %s", v.CellID, v.Kind)
}

// ValidationError lists every violation found in one model.
type ValidationError struct {
	PageID     string
	Violations []Violation
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		parts[i] = v.String()
	}
	return strings.Join(parts, "; ")
}

// Check returns every integrity violation in g. It never modifies g.
//
// Violations are reported per cell in insertion order, followed by parent
// cycles. Absent source and target references are legal; only present
// references that do not resolve are reported.
func Check(g *GraphModel) []Violation {
	if g.Len() == 0 {
		return nil
	}

	// Index by the cells' current ids rather than the model index, since
	// fields may have been edited after insertion.
	byID := make(map[string]*Cell, len(g.cells))
	var out []Violation
	for _, c := range g.cells {
		if _, dup := byID[c.ID]; dup {
			out = append(out, Violation{Kind: ViolationDuplicateID, CellID: c.ID, Attr: "id"})
			continue
		}
		byID[c.ID] = c
	}

	for _, c := range g.cells {
		switch {
		case c.Kind == KindRoot:
		case c.Parent == "":
			if c.Kind != KindOpaque {
				out = append(out, Violation{Kind: ViolationOrphanParent, CellID: c.ID, Attr: "parent"})
			}
		case byID[c.Parent] == nil:
			out = append(out, Violation{Kind: ViolationOrphanParent, CellID: c.ID, Attr: "parent", Ref: c.Parent})
		}

		if c.Source != "" && byID[c.Source] == nil {
			out = append(out, Violation{Kind: ViolationDanglingReference, CellID: c.ID, Attr: "source", Ref: c.Source})
		}
		if c.Target != "" && byID[c.Target] == nil {
			out = append(out, Violation{Kind: ViolationDanglingReference, CellID: c.ID, Attr: "target", Ref: c.Target})
		}

		if c.Kind.RequiresGeometry() && c.Geometry == nil {
			out = append(out, Violation{Kind: ViolationMissingGeometry, CellID: c.ID, Attr: "geometry"})
		}
	}

	return append(out, findCycles(g.cells, byID)...)
}

// findCycles colours cells while walking up parent chains. Reaching a cell
// that is still on the current path means the chain loops; the cell where
// the loop closes is reported once.
func findCycles(cells []*Cell, byID map[string]*Cell) []Violation {
	const (
		unvisited = iota
		visiting
		done
	)
	state := make(map[string]int, len(cells))
	var out []Violation

	for _, start := range cells {
		var path []string
		cur := start.ID
		for {
			s := state[cur]
			if s == done {
				break
			}
			if s == visiting {
				out = append(out, Violation{Kind: ViolationCycle, CellID: cur, Attr: "parent"})
				break
			}
			state[cur] = visiting
			path = append(path, cur)

			c := byID[cur]
			if c == nil || c.Parent == "" || byID[c.Parent] == nil {
				break
			}
			cur = c.Parent
		}
		for _, id := range path {
			state[id] = done
		}
	}
	return out
}

// Validate checks g and returns a VALIDATION_FAILED error wrapping a
// [*ValidationError] when any violation is found. The error's cell and
// attribute context come from the first violation.
func Validate(g *GraphModel) error {
	return validate(g, "")
}

func validate(g *GraphModel, pageID string) error {
	violations := Check(g)
	if len(violations) == 0 {
		return nil
	}
	first := violations[0]
	verr := &ValidationError{PageID: pageID, Violations: violations}
	return errors.Wrap(errors.ErrCodeValidationFailed, verr, "%d integrity violation(s)", len(violations)).
		WithPage(pageID).
		WithCell(first.CellID).
		WithAttr(first.Attr)
}
