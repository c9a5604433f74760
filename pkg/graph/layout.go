package graph

import (
	"encoding/json"
	"fmt"
	"os"
)

// =============================================================================
// Layout - Rendered Page
// =============================================================================

// Layout is the serialized result of rendering one page as a node-link
// diagram. It is what the pipeline caches and the API returns.
//
// DOT always holds the Graphviz source. SVG is set once the source has been
// laid out by an engine.
type Layout struct {
	VizType string `json:"viz_type" bson:"viz_type"`
	PageID  string `json:"page_id" bson:"page_id"`

	// Frame of the original page, from its vertex bounds.
	Width  float64 `json:"width" bson:"width"`
	Height float64 `json:"height" bson:"height"`

	Nodes []Node `json:"nodes,omitempty" bson:"nodes,omitempty"`
	Edges []Edge `json:"edges,omitempty" bson:"edges,omitempty"`

	DOT    string `json:"dot" bson:"dot"`
	Engine string `json:"engine,omitempty" bson:"engine,omitempty"`
	SVG    []byte `json:"svg,omitempty" bson:"svg,omitempty"`
}

// IsNodelink returns true if this is a node-link layout.
func (l *Layout) IsNodelink() bool { return l.VizType == VizTypeNodelink }

// Rendered returns true if the layout carries engine output.
func (l *Layout) Rendered() bool { return len(l.SVG) > 0 }

// =============================================================================
// Layout Serialization API
// =============================================================================

// MarshalLayout serializes a Layout to pretty-printed JSON bytes.
func MarshalLayout(l Layout) ([]byte, error) {
	return json.MarshalIndent(l, "", "  ")
}

// UnmarshalLayout deserializes JSON bytes into a Layout.
// Validates that required fields are present.
func UnmarshalLayout(data []byte) (Layout, error) {
	var l Layout
	if err := json.Unmarshal(data, &l); err != nil {
		return Layout{}, fmt.Errorf("unmarshal layout: %w", err)
	}

	if l.VizType == "" {
		l.VizType = VizTypeNodelink
	}
	if !l.IsNodelink() {
		return Layout{}, fmt.Errorf("unsupported layout type %q", l.VizType)
	}
	if l.DOT == "" {
		return Layout{}, fmt.Errorf("nodelink layout must contain DOT string")
	}

	return l, nil
}

// WriteLayoutFile writes a Layout to a JSON file.
func WriteLayoutFile(l Layout, path string) error {
	data, err := MarshalLayout(l)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ReadLayoutFile reads a Layout from a JSON file.
func ReadLayoutFile(path string) (Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Layout{}, fmt.Errorf("read %s: %w", path, err)
	}
	return UnmarshalLayout(data)
}
