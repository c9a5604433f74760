// Package pipeline runs drawio documents through decode, validate, convert
// and render stages with caching.
//
// Both the CLI and the HTTP server drive documents through a [Runner], so
// caching, logging and observability hooks behave the same for every entry
// point.
//
// # Stages
//
//  1. Decode: parse drawio XML into a model.Document
//  2. Inspect / Validate: summarize the document or list its violations
//  3. Convert: re-serialize with different storage options
//  4. Layout / Render: draw one page as a node-link diagram
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	summary, err := runner.Inspect(ctx, data, pipeline.Options{Source: "arch.drawio"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	layout, err := runner.Layout(ctx, data, pipeline.Options{PageID: "p1"})
//	artifacts, err := runner.Render(ctx, layout, pipeline.Options{Formats: []string{"svg"}})
//	svg := artifacts["svg"]
package pipeline

import (
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/drawkit/pkg/cache"
	"github.com/matzehuels/drawkit/pkg/compress"
	"github.com/matzehuels/drawkit/pkg/graph"
	drawio "github.com/matzehuels/drawkit/pkg/io"
	"github.com/matzehuels/drawkit/pkg/render/nodelink"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultCompression keeps each page's original storage form.
	DefaultCompression = "preserve"

	// DefaultEngine is the Graphviz layout engine.
	DefaultEngine = graph.EngineDot

	// DefaultScale is the PNG resolution multiplier.
	DefaultScale = 2.0

	// DefaultConcurrency bounds parallel documents in batch operations.
	DefaultConcurrency = 8
)

// Format constants for output formats.
const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
	FormatDOT  = "dot"
	FormatJSON = "json"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:  true,
	FormatPNG:  true,
	FormatPDF:  true,
	FormatDOT:  true,
	FormatJSON: true,
}

// ValidEngines is the set of supported layout engines.
var ValidEngines = map[string]bool{
	graph.EngineDot:   true,
	graph.EngineNeato: true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for pipeline stages.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Source names the document in logs and hooks, e.g. its file path.
	Source string `json:"source,omitempty"`

	// Decode / encode options
	Compression         string `json:"compression,omitempty"` // preserve, always or never
	MaxDecompressedSize int64  `json:"max_decompressed_size,omitempty"`
	Indent              int    `json:"indent,omitempty"`

	// Layout options
	PageID     string `json:"page_id,omitempty"` // empty selects the first page
	Engine     string `json:"engine,omitempty"`
	Detailed   bool   `json:"detailed,omitempty"`
	Positioned bool   `json:"positioned,omitempty"`
	Colors     bool   `json:"colors,omitempty"`

	// Render options
	Formats []string `json:"formats,omitempty"`
	Scale   float64  `json:"scale,omitempty"`

	// Refresh skips cache reads; results are still written back.
	Refresh bool `json:"refresh,omitempty"`

	// Concurrency bounds parallel documents in batch operations.
	Concurrency int `json:"-"`

	// Logger overrides the runner's logger for one call.
	Logger *log.Logger `json:"-"`
}

// SetDefaults fills in unset fields. It is idempotent.
func (o *Options) SetDefaults() {
	if o.Source == "" {
		o.Source = "<input>"
	}
	if o.Compression == "" {
		o.Compression = DefaultCompression
	}
	if o.MaxDecompressedSize == 0 {
		o.MaxDecompressedSize = compress.DefaultMaxDecompressedSize
	}
	if o.Engine == "" {
		o.Engine = DefaultEngine
	}
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.Scale == 0 {
		o.Scale = DefaultScale
	}
	if o.Concurrency <= 0 {
		o.Concurrency = DefaultConcurrency
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// Validate checks option values after defaults are applied.
func (o *Options) Validate() error {
	if _, err := drawio.ParseCompression(o.Compression); err != nil {
		return err
	}
	if o.MaxDecompressedSize < 0 {
		return fmt.Errorf("max_decompressed_size must not be negative")
	}
	if o.Indent < 0 {
		return fmt.Errorf("indent must not be negative")
	}
	if err := ValidateEngine(o.Engine); err != nil {
		return err
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if o.Scale < 0 {
		return fmt.Errorf("scale must not be negative")
	}
	return nil
}

// ValidateAndSetDefaults applies defaults and validates.
func (o *Options) ValidateAndSetDefaults() error {
	o.SetDefaults()
	return o.Validate()
}

// IOOptions returns the reader and writer options.
func (o *Options) IOOptions() drawio.Options {
	c, _ := drawio.ParseCompression(o.Compression)
	return drawio.Options{
		MaxDecompressedSize: o.MaxDecompressedSize,
		Compression:         c,
		Indent:              o.Indent,
	}
}

// RenderOptions returns the node-link renderer options.
func (o *Options) RenderOptions() nodelink.Options {
	return nodelink.Options{
		Detailed:   o.Detailed,
		Positioned: o.Positioned,
		Colors:     o.Colors,
	}
}

// LayoutKeyOpts returns cache key options for layout computation.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		PageID:     o.PageID,
		Engine:     o.Engine,
		Detailed:   o.Detailed,
		Positioned: o.Positioned,
		Colors:     o.Colors,
	}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	opts := cache.ArtifactKeyOpts{Format: format}
	if format == FormatPNG {
		opts.Scale = o.Scale
	}
	return opts
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return fmt.Errorf("invalid format: %q (must be one of: svg, png, pdf, dot, json)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateEngine checks that a layout engine is valid.
func ValidateEngine(engine string) error {
	if !ValidEngines[engine] {
		return fmt.Errorf("invalid engine: %q (must be one of: dot, neato)", engine)
	}
	return nil
}
