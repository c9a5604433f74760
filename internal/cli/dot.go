package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/drawkit/pkg/pipeline"
)

// dotOpts holds options for the dot command.
type dotOpts struct {
	output     string
	format     string
	page       string
	engine     string
	detailed   bool
	positioned bool
	colors     bool
	scale      float64
	refresh    bool
}

// dotCommand creates the dot command for node-link previews of a page.
func (c *CLI) dotCommand() *cobra.Command {
	var opts dotOpts

	cmd := &cobra.Command{
		Use:   "dot <file>",
		Short: "Preview a page as a Graphviz node-link diagram",
		Long: `Preview a page as a Graphviz node-link diagram.

Shapes become nodes, groups become clusters and edges become arrows. The
output format follows the extension of --output (.dot, .svg, .png, .pdf or
.json) unless --format is given. Without --output the DOT source is printed.

PNG and PDF output require rsvg-convert (librsvg).`,
		Example: `  drawkit dot architecture.drawio
  drawkit dot architecture.drawio --page "Backend" -o backend.svg
  drawkit dot architecture.drawio --engine neato --positioned --colors -o layout.png`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runDot(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: DOT on stdout)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "output format: dot, svg, png, pdf, json")
	cmd.Flags().StringVarP(&opts.page, "page", "p", "", "page id or name (default: first page)")
	cmd.Flags().StringVarP(&opts.engine, "engine", "e", pipeline.DefaultEngine, "layout engine: dot, neato")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "show cell ids and base styles under labels")
	cmd.Flags().BoolVar(&opts.positioned, "positioned", false, "pin nodes to their drawio coordinates")
	cmd.Flags().BoolVar(&opts.colors, "colors", false, "copy fill and stroke colors from styles")
	cmd.Flags().Float64Var(&opts.scale, "scale", pipeline.DefaultScale, "PNG resolution multiplier")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "bypass cached results")

	return cmd
}

func (c *CLI) runDot(cmd *cobra.Command, path string, opts dotOpts) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	format, err := outputFormat(opts.format, opts.output)
	if err != nil {
		return err
	}

	data, err := readInput(cmd, path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	runner, err := c.newRunner(ctx)
	if err != nil {
		return err
	}
	defer runner.Close()

	popts := c.pipelineOptions(path)
	popts.PageID = opts.page
	popts.Engine = opts.engine
	popts.Detailed = opts.detailed
	popts.Positioned = opts.positioned
	popts.Colors = opts.colors
	popts.Scale = opts.scale
	popts.Formats = []string{format}
	popts.Refresh = opts.refresh

	prog := newProgress(logger)
	layout, layoutCached, err := runner.LayoutWithCacheInfo(ctx, data, popts)
	if err != nil {
		return err
	}
	artifacts, renderCached, err := runner.RenderWithCacheInfo(ctx, layout, popts)
	if err != nil {
		return err
	}

	if opts.output == "" {
		_, err := cmd.OutOrStdout().Write(artifacts[format])
		return err
	}
	if err := os.WriteFile(opts.output, artifacts[format], 0o644); err != nil {
		return fmt.Errorf("write %s: %w", opts.output, err)
	}
	prog.done("Rendered page", "page", layout.PageID, "format", format)

	p := newPrinter(cmd.OutOrStdout())
	p.success("Rendered page %s", StyleHighlight.Render(layout.PageID))
	p.stats(1, len(layout.Nodes)+len(layout.Edges), layoutCached && renderCached)
	p.file(opts.output)
	return nil
}

// outputFormat picks the render format from an explicit flag or the
// extension of the output path.
func outputFormat(format, output string) (string, error) {
	if format == "" {
		format = strings.TrimPrefix(strings.ToLower(filepath.Ext(output)), ".")
	}
	if format == "" {
		format = pipeline.FormatDOT
	}
	if err := pipeline.ValidateFormat(format); err != nil {
		return "", err
	}
	return format, nil
}
