package cli

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/drawkit/pkg/graph"
)

// inspectOpts holds options for the inspect command.
type inspectOpts struct {
	json    bool
	refresh bool
}

// inspectCommand creates the inspect command for summarizing a document.
func (c *CLI) inspectCommand() *cobra.Command {
	var opts inspectOpts

	cmd := &cobra.Command{
		Use:   "inspect <file>",
		Short: "Summarize the pages and cells of a drawio document",
		Long: `Summarize the pages and cells of a drawio document.

Compressed pages are inflated and every page is validated before the summary
is printed. Use --json for the node-link summary used by the HTTP API.`,
		Example: `  drawkit inspect architecture.drawio
  drawkit inspect --json architecture.drawio | jq '.pages[0].counts'
  cat diagram.drawio | drawkit inspect -`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runInspect(cmd, args[0], opts)
		},
	}

	cmd.Flags().BoolVar(&opts.json, "json", false, "print the JSON summary")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "bypass cached results")

	return cmd
}

func (c *CLI) runInspect(cmd *cobra.Command, path string, opts inspectOpts) error {
	ctx := cmd.Context()

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
	popts.Refresh = opts.refresh
	g, cached, err := runner.InspectWithCacheInfo(ctx, data, popts)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if opts.json {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(g)
	}

	p := newPrinter(out)
	p.line(StyleTitle.Render(path))
	p.stats(len(g.Pages), totalCells(g), cached)
	p.line("")
	p.line(pageTable(g.Pages))
	p.line("")
	p.nextStep("Preview a page", "drawkit dot "+path+" -o page.svg")
	return nil
}

// pageTable renders one row per page with its cell counts by kind.
func pageTable(pages []graph.Page) string {
	rows := make([][]string, 0, len(pages))
	for _, pg := range pages {
		stored := "plain"
		if pg.Compressed {
			stored = "compressed"
		}
		rows = append(rows, []string{
			pg.ID,
			pg.Name,
			strconv.Itoa(len(pg.Layers)),
			strconv.Itoa(pg.Counts[graph.KindShape]),
			strconv.Itoa(pg.Counts[graph.KindGroup]),
			strconv.Itoa(len(pg.Edges)),
			strconv.Itoa(pg.Counts[graph.KindOpaque]),
			stored,
		})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Page", "Name", "Layers", "Shapes", "Groups", "Edges", "Opaque", "Stored").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == -1:
				return headerStyle
			case col == 0:
				return StyleHighlight
			case col == 7:
				return StyleDim
			}
			return StyleValue
		})
	return t.Render()
}

func totalCells(g graph.Graph) int {
	n := 0
	for _, pg := range g.Pages {
		for _, count := range pg.Counts {
			n += count
		}
	}
	return n
}
