package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/drawkit/pkg/pipeline"
)

// errInvalidDocuments is returned when at least one document fails validation.
var errInvalidDocuments = errors.New("invalid documents")

// validateOpts holds options for the validate command.
type validateOpts struct {
	json        bool
	concurrency int
	quiet       bool
}

// validateCommand creates the validate command for batch integrity checks.
func (c *CLI) validateCommand() *cobra.Command {
	var opts validateOpts

	cmd := &cobra.Command{
		Use:   "validate <file>...",
		Short: "Check drawio documents for integrity violations",
		Long: `Check drawio documents for integrity violations.

Each document is decoded and every page is checked for duplicate ids, missing
or cyclic parents and edges that reference missing cells. The command exits
non-zero when any document is invalid.`,
		Example: `  drawkit validate diagrams/*.drawio
  drawkit validate --json broken.drawio`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runValidate(cmd, args, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.json, "json", false, "print reports as JSON")
	cmd.Flags().IntVarP(&opts.concurrency, "concurrency", "j", pipeline.DefaultConcurrency, "documents checked in parallel")
	cmd.Flags().BoolVarP(&opts.quiet, "quiet", "q", false, "only print invalid documents")

	return cmd
}

func (c *CLI) runValidate(cmd *cobra.Command, paths []string, opts validateOpts) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	runner, err := c.newRunner(ctx)
	if err != nil {
		return err
	}
	defer runner.Close()

	popts := c.pipelineOptions("")
	popts.Concurrency = opts.concurrency

	p := newPrinter(cmd.OutOrStdout())
	prog := newProgress(logger)
	spinner := newSpinnerWithContext(ctx, cmd.ErrOrStderr(), p, fmt.Sprintf("Validating %s...", plural(len(paths), "document")))
	if !opts.json {
		spinner.Start()
	}
	reports, err := runner.ValidateFiles(ctx, paths, popts)
	spinner.Stop()
	if err != nil {
		return err
	}
	invalid := 0
	for _, rep := range reports {
		if !rep.Valid {
			invalid++
		}
	}
	prog.done("Validated documents", "count", len(reports), "invalid", invalid)

	if opts.json {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if err := enc.Encode(reports); err != nil {
			return err
		}
	} else {
		for _, rep := range reports {
			printReport(p, rep, opts.quiet)
		}
		if len(reports) > 1 {
			p.line("")
			if invalid == 0 {
				p.success("All %s valid", plural(len(reports), "document"))
			} else {
				p.error("%d of %s invalid", invalid, plural(len(reports), "document"))
			}
		}
	}

	if invalid > 0 {
		return errInvalidDocuments
	}
	return nil
}

func printReport(p printer, rep pipeline.Report, quiet bool) {
	if rep.Valid {
		if !quiet {
			p.success("%s", rep.Source)
			p.detail("%s · %s", plural(rep.Pages, "page"), plural(rep.Cells, "cell"))
		}
		return
	}

	p.error("%s", rep.Source)
	p.detail("%s: %s", rep.Code, rep.Message)
	for _, v := range rep.Violations {
		p.line("    " + StyleHighlight.Render(string(v.Kind)) + " " + v.String())
	}
}
