package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	drawio "github.com/matzehuels/drawkit/pkg/io"
)

// convertOpts holds options for the convert command.
type convertOpts struct {
	output     string
	compress   bool
	decompress bool
	pretty     bool
}

// convertCommand creates the convert command for rewriting documents.
func (c *CLI) convertCommand() *cobra.Command {
	var opts convertOpts

	cmd := &cobra.Command{
		Use:   "convert <file>",
		Short: "Rewrite a drawio document",
		Long: `Rewrite a drawio document.

By default each page keeps the storage form it was read with, so unchanged
documents are written back byte for byte. --decompress inflates every page to
plain XML, which is easier to diff and review; --compress does the reverse.`,
		Example: `  drawkit convert --decompress diagram.drawio -o diagram.plain.drawio
  drawkit convert --compress --pretty=false diagram.drawio > packed.drawio`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runConvert(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().BoolVar(&opts.compress, "compress", false, "store every page compressed")
	cmd.Flags().BoolVar(&opts.decompress, "decompress", false, "store every page as plain XML")
	cmd.Flags().BoolVar(&opts.pretty, "pretty", false, "indent newly written XML")
	cmd.MarkFlagsMutuallyExclusive("compress", "decompress")

	return cmd
}

func (c *CLI) runConvert(cmd *cobra.Command, path string, opts convertOpts) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

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
	switch {
	case opts.compress:
		popts.Compression = drawio.CompressionAlways.String()
	case opts.decompress:
		popts.Compression = drawio.CompressionNever.String()
	}
	if cmd.Flags().Changed("pretty") {
		popts.Indent = 0
		if opts.pretty {
			popts.Indent = 2
		}
	}

	prog := newProgress(logger)
	out, err := runner.Convert(ctx, data, popts)
	if err != nil {
		return err
	}

	if opts.output == "" {
		_, err := cmd.OutOrStdout().Write(out)
		return err
	}
	if err := os.WriteFile(opts.output, out, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", opts.output, err)
	}
	prog.done("Converted document", "source", path, "bytes", len(out))

	p := newPrinter(cmd.OutOrStdout())
	p.success("Converted %s", path)
	p.file(opts.output)
	return nil
}
