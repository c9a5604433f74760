package cli

import (
	"bytes"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/drawkit/pkg/compress"
)

// codecCommand creates the codec command for raw page payloads.
func (c *CLI) codecCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "codec",
		Short: "Inflate and deflate compressed page payloads",
		Long: `Inflate and deflate compressed page payloads.

drawio stores compressed pages as base64-encoded raw DEFLATE data. These
commands work on a single payload, e.g. one copied from a <diagram> element.`,
	}

	cmd.AddCommand(c.codecInflateCommand())
	cmd.AddCommand(c.codecDeflateCommand())

	return cmd
}

// codecInflateCommand creates the "codec inflate" subcommand.
func (c *CLI) codecInflateCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "inflate <file|->",
		Short:   "Decode a payload to the page XML it contains",
		Example: `  pbpaste | drawkit codec inflate -`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			payload, err := readInput(cmd, args[0])
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}
			codec := compress.New(c.Config.MaxDecompressedSize)
			xml, err := codec.Decompress(string(bytes.TrimSpace(payload)))
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(xml)
			return err
		},
	}
}

// codecDeflateCommand creates the "codec deflate" subcommand.
func (c *CLI) codecDeflateCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "deflate <file|->",
		Short:   "Encode page XML as a compressed payload",
		Example: `  drawkit codec deflate page.xml`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			xml, err := readInput(cmd, args[0])
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}
			payload, err := compress.Compress(xml)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), payload)
			return nil
		},
	}
}
