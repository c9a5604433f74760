package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/drawkit/pkg/style"
)

// styleEntry is the JSON form of one decoded style token.
type styleEntry struct {
	Key   string `json:"key"`
	Value string `json:"value,omitempty"`
	Flag  bool   `json:"flag,omitempty"`
}

// styleCommand creates the style command with decode and encode subcommands.
func (c *CLI) styleCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "style",
		Short: "Decode and encode drawio style strings",
	}

	cmd.AddCommand(c.styleDecodeCommand())
	cmd.AddCommand(c.styleEncodeCommand())

	return cmd
}

// styleDecodeCommand creates the "style decode" subcommand.
func (c *CLI) styleDecodeCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:     "decode <style>",
		Short:   "Split a style string into its keys and values",
		Example: `  drawkit style decode "rounded=1;whiteSpace=wrap;html=1;fillColor=#dae8fc;"`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := style.Decode(args[0])

			entries := make([]styleEntry, 0, s.Len())
			for key, v := range s.All() {
				entries = append(entries, styleEntry{Key: key, Value: v.Raw, Flag: v.Flag})
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(entries)
			}
			if len(entries) == 0 {
				newPrinter(out).info("Empty style")
				return nil
			}
			fmt.Fprintln(out, styleTable(entries))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print entries as JSON")

	return cmd
}

// styleEncodeCommand creates the "style encode" subcommand.
func (c *CLI) styleEncodeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "encode <key[=value]>...",
		Short: "Build a style string from key=value tokens",
		Long: `Build a style string from key=value tokens.

Tokens without '=' become bare flags such as "ellipse" or "group". Later
tokens override earlier ones with the same key.`,
		Example: `  drawkit style encode ellipse fillColor=#fff2cc strokeWidth=2`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := style.New()
			for _, tok := range args {
				key, raw, hasValue := strings.Cut(tok, "=")
				if hasValue {
					s.Set(key, raw)
				} else {
					s.SetFlag(key)
				}
			}
			encoded, err := style.Encode(s)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), encoded)
			return nil
		},
	}
}

func styleTable(entries []styleEntry) string {
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		v := e.Value
		if e.Flag {
			v = "(flag)"
		}
		rows = append(rows, []string{e.Key, v})
	}
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Key", "Value").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == -1:
				return lipgloss.NewStyle().Foreground(colorGray).Bold(true)
			case col == 0:
				return StyleHighlight
			}
			return StyleValue
		}).
		Render()
}
