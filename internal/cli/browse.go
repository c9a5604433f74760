package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

// browseCommand creates the browse command for exploring a document.
func (c *CLI) browseCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "browse <file>",
		Short: "Explore the pages and cells of a document interactively",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			path := args[0]

			data, err := readInput(cmd, path)
			if err != nil {
				return fmt.Errorf("read %s: %w", path, err)
			}

			runner, err := c.newRunner(ctx)
			if err != nil {
				return err
			}
			defer runner.Close()

			doc, err := runner.Decode(ctx, data, c.pipelineOptions(path))
			if err != nil {
				return err
			}
			if len(doc.Pages) == 0 {
				newPrinter(cmd.OutOrStdout()).info("%s has no pages", path)
				return nil
			}

			prog := tea.NewProgram(NewBrowseModel(doc),
				tea.WithContext(ctx),
				tea.WithInput(cmd.InOrStdin()),
				tea.WithOutput(cmd.OutOrStdout()),
				tea.WithAltScreen(),
			)
			_, err = prog.Run()
			return err
		},
	}
}
