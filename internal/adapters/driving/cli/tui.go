package cli

import (
	"fmt"
	"os"
	"runtime/debug"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/tradematch/internal/adapters/driving/tui"
)

// tuiCmd represents the tui command.
var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive terminal UI",
	Long: `Launch the interactive terminal interface for matching requests to suppliers.

Type a request, browse the ranked suppliers and read the recommendation.
Roles and settings are reachable from the menu.

Controls:
  ↑/k, ↓/j - Navigate
  Enter    - Match / Select / Expand passage
  s        - Toggle recommendation
  n        - New request
  Esc      - Back
  q        - Quit (from the menu)`,
	RunE: runTUI,
}

var tuiFlags searchFlags

func init() {
	addSearchFlags(tuiCmd, &tuiFlags)
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, _ []string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in TUI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
			err = fmt.Errorf("TUI panic: %v", r)
		}
	}()

	if searchService == nil {
		return unavailable("search")
	}

	opts, err := tuiFlags.options()
	if err != nil {
		return err
	}

	app, err := tui.NewApp(&tui.Ports{
		Search:    searchService,
		Settings:  settingsService,
		Directory: directoryService,
	})
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}
	app.WithContext(cmd.Context()).WithSearchOptions(opts)

	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
