package cmd

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/peledor/lifelines/internal/tui"
)

var exploreCmd = &cobra.Command{
	Use:   "explore [data.csv]",
	Short: "Browse the computed scene in an interactive terminal UI",
	Long: `Explore opens a lane-filterable list of individuals with a detail
pane showing each one's events, rows, path segments, and gradient stops.
Useful for checking why a particular lifeline looks the way it does.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runExplore,
}

func init() {
	rootCmd.AddCommand(exploreCmd)
}

func runExplore(cmd *cobra.Command, args []string) error {
	if !isStderrTTY() {
		return fmt.Errorf("lifelines explore requires a TTY (terminal)")
	}

	sc, err := buildScene(cmd, dataArg(args))
	if err != nil {
		return err
	}
	defer sc.Close()

	return tui.Run(sc.entries(), sc.cat)
}

// isStderrTTY reports whether stderr is attached to a terminal.
func isStderrTTY() bool {
	return isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())
}
