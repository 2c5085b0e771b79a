package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/peledor/lifelines/internal/ui"
)

var renderCmd = &cobra.Command{
	Use:   "render [data.csv]",
	Short: "Render the timeline to an SVG document",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runRender,
}

func init() {
	renderCmd.Flags().StringP("out", "o", "", "output file (default: stdout)")
	rootCmd.AddCommand(renderCmd)
}

func runRender(cmd *cobra.Command, args []string) error {
	printer := ui.New()

	sc, err := buildScene(cmd, dataArg(args))
	if err != nil {
		return err
	}
	defer sc.Close()

	doc := sc.render()

	out, _ := cmd.Flags().GetString("out")
	if out == "" {
		fmt.Fprintln(cmd.OutOrStdout(), doc)
	} else {
		if err := os.WriteFile(out, []byte(doc), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", out, err)
		}
		printer.RenderDone(out, len(sc.inds), sc.log.Count())
	}

	reportWarnings(cmd, printer, sc)
	return nil
}

// reportWarnings prints the warning summary, expanded under --verbose.
func reportWarnings(cmd *cobra.Command, printer *ui.Printer, sc *scene) {
	n := sc.log.Count()
	if n == 0 {
		return
	}
	if v, _ := cmd.Flags().GetBool("verbose"); v {
		printer.WarningGroups(sc.log.Warnings())
		return
	}
	printer.Info(fmt.Sprintf("%d warning(s) — run 'lifelines doctor' for details", n))
}
