package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/peledor/lifelines/internal/geom"
	"github.com/peledor/lifelines/internal/gradient"
	"github.com/peledor/lifelines/internal/ui"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor [data.csv]",
	Short: "Check data quality and rendering health",
	Long: `Doctor runs the full pipeline and reports every stage: configuration,
lane catalog, ingest, layout, geometry, and gradients. Data-quality warnings
are listed grouped by kind. The exit code is non-zero when any stage fails.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

func runDoctor(cmd *cobra.Command, args []string) error {
	printer := ui.New()
	ok := true

	cfg, err := loadConfig(cmd)
	if err != nil {
		printer.Check("config", err)
		os.Exit(1)
	}
	printer.Check("config", nil)

	sc, err := buildSceneWith(cfg, dataArg(args))
	if err != nil {
		printer.Check("pipeline", err)
		os.Exit(1)
	}
	defer sc.Close()
	printer.CheckNote("data", fmt.Sprintf("%d individuals, %d lanes", len(sc.inds), len(sc.cat.Defs())))

	if err := checkDates(sc); err != nil {
		printer.Check("dates", err)
		ok = false
	} else {
		printer.Check("dates", nil)
	}

	if err := checkGeometry(sc); err != nil {
		printer.Check("geometry", err)
		ok = false
	} else {
		printer.CheckNote("geometry", fmt.Sprintf("all paths monotonic (%s)", sc.cfg.Direction()))
	}

	if err := checkGradients(sc); err != nil {
		printer.Check("gradients", err)
		ok = false
	} else {
		printer.Check("gradients", nil)
	}

	printer.WarningGroups(sc.log.Warnings())

	start, end := sc.smap.Domain()
	printer.Info(fmt.Sprintf("domain: %s to %s", start.Format("2006-01-02"), end.Format("2006-01-02")))
	printer.Info(fmt.Sprintf("canvas: %.0f x %.0f", sc.cfg.Canvas.Width, sc.lay.Height()))
	for _, d := range sc.cat.Defs() {
		printer.Info(fmt.Sprintf("  %-30s %d row(s)", d.Label, sc.lay.Count(d.ID)))
	}

	if !ok {
		os.Exit(1)
	}
	return nil
}

// checkDates flags events dated after the configured present. The scale
// extrapolates past its domain, so such events draw outside the canvas.
func checkDates(sc *scene) error {
	_, present := sc.smap.Domain()
	var bad []string
	for i := range sc.inds {
		for _, ev := range sc.inds[i].Events {
			if ev.Date.After(present) {
				bad = append(bad, fmt.Sprintf("%s (%s %s)",
					sc.inds[i].ID, ev.Kind, ev.Date.Format("2006-01-02")))
				break
			}
		}
	}
	if len(bad) > 0 {
		return fmt.Errorf("%d individual(s) with events after the present date: %s",
			len(bad), strings.Join(bad, ", "))
	}
	return nil
}

// checkGeometry verifies every built path advances monotonically along the
// timeline axis.
func checkGeometry(sc *scene) error {
	var bad []string
	for i := range sc.inds {
		p := sc.paths[sc.inds[i].ID]
		if p.Empty() {
			continue
		}
		if !geom.Monotonic(p, sc.smap.Sign()) {
			bad = append(bad, sc.inds[i].ID)
		}
	}
	if len(bad) > 0 {
		return fmt.Errorf("%d non-monotonic path(s): %s", len(bad), strings.Join(bad, ", "))
	}
	return nil
}

// checkGradients verifies every gradient is usable: at least two stops,
// endpoints pinned to 0 and 100, offsets non-decreasing.
func checkGradients(sc *scene) error {
	var bad []string
	for i := range sc.inds {
		id := sc.inds[i].ID
		if !stopsUsable(sc.stops[id]) {
			bad = append(bad, id)
		}
	}
	if len(bad) > 0 {
		return fmt.Errorf("%d malformed gradient(s): %s", len(bad), strings.Join(bad, ", "))
	}
	return nil
}

func stopsUsable(stops []gradient.Stop) bool {
	if len(stops) < 2 {
		return false
	}
	if stops[0].Offset != 0 || stops[len(stops)-1].Offset != 100 {
		return false
	}
	for i := 1; i < len(stops); i++ {
		if stops[i].Offset < stops[i-1].Offset {
			return false
		}
	}
	return true
}
