package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/peledor/lifelines/internal/config"
	"github.com/peledor/lifelines/internal/ui"
	"github.com/peledor/lifelines/internal/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch [data.csv]",
	Short: "Re-render the SVG whenever the data or catalog changes",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runWatch,
}

func init() {
	watchCmd.Flags().StringP("out", "o", "", "output file (default: data file with .svg extension)")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	printer := ui.New()
	dataPath := dataArg(args)

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	out, _ := cmd.Flags().GetString("out")
	if out == "" {
		out = svgPath(dataPath)
	}

	// First render before entering the loop, so a bad data file fails fast.
	n, warn, err := renderToFile(cfg, dataPath, out)
	if err != nil {
		return err
	}
	printer.RenderDone(out, n, warn)

	files := []string{dataPath}
	if cfg.Catalog != "" {
		files = append(files, cfg.Catalog)
	}
	w, err := watch.New(cfg.Debounce(), files...)
	if err != nil {
		return err
	}
	if err := w.Start(); err != nil {
		return err
	}
	printer.WatchStart(files, cfg.Debounce())

	ctx, cancel := setupSignalContext(printer)
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			w.Stop()
			return nil
		case ch, ok := <-w.Changes:
			if !ok {
				return nil
			}
			n, warn, err := renderToFile(cfg, dataPath, out)
			if err != nil {
				printer.WatchError(time.Now(), err)
				continue
			}
			printer.WatchRender(ch.At, out, n, warn)
		}
	}
}

// renderToFile runs the pipeline and writes the SVG document to dest. It
// returns the line and warning counts for reporting.
func renderToFile(cfg config.Config, dataPath, dest string) (lines, warnings int, err error) {
	sc, err := buildSceneWith(cfg, dataPath)
	if err != nil {
		return 0, 0, err
	}
	defer sc.Close()

	doc := sc.render()
	if err := os.WriteFile(dest, []byte(doc), 0o644); err != nil {
		return 0, 0, fmt.Errorf("write %s: %w", dest, err)
	}
	return len(sc.inds), sc.log.Count(), nil
}

// svgPath derives the default output path from the data file name.
func svgPath(dataPath string) string {
	ext := filepath.Ext(dataPath)
	return strings.TrimSuffix(dataPath, ext) + ".svg"
}

// setupSignalContext returns a context that is canceled on SIGINT or
// SIGTERM, so the watch loop can close the file watcher and leave the last
// written SVG intact instead of dying mid-render.
func setupSignalContext(printer *ui.Printer) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		printer.Info("\nstopping watch...")
		cancel()
	}()
	return ctx, cancel
}
