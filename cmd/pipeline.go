package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/peledor/lifelines/internal/config"
	"github.com/peledor/lifelines/internal/diag"
	"github.com/peledor/lifelines/internal/geom"
	"github.com/peledor/lifelines/internal/gradient"
	"github.com/peledor/lifelines/internal/ingest"
	"github.com/peledor/lifelines/internal/lane"
	"github.com/peledor/lifelines/internal/layout"
	"github.com/peledor/lifelines/internal/record"
	"github.com/peledor/lifelines/internal/scale"
	"github.com/peledor/lifelines/internal/svg"
	"github.com/peledor/lifelines/internal/tui"
)

// scene is the output of one full pipeline pass over a data file: parsed
// individuals, the lane layout, per-individual geometry and gradients, and
// the warnings collected along the way.
type scene struct {
	cfg   config.Config
	cat   lane.Catalog
	lay   *layout.Layout
	smap  scale.Map
	inds  []record.Individual
	paths map[string]geom.Path
	stops map[string][]gradient.Stop
	log   *diag.Log

	emit *diag.Emitter
}

// Close flushes the JSONL diagnostic trail, if one was configured.
func (s *scene) Close() {
	_ = s.emit.Close()
}

// buildScene runs the full pipeline over one data file, honoring flags.
func buildScene(cmd *cobra.Command, dataPath string) (*scene, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	return buildSceneWith(cfg, dataPath)
}

// buildSceneWith runs the pipeline with an already-validated config. The
// watch loop reuses it to re-render without re-reading flags.
func buildSceneWith(cfg config.Config, dataPath string) (*scene, error) {
	var emit *diag.Emitter
	if cfg.DiagLog != "" {
		var err error
		emit, err = diag.NewEmitter(cfg.DiagLog)
		if err != nil {
			return nil, err
		}
	}
	log := diag.NewLog(emit)

	cat := lane.Default()
	if cfg.Catalog != "" {
		var err error
		cat, err = lane.LoadFile(cfg.Catalog)
		if err != nil {
			_ = emit.Close()
			return nil, fmt.Errorf("load lane catalog: %w", err)
		}
	}
	if err := cat.Validate(); err != nil {
		_ = emit.Close()
		return nil, fmt.Errorf("lane catalog: %w", err)
	}

	inds, err := ingest.Load(dataPath, log)
	if err != nil {
		_ = emit.Close()
		return nil, err
	}

	first, ok := earliestCapture(inds)
	if !ok {
		_ = emit.Close()
		return nil, fmt.Errorf("no datable capture events in %s", dataPath)
	}
	present, err := cfg.PresentDate(time.Now().UTC())
	if err != nil {
		_ = emit.Close()
		return nil, err
	}
	if present.Before(first) {
		_ = emit.Close()
		return nil, fmt.Errorf("present date %s precedes first capture %s",
			present.Format("2006-01-02"), first.Format("2006-01-02"))
	}

	minX, maxX := cfg.Range()
	smap := scale.New(first, present, minX, maxX, cfg.Direction())

	lay, err := layout.Build(inds, cat, cfg.Metrics(), log)
	if err != nil {
		_ = emit.Close()
		return nil, err
	}
	log.Event(diag.KindLayoutPass, map[string]any{
		"individuals": len(inds),
		"height":      lay.Height(),
	})

	eng := geom.NewEngine(smap, lay, cfg.BaseRadius, inds, log)
	grad := gradient.NewEngine(cat.Palette(), log)

	paths := make(map[string]geom.Path, len(inds))
	stops := make(map[string][]gradient.Stop, len(inds))
	for i := range inds {
		in := &inds[i]
		p := eng.Build(in)
		paths[in.ID] = p
		stops[in.ID] = grad.Stops(in, p)
	}

	return &scene{
		cfg:   cfg,
		cat:   cat,
		lay:   lay,
		smap:  smap,
		inds:  inds,
		paths: paths,
		stops: stops,
		log:   log,
		emit:  emit,
	}, nil
}

// loadConfig merges file, env, and flag configuration.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg := config.Load()
	applyFlagOverrides(cmd, &cfg)
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// applyFlagOverrides applies CLI flag values to the loaded config.
func applyFlagOverrides(cmd *cobra.Command, cfg *config.Config) {
	if v, _ := cmd.Flags().GetBool("ltr"); v {
		cfg.RTL = false
	}
	if v, _ := cmd.Flags().GetString("now"); v != "" {
		cfg.Now = v
	}
	if v, _ := cmd.Flags().GetString("catalog"); v != "" {
		cfg.Catalog = v
	}
}

// earliestCapture returns the earliest capture date across all individuals.
func earliestCapture(inds []record.Individual) (time.Time, bool) {
	var first time.Time
	for i := range inds {
		d, ok := inds[i].EventDate(record.EventCaptured)
		if !ok {
			continue
		}
		if first.IsZero() || d.Before(first) {
			first = d
		}
	}
	return first, !first.IsZero()
}

// render produces the final SVG document and logs the lifecycle event.
func (s *scene) render() string {
	doc := svg.Render(s.smap, s.lay, s.lines(), s.params())
	s.log.Event(diag.KindRenderDone, map[string]any{
		"lines":    len(s.inds),
		"warnings": s.log.Count(),
	})
	return doc
}

// lines assembles the SVG line set in ingest order.
func (s *scene) lines() []svg.Line {
	out := make([]svg.Line, 0, len(s.inds))
	for i := range s.inds {
		in := &s.inds[i]
		p := s.paths[in.ID]
		out = append(out, svg.Line{
			ID:    in.ID,
			D:     p.D,
			Stops: s.stops[in.ID],
			Label: in.Name,
			EndX:  p.EndX,
			EndY:  p.EndY,
		})
	}
	return out
}

func (s *scene) params() svg.Params {
	return svg.Params{
		Width:       s.cfg.Canvas.Width,
		StrokeWidth: s.cfg.Canvas.StrokeWidth,
		Background:  s.cfg.Canvas.Background,
		Font:        s.cfg.Canvas.Font,
	}
}

// entries adapts the scene for the interactive explorer.
func (s *scene) entries() []tui.Entry {
	out := make([]tui.Entry, 0, len(s.inds))
	for i := range s.inds {
		in := &s.inds[i]
		rows := make(map[lane.ID]int)
		for _, wp := range s.lay.ResolvePath(in) {
			if row, ok := s.lay.Row(in.ID, wp.Lane); ok {
				rows[wp.Lane] = row
			}
		}
		out = append(out, tui.Entry{
			Ind:   in,
			Path:  s.paths[in.ID],
			Stops: s.stops[in.ID],
			Rows:  rows,
		})
	}
	return out
}

// dataArg resolves the optional data-file argument.
func dataArg(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return defaultDataFile
}
