package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/peledor/lifelines/internal/lane"
	"github.com/peledor/lifelines/internal/record"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <data.csv> <id-or-name>",
	Short: "Dump one individual's computed lifeline",
	Args:  cobra.ExactArgs(2),
	RunE:  runInspect,
}

func init() {
	inspectCmd.Flags().Bool("json", false, "emit JSON instead of text")
	rootCmd.AddCommand(inspectCmd)
}

func runInspect(cmd *cobra.Command, args []string) error {
	sc, err := buildScene(cmd, args[0])
	if err != nil {
		return err
	}
	defer sc.Close()

	in, err := findIndividual(sc, args[1])
	if err != nil {
		return err
	}

	d := buildDossier(sc, in)
	if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
		return writeDossierJSON(cmd.OutOrStdout(), d)
	}
	writeDossierText(cmd.OutOrStdout(), d)
	return nil
}

// findIndividual resolves an exact id first, then a case-insensitive name
// fragment. Ambiguous fragments list the candidate ids.
func findIndividual(sc *scene, key string) (*record.Individual, error) {
	for i := range sc.inds {
		if sc.inds[i].ID == key {
			return &sc.inds[i], nil
		}
	}

	var matches []*record.Individual
	low := strings.ToLower(key)
	for i := range sc.inds {
		if strings.Contains(strings.ToLower(sc.inds[i].Name), low) {
			matches = append(matches, &sc.inds[i])
		}
	}
	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("no individual matches %q", key)
	case 1:
		return matches[0], nil
	default:
		ids := make([]string, len(matches))
		for i, m := range matches {
			ids[i] = m.ID
		}
		return nil, fmt.Errorf("%q is ambiguous: %s", key, strings.Join(ids, ", "))
	}
}

// dossier is the flattened inspect output for one individual.
type dossier struct {
	ID      string         `json:"id"`
	Name    string         `json:"name"`
	Journey string         `json:"journey"`
	Method  string         `json:"method,omitempty"`
	Events  []dossierEvent `json:"events"`
	Lanes   []dossierLane  `json:"lanes"`
	PathD   string         `json:"path_d,omitempty"`
	StartX  float64        `json:"start_x"`
	EndX    float64        `json:"end_x"`
	Stops   []dossierStop  `json:"stops"`
}

type dossierEvent struct {
	Kind string `json:"kind"`
	Date string `json:"date"`
}

type dossierLane struct {
	Lane string  `json:"lane"`
	Row  int     `json:"row"`
	Y    float64 `json:"y"`
}

type dossierStop struct {
	Offset float64 `json:"offset"`
	Color  string  `json:"color"`
}

func buildDossier(sc *scene, in *record.Individual) dossier {
	p := sc.paths[in.ID]
	d := dossier{
		ID:      in.ID,
		Name:    in.Name,
		Journey: in.Journey().String(),
		PathD:   p.D,
		StartX:  p.StartX,
		EndX:    p.EndX,
	}
	if in.Method != record.MethodNone {
		d.Method = in.Method.String()
	}
	for _, ev := range in.Events {
		d.Events = append(d.Events, dossierEvent{
			Kind: string(ev.Kind),
			Date: ev.Date.Format("2006-01-02"),
		})
	}
	seen := make(map[lane.ID]bool)
	for _, wp := range sc.lay.ResolvePath(in) {
		if seen[wp.Lane] {
			continue
		}
		seen[wp.Lane] = true
		row, ok := sc.lay.Row(in.ID, wp.Lane)
		if !ok {
			continue
		}
		d.Lanes = append(d.Lanes, dossierLane{
			Lane: string(wp.Lane),
			Row:  row,
			Y:    sc.lay.RowY(in.ID, wp.Lane),
		})
	}
	for _, s := range sc.stops[in.ID] {
		d.Stops = append(d.Stops, dossierStop{Offset: s.Offset, Color: s.Color})
	}
	return d
}

func writeDossierJSON(w io.Writer, d dossier) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(d)
}

func writeDossierText(w io.Writer, d dossier) {
	fmt.Fprintf(w, "%s (%s)\n", d.Name, d.ID)
	fmt.Fprintf(w, "journey: %s\n", d.Journey)
	if d.Method != "" {
		fmt.Fprintf(w, "method:  %s\n", d.Method)
	}
	fmt.Fprintln(w, "events:")
	for _, ev := range d.Events {
		fmt.Fprintf(w, "  %s  %s\n", ev.Date, ev.Kind)
	}
	fmt.Fprintln(w, "lanes:")
	for _, ln := range d.Lanes {
		fmt.Fprintf(w, "  %-20s row %-3d y %.1f\n", ln.Lane, ln.Row, ln.Y)
	}
	if d.PathD != "" {
		fmt.Fprintf(w, "path:    %s\n", d.PathD)
	}
	fmt.Fprintln(w, "stops:")
	for _, s := range d.Stops {
		fmt.Fprintf(w, "  %6.2f%%  %s\n", s.Offset, s.Color)
	}
}
