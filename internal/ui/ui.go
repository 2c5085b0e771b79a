// Package ui renders styled terminal output for the lifelines CLI. Everything
// goes to stderr so stdout stays clean for piped SVG documents.
package ui

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/peledor/lifelines/internal/diag"
)

// ANSI color codes.
const (
	reset  = "\033[0m"
	bold   = "\033[1m"
	dim    = "\033[2m"
	yellow = "\033[33m"
	green  = "\033[32m"
	red    = "\033[31m"
	cyan   = "\033[36m"
)

type Printer struct{}

func New() *Printer {
	return &Printer{}
}

func (p *Printer) Banner() {
	fmt.Fprintln(os.Stderr, bold+cyan+"  ╔═══════════════════════════════════╗"+reset)
	fmt.Fprintln(os.Stderr, bold+cyan+"  ║"+reset+bold+"  LIFELINES  "+dim+"timeline flow renderer"+reset+bold+cyan+"║"+reset)
	fmt.Fprintln(os.Stderr, bold+cyan+"  ╚═══════════════════════════════════╝"+reset)
	fmt.Fprintln(os.Stderr)
}

func (p *Printer) Error(msg string) {
	fmt.Fprintf(os.Stderr, red+bold+"error: "+reset+"%s\n", msg)
}

func (p *Printer) Info(msg string) {
	fmt.Fprintf(os.Stderr, dim+"%s"+reset+"\n", msg)
}

// Check prints one ✓/✗ doctor stage line.
func (p *Printer) Check(name string, err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, red+bold+"✗ %s"+reset+" — %v\n", name, err)
		return
	}
	fmt.Fprintf(os.Stderr, green+"✓ %s"+reset+"\n", name)
}

// CheckNote prints a passing stage line with a dim trailing note.
func (p *Printer) CheckNote(name, note string) {
	fmt.Fprintf(os.Stderr, green+"✓ %s"+reset+dim+" %s"+reset+"\n", name, note)
}

// RenderDone reports a completed render.
func (p *Printer) RenderDone(dest string, lines, warnings int) {
	fmt.Fprintf(os.Stderr, green+"✓ rendered"+reset+" %s "+dim+"(%s)"+reset+"\n",
		dest, SummaryLine(lines, warnings))
}

// WatchStart announces the watch loop.
func (p *Printer) WatchStart(files []string, debounce time.Duration) {
	fmt.Fprintf(os.Stderr, cyan+"◆ watching"+reset+" %s "+dim+"(debounce %s, ctrl-c to stop)"+reset+"\n",
		strings.Join(files, ", "), debounce)
}

// WatchRender reports one watch-triggered re-render.
func (p *Printer) WatchRender(at time.Time, dest string, lines, warnings int) {
	fmt.Fprintf(os.Stderr, dim+"[%s]"+reset+" "+green+"✓"+reset+" %s "+dim+"(%s)"+reset+"\n",
		at.Format("15:04:05"), dest, SummaryLine(lines, warnings))
}

// WatchError reports a failed watch-triggered re-render. The loop keeps
// running on the last good output.
func (p *Printer) WatchError(at time.Time, err error) {
	fmt.Fprintf(os.Stderr, dim+"[%s]"+reset+" "+red+"✗"+reset+" %v "+dim+"(keeping last render)"+reset+"\n",
		at.Format("15:04:05"), err)
}

// WarningGroups prints the collected data-quality warnings grouped by kind.
func (p *Printer) WarningGroups(events []diag.Event) {
	if len(events) == 0 {
		fmt.Fprintln(os.Stderr, green+"✓ no data-quality warnings"+reset)
		return
	}

	groups := make(map[string][]diag.Event)
	for _, e := range events {
		groups[e.Kind] = append(groups[e.Kind], e)
	}
	kinds := make([]string, 0, len(groups))
	for k := range groups {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)

	fmt.Fprintf(os.Stderr, yellow+bold+"⚠ %d warning%s"+reset+"\n", len(events), pluralS(len(events)))
	for _, k := range kinds {
		fmt.Fprintf(os.Stderr, "  "+bold+"%s"+reset+dim+" (%d)"+reset+"\n", k, len(groups[k]))
		for _, e := range groups[k] {
			line := "    " + yellow + "•" + reset + " " + e.Subject
			if e.Lane != "" {
				line += dim + " [" + e.Lane + "]" + reset
			}
			if e.Detail != "" {
				line += " " + dim + e.Detail + reset
			}
			fmt.Fprintln(os.Stderr, line)
		}
	}
}

// SummaryLine formats the "N lifelines, M warnings" suffix used after
// renders. Exported for testing.
func SummaryLine(lines, warnings int) string {
	s := fmt.Sprintf("%d lifeline%s", lines, pluralS(lines))
	if warnings > 0 {
		s += fmt.Sprintf(", %d warning%s", warnings, pluralS(warnings))
	}
	return s
}

func pluralS(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
